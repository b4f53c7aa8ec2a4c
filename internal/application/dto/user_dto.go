package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Name     string   `json:"user_name" validate:"required,min=1,max=200"`
	Email    string   `json:"user_email" validate:"required,email,max=200"`
	Phone    string   `json:"user_phone" validate:"omitempty,max=15"`
	Password string   `json:"password" validate:"required,min=8"`
	Roles    []string `json:"roles" validate:"required,min=1,dive,oneof=admin editor supervisor"`
}

// UpdateUserRequest entrada para actualizar un usuario. Password vacío no cambia la contraseña;
// Roles nil conserva los roles actuales.
type UpdateUserRequest struct {
	Name     *string  `json:"user_name" validate:"omitempty,min=1,max=200"`
	Email    *string  `json:"user_email" validate:"omitempty,email,max=200"`
	Phone    *string  `json:"user_phone" validate:"omitempty,max=15"`
	Password *string  `json:"password" validate:"omitempty,min=8"`
	Active   *bool    `json:"active"`
	Roles    []string `json:"roles" validate:"omitempty,min=1,dive,oneof=admin editor supervisor"`
}

// UserResponse salida de un usuario (sin password ni token).
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"user_name"`
	Email     string    `json:"user_email"`
	Phone     string    `json:"user_phone,omitempty"`
	Active    bool      `json:"active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// RoleResponse rol en respuestas.
type RoleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
