package entity

import "time"

// User representa un usuario del sistema (personal de la tienda).
// Los roles se relacionan mediante la tabla user_roles (muchos a muchos).
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Active       bool
	Roles        []Role
	Token        string // token de seguridad único; se regenera al cambiar password
	CreatedAt    time.Time
}

// RoleNames devuelve los nombres de los roles del usuario.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// HasAnyRole indica si el usuario tiene al menos uno de los roles indicados.
func (u *User) HasAnyRole(roles ...string) bool {
	for _, r := range u.Roles {
		for _, want := range roles {
			if r.Name == want {
				return true
			}
		}
	}
	return false
}
