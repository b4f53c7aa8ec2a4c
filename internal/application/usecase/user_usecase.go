package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/ports"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para usuarios y roles.
type UserUseCase struct {
	repo  repository.UserRepository
	roles repository.RoleRepository
	log   zerolog.Logger
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(repo repository.UserRepository, roles repository.RoleRepository, log zerolog.Logger) *UserUseCase {
	return &UserUseCase{repo: repo, roles: roles, log: log}
}

// EnsureDefaultRoles crea admin, editor y supervisor si faltan. Se llama al iniciar.
func (uc *UserUseCase) EnsureDefaultRoles(ctx context.Context) error {
	return uc.roles.EnsureRoles(ctx, entity.DefaultRoles())
}

// ListRoles lista los roles existentes.
func (uc *UserUseCase) ListRoles(ctx context.Context) ([]dto.RoleResponse, error) {
	list, err := uc.roles.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoleResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.RoleResponse{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// resolveRoles convierte nombres en roles persistidos. Un nombre fuera del conjunto es ValidationError.
func (uc *UserUseCase) resolveRoles(ctx context.Context, names []string) ([]entity.Role, error) {
	if len(names) == 0 {
		return nil, domain.NewValidation("roles", "se requiere al menos un rol")
	}
	seen := make(map[string]bool, len(names))
	out := make([]entity.Role, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if seen[n] {
			continue
		}
		seen[n] = true
		if !entity.IsValidRole(n) {
			return nil, domain.NewValidation("roles", fmt.Sprintf("rol desconocido %q", n))
		}
		role, err := uc.roles.GetByName(ctx, n)
		if err != nil {
			return nil, err
		}
		if role == nil {
			return nil, domain.NewNotFound(domain.EntityRole, n)
		}
		out = append(out, *role)
	}
	return out, nil
}

// Create crea un usuario: hashea el password con bcrypt y genera su token de seguridad.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	email := strings.TrimSpace(in.Email)
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewConflict(domain.EntityUser, email)
	}
	roles, err := uc.resolveRoles(ctx, in.Roles)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		Active:       true,
		Roles:        roles,
		Token:        uuid.New().String(),
		CreatedAt:    time.Now(),
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Strs("roles", user.RoleNames()).Msg("usuario creado")
	return ToUserResponse(user), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFound(domain.EntityUser, id)
	}
	return ToUserResponse(user), nil
}

// Update actualiza datos y roles. Un password nuevo regenera el token de seguridad.
func (uc *UserUseCase) Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFound(domain.EntityUser, id)
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != user.Email {
			other, err := uc.repo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, domain.NewConflict(domain.EntityUser, email)
			}
		}
		user.Email = email
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Active != nil {
		user.Active = *in.Active
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
		user.Token = uuid.New().String()
	}
	if in.Roles != nil {
		roles, err := uc.resolveRoles(ctx, in.Roles)
		if err != nil {
			return nil, err
		}
		user.Roles = roles
	}
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// CheckSession verifica que el JWT siga vigente para el usuario: debe existir, estar activo
// y conservar el token de seguridad con el que se emitió (cambia al cambiar el password).
func (uc *UserUseCase) CheckSession(ctx context.Context, userID, session string) error {
	user, err := uc.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	switch {
	case user == nil:
		return fmt.Errorf("%w: usuario inexistente", domain.ErrUnauthorized)
	case !user.Active:
		return fmt.Errorf("%w: usuario inactivo", domain.ErrUnauthorized)
	case session == "" || user.Token != session:
		return fmt.Errorf("%w: sesión revocada", domain.ErrUnauthorized)
	}
	return nil
}

// List lista usuarios por nombre.
func (uc *UserUseCase) List(ctx context.Context, limit, offset int) (*dto.UserListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *ToUserResponse(u))
	}
	return &dto.UserListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset, Total: total}}, nil
}

// Search busca por nombre, email, teléfono o rol.
func (uc *UserUseCase) Search(ctx context.Context, term string, limit int) ([]dto.UserResponse, error) {
	list, err := uc.repo.Search(ctx, strings.TrimSpace(term), limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *ToUserResponse(u))
	}
	return out, nil
}

// Delete elimina un usuario. Nadie puede eliminar su propia cuenta.
func (uc *UserUseCase) Delete(ctx context.Context, p ports.Principal, id string) error {
	if p.UserID == id {
		return domain.NewValidation("id", "no puede eliminar su propia cuenta")
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.NewNotFound(domain.EntityUser, id)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("user_id", id).Str("by", p.UserID).Msg("usuario eliminado")
	return nil
}

// EnsureAdmin crea el administrador inicial si no existe un usuario con ese email.
// created indica si se creó.
func (uc *UserUseCase) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if len(password) < 8 {
		return false, domain.NewValidation("password", "debe tener al menos 8 caracteres")
	}
	_, err = uc.Create(ctx, dto.CreateUserRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Roles:    []string{entity.RoleAdmin},
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// ToUserResponse mapea un usuario a su DTO (sin password ni token).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Active:    u.Active,
		Roles:     u.RoleNames(),
		CreatedAt: u.CreatedAt,
	}
}
