package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var (
	_ repository.UserRepository = (*UserRepo)(nil)
	_ repository.RoleRepository = (*RoleRepo)(nil)
)

// UserRepo usuarios en memoria.
type UserRepo struct {
	s *Store
}

func copyUser(u entity.User) *entity.User {
	u.Roles = append([]entity.Role(nil), u.Roles...)
	return &u
}

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.Email == user.Email {
			return domain.NewConflict(domain.EntityUser, user.Email)
		}
	}
	r.s.data.users[user.ID] = *copyUser(*user)
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.data.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[user.ID]; !ok {
		return domain.NewNotFound(domain.EntityUser, user.ID)
	}
	for id, u := range r.s.data.users {
		if id != user.ID && u.Email == user.Email {
			return domain.NewConflict(domain.EntityUser, user.Email)
		}
	}
	r.s.data.users[user.ID] = *copyUser(*user)
	return nil
}

func (r *UserRepo) sorted() []*entity.User {
	list := make([]*entity.User, 0, len(r.s.data.users))
	for _, u := range r.s.data.users {
		list = append(list, copyUser(u))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return page(r.sorted(), limit, offset), nil
}

// Search busca por nombre, email, teléfono o nombre de rol.
func (r *UserRepo) Search(_ context.Context, term string, limit int) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.User
	for _, u := range r.sorted() {
		if contains(term, append([]string{u.Name, u.Email, u.Phone}, u.RoleNames()...)...) {
			out = append(out, u)
		}
	}
	return page(out, limit, 0), nil
}

func (r *UserRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.data.users), nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.users, id)
	return nil
}

// RoleRepo roles en memoria.
type RoleRepo struct {
	s *Store
}

func (r *RoleRepo) EnsureRoles(_ context.Context, names []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range names {
		if _, ok := r.s.data.roles[n]; !ok {
			r.s.data.roles[n] = entity.Role{ID: uuid.New().String(), Name: n}
		}
	}
	return nil
}

func (r *RoleRepo) GetByName(_ context.Context, name string) (*entity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	role, ok := r.s.data.roles[name]
	if !ok {
		return nil, nil
	}
	return &role, nil
}

func (r *RoleRepo) List(_ context.Context) ([]*entity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Role, 0, len(r.s.data.roles))
	for _, role := range r.s.data.roles {
		role := role
		list = append(list, &role)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}
