package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// userSelect usuario con sus roles agregados (ids y nombres en el mismo orden).
const userSelect = `
	SELECT u.id, u.name, u.email, u.phone, u.password_hash, u.active, u.token, u.created_at,
	       COALESCE(array_agg(r.id::text ORDER BY r.name) FILTER (WHERE r.id IS NOT NULL), '{}'),
	       COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.id IS NOT NULL), '{}')
	FROM users u
	LEFT JOIN user_roles ur ON ur.user_id = u.id
	LEFT JOIN roles r ON r.id = ur.role_id`

const userGroupBy = ` GROUP BY u.id`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	var roleIDs, roleNames []string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Active, &u.Token,
		&u.CreatedAt, &roleIDs, &roleNames); err != nil {
		return nil, err
	}
	u.Roles = make([]entity.Role, 0, len(roleIDs))
	for i := range roleIDs {
		u.Roles = append(u.Roles, entity.Role{ID: roleIDs[i], Name: roleNames[i]})
	}
	return &u, nil
}

// Create persiste el usuario y sus roles en una misma transacción.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return domain.NewPersistence("begin insert user", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, name, email, phone, password_hash, active, token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Name, user.Email, user.Phone, user.PasswordHash, user.Active, user.Token, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflict(domain.EntityUser, user.Email)
		}
		return domain.NewPersistence("insert user", err)
	}
	if err := replaceRoles(ctx, tx, user); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.NewPersistence("commit insert user", err)
	}
	return nil
}

// replaceRoles reemplaza las filas de user_roles del usuario.
func replaceRoles(ctx context.Context, tx pgx.Tx, user *entity.User) error {
	if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, user.ID); err != nil {
		return domain.NewPersistence("delete user roles", err)
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = ANY($2)`,
		user.ID, user.RoleNames(),
	)
	if err != nil {
		return domain.NewPersistence("insert user roles", err)
	}
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, op, where string, arg any) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, userSelect+` WHERE `+where+userGroupBy, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, domain.NewPersistence(op, err)
	}
	return u, nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, "get user", `u.id = $1`, id)
}

// GetByEmail obtiene un usuario por email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "get user by email", `u.email = $1`, email)
}

// Update actualiza datos, contraseña, token y roles del usuario.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return domain.NewPersistence("begin update user", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmd, err := tx.Exec(ctx, `
		UPDATE users SET name = $2, email = $3, phone = $4, password_hash = $5, active = $6, token = $7
		WHERE id = $1`,
		user.ID, user.Name, user.Email, user.Phone, user.PasswordHash, user.Active, user.Token,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflict(domain.EntityUser, user.Email)
		}
		return domain.NewPersistence("update user", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFound(domain.EntityUser, user.ID)
	}
	if err := replaceRoles(ctx, tx, user); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.NewPersistence("commit update user", err)
	}
	return nil
}

func (r *UserRepo) list(ctx context.Context, query string, args ...any) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.NewPersistence("list users", err)
	}
	defer rows.Close()
	list := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, domain.NewPersistence("scan user", err)
		}
		list = append(list, u)
	}
	return list, domain.NewPersistence("list users", rows.Err())
}

// List lista usuarios por nombre.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	return r.list(ctx, userSelect+userGroupBy+` ORDER BY u.name LIMIT $1 OFFSET $2`, limit, offset)
}

// Search busca por nombre, email, teléfono o nombre de rol.
func (r *UserRepo) Search(ctx context.Context, term string, limit int) ([]*entity.User, error) {
	return r.list(ctx, userSelect+`
		WHERE u.name ILIKE $1 OR u.email ILIKE $1 OR u.phone ILIKE $1
		   OR EXISTS (SELECT 1 FROM user_roles ur2 JOIN roles r2 ON r2.id = ur2.role_id
		              WHERE ur2.user_id = u.id AND r2.name ILIKE $1)`+
		userGroupBy+` ORDER BY u.name LIMIT $2`,
		containsPattern(term), limit)
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, domain.NewPersistence("count users", err)
	}
	return n, nil
}

// Delete elimina el usuario; sus filas de user_roles se borran en cascada.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return domain.NewPersistence("delete user", err)
	}
	return nil
}
