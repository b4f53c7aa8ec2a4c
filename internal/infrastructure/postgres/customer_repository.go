package postgres

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = `id, name, email, phone, payment_frequency, created_at`

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// MergeByEmail upsert atómico sobre el email único: inserta con frecuencia 1 o incrementa la
// frecuencia del cliente existente. xmax = 0 solo en filas recién insertadas.
func (r *CustomerRepo) MergeByEmail(ctx context.Context, customer *entity.Customer) (*entity.Customer, bool, error) {
	query := `
		INSERT INTO customers (id, name, email, phone, payment_frequency, created_at)
		VALUES ($1, $2, $3, $4, 1, $5)
		ON CONFLICT (email) DO UPDATE SET payment_frequency = customers.payment_frequency + 1
		RETURNING ` + customerColumns + `, (xmax = 0) AS inserted`
	var c entity.Customer
	var inserted bool
	err := r.q.QueryRow(ctx, query,
		customer.ID, customer.Name, customer.Email, customer.Phone, customer.CreatedAt,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.PaymentFrequency, &c.CreatedAt, &inserted)
	if err != nil {
		return nil, false, domain.NewPersistence("merge customer", err)
	}
	return &c, inserted, nil
}

func (r *CustomerRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.Customer, error) {
	var c entity.Customer
	err := r.q.QueryRow(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.PaymentFrequency, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, domain.NewPersistence(op, err)
	}
	return &c, nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.getOne(ctx, "get customer", `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

// GetByEmail obtiene un cliente por email exacto.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	return r.getOne(ctx, "get customer by email", `SELECT `+customerColumns+` FROM customers WHERE email = $1`, email)
}

func (r *CustomerRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Customer, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.NewPersistence("list customers", err)
	}
	defer rows.Close()
	list := make([]*entity.Customer, 0)
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.PaymentFrequency, &c.CreatedAt); err != nil {
			return nil, domain.NewPersistence("scan customer", err)
		}
		list = append(list, &c)
	}
	return list, domain.NewPersistence("list customers", rows.Err())
}

// List lista clientes del más reciente al más antiguo.
func (r *CustomerRepo) List(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	return r.list(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
}

func (r *CustomerRepo) ListAll(ctx context.Context) ([]*entity.Customer, error) {
	return r.list(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC, id DESC`)
}

// Search busca por nombre, email o teléfono.
func (r *CustomerRepo) Search(ctx context.Context, term string, limit int) ([]*entity.Customer, error) {
	return r.list(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1
		ORDER BY created_at DESC, id DESC LIMIT $2`,
		containsPattern(term), limit)
}

func (r *CustomerRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&n); err != nil {
		return 0, domain.NewPersistence("count customers", err)
	}
	return n, nil
}
