package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, product_name, quantity, customer_name, customer_email, customer_phone, user_name, created_at`

// SaleRepo implementación de SaleRepository (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.ProductName, &s.Quantity, &s.CustomerName, &s.CustomerEmail,
		&s.CustomerPhone, &s.UserName, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste la venta.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO sales (`+saleColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sale.ID, sale.ProductName, sale.Quantity, sale.CustomerName, sale.CustomerEmail,
		sale.CustomerPhone, sale.UserName, sale.CreatedAt,
	)
	if err != nil {
		return domain.NewPersistence("insert sale", err)
	}
	return nil
}

func (r *SaleRepo) getOne(ctx context.Context, op, query, id string) (*entity.Sale, error) {
	sale, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, domain.NewPersistence(op, err)
	}
	return sale, nil
}

// GetByID obtiene una venta por ID.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, "get sale", `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene la venta bloqueando la fila.
func (r *SaleRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, "lock sale", `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

// Update reescribe los campos editables de la venta.
func (r *SaleRepo) Update(ctx context.Context, sale *entity.Sale) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE sales SET product_name = $2, quantity = $3, customer_name = $4, user_name = $5 WHERE id = $1`,
		sale.ID, sale.ProductName, sale.Quantity, sale.CustomerName, sale.UserName,
	)
	if err != nil {
		return domain.NewPersistence("update sale", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFound(domain.EntitySale, sale.ID)
	}
	return nil
}

func (r *SaleRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.NewPersistence("list sales", err)
	}
	defer rows.Close()
	list := make([]*entity.Sale, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, domain.NewPersistence("scan sale", err)
		}
		list = append(list, sale)
	}
	return list, domain.NewPersistence("list sales", rows.Err())
}

// List lista ventas de la más reciente a la más antigua.
func (r *SaleRepo) List(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	return r.list(ctx,
		`SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
}

func (r *SaleRepo) ListAll(ctx context.Context) ([]*entity.Sale, error) {
	return r.list(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, id DESC`)
}

// Search busca por producto, cliente (nombre o email) o vendedor.
func (r *SaleRepo) Search(ctx context.Context, term string, limit int) ([]*entity.Sale, error) {
	return r.list(ctx, `
		SELECT `+saleColumns+` FROM sales
		WHERE product_name ILIKE $1 OR customer_name ILIKE $1 OR customer_email ILIKE $1 OR user_name ILIKE $1
		ORDER BY created_at DESC, id DESC LIMIT $2`,
		containsPattern(term), limit)
}

func (r *SaleRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM sales`).Scan(&n); err != nil {
		return 0, domain.NewPersistence("count sales", err)
	}
	return n, nil
}

func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id); err != nil {
		return domain.NewPersistence("delete sale", err)
	}
	return nil
}
