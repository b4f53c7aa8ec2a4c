package memory

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas en memoria.
type SaleRepo struct {
	s *Store
}

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sale.Quantity <= 0 {
		return domain.NewPersistence("insert sale", domain.NewValidation("product_quantity", "debe ser mayor que 0"))
	}
	r.s.data.sales[sale.ID] = *sale
	return nil
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sale, ok := r.s.data.sales[id]
	if !ok {
		return nil, nil
	}
	return &sale, nil
}

func (r *SaleRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) Update(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.sales[sale.ID]; !ok {
		return domain.NewNotFound(domain.EntitySale, sale.ID)
	}
	r.s.data.sales[sale.ID] = *sale
	return nil
}

func (r *SaleRepo) sorted() []*entity.Sale {
	list := make([]*entity.Sale, 0, len(r.s.data.sales))
	for _, s := range r.s.data.sales {
		s := s
		list = append(list, &s)
	}
	sortNewestFirst(list,
		func(s *entity.Sale) int64 { return s.CreatedAt.UnixNano() },
		func(s *entity.Sale) string { return s.ID })
	return list
}

func (r *SaleRepo) List(_ context.Context, limit, offset int) ([]*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return page(r.sorted(), limit, offset), nil
}

func (r *SaleRepo) ListAll(_ context.Context) ([]*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(), nil
}

func (r *SaleRepo) Search(_ context.Context, term string, limit int) ([]*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Sale
	for _, s := range r.sorted() {
		if contains(term, s.ProductName, s.CustomerName, s.CustomerEmail, s.UserName) {
			out = append(out, s)
		}
	}
	return page(out, limit, 0), nil
}

func (r *SaleRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.data.sales), nil
}

func (r *SaleRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.sales, id)
	return nil
}
