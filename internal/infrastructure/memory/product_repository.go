package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria.
type ProductRepo struct {
	s *Store
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if product.Quantity < 0 {
		return domain.NewPersistence("insert product", domain.NewValidation("product_quantity", "no puede ser negativa"))
	}
	for _, p := range r.s.data.products {
		if p.Name == product.Name {
			return domain.NewConflict(domain.EntityProduct, product.Name)
		}
	}
	r.s.data.products[product.ID] = *product
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) GetByName(_ context.Context, name string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.data.products {
		if p.Name == name {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

// GetByIDForUpdate en memoria el bloqueo lo da la serialización de transacciones.
func (r *ProductRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// GetByNameForUpdate en memoria el bloqueo lo da la serialización de transacciones.
func (r *ProductRepo) GetByNameForUpdate(ctx context.Context, name string) (*entity.Product, error) {
	return r.GetByName(ctx, name)
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.products[product.ID]; !ok {
		return domain.NewNotFound(domain.EntityProduct, product.ID)
	}
	if product.Quantity < 0 {
		return domain.NewPersistence("update product", domain.NewValidation("product_quantity", "no puede ser negativa"))
	}
	for id, p := range r.s.data.products {
		if id != product.ID && p.Name == product.Name {
			return domain.NewConflict(domain.EntityProduct, product.Name)
		}
	}
	r.s.data.products[product.ID] = *product
	return nil
}

func (r *ProductRepo) UpdateQuantity(_ context.Context, id string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.products[id]
	if !ok {
		return domain.NewNotFound(domain.EntityProduct, id)
	}
	if quantity < 0 {
		return domain.NewPersistence("update product quantity", domain.NewValidation("product_quantity", "no puede ser negativa"))
	}
	p.Quantity = quantity
	r.s.data.products[id] = p
	return nil
}

// sorted productos ordenados por nombre. Llamar con el lock tomado.
func (r *ProductRepo) sorted() []*entity.Product {
	list := make([]*entity.Product, 0, len(r.s.data.products))
	for _, p := range r.s.data.products {
		p := p
		list = append(list, &p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return page(r.sorted(), limit, offset), nil
}

func (r *ProductRepo) ListAll(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(), nil
}

func (r *ProductRepo) Search(_ context.Context, term string, limit int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Product
	for _, p := range r.sorted() {
		if contains(term, p.Name) {
			out = append(out, p)
		}
	}
	return page(out, limit, 0), nil
}

func (r *ProductRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.data.products), nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.products, id)
	return nil
}
