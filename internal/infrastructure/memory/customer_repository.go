package memory

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo clientes en memoria.
type CustomerRepo struct {
	s *Store
}

func (r *CustomerRepo) MergeByEmail(_ context.Context, customer *entity.Customer) (*entity.Customer, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.data.customers {
		if c.Email == customer.Email {
			c.PaymentFrequency++
			r.s.data.customers[id] = c
			return &c, false, nil
		}
	}
	c := *customer
	r.s.data.customers[c.ID] = c
	return &c, true, nil
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.data.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CustomerRepo) GetByEmail(_ context.Context, email string) (*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.data.customers {
		if c.Email == email {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r *CustomerRepo) sorted() []*entity.Customer {
	list := make([]*entity.Customer, 0, len(r.s.data.customers))
	for _, c := range r.s.data.customers {
		c := c
		list = append(list, &c)
	}
	sortNewestFirst(list,
		func(c *entity.Customer) int64 { return c.CreatedAt.UnixNano() },
		func(c *entity.Customer) string { return c.ID })
	return list
}

func (r *CustomerRepo) List(_ context.Context, limit, offset int) ([]*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return page(r.sorted(), limit, offset), nil
}

func (r *CustomerRepo) ListAll(_ context.Context) ([]*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(), nil
}

func (r *CustomerRepo) Search(_ context.Context, term string, limit int) ([]*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Customer
	for _, c := range r.sorted() {
		if contains(term, c.Name, c.Email, c.Phone) {
			out = append(out, c)
		}
	}
	return page(out, limit, 0), nil
}

func (r *CustomerRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.data.customers), nil
}
