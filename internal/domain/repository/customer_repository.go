package repository

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	// MergeByEmail crea el cliente con frecuencia 1 o, si el email ya existe, incrementa su
	// frecuencia de pago en 1. Es atómico; created indica si se insertó una fila nueva.
	MergeByEmail(ctx context.Context, customer *entity.Customer) (merged *entity.Customer, created bool, err error)
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	GetByEmail(ctx context.Context, email string) (*entity.Customer, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Customer, error)
	ListAll(ctx context.Context) ([]*entity.Customer, error)
	Search(ctx context.Context, term string, limit int) ([]*entity.Customer, error)
	Count(ctx context.Context) (int, error)
}
