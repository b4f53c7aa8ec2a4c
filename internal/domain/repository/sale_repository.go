package repository

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para Sale.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetByIDForUpdate bloquea la fila de la venta; usar dentro de una transacción.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	Update(ctx context.Context, sale *entity.Sale) error
	List(ctx context.Context, limit, offset int) ([]*entity.Sale, error)
	ListAll(ctx context.Context) ([]*entity.Sale, error)
	Search(ctx context.Context, term string, limit int) ([]*entity.Sale, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}
