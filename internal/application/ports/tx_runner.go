package ports

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Garantiza atomicidad para ventas e importaciones.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		customerRepo repository.CustomerRepository,
	) error) error
}

// Principal usuario autenticado que invoca una operación. La autorización ya fue decidida
// por la capa HTTP; los servicios solo lo usan como dato (nombre del vendedor, auditoría).
type Principal struct {
	UserID string
	Name   string
	Roles  []string
}
