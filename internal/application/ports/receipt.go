package ports

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// ReceiptGenerator genera el comprobante PDF de una venta.
// product puede ser nil si el producto ya no existe (la venta conserva su snapshot).
type ReceiptGenerator interface {
	GenerateSaleReceipt(ctx context.Context, sale *entity.Sale, product *entity.Product) ([]byte, error)
}
