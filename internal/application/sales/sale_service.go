// Package sales contiene el registro de ventas: descuento de stock, snapshot de la venta y
// fusión del cliente, todo dentro de una única transacción.
package sales

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-api/internal/application/ports"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	"github.com/jhoicas/ventas-api/pkg/metrics"
)

// Origen de la venta (label de métricas).
const (
	OriginAPI    = "api"
	OriginImport = "import"
)

// RecordSaleInput datos de una venta nueva.
// UserName vacío toma el nombre del usuario autenticado.
type RecordSaleInput struct {
	ProductName string
	Quantity    int
	Customer    entity.Contact
	UserName    string
	Origin      string
}

// UpdateSaleInput corrección de una venta existente.
type UpdateSaleInput struct {
	ProductName  string
	Quantity     int
	CustomerName string
	UserName     string
}

// DeleteSaleOptions opciones al borrar una venta.
// Restock devuelve la cantidad vendida al producto; por defecto solo se borra el registro.
type DeleteSaleOptions struct {
	Restock bool
}

// SaleService servicio de transacciones de venta.
type SaleService struct {
	tx       ports.TxRunner
	saleRepo repository.SaleRepository
	merge    *CustomerMergeService
	log      zerolog.Logger
	now      func() time.Time
}

// NewSaleService construye el servicio. saleRepo se usa solo para lecturas fuera de transacción.
func NewSaleService(tx ports.TxRunner, saleRepo repository.SaleRepository, merge *CustomerMergeService, log zerolog.Logger) *SaleService {
	return &SaleService{tx: tx, saleRepo: saleRepo, merge: merge, log: log, now: time.Now}
}

func (in *RecordSaleInput) normalize(p ports.Principal) {
	in.ProductName = strings.TrimSpace(in.ProductName)
	in.Customer.Name = strings.TrimSpace(in.Customer.Name)
	in.Customer.Email = strings.TrimSpace(in.Customer.Email)
	in.Customer.Phone = strings.TrimSpace(in.Customer.Phone)
	in.UserName = strings.TrimSpace(in.UserName)
	if in.UserName == "" {
		in.UserName = p.Name
	}
	if in.Origin == "" {
		in.Origin = OriginAPI
	}
}

// Validate verifica los campos obligatorios antes de abrir la transacción.
func (in RecordSaleInput) Validate() error {
	switch {
	case in.ProductName == "":
		return domain.NewValidation("product_name", "requerido")
	case in.Quantity <= 0:
		return domain.NewValidation("product_quantity", "debe ser mayor que 0")
	case in.Customer.Name == "":
		return domain.NewValidation("customer_name", "requerido")
	case in.Customer.Email == "":
		return domain.NewValidation("customer_email", "requerido")
	case in.Customer.Phone == "":
		return domain.NewValidation("customer_phone", "requerido")
	case in.UserName == "":
		return domain.NewValidation("user_name", "requerido")
	}
	return nil
}

// RecordSale registra una venta: bloquea el producto, verifica y descuenta stock, guarda la
// venta y fusiona el cliente. Si cualquier paso falla no queda ningún efecto.
func (s *SaleService) RecordSale(ctx context.Context, p ports.Principal, in RecordSaleInput) (*entity.Sale, error) {
	in.normalize(p)
	if err := in.Validate(); err != nil {
		s.reject(err)
		return nil, err
	}

	var sale *entity.Sale
	err := s.tx.Run(ctx, func(productRepo repository.ProductRepository, saleRepo repository.SaleRepository, customerRepo repository.CustomerRepository) error {
		product, err := productRepo.GetByNameForUpdate(ctx, in.ProductName)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NewNotFound(domain.EntityProduct, in.ProductName)
		}
		if !product.HasStock(in.Quantity) {
			return &domain.InsufficientStockError{Product: product.Name, Requested: in.Quantity, Available: product.Quantity}
		}
		if err := productRepo.UpdateQuantity(ctx, product.ID, product.Quantity-in.Quantity); err != nil {
			return err
		}

		now := s.now()
		sale = &entity.Sale{
			ID:            uuid.New().String(),
			ProductName:   product.Name,
			Quantity:      in.Quantity,
			CustomerName:  in.Customer.Name,
			CustomerEmail: in.Customer.Email,
			CustomerPhone: in.Customer.Phone,
			UserName:      in.UserName,
			CreatedAt:     now,
		}
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		_, err = s.merge.MergeInTx(ctx, customerRepo, in.Customer, now)
		return err
	})
	if err != nil {
		s.reject(err)
		return nil, err
	}

	metrics.SalesRecordedTotal.WithLabelValues(in.Origin).Inc()
	s.log.Info().
		Str("sale_id", sale.ID).
		Str("product", sale.ProductName).
		Int("quantity", sale.Quantity).
		Str("customer_email", sale.CustomerEmail).
		Str("origin", in.Origin).
		Msg("venta registrada")
	return sale, nil
}

// UpdateSale corrige una venta en una sola transacción: devuelve la cantidad anterior al
// producto original (si aún existe), verifica el nuevo producto contra el stock restaurado,
// descuenta la nueva cantidad y reescribe la venta. Los productos se bloquean en orden de
// nombre para evitar interbloqueos entre correcciones concurrentes.
func (s *SaleService) UpdateSale(ctx context.Context, p ports.Principal, id string, in UpdateSaleInput) (*entity.Sale, error) {
	in.ProductName = strings.TrimSpace(in.ProductName)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.UserName = strings.TrimSpace(in.UserName)
	if in.UserName == "" {
		in.UserName = p.Name
	}
	switch {
	case in.ProductName == "":
		return nil, domain.NewValidation("product_name", "requerido")
	case in.Quantity <= 0:
		return nil, domain.NewValidation("product_quantity", "debe ser mayor que 0")
	case in.CustomerName == "":
		return nil, domain.NewValidation("customer_name", "requerido")
	}

	var sale *entity.Sale
	err := s.tx.Run(ctx, func(productRepo repository.ProductRepository, saleRepo repository.SaleRepository, _ repository.CustomerRepository) error {
		var err error
		sale, err = saleRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.NewNotFound(domain.EntitySale, id)
		}

		locked, err := lockProducts(ctx, productRepo, sale.ProductName, in.ProductName)
		if err != nil {
			return err
		}
		target := locked[in.ProductName]
		if target == nil {
			return domain.NewNotFound(domain.EntityProduct, in.ProductName)
		}

		previous := locked[sale.ProductName]
		available := target.Quantity
		switch {
		case previous == nil:
			s.log.Warn().Str("sale_id", sale.ID).Str("product", sale.ProductName).
				Msg("el producto original ya no existe, no se reintegra stock")
		case previous.ID == target.ID:
			available += sale.Quantity
		default:
			if err := productRepo.UpdateQuantity(ctx, previous.ID, previous.Quantity+sale.Quantity); err != nil {
				return err
			}
		}
		if available < in.Quantity {
			return &domain.InsufficientStockError{Product: target.Name, Requested: in.Quantity, Available: available}
		}
		if err := productRepo.UpdateQuantity(ctx, target.ID, available-in.Quantity); err != nil {
			return err
		}

		sale.ProductName = target.Name
		sale.Quantity = in.Quantity
		sale.CustomerName = in.CustomerName
		sale.UserName = in.UserName
		return saleRepo.Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("sale_id", sale.ID).Str("product", sale.ProductName).Int("quantity", sale.Quantity).Msg("venta corregida")
	return sale, nil
}

// lockProducts bloquea los productos indicados en orden de nombre y los devuelve por nombre.
// Los que no existen quedan fuera del mapa.
func lockProducts(ctx context.Context, productRepo repository.ProductRepository, names ...string) (map[string]*entity.Product, error) {
	unique := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			unique = append(unique, n)
		}
	}
	sort.Strings(unique)

	locked := make(map[string]*entity.Product, len(unique))
	for _, n := range unique {
		product, err := productRepo.GetByNameForUpdate(ctx, n)
		if err != nil {
			return nil, err
		}
		if product != nil {
			locked[n] = product
		}
	}
	return locked, nil
}

// DeleteSale borra una venta. Con opts.Restock la cantidad vuelve al producto en la misma transacción.
func (s *SaleService) DeleteSale(ctx context.Context, p ports.Principal, id string, opts DeleteSaleOptions) error {
	err := s.tx.Run(ctx, func(productRepo repository.ProductRepository, saleRepo repository.SaleRepository, _ repository.CustomerRepository) error {
		sale, err := saleRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.NewNotFound(domain.EntitySale, id)
		}
		if opts.Restock {
			product, err := productRepo.GetByNameForUpdate(ctx, sale.ProductName)
			if err != nil {
				return err
			}
			if product == nil {
				s.log.Warn().Str("sale_id", sale.ID).Str("product", sale.ProductName).
					Msg("el producto ya no existe, se borra la venta sin reintegrar stock")
			} else if err := productRepo.UpdateQuantity(ctx, product.ID, product.Quantity+sale.Quantity); err != nil {
				return err
			}
		}
		return saleRepo.Delete(ctx, sale.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("sale_id", id).Bool("restock", opts.Restock).Str("by", p.Name).Msg("venta eliminada")
	return nil
}

// GetSale obtiene una venta por ID.
func (s *SaleService) GetSale(ctx context.Context, id string) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.NewNotFound(domain.EntitySale, id)
	}
	return sale, nil
}

// ListSales lista ventas de la más reciente a la más antigua y devuelve el total.
func (s *SaleService) ListSales(ctx context.Context, limit, offset int) ([]*entity.Sale, int, error) {
	list, err := s.saleRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.saleRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// SearchSales busca ventas por producto, cliente o vendedor.
func (s *SaleService) SearchSales(ctx context.Context, term string, limit int) ([]*entity.Sale, error) {
	return s.saleRepo.Search(ctx, strings.TrimSpace(term), limit)
}

func (s *SaleService) reject(err error) {
	metrics.SalesRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrMergeFailed):
		return "merge_failed"
	default:
		return "persistence"
	}
}
