// Package bulkimport carga productos o ventas desde archivos CSV/JSON.
//
// El archivo completo se parsea y valida antes de aplicar filas. Luego cada fila se aplica
// en su propia transacción y en orden; la primera fila que falla detiene la importación y
// las anteriores quedan confirmadas.
package bulkimport

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-api/internal/application/ports"
	"github.com/jhoicas/ventas-api/internal/application/sales"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/pkg/metrics"
)

// ProductUpserter aplica una fila de producto: suma existencias y sobrescribe el precio si el
// nombre ya existe, o crea el producto.
type ProductUpserter interface {
	UpsertByName(ctx context.Context, name string, quantity int, price int64) (*entity.Product, bool, error)
}

// SaleRecorder registra una venta con la misma lógica que el alta manual.
type SaleRecorder interface {
	RecordSale(ctx context.Context, p ports.Principal, in sales.RecordSaleInput) (*entity.Sale, error)
}

// Request archivo a importar.
type Request struct {
	Target Target
	Format Format
	Data   io.Reader
}

// Result resumen de la importación. Applied son las filas confirmadas, contadas desde el inicio.
type Result struct {
	Target  Target
	Format  Format
	Total   int
	Applied int
}

// Service servicio de importación masiva.
type Service struct {
	products ProductUpserter
	sales    SaleRecorder
	log      zerolog.Logger
}

// NewService construye el servicio.
func NewService(products ProductUpserter, sales SaleRecorder, log zerolog.Logger) *Service {
	return &Service{products: products, sales: sales, log: log}
}

// Import parsea, valida y aplica el archivo.
// Errores: ParseError o SchemaError (ninguna fila aplicada, Result nil); RowError con la fila
// que falló (Result indica cuántas se aplicaron antes).
func (s *Service) Import(ctx context.Context, p ports.Principal, req Request) (*Result, error) {
	if !req.Target.valid() {
		return nil, domain.NewValidation("target", fmt.Sprintf("destino desconocido %q", req.Target))
	}
	data, err := io.ReadAll(req.Data)
	if err != nil {
		return nil, &domain.ParseError{Format: string(req.Format), Err: err}
	}

	t, err := parse(req.Format, data)
	if err != nil {
		s.rejected(req.Target, "parse", err)
		return nil, err
	}
	productRows, saleRows, err := validate(req.Target, t)
	if err != nil {
		s.rejected(req.Target, "schema", err)
		return nil, err
	}

	res := &Result{Target: req.Target, Format: req.Format, Total: len(t.rows)}
	log := s.log.With().Str("target", string(req.Target)).Str("format", string(req.Format)).
		Str("user", p.Name).Int("rows", res.Total).Logger()
	log.Info().Msg("importación iniciada")

	for i := 0; i < res.Total; i++ {
		if err := ctx.Err(); err != nil {
			return res, &domain.RowError{Row: i + 1, Err: err}
		}
		var rowErr error
		switch req.Target {
		case TargetProducts:
			r := productRows[i]
			_, _, rowErr = s.products.UpsertByName(ctx, r.Name, r.Quantity, r.Price)
		case TargetSales:
			r := saleRows[i]
			_, rowErr = s.sales.RecordSale(ctx, p, sales.RecordSaleInput{
				ProductName: r.ProductName,
				Quantity:    r.Quantity,
				Customer:    r.Customer,
				UserName:    r.UserName,
				Origin:      sales.OriginImport,
			})
		}
		if rowErr != nil {
			metrics.ImportRowsTotal.WithLabelValues(string(req.Target), "failed").Inc()
			log.Warn().Err(rowErr).Int("row", i+1).Int("applied", res.Applied).Msg("importación detenida")
			return res, &domain.RowError{Row: i + 1, Err: rowErr}
		}
		res.Applied++
		metrics.ImportRowsTotal.WithLabelValues(string(req.Target), "applied").Inc()
	}

	log.Info().Int("applied", res.Applied).Msg("importación completada")
	return res, nil
}

func (s *Service) rejected(target Target, reason string, err error) {
	metrics.ImportsRejectedTotal.WithLabelValues(string(target), reason).Inc()
	s.log.Warn().Err(err).Str("target", string(target)).Msg("archivo de importación rechazado")
}
