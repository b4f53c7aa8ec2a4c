// Package export aplana entidades a registros planos para descargas CSV/JSON.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// Kind entidad a exportar.
type Kind string

const (
	KindProducts  Kind = "products"
	KindCustomers Kind = "customers"
	KindSales     Kind = "sales"
)

// Field par clave/valor de un registro.
type Field struct {
	Key   string
	Value any
}

// Record registro plano con las claves en el orden de las columnas.
type Record []Field

// MarshalJSON serializa el registro como objeto conservando el orden de las claves.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get devuelve el valor de la clave (nil si no está).
func (r Record) Get(key string) any {
	for _, f := range r {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Export resultado: todas las filas tienen exactamente Columns como claves.
type Export struct {
	Kind    Kind
	Columns []string
	Records []Record
}

// Service servicio de exportación (solo lectura).
type Service struct {
	products  repository.ProductRepository
	customers repository.CustomerRepository
	sales     repository.SaleRepository
}

// NewService construye el servicio.
func NewService(products repository.ProductRepository, customers repository.CustomerRepository, sales repository.SaleRepository) *Service {
	return &Service{products: products, customers: customers, sales: sales}
}

// ParseKind valida el nombre de la entidad.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindProducts, KindCustomers, KindSales:
		return k, nil
	}
	return "", domain.NewValidation("kind", fmt.Sprintf("entidad desconocida %q", s))
}

// Export lee todas las entidades del tipo pedido y las aplana.
func (s *Service) Export(ctx context.Context, kind Kind) (*Export, error) {
	switch kind {
	case KindProducts:
		list, err := s.products.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		out := &Export{Kind: kind, Columns: entity.ProductColumns(), Records: make([]Record, 0, len(list))}
		for _, p := range list {
			out.Records = append(out.Records, Record{
				{entity.ColID, p.ID},
				{entity.ColProductName, p.Name},
				{entity.ColPrice, p.Price},
				{entity.ColProductQuantity, p.Quantity},
				{entity.ColCreatedAt, timestamp(p.CreatedAt)},
			})
		}
		return out, nil
	case KindCustomers:
		list, err := s.customers.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		out := &Export{Kind: kind, Columns: entity.CustomerColumns(), Records: make([]Record, 0, len(list))}
		for _, c := range list {
			out.Records = append(out.Records, Record{
				{entity.ColID, c.ID},
				{entity.ColCustomerName, c.Name},
				{entity.ColCustomerEmail, c.Email},
				{entity.ColCustomerPhone, c.Phone},
				{entity.ColPaymentFrequency, c.PaymentFrequency},
				{entity.ColCreatedAt, timestamp(c.CreatedAt)},
			})
		}
		return out, nil
	case KindSales:
		list, err := s.sales.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		out := &Export{Kind: kind, Columns: entity.SaleColumns(), Records: make([]Record, 0, len(list))}
		for _, sale := range list {
			out.Records = append(out.Records, Record{
				{entity.ColID, sale.ID},
				{entity.ColProductName, sale.ProductName},
				{entity.ColProductQuantity, sale.Quantity},
				{entity.ColCustomerName, sale.CustomerName},
				{entity.ColCustomerEmail, sale.CustomerEmail},
				{entity.ColCustomerPhone, sale.CustomerPhone},
				{entity.ColUserName, sale.UserName},
				{entity.ColCreatedAt, timestamp(sale.CreatedAt)},
			})
		}
		return out, nil
	}
	return nil, domain.NewValidation("kind", fmt.Sprintf("entidad desconocida %q", kind))
}

// timestamp ISO-8601 en UTC.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
