package bulkimport

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// productRow fila de producto validada.
type productRow struct {
	Name     string
	Price    int64
	Quantity int
}

// saleRow fila de venta validada.
type saleRow struct {
	ProductName string
	Quantity    int
	Customer    entity.Contact
	UserName    string
}

// checkColumns compara el conjunto de columnas presentes con el esperado.
func checkColumns(present, want []string, row int) error {
	wantSet := make(map[string]bool, len(want))
	for _, c := range want {
		wantSet[c] = true
	}
	seen := make(map[string]bool, len(present))
	var unexpected []string
	for _, c := range present {
		if seen[c] {
			return &domain.SchemaError{Row: row, Column: c, Reason: "columna duplicada"}
		}
		seen[c] = true
		if !wantSet[c] {
			unexpected = append(unexpected, c)
		}
	}
	var missing []string
	for _, c := range want {
		if !seen[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 && len(unexpected) == 0 {
		return nil
	}
	sort.Strings(unexpected)
	return &domain.SchemaError{Missing: missing, Unexpected: unexpected, Row: row}
}

// validate revisa el archivo completo antes de aplicar filas. CSV valida el encabezado una vez;
// JSON valida las claves de cada objeto.
func validate(target Target, t *table) ([]productRow, []saleRow, error) {
	want := target.Columns()
	if t.header != nil {
		if err := checkColumns(t.header, want, 0); err != nil {
			return nil, nil, err
		}
	}

	var products []productRow
	var sales []saleRow
	for i, raw := range t.rows {
		n := i + 1
		if t.header == nil {
			keys := make([]string, 0, len(raw.values))
			for k := range raw.values {
				keys = append(keys, k)
			}
			if err := checkColumns(keys, want, n); err != nil {
				return nil, nil, err
			}
		}
		c := cells{row: n, values: raw.values, text: t.header != nil}
		switch target {
		case TargetProducts:
			r := productRow{
				Name:     c.str(entity.ColProductName),
				Price:    c.integer64(entity.ColPrice),
				Quantity: c.integer(entity.ColProductQuantity),
			}
			if c.err == nil && r.Quantity < 0 {
				c.fail(entity.ColProductQuantity, "no puede ser negativa")
			}
			if c.err == nil && r.Price < 0 {
				c.fail(entity.ColPrice, "no puede ser negativo")
			}
			if c.err != nil {
				return nil, nil, c.err
			}
			products = append(products, r)
		case TargetSales:
			r := saleRow{
				ProductName: c.str(entity.ColProductName),
				Quantity:    c.integer(entity.ColProductQuantity),
				Customer: entity.Contact{
					Name:  c.str(entity.ColCustomerName),
					Email: c.str(entity.ColCustomerEmail),
					Phone: c.str(entity.ColCustomerPhone),
				},
				UserName: c.str(entity.ColUserName),
			}
			if c.err == nil && r.Quantity <= 0 {
				c.fail(entity.ColProductQuantity, "debe ser mayor que 0")
			}
			if c.err != nil {
				return nil, nil, c.err
			}
			sales = append(sales, r)
		}
	}
	return products, sales, nil
}

// cells lector tipado de una fila; guarda el primer error encontrado.
// En CSV (text) los enteros llegan como texto; en JSON deben ser números.
type cells struct {
	row    int
	values map[string]any
	text   bool
	err    error
}

func (c *cells) fail(col, reason string) {
	if c.err == nil {
		c.err = &domain.SchemaError{Row: c.row, Column: col, Reason: reason}
	}
}

// str lee una columna de texto obligatoria y no vacía.
func (c *cells) str(col string) string {
	s, ok := c.values[col].(string)
	if !ok {
		c.fail(col, "se espera texto")
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		c.fail(col, "no puede estar vacía")
	}
	return s
}

func (c *cells) integer64(col string) int64 {
	switch v := c.values[col].(type) {
	case string:
		if !c.text {
			break
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			c.fail(col, "se espera un número entero")
		}
		return n
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			c.fail(col, "se espera un número entero")
		}
		return n
	}
	c.fail(col, "se espera un número entero")
	return 0
}

func (c *cells) integer(col string) int {
	n := c.integer64(col)
	if int64(int32(n)) != n {
		c.fail(col, "fuera de rango")
		return 0
	}
	return int(n)
}
