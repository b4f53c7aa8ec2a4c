package bulkimport

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// Format formato del archivo subido.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat acepta "csv" o "json" (sin distinguir mayúsculas).
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q (se espera csv o json)", domain.ErrInvalidFormat, s)
}

// FormatFromFilename deduce el formato por la extensión (.csv / .json).
func FormatFromFilename(name string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: el archivo %q no tiene extensión", domain.ErrInvalidFormat, name)
	}
	return ParseFormat(ext)
}

// Target entidad destino de la importación.
type Target string

const (
	TargetProducts Target = "products"
	TargetSales    Target = "sales"
)

// Columns columnas exactas que debe traer un archivo para el destino.
func (t Target) Columns() []string {
	switch t {
	case TargetProducts:
		return entity.ImportColumns(entity.ProductColumns())
	case TargetSales:
		return entity.ImportColumns(entity.SaleColumns())
	}
	return nil
}

func (t Target) valid() bool {
	return t == TargetProducts || t == TargetSales
}
