package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/ventas-api/internal/domain"
)

// Format formato de descarga.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat acepta "csv" o "json"; cualquier otro valor es ErrInvalidFormat.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (se espera csv o json)", domain.ErrInvalidFormat, s)
}

// ContentType cabecera HTTP del formato.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Write codifica la exportación en el formato indicado.
func Write(w io.Writer, f Format, e *Export) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, e)
	case FormatJSON:
		return WriteJSON(w, e)
	}
	return fmt.Errorf("%w: %q", domain.ErrInvalidFormat, f)
}

// WriteCSV encabezado = claves del primer registro (Columns si no hay registros); filas en orden.
func WriteCSV(w io.Writer, e *Export) error {
	header := e.Columns
	if len(e.Records) > 0 {
		header = make([]string, 0, len(e.Records[0]))
		for _, f := range e.Records[0] {
			header = append(header, f.Key)
		}
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, r := range e.Records {
		for i, key := range header {
			v := r.Get(key)
			if v == nil {
				row[i] = ""
				continue
			}
			row[i] = fmt.Sprint(v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON arreglo de objetos con sangría.
func WriteJSON(w io.Writer, e *Export) error {
	records := e.Records
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
