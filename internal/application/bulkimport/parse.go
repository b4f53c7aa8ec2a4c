package bulkimport

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/ventas-api/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// rawRow fila tal como viene en el archivo. Los valores son string (CSV) o los tipos de
// encoding/json con UseNumber (JSON).
type rawRow struct {
	line   int // línea del archivo donde empieza la fila (0 si se desconoce)
	values map[string]any
}

// table resultado del parseo. header solo existe en CSV.
type table struct {
	header []string
	rows   []rawRow
}

// normalizeEncoding quita el BOM y transcodifica desde Windows-1252 si el contenido no es UTF-8
// (exportaciones de hojas de cálculo en Windows).
func normalizeEncoding(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parse(format Format, data []byte) (*table, error) {
	data, err := normalizeEncoding(data)
	if err != nil {
		return nil, &domain.ParseError{Format: string(format), Err: fmt.Errorf("codificación: %w", err)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &domain.ParseError{Format: string(format), Err: errors.New("archivo vacío")}
	}
	switch format {
	case FormatCSV:
		return parseCSV(data)
	case FormatJSON:
		return parseJSON(data)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFormat, format)
}

func parseCSV(data []byte) (*table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = 0 // todas las filas con la misma cantidad de columnas que el encabezado

	header, err := r.Read()
	if err != nil {
		return nil, csvError(err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &table{header: header}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		line, _ := r.FieldPos(0)
		values := make(map[string]any, len(header))
		for i, col := range header {
			values[col] = record[i]
		}
		t.rows = append(t.rows, rawRow{line: line, values: values})
	}
	return t, nil
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &domain.ParseError{Format: string(FormatCSV), Line: pe.Line, Err: pe.Err}
	}
	return &domain.ParseError{Format: string(FormatCSV), Err: err}
}

func parseJSON(data []byte) (*table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var objects []map[string]any
	if err := dec.Decode(&objects); err != nil {
		return nil, jsonError(data, err)
	}
	if dec.More() {
		return nil, &domain.ParseError{Format: string(FormatJSON), Err: errors.New("contenido extra después del arreglo")}
	}

	t := &table{rows: make([]rawRow, 0, len(objects))}
	for i, obj := range objects {
		if obj == nil {
			return nil, &domain.ParseError{Format: string(FormatJSON), Err: fmt.Errorf("elemento %d: se espera un objeto", i+1)}
		}
		t.rows = append(t.rows, rawRow{values: obj})
	}
	return t, nil
}

func jsonError(data []byte, err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return &domain.ParseError{Format: string(FormatJSON), Line: lineAt(data, syntaxErr.Offset), Err: err}
	case errors.As(err, &typeErr):
		return &domain.ParseError{Format: string(FormatJSON), Line: lineAt(data, typeErr.Offset),
			Err: errors.New("se espera un arreglo de objetos planos")}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &domain.ParseError{Format: string(FormatJSON), Err: errors.New("fin de archivo inesperado")}
	}
	return &domain.ParseError{Format: string(FormatJSON), Err: err}
}

func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}
