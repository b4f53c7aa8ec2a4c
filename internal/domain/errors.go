package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrParse             = errors.New("archivo mal formado")
	ErrSchema            = errors.New("el archivo no cumple el esquema")
	ErrPersistence       = errors.New("error de persistencia")
	ErrMergeFailed       = errors.New("no se pudo fusionar el cliente")
	ErrInvalidFormat     = errors.New("formato inválido")
)

// Entidades usadas en los mensajes de error.
const (
	EntityProduct  = "producto"
	EntityCustomer = "cliente"
	EntitySale     = "venta"
	EntityUser     = "usuario"
	EntityRole     = "rol"
)

// NotFoundError indica que la entidad buscada no existe.
// Coincide con ErrNotFound y, si es un producto, también con ErrProductNotFound.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s no encontrado: %s", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return true
	case ErrProductNotFound:
		return e.Entity == EntityProduct
	case ErrUserNotFound:
		return e.Entity == EntityUser
	}
	return false
}

// NewNotFound construye un NotFoundError.
func NewNotFound(entity, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}

// ValidationError campo faltante o con tipo/valor incorrecto.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("campo %q inválido: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidation construye un ValidationError.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError la cantidad pedida supera las existencias.
type InsufficientStockError struct {
	Product   string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %q: solicitado %d, disponible %d", e.Product, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ConflictError clave única duplicada (nombre de producto, email de cliente o usuario).
type ConflictError struct {
	Entity string
	Key    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s duplicado: %s", e.Entity, e.Key)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict || target == ErrDuplicate
}

// NewConflict construye un ConflictError.
func NewConflict(entity, key string) error {
	return &ConflictError{Entity: entity, Key: key}
}

// ParseError el archivo subido no se pudo leer como CSV/JSON.
type ParseError struct {
	Format string
	Line   int // 0 si se desconoce
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s mal formado (línea %d): %v", e.Format, e.Line, e.Err)
	}
	return fmt.Sprintf("%s mal formado: %v", e.Format, e.Err)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError columnas faltantes/sobrantes o una celda con tipo incorrecto.
// Row es la fila de datos (1 = primera fila después del encabezado), 0 si aplica al archivo.
type SchemaError struct {
	Missing    []string
	Unexpected []string
	Row        int
	Column     string
	Reason     string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "columnas faltantes: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "columnas no permitidas: "+strings.Join(e.Unexpected, ", "))
	}
	if e.Column != "" {
		if e.Row > 0 {
			parts = append(parts, fmt.Sprintf("fila %d, columna %q: %s", e.Row, e.Column, e.Reason))
		} else {
			parts = append(parts, fmt.Sprintf("columna %q: %s", e.Column, e.Reason))
		}
	}
	if len(parts) == 0 {
		return ErrSchema.Error()
	}
	return strings.Join(parts, "; ")
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// PersistenceError falla de la capa de almacenamiento, capturada en el punto de escritura.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistence envuelve err como PersistenceError. Devuelve nil si err es nil.
func NewPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// RowError error al aplicar una fila de una importación masiva (1 = primera fila de datos).
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("fila %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
