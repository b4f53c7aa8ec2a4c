package entity

import "time"

// Product representa un producto del inventario.
// Name es la clave de negocio (única); Price está en unidades menores (centavos).
type Product struct {
	ID        string
	Name      string
	Price     int64
	Quantity  int // existencias disponibles, nunca negativas
	CreatedAt time.Time
}

// HasStock indica si hay existencias suficientes para descontar qty.
func (p *Product) HasStock(qty int) bool {
	return p.Quantity >= qty
}
