package entity

import "time"

// Sale representa una venta registrada.
// Los campos de producto, cliente y vendedor son copias (snapshot) tomadas al momento
// de la venta: no cambian si luego se renombra el producto o el cliente.
type Sale struct {
	ID            string
	ProductName   string
	Quantity      int
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	UserName      string // vendedor que registró la venta
	CreatedAt     time.Time
}

// Contact devuelve los datos de contacto del cliente de la venta.
func (s *Sale) Contact() Contact {
	return Contact{Name: s.CustomerName, Email: s.CustomerEmail, Phone: s.CustomerPhone}
}
