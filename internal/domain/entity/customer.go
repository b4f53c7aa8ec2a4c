package entity

import "time"

// Customer representa un cliente. Se crea o actualiza únicamente desde las ventas
// (fusión por email); el email es único.
type Customer struct {
	ID               string
	Name             string
	Email            string
	Phone            string // opcional
	PaymentFrequency int    // cantidad de compras registradas (>= 1)
	CreatedAt        time.Time
}

// Contact datos de contacto del cliente tal como llegan en una venta.
type Contact struct {
	Name  string
	Email string
	Phone string
}
