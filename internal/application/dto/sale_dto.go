package dto

import "time"

// CreateSaleRequest body para POST /api/sales.
// UserName es opcional: si va vacío se usa el nombre del usuario autenticado.
type CreateSaleRequest struct {
	ProductName   string `json:"product_name" validate:"required,max=200"`
	Quantity      int    `json:"product_quantity" validate:"required,gt=0"`
	CustomerName  string `json:"customer_name" validate:"required,max=200"`
	CustomerEmail string `json:"customer_email" validate:"required,email,max=200"`
	CustomerPhone string `json:"customer_phone" validate:"required,max=15"`
	UserName      string `json:"user_name" validate:"omitempty,max=200"`
}

// UpdateSaleRequest body para PUT /api/sales/:id (corrección de una venta).
type UpdateSaleRequest struct {
	ProductName  string `json:"product_name" validate:"required,max=200"`
	Quantity     int    `json:"product_quantity" validate:"required,gt=0"`
	CustomerName string `json:"customer_name" validate:"required,max=200"`
	UserName     string `json:"user_name" validate:"omitempty,max=200"`
}

// SaleResponse venta en respuestas.
type SaleResponse struct {
	ID            string    `json:"id"`
	ProductName   string    `json:"product_name"`
	Quantity      int       `json:"product_quantity"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	UserName      string    `json:"user_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
