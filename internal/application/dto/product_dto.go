package dto

import "time"

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Name     string `json:"product_name" validate:"required,min=1,max=200"`
	Price    int64  `json:"price" validate:"min=0"`
	Quantity int    `json:"product_quantity" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto (campos opcionales).
type UpdateProductRequest struct {
	Name     *string `json:"product_name" validate:"omitempty,min=1,max=200"`
	Price    *int64  `json:"price" validate:"omitempty,min=0"`
	Quantity *int    `json:"product_quantity" validate:"omitempty,min=0"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"product_name"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"product_quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
