package dto

import "time"

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"customer_name"`
	Email            string    `json:"customer_email"`
	Phone            string    `json:"customer_phone,omitempty"`
	PaymentFrequency int       `json:"payment_frequency"`
	CreatedAt        time.Time `json:"created_at"`
}

// CustomerListResponse lista paginada de clientes.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
