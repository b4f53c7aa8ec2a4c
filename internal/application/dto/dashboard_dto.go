package dto

// DashboardStats contadores del tablero principal.
type DashboardStats struct {
	SaleCount     int `json:"sale_count"`
	CustomerCount int `json:"customer_count"`
	ProductCount  int `json:"product_count"`
	UserCount     int `json:"user_count"`
}
