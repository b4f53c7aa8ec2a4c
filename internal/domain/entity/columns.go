package entity

// Nombres de columna usados en importación y exportación. Una exportación sin ColID ni
// ColCreatedAt se puede volver a importar tal cual.
const (
	ColID               = "id"
	ColCreatedAt        = "created_at"
	ColProductName      = "product_name"
	ColPrice            = "price"
	ColProductQuantity  = "product_quantity"
	ColCustomerName     = "customer_name"
	ColCustomerEmail    = "customer_email"
	ColCustomerPhone    = "customer_phone"
	ColPaymentFrequency = "payment_frequency"
	ColUserName         = "user_name"
)

// ProductColumns columnas de un producto en orden de exportación.
func ProductColumns() []string {
	return []string{ColID, ColProductName, ColPrice, ColProductQuantity, ColCreatedAt}
}

// CustomerColumns columnas de un cliente en orden de exportación.
func CustomerColumns() []string {
	return []string{ColID, ColCustomerName, ColCustomerEmail, ColCustomerPhone, ColPaymentFrequency, ColCreatedAt}
}

// SaleColumns columnas de una venta en orden de exportación.
func SaleColumns() []string {
	return []string{ColID, ColProductName, ColProductQuantity, ColCustomerName, ColCustomerEmail, ColCustomerPhone, ColUserName, ColCreatedAt}
}

// ImportColumns quita las columnas de identidad y fecha.
func ImportColumns(cols []string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != ColID && c != ColCreatedAt {
			out = append(out, c)
		}
	}
	return out
}
