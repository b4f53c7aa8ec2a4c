package dto

// ImportResponse resultado de una carga masiva.
// Si Error no está vacío, la fila Applied+1 falló y las siguientes no se aplicaron.
type ImportResponse struct {
	Target  string         `json:"target"`
	Format  string         `json:"format"`
	Total   int            `json:"total"`
	Applied int            `json:"applied"`
	Message string         `json:"message"`
	Error   *ErrorResponse `json:"error,omitempty"`
}
