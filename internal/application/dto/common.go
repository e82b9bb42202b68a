package dto

// ErrorResponse es el sobre de error de la API. Code es estable (VALIDATION, NOT_FOUND,
// LOT_FINISHED, CONFLICT, UNAVAILABLE...); Message es legible para el operario.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
