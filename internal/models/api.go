package models

// ErrorResponse is the uniform error envelope for API failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
