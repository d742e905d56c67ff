package dto

import "github.com/jhoicas/fieldservice-api/internal/domain"

// ErrorResponse cuerpo de error HTTP.
// Details solo viene en errores de validación; Error solo en APP_ENV=development.
type ErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details []domain.FieldError `json:"details,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// HealthResponse respuesta de GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Store   string `json:"store"`
}
