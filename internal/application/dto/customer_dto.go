package dto

import "github.com/jhoicas/fieldservice-api/internal/domain/entity"

// CustomerListQuery parámetros de GET /api/customers.
// Search vacío lista; Limit 0 usa el límite por defecto.
type CustomerListQuery struct {
	Search string `query:"search"`
	Limit  int    `query:"limit"`
}

// CustomerListResponse respuesta de listado y búsqueda.
type CustomerListResponse struct {
	Items []*entity.Customer `json:"items"`
	Count int                `json:"count"`
}

// NewCustomerListResponse arma la respuesta; nunca devuelve items null.
func NewCustomerListResponse(list []*entity.Customer) CustomerListResponse {
	if list == nil {
		list = []*entity.Customer{}
	}
	return CustomerListResponse{Items: list, Count: len(list)}
}

// CustomerRequest documenta el cuerpo de POST/PUT/PATCH para swagger.
// El handler lee el cuerpo como objeto libre y lo normaliza, por eso acepta alias
// como first_name, zip_code, mobile_number o display_name.
type CustomerRequest struct {
	FirstName string `json:"firstName" example:"Alice"`
	LastName  string `json:"lastName" example:"Smith"`
	Email     string `json:"email" example:"alice@example.com"`
	Phone     string `json:"phone" example:"+57 300 000 0000"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Notes     string `json:"notes"`
}
