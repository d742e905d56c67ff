package repository

import (
	"context"

	"github.com/jhoicas/fieldservice-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer (Record Store).
// El almacén es compartido entre tenants: no aplica aislamiento, eso lo hace la capa superior.
// Todo fallo de I/O se devuelve como *domain.StoreError.
type CustomerRepository interface {
	// Create escribe el cliente solo si su ID no existe; si existe devuelve domain.ErrConflict.
	Create(ctx context.Context, customer *entity.Customer) error
	// GetByID devuelve (nil, nil) si el cliente no existe.
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	// ListByTenant consulta el índice de tenant y devuelve hasta limit clientes.
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]*entity.Customer, error)
	// SearchByTenant recorre todo el almacén filtrando por tenant y por term (substring sensible a mayúsculas)
	// en firstName, lastName o email.
	SearchByTenant(ctx context.Context, tenantID, term string) ([]*entity.Customer, error)
	// Update escribe solo los campos enviados más updatedAt y devuelve el estado resultante del almacén.
	// Devuelve (nil, nil) si el cliente no existe.
	Update(ctx context.Context, id string, fields entity.CustomerFields, updatedAt int64) (*entity.Customer, error)
	// Delete borra por clave sin comprobar existencia.
	Delete(ctx context.Context, id string) error
}
