package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/jhoicas/fieldservice-api/internal/domain"
	"github.com/jhoicas/fieldservice-api/internal/domain/entity"
	"github.com/jhoicas/fieldservice-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo almacén en memoria para desarrollo local y tests. Seguro para uso concurrente.
// El orden de ListByTenant es el de inserción.
type CustomerRepo struct {
	mu    sync.RWMutex
	items map[string]entity.Customer
	order []string
}

// NewCustomerRepository construye un almacén vacío.
func NewCustomerRepository() *CustomerRepo {
	return &CustomerRepo{items: make(map[string]entity.Customer)}
}

// Create inserta el cliente si el ID no existe.
func (r *CustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError("create", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[customer.CustomerID]; ok {
		return domain.ErrConflict
	}
	r.items[customer.CustomerID] = *customer
	r.order = append(r.order, customer.CustomerID)
	return nil
}

// GetByID devuelve una copia del cliente o (nil, nil).
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError("get", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// ListByTenant devuelve hasta limit clientes del tenant.
func (r *CustomerRepo) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*entity.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError("list", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Customer, 0)
	for _, id := range r.order {
		if limit > 0 && len(out) >= limit {
			break
		}
		c, ok := r.items[id]
		if !ok || c.TenantID != tenantID {
			continue
		}
		out = append(out, &c)
	}
	return out, nil
}

// SearchByTenant filtra por tenant y substring (sensible a mayúsculas).
func (r *CustomerRepo) SearchByTenant(ctx context.Context, tenantID, term string) ([]*entity.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError("search", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Customer, 0)
	for _, id := range r.order {
		c, ok := r.items[id]
		if !ok || c.TenantID != tenantID {
			continue
		}
		if strings.Contains(c.FirstName, term) || strings.Contains(c.LastName, term) || strings.Contains(c.Email, term) {
			out = append(out, &c)
		}
	}
	return out, nil
}

// Update aplica los campos enviados y updatedAt de forma atómica.
func (r *CustomerRepo) Update(ctx context.Context, id string, fields entity.CustomerFields, updatedAt int64) (*entity.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError("update", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	fields.Apply(&c)
	c.UpdatedAt = updatedAt
	r.items[id] = c
	return &c, nil
}

// Delete elimina el cliente si existe.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError("delete", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return nil
	}
	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
