package customer

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/fieldservice-api/internal/domain"
	"github.com/jhoicas/fieldservice-api/internal/domain/entity"
	"github.com/jhoicas/fieldservice-api/internal/domain/repository"
)

// UseCase es el servicio de registros de clientes: el único componente que lee o escribe
// el almacén de clientes. Genera IDs, sella el tenant y arma las actualizaciones parciales.
//
// No comprueba el tenant en Get/Update/Delete: el llamador debe hacer fetch → autorizar → mutar.
// tenantId es inmutable tras la creación.
type UseCase struct {
	repo      repository.CustomerRepository
	validator *Validator
	opts      *options
}

// NewUseCase construye el caso de uso con el puerto de persistencia.
func NewUseCase(repo repository.CustomerRepository, opts ...Option) *UseCase {
	o := newOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &UseCase{repo: repo, validator: NewValidator(), opts: o}
}

// CreateFromPayload normaliza, valida y crea un cliente para tenantID.
// Cualquier tenantId del payload se ignora.
func (uc *UseCase) CreateFromPayload(ctx context.Context, tenantID string, raw map[string]any) (*entity.Customer, error) {
	fields, err := uc.validator.ValidateCreate(Normalize(raw, ModeCreate))
	if err != nil {
		return nil, err
	}
	return uc.Create(ctx, tenantID, fields)
}

// UpdateFromPayload normaliza y valida un payload parcial y actualiza el cliente.
// Devuelve (nil, nil) si el cliente no existe.
func (uc *UseCase) UpdateFromPayload(ctx context.Context, id string, raw map[string]any) (*entity.Customer, error) {
	fields, err := uc.validator.ValidateUpdate(Normalize(raw, ModeUpdate))
	if err != nil {
		return nil, err
	}
	return uc.Update(ctx, id, fields)
}

// ApplyPayload es UpdateFromPayload sobre un registro ya leído (y autorizado) por el llamador;
// no vuelve a consultar el almacén antes de escribir. current no puede ser nil.
func (uc *UseCase) ApplyPayload(ctx context.Context, current *entity.Customer, raw map[string]any) (*entity.Customer, error) {
	fields, err := uc.validator.ValidateUpdate(Normalize(raw, ModeUpdate))
	if err != nil {
		return nil, err
	}
	return uc.apply(ctx, current, fields)
}

// Create materializa el cliente con defaults, genera el ID y lo escribe con put-if-absent.
// Si el ID ya existe devuelve domain.ErrConflict.
func (uc *UseCase) Create(ctx context.Context, tenantID string, fields entity.CustomerFields) (*entity.Customer, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("create customer: tenant vacío: %w", domain.ErrUnauthorized)
	}
	now := uc.opts.clock().UnixMilli()
	c := &entity.Customer{
		CustomerID: uc.opts.newID(),
		TenantID:   tenantID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	fields.Apply(c)

	ctx, cancel := uc.storeCtx(ctx)
	defer cancel()
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get obtiene un cliente por ID. La ausencia no es error: devuelve (nil, nil).
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Customer, error) {
	ctx, cancel := uc.storeCtx(ctx)
	defer cancel()
	return uc.repo.GetByID(ctx, id)
}

// ListByTenant devuelve hasta limit clientes del tenant (default si limit <= 0, con tope máximo).
// Sin cursor: si el tenant tiene más clientes que limit, el resto no es alcanzable por esta vía.
// Los resultados se ordenan por createdAt dentro de la página; qué registros entran es decisión del almacén.
func (uc *UseCase) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*entity.Customer, error) {
	if limit <= 0 {
		limit = uc.opts.defaultLimit
	}
	if limit > uc.opts.maxLimit {
		limit = uc.opts.maxLimit
	}
	ctx, cancel := uc.storeCtx(ctx)
	defer cancel()
	list, err := uc.repo.ListByTenant(ctx, tenantID, limit)
	if err != nil {
		return nil, err
	}
	sortByCreatedAt(list)
	return list, nil
}

// SearchByTenant busca term como substring (sensible a mayúsculas) en firstName, lastName o email.
// Recorre todo el almacén: costo lineal en el número total de registros.
func (uc *UseCase) SearchByTenant(ctx context.Context, tenantID, term string) ([]*entity.Customer, error) {
	ctx, cancel := uc.storeCtx(ctx)
	defer cancel()
	list, err := uc.repo.SearchByTenant(ctx, tenantID, term)
	if err != nil {
		return nil, err
	}
	sortByCreatedAt(list)
	return list, nil
}

// Update aplica solo los campos enviados y refresca updatedAt. Sin campos no escribe nada
// y devuelve el registro actual. Devuelve (nil, nil) si el cliente no existe.
// El resultado es el estado que reporta el almacén, no una reconstrucción local.
func (uc *UseCase) Update(ctx context.Context, id string, fields entity.CustomerFields) (*entity.Customer, error) {
	current, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.apply(ctx, current, fields)
}

// apply escribe fields sobre current. Devuelve (nil, nil) si el registro desapareció.
func (uc *UseCase) apply(ctx context.Context, current *entity.Customer, fields entity.CustomerFields) (*entity.Customer, error) {
	if current == nil || fields.IsEmpty() {
		return current, nil
	}

	updatedAt := uc.opts.clock().UnixMilli()
	if updatedAt <= current.UpdatedAt {
		updatedAt = current.UpdatedAt + 1
	}

	ctx, cancel := uc.storeCtx(ctx)
	defer cancel()
	return uc.repo.Update(ctx, current.CustomerID, fields, updatedAt)
}

// Delete borra el cliente sin comprobar existencia (idempotente).
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	ctx, cancel := uc.storeCtx(ctx)
	defer cancel()
	return uc.repo.Delete(ctx, id)
}

func (uc *UseCase) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, uc.opts.storeTimeout)
}

func sortByCreatedAt(list []*entity.Customer) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt != list[j].CreatedAt {
			return list[i].CreatedAt < list[j].CreatedAt
		}
		return list[i].CustomerID < list[j].CustomerID
	})
}
