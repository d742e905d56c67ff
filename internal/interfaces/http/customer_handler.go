package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/fieldservice-api/internal/application/customer"
	"github.com/jhoicas/fieldservice-api/internal/application/dto"
	"github.com/jhoicas/fieldservice-api/internal/domain"
	"github.com/jhoicas/fieldservice-api/internal/domain/entity"
)

// CustomerHandler maneja las peticiones HTTP de clientes.
// Get/Update/Delete siguen fetch → autorizar → mutar: el servicio no compara tenants.
// Entre el fetch y la escritura no hay atomicidad; tenantId nunca cambia, así que
// la autorización sigue siendo válida aunque el registro se modifique en medio.
type CustomerHandler struct {
	uc     *customer.UseCase
	errors errorWriter
}

// NewCustomerHandler construye el handler. dev=true expone el error crudo en respuestas 500.
func NewCustomerHandler(uc *customer.UseCase, log zerolog.Logger, dev bool) *CustomerHandler {
	return &CustomerHandler{uc: uc, errors: errorWriter{log: log, dev: dev}}
}

// Create godoc
// @Summary      Crear cliente
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        X-Tenant-Id  header  string               true  "Tenant"
// @Param        body         body    dto.CustomerRequest  true  "Datos del cliente (acepta alias)"
// @Success      201  {object}  entity.Customer
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/customers [post]
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return h.errors.write(c, domain.ErrUnauthorized)
	}
	raw, ok := parseObject(c)
	if !ok {
		return invalidBody(c)
	}
	created, err := h.uc.CreateFromPayload(c.UserContext(), tenantID, raw)
	if err != nil {
		return h.errors.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// List godoc
// @Summary      Listar o buscar clientes del tenant
// @Tags         customers
// @Produce      json
// @Param        X-Tenant-Id  header  string  true   "Tenant"
// @Param        search       query   string  false  "Substring en firstName, lastName o email (sensible a mayúsculas)"
// @Param        limit        query   int     false  "Máximo de resultados (solo sin search)"
// @Success      200  {object}  dto.CustomerListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/customers [get]
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return h.errors.write(c, domain.ErrUnauthorized)
	}
	var q dto.CustomerListQuery
	if err := c.QueryParser(&q); err != nil || q.Limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "limit debe ser un entero no negativo"})
	}

	var (
		list []*entity.Customer
		err  error
	)
	if term := strings.TrimSpace(q.Search); term != "" {
		list, err = h.uc.SearchByTenant(c.UserContext(), tenantID, term)
	} else {
		list, err = h.uc.ListByTenant(c.UserContext(), tenantID, q.Limit)
	}
	if err != nil {
		return h.errors.write(c, err)
	}
	return c.JSON(dto.NewCustomerListResponse(list))
}

// Get godoc
// @Summary      Obtener cliente por ID
// @Tags         customers
// @Produce      json
// @Param        X-Tenant-Id  header  string  true  "Tenant"
// @Param        id           path    string  true  "ID del cliente"
// @Success      200  {object}  entity.Customer
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	found, err := h.owned(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return h.errors.write(c, err)
	}
	return c.JSON(found)
}

// Update godoc
// @Summary      Actualizar cliente (parcial)
// @Description  Solo cambian los campos enviados; "" limpia un campo. PUT y PATCH son equivalentes.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        X-Tenant-Id  header  string               true  "Tenant"
// @Param        id           path    string               true  "ID del cliente"
// @Param        body         body    dto.CustomerRequest  true  "Campos a cambiar"
// @Success      200  {object}  entity.Customer
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customers/{id} [put]
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	raw, ok := parseObject(c)
	if !ok {
		return invalidBody(c)
	}
	current, err := h.owned(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return h.errors.write(c, err)
	}
	updated, err := h.uc.ApplyPayload(c.UserContext(), current, raw)
	if err != nil {
		return h.errors.write(c, err)
	}
	if updated == nil {
		// Borrado entre el fetch y el update.
		return h.errors.write(c, domain.ErrNotFound)
	}
	return c.JSON(updated)
}

// Delete godoc
// @Summary      Eliminar cliente
// @Tags         customers
// @Param        X-Tenant-Id  header  string  true  "Tenant"
// @Param        id           path    string  true  "ID del cliente"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customers/{id} [delete]
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.owned(c.UserContext(), GetTenantID(c), id); err != nil {
		return h.errors.write(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return h.errors.write(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// owned trae el cliente y verifica que pertenezca a tenantID.
// Ausente → ErrNotFound; de otro tenant → ErrForbidden.
func (h *CustomerHandler) owned(ctx context.Context, tenantID, id string) (*entity.Customer, error) {
	if tenantID == "" {
		return nil, domain.ErrUnauthorized
	}
	found, err := h.uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	if found.TenantID != tenantID {
		return nil, domain.ErrForbidden
	}
	return found, nil
}

// parseObject exige que el cuerpo sea un objeto JSON.
func parseObject(c *fiber.Ctx) (map[string]any, bool) {
	var raw map[string]any
	if err := c.App().Config().JSONDecoder(c.Body(), &raw); err != nil || raw == nil {
		return nil, false
	}
	return raw, true
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "el cuerpo debe ser un objeto JSON"})
}
