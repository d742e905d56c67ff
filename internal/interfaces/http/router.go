package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/fieldservice-api/internal/application/customer"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CustomerUC *customer.UseCase
	Tenant     TenantConfig
	Logger     zerolog.Logger
	Dev        bool
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", TenantMiddleware(deps.Tenant))

	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.Logger, deps.Dev)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.Get)
	customers.Put("/:id", customerHandler.Update)
	customers.Patch("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)
}
