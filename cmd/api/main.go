package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/fieldservice-api/internal/application/customer"
	"github.com/jhoicas/fieldservice-api/internal/application/dto"
	"github.com/jhoicas/fieldservice-api/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/fieldservice-api/internal/interfaces/http"
	"github.com/jhoicas/fieldservice-api/pkg/config"
	"github.com/jhoicas/fieldservice-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := telemetry.NewMetrics(registry)
	if err != nil {
		log.Fatal().Err(err).Msg("registrar métricas")
	}

	ctx := context.Background()
	store, closeStore, err := newStore(ctx, cfg, log.WithStr("component", "customer_store"))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("inicializar almacén de clientes")
	}
	defer closeStore()

	instrumented := telemetry.NewInstrumentedRepository(store, otel.Tracer(cfg.App.Name), metrics)

	customerUC := customer.NewUseCase(instrumented,
		customer.WithStoreTimeout(cfg.Store.Timeout),
		customer.WithDefaultLimit(cfg.List.DefaultLimit),
		customer.WithMaxLimit(cfg.List.MaxLimit),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.AccessLog(log.Zerolog()))

	// Swagger UI en http://localhost:<port>/docs, solo si el documento existe.
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Field Service Customers API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("documento OpenAPI no encontrado, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Service: cfg.App.Name, Store: cfg.Store.Driver})
	})
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		CustomerUC: customerUC,
		Tenant: httpRouter.TenantConfig{
			Mode:      cfg.Auth.Mode,
			Header:    cfg.Auth.TenantHeader,
			JWTSecret: cfg.JWT.Secret,
			JWTIssuer: cfg.JWT.Issuer,
		},
		Logger: log.Zerolog(),
		Dev:    cfg.App.IsDevelopment(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
