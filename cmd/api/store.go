package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/jhoicas/fieldservice-api/internal/domain/repository"
	"github.com/jhoicas/fieldservice-api/internal/infrastructure/dynamodb"
	"github.com/jhoicas/fieldservice-api/internal/infrastructure/memory"
	"github.com/jhoicas/fieldservice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/fieldservice-api/pkg/config"
	"github.com/jhoicas/fieldservice-api/pkg/logger"
)

// newStore construye el almacén elegido por STORE_DRIVER. La función devuelta libera recursos.
func newStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.CustomerRepository, func(), error) {
	noop := func() {}

	switch cfg.Store.Driver {
	case config.StoreDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.DynamoDB.Region))
		if err != nil {
			return nil, noop, fmt.Errorf("cargar configuración AWS: %w", err)
		}
		opts := []dynamodb.Option{dynamodb.WithTenantIndex(cfg.DynamoDB.TenantIndex)}
		if cfg.DynamoDB.Endpoint != "" {
			opts = append(opts, dynamodb.WithEndpoint(cfg.DynamoDB.Endpoint))
		}
		repo := dynamodb.NewCustomerRepository(&awsCfg, cfg.DynamoDB.Table, opts...)
		if err := repo.Connect(); err != nil {
			return nil, noop, err
		}
		if err := repo.Init(ctx, cfg.DynamoDB.SkipSchemaCheck); err != nil {
			return nil, noop, err
		}
		log.Info().
			Str("table", cfg.DynamoDB.Table).
			Str("index", cfg.DynamoDB.TenantIndex).
			Bool("schema_check", !cfg.DynamoDB.SkipSchemaCheck).
			Msg("almacén DynamoDB listo")
		return repo, noop, nil

	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, noop, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.NewTxRunner(pool).Migrate(ctx); err != nil {
				pool.Close()
				return nil, noop, err
			}
		}
		log.Info().Bool("auto_migrate", cfg.DB.AutoMigrate).Msg("almacén PostgreSQL listo")
		return postgres.NewCustomerRepository(pool), pool.Close, nil

	case config.StoreMemory:
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		return memory.NewCustomerRepository(), noop, nil
	}
	return nil, noop, fmt.Errorf("STORE_DRIVER no soportado: %s", cfg.Store.Driver)
}
