// Package telemetry decora un CustomerRepository con spans OpenTelemetry y métricas Prometheus.
package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/fieldservice-api/internal/domain"
	"github.com/jhoicas/fieldservice-api/internal/domain/entity"
	"github.com/jhoicas/fieldservice-api/internal/domain/repository"
)

const spanPrefix = "customer_store."

var _ repository.CustomerRepository = (*InstrumentedRepository)(nil)

// InstrumentedRepository envuelve otro repositorio sin cambiar su semántica.
type InstrumentedRepository struct {
	next    repository.CustomerRepository
	tracer  trace.Tracer
	metrics *Metrics
	now     func() time.Time
}

// NewInstrumentedRepository construye el decorador.
func NewInstrumentedRepository(next repository.CustomerRepository, tracer trace.Tracer, metrics *Metrics) *InstrumentedRepository {
	return &InstrumentedRepository{next: next, tracer: tracer, metrics: metrics, now: time.Now}
}

func (r *InstrumentedRepository) Create(ctx context.Context, c *entity.Customer) error {
	return r.run(ctx, "create", func(ctx context.Context) error {
		return r.next.Create(ctx, c)
	}, attribute.String("customer.id", c.CustomerID), attribute.String("tenant.id", c.TenantID))
}

func (r *InstrumentedRepository) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.run(ctx, "get", func(ctx context.Context) error {
		var err error
		out, err = r.next.GetByID(ctx, id)
		return err
	}, attribute.String("customer.id", id))
	return out, err
}

func (r *InstrumentedRepository) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	err := r.run(ctx, "list", func(ctx context.Context) error {
		var err error
		out, err = r.next.ListByTenant(ctx, tenantID, limit)
		return err
	}, attribute.String("tenant.id", tenantID), attribute.Int("limit", limit))
	return out, err
}

func (r *InstrumentedRepository) SearchByTenant(ctx context.Context, tenantID, term string) ([]*entity.Customer, error) {
	var out []*entity.Customer
	err := r.run(ctx, "search", func(ctx context.Context) error {
		var err error
		out, err = r.next.SearchByTenant(ctx, tenantID, term)
		return err
	}, attribute.String("tenant.id", tenantID))
	return out, err
}

func (r *InstrumentedRepository) Update(ctx context.Context, id string, fields entity.CustomerFields, updatedAt int64) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.run(ctx, "update", func(ctx context.Context) error {
		var err error
		out, err = r.next.Update(ctx, id, fields, updatedAt)
		return err
	}, attribute.String("customer.id", id), attribute.Int("fields", len(fields.Present())))
	return out, err
}

func (r *InstrumentedRepository) Delete(ctx context.Context, id string) error {
	return r.run(ctx, "delete", func(ctx context.Context) error {
		return r.next.Delete(ctx, id)
	}, attribute.String("customer.id", id))
}

func (r *InstrumentedRepository) run(ctx context.Context, op string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := r.tracer.Start(ctx, spanPrefix+op, trace.WithAttributes(attrs...))
	defer span.End()

	start := r.now()
	err := fn(ctx)
	outcome := outcomeOf(err)
	r.metrics.observe(op, outcome, r.now().Sub(start).Seconds())

	span.SetAttributes(attribute.String("outcome", outcome))
	if err != nil {
		span.RecordError(err)
		// Un conflicto no es una falla del almacén.
		if outcome == OutcomeError {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	return err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrConflict):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}
