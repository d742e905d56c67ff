package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Resultados posibles de una operación del almacén.
const (
	OutcomeOK       = "ok"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics agrupa los colectores Prometheus del almacén de clientes.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics crea y registra los colectores. Si ya estaban registrados en reg, reutiliza los existentes.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "customer_store_operations_total",
		Help: "Operaciones del almacén de clientes por operación y resultado.",
	}, []string{"op", "outcome"})
	dur := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "customer_store_operation_duration_seconds",
		Help:    "Duración de las operaciones del almacén de clientes.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	var err error
	if ops, err = register(reg, ops); err != nil {
		return nil, err
	}
	if dur, err = register(reg, dur); err != nil {
		return nil, err
	}
	return &Metrics{operations: ops, duration: dur}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observe(op, outcome string, seconds float64) {
	m.operations.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(seconds)
}
