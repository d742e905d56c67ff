package customer

import (
	"time"

	"github.com/google/uuid"
)

const (
	defaultListLimit    = 50
	defaultMaxListLimit = 1000
	defaultStoreTimeout = 3 * time.Second
)

// Option configura un UseCase.
type Option func(*options)

type options struct {
	clock        func() time.Time
	newID        func() string
	storeTimeout time.Duration
	defaultLimit int
	maxLimit     int
}

func newOptions() *options {
	return &options{
		clock:        time.Now,
		newID:        func() string { return uuid.New().String() },
		storeTimeout: defaultStoreTimeout,
		defaultLimit: defaultListLimit,
		maxLimit:     defaultMaxListLimit,
	}
}

// WithClock reemplaza time.Now; útil en tests.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithIDGenerator reemplaza el generador de IDs (UUID v4 por defecto).
func WithIDGenerator(gen func() string) Option {
	return func(o *options) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithStoreTimeout fija el timeout aplicado a cada llamada al almacén. Valores <= 0 se ignoran.
func WithStoreTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.storeTimeout = d
		}
	}
}

// WithDefaultLimit fija el límite usado por ListByTenant cuando limit <= 0.
func WithDefaultLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.defaultLimit = n
		}
	}
}

// WithMaxLimit fija el tope superior de ListByTenant.
func WithMaxLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLimit = n
		}
	}
}
