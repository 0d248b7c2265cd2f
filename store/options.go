package store

import (
	"context"

	"github.com/on-the-ground/composable_go/config"
	"github.com/on-the-ground/composable_go/dependency"
	"github.com/on-the-ground/composable_go/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/on-the-ground/composable_go/store"

type options struct {
	ctx     context.Context
	deps    *dependency.Values
	logger  *zap.Logger
	config  config.Runtime
	metrics *metrics.Collectors
	tracer  trace.Tracer
	name    string
}

type Option func(*options)

// WithDependencies sets the bundle every effect of the Store runs with.
// Default: dependency.Live().
func WithDependencies(deps dependency.Values) Option {
	return func(o *options) {
		o.deps = &deps
	}
}

// WithLogger sets the logger of the Store and its effects. Default: no-op.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithConfig(cfg config.Runtime) Option {
	return func(o *options) {
		o.config = cfg
	}
}

func WithMetrics(c *metrics.Collectors) Option {
	return func(o *options) {
		o.metrics = c
	}
}

// WithTracer sets the tracer spanning each reduction. Default: the global
// tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithName labels the Store in logs, metrics and spans. Default: the
// configured store name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithContext sets the parent of every effect context. Cancelling it stops
// the Store's effects, but Close must still be called.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

func buildOptions(opts []Option) options {
	o := options{
		ctx:    context.Background(),
		config: config.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.deps == nil {
		live := dependency.Live()
		o.deps = &live
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	if o.name == "" {
		o.name = o.config.Store.Name
	}
	return o
}
