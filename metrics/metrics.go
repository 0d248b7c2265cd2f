// Package metrics exposes Store and shared-state activity to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/on-the-ground/composable_go/effects"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "composable").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for reduction duration.
	// Default: prometheus.ExponentialBuckets(0.00001, 4, 10)
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: a fresh registry, so several Stores per process never clash.
	Registry *prometheus.Registry
}

type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "composable",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
	}
}

// Collectors hold the metrics shared by every Store and shared cell wired to
// them. A nil *Collectors records nothing.
type Collectors struct {
	registry *prometheus.Registry

	actionsTotal     *prometheus.CounterVec
	reduceDuration   *prometheus.HistogramVec
	effectsStarted   *prometheus.CounterVec
	effectsInFlight  *prometheus.GaugeVec
	effectsFailed    *prometheus.CounterVec
	effectsCancelled *prometheus.CounterVec
	sharedWrites     *prometheus.CounterVec
	persistErrors    *prometheus.CounterVec
}

func New(opts ...Option) *Collectors {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	factory := promauto.With(config.Registry)

	return &Collectors{
		registry: config.Registry,

		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "actions_total",
			Help:        "Total number of actions reduced",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "action"}),

		reduceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reduce_duration_seconds",
			Help:        "Time spent inside the reducer per action",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"store"}),

		effectsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effects_started_total",
			Help:        "Total number of effect operations started",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		effectsInFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effects_in_flight",
			Help:        "Number of effect operations currently running",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		effectsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effects_failed_total",
			Help:        "Total number of effect operations that returned an uncaught error or panicked",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		effectsCancelled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effects_cancelled_total",
			Help:        "Total number of registered tasks cancelled",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		sharedWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "shared_writes_total",
			Help:        "Total number of writes committed to shared cells",
			ConstLabels: config.ConstLabels,
		}, []string{"key"}),

		persistErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "shared_persist_errors_total",
			Help:        "Total number of failed shared cell loads and saves",
			ConstLabels: config.ConstLabels,
		}, []string{"key", "op"}),
	}
}

func (c *Collectors) ObserveReduction(store, action string, d time.Duration) {
	if c == nil {
		return
	}
	c.actionsTotal.WithLabelValues(store, action).Inc()
	c.reduceDuration.WithLabelValues(store).Observe(d.Seconds())
}

func (c *Collectors) SharedWrite(key string) {
	if c == nil {
		return
	}
	c.sharedWrites.WithLabelValues(key).Inc()
}

func (c *Collectors) PersistError(key, op string) {
	if c == nil {
		return
	}
	c.persistErrors.WithLabelValues(key, op).Inc()
}

// Hooks adapts the collectors to the effect engine of the Store named store.
func (c *Collectors) Hooks(store string) effects.Hooks {
	if c == nil {
		return effects.Hooks{}
	}
	return effects.Hooks{
		EffectStarted: func(string) {
			c.effectsStarted.WithLabelValues(store).Inc()
			c.effectsInFlight.WithLabelValues(store).Inc()
		},
		EffectFinished: func(_ string, err error) {
			c.effectsInFlight.WithLabelValues(store).Dec()
			if err != nil && !errors.Is(err, context.Canceled) {
				c.effectsFailed.WithLabelValues(store).Inc()
			}
		},
		EffectsCancelled: func(n int) {
			c.effectsCancelled.WithLabelValues(store).Add(float64(n))
		},
	}
}

// Handler serves the collectors' registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}
