package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/on-the-ground/composable_go/casestudies/facts"
	"github.com/on-the-ground/composable_go/casestudies/shares"
	"github.com/on-the-ground/composable_go/casestudies/weather"
	"github.com/on-the-ground/composable_go/config"
	"github.com/on-the-ground/composable_go/dependency"
	"github.com/on-the-ground/composable_go/internal/storage"
	"github.com/on-the-ground/composable_go/metrics"
	"github.com/on-the-ground/composable_go/reducer"
	"github.com/on-the-ground/composable_go/sharing"
	"github.com/on-the-ground/composable_go/store"
)

// app is what every subcommand shares: settings, logger, metrics and the
// shared state registry.
type app struct {
	configPath string
	offline    bool

	cfg      config.Runtime
	logger   *zap.Logger
	metrics  *metrics.Collectors
	registry *sharing.Registry
	closers  []io.Closer
}

func (a *app) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := cfg.Log.Logger()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.metrics = metrics.New(metrics.WithNamespace(cfg.Metrics.Namespace))
	a.registry = sharing.NewRegistry(
		sharing.WithConfig(cfg),
		sharing.WithLogger(logger),
		sharing.WithMetrics(a.metrics),
		sharing.WithContext(ctx),
	)
	return nil
}

func (a *app) close(ctx context.Context) error {
	if a.registry == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := a.registry.Close(ctx)
	for _, c := range a.closers {
		err = multierr.Append(err, c.Close())
	}
	_ = a.logger.Sync()
	return err
}

// dependencies is the live bundle, or the offline one with --offline.
func (a *app) dependencies() dependency.Values {
	deps := dependency.Live()
	if a.offline {
		return deps.
			With(facts.Key, facts.Offline()).
			With(weather.Key, weather.Offline(weather.Cities...))
	}
	httpClient := &http.Client{Timeout: 10 * time.Second}
	return deps.
		With(facts.Key, facts.Live(httpClient, "")).
		With(weather.Key, weather.Live(httpClient, a.cfg.Weather.BaseURL, weather.DefaultForecastURL))
}

// traced logs every reduction of r in development mode.
func traced[S, A any](a *app, r reducer.Reducer[S, A]) reducer.Reducer[S, A] {
	if !a.cfg.Log.Development {
		return r
	}
	return reducer.Logged(r, a.logger)
}

func (a *app) storeOptions(name string) []store.Option {
	return []store.Option{
		store.WithName(name),
		store.WithConfig(a.cfg),
		store.WithLogger(a.logger),
		store.WithMetrics(a.metrics),
		store.WithDependencies(a.dependencies()),
	}
}

// openStats opens the shared stats kept in kind.
func (a *app) openStats(kind storage.Kind) (*sharing.Shared[shares.Stats], error) {
	key, closer, err := storage.Key[shares.Stats](a.cfg.Sharing, kind, "stats")
	if err != nil {
		return nil, fmt.Errorf("open stats: %w", err)
	}
	a.closers = append(a.closers, closer)
	return sharing.TryOpen(key, shares.Stats{}, sharing.In(a.registry))
}
