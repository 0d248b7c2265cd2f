package sharing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/on-the-ground/composable_go/config"
	"github.com/on-the-ground/composable_go/dependency"
	"github.com/on-the-ground/composable_go/effects/log"
	"github.com/on-the-ground/composable_go/internal/model"
	"github.com/on-the-ground/composable_go/metrics"
)

var (
	ErrTypeMismatch   = errors.New("shared key opened with a different value type")
	ErrRegistryClosed = errors.New("sharing registry closed")
)

// Registry owns the shared cells of a process, or of a test. Cells are
// spread over shards by the xxhash of their key.
type Registry struct {
	ctx          context.Context
	cancel       context.CancelFunc
	clock        dependency.Clock
	logger       *zap.Logger
	metrics      *metrics.Collectors
	fileDebounce time.Duration

	shards []*shard
	closed atomic.Bool
}

type shard struct {
	mu    sync.Mutex
	cells map[string]entry
}

// entry is the type-erased view of a *cell[V] held by a shard.
type entry interface {
	retain()
	release() (last bool)
	refs() int
	resident() bool
	flush(ctx context.Context) error
}

type RegistryOption func(*registryOptions)

type registryOptions struct {
	ctx     context.Context
	config  config.Runtime
	logger  *zap.Logger
	metrics *metrics.Collectors
}

func WithConfig(cfg config.Runtime) RegistryOption {
	return func(o *registryOptions) {
		o.config = cfg
	}
}

// WithLogger sets the logger for load and save failures. Default: no-op.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(o *registryOptions) {
		o.logger = logger
	}
}

func WithMetrics(c *metrics.Collectors) RegistryOption {
	return func(o *registryOptions) {
		o.metrics = c
	}
}

// WithContext sets the parent context of every load and save. Its dependency
// bundle supplies the clock that debounces file saves.
func WithContext(ctx context.Context) RegistryOption {
	return func(o *registryOptions) {
		o.ctx = ctx
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	o := registryOptions{
		ctx:    context.Background(),
		config: config.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	scope := o.config.SharingScope()
	ctx, cancel := context.WithCancel(o.ctx)
	ctx, _ = log.WithZapLogger(ctx, o.logger)

	r := &Registry{
		ctx:          ctx,
		cancel:       cancel,
		clock:        dependency.FromContext(ctx).Clock,
		logger:       o.logger,
		metrics:      o.metrics,
		fileDebounce: o.config.Sharing.FileDebounce,
		shards:       make([]*shard, scope.NumShards),
	}
	for i := range r.shards {
		r.shards[i] = &shard{cells: map[string]entry{}}
	}
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry { return NewRegistry() })

// Default is the process-wide registry used by Open without In.
func Default() *Registry {
	return defaultRegistry()
}

func (r *Registry) shardOf(key model.Partitionable) *shard {
	if len(r.shards) == 1 {
		return r.shards[0]
	}
	return r.shards[xxhash.Sum64String(key.PartitionKey())%uint64(len(r.shards))]
}

// acquire returns the live entry for id, creating it with create when absent.
// The returned entry has been retained.
func (r *Registry) acquire(key model.Partitionable, create func() entry) (entry, error) {
	if r.closed.Load() {
		return nil, ErrRegistryClosed
	}
	s := r.shardOf(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cells[key.PartitionKey()]
	if !ok {
		e = create()
		s.cells[key.PartitionKey()] = e
	}
	e.retain()
	return e, nil
}

// drop releases one reference on e. Persisted cells leave the registry with
// their last reference, after their pending save completed; in-memory cells
// stay until Close.
func (r *Registry) drop(key model.Partitionable, e entry) {
	s := r.shardOf(key)

	s.mu.Lock()
	last := e.release()
	s.mu.Unlock()
	if !last || e.resident() {
		return
	}

	if err := e.flush(r.ctx); err != nil {
		r.logger.Warn("flush on release failed", zap.String("key", key.PartitionKey()), zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cells[key.PartitionKey()] == e && e.refs() == 0 {
		delete(s.cells, key.PartitionKey())
	}
}

// Len counts the cells currently held.
func (r *Registry) Len() int {
	n := 0
	for _, s := range r.shards {
		s.mu.Lock()
		n += len(s.cells)
		s.mu.Unlock()
	}
	return n
}

// Flush waits for the pending saves of every cell.
func (r *Registry) Flush(ctx context.Context) error {
	var errs error
	for _, e := range r.entries() {
		errs = multierr.Append(errs, e.flush(ctx))
	}
	return errs
}

// Close flushes every cell and stops the registry. Open fails afterwards
// with ErrRegistryClosed.
func (r *Registry) Close(ctx context.Context) error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := r.Flush(ctx)
	r.cancel()
	for _, s := range r.shards {
		s.mu.Lock()
		s.cells = map[string]entry{}
		s.mu.Unlock()
	}
	if err != nil {
		return fmt.Errorf("close sharing registry: %w", err)
	}
	return nil
}

func (r *Registry) entries() []entry {
	var out []entry
	for _, s := range r.shards {
		s.mu.Lock()
		for _, e := range s.cells {
			out = append(out, e)
		}
		s.mu.Unlock()
	}
	return out
}
