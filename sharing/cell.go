package sharing

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/shared/helper"
)

const (
	saveAttempts = 3
	saveBackoff  = 50 * time.Millisecond
)

// Change describes one committed write of a shared cell.
type Change[V any] struct {
	Old V
	New V
	At  effects.TimeSpan
}

func (c Change[V]) TimeSpan() effects.TimeSpan {
	return c.At
}

type cell[V any] struct {
	key      string
	registry *Registry
	strategy strategy
	writer   *writer
	def      V

	loadOnce sync.Once

	// writeMu serializes writes with their notifications so subscribers see
	// changes in commit order.
	writeMu sync.Mutex

	mu      sync.Mutex
	value   V
	count   int
	subs    map[int]func(Change[V])
	nextSub int
}

func newCell[V any](r *Registry, key Key[V], def V) *cell[V] {
	c := &cell[V]{
		key:      key.id,
		registry: r,
		strategy: key.strategy,
		def:      def,
		value:    def,
		subs:     map[int]func(Change[V]){},
	}
	if c.strategy != nil {
		c.writer = newWriter(r.ctx, r.clock, c.strategy.debounce(r), c.save)
	}
	return c
}

func (c *cell[V]) retain() {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
}

func (c *cell[V]) release() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count--
	return c.count == 0
}

func (c *cell[V]) refs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *cell[V]) resident() bool { return c.strategy == nil }

func (c *cell[V]) flush(ctx context.Context) error {
	if c.writer == nil {
		return nil
	}
	return c.writer.flush(ctx)
}

// ensureLoaded reads the persisted value once. Missing or undecodable data
// leaves the default in place.
func (c *cell[V]) ensureLoaded() {
	c.loadOnce.Do(func() {
		if c.strategy == nil {
			return
		}
		data, found, err := c.strategy.load(c.registry.ctx)
		switch {
		case err != nil:
			c.failed("load", err)
			return
		case !found:
			if c.strategy.seedDefault() {
				c.persist(c.def)
			}
			return
		}

		var v V
		if err := json.Unmarshal(data, &v); err != nil {
			c.failed("decode", err)
			return
		}
		c.mu.Lock()
		c.value = v
		c.mu.Unlock()
	})
}

func (c *cell[V]) get() V {
	c.ensureLoaded()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// write commits next, notifies subscribers, then hands the value to the
// writer. mutate receives the current value and returns the next one.
func (c *cell[V]) write(mutate func(V) V) {
	c.ensureLoaded()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	old := c.value
	next := mutate(old)
	c.value = next
	subs := make([]func(Change[V]), 0, len(c.subs))
	for id := 0; id < c.nextSub; id++ {
		if fn, ok := c.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	c.mu.Unlock()

	c.registry.metrics.SharedWrite(c.key)
	change := Change[V]{Old: old, New: next, At: effects.Now()}
	for _, fn := range subs {
		fn(change)
	}
	c.persist(next)
}

func (c *cell[V]) subscribe(fn func(Change[V])) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// subscribeCurrent hands the committed value to current and subscribes fn
// with no write in between.
func (c *cell[V]) subscribeCurrent(fn func(Change[V]), current func(V)) func() {
	c.ensureLoaded()
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	current(c.get())
	return c.subscribe(fn)
}

func (c *cell[V]) persist(v V) {
	if c.writer == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		c.failed("encode", err)
		return
	}
	c.writer.schedule(data)
}

// save retries transient backend failures before reporting one.
func (c *cell[V]) save(ctx context.Context, data []byte) error {
	err := helper.Retry(ctx, saveAttempts, saveBackoff, func(ctx context.Context) error {
		return c.strategy.save(ctx, data)
	})
	if err != nil {
		c.failed("save", err)
		return err
	}
	c.registry.logger.Debug("shared value saved", zap.String("key", c.key), zap.Int("bytes", len(data)))
	return nil
}

func (c *cell[V]) failed(op string, err error) {
	c.registry.metrics.PersistError(c.key, op)
	c.registry.logger.Warn("shared value "+op+" failed",
		zap.String("key", c.key),
		zap.Error(err),
	)
}
