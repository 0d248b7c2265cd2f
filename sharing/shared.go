package sharing

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/on-the-ground/composable_go/shared/helper"
)

// Shared is one holder's handle on a shared cell. Handles are safe for
// concurrent use; Release gives the reference back.
type Shared[V any] struct {
	key      Key[V]
	cell     *cell[V]
	registry *Registry
	released atomic.Bool
}

type OpenOption func(*openOptions)

type openOptions struct {
	registry *Registry
}

// In opens the key in r instead of the Default registry.
func In(r *Registry) OpenOption {
	return func(o *openOptions) {
		o.registry = r
	}
}

// TryOpen returns a handle on the cell for key, creating it with def when no
// holder has it open. Opening a key with another value type than its live
// cell fails with ErrTypeMismatch.
func TryOpen[V any](key Key[V], def V, opts ...OpenOption) (*Shared[V], error) {
	o := openOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = Default()
	}
	r := o.registry

	e, err := r.acquire(key, func() entry { return newCell(r, key, def) })
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	c, err := helper.GetTypedValueOf[*cell[V]](func() (any, error) { return e, nil })
	if err != nil {
		r.drop(key, e)
		return nil, fmt.Errorf("open %s as %T: %w", key, def, ErrTypeMismatch)
	}
	c.ensureLoaded()
	return &Shared[V]{key: key, cell: c, registry: r}, nil
}

// Open is the panic-on-failure variant of TryOpen.
func Open[V any](key Key[V], def V, opts ...OpenOption) *Shared[V] {
	s, err := TryOpen(key, def, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Shared[V]) Key() Key[V] { return s.key }

// Get returns the committed value.
func (s *Shared[V]) Get() V {
	return s.cell.get()
}

// Set commits v. Every subscriber of the key has observed v when Set returns.
func (s *Shared[V]) Set(v V) {
	s.cell.write(func(V) V { return v })
}

// Update commits the result of mutating a copy of the current value.
// Concurrent Updates of one key never lose each other's writes.
func (s *Shared[V]) Update(mutate func(*V)) {
	s.cell.write(func(v V) V {
		mutate(&v)
		return v
	})
}

// Subscribe calls fn for every later commit, synchronously within Set and in
// commit order. fn must not write to the same key. The returned func
// unsubscribes.
func (s *Shared[V]) Subscribe(fn func(Change[V])) func() {
	return s.cell.subscribe(fn)
}

// Flush waits until every commit made so far is persisted.
func (s *Shared[V]) Flush(ctx context.Context) error {
	return s.cell.flush(ctx)
}

// Release drops the handle's reference. The last release of a persisted key
// flushes it and evicts the cell; the next Open reloads from storage.
func (s *Shared[V]) Release() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	s.registry.drop(s.key, s.cell)
}
