package kv

import (
	"context"
	"io"

	ristretto "github.com/dgraph-io/ristretto/v2"

	"github.com/on-the-ground/composable_go/effects/log"
)

const entryCost = 1

// Cached fronts a Backend with a ristretto read cache. Writes go through to
// the backend first and only then refresh the cache.
type Cached struct {
	backend Backend
	cache   *ristretto.Cache[string, []byte]
}

// NewCached keeps up to size recently read values of backend in memory.
func NewCached(backend Backend, size int) (*Cached, error) {
	if size <= 0 {
		size = 1
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: int64(size) * 10, // keys tracked for admission frequency.
		MaxCost:     int64(size),      // each entry costs entryCost.
		BufferItems: 64,               // number of keys per Get buffer.
	})
	if err != nil {
		return nil, err
	}
	return &Cached{backend: backend, cache: cache}, nil
}

func (c *Cached) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok := c.cache.Get(key); ok {
		return clone(v), true, nil
	}
	v, ok, err := c.backend.Get(ctx, key)
	if err != nil || !ok {
		return v, ok, err
	}
	if !c.cache.Set(key, clone(v), entryCost) {
		log.Effect(ctx, log.LogDebug, "kv cache rejected entry", map[string]interface{}{
			"key": key,
		})
	}
	return v, true, nil
}

func (c *Cached) Set(ctx context.Context, key string, value []byte) error {
	if err := c.backend.Set(ctx, key, value); err != nil {
		c.cache.Del(key)
		return err
	}
	c.cache.Set(key, clone(value), entryCost)
	// make the write visible to the next Get
	c.cache.Wait()
	return nil
}

// Close releases the cache and closes the wrapped backend when it is closable.
func (c *Cached) Close() error {
	c.cache.Close()
	if closer, ok := c.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
