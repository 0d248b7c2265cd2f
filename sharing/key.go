package sharing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/on-the-ground/composable_go/sharing/blob"
	"github.com/on-the-ground/composable_go/sharing/kv"
)

// Key identifies a shared cell and how it is persisted. Keys are comparable
// by their string form: two keys with the same strategy kind and name address
// the same cell.
type Key[V any] struct {
	id       string
	strategy strategy
}

func (k Key[V]) String() string { return k.id }

// PartitionKey routes the key to a registry shard.
func (k Key[V]) PartitionKey() string { return k.id }

// strategy moves encoded values between a cell and its storage.
type strategy interface {
	// load reports found=false when nothing was persisted yet.
	load(ctx context.Context) (data []byte, found bool, err error)
	save(ctx context.Context, data []byte) error
	// debounce is the quiet period before a save; zero saves right away.
	debounce(r *Registry) time.Duration
	// seedDefault persists the default value when load finds nothing.
	seedDefault() bool
}

// InMemory keys a cell that lives only in the registry. It is never
// persisted and survives until the registry is closed.
func InMemory[V any](name string) Key[V] {
	return Key[V]{id: "memory:" + name}
}

// AppStorage keys a cell persisted in backend under name. Writes are saved
// asynchronously, coalescing bursts into the latest value, and the default
// is written on first access when backend has nothing for name.
func AppStorage[V any](name string, backend kv.Backend) Key[V] {
	return Key[V]{
		id:       "app:" + name,
		strategy: appStorage{name: name, backend: backend},
	}
}

// FileStorage keys a cell persisted as a whole JSON document at path.
// Saves are debounced; a debounce <= 0 uses the registry's configured
// file debounce. A missing or unreadable document yields the default.
func FileStorage[V any](path string, backend blob.Backend, debounce time.Duration) Key[V] {
	return Key[V]{
		id:       "file:" + path,
		strategy: fileStorage{path: path, backend: backend, quiet: debounce},
	}
}

type appStorage struct {
	name    string
	backend kv.Backend
}

func (a appStorage) load(ctx context.Context) ([]byte, bool, error) {
	return a.backend.Get(ctx, a.name)
}

func (a appStorage) save(ctx context.Context, data []byte) error {
	return a.backend.Set(ctx, a.name, data)
}

func (appStorage) debounce(*Registry) time.Duration { return 0 }
func (appStorage) seedDefault() bool                { return true }

type fileStorage struct {
	path    string
	backend blob.Backend
	quiet   time.Duration
}

func (f fileStorage) load(ctx context.Context) ([]byte, bool, error) {
	data, err := f.backend.Load(ctx, f.path)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", f.path, err)
	}
	return data, true, nil
}

func (f fileStorage) save(ctx context.Context, data []byte) error {
	return f.backend.Save(ctx, f.path, data)
}

func (f fileStorage) debounce(r *Registry) time.Duration {
	if f.quiet > 0 {
		return f.quiet
	}
	return r.fileDebounce
}

func (fileStorage) seedDefault() bool { return false }
