package effects

import "context"

type namespaceKey struct{}

type scope struct {
	parent any
	ns     any
}

func withNamespace(ctx context.Context, ns any) context.Context {
	return context.WithValue(ctx, namespaceKey{}, scope{parent: ctx.Value(namespaceKey{}), ns: ns})
}

type registryKey struct {
	scope any
	id    any
}

func keyOf(ctx context.Context, id any) registryKey {
	return registryKey{scope: ctx.Value(namespaceKey{}), id: id}
}

type handle struct {
	cancel context.CancelFunc
}

// registry maps cancellation IDs to the tasks registered under them. It is
// owned by the executor and never locked.
type registry struct {
	entries map[registryKey]map[*handle]struct{}
}

func newRegistry() *registry {
	return &registry{entries: make(map[registryKey]map[*handle]struct{})}
}

func (r *registry) register(key registryKey, h *handle) {
	handles, ok := r.entries[key]
	if !ok {
		handles = make(map[*handle]struct{})
		r.entries[key] = handles
	}
	handles[h] = struct{}{}
}

// cancel cancels and deregisters every task under key and reports how many
// there were.
func (r *registry) cancel(key registryKey) int {
	handles := r.entries[key]
	delete(r.entries, key)
	for h := range handles {
		h.cancel()
	}
	return len(handles)
}

func (r *registry) remove(key registryKey, h *handle) {
	handles, ok := r.entries[key]
	if !ok {
		return
	}
	delete(handles, h)
	if len(handles) == 0 {
		delete(r.entries, key)
	}
}

func (r *registry) count(key registryKey) int {
	return len(r.entries[key])
}

func (r *registry) cancelAll() int {
	n := 0
	for key := range r.entries {
		n += r.cancel(key)
	}
	return n
}
