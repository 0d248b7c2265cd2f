package sharing

import (
	"context"
	"sync"
	"time"

	"github.com/on-the-ground/composable_go/dependency"
)

// writer saves the latest encoded value of one cell on its own goroutine.
// Values scheduled while a save or the debounce is pending replace each
// other; only the last one is written.
type writer struct {
	ctx   context.Context
	clock dependency.Clock
	delay time.Duration
	save  func(ctx context.Context, data []byte) error

	mu      sync.Mutex
	pending []byte
	dirty   bool
	touched time.Time
	urgent  bool
	running bool
	idle    chan struct{}
	cut     context.CancelFunc
	err     error
}

func newWriter(
	ctx context.Context,
	clock dependency.Clock,
	delay time.Duration,
	save func(context.Context, []byte) error,
) *writer {
	idle := make(chan struct{})
	close(idle)
	return &writer{ctx: ctx, clock: clock, delay: delay, save: save, idle: idle}
}

func (w *writer) schedule(data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = data
	w.dirty = true
	w.touched = w.clock.Now()
	if !w.running {
		w.running = true
		w.idle = make(chan struct{})
		go w.loop()
	}
}

func (w *writer) loop() {
	for {
		w.mu.Lock()
		if !w.dirty {
			w.running = false
			w.cut = nil
			close(w.idle)
			w.mu.Unlock()
			return
		}
		wait := w.delay - w.clock.Now().Sub(w.touched)
		if wait > 0 && !w.urgent && w.ctx.Err() == nil {
			sleepCtx, cut := context.WithCancel(w.ctx)
			w.cut = cut
			w.mu.Unlock()

			_ = w.clock.Sleep(sleepCtx, wait)
			cut()
			continue
		}
		data := w.pending
		w.dirty, w.urgent = false, false
		w.mu.Unlock()

		err := w.save(context.WithoutCancel(w.ctx), data)

		w.mu.Lock()
		w.err = err
		w.mu.Unlock()
	}
}

// flush skips any remaining debounce and waits until nothing is pending.
// It returns the error of the last save.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.urgent = true
		if w.cut != nil {
			w.cut()
		}
	}
	idle := w.idle
	w.mu.Unlock()

	select {
	case <-idle:
	case <-ctx.Done():
		return ctx.Err()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
