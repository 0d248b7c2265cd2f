package effects

import (
	"context"
	"sync"
)

// Task tracks every effect transitively spawned by one action. It settles once
// all of them finished, including effects of actions those effects sent.
type Task struct {
	mu        sync.Mutex
	pending   int
	cancelled bool
	done      chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
}

func newTask(parent context.Context) *Task {
	ctx, cancel := context.WithCancel(parent)
	return &Task{
		pending: 1,
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SettledTask returns a task that is already settled, e.g. for an action sent
// to a closed Store.
func SettledTask() *Task {
	t := newTask(context.Background())
	t.release()
	return t
}

func (t *Task) add() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending++
}

func (t *Task) release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending--
	if t.pending == 0 {
		close(t.done)
		t.cancel()
	}
}

// Done is closed once the task settled.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task settled or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel cancels every effect tracked by the task. Calling it on a settled
// task is a no-op.
func (t *Task) Cancel() {
	t.mu.Lock()
	if t.pending > 0 {
		t.cancelled = true
	}
	t.mu.Unlock()
	t.cancel()
}

func (t *Task) IsSettled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// IsCancelled reports whether Cancel was called before the task settled.
func (t *Task) IsCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}
