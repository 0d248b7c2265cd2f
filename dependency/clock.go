package dependency

import (
	"context"
	"sync"
	"time"
)

// Clock is the time capability effects suspend on.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
	// Timer ticks every interval until ctx is done, then closes the channel.
	Timer(ctx context.Context, interval time.Duration) <-chan time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c SystemClock) Timer(ctx context.Context, interval time.Duration) <-chan time.Time {
	return tick(ctx, c, interval)
}

// ImmediateClock never suspends; Sleep only moves its notion of now forward.
type ImmediateClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewImmediateClock(start time.Time) *ImmediateClock {
	return &ImmediateClock{now: start}
}

func (c *ImmediateClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ImmediateClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

func (c *ImmediateClock) Timer(ctx context.Context, interval time.Duration) <-chan time.Time {
	return tick(ctx, c, interval)
}

// TestClock only moves when Advance is called.
type TestClock struct {
	mu       sync.Mutex
	now      time.Time
	sleepers []*sleeper
	changed  chan struct{}
}

type sleeper struct {
	until time.Time
	ctx   context.Context
	wake  chan struct{}
}

func NewTestClock(start time.Time) *TestClock {
	return &TestClock{now: start, changed: make(chan struct{})}
}

func (c *TestClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *TestClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	s := &sleeper{ctx: ctx, wake: make(chan struct{})}
	c.mu.Lock()
	s.until = c.now.Add(d)
	c.sleepers = append(c.sleepers, s)
	c.notifyLocked()
	c.mu.Unlock()

	select {
	case <-s.wake:
		return ctx.Err()
	case <-ctx.Done():
		c.mu.Lock()
		c.removeLocked(s)
		c.mu.Unlock()
		return ctx.Err()
	}
}

func (c *TestClock) Timer(ctx context.Context, interval time.Duration) <-chan time.Time {
	return tick(ctx, c, interval)
}

// Advance moves the clock forward by d and wakes every sleeper whose deadline
// has passed. A sleeper that goes back to sleep after waking needs another
// Advance; step timers one interval at a time.
func (c *TestClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	remaining := c.sleepers[:0]
	for _, s := range c.sleepers {
		if !s.until.After(c.now) {
			close(s.wake)
			continue
		}
		remaining = append(remaining, s)
	}
	for i := len(remaining); i < len(c.sleepers); i++ {
		c.sleepers[i] = nil
	}
	c.sleepers = remaining
	c.notifyLocked()
}

// BlockUntil waits until at least n live sleepers are suspended on the clock.
func (c *TestClock) BlockUntil(ctx context.Context, n int) error {
	for {
		c.mu.Lock()
		live := 0
		for _, s := range c.sleepers {
			if s.ctx.Err() == nil {
				live++
			}
		}
		changed := c.changed
		c.mu.Unlock()

		if live >= n {
			return nil
		}
		select {
		case <-changed:
		case <-time.After(time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *TestClock) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

func (c *TestClock) removeLocked(target *sleeper) {
	for i, s := range c.sleepers {
		if s == target {
			c.sleepers = append(c.sleepers[:i], c.sleepers[i+1:]...)
			c.notifyLocked()
			return
		}
	}
}

func tick(ctx context.Context, c Clock, interval time.Duration) <-chan time.Time {
	ch := make(chan time.Time)
	go func() {
		defer close(ch)
		for {
			if err := c.Sleep(ctx, interval); err != nil {
				return
			}
			select {
			case ch <- c.Now():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
