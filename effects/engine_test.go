package effects_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/on-the-ground/composable_go/dependency"
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/effects/log"
	"github.com/on-the-ground/composable_go/internal/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

type harness struct {
	t      *testing.T
	clock  *dependency.TestClock
	exec   *executor.Serial
	engine *effects.Engine[string]

	mu       sync.Mutex
	received []string
	recorded []string
}

func newHarness(t *testing.T, reduce func(h *harness, action string) effects.Effect[string]) *harness {
	t.Helper()
	h := &harness{t: t, clock: dependency.NewTestClock(epoch)}

	ctx := dependency.Into(context.Background(), dependency.Test(h.clock))
	ctx, endOfLog := log.WithTestLogger(ctx)
	h.exec = executor.NewSerial(ctx, 16)
	h.engine = effects.NewEngine(ctx, h.exec, func(action string) effects.Effect[string] {
		h.mu.Lock()
		h.received = append(h.received, action)
		h.mu.Unlock()
		return reduce(h, action)
	}, effects.Hooks{})

	t.Cleanup(func() {
		h.engine.Close()
		h.exec.Close()
		endOfLog()
	})
	return h
}

func (h *harness) actions() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.received...)
}

func (h *harness) record(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recorded = append(h.recorded, s)
}

func (h *harness) records() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.recorded...)
}

func (h *harness) blockUntil(n int) {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(h.t, h.clock.BlockUntil(ctx, n), "sleepers never suspended")
}

func waitTask(t *testing.T, task *effects.Task) {
	t.Helper()
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task never settled")
	}
}

func sleepThenSend(d time.Duration, action string) effects.Effect[string] {
	return effects.Run(func(ctx context.Context, send effects.Sender[string]) error {
		if err := dependency.FromContext(ctx).Clock.Sleep(ctx, d); err != nil {
			return err
		}
		send.Send(action)
		return nil
	})
}

func TestEngine_TaskSettlesAfterTransitiveEffects(t *testing.T) {
	h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
		switch action {
		case "start":
			return sleepThenSend(time.Second, "middle")
		case "middle":
			return sleepThenSend(time.Second, "end")
		}
		return effects.None[string]()
	})

	task := h.engine.Send("start")
	assert.False(t, task.IsSettled())

	h.blockUntil(1)
	h.clock.Advance(time.Second)
	h.blockUntil(1)
	assert.False(t, task.IsSettled())
	h.clock.Advance(time.Second)

	waitTask(t, task)
	assert.Equal(t, []string{"start", "middle", "end"}, h.actions())
}

func TestEngine_CancelBeforeSuspensionResolvesDropsDispatch(t *testing.T) {
	h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
		switch action {
		case "start":
			return sleepThenSend(time.Second, "late").Cancellable("timer", false)
		case "cancel":
			return effects.Cancel[string]("timer")
		}
		return effects.None[string]()
	})

	task := h.engine.Send("start")
	h.blockUntil(1)
	h.engine.Send("cancel")
	h.clock.Advance(time.Hour)

	waitTask(t, task)
	assert.Equal(t, []string{"start", "cancel"}, h.actions())
	assert.Zero(t, h.engine.InFlight("timer"))
}

func TestEngine_CancelInFlightKeepsOneTask(t *testing.T) {
	h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
		if action == "load" {
			return sleepThenSend(time.Second, "loaded").Cancellable("load", true)
		}
		return effects.None[string]()
	})

	first := h.engine.Send("load")
	second := h.engine.Send("load")

	assert.Equal(t, 1, h.engine.InFlight("load"))
	waitTask(t, first)

	h.blockUntil(1)
	h.clock.Advance(time.Second)
	waitTask(t, second)
	assert.Equal(t, []string{"load", "load", "loaded"}, h.actions())
	assert.Zero(t, h.engine.InFlight("load"))
}

func TestEngine_CancelIsIdempotent(t *testing.T) {
	h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
		switch action {
		case "start":
			return sleepThenSend(time.Second, "late").Cancellable("id", false)
		case "cancel":
			return effects.Cancel[string]("id")
		}
		return effects.None[string]()
	})

	task := h.engine.Send("start")
	for i := 0; i < 3; i++ {
		waitTask(t, h.engine.Send("cancel"))
	}
	waitTask(t, task)
	assert.Zero(t, h.engine.InFlight("id"))
	assert.Equal(t, []string{"start", "cancel", "cancel", "cancel"}, h.actions())
}

func TestEngine_ConcatenateWaitsForDispatchedWork(t *testing.T) {
	h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
		switch action {
		case "go":
			return effects.Concatenate(
				effects.Run(func(ctx context.Context, send effects.Sender[string]) error {
					if err := dependency.FromContext(ctx).Clock.Sleep(ctx, time.Second); err != nil {
						return err
					}
					h.record("first")
					send.Send("child")
					return nil
				}),
				effects.Run(func(ctx context.Context, send effects.Sender[string]) error {
					h.record("second")
					return nil
				}),
			)
		case "child":
			return effects.Run(func(ctx context.Context, send effects.Sender[string]) error {
				if err := dependency.FromContext(ctx).Clock.Sleep(ctx, time.Second); err != nil {
					return err
				}
				h.record("grandchild")
				return nil
			})
		}
		return effects.None[string]()
	})

	task := h.engine.Send("go")
	h.blockUntil(1)
	h.clock.Advance(time.Second)
	h.blockUntil(1)
	assert.Equal(t, []string{"first"}, h.records())
	h.clock.Advance(time.Second)

	waitTask(t, task)
	assert.Equal(t, []string{"first", "grandchild", "second"}, h.records())
}

func TestEngine_CancelledConcatenationStops(t *testing.T) {
	h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
		switch action {
		case "go":
			return effects.Concatenate(
				sleepThenSend(time.Second, "one"),
				effects.Send("two"),
			).Cancellable("chain", false)
		case "stop":
			return effects.Cancel[string]("chain")
		}
		return effects.None[string]()
	})

	task := h.engine.Send("go")
	h.blockUntil(1)
	h.engine.Send("stop")
	h.clock.Advance(time.Second)

	waitTask(t, task)
	assert.Equal(t, []string{"go", "stop"}, h.actions())
}

func TestEngine_TerminalDeliversOnceAfterCancellation(t *testing.T) {
	h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
		switch action {
		case "start":
			return effects.Run(func(ctx context.Context, send effects.Sender[string]) error {
				<-ctx.Done()
				send.Send("dropped")
				send.Terminal("final")
				send.Terminal("again")
				return nil
			}).Cancellable("stream", false)
		case "stop":
			return effects.Cancel[string]("stream")
		}
		return effects.None[string]()
	})

	task := h.engine.Send("start")
	h.engine.Send("stop")
	waitTask(t, task)
	assert.Equal(t, []string{"start", "stop", "final"}, h.actions())
}

func TestEngine_Debounce(t *testing.T) {
	h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
		var query string
		if _, err := fmt.Sscanf(action, "query:%s", &query); err != nil {
			return effects.None[string]()
		}
		fetch := effects.Run(func(ctx context.Context, send effects.Sender[string]) error {
			h.record(query)
			send.Send("result:" + query)
			return nil
		})
		return effects.Debounce(fetch, "search", 300*time.Millisecond)
	})

	first := h.engine.Send("query:sf")
	h.blockUntil(1)
	h.clock.Advance(100 * time.Millisecond)
	second := h.engine.Send("query:san")
	waitTask(t, first)

	h.blockUntil(1)
	h.clock.Advance(300 * time.Millisecond)
	waitTask(t, second)

	assert.Equal(t, []string{"san"}, h.records())
	assert.Equal(t, []string{"query:sf", "query:san", "result:san"}, h.actions())
}

func TestEngine_Timeout(t *testing.T) {
	tcs := []struct {
		name     string
		work     time.Duration
		expected []string
	}{
		{name: "work wins", work: time.Second, expected: []string{"start", "finished"}},
		{name: "timer wins", work: 3 * time.Second, expected: []string{"start", "timed out"}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
				if action == "start" {
					return effects.Timeout(sleepThenSend(tc.work, "finished"), "work", 2*time.Second, "timed out")
				}
				return effects.None[string]()
			})

			task := h.engine.Send("start")
			h.blockUntil(2)
			h.clock.Advance(time.Second)
			if tc.work > time.Second {
				h.clock.Advance(time.Second)
			}

			waitTask(t, task)
			assert.Equal(t, tc.expected, h.actions())
			assert.Zero(t, h.engine.InFlight("work"))
		})
	}
}

func TestCancelInFlight_CountsCancelledTasks(t *testing.T) {
	h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
		switch action {
		case "long":
			return effects.Run(func(ctx context.Context, send effects.Sender[string]) error {
				<-ctx.Done()
				return nil
			}).Cancellable("long", false)
		case "sweep":
			return effects.Run(func(ctx context.Context, send effects.Sender[string]) error {
				send.Send(fmt.Sprintf("first:%d", effects.CancelInFlight(ctx, "long")))
				send.Send(fmt.Sprintf("again:%d", effects.CancelInFlight(ctx, "long")))
				return nil
			})
		}
		return effects.None[string]()
	})

	long1 := h.engine.Send("long")
	long2 := h.engine.Send("long")
	require.Equal(t, 2, h.engine.InFlight("long"))

	waitTask(t, h.engine.Send("sweep"))
	waitTask(t, long1)
	waitTask(t, long2)
	assert.Equal(t, []string{"long", "long", "sweep", "first:2", "again:0"}, h.actions())
	assert.Zero(t, effects.CancelInFlight(context.Background(), "long"), "outside an engine")
}

func TestEngine_CatchConvertsFailureIntoAction(t *testing.T) {
	boom := errors.New("boom")
	h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
		switch action {
		case "fetch":
			return effects.Run(func(ctx context.Context, send effects.Sender[string]) error {
				return boom
			}, effects.Catch(func(err error, send effects.Sender[string]) {
				send.Send("failed: " + err.Error())
			}))
		case "try":
			return effects.Try(func(ctx context.Context) (int, error) {
				return 0, boom
			}, func(r effects.Result[int]) string {
				return fmt.Sprintf("result failed=%t", r.Failed())
			})
		}
		return effects.None[string]()
	})

	waitTask(t, h.engine.Send("fetch"))
	waitTask(t, h.engine.Send("try"))
	assert.Equal(t, []string{"fetch", "failed: boom", "try", "result failed=true"}, h.actions())
}

func TestEngine_PanicIsRecoveredAndTaskSettles(t *testing.T) {
	h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
		if action == "explode" {
			return effects.Run(func(ctx context.Context, send effects.Sender[string]) error {
				panic("kaboom")
			})
		}
		if action == "ping" {
			return effects.Send("pong")
		}
		return effects.None[string]()
	})

	waitTask(t, h.engine.Send("explode"))
	waitTask(t, h.engine.Send("ping"))
	assert.Equal(t, []string{"explode", "ping", "pong"}, h.actions())
}

func TestEngine_NamespacesIsolateIDs(t *testing.T) {
	h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
		switch action {
		case "start":
			return effects.Namespace(sleepThenSend(time.Second, "late").Cancellable("id", false), "row-1")
		case "cancel root":
			return effects.Cancel[string]("id")
		case "cancel row":
			return effects.Namespace(effects.Cancel[string]("id"), "row-1")
		}
		return effects.None[string]()
	})

	task := h.engine.Send("start")
	h.engine.Send("cancel root")
	h.blockUntil(1)

	h.engine.Send("cancel row")
	waitTask(t, task)
	assert.Equal(t, []string{"start", "cancel root", "cancel row"}, h.actions())
}

func TestEngine_MapLiftsChildActions(t *testing.T) {
	h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
		if action == "lift" {
			return effects.Map(effects.Send(42), func(n int) string { return fmt.Sprintf("child %d", n) })
		}
		return effects.None[string]()
	})

	waitTask(t, h.engine.Send("lift"))
	assert.Equal(t, []string{"lift", "child 42"}, h.actions())
}

func TestTask_CancelStopsTheChain(t *testing.T) {
	h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
		if action == "refresh" {
			return sleepThenSend(time.Second, "refreshed")
		}
		return effects.None[string]()
	})

	task := h.engine.Send("refresh")
	h.blockUntil(1)
	task.Cancel()
	waitTask(t, task)
	h.clock.Advance(time.Second)

	assert.True(t, task.IsCancelled())
	assert.Equal(t, []string{"refresh"}, h.actions())
	assert.NoError(t, task.Wait(context.Background()))
}

func TestEngine_CloseCancelsEffectsAndDropsSends(t *testing.T) {
	h := newHarness(t, func(h *harness, action string) effects.Effect[string] {
		if action == "start" {
			return sleepThenSend(time.Hour, "late")
		}
		return effects.None[string]()
	})

	task := h.engine.Send("start")
	h.blockUntil(1)

	h.engine.Close()
	waitTask(t, task)

	after := h.engine.Send("after")
	waitTask(t, after)
	assert.Equal(t, []string{"start"}, h.actions())
}
