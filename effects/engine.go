package effects

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/on-the-ground/composable_go/effects/log"
	"github.com/on-the-ground/composable_go/internal/executor"
)

var ErrStoreClosed = errors.New("store closed")

// Hooks observe the engine. Every field is optional.
type Hooks struct {
	EffectStarted    func(name string)
	EffectFinished   func(name string, err error)
	EffectsCancelled func(n int)
}

// Engine runs effects on behalf of one Store. Reductions and the cancellation
// registry live on the Store's executor; effect operations run on their own
// goroutines and funnel actions back through that executor.
type Engine[A any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	exec   *executor.Serial
	reduce func(action A) Effect[A]
	reg    *registry
	hooks  Hooks
	wg     sync.WaitGroup
}

type engineKey struct{}

type canceller interface {
	cancelFrom(ctx context.Context, id any) int
}

// NewEngine builds the engine of a Store. reduce is called on exec for every
// delivered action and returns the effect to start.
func NewEngine[A any](
	ctx context.Context,
	exec *executor.Serial,
	reduce func(action A) Effect[A],
	hooks Hooks,
) *Engine[A] {
	e := &Engine[A]{
		exec:   exec,
		reduce: reduce,
		reg:    newRegistry(),
		hooks:  hooks,
	}
	e.ctx, e.cancel = context.WithCancel(context.WithValue(ctx, engineKey{}, canceller(e)))
	return e
}

// Send reduces action on the executor and starts the resulting effect. It
// returns once the reduction is applied. Calling it from a reducer deadlocks.
func (e *Engine[A]) Send(action A) *Task {
	t := newTask(e.ctx)
	defer t.release()

	if !e.exec.Do(func() { e.deliver(action, t) }) {
		log.Effect(e.ctx, log.LogDebug, "action dropped, store closed", map[string]interface{}{
			"action": fmt.Sprintf("%T", action),
		})
	}
	return t
}

// deliver runs on the executor.
func (e *Engine[A]) deliver(action A, t *Task) {
	if e.ctx.Err() != nil {
		return
	}
	e.start(e.reduce(action), e.ctx, t, nil)
}

// InFlight counts the tasks registered under id in the root namespace.
func (e *Engine[A]) InFlight(id any) int {
	n := 0
	e.exec.Do(func() {
		n = e.reg.count(keyOf(e.ctx, id))
	})
	return n
}

// Context is cancelled when the engine closes.
func (e *Engine[A]) Context() context.Context {
	return e.ctx
}

// Close cancels every effect and waits for their goroutines to exit. The
// executor keeps running so in-flight sends can drain; the owner closes it
// afterwards.
func (e *Engine[A]) Close() {
	e.cancel()
	e.exec.Do(func() {
		if n := e.reg.cancelAll(); n > 0 {
			e.cancelled(n)
		}
	})
	e.wg.Wait()
}

func (e *Engine[A]) cancelFrom(ctx context.Context, id any) int {
	n := 0
	e.exec.Do(func() {
		if ctx.Err() != nil {
			return
		}
		if n = e.reg.cancel(keyOf(ctx, id)); n > 0 {
			e.cancelled(n)
		}
	})
	return n
}

func (e *Engine[A]) cancelled(n int) {
	if e.hooks.EffectsCancelled != nil {
		e.hooks.EffectsCancelled(n)
	}
}

// start runs on the executor. Every goroutine it spawns is counted in t, in
// each of groups and in the engine wait group.
func (e *Engine[A]) start(eff Effect[A], ctx context.Context, t *Task, groups []*group) {
	if e.ctx.Err() != nil || ctx.Err() != nil {
		return
	}

	switch eff.kind {
	case kindNone:
	case kindRun:
		e.spawn(ctx, t, groups, eff.name, func(ctx context.Context) error {
			s := e.newSender(ctx, t)
			err := eff.op(ctx, s)
			if err != nil && ctx.Err() == nil && eff.catch != nil {
				eff.catch(err, s)
				return nil
			}
			return err
		})
	case kindCancel:
		if n := e.reg.cancel(keyOf(ctx, eff.id)); n > 0 {
			e.cancelled(n)
		}
	case kindMerge:
		for _, child := range eff.children {
			e.start(child, ctx, t, groups)
		}
	case kindConcatenate:
		children := eff.children
		e.spawn(ctx, t, groups, "concatenate", func(ctx context.Context) error {
			for _, child := range children {
				if err := ctx.Err(); err != nil {
					return err
				}
				sub := newTask(t.ctx)
				started := e.exec.Do(func() { e.start(child, ctx, sub, groups) })
				sub.release()
				if !started {
					return ErrStoreClosed
				}
				<-sub.Done()
			}
			return nil
		})
	case kindCancellable:
		key := keyOf(ctx, eff.id)
		if eff.inFlight {
			if n := e.reg.cancel(key); n > 0 {
				e.cancelled(n)
			}
		}
		cctx, cancel := context.WithCancel(ctx)
		h := &handle{cancel: cancel}
		e.reg.register(key, h)
		g := newGroup(func(onExecutor bool) {
			cancel()
			if onExecutor {
				e.reg.remove(key, h)
				return
			}
			e.exec.Submit(func() { e.reg.remove(key, h) })
		})
		e.start(eff.children[0], cctx, t, append(groups[:len(groups):len(groups)], g))
		g.release(true)
	case kindNamespace:
		e.start(eff.children[0], withNamespace(ctx, eff.id), t, groups)
	case kindProvide:
		e.start(eff.children[0], eff.provide(ctx, e.newSender(ctx, t)), t, groups)
	default:
		panic(fmt.Sprintf("exhaustive match fallback, effect kind: %d", eff.kind))
	}
}

func (e *Engine[A]) spawn(
	ctx context.Context,
	t *Task,
	groups []*group,
	name string,
	fn func(ctx context.Context) error,
) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(t.ctx, cancel)

	t.add()
	for _, g := range groups {
		g.add()
	}
	e.wg.Add(1)
	if e.hooks.EffectStarted != nil {
		e.hooks.EffectStarted(name)
	}

	ready := make(chan struct{})
	go func() {
		var err error
		defer func() {
			stop()
			cancel()
			if e.hooks.EffectFinished != nil {
				e.hooks.EffectFinished(name, err)
			}
			for _, g := range groups {
				g.release(false)
			}
			t.release()
			e.wg.Done()
		}()
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in effect %s: %v", name, r)
				log.Effect(e.ctx, log.LogError, "panic in effect", map[string]interface{}{
					"effect": name,
					"error":  r,
				})
			}
		}()
		close(ready)

		err = fn(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil && errors.Is(err, ctx.Err()):
			log.Effect(e.ctx, log.LogDebug, "effect cancelled", map[string]interface{}{
				"effect": name,
			})
		default:
			log.Effect(e.ctx, log.LogError, "effect failed", map[string]interface{}{
				"effect": name,
				"error":  err,
			})
		}
	}()
	<-ready
}

// group counts the goroutines of one cancellable registration.
type group struct {
	mu      sync.Mutex
	pending int
	onZero  func(onExecutor bool)
}

func newGroup(onZero func(onExecutor bool)) *group {
	return &group{pending: 1, onZero: onZero}
}

func (g *group) add() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending++
}

func (g *group) release(onExecutor bool) {
	g.mu.Lock()
	g.pending--
	zero := g.pending == 0
	g.mu.Unlock()
	if zero {
		g.onZero(onExecutor)
	}
}

func (e *Engine[A]) newSender(ctx context.Context, t *Task) *sender[A] {
	return &sender[A]{engine: e, ctx: ctx, task: t}
}

type sender[A any] struct {
	engine   *Engine[A]
	ctx      context.Context
	task     *Task
	terminal atomic.Bool
}

func (s *sender[A]) Send(action A) {
	s.send(action, false)
}

func (s *sender[A]) Terminal(action A) {
	if s.ctx.Err() == nil {
		s.send(action, false)
		return
	}
	if s.terminal.CompareAndSwap(false, true) {
		s.send(action, true)
	}
}

func (s *sender[A]) send(action A, force bool) {
	e := s.engine
	e.exec.Do(func() {
		if !force && s.ctx.Err() != nil {
			log.Effect(e.ctx, log.LogDebug, "action dropped, effect cancelled", map[string]interface{}{
				"action": fmt.Sprintf("%T", action),
			})
			return
		}
		e.deliver(action, s.task)
	})
}

// CancelInFlight cancels the tasks registered under id from inside a running
// effect, resolving id in the effect's namespace, and returns how many it
// cancelled. It returns 0 when the calling effect was itself cancelled first.
// Never call it from a reducer.
func CancelInFlight(ctx context.Context, id any) int {
	c, ok := ctx.Value(engineKey{}).(canceller)
	if !ok {
		return 0
	}
	return c.cancelFrom(ctx, id)
}
