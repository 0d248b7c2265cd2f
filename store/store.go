// Package store runs a reducer: it owns the state, reduces every action on one
// serialized executor and starts the effects the reducer returns.
package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/on-the-ground/composable_go/dependency"
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/effects/log"
	"github.com/on-the-ground/composable_go/internal/executor"
	"github.com/on-the-ground/composable_go/metrics"
	"github.com/on-the-ground/composable_go/reducer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Store is a handle on a running reducer, or a scoped view of one.
type Store[S, A any] struct {
	core      *core
	state     func() S
	send      func(A) *effects.Task
	subscribe func(func(S)) func()
}

// core is shared by a root Store and every view scoped from it.
type core struct {
	name      string
	inFlight  func(id any) int
	ctx       context.Context
	closeOnce sync.Once
	close     func()
}

type root[S, A any] struct {
	name    string
	ctx     context.Context
	reducer reducer.Reducer[S, A]
	logger  *zap.Logger
	metrics *metrics.Collectors
	tracer  trace.Tracer

	// working is only touched on the executor.
	working  S
	snapshot atomic.Pointer[S]
	subs     *subscribers[S]
}

// New starts a Store holding initial and reducing with r.
//
// The published state is a shallow copy of the working state. S must be
// value-like: slices and maps in it have to be replaced rather than edited in
// place, or kept in identified containers, which copy on write. Otherwise
// State may observe a partly applied reduction, and the rollback after a
// reducer panic keeps the partial edits.
func New[S, A any](initial S, r reducer.Reducer[S, A], opts ...Option) *Store[S, A] {
	o := buildOptions(opts)

	ctx := dependency.Into(o.ctx, *o.deps)
	ctx, endOfLog := log.WithZapLogger(ctx, o.logger.With(zap.String("store", o.name)))

	rt := &root[S, A]{
		name:    o.name,
		ctx:     ctx,
		reducer: r,
		logger:  log.From(ctx),
		metrics: o.metrics,
		tracer:  o.tracer,
		working: initial,
		subs:    newSubscribers[S](),
	}
	snapshot := initial
	rt.snapshot.Store(&snapshot)

	exec := executor.NewSerial(ctx, o.config.StoreScope().BufferSize)
	engine := effects.NewEngine(ctx, exec, rt.reduce, o.metrics.Hooks(o.name))

	c := &core{
		name:     o.name,
		inFlight: engine.InFlight,
		ctx:      engine.Context(),
	}
	c.close = func() {
		engine.Close()
		exec.Close()
		rt.subs.close()
		log.Write(rt.logger, log.LogDebug, "store closed", nil)
		endOfLog()
	}

	log.Write(rt.logger, log.LogDebug, "store started", map[string]interface{}{
		"executor": exec.ID,
	})

	return &Store[S, A]{
		core:      c,
		state:     rt.current,
		send:      engine.Send,
		subscribe: rt.subs.add(rt.current),
	}
}

func (rt *root[S, A]) current() S {
	return *rt.snapshot.Load()
}

// reduce runs on the executor.
func (rt *root[S, A]) reduce(action A) (eff effects.Effect[A]) {
	actionType := fmt.Sprintf("%T", action)
	start := time.Now()
	_, span := rt.tracer.Start(rt.ctx, "reduce", trace.WithAttributes(
		attribute.String("store", rt.name),
		attribute.String("action", actionType),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			rt.working = *rt.snapshot.Load()
			eff = effects.None[A]()
			span.RecordError(fmt.Errorf("reducer panic: %v", r))
			log.Write(rt.logger, log.LogError, "panic in reducer, action discarded", map[string]interface{}{
				"action": actionType,
				"error":  r,
			})
		}
	}()

	eff = rt.reducer.Reduce(&rt.working, action)

	snapshot := rt.working
	rt.snapshot.Store(&snapshot)
	rt.metrics.ObserveReduction(rt.name, actionType, time.Since(start))
	rt.subs.publish(snapshot)
	return eff
}

// Send reduces action and returns once the new state is published. The Task
// settles when every effect transitively spawned by action finished. After
// Close, actions are dropped and the Task is already settled.
//
// Send must not be called from inside a reducer.
func (s *Store[S, A]) Send(action A) *effects.Task {
	return s.send(action)
}

// State returns the state published by the last reduction.
func (s *Store[S, A]) State() S {
	return s.state()
}

// Subscribe calls fn with the current state and then after reductions, on a
// goroutine of its own. Intermediate states may be skipped when fn is slow;
// the latest one is always delivered.
func (s *Store[S, A]) Subscribe(fn func(S)) (unsubscribe func()) {
	return s.subscribe(fn)
}

// InFlight counts the tasks registered under id by effects that are not
// namespaced.
func (s *Store[S, A]) InFlight(id any) int {
	return s.core.inFlight(id)
}

func (s *Store[S, A]) Name() string {
	return s.core.name
}

// Done is closed once the Store is closed.
func (s *Store[S, A]) Done() <-chan struct{} {
	return s.core.ctx.Done()
}

// Close cancels every effect, waits for them to exit and stops the executor.
// Closing a scoped view closes the Store it was scoped from.
func (s *Store[S, A]) Close() error {
	s.core.closeOnce.Do(s.core.close)
	return nil
}

// Scope derives a view on part of parent's state. The view shares parent's
// executor, effects and teardown; its actions are embedded into parent actions.
func Scope[S, A, C, CA any](parent *Store[S, A], toChild func(S) C, embed func(CA) A) *Store[C, CA] {
	return &Store[C, CA]{
		core: parent.core,
		state: func() C {
			return toChild(parent.state())
		},
		send: func(ca CA) *effects.Task {
			return parent.send(embed(ca))
		},
		subscribe: func(fn func(C)) func() {
			return parent.subscribe(func(s S) { fn(toChild(s)) })
		},
	}
}
