package effects

import (
	"context"
	"fmt"
	"strings"
)

type kind int

const (
	kindNone kind = iota
	kindRun
	kindCancel
	kindMerge
	kindConcatenate
	kindCancellable
	kindNamespace
	kindProvide
)

// Operation is the asynchronous work behind a run effect. Returning an error
// that is not caught by Catch is logged and otherwise dropped.
type Operation[A any] func(ctx context.Context, send Sender[A]) error

// Sender delivers actions from a running effect back to the Store that
// started it.
type Sender[A any] interface {
	// Send enqueues action and returns once it has been reduced. Once the
	// effect is cancelled every call is dropped.
	Send(action A)
	// Terminal lets an effect that observed its own cancellation deliver one
	// final action. Later calls are dropped. Before cancellation it behaves
	// like Send.
	Terminal(action A)
}

// Effect describes work a reducer wants performed after a reduction. The zero
// value is None. Effects are inert values; only a Store runs them.
type Effect[A any] struct {
	kind     kind
	name     string
	op       Operation[A]
	catch    func(err error, send Sender[A])
	id       any
	inFlight bool
	children []Effect[A]
	provide  func(ctx context.Context, send Sender[A]) context.Context
}

// RunOption customizes a run effect.
type RunOption[A any] func(*Effect[A])

// Catch converts a failed operation into actions instead of logging it.
func Catch[A any](fn func(err error, send Sender[A])) RunOption[A] {
	return func(e *Effect[A]) {
		e.catch = fn
	}
}

// Named labels the run in descriptions and logs.
func Named[A any](name string) RunOption[A] {
	return func(e *Effect[A]) {
		e.name = name
	}
}

// None is the effect that does nothing.
func None[A any]() Effect[A] {
	return Effect[A]{}
}

// Run starts op on its own goroutine.
func Run[A any](op Operation[A], opts ...RunOption[A]) Effect[A] {
	e := Effect[A]{kind: kindRun, op: op, name: "run"}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Send feeds action back into the Store right after the current reduction.
func Send[A any](action A) Effect[A] {
	return Run(func(_ context.Context, send Sender[A]) error {
		send.Send(action)
		return nil
	}, Named[A](fmt.Sprintf("send(%T)", action)))
}

// Cancel cancels and deregisters every task registered under id. It takes
// effect before the next action is reduced and is a no-op when nothing is
// registered.
func Cancel[A any](id any) Effect[A] {
	return Effect[A]{kind: kindCancel, id: id}
}

// Merge starts every effect concurrently.
func Merge[A any](effects ...Effect[A]) Effect[A] {
	return combine(kindMerge, effects)
}

// Concatenate starts each effect once the previous one has finished. A
// concatenation whose context is cancelled stops before its next member.
func Concatenate[A any](effects ...Effect[A]) Effect[A] {
	return combine(kindConcatenate, effects)
}

func combine[A any](k kind, effects []Effect[A]) Effect[A] {
	children := make([]Effect[A], 0, len(effects))
	for _, e := range effects {
		switch {
		case e.kind == kindNone:
		case e.kind == k:
			children = append(children, e.children...)
		default:
			children = append(children, e)
		}
	}
	switch len(children) {
	case 0:
		return None[A]()
	case 1:
		return children[0]
	default:
		return Effect[A]{kind: k, children: children}
	}
}

// Cancellable registers the effect under id so Cancel(id) can stop it. With
// cancelInFlight every task already registered under id is cancelled first.
func (e Effect[A]) Cancellable(id any, cancelInFlight bool) Effect[A] {
	if e.kind == kindNone {
		return e
	}
	return Effect[A]{kind: kindCancellable, id: id, inFlight: cancelInFlight, children: []Effect[A]{e}}
}

// Merge is shorthand for Merge(e, others...).
func (e Effect[A]) Merge(others ...Effect[A]) Effect[A] {
	return Merge(append([]Effect[A]{e}, others...)...)
}

// Concatenate is shorthand for Concatenate(e, others...).
func (e Effect[A]) Concatenate(others ...Effect[A]) Effect[A] {
	return Concatenate(append([]Effect[A]{e}, others...)...)
}

// IsNone reports whether running e would do nothing.
func (e Effect[A]) IsNone() bool {
	return e.kind == kindNone
}

// Namespace scopes every cancellation ID used inside e, including IDs passed
// to CancelInFlight at run time, under ns. Two namespaces never share IDs.
func Namespace[A any](e Effect[A], ns any) Effect[A] {
	if e.kind == kindNone {
		return e
	}
	return Effect[A]{kind: kindNamespace, id: ns, children: []Effect[A]{e}}
}

// Provide decorates the context every operation inside e runs with. send
// delivers actions at the level of e.
func Provide[A any](e Effect[A], decorate func(ctx context.Context, send Sender[A]) context.Context) Effect[A] {
	if e.kind == kindNone {
		return e
	}
	return Effect[A]{kind: kindProvide, provide: decorate, children: []Effect[A]{e}}
}

// Map lifts an effect producing child actions into one producing parent actions.
func Map[A, B any](e Effect[A], f func(A) B) Effect[B] {
	out := Effect[B]{
		kind:     e.kind,
		name:     e.name,
		id:       e.id,
		inFlight: e.inFlight,
	}
	if e.op != nil {
		op := e.op
		out.op = func(ctx context.Context, send Sender[B]) error {
			return op(ctx, mappedSender[A, B]{inner: send, f: f})
		}
	}
	if e.catch != nil {
		catch := e.catch
		out.catch = func(err error, send Sender[B]) {
			catch(err, mappedSender[A, B]{inner: send, f: f})
		}
	}
	if e.provide != nil {
		provide := e.provide
		out.provide = func(ctx context.Context, send Sender[B]) context.Context {
			return provide(ctx, mappedSender[A, B]{inner: send, f: f})
		}
	}
	if len(e.children) > 0 {
		out.children = make([]Effect[B], len(e.children))
		for i, child := range e.children {
			out.children[i] = Map(child, f)
		}
	}
	return out
}

type mappedSender[A, B any] struct {
	inner Sender[B]
	f     func(A) B
}

func (s mappedSender[A, B]) Send(action A)     { s.inner.Send(s.f(action)) }
func (s mappedSender[A, B]) Terminal(action A) { s.inner.Terminal(s.f(action)) }

// String describes the effect tree. Equal reductions yield equal descriptions.
func (e Effect[A]) String() string {
	switch e.kind {
	case kindNone:
		return "none"
	case kindRun:
		return e.name
	case kindCancel:
		return fmt.Sprintf("cancel(%v)", e.id)
	case kindMerge:
		return "merge(" + joinChildren(e.children) + ")"
	case kindConcatenate:
		return "concatenate(" + joinChildren(e.children) + ")"
	case kindCancellable:
		return fmt.Sprintf("cancellable(%v, %t, %s)", e.id, e.inFlight, e.children[0])
	case kindNamespace:
		return fmt.Sprintf("namespace(%v, %s)", e.id, e.children[0])
	case kindProvide:
		return fmt.Sprintf("provide(%s)", e.children[0])
	default:
		panic(fmt.Sprintf("exhaustive match fallback, effect kind: %d", e.kind))
	}
}

func joinChildren[A any](children []Effect[A]) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
