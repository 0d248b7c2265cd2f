package dependency

import (
	"context"
	"errors"
	"fmt"

	"github.com/on-the-ground/composable_go/shared/helper"
)

var ErrNoDependency = errors.New("no dependency registered")

// Values is the dependency bundle threaded into a Store and its effects.
type Values struct {
	Clock Clock
	UUID  UUIDGenerator

	bindings map[string]any
}

// Live returns the production bundle: wall clock and random UUIDs.
func Live() Values {
	return Values{
		Clock: SystemClock{},
		UUID:  LiveUUID{},
	}
}

// Test returns a deterministic bundle driven by clock.
func Test(clock Clock) Values {
	return Values{
		Clock: clock,
		UUID:  NewIncrementingUUID(),
	}
}

// With returns a copy of v with key bound to val.
func (v Values) With(key string, val any) Values {
	bindings := make(map[string]any, len(v.bindings)+1)
	for k, b := range v.bindings {
		bindings[k] = b
	}
	bindings[key] = val
	v.bindings = bindings
	return v
}

// Value returns the raw binding for key.
func (v Values) Value(key string) (any, bool) {
	val, ok := v.bindings[key]
	return val, ok
}

func (v Values) normalized() Values {
	if v.Clock == nil {
		v.Clock = SystemClock{}
	}
	if v.UUID == nil {
		v.UUID = LiveUUID{}
	}
	return v
}

type valuesKey struct{}

type layer struct {
	values Values
	parent *layer
}

// Into installs v into ctx. Keys missing from v are looked up in the bundle
// ctx already carried, if any.
func Into(ctx context.Context, v Values) context.Context {
	parent, _ := ctx.Value(valuesKey{}).(*layer)
	return context.WithValue(ctx, valuesKey{}, &layer{values: v.normalized(), parent: parent})
}

// FromContext returns the innermost bundle carried by ctx, or Live.
func FromContext(ctx context.Context) Values {
	if l, ok := ctx.Value(valuesKey{}).(*layer); ok {
		return l.values
	}
	return Live()
}

// Lookup fetches a typed binding from the bundles carried by ctx, innermost first.
func Lookup[T any](ctx context.Context, key string) (T, error) {
	return helper.GetTypedValueOf[T](func() (any, error) {
		for l, _ := ctx.Value(valuesKey{}).(*layer); l != nil; l = l.parent {
			if val, ok := l.values.Value(key); ok {
				return val, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNoDependency, key)
	})
}

// MustLookup is the panic-on-failure variant of Lookup.
func MustLookup[T any](ctx context.Context, key string) T {
	return helper.MustGetTypedValue[T](func() (any, error) {
		return Lookup[T](ctx, key)
	})
}
