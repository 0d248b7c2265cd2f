package reducer

import (
	"context"
	"fmt"
	"reflect"

	"github.com/on-the-ground/composable_go/dependency"
	"github.com/on-the-ground/composable_go/effects"
)

// PresentationAction is either Presented, carrying an action for the presented
// child, or Dismiss.
type PresentationAction[CA any] interface {
	presentationAction(CA)
}

type Presented[CA any] struct {
	Action CA
}

type Dismiss[CA any] struct{}

func (Presented[CA]) presentationAction(CA) {}
func (Dismiss[CA]) presentationAction(CA)   {}

func Present[CA any](action CA) PresentationAction[CA] {
	return Presented[CA]{Action: action}
}

func Dismissed[CA any]() PresentationAction[CA] {
	return Dismiss[CA]{}
}

// Identifiable child states decide when a replacement counts as a new
// presentation. Other states are identified by their dynamic type, so
// swapping the variant of an interface-typed slot is a new presentation while
// editing the same variant is not.
type Identifiable interface {
	Identity() any
}

func identityOf[C any](c *C) any {
	var v any = *c
	if id, ok := v.(Identifiable); ok {
		return id.Identity()
	}
	return reflect.TypeOf(v)
}

// IfLet runs child on the optional slot toChild focuses on, before parent.
// Child effects are scoped to the presentation: they are cancelled when the
// slot is cleared or its identity changes, and may call dependency.Dismiss to
// clear the slot themselves.
func IfLet[S, A, C, CA any](
	parent Reducer[S, A],
	toChild func(*S) **C,
	path CasePath[A, PresentationAction[CA]],
	child Reducer[C, CA],
) Reducer[S, A] {
	tag := effects.NewToken(fmt.Sprintf("ifLet(%T)", *new(C)))
	dismiss := path.Embed(Dismiss[CA]{})

	return Reduce[S, A](func(state *S, action A) effects.Effect[A] {
		slot := toChild(state)
		before := *slot
		var beforeID any
		if before != nil {
			beforeID = identityOf(before)
		}

		var childEff effects.Effect[A]
		pa, routed := path.Extract(action)
		if presented, ok := pa.(Presented[CA]); routed && ok && before != nil {
			c := *before
			ce := child.Reduce(&c, presented.Action)
			*slot = &c

			id := effects.IDOf(tag, beforeID)
			childEff = effects.Map(ce, func(ca CA) A {
				return path.Embed(Presented[CA]{Action: ca})
			})
			childEff = effects.Provide(childEff, func(ctx context.Context, send effects.Sender[A]) context.Context {
				return dependency.WithDismiss(ctx, func() { send.Send(dismiss) })
			})
			childEff = effects.Namespace(childEff, id).Cancellable(id, false)
		}

		parentEff := parent.Reduce(state, action)
		if _, ok := pa.(Dismiss[CA]); routed && ok {
			*slot = nil
		}

		if before == nil {
			return effects.Merge(childEff, parentEff)
		}
		after := *slot
		if after != nil && identityOf(after) == beforeID {
			return effects.Merge(childEff, parentEff)
		}
		return effects.Merge(childEff, parentEff, effects.Cancel[A](effects.IDOf(tag, beforeID)))
	})
}
