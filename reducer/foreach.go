package reducer

import (
	"context"
	"fmt"

	"github.com/on-the-ground/composable_go/dependency"
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/identified"
)

// ForEach routes element actions to the element of the array toElements
// focuses on, before parent. Actions for IDs no longer in the array are
// dropped. Each element's effects are scoped to its ID and cancelled once the
// element is removed.
func ForEach[S, A any, ID comparable, C, CA any](
	parent Reducer[S, A],
	toElements func(*S) *identified.Array[ID, C],
	path CasePath[A, identified.ElementAction[ID, CA]],
	child Reducer[C, CA],
) Reducer[S, A] {
	tag := effects.NewToken(fmt.Sprintf("forEach(%T)", *new(C)))

	return Reduce[S, A](func(state *S, action A) effects.Effect[A] {
		before := *toElements(state)

		var childEff effects.Effect[A]
		if ea, ok := path.Extract(action); ok {
			elems := toElements(state)
			if c, ok := elems.Get(ea.ID); ok {
				ce := child.Reduce(&c, ea.Action)
				elems.Update(ea.ID, c)

				elemID := ea.ID
				id := effects.IDOf(tag, elemID)
				childEff = effects.Map(ce, func(ca CA) A {
					return path.Embed(identified.Element(elemID, ca))
				})
				childEff = effects.Namespace(childEff, id).Cancellable(id, false)
			}
		}

		parentEff := parent.Reduce(state, action)

		after := toElements(state)
		effs := []effects.Effect[A]{childEff, parentEff}
		for _, removed := range removedIDs(before.IDs(), after.IDs()) {
			effs = append(effs, effects.Cancel[A](effects.IDOf(tag, removed)))
		}
		return effects.Merge(effs...)
	})
}

// ForEachStack is ForEach for navigation stacks. It also applies StackPush and
// StackPopFrom after parent ran, and lets element effects pop their own
// element through dependency.Dismiss.
func ForEachStack[S, A, C, CA any](
	parent Reducer[S, A],
	toStack func(*S) *identified.Stack[C],
	path CasePath[A, identified.StackAction[C, CA]],
	child Reducer[C, CA],
) Reducer[S, A] {
	tag := effects.NewToken(fmt.Sprintf("forEachStack(%T)", *new(C)))

	return Reduce[S, A](func(state *S, action A) effects.Effect[A] {
		before := *toStack(state)

		var childEff effects.Effect[A]
		sa, routed := path.Extract(action)
		if ea, ok := sa.(identified.StackElement[C, CA]); routed && ok {
			stack := toStack(state)
			if c, ok := stack.Get(ea.ID); ok {
				ce := child.Reduce(&c, ea.Action)
				stack.Update(ea.ID, c)

				elemID := ea.ID
				id := effects.IDOf(tag, elemID)
				pop := path.Embed(identified.StackPopFrom[C, CA]{ID: elemID})
				childEff = effects.Map(ce, func(ca CA) A {
					return path.Embed(identified.StackElement[C, CA]{ID: elemID, Action: ca})
				})
				childEff = effects.Provide(childEff, func(ctx context.Context, send effects.Sender[A]) context.Context {
					return dependency.WithDismiss(ctx, func() { send.Send(pop) })
				})
				childEff = effects.Namespace(childEff, id).Cancellable(id, false)
			}
		}

		parentEff := parent.Reduce(state, action)

		if routed {
			switch sa := sa.(type) {
			case identified.StackPush[C, CA]:
				toStack(state).Push(sa.ID, sa.State)
			case identified.StackPopFrom[C, CA]:
				toStack(state).PopFrom(sa.ID)
			case identified.StackElement[C, CA]:
			default:
				panic(fmt.Sprintf("exhaustive match fallback, stack action: %T", sa))
			}
		}

		// Slots rather than IDs, so an element replaced under a reused ID is
		// cancelled too.
		after := toStack(state)
		effs := []effects.Effect[A]{childEff, parentEff}
		for _, removed := range removedIDs(before.Slots(), after.Slots()) {
			effs = append(effs, effects.Cancel[A](effects.IDOf(tag, removed.ID)))
		}
		return effects.Merge(effs...)
	})
}

func removedIDs[ID comparable](before, after []ID) []ID {
	if len(before) == 0 {
		return nil
	}
	kept := make(map[ID]struct{}, len(after))
	for _, id := range after {
		kept[id] = struct{}{}
	}
	var removed []ID
	for _, id := range before {
		if _, ok := kept[id]; !ok {
			removed = append(removed, id)
		}
	}
	return removed
}
