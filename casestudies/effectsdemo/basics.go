// Package effectsdemo holds the effect case studies: a delayed decrement,
// a cancellable fact request, a refresh that callers await, and a
// long-living notification stream.
package effectsdemo

import (
	"context"
	"time"

	"github.com/on-the-ground/composable_go/casestudies/facts"
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/reducer"
)

type BasicsState struct {
	Count                 int
	IsFactRequestInFlight bool
	Fact                  string
}

type BasicsAction interface {
	basicsAction()
}

type (
	BasicsDecrementTapped  struct{}
	BasicsDecrementDelayed struct{}
	BasicsIncrementTapped  struct{}
	BasicsFactTapped       struct{}
	BasicsFactResponse     struct{ Result effects.Result[string] }
)

func (BasicsDecrementTapped) basicsAction()  {}
func (BasicsDecrementDelayed) basicsAction() {}
func (BasicsIncrementTapped) basicsAction()  {}
func (BasicsFactTapped) basicsAction()       {}
func (BasicsFactResponse) basicsAction()     {}

var delayID = effects.NewToken("effectsdemo.delay")

// Basics lets the count go negative for one second: a delayed effect brings
// it back up unless an increment cancels the delay first.
func Basics() reducer.Reducer[BasicsState, BasicsAction] {
	return reducer.Reduce[BasicsState, BasicsAction](func(state *BasicsState, action BasicsAction) effects.Effect[BasicsAction] {
		switch action := action.(type) {
		case BasicsDecrementTapped:
			state.Count--
			state.Fact = ""
			if state.Count >= 0 {
				return effects.None[BasicsAction]()
			}
			return effects.Concatenate(
				effects.Sleep[BasicsAction](time.Second),
				effects.Send[BasicsAction](BasicsDecrementDelayed{}),
			).Cancellable(delayID, false)

		case BasicsDecrementDelayed:
			if state.Count < 0 {
				state.Count++
			}
			return effects.None[BasicsAction]()

		case BasicsIncrementTapped:
			state.Count++
			state.Fact = ""
			if state.Count >= 0 {
				return effects.Cancel[BasicsAction](delayID)
			}
			return effects.None[BasicsAction]()

		case BasicsFactTapped:
			state.IsFactRequestInFlight = true
			state.Fact = ""
			count := state.Count
			return effects.Try(
				func(ctx context.Context) (string, error) { return facts.Fetch(ctx, count) },
				func(r effects.Result[string]) BasicsAction { return BasicsFactResponse{Result: r} },
			)

		case BasicsFactResponse:
			state.IsFactRequestInFlight = false
			state.Fact, _ = action.Result.Get()
			return effects.None[BasicsAction]()

		default:
			panic("exhaustive match fallback, basics action")
		}
	})
}
