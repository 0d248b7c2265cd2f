package effectsdemo

import (
	"context"

	"github.com/on-the-ground/composable_go/casestudies/facts"
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/reducer"
)

type RefreshableState struct {
	Count int
	Fact  string
}

type RefreshableAction interface {
	refreshableAction()
}

type (
	RefreshCancelTapped    struct{}
	RefreshDecrementTapped struct{}
	RefreshIncrementTapped struct{}
	RefreshFactResponse    struct{ Result effects.Result[string] }
	Refresh                struct{}
)

func (RefreshCancelTapped) refreshableAction()    {}
func (RefreshDecrementTapped) refreshableAction() {}
func (RefreshIncrementTapped) refreshableAction() {}
func (RefreshFactResponse) refreshableAction()    {}
func (Refresh) refreshableAction()                {}

var refreshID = effects.NewToken("effectsdemo.refresh")

// Refreshable fetches a fact on Refresh. The Task returned by sending Refresh
// settles once the response was reduced, so a caller can show progress while
// waiting on it, or cancel it.
func Refreshable() reducer.Reducer[RefreshableState, RefreshableAction] {
	return reducer.Reduce[RefreshableState, RefreshableAction](func(state *RefreshableState, action RefreshableAction) effects.Effect[RefreshableAction] {
		switch action := action.(type) {
		case RefreshCancelTapped:
			return effects.Cancel[RefreshableAction](refreshID)

		case RefreshDecrementTapped:
			state.Count--
			return effects.None[RefreshableAction]()

		case RefreshIncrementTapped:
			state.Count++
			return effects.None[RefreshableAction]()

		case RefreshFactResponse:
			if fact, err := action.Result.Get(); err == nil {
				state.Fact = fact
			}
			return effects.None[RefreshableAction]()

		case Refresh:
			state.Fact = ""
			count := state.Count
			return effects.Try(
				func(ctx context.Context) (string, error) { return facts.Fetch(ctx, count) },
				func(r effects.Result[string]) RefreshableAction { return RefreshFactResponse{Result: r} },
			).Cancellable(refreshID, false)

		default:
			panic("exhaustive match fallback, refreshable action")
		}
	})
}
