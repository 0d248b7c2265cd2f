package effectsdemo

import (
	"context"

	"github.com/on-the-ground/composable_go/casestudies/facts"
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/reducer"
)

type CancellationState struct {
	Count                 int
	CurrentFact           string
	IsFactRequestInFlight bool
}

type CancellationAction interface {
	cancellationAction()
}

type (
	CancelTapped             struct{}
	StepperChanged           struct{ Value int }
	CancellationFactTapped   struct{}
	CancellationFactResponse struct{ Result effects.Result[string] }
)

func (CancelTapped) cancellationAction()             {}
func (StepperChanged) cancellationAction()           {}
func (CancellationFactTapped) cancellationAction()   {}
func (CancellationFactResponse) cancellationAction() {}

var factRequestID = effects.NewToken("effectsdemo.factRequest")

// Cancellation starts a fact request that the cancel button, or any change
// of the count, abandons. A cancelled request never reports back.
func Cancellation() reducer.Reducer[CancellationState, CancellationAction] {
	return reducer.Reduce[CancellationState, CancellationAction](func(state *CancellationState, action CancellationAction) effects.Effect[CancellationAction] {
		switch action := action.(type) {
		case CancelTapped:
			state.IsFactRequestInFlight = false
			return effects.Cancel[CancellationAction](factRequestID)

		case StepperChanged:
			state.Count = action.Value
			state.CurrentFact = ""
			state.IsFactRequestInFlight = false
			return effects.Cancel[CancellationAction](factRequestID)

		case CancellationFactTapped:
			state.CurrentFact = ""
			state.IsFactRequestInFlight = true
			count := state.Count
			return effects.Try(
				func(ctx context.Context) (string, error) { return facts.Fetch(ctx, count) },
				func(r effects.Result[string]) CancellationAction { return CancellationFactResponse{Result: r} },
			).Cancellable(factRequestID, false)

		case CancellationFactResponse:
			state.IsFactRequestInFlight = false
			state.CurrentFact, _ = action.Result.Get()
			return effects.None[CancellationAction]()

		default:
			panic("exhaustive match fallback, cancellation action")
		}
	})
}
