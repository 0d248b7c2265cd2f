// Package counter holds the getting-started case studies: a counter with a
// number fact and a timer, two counters scoped from one parent, and a counter
// presented in an optional slot.
package counter

import (
	"context"
	"time"

	"github.com/on-the-ground/composable_go/casestudies/facts"
	"github.com/on-the-ground/composable_go/dependency"
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/reducer"
)

type State struct {
	Count          int
	Fact           string
	IsLoading      bool
	IsTimerRunning bool
}

// Action is the sealed sum of counter actions.
type Action interface {
	counterAction()
}

type (
	DecrementTapped   struct{}
	IncrementTapped   struct{}
	FactTapped        struct{}
	FactResponse      struct{ Result effects.Result[string] }
	ToggleTimerTapped struct{}
	TimerTick         struct{}
)

func (DecrementTapped) counterAction()   {}
func (IncrementTapped) counterAction()   {}
func (FactTapped) counterAction()        {}
func (FactResponse) counterAction()      {}
func (ToggleTimerTapped) counterAction() {}
func (TimerTick) counterAction()         {}

// TimerID cancels the running timer.
var TimerID = effects.NewToken("counter.timer")

func Reducer() reducer.Reducer[State, Action] {
	return reducer.Reduce[State, Action](reduce)
}

func reduce(state *State, action Action) effects.Effect[Action] {
	switch action := action.(type) {
	case DecrementTapped:
		state.Count--
		state.Fact = ""
		return effects.None[Action]()

	case IncrementTapped:
		state.Count++
		state.Fact = ""
		return effects.None[Action]()

	case FactTapped:
		state.Fact = ""
		state.IsLoading = true
		count := state.Count
		return effects.Try(
			func(ctx context.Context) (string, error) { return facts.Fetch(ctx, count) },
			func(r effects.Result[string]) Action { return FactResponse{Result: r} },
		)

	case FactResponse:
		state.IsLoading = false
		if fact, err := action.Result.Get(); err == nil {
			state.Fact = fact
		}
		return effects.None[Action]()

	case TimerTick:
		state.Count++
		state.Fact = ""
		return effects.None[Action]()

	case ToggleTimerTapped:
		state.IsTimerRunning = !state.IsTimerRunning
		if !state.IsTimerRunning {
			return effects.Cancel[Action](TimerID)
		}
		return effects.Run(func(ctx context.Context, send effects.Sender[Action]) error {
			for range dependency.FromContext(ctx).Clock.Timer(ctx, time.Second) {
				send.Send(TimerTick{})
			}
			return ctx.Err()
		}, effects.Named[Action]("timer")).Cancellable(TimerID, false)

	default:
		panic("exhaustive match fallback, counter action")
	}
}
