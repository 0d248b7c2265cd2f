package counter

import (
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/reducer"
)

type OptionalState struct {
	Counter *State
}

type OptionalAction interface {
	optionalAction()
}

type (
	ToggleCounterTapped struct{}
	OptionalCounter     struct {
		Action reducer.PresentationAction[Action]
	}
)

func (ToggleCounterTapped) optionalAction() {}
func (OptionalCounter) optionalAction()     {}

var optionalPath = reducer.Path(
	func(a OptionalAction) (reducer.PresentationAction[Action], bool) {
		c, ok := a.(OptionalCounter)
		return c.Action, ok
	},
	func(a reducer.PresentationAction[Action]) OptionalAction { return OptionalCounter{Action: a} },
)

// Optional toggles a counter in and out of state. Effects of a dismissed
// counter, such as its timer, are cancelled with it.
func Optional() reducer.Reducer[OptionalState, OptionalAction] {
	parent := reducer.Reduce[OptionalState, OptionalAction](func(state *OptionalState, action OptionalAction) effects.Effect[OptionalAction] {
		if _, ok := action.(ToggleCounterTapped); ok {
			if state.Counter == nil {
				state.Counter = &State{}
			} else {
				state.Counter = nil
			}
		}
		return effects.None[OptionalAction]()
	})
	return reducer.IfLet(
		reducer.Reducer[OptionalState, OptionalAction](parent),
		func(s *OptionalState) **State { return &s.Counter },
		optionalPath,
		Reducer(),
	)
}
