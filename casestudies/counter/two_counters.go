package counter

import (
	"github.com/on-the-ground/composable_go/reducer"
)

type TwoCountersState struct {
	Counter1 State
	Counter2 State
}

// TwoCountersAction routes a counter Action to one of the two counters.
type TwoCountersAction interface {
	twoCountersAction()
}

type (
	Counter1 struct{ Action Action }
	Counter2 struct{ Action Action }
)

func (Counter1) twoCountersAction() {}
func (Counter2) twoCountersAction() {}

var (
	counter1Path = reducer.Path(
		func(a TwoCountersAction) (Action, bool) {
			c, ok := a.(Counter1)
			return c.Action, ok
		},
		func(a Action) TwoCountersAction { return Counter1{Action: a} },
	)
	counter2Path = reducer.Path(
		func(a TwoCountersAction) (Action, bool) {
			c, ok := a.(Counter2)
			return c.Action, ok
		},
		func(a Action) TwoCountersAction { return Counter2{Action: a} },
	)
)

// TwoCounters scopes one counter to each field. Each runs its effects in its
// own namespace, so stopping one timer leaves the other running.
func TwoCounters() reducer.Reducer[TwoCountersState, TwoCountersAction] {
	return reducer.Combine(
		reducer.Namespaced("counter1",
			reducer.Scope(func(s *TwoCountersState) *State { return &s.Counter1 }, counter1Path, Reducer())),
		reducer.Namespaced("counter2",
			reducer.Scope(func(s *TwoCountersState) *State { return &s.Counter2 }, counter2Path, Reducer())),
	)
}
