package shares

import (
	"fmt"

	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/reducer"
	"github.com/on-the-ground/composable_go/sharing"
)

type Tab int

const (
	Counter Tab = iota
	Profile
)

type State struct {
	CurrentTab Tab
	Counter    CounterTab
	Profile    ProfileTab
}

// CounterTab and ProfileTab hold their own copy of the shared Stats, refreshed
// on every commit while the feature is observing.
type CounterTab struct {
	Stats Stats
	Alert string
}

type ProfileTab struct {
	Stats Stats
}

type Action interface {
	sharesAction()
}

type (
	// Appeared starts observing the shared Stats until its task is cancelled.
	Appeared      struct{}
	StatsChanged  struct{ Stats Stats }
	SelectedTab   struct{ Tab Tab }
	CounterAction struct{ Action CounterTabAction }
	ProfileAction struct{ Action ProfileTabAction }
)

func (Appeared) sharesAction()      {}
func (StatsChanged) sharesAction()  {}
func (SelectedTab) sharesAction()   {}
func (CounterAction) sharesAction() {}
func (ProfileAction) sharesAction() {}

type CounterTabAction interface {
	counterTabAction()
}

type (
	DecrementTapped struct{}
	IncrementTapped struct{}
	IsPrimeTapped   struct{}
	AlertDismissed  struct{}
)

func (DecrementTapped) counterTabAction() {}
func (IncrementTapped) counterTabAction() {}
func (IsPrimeTapped) counterTabAction()   {}
func (AlertDismissed) counterTabAction()  {}

type ProfileTabAction interface {
	profileTabAction()
}

type ResetStatsTapped struct{}

func (ResetStatsTapped) profileTabAction() {}

// CounterTabReducer edits stats from the counter tab.
func CounterTabReducer(stats *sharing.Shared[Stats]) reducer.Reducer[CounterTab, CounterTabAction] {
	return reducer.Reduce[CounterTab, CounterTabAction](func(state *CounterTab, action CounterTabAction) effects.Effect[CounterTabAction] {
		switch action.(type) {
		case DecrementTapped:
			stats.Update(func(s *Stats) { s.Decrement() })
			state.Stats = stats.Get()

		case IncrementTapped:
			stats.Update(func(s *Stats) { s.Increment() })
			state.Stats = stats.Get()

		case IsPrimeTapped:
			count := state.Stats.Count
			if isPrime(count) {
				state.Alert = fmt.Sprintf("The number %d is prime!", count)
			} else {
				state.Alert = fmt.Sprintf("The number %d is not prime :(", count)
			}

		case AlertDismissed:
			state.Alert = ""

		default:
			panic("exhaustive match fallback, counter tab action")
		}
		return effects.None[CounterTabAction]()
	})
}

func ProfileTabReducer(stats *sharing.Shared[Stats]) reducer.Reducer[ProfileTab, ProfileTabAction] {
	return reducer.Reduce[ProfileTab, ProfileTabAction](func(state *ProfileTab, action ProfileTabAction) effects.Effect[ProfileTabAction] {
		switch action.(type) {
		case ResetStatsTapped:
			stats.Set(Stats{})
			state.Stats = Stats{}
		default:
			panic("exhaustive match fallback, profile tab action")
		}
		return effects.None[ProfileTabAction]()
	})
}

// Reducer runs both tabs against stats. The caller owns stats and releases
// it once every Store using the reducer is closed.
func Reducer(stats *sharing.Shared[Stats]) reducer.Reducer[State, Action] {
	parent := reducer.Reduce[State, Action](func(state *State, action Action) effects.Effect[Action] {
		switch action := action.(type) {
		case Appeared:
			return sharing.Observe(stats, func(s Stats) Action { return StatsChanged{Stats: s} })

		case StatsChanged:
			state.Counter.Stats = action.Stats
			state.Profile.Stats = action.Stats

		case SelectedTab:
			state.CurrentTab = action.Tab

		case CounterAction, ProfileAction:

		default:
			panic("exhaustive match fallback, shares action")
		}
		return effects.None[Action]()
	})

	return reducer.Combine(
		reducer.Scope(
			func(s *State) *CounterTab { return &s.Counter },
			reducer.Path(
				func(a Action) (CounterTabAction, bool) {
					c, ok := a.(CounterAction)
					return c.Action, ok && c.Action != nil
				},
				func(ca CounterTabAction) Action { return CounterAction{Action: ca} },
			),
			CounterTabReducer(stats),
		),
		reducer.Scope(
			func(s *State) *ProfileTab { return &s.Profile },
			reducer.Path(
				func(a Action) (ProfileTabAction, bool) {
					p, ok := a.(ProfileAction)
					return p.Action, ok && p.Action != nil
				},
				func(pa ProfileTabAction) Action { return ProfileAction{Action: pa} },
			),
			ProfileTabReducer(stats),
		),
		reducer.Reducer[State, Action](parent),
	)
}
