package navigation

import (
	"github.com/on-the-ground/composable_go/casestudies/counter"
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/reducer"
)

// Kind is how a destination is presented.
type Kind int

const (
	DrillDown Kind = iota
	Popover
	Sheet
)

func (k Kind) String() string {
	switch k {
	case DrillDown:
		return "drillDown"
	case Popover:
		return "popover"
	case Sheet:
		return "sheet"
	default:
		panic("exhaustive match fallback, destination kind")
	}
}

// Destination is a counter presented as Kind. Presenting another kind
// replaces the counter and cancels its effects.
type Destination struct {
	Kind    Kind
	Counter counter.State
}

func (d Destination) Identity() any { return d.Kind }

// DestinationAction is a counter action addressed to the destination
// presented as Kind. It is dropped when another kind is presented.
type DestinationAction struct {
	Kind   Kind
	Action counter.Action
}

type DestinationState struct {
	Destination *Destination
}

type MultipleAction interface {
	multipleAction()
}

type (
	Show               struct{ Kind Kind }
	DestinationPresent struct {
		Action reducer.PresentationAction[DestinationAction]
	}
)

func (Show) multipleAction()               {}
func (DestinationPresent) multipleAction() {}

// To addresses action to the destination presented as kind.
func To(kind Kind, action counter.Action) MultipleAction {
	return DestinationPresent{Action: reducer.Present(DestinationAction{Kind: kind, Action: action})}
}

// DismissDestination clears the slot.
func DismissDestination() MultipleAction {
	return DestinationPresent{Action: reducer.Dismissed[DestinationAction]()}
}

var destinationPath = reducer.Path(
	func(a MultipleAction) (reducer.PresentationAction[DestinationAction], bool) {
		d, ok := a.(DestinationPresent)
		return d.Action, ok && d.Action != nil
	},
	func(pa reducer.PresentationAction[DestinationAction]) MultipleAction {
		return DestinationPresent{Action: pa}
	},
)

func destinationReducer() reducer.Reducer[Destination, DestinationAction] {
	inner := counter.Reducer()
	return reducer.Reduce[Destination, DestinationAction](func(state *Destination, action DestinationAction) effects.Effect[DestinationAction] {
		if action.Kind != state.Kind {
			return effects.None[DestinationAction]()
		}
		kind := action.Kind
		return effects.Map(inner.Reduce(&state.Counter, action.Action), func(a counter.Action) DestinationAction {
			return DestinationAction{Kind: kind, Action: a}
		})
	})
}

// MultipleDestinations presents a counter as a drill-down, a popover or a
// sheet from one optional slot.
func MultipleDestinations() reducer.Reducer[DestinationState, MultipleAction] {
	parent := reducer.Reduce[DestinationState, MultipleAction](func(state *DestinationState, action MultipleAction) effects.Effect[MultipleAction] {
		switch action := action.(type) {
		case Show:
			if state.Destination == nil || state.Destination.Kind != action.Kind {
				state.Destination = &Destination{Kind: action.Kind}
			}
		case DestinationPresent:
		default:
			panic("exhaustive match fallback, multiple destination action")
		}
		return effects.None[MultipleAction]()
	})
	return reducer.IfLet(
		reducer.Reducer[DestinationState, MultipleAction](parent),
		func(s *DestinationState) **Destination { return &s.Destination },
		destinationPath,
		destinationReducer(),
	)
}
