// Package navigation holds the navigation case studies: a stack of screens
// driven from state, and a single slot presenting one of several
// destinations.
package navigation

import (
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/identified"
	"github.com/on-the-ground/composable_go/reducer"
)

type Path = identified.Stack[Screen]

type StackAction = identified.StackAction[Screen, ScreenAction]

type State struct {
	Path Path
}

type Action interface {
	navigationAction()
}

type (
	// GoBackToScreen pops every screen above ID.
	GoBackToScreen struct{ ID identified.StackElementID }
	GoTo           struct{ Screen Screen }
	GoToABCTapped  struct{}
	PopToRoot      struct{}
	PathAction     struct{ Action StackAction }
)

func (GoBackToScreen) navigationAction() {}
func (GoTo) navigationAction()           {}
func (GoToABCTapped) navigationAction()  {}
func (PopToRoot) navigationAction()      {}
func (PathAction) navigationAction()     {}

// OnScreen routes action to the screen with id.
func OnScreen(id identified.StackElementID, action ScreenAction) Action {
	return PathAction{Action: identified.StackElement[Screen, ScreenAction]{ID: id, Action: action}}
}

// Entry is one row of the current stack menu.
type Entry struct {
	ID   identified.StackElementID
	Name string
}

// CurrentStack lists the screens top first.
func (s State) CurrentStack() []Entry {
	ids := s.Path.IDs()
	screens := s.Path.Elements()
	out := make([]Entry, len(screens))
	for i, screen := range screens {
		out[len(screens)-1-i] = Entry{ID: ids[i], Name: screen.Name()}
	}
	return out
}

// Total sums the counters of every screen on the stack.
func (s State) Total() int {
	total := 0
	for _, screen := range s.Path.Elements() {
		switch screen := screen.(type) {
		case ScreenA:
			total += screen.Count
		case ScreenC:
			total += screen.Count
		}
	}
	return total
}

var stackPath = reducer.Path(
	func(a Action) (StackAction, bool) {
		p, ok := a.(PathAction)
		return p.Action, ok && p.Action != nil
	},
	func(sa StackAction) Action { return PathAction{Action: sa} },
)

func Reducer() reducer.Reducer[State, Action] {
	return reducer.ForEachStack(
		reducer.Reducer[State, Action](reducer.Reduce[State, Action](reduce)),
		func(s *State) *Path { return &s.Path },
		stackPath,
		screenReducer(),
	)
}

func reduce(state *State, action Action) effects.Effect[Action] {
	switch action := action.(type) {
	case GoBackToScreen:
		state.Path.Pop(action.ID)

	case GoTo:
		state.Path.Append(action.Screen)

	case GoToABCTapped:
		state.Path.Append(ScreenA{})
		state.Path.Append(ScreenB{})
		state.Path.Append(ScreenC{})

	case PopToRoot:
		state.Path.RemoveAll()

	case PathAction:
		element, ok := action.Action.(identified.StackElement[Screen, ScreenAction])
		if !ok || !state.Path.Contains(element.ID) {
			break
		}
		switch element.Action.(type) {
		case BScreenATapped:
			state.Path.Append(ScreenA{})
		case BScreenBTapped:
			state.Path.Append(ScreenB{})
		case BScreenCTapped:
			state.Path.Append(ScreenC{})
		}

	default:
		panic("exhaustive match fallback, navigation action")
	}
	return effects.None[Action]()
}
