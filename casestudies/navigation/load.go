package navigation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/on-the-ground/composable_go/casestudies/counter"
	"github.com/on-the-ground/composable_go/dependency"
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/identified"
	"github.com/on-the-ground/composable_go/reducer"
)

// LoadDelay is how long every screen below takes to load.
const LoadDelay = time.Second

// loadAfterDelay sends loaded once LoadDelay elapsed on the effect clock.
// Loading again under id restarts the delay.
func loadAfterDelay[A any](id any, loaded A) effects.Effect[A] {
	return effects.Concatenate(
		effects.Sleep[A](LoadDelay),
		effects.Send(loaded),
	).Cancellable(id, true)
}

// LoadState is a counter screen that is shown at once and filled in after a
// load: a sheet in PresentAndLoad, a drill-down in NavigateAndLoad.
type LoadState struct {
	IsActive bool
	Counter  *counter.State
}

type LoadAction interface {
	loadAction()
}

type (
	SetActive     struct{ Active bool }
	LoadCompleted struct{}
	LoadedCounter struct {
		Action reducer.PresentationAction[counter.Action]
	}
)

func (SetActive) loadAction()     {}
func (LoadCompleted) loadAction() {}
func (LoadedCounter) loadAction() {}

var loadedCounterPath = reducer.Path(
	func(a LoadAction) (reducer.PresentationAction[counter.Action], bool) {
		c, ok := a.(LoadedCounter)
		return c.Action, ok
	},
	func(pa reducer.PresentationAction[counter.Action]) LoadAction { return LoadedCounter{Action: pa} },
)

var (
	presentLoadID  = effects.NewToken("presentAndLoad.load")
	navigateLoadID = effects.NewToken("navigateAndLoad.load")
)

func PresentAndLoad() reducer.Reducer[LoadState, LoadAction] {
	return activateThenLoad(presentLoadID)
}

func NavigateAndLoad() reducer.Reducer[LoadState, LoadAction] {
	return activateThenLoad(navigateLoadID)
}

func activateThenLoad(load *effects.Token) reducer.Reducer[LoadState, LoadAction] {
	parent := reducer.Reduce[LoadState, LoadAction](func(state *LoadState, action LoadAction) effects.Effect[LoadAction] {
		switch action := action.(type) {
		case SetActive:
			if !action.Active {
				state.IsActive = false
				state.Counter = nil
				return effects.Cancel[LoadAction](load)
			}
			state.IsActive = true
			return loadAfterDelay[LoadAction](load, LoadCompleted{})

		case LoadCompleted:
			if state.IsActive {
				state.Counter = &counter.State{}
			}
			return effects.None[LoadAction]()

		case LoadedCounter:
			if _, ok := action.Action.(reducer.Dismiss[counter.Action]); ok {
				state.IsActive = false
				return effects.Cancel[LoadAction](load)
			}
			return effects.None[LoadAction]()

		default:
			panic(fmt.Sprintf("exhaustive match fallback, load action: %T", action))
		}
	})
	return reducer.IfLet(
		reducer.Reducer[LoadState, LoadAction](parent),
		func(s *LoadState) **counter.State { return &s.Counter },
		loadedCounterPath,
		counter.Reducer(),
	)
}

// LoadThenPresentState shows an activity indicator while loading and
// presents the counter only once it is loaded.
type LoadThenPresentState struct {
	Counter                    *counter.State
	IsActivityIndicatorVisible bool
}

type LoadThenPresentAction interface {
	loadThenPresentAction()
}

type (
	CounterButtonTapped        struct{}
	PresentationDelayCompleted struct{}
	PresentedCounter           struct {
		Action reducer.PresentationAction[counter.Action]
	}
)

func (CounterButtonTapped) loadThenPresentAction()        {}
func (PresentationDelayCompleted) loadThenPresentAction() {}
func (PresentedCounter) loadThenPresentAction()           {}

var presentedCounterPath = reducer.Path(
	func(a LoadThenPresentAction) (reducer.PresentationAction[counter.Action], bool) {
		c, ok := a.(PresentedCounter)
		return c.Action, ok
	},
	func(pa reducer.PresentationAction[counter.Action]) LoadThenPresentAction {
		return PresentedCounter{Action: pa}
	},
)

var loadThenPresentID = effects.NewToken("loadThenPresent.load")

func LoadThenPresent() reducer.Reducer[LoadThenPresentState, LoadThenPresentAction] {
	parent := reducer.Reduce[LoadThenPresentState, LoadThenPresentAction](func(state *LoadThenPresentState, action LoadThenPresentAction) effects.Effect[LoadThenPresentAction] {
		switch action := action.(type) {
		case CounterButtonTapped:
			state.IsActivityIndicatorVisible = true
			return loadAfterDelay[LoadThenPresentAction](loadThenPresentID, PresentationDelayCompleted{})

		case PresentationDelayCompleted:
			state.IsActivityIndicatorVisible = false
			state.Counter = &counter.State{}
			return effects.None[LoadThenPresentAction]()

		case PresentedCounter:
			// dismissing while the indicator spins abandons the load
			if _, ok := action.Action.(reducer.Dismiss[counter.Action]); ok && state.IsActivityIndicatorVisible {
				state.IsActivityIndicatorVisible = false
				return effects.Cancel[LoadThenPresentAction](loadThenPresentID)
			}
			return effects.None[LoadThenPresentAction]()

		default:
			panic(fmt.Sprintf("exhaustive match fallback, load then present action: %T", action))
		}
	})
	return reducer.IfLet(
		reducer.Reducer[LoadThenPresentState, LoadThenPresentAction](parent),
		func(s *LoadThenPresentState) **counter.State { return &s.Counter },
		presentedCounterPath,
		counter.Reducer(),
	)
}

// Row is one entry of the list a counter is selected from.
type Row struct {
	ID    uuid.UUID
	Count int
}

type Rows = identified.Array[uuid.UUID, Row]

// Selection is the row being navigated to. Its counter is nil until the row
// has loaded.
type Selection struct {
	ID      uuid.UUID
	Counter *counter.State
}

func (s Selection) Identity() any { return s.ID }

// SelectionAction addresses the counter inside the selection.
type SelectionAction = reducer.PresentationAction[counter.Action]

type LoadListState struct {
	Rows      Rows
	Selection *Selection
}

// NewLoadList seeds the rows with counts 1, 42 and 100.
func NewLoadList(ids dependency.UUIDGenerator) LoadListState {
	rows := identified.New(func(r Row) uuid.UUID { return r.ID })
	for _, count := range []int{1, 42, 100} {
		rows.Append(Row{ID: ids.NewUUID(), Count: count})
	}
	return LoadListState{Rows: rows}
}

type LoadListAction interface {
	loadListAction()
}

type (
	SelectRow       struct{ ID uuid.UUID }
	Deselect        struct{}
	SelectionLoaded struct{}
	SelectedCounter struct {
		Action reducer.PresentationAction[SelectionAction]
	}
)

func (SelectRow) loadListAction()       {}
func (Deselect) loadListAction()        {}
func (SelectionLoaded) loadListAction() {}
func (SelectedCounter) loadListAction() {}

// OnSelectedCounter sends action to the counter of the loaded selection.
func OnSelectedCounter(action counter.Action) LoadListAction {
	return SelectedCounter{Action: reducer.Present[SelectionAction](reducer.Present(action))}
}

var (
	selectedCounterPath = reducer.Path(
		func(a LoadListAction) (reducer.PresentationAction[SelectionAction], bool) {
			c, ok := a.(SelectedCounter)
			return c.Action, ok
		},
		func(pa reducer.PresentationAction[SelectionAction]) LoadListAction {
			return SelectedCounter{Action: pa}
		},
	)
	selectionCounterPath = reducer.Path(
		func(a SelectionAction) (reducer.PresentationAction[counter.Action], bool) { return a, true },
		func(pa reducer.PresentationAction[counter.Action]) SelectionAction { return pa },
	)
)

var loadListID = effects.NewToken("navigateAndLoadList.load")

// commit writes the selected counter back into its row.
func (s *LoadListState) commit() {
	sel := s.Selection
	if sel == nil || sel.Counter == nil {
		return
	}
	if row, ok := s.Rows.Get(sel.ID); ok {
		row.Count = sel.Counter.Count
		s.Rows.Update(sel.ID, row)
	}
}

// NavigateAndLoadList drills down into a row, loading its counter first.
// Selecting another row before the load finished restarts it for that row.
func NavigateAndLoadList() reducer.Reducer[LoadListState, LoadListAction] {
	parent := reducer.Reduce[LoadListState, LoadListAction](func(state *LoadListState, action LoadListAction) effects.Effect[LoadListAction] {
		switch action := action.(type) {
		case SelectRow:
			if !state.Rows.Contains(action.ID) {
				return effects.None[LoadListAction]()
			}
			if sel := state.Selection; sel != nil && sel.ID == action.ID && sel.Counter != nil {
				return effects.None[LoadListAction]()
			}
			state.commit()
			state.Selection = &Selection{ID: action.ID}
			return loadAfterDelay[LoadListAction](loadListID, SelectionLoaded{})

		case Deselect:
			state.commit()
			state.Selection = nil
			return effects.Cancel[LoadListAction](loadListID)

		case SelectionLoaded:
			sel := state.Selection
			if sel == nil {
				return effects.None[LoadListAction]()
			}
			row, _ := state.Rows.Get(sel.ID)
			next := *sel
			next.Counter = &counter.State{Count: row.Count}
			state.Selection = &next
			return effects.None[LoadListAction]()

		case SelectedCounter:
			if _, ok := action.Action.(reducer.Dismiss[SelectionAction]); ok {
				state.commit()
				return effects.Cancel[LoadListAction](loadListID)
			}
			return effects.None[LoadListAction]()

		default:
			panic(fmt.Sprintf("exhaustive match fallback, load list action: %T", action))
		}
	})

	selection := reducer.IfLet(
		reducer.Empty[Selection, SelectionAction](),
		func(s *Selection) **counter.State { return &s.Counter },
		selectionCounterPath,
		counter.Reducer(),
	)
	return reducer.IfLet(
		reducer.Reducer[LoadListState, LoadListAction](parent),
		func(s *LoadListState) **Selection { return &s.Selection },
		selectedCounterPath,
		selection,
	)
}
