package reducer_test

import (
	"context"
	"testing"

	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/identified"
	"github.com/on-the-ground/composable_go/reducer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	Count int
}

type counterAction int

const (
	increment counterAction = iota
	decrement
	startTimer
)

var counterReducer = reducer.Reduce[counter, counterAction](func(state *counter, action counterAction) effects.Effect[counterAction] {
	switch action {
	case increment:
		state.Count++
	case decrement:
		state.Count--
	case startTimer:
		return effects.Run(func(ctx context.Context, send effects.Sender[counterAction]) error {
			<-ctx.Done()
			return nil
		}, effects.Named[counterAction]("timer")).Cancellable("timer", true)
	}
	return effects.None[counterAction]()
})

type pair struct {
	Left, Right counter
	Log         []string
}

type pairAction interface{ isPairAction() }

type leftAction struct{ counterAction }
type rightAction struct{ counterAction }
type resetAction struct{}

func (leftAction) isPairAction()  {}
func (rightAction) isPairAction() {}
func (resetAction) isPairAction() {}

func TestCombine_RunsInOrderSeeingPriorMutations(t *testing.T) {
	var seen []int
	first := reducer.Reduce[counter, counterAction](func(state *counter, action counterAction) effects.Effect[counterAction] {
		state.Count += 10
		return effects.Send(decrement)
	})
	second := reducer.Reduce[counter, counterAction](func(state *counter, action counterAction) effects.Effect[counterAction] {
		seen = append(seen, state.Count)
		return effects.Cancel[counterAction]("x")
	})

	state := counter{}
	eff := reducer.Combine[counter, counterAction](first, second, reducer.Empty[counter, counterAction]()).Reduce(&state, increment)

	assert.Equal(t, []int{10}, seen)
	assert.Equal(t, "merge(send(reducer_test.counterAction), cancel(x))", eff.String())
}

func TestScope_RoutesOnlyMatchingActions(t *testing.T) {
	left := reducer.Scope(
		func(s *pair) *counter { return &s.Left },
		reducer.Path(
			func(a pairAction) (counterAction, bool) {
				l, ok := a.(leftAction)
				return l.counterAction, ok
			},
			func(ca counterAction) pairAction { return leftAction{ca} },
		),
		reducer.Reducer[counter, counterAction](counterReducer),
	)
	right := reducer.Scope(
		func(s *pair) *counter { return &s.Right },
		reducer.Path(
			func(a pairAction) (counterAction, bool) {
				r, ok := a.(rightAction)
				return r.counterAction, ok
			},
			func(ca counterAction) pairAction { return rightAction{ca} },
		),
		reducer.Reducer[counter, counterAction](counterReducer),
	)
	r := reducer.Combine[pair, pairAction](left, right)

	state := pair{}
	r.Reduce(&state, leftAction{increment})
	r.Reduce(&state, leftAction{increment})
	r.Reduce(&state, rightAction{decrement})
	eff := r.Reduce(&state, resetAction{})

	assert.Equal(t, 2, state.Left.Count)
	assert.Equal(t, -1, state.Right.Count)
	assert.True(t, eff.IsNone())
}

func TestBinding_AppliesSetters(t *testing.T) {
	type form struct {
		Name    string
		Enabled bool
	}
	r := reducer.Binding[form, reducer.BindingAction[form]](func(a reducer.BindingAction[form]) (reducer.BindingAction[form], bool) {
		return a, true
	})

	state := form{}
	r.Reduce(&state, reducer.Set("name", func(f *form) *string { return &f.Name }, "Blob"))
	r.Reduce(&state, reducer.Set("enabled", func(f *form) *bool { return &f.Enabled }, true))

	assert.Equal(t, form{Name: "Blob", Enabled: true}, state)
}

type row struct {
	ID    int
	Count int
}

func rowID(r row) int { return r.ID }

type listState struct {
	Rows identified.Array[int, row]
}

type listAction interface{ isListAction() }

type rowAction struct {
	identified.ElementAction[int, counterAction]
}
type removeRow struct{ ID int }

func (rowAction) isListAction() {}
func (removeRow) isListAction() {}

var rowReducer = reducer.Reduce[row, counterAction](func(state *row, action counterAction) effects.Effect[counterAction] {
	switch action {
	case increment:
		state.Count++
	case startTimer:
		return effects.Run(func(ctx context.Context, send effects.Sender[counterAction]) error {
			<-ctx.Done()
			return nil
		}, effects.Named[counterAction]("tick")).Cancellable("tick", true)
	}
	return effects.None[counterAction]()
})

func listReducer() reducer.Reducer[listState, listAction] {
	parent := reducer.Reduce[listState, listAction](func(state *listState, action listAction) effects.Effect[listAction] {
		if a, ok := action.(removeRow); ok {
			state.Rows.Remove(a.ID)
		}
		return effects.None[listAction]()
	})
	return reducer.ForEach(
		reducer.Reducer[listState, listAction](parent),
		func(s *listState) *identified.Array[int, row] { return &s.Rows },
		reducer.Path(
			func(a listAction) (identified.ElementAction[int, counterAction], bool) {
				ra, ok := a.(rowAction)
				return ra.ElementAction, ok
			},
			func(ea identified.ElementAction[int, counterAction]) listAction { return rowAction{ea} },
		),
		reducer.Reducer[row, counterAction](rowReducer),
	)
}

func TestForEach_RoutesByIDAndDropsMisses(t *testing.T) {
	r := listReducer()
	state := listState{Rows: identified.New(rowID, row{ID: 1}, row{ID: 2})}
	snapshot := state

	r.Reduce(&state, rowAction{identified.Element(2, increment)})
	eff := r.Reduce(&state, rowAction{identified.Element(9, increment)})

	assert.True(t, eff.IsNone())
	got, ok := state.Rows.Get(2)
	require.True(t, ok)
	assert.Equal(t, 1, got.Count)
	first, _ := state.Rows.Get(1)
	assert.Zero(t, first.Count)

	unchanged, _ := snapshot.Rows.Get(2)
	assert.Zero(t, unchanged.Count, "published copies never change")
}

func TestForEach_ScopesAndCancelsElementEffects(t *testing.T) {
	r := listReducer()
	state := listState{Rows: identified.New(rowID, row{ID: 1}, row{ID: 2})}

	eff := r.Reduce(&state, rowAction{identified.Element(1, startTimer)})
	assert.Equal(t, "cancellable(forEach(reducer_test.row):1, false, namespace(forEach(reducer_test.row):1, cancellable(tick, true, tick)))", eff.String())

	eff = r.Reduce(&state, removeRow{ID: 1})
	assert.Equal(t, "cancel(forEach(reducer_test.row):1)", eff.String())
	assert.Equal(t, []int{2}, state.Rows.IDs())

	eff = r.Reduce(&state, rowAction{identified.Element(1, increment)})
	assert.True(t, eff.IsNone())
	assert.Equal(t, []int{2}, state.Rows.IDs())
}

func TestNamespaced_WrapsEffects(t *testing.T) {
	r := reducer.Namespaced("left", reducer.Reducer[counter, counterAction](counterReducer))

	var state counter
	assert.True(t, r.Reduce(&state, increment).IsNone())
	assert.Equal(t, 1, state.Count)

	eff := r.Reduce(&state, startTimer)
	assert.Equal(t, "namespace(left, cancellable(timer, true, timer))", eff.String())
}
