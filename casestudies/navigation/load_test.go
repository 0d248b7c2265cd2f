package navigation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/composable_go/casestudies/counter"
	"github.com/on-the-ground/composable_go/casestudies/navigation"
	"github.com/on-the-ground/composable_go/dependency"
	"github.com/on-the-ground/composable_go/reducer"
)

const halfLoad = navigation.LoadDelay / 2

func blockUntil(t *testing.T, clock *dependency.TestClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntil(ctx, n))
}

var activateThenLoad = map[string]func() reducer.Reducer[navigation.LoadState, navigation.LoadAction]{
	"present and load":  navigation.PresentAndLoad,
	"navigate and load": navigation.NavigateAndLoad,
}

func TestActivateThenLoad_ReactivatingLoadsOnce(t *testing.T) {
	for name, build := range activateThenLoad {
		t.Run(name, func(t *testing.T) {
			clock := dependency.NewTestClock(epoch)
			s := newStore(t, navigation.LoadState{}, build(), dependency.Test(clock))

			first := s.Send(navigation.SetActive{Active: true})
			assert.True(t, s.State().IsActive)
			assert.Nil(t, s.State().Counter)

			blockUntil(t, clock, 1)
			clock.Advance(halfLoad)
			second := s.Send(navigation.SetActive{Active: true})
			settle(t, first)

			blockUntil(t, clock, 1)
			clock.Advance(halfLoad)
			assert.Nil(t, s.State().Counter, "the first load was restarted")

			clock.Advance(halfLoad)
			settle(t, second)
			require.NotNil(t, s.State().Counter)

			settle(t, s.Send(navigation.LoadedCounter{Action: reducer.Present[counter.Action](counter.IncrementTapped{})}))
			assert.Equal(t, 1, s.State().Counter.Count)

			settle(t, s.Send(navigation.LoadedCounter{Action: reducer.Dismissed[counter.Action]()}))
			assert.Equal(t, navigation.LoadState{}, s.State())
		})
	}
}

func TestActivateThenLoad_DeactivatingCancelsLoad(t *testing.T) {
	for name, build := range activateThenLoad {
		t.Run(name, func(t *testing.T) {
			clock := dependency.NewTestClock(epoch)
			s := newStore(t, navigation.LoadState{}, build(), dependency.Test(clock))

			load := s.Send(navigation.SetActive{Active: true})
			blockUntil(t, clock, 1)

			settle(t, s.Send(navigation.SetActive{Active: false}))
			settle(t, load)
			clock.Advance(navigation.LoadDelay)
			assert.Equal(t, navigation.LoadState{}, s.State())
		})
	}
}

func TestLoadThenPresent(t *testing.T) {
	clock := dependency.NewTestClock(epoch)
	s := newStore(t, navigation.LoadThenPresentState{}, navigation.LoadThenPresent(), dependency.Test(clock))

	first := s.Send(navigation.CounterButtonTapped{})
	assert.True(t, s.State().IsActivityIndicatorVisible)
	blockUntil(t, clock, 1)
	clock.Advance(halfLoad)

	second := s.Send(navigation.CounterButtonTapped{})
	settle(t, first)
	assert.Nil(t, s.State().Counter)

	blockUntil(t, clock, 1)
	clock.Advance(navigation.LoadDelay)
	settle(t, second)
	assert.False(t, s.State().IsActivityIndicatorVisible)
	require.NotNil(t, s.State().Counter)

	settle(t, s.Send(navigation.PresentedCounter{Action: reducer.Dismissed[counter.Action]()}))
	assert.Nil(t, s.State().Counter)
}

func TestLoadThenPresent_DismissWhileLoadingCancels(t *testing.T) {
	clock := dependency.NewTestClock(epoch)
	s := newStore(t, navigation.LoadThenPresentState{}, navigation.LoadThenPresent(), dependency.Test(clock))

	load := s.Send(navigation.CounterButtonTapped{})
	blockUntil(t, clock, 1)

	settle(t, s.Send(navigation.PresentedCounter{Action: reducer.Dismissed[counter.Action]()}))
	settle(t, load)
	clock.Advance(navigation.LoadDelay)
	assert.Equal(t, navigation.LoadThenPresentState{}, s.State())
}

func TestNavigateAndLoadList_SwitchingRowsLoadsLastOnce(t *testing.T) {
	clock := dependency.NewTestClock(epoch)
	deps := dependency.Test(clock)
	s := newStore(t, navigation.NewLoadList(dependency.NewIncrementingUUID()), navigation.NavigateAndLoadList(), deps)
	rows := s.State().Rows.IDs()
	require.Len(t, rows, 3)

	first := s.Send(navigation.SelectRow{ID: rows[0]})
	blockUntil(t, clock, 1)
	clock.Advance(halfLoad)

	second := s.Send(navigation.SelectRow{ID: rows[1]})
	settle(t, first)
	require.NotNil(t, s.State().Selection)
	assert.Equal(t, rows[1], s.State().Selection.ID)
	assert.Nil(t, s.State().Selection.Counter)

	blockUntil(t, clock, 1)
	clock.Advance(navigation.LoadDelay)
	settle(t, second)
	require.NotNil(t, s.State().Selection.Counter)
	assert.Equal(t, 42, s.State().Selection.Counter.Count)

	settle(t, s.Send(navigation.OnSelectedCounter(counter.IncrementTapped{})))
	assert.Equal(t, 43, s.State().Selection.Counter.Count)

	settle(t, s.Send(navigation.Deselect{}))
	assert.Nil(t, s.State().Selection)
	row, ok := s.State().Rows.Get(rows[1])
	require.True(t, ok)
	assert.Equal(t, 43, row.Count)
}

func TestNavigateAndLoadList_DeselectCancelsLoad(t *testing.T) {
	clock := dependency.NewTestClock(epoch)
	initial := navigation.NewLoadList(dependency.NewIncrementingUUID())
	s := newStore(t, initial, navigation.NavigateAndLoadList(), dependency.Test(clock))
	rows := s.State().Rows.IDs()

	load := s.Send(navigation.SelectRow{ID: rows[2]})
	blockUntil(t, clock, 1)

	settle(t, s.Send(navigation.Deselect{}))
	settle(t, load)
	clock.Advance(navigation.LoadDelay)
	assert.Nil(t, s.State().Selection)
	assert.Equal(t, initial.Rows.Elements(), s.State().Rows.Elements())
}

func TestNavigateAndLoadList_DismissingTheSelectionCommitsCount(t *testing.T) {
	clock := dependency.NewTestClock(epoch)
	s := newStore(t, navigation.NewLoadList(dependency.NewIncrementingUUID()), navigation.NavigateAndLoadList(), dependency.Test(clock))
	rows := s.State().Rows.IDs()

	load := s.Send(navigation.SelectRow{ID: rows[0]})
	blockUntil(t, clock, 1)
	clock.Advance(navigation.LoadDelay)
	settle(t, load)

	settle(t, s.Send(navigation.OnSelectedCounter(counter.DecrementTapped{})))
	settle(t, s.Send(navigation.SelectedCounter{Action: reducer.Dismissed[navigation.SelectionAction]()}))

	assert.Nil(t, s.State().Selection)
	row, _ := s.State().Rows.Get(rows[0])
	assert.Equal(t, 0, row.Count)
}
