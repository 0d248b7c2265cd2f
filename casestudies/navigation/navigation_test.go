package navigation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/composable_go/casestudies/counter"
	"github.com/on-the-ground/composable_go/casestudies/facts"
	"github.com/on-the-ground/composable_go/casestudies/navigation"
	"github.com/on-the-ground/composable_go/dependency"
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/effects/log"
	"github.com/on-the-ground/composable_go/identified"
	"github.com/on-the-ground/composable_go/reducer"
	"github.com/on-the-ground/composable_go/store"
)

var epoch = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func newStore[S, A any](t *testing.T, initial S, r reducer.Reducer[S, A], deps dependency.Values) *store.Store[S, A] {
	t.Helper()
	s := store.New(initial, r,
		store.WithDependencies(deps),
		store.WithLogger(log.NewTest()),
	)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func settle(t *testing.T, task *effects.Task) {
	t.Helper()
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task never settled")
	}
}

func names(s navigation.State) []string {
	var out []string
	for _, screen := range s.Path.Elements() {
		out = append(out, screen.Name())
	}
	return out
}

func screenC(t *testing.T, s navigation.State, id identified.StackElementID) navigation.ScreenC {
	t.Helper()
	screen, ok := s.Path.Get(id)
	require.True(t, ok)
	c, ok := screen.(navigation.ScreenC)
	require.True(t, ok)
	return c
}

func TestStack_GoToABCAndBack(t *testing.T) {
	s := newStore(t, navigation.State{}, navigation.Reducer(), dependency.Test(dependency.NewTestClock(epoch)))

	settle(t, s.Send(navigation.GoToABCTapped{}))
	assert.Equal(t, []string{"Screen A", "Screen B", "Screen C"}, names(s.State()))
	ids := s.State().Path.IDs()
	assert.Equal(t, []navigation.Entry{
		{ID: ids[2], Name: "Screen C"},
		{ID: ids[1], Name: "Screen B"},
		{ID: ids[0], Name: "Screen A"},
	}, s.State().CurrentStack())

	settle(t, s.Send(navigation.GoBackToScreen{ID: ids[0]}))
	assert.Equal(t, []string{"Screen A"}, names(s.State()))

	settle(t, s.Send(navigation.PopToRoot{}))
	assert.Empty(t, names(s.State()))
}

func TestStack_ScreenBPushes(t *testing.T) {
	s := newStore(t, navigation.State{}, navigation.Reducer(), dependency.Test(dependency.NewTestClock(epoch)))

	settle(t, s.Send(navigation.GoTo{Screen: navigation.ScreenB{}}))
	b := s.State().Path.IDs()[0]
	settle(t, s.Send(navigation.OnScreen(b, navigation.BScreenCTapped{})))
	settle(t, s.Send(navigation.OnScreen(b, navigation.BScreenATapped{})))

	assert.Equal(t, []string{"Screen B", "Screen C", "Screen A"}, names(s.State()))
	ids := s.State().Path.IDs()

	settle(t, s.Send(navigation.GoBackToScreen{ID: ids[1]}))
	settle(t, s.Send(navigation.OnScreen(ids[2], navigation.BScreenBTapped{})))
	assert.Equal(t, []string{"Screen B", "Screen C"}, names(s.State()))
}

func TestStack_ScreenAFactAndDismiss(t *testing.T) {
	deps := dependency.Test(dependency.NewTestClock(epoch)).With(facts.Key, facts.Offline())
	s := newStore(t, navigation.State{}, navigation.Reducer(), deps)

	settle(t, s.Send(navigation.GoToABCTapped{}))
	ids := s.State().Path.IDs()
	settle(t, s.Send(navigation.OnScreen(ids[0], navigation.AIncrementTapped{})))
	settle(t, s.Send(navigation.OnScreen(ids[0], navigation.AFactTapped{})))

	screen, ok := s.State().Path.Get(ids[0])
	require.True(t, ok)
	assert.Equal(t, navigation.ScreenA{Count: 1, Fact: "1 is a good number."}, screen)
	assert.Equal(t, 1, s.State().Total())

	settle(t, s.Send(navigation.OnScreen(ids[1], navigation.BScreenATapped{})))
	require.Equal(t, 4, s.State().Path.Len())

	settle(t, s.Send(navigation.OnScreen(ids[0], navigation.ADismissTapped{})))
	assert.Empty(t, names(s.State()))
}

func TestStack_PoppingCancelsScreenTimer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	clock := dependency.NewTestClock(epoch)
	s := newStore(t, navigation.State{}, navigation.Reducer(), dependency.Test(clock))

	settle(t, s.Send(navigation.GoToABCTapped{}))
	ids := s.State().Path.IDs()
	timer := s.Send(navigation.OnScreen(ids[2], navigation.CStartTapped{}))
	assert.True(t, screenC(t, s.State(), ids[2]).IsTimerRunning)

	require.NoError(t, clock.BlockUntil(ctx, 1))
	clock.Advance(time.Second)
	require.Eventually(t, func() bool {
		screen, _ := s.State().Path.Get(ids[2])
		c, ok := screen.(navigation.ScreenC)
		return ok && c.Count == 1
	}, time.Second, time.Millisecond)

	settle(t, s.Send(navigation.GoBackToScreen{ID: ids[1]}))
	settle(t, timer)
	assert.Equal(t, []string{"Screen A", "Screen B"}, names(s.State()))

	settle(t, s.Send(navigation.OnScreen(ids[2], navigation.CTimerTick{})))
	assert.Equal(t, 0, s.State().Total())
}

func TestStack_StopSettlesTimer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	clock := dependency.NewTestClock(epoch)
	s := newStore(t, navigation.State{}, navigation.Reducer(), dependency.Test(clock))

	settle(t, s.Send(navigation.GoTo{Screen: navigation.ScreenC{}}))
	c := s.State().Path.IDs()[0]
	timer := s.Send(navigation.OnScreen(c, navigation.CStartTapped{}))
	require.NoError(t, clock.BlockUntil(ctx, 1))

	settle(t, s.Send(navigation.OnScreen(c, navigation.CStopTapped{})))
	settle(t, timer)
	assert.False(t, screenC(t, s.State(), c).IsTimerRunning)
}

func TestMultipleDestinations_SwitchingKindCancelsEffects(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	clock := dependency.NewTestClock(epoch)
	s := newStore(t, navigation.DestinationState{}, navigation.MultipleDestinations(), dependency.Test(clock))

	settle(t, s.Send(navigation.Show{Kind: navigation.DrillDown}))
	timer := s.Send(navigation.To(navigation.DrillDown, counter.ToggleTimerTapped{}))
	require.NoError(t, clock.BlockUntil(ctx, 1))
	clock.Advance(time.Second)
	require.Eventually(t, func() bool {
		d := s.State().Destination
		return d != nil && d.Counter.Count == 1
	}, time.Second, time.Millisecond)

	settle(t, s.Send(navigation.Show{Kind: navigation.Sheet}))
	settle(t, timer)

	settle(t, s.Send(navigation.To(navigation.DrillDown, counter.IncrementTapped{})))
	settle(t, s.Send(navigation.To(navigation.Sheet, counter.IncrementTapped{})))
	require.NotNil(t, s.State().Destination)
	assert.Equal(t, navigation.Sheet, s.State().Destination.Kind)
	assert.Equal(t, 1, s.State().Destination.Counter.Count)

	settle(t, s.Send(navigation.DismissDestination()))
	assert.Nil(t, s.State().Destination)
}

func TestMultipleDestinations_ShowingSameKindKeepsCounter(t *testing.T) {
	s := newStore(t, navigation.DestinationState{}, navigation.MultipleDestinations(), dependency.Test(dependency.NewTestClock(epoch)))

	settle(t, s.Send(navigation.Show{Kind: navigation.Popover}))
	settle(t, s.Send(navigation.To(navigation.Popover, counter.IncrementTapped{})))
	settle(t, s.Send(navigation.Show{Kind: navigation.Popover}))

	assert.Equal(t, 1, s.State().Destination.Counter.Count)
	assert.Equal(t, "popover", navigation.Popover.String())
}
