package identified_test

import (
	"testing"

	"github.com/on-the-ground/composable_go/identified"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack_PopToKeepsTarget(t *testing.T) {
	var s identified.Stack[string]
	a := s.Append("A")
	b := s.Append("B")
	c := s.Append("C")
	require.Equal(t, []identified.StackElementID{a, a + 1, a + 2}, []identified.StackElementID{a, b, c})

	require.True(t, s.Pop(a))
	assert.Equal(t, []string{"A"}, s.Elements())
	assert.Equal(t, []identified.StackElementID{a}, s.IDs())
	assert.False(t, s.Contains(b))
	assert.False(t, s.Pop(c))
}

func TestStack_IDsAreNeverReused(t *testing.T) {
	s := identified.NewStack("A", "B")
	last := s.IDs()[1]
	s.RemoveAll()
	assert.Zero(t, s.Len())

	id := s.Append("C")
	assert.Greater(t, id, last)

	s.PopLast()
	d := s.Append("D")
	assert.Greater(t, d, id)
	assert.False(t, s.Push(id, "stale"))

	far := d + 100
	assert.True(t, s.Push(far, "E"))
	assert.Greater(t, s.Append("F"), far, "explicit pushes are reserved")
}

func TestStack_ReplacedValuesDoNotReuseIDs(t *testing.T) {
	first := identified.NewStack("A")
	second := identified.NewStack("A")
	var zero identified.Stack[string]
	third := zero.Append("A")

	assert.NotEqual(t, first.IDs(), second.IDs())
	assert.NotContains(t, append(first.IDs(), second.IDs()...), third)
}

func TestStack_SlotsChangeWhenAnIDIsReoccupied(t *testing.T) {
	id := identified.NextStackElementID()
	var s identified.Stack[string]
	require.True(t, s.Push(id, "A"))
	before := s.Slots()

	var replaced identified.Stack[string]
	require.True(t, replaced.Push(id, "A"))

	assert.Equal(t, s.IDs(), replaced.IDs())
	assert.NotEqual(t, before, replaced.Slots())

	copied := s
	copied.Update(id, "A'")
	assert.Equal(t, before, copied.Slots(), "updates keep the slot")
}

func TestStack_PopFromRemovesTargetAndAbove(t *testing.T) {
	s := identified.NewStack("A", "B", "C")
	ids := s.IDs()
	require.True(t, s.PopFrom(ids[1]))
	assert.Equal(t, []string{"A"}, s.Elements())

	id, ok := s.PopLast()
	assert.True(t, ok)
	assert.Equal(t, ids[0], id)
	_, ok = s.PopLast()
	assert.False(t, ok)
}

func TestStack_CopiesAreStable(t *testing.T) {
	s := identified.NewStack("A", "B")
	ids := s.IDs()
	snapshot := s

	s.Update(ids[0], "A'")
	s.Append("C")
	s.Pop(ids[0])

	assert.Equal(t, []string{"A", "B"}, snapshot.Elements())
	assert.Equal(t, []string{"A'"}, s.Elements())

	v, ok := snapshot.Get(ids[1])
	assert.True(t, ok)
	assert.Equal(t, "B", v)

	id, top, ok := s.Last()
	assert.True(t, ok)
	assert.Equal(t, ids[0], id)
	assert.Equal(t, "A'", top)
}
