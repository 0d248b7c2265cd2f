package identified

import (
	"fmt"
	"sync/atomic"
)

// StackElementID identifies an element of a Stack. IDs come from one
// process-wide sequence, so they are never reused, not even by a stack value
// that replaces another.
type StackElementID int64

var (
	stackIDs atomic.Int64
	births   atomic.Uint64
)

// NextStackElementID reserves a fresh ID for a StackPush.
func NextStackElementID() StackElementID {
	return StackElementID(stackIDs.Add(1) - 1)
}

// reserve makes the sequence skip past id.
func reserve(id StackElementID) {
	for {
		cur := stackIDs.Load()
		if int64(id) < cur || stackIDs.CompareAndSwap(cur, int64(id)+1) {
			return
		}
	}
}

func (id StackElementID) String() string {
	return fmt.Sprintf("#%d", int64(id))
}

type stackEntry[T any] struct {
	id    StackElementID
	birth uint64
	value T
}

// StackSlot is one occupancy of an ID. Pushing a new element under an ID
// that an earlier element held yields a different slot.
type StackSlot struct {
	ID    StackElementID
	birth uint64
}

// Stack is a navigation stack. next only orders explicit pushes within this
// value; fresh IDs come from NextStackElementID.
type Stack[T any] struct {
	entries []stackEntry[T]
	next    StackElementID
}

func NewStack[T any](elems ...T) Stack[T] {
	var s Stack[T]
	for _, e := range elems {
		s.Append(e)
	}
	return s
}

func (s Stack[T]) index(id StackElementID) int {
	for i, e := range s.entries {
		if e.id == id {
			return i
		}
	}
	return -1
}

func (s *Stack[T]) truncate(n int) {
	entries := make([]stackEntry[T], n)
	copy(entries, s.entries[:n])
	s.entries = entries
}

// Append pushes elem and returns its fresh ID.
func (s *Stack[T]) Append(elem T) StackElementID {
	id := NextStackElementID()
	s.push(id, elem)
	return id
}

// Push pushes elem under a caller-chosen id, normally one taken from
// NextStackElementID. It reports false when id is not above every ID this
// stack has held.
func (s *Stack[T]) Push(id StackElementID, elem T) bool {
	if id < s.next {
		return false
	}
	reserve(id)
	s.push(id, elem)
	return true
}

func (s *Stack[T]) push(id StackElementID, elem T) {
	entries := make([]stackEntry[T], len(s.entries), len(s.entries)+1)
	copy(entries, s.entries)
	s.entries = append(entries, stackEntry[T]{id: id, birth: births.Add(1), value: elem})
	s.next = id + 1
}

// Pop removes every element pushed after id, keeping id itself.
func (s *Stack[T]) Pop(to StackElementID) bool {
	i := s.index(to)
	if i < 0 {
		return false
	}
	s.truncate(i + 1)
	return true
}

// PopFrom removes id and every element pushed after it.
func (s *Stack[T]) PopFrom(id StackElementID) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.truncate(i)
	return true
}

func (s *Stack[T]) PopLast() (StackElementID, bool) {
	if len(s.entries) == 0 {
		return 0, false
	}
	id := s.entries[len(s.entries)-1].id
	s.truncate(len(s.entries) - 1)
	return id, true
}

// RemoveAll pops to the root.
func (s *Stack[T]) RemoveAll() {
	s.entries = nil
}

func (s Stack[T]) Get(id StackElementID) (T, bool) {
	if i := s.index(id); i >= 0 {
		return s.entries[i].value, true
	}
	var zero T
	return zero, false
}

func (s *Stack[T]) Update(id StackElementID, elem T) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	entries := make([]stackEntry[T], len(s.entries))
	copy(entries, s.entries)
	entries[i].value = elem
	s.entries = entries
	return true
}

func (s Stack[T]) Contains(id StackElementID) bool {
	return s.index(id) >= 0
}

func (s Stack[T]) Len() int {
	return len(s.entries)
}

func (s Stack[T]) IDs() []StackElementID {
	ids := make([]StackElementID, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.id
	}
	return ids
}

func (s Stack[T]) Slots() []StackSlot {
	slots := make([]StackSlot, len(s.entries))
	for i, e := range s.entries {
		slots[i] = StackSlot{ID: e.id, birth: e.birth}
	}
	return slots
}

func (s Stack[T]) Elements() []T {
	elems := make([]T, len(s.entries))
	for i, e := range s.entries {
		elems[i] = e.value
	}
	return elems
}

// Last returns the top of the stack.
func (s Stack[T]) Last() (StackElementID, T, bool) {
	if len(s.entries) == 0 {
		var zero T
		return 0, zero, false
	}
	e := s.entries[len(s.entries)-1]
	return e.id, e.value, true
}
