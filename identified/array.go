package identified

import "sort"

type entry[ID comparable, T any] struct {
	id    ID
	value T
}

// Array is an ordered collection of elements identified by a key derived from
// the element itself.
type Array[ID comparable, T any] struct {
	idOf    func(T) ID
	entries []entry[ID, T]
}

// New builds an Array keyed by idOf. Elements with a duplicate ID are skipped.
func New[ID comparable, T any](idOf func(T) ID, elems ...T) Array[ID, T] {
	a := Array[ID, T]{idOf: idOf}
	for _, e := range elems {
		a.Append(e)
	}
	return a
}

func (a Array[ID, T]) index(id ID) int {
	for i, e := range a.entries {
		if e.id == id {
			return i
		}
	}
	return -1
}

func (a *Array[ID, T]) clone(extra int) []entry[ID, T] {
	out := make([]entry[ID, T], len(a.entries), len(a.entries)+extra)
	copy(out, a.entries)
	return out
}

// Append adds elem at the end. It reports false when an element with the same
// ID already exists.
func (a *Array[ID, T]) Append(elem T) bool {
	return a.Insert(len(a.entries), elem)
}

// Insert adds elem at position at, clamped to the array bounds.
func (a *Array[ID, T]) Insert(at int, elem T) bool {
	id := a.idOf(elem)
	if a.index(id) >= 0 {
		return false
	}
	at = max(0, min(at, len(a.entries)))
	entries := a.clone(1)
	entries = append(entries, entry[ID, T]{})
	copy(entries[at+1:], entries[at:])
	entries[at] = entry[ID, T]{id: id, value: elem}
	a.entries = entries
	return true
}

// Remove deletes the element with id.
func (a *Array[ID, T]) Remove(id ID) (T, bool) {
	i := a.index(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	removed := a.entries[i].value
	entries := make([]entry[ID, T], 0, len(a.entries)-1)
	entries = append(entries, a.entries[:i]...)
	a.entries = append(entries, a.entries[i+1:]...)
	return removed, true
}

// RemoveWhere deletes every element matching pred and returns their IDs.
func (a *Array[ID, T]) RemoveWhere(pred func(T) bool) []ID {
	var removed []ID
	entries := make([]entry[ID, T], 0, len(a.entries))
	for _, e := range a.entries {
		if pred(e.value) {
			removed = append(removed, e.id)
			continue
		}
		entries = append(entries, e)
	}
	if len(removed) > 0 {
		a.entries = entries
	}
	return removed
}

// Move moves the element at from to position to.
func (a *Array[ID, T]) Move(from, to int) {
	if from < 0 || from >= len(a.entries) || from == to {
		return
	}
	to = max(0, min(to, len(a.entries)-1))
	entries := a.clone(0)
	moved := entries[from]
	if from < to {
		copy(entries[from:to], entries[from+1:to+1])
	} else {
		copy(entries[to+1:from+1], entries[to:from])
	}
	entries[to] = moved
	a.entries = entries
}

// Sort orders elements by less, keeping equal elements in place.
func (a *Array[ID, T]) Sort(less func(x, y T) bool) {
	entries := a.clone(0)
	sort.SliceStable(entries, func(i, j int) bool {
		return less(entries[i].value, entries[j].value)
	})
	a.entries = entries
}

func (a Array[ID, T]) Get(id ID) (T, bool) {
	if i := a.index(id); i >= 0 {
		return a.entries[i].value, true
	}
	var zero T
	return zero, false
}

// Update replaces the element with id. The replacement must keep its ID.
func (a *Array[ID, T]) Update(id ID, elem T) bool {
	i := a.index(id)
	if i < 0 || a.idOf(elem) != id {
		return false
	}
	entries := a.clone(0)
	entries[i].value = elem
	a.entries = entries
	return true
}

func (a Array[ID, T]) Contains(id ID) bool {
	return a.index(id) >= 0
}

func (a Array[ID, T]) Len() int {
	return len(a.entries)
}

func (a Array[ID, T]) IDs() []ID {
	ids := make([]ID, len(a.entries))
	for i, e := range a.entries {
		ids[i] = e.id
	}
	return ids
}

func (a Array[ID, T]) Elements() []T {
	elems := make([]T, len(a.entries))
	for i, e := range a.entries {
		elems[i] = e.value
	}
	return elems
}

// At returns the element at position i.
func (a Array[ID, T]) At(i int) T {
	return a.entries[i].value
}
