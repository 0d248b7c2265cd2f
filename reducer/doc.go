// Package reducer builds one root transition function out of small ones.
//
// A Reducer mutates state in place and returns the effect to run afterwards.
// Combinators lift child reducers into parent state: Scope for a field,
// IfLet for an optional slot, Case for the active variant of a sum type,
// ForEach for an identified.Array and ForEachStack for a navigation stack.
//
// Reducers never block and never touch a Store. State reachable through
// pointers is treated as copy-on-write: combinators replace the pointer
// instead of writing through it, so snapshots a Store already published stay
// unchanged. Reducers written by hand must do the same.
package reducer
