// Package identified holds collections whose elements keep a stable identity,
// so that actions and effects can address one element across mutations.
//
// Containers are values with copy-on-write storage: a copy taken before a
// mutation (for instance a published Store snapshot) never changes.
package identified
