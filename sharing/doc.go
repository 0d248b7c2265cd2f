// Package sharing holds state cells shared between features and Stores.
//
// A Key names a cell and the strategy persisting it. Every Open of the same
// key in a Registry returns a handle on one reference-counted cell, so all
// holders observe the same value:
//
//	count := sharing.Open(sharing.AppStorage[int]("count", backend), 0)
//	defer count.Release()
//	count.Update(func(n *int) { *n++ })
//
// Writes are applied and delivered to subscribers synchronously inside Set.
// Persistence happens afterwards on a background writer; Flush waits for it.
package sharing
