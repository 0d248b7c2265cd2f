// Package casestudies collects small features built on store, reducer,
// effects and sharing. Each subpackage is one feature with its State, its
// sealed Action sum and a Reducer constructor:
//
//   - counter: a counter with a fact request and a timer, two scoped
//     counters, an optional counter presented with IfLet
//   - effectsdemo: delayed effects, cancellation, refresh, a long-living
//     notification stream
//   - weather: debounced location search and forecasts
//   - todos: an identified list with bindings and a debounced sort
//   - navigation: a navigation stack and a multi-destination presentation
//   - shares: one statistic shared in memory, in app storage and in a file
//
// The cmd/casestudies binary drives them from a terminal UI, an HTTP server
// and the command line.
package casestudies
