// Package effects describes and runs the asynchronous work a reducer asks for.
//
// A reducer never performs side effects itself. It returns an Effect value, a
// plain description built from a small algebra:
//
//   - None: nothing to do.
//   - Run: an operation on its own goroutine that may send actions back.
//   - Cancel: cancel every task registered under an ID.
//   - Merge: start several effects concurrently.
//   - Concatenate: start each effect after the previous one settled.
//
// Cancellable registers an effect under an ID, optionally cancelling what was
// already registered there ("latest request wins"). Debounce and Timeout are
// built from these pieces.
//
// An Engine, owned by a Store, starts effects after each reduction. Reductions
// and the cancellation registry are confined to the Store's executor, so a
// Cancel takes effect before the next action is reduced and a cancelled task
// can never deliver another action.
//
// Example:
//
//	func reduce(state *Search, action Action) effects.Effect[Action] {
//	    switch a := action.(type) {
//	    case QueryChanged:
//	        state.Query = a.Query
//	        return effects.Debounce(
//	            effects.Try(func(ctx context.Context) ([]Location, error) {
//	                return search(ctx, a.Query)
//	            }, func(r effects.Result[[]Location]) Action { return Response{r} }),
//	            searchID, 300*time.Millisecond,
//	        )
//	    }
//	    return effects.None[Action]()
//	}
package effects
