package dependency

import "context"

// Fetch is an asynchronous request/response capability, typically a network
// client method.
type Fetch[I, O any] func(ctx context.Context, input I) (O, error)

// Recorded wraps f and reports every input it is called with.
func (f Fetch[I, O]) Recorded(record func(I)) Fetch[I, O] {
	return func(ctx context.Context, input I) (O, error) {
		record(input)
		return f(ctx, input)
	}
}
