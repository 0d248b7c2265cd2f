package effects

import "context"

// Result carries the outcome of a fallible operation back into a reducer.
type Result[T any] struct {
	Value T
	Err   error
}

func ResultFrom[T any](value T, err error) Result[T] {
	return Result[T]{Value: value, Err: err}
}

func (r Result[T]) Get() (T, error) {
	return r.Value, r.Err
}

func (r Result[T]) Failed() bool {
	return r.Err != nil
}

// Try runs fn and sends its outcome wrapped as an action, success or failure.
// Nothing is sent when the effect was cancelled while fn ran.
func Try[T, A any](fn func(ctx context.Context) (T, error), wrap func(Result[T]) A, opts ...RunOption[A]) Effect[A] {
	opts = append([]RunOption[A]{Named[A]("try")}, opts...)
	return Run(func(ctx context.Context, send Sender[A]) error {
		res := ResultFrom(fn(ctx))
		if err := ctx.Err(); err != nil {
			return err
		}
		send.Send(wrap(res))
		return nil
	}, opts...)
}
