package effects

import (
	"context"
	"fmt"
	"time"

	"github.com/on-the-ground/composable_go/dependency"
)

// Sleep suspends on the clock carried by the effect context.
func Sleep[A any](d time.Duration) Effect[A] {
	return Run(func(ctx context.Context, _ Sender[A]) error {
		return dependency.FromContext(ctx).Clock.Sleep(ctx, d)
	}, Named[A](fmt.Sprintf("sleep(%s)", d)))
}

// Debounce delays e by d. Debouncing again under the same id before d elapsed
// replaces the pending run.
func Debounce[A any](e Effect[A], id any, d time.Duration) Effect[A] {
	if e.IsNone() {
		return e
	}
	return Concatenate(Sleep[A](d), e).Cancellable(id, true)
}

type timeoutTag struct{}

func (timeoutTag) String() string { return "timeout" }

// Timeout races e against a timer. If e is still running after d it is
// cancelled and onTimeout is sent; if e finishes first the timer is cancelled.
// e is registered under id with cancel-in-flight.
func Timeout[A any](e Effect[A], id any, d time.Duration, onTimeout A) Effect[A] {
	if e.IsNone() {
		return e
	}
	timerID := IDOf(timeoutTag{}, id)
	timer := Run(func(ctx context.Context, send Sender[A]) error {
		if err := dependency.FromContext(ctx).Clock.Sleep(ctx, d); err != nil {
			return err
		}
		// e already finished: nothing to time out
		if CancelInFlight(ctx, id) == 0 {
			return nil
		}
		send.Send(onTimeout)
		return nil
	}, Named[A](fmt.Sprintf("timer(%s)", d)))

	return Merge(
		Concatenate(e, Cancel[A](timerID)).Cancellable(id, true),
		timer.Cancellable(timerID, true),
	)
}
