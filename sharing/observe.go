package sharing

import (
	"context"
	"fmt"

	"github.com/on-the-ground/composable_go/effects"
)

// Observe is a long-living effect sending toAction(v) for the current value
// and then for every later commit of s, until it is cancelled. Commits made
// faster than the Store reduces them collapse into the latest value.
func Observe[V, A any](s *Shared[V], toAction func(V) A) effects.Effect[A] {
	return effects.Run(func(ctx context.Context, send effects.Sender[A]) error {
		latest := make(chan V, 1)
		offer := func(v V) {
			for {
				select {
				case latest <- v:
					return
				default:
				}
				select {
				case <-latest:
				default:
				}
			}
		}

		unsubscribe := s.cell.subscribeCurrent(func(c Change[V]) { offer(c.New) }, offer)
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case v := <-latest:
				send.Send(toAction(v))
			}
		}
	}, effects.Named[A](fmt.Sprintf("observe(%s)", s.Key())))
}
