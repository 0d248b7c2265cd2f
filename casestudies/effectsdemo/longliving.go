package effectsdemo

import (
	"context"
	"time"

	"github.com/on-the-ground/composable_go/dependency"
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/reducer"
)

// NotificationsKey binds a Notifications source in a dependency.Values bundle.
const NotificationsKey = "casestudies.notifications"

// Notifications streams an event until ctx is done, then closes the channel.
type Notifications func(ctx context.Context) <-chan struct{}

// Ticking notifies every interval of the clock carried by ctx.
func Ticking(interval time.Duration) Notifications {
	return func(ctx context.Context) <-chan struct{} {
		out := make(chan struct{})
		ticks := dependency.FromContext(ctx).Clock.Timer(ctx, interval)
		go func() {
			defer close(out)
			for range ticks {
				select {
				case out <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}()
		return out
	}
}

type LongLivingState struct {
	NotificationCount int
}

type LongLivingAction interface {
	longLivingAction()
}

type (
	// Appeared starts observing. Cancelling the Task it returns stops it.
	Appeared             struct{}
	NotificationReceived struct{}
)

func (Appeared) longLivingAction()             {}
func (NotificationReceived) longLivingAction() {}

func LongLiving() reducer.Reducer[LongLivingState, LongLivingAction] {
	return reducer.Reduce[LongLivingState, LongLivingAction](func(state *LongLivingState, action LongLivingAction) effects.Effect[LongLivingAction] {
		switch action.(type) {
		case Appeared:
			return effects.Run(func(ctx context.Context, send effects.Sender[LongLivingAction]) error {
				notifications, err := dependency.Lookup[Notifications](ctx, NotificationsKey)
				if err != nil {
					return err
				}
				for range notifications(ctx) {
					send.Send(NotificationReceived{})
				}
				return ctx.Err()
			}, effects.Named[LongLivingAction]("notifications"))

		case NotificationReceived:
			state.NotificationCount++
			return effects.None[LongLivingAction]()

		default:
			panic("exhaustive match fallback, long-living action")
		}
	})
}
