package navigation

import (
	"context"
	"time"

	"github.com/on-the-ground/composable_go/casestudies/facts"
	"github.com/on-the-ground/composable_go/dependency"
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/reducer"
)

// Screen is one element of the navigation path: ScreenA, ScreenB or ScreenC.
type Screen interface {
	Name() string
}

type ScreenA struct {
	Count     int
	Fact      string
	IsLoading bool
}

type ScreenB struct{}

type ScreenC struct {
	Count          int
	IsTimerRunning bool
}

func (ScreenA) Name() string { return "Screen A" }
func (ScreenB) Name() string { return "Screen B" }
func (ScreenC) Name() string { return "Screen C" }

// ScreenAction is the sum of the actions of every screen. Each screen's
// actions also implement that screen's own action interface.
type ScreenAction interface {
	screenAction()
}

type AAction interface {
	ScreenAction
	screenA()
}

type (
	ADecrementTapped struct{}
	AIncrementTapped struct{}
	ADismissTapped   struct{}
	AFactTapped      struct{}
	AFactResponse    struct{ Result effects.Result[string] }
)

func (ADecrementTapped) screenAction() {}
func (AIncrementTapped) screenAction() {}
func (ADismissTapped) screenAction()   {}
func (AFactTapped) screenAction()      {}
func (AFactResponse) screenAction()    {}
func (ADecrementTapped) screenA()      {}
func (AIncrementTapped) screenA()      {}
func (ADismissTapped) screenA()        {}
func (AFactTapped) screenA()           {}
func (AFactResponse) screenA()         {}

// BAction asks the parent to push another screen; ScreenB itself has no state
// to change.
type BAction interface {
	ScreenAction
	screenB()
}

type (
	BScreenATapped struct{}
	BScreenBTapped struct{}
	BScreenCTapped struct{}
)

func (BScreenATapped) screenAction() {}
func (BScreenBTapped) screenAction() {}
func (BScreenCTapped) screenAction() {}
func (BScreenATapped) screenB()      {}
func (BScreenBTapped) screenB()      {}
func (BScreenCTapped) screenB()      {}

type CAction interface {
	ScreenAction
	screenC()
}

type (
	CStartTapped struct{}
	CStopTapped  struct{}
	CTimerTick   struct{}
)

func (CStartTapped) screenAction() {}
func (CStopTapped) screenAction()  {}
func (CTimerTick) screenAction()   {}
func (CStartTapped) screenC()      {}
func (CStopTapped) screenC()       {}
func (CTimerTick) screenC()        {}

var screenCTimerID = effects.NewToken("navigation.screenC.timer")

func reduceA(state *ScreenA, action AAction) effects.Effect[AAction] {
	switch action := action.(type) {
	case ADecrementTapped:
		state.Count--
		return effects.None[AAction]()

	case AIncrementTapped:
		state.Count++
		return effects.None[AAction]()

	case ADismissTapped:
		return effects.Run(func(ctx context.Context, _ effects.Sender[AAction]) error {
			dependency.Dismiss(ctx)
			return nil
		}, effects.Named[AAction]("dismiss"))

	case AFactTapped:
		state.IsLoading = true
		count := state.Count
		return effects.Try(
			func(ctx context.Context) (string, error) { return facts.Fetch(ctx, count) },
			func(r effects.Result[string]) AAction { return AFactResponse{Result: r} },
		)

	case AFactResponse:
		state.IsLoading = false
		fact, err := action.Result.Get()
		if err != nil {
			fact = ""
		}
		state.Fact = fact
		return effects.None[AAction]()

	default:
		panic("exhaustive match fallback, screen A action")
	}
}

func reduceC(state *ScreenC, action CAction) effects.Effect[CAction] {
	switch action.(type) {
	case CStartTapped:
		state.IsTimerRunning = true
		timer := effects.Run(func(ctx context.Context, send effects.Sender[CAction]) error {
			for range dependency.FromContext(ctx).Clock.Timer(ctx, time.Second) {
				send.Send(CTimerTick{})
			}
			return ctx.Err()
		}, effects.Named[CAction]("screenC.timer")).Cancellable(screenCTimerID, false)
		return timer.Concatenate(effects.Send[CAction](CStopTapped{}))

	case CStopTapped:
		state.IsTimerRunning = false
		return effects.Cancel[CAction](screenCTimerID)

	case CTimerTick:
		state.Count++
		return effects.None[CAction]()

	default:
		panic("exhaustive match fallback, screen C action")
	}
}

// screenReducer routes each screen's actions to the screen when it is the
// active variant.
func screenReducer() reducer.Reducer[Screen, ScreenAction] {
	return reducer.Combine(
		reducer.Case(
			func(s Screen) (ScreenA, bool) { a, ok := s.(ScreenA); return a, ok },
			func(a ScreenA) Screen { return a },
			reducer.TypePath[ScreenAction](func(a AAction) ScreenAction { return a }),
			reducer.Reducer[ScreenA, AAction](reducer.Reduce[ScreenA, AAction](reduceA)),
		),
		reducer.Case(
			func(s Screen) (ScreenC, bool) { c, ok := s.(ScreenC); return c, ok },
			func(c ScreenC) Screen { return c },
			reducer.TypePath[ScreenAction](func(a CAction) ScreenAction { return a }),
			reducer.Reducer[ScreenC, CAction](reducer.Reduce[ScreenC, CAction](reduceC)),
		),
	)
}
