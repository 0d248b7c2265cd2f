package reducer

import (
	"fmt"
	"reflect"

	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/effects/log"
	"go.uber.org/zap"
)

// Logged logs every action r receives, whether it changed state and the
// effect it returned.
func Logged[S, A any](r Reducer[S, A], logger *zap.Logger) Reducer[S, A] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Reduce[S, A](func(state *S, action A) effects.Effect[A] {
		before := *state
		eff := r.Reduce(state, action)
		log.Write(logger, log.LogDebug, "reduced action", map[string]interface{}{
			"action":  fmt.Sprintf("%T", action),
			"changed": !reflect.DeepEqual(before, *state),
			"effect":  eff.String(),
		})
		return eff
	})
}
