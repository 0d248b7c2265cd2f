package effects

import (
	"time"

	"github.com/rickb777/date/v2/timespan"
)

// TimeSpan is when something happened, widened to the runtime's resolution.
type TimeSpan = timespan.TimeSpan

const resolution = time.Millisecond

// Around is the smallest span the runtime considers "at t".
func Around(t time.Time) TimeSpan {
	return timespan.BetweenTimes(t.Add(-resolution), t.Add(resolution))
}

func Now() TimeSpan {
	return Around(time.Now())
}

// TimeBounded is implemented by records stamped with the span they happened
// in, such as shared state changes.
type TimeBounded interface {
	TimeSpan() TimeSpan
}

// Before reports whether a ended before b started.
func Before(a, b TimeBounded) bool {
	return a.TimeSpan().End().Before(b.TimeSpan().Start())
}
