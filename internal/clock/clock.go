package clock

import "time"

// Clock abstracts wall-clock time so due-date logic can be driven
// deterministically in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System returns a Clock backed by time.Now.
func System() Clock {
	return systemClock{}
}
