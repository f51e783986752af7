package events

import "time"

// Clock abstracts wall-clock reads so tests and the simulator can
// fast-forward pacing deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the production Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
