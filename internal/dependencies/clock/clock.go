package clock

import "time"

// Clock abstracts wall-clock reads so lobby timestamps and launch deadlines
// can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// New returns a RealClock.
func New() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}
