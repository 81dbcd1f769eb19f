package viewer

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer is a pending fire-once callback
type Timer interface {
	Stop() bool
}

// Scheduler arms fire-once callbacks
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct {
	clock clockwork.Clock
}

// NewClockScheduler returns a Scheduler backed by clock
func NewClockScheduler(clock clockwork.Clock) Scheduler {
	return clockScheduler{clock: clock}
}

func (s clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return s.clock.AfterFunc(d, f)
}
