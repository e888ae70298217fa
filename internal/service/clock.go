package service

import "time"

// Clock abstracts time and timer scheduling so the debounce and retry logic
// can run under virtual time in tests.
type Clock interface {
	Now() time.Time
	// AfterFunc schedules fn to run on its own goroutine after d.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is the controllable handle returned by Clock.AfterFunc.
type Timer interface {
	// Stop prevents the timer from firing. Reports whether it was pending.
	Stop() bool
	// Reset reschedules the timer to fire after d.
	Reset(d time.Duration) bool
}

type realClock struct{}

// NewRealClock returns a Clock backed by the runtime timers.
func NewRealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
