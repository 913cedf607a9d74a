package internal

import "time"

// Clock abstracts time so that timers can be driven by tests
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the subset of *time.Timer used by this package
type Timer interface {
	Stop() bool
}

// SystemClock is the wall clock
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time { return time.Now() }

// AfterFunc schedules f on its own goroutine after d
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
