// Package clock abstracts the parts of the time package that controllers depend on, so that
// deferred triggers can be driven deterministically in tests.
package clock

import "time"

// Interface represents a clock able to report the current time and schedule callbacks
type Interface interface {
	Now() time.Time

	// AfterFunc waits for the duration to elapse and then calls f in its own goroutine, as with
	// time.AfterFunc.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending callback scheduled through Interface.AfterFunc.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the callback has already been
	// started or the timer was already stopped.
	Stop() bool
}

type systemClock struct{}

func (sc systemClock) Now() time.Time {
	return time.Now()
}

func (sc systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return WrapTimer(time.AfterFunc(d, f))
}

// System returns a clock backed by the time package
func System() Interface {
	return systemClock{}
}

// WrapTimer wraps a time.Timer in a clock.Timer. A typical usage would be
// WrapTimer(time.AfterFunc(time.Second, f)).
func WrapTimer(t *time.Timer) Timer {
	return t
}
