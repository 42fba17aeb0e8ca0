package abort

import (
	"time"
)

var (
	noneSignal    = newSignal(newSource(), false)
	abortedSignal = newSignal(firedSource(), true)
)

// None returns a signal that is never aborted. It is the only kind of signal for which
// [Signal.CanBeAborted] returns false.
func None() *Signal {
	return noneSignal
}

// Aborted returns a signal that has already been aborted, with a nil reason
func Aborted() *Signal {
	return abortedSignal
}

// Timeout returns a signal that is aborted, with a nil reason, once d has elapsed.
//
// The controller driving the signal is not exposed; use [NewTimeoutController] to be able to
// cancel the timeout early.
func Timeout(d time.Duration, options ...Option) *Signal {
	return NewTimeoutController(d, options...).Signal()
}

// Any returns a signal that is aborted as soon as any of the given signals is, with the same
// reason. If a given signal is already aborted, the returned signal is too.
//
// With no signals, the returned signal is never aborted (though CanBeAborted still reports true).
//
// However many of the inputs abort, and however close together, the returned signal is aborted
// exactly once. After it is, its registrations on the remaining inputs are disposed. Until then,
// they stay on the inputs: if an input outlives the returned signal's usefulness (e.g. a
// process-wide signal combined with a per-request one), use [AnyWithRelease] instead.
func Any(signals ...*Signal) *Signal {
	sig, _ := AnyWithRelease(signals...)
	return sig
}

// AnyWithRelease is like [Any], but also returns a function that disposes the combined signal's
// registrations on the inputs, without aborting it. After release, the combined signal is only
// aborted if it already was.
//
// release is idempotent and safe to call concurrently with the inputs aborting.
func AnyWithRelease(signals ...*Signal) (sig *Signal, release func()) {
	out := newSource()

	regs := make([]*Registration, 0, len(signals))
	for _, s := range signals {
		regs = append(regs, s.Register(func(reason any) { out.fire(reason, nil) }))
		if out.isFired() {
			break
		}
	}

	release = func() {
		for _, r := range regs {
			r.Dispose()
		}
	}

	// unhook from all inputs once we've fired. If we already have, this runs immediately.
	if _, _, ok := out.add(func(any) { release() }); !ok {
		release()
	}

	return newSignal(out, true), release
}

// LinkSignals returns a new Controller whose signal is triggered when any of the given signals is
// aborted, with the same reason. The controller can also be triggered or disposed directly;
// disposing it removes its registrations from the given signals.
//
// With no signals, the controller's signal is only ever aborted by triggering it directly.
func LinkSignals(signals ...*Signal) *Controller {
	return NewLinkedController(signals)
}

// NewLinkedController is LinkSignals, with options for the returned Controller
func NewLinkedController(signals []*Signal, options ...Option) *Controller {
	c := NewController(options...)

	for _, s := range signals {
		reg := s.Register(func(reason any) { c.Trigger(reason) })
		c.addCleanup(reg.Dispose)
	}

	return c
}

// NewTimeoutController returns a new Controller with a deferred trigger already scheduled after d.
// The caller may still trigger or dispose it early.
func NewTimeoutController(d time.Duration, options ...Option) *Controller {
	c := NewController(options...)
	c.TriggerAfter(d)
	return c
}
