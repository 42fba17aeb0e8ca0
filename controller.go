package abort

import (
	"math"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/sharnoff/abort/clock"
)

// Controller owns a [Signal] and is the only way to abort it.
//
// A Controller's signal is aborted at most once, either immediately with [Controller.Trigger] or
// later with [Controller.TriggerAfter]. Disposing the controller cancels any deferred trigger and
// turns all further Trigger, TriggerAfter and TryReset calls into no-ops; it does not abort the
// signal.
//
// The zero value is not usable; use [NewController] or one of the combinators.
type Controller struct {
	mu sync.Mutex

	src    *source
	signal *Signal

	pending  *deferredTrigger
	disposed bool

	// onDispose holds cleanup for resources owned by the controller (e.g. upstream registrations
	// of a linked controller). Run once, by Dispose.
	onDispose []func()

	clock        clock.Interface
	logger       log.Logger
	measures     Measures
	recordStacks bool
}

// deferredTrigger is the token for a pending TriggerAfter. The timer callback only fires the
// signal if its token is still the controller's pending one.
type deferredTrigger struct {
	timer clock.Timer
	// scheduledAt is the stack of the TriggerAfter call, if the controller records stacks
	scheduledAt *StackTrace
}

// NewController creates a Controller with a fresh, not-aborted signal
func NewController(options ...Option) *Controller {
	src := newSource()
	c := &Controller{
		src:      src,
		signal:   newSignal(src, true),
		clock:    clock.System(),
		logger:   log.NewNopLogger(),
		measures: (*Measures)(nil).orDiscard(),
	}

	for _, o := range options {
		o(c)
	}

	return c
}

// Signal returns the controller's current signal.
//
// The signal only changes with a successful [Controller.TryReset].
func (c *Controller) Signal() *Signal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signal
}

// IsAborted reports whether the controller's current signal has been aborted
func (c *Controller) IsAborted() bool {
	return c.Signal().IsAborted()
}

// Reason returns the reason the controller's current signal was aborted with
func (c *Controller) Reason() any {
	return c.Signal().Reason()
}

// IsDisposed reports whether [Controller.Dispose] has been called
func (c *Controller) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// Trigger aborts the signal with the reason, cancelling any pending deferred trigger.
//
// Callbacks registered on the signal are called synchronously, in registration order, before
// Trigger returns. If the signal was already aborted, or the controller has been disposed, Trigger
// does nothing; in particular, the reason from the first Trigger is kept.
func (c *Controller) Trigger(reason any) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}

	c.cancelPending()
	done := c.abort(reason, nil, 1)
	c.mu.Unlock()

	done()
}

// abort transitions the current signal while c.mu is held, so that it can't interleave with
// Dispose or TryReset. The returned function calls the signal's callbacks and must be called after
// c.mu is released. skip is the number of frames above abort to leave out of the recorded stack
// trace.
func (c *Controller) abort(reason any, parent *StackTrace, skip uint) func() {
	var stack *StackTrace
	if c.recordStacks {
		st := GetStackTrace(parent, skip+1)
		stack = &st
	}

	listeners, ok := c.src.abort(reason, stack)
	if !ok {
		return func() {}
	}

	return func() {
		c.measures.Triggers.Add(1)
		level.Debug(c.logger).Log("msg", "signal aborted", "reason", reason)
		notify(listeners, reason)
	}
}

// TriggerAfter arranges for the signal to be aborted, with a nil reason, once d has elapsed.
//
// Only one deferred trigger may be pending at a time: calling TriggerAfter again replaces the
// earlier one, which will then never fire. Calling Trigger or Dispose also cancels it. If the
// controller has been disposed, TriggerAfter does nothing.
func (c *Controller) TriggerAfter(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return
	}

	c.cancelPending()

	dt := &deferredTrigger{}
	if c.recordStacks {
		st := GetStackTrace(nil, 1)
		dt.scheduledAt = &st
	}
	// The callback can't observe dt.timer before it's set: it needs c.mu, which we hold.
	dt.timer = c.clock.AfterFunc(d, func() { c.deferredFire(dt) })
	c.pending = dt

	c.measures.Scheduled.Add(1)
	level.Debug(c.logger).Log("msg", "deferred trigger scheduled", "delay", d)
}

// TriggerAfterMillis is TriggerAfter with the delay given in milliseconds. Delays too large to be
// represented as a time.Duration are clamped to the largest one (roughly 292 years).
func (c *Controller) TriggerAfterMillis(ms int64) {
	c.TriggerAfter(millis(ms))
}

const maxMillis = int64(math.MaxInt64 / time.Millisecond)

func millis(ms int64) time.Duration {
	switch {
	case ms > maxMillis:
		return math.MaxInt64
	case ms < -maxMillis:
		return math.MinInt64
	default:
		return time.Duration(ms) * time.Millisecond
	}
}

func (c *Controller) deferredFire(dt *deferredTrigger) {
	c.mu.Lock()
	if c.pending != dt {
		// replaced, cancelled, or the controller was reset/disposed after the timer had started
		c.mu.Unlock()
		return
	}

	c.pending = nil
	done := c.abort(nil, dt.scheduledAt, 1)
	c.mu.Unlock()

	done()
}

// cancelPending stops the pending deferred trigger, if any. c.mu must be held.
func (c *Controller) cancelPending() {
	if c.pending != nil {
		c.pending.timer.Stop()
		c.pending = nil
	}
}

// Dispose marks the controller as disposed and cancels any pending deferred trigger. Dispose does
// not abort the signal: if it wasn't already aborted when Dispose was called, it never will be.
// (Callbacks of a Trigger that aborted the signal just before Dispose may still be running on the
// triggering goroutine when Dispose returns.)
//
// Dispose is idempotent.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}

	c.disposed = true
	c.cancelPending()
	cleanup := c.onDispose
	c.onDispose = nil
	c.mu.Unlock()

	for _, f := range cleanup {
		f()
	}

	c.measures.Disposals.Add(1)
	level.Debug(c.logger).Log("msg", "controller disposed")
}

// TryReset replaces the controller's signal with a fresh, not-aborted one, cancelling any pending
// deferred trigger. It returns false, changing nothing, if the controller has been disposed.
//
// Callers beware: the previous signal is abandoned, not transferred. Callbacks registered on it
// (and goroutines waiting on it) are NOT moved to the new signal, and will never be called unless
// the old signal had already been aborted. Anything observing the controller must fetch the new
// signal from [Controller.Signal] after a reset.
func (c *Controller) TryReset() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return false
	}

	c.cancelPending()
	c.src = newSource()
	c.signal = newSignal(c.src, true)

	c.measures.Resets.Add(1)
	level.Debug(c.logger).Log("msg", "controller reset")
	return true
}

// addCleanup registers f to run when the controller is disposed. If the controller has already
// been disposed, f is called immediately.
func (c *Controller) addCleanup(f func()) {
	c.mu.Lock()
	if !c.disposed {
		c.onDispose = append(c.onDispose, f)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	f()
}
