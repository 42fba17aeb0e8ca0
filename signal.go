package abort

import (
	"context"
)

// Signal is a read-only view of a one-shot cancellation notification. A Signal starts out
// not-aborted and may be aborted at most once, by its [Controller], carrying an optional reason.
//
// Callers observe a Signal by polling ([Signal.IsAborted], [Signal.Err]), by registering a
// callback ([Signal.Register]), or by waiting ([Signal.Wait], [Signal.Done]).
//
// All methods are safe for concurrent use.
type Signal struct {
	src          *source
	canBeAborted bool
}

func newSignal(src *source, canBeAborted bool) *Signal {
	return &Signal{src: src, canBeAborted: canBeAborted}
}

// IsAborted reports whether the signal has been aborted
func (s *Signal) IsAborted() bool {
	return s.src.isFired()
}

// Reason returns the value the signal was aborted with, or nil if it hasn't been aborted (or was
// aborted without a reason).
func (s *Signal) Reason() any {
	_, reason, _ := s.src.state()
	return reason
}

// CanBeAborted returns false only for signals returned by [None], which will never be aborted.
//
// Already-aborted signals can be aborted, in this sense.
func (s *Signal) CanBeAborted() bool {
	return s.canBeAborted
}

// TriggerStack returns the call site that aborted the signal, if the signal's controller was
// created with [WithTriggerStacks].
func (s *Signal) TriggerStack() (StackTrace, bool) {
	_, _, stack := s.src.state()
	if stack == nil {
		return StackTrace{}, false
	}
	return *stack, true
}

// Err returns nil if the signal hasn't been aborted, and an *AbortedError with [DefaultMessage]
// otherwise.
//
// Err is meant to be checked at cooperative cancellation points inside long-running work.
func (s *Signal) Err() error {
	return s.ErrWith("")
}

// ErrWith is like [Signal.Err], but the returned *AbortedError carries the message. An empty
// message is replaced by [DefaultMessage].
func (s *Signal) ErrWith(message string) error {
	fired, reason, stack := s.src.state()
	if !fired {
		return nil
	}

	if message == "" {
		message = DefaultMessage
	}
	return &AbortedError{Message: message, Reason: reason, Stack: stack}
}

// Register arranges for f to be called with the abort reason when the signal is aborted.
//
// If the signal has already been aborted, f is called immediately, before Register returns, and
// the returned Registration is already disposed. Otherwise f is called exactly once, on the
// goroutine that aborts the signal, after every callback registered before it. Disposing the
// returned Registration before the signal is aborted guarantees f will not be called; disposing it
// from an earlier callback, while the abort is in progress, has no effect on that abort.
//
// Callbacks may themselves call into this package, including registering on or disposing
// registrations of the same signal.
func (s *Signal) Register(f func(reason any)) *Registration {
	if !s.canBeAborted {
		// nothing will ever call f; don't keep it around
		return newRegistration(nil)
	}

	remove, reason, ok := s.src.add(f)
	if !ok {
		f(reason)
		return disposedRegistration()
	}

	return newRegistration(remove)
}

// Done returns a channel that's closed when the signal is aborted. For signals returned by [None],
// the channel is never closed.
func (s *Signal) Done() <-chan struct{} {
	return s.src.done
}

// Wait blocks until the signal is aborted, returning nil, or until ctx is done, returning
// ctx.Err().
//
// If the signal is already aborted, Wait returns nil immediately, even if ctx is done too.
func (s *Signal) Wait(ctx context.Context) error {
	if s.IsAborted() {
		return nil
	}

	aborted := make(chan struct{})
	reg := s.Register(func(any) { close(aborted) })
	defer reg.Dispose()

	select {
	case <-aborted:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Context returns a child of parent that is canceled when the signal is aborted, with the
// signal's *AbortedError as its cause (see [context.Cause]).
//
// Calling the returned CancelFunc releases the resources associated with the context, as with
// [context.WithCancel].
func (s *Signal) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	reg := s.Register(func(any) { cancel(s.Err()) })
	stop := context.AfterFunc(ctx, reg.Dispose)

	return ctx, func() {
		stop()
		reg.Dispose()
		cancel(context.Canceled)
	}
}

// listenerCount is the number of callbacks still waiting on the signal
func (s *Signal) listenerCount() int {
	return s.src.count()
}
