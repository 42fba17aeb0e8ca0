package abort

import (
	"sync/atomic"
)

// Registration is the handle returned by [Signal.Register]. Disposing it removes the callback from
// the signal, if it hasn't already been called.
//
// Unregister and Dispose are aliases, and both are idempotent: regardless of how many times, or
// from how many goroutines, they're called, the underlying removal happens exactly once.
//
// Note that a Registration is not disposed by the signal firing. After the callback has been
// called, IsDisposed still reports false until Unregister or Dispose is called, which is then a
// harmless no-op.
type Registration struct {
	disposed atomic.Bool
	remove   func()
}

// disposedRegistration returns a Registration with nothing left to remove
func disposedRegistration() *Registration {
	r := &Registration{}
	r.disposed.Store(true)
	return r
}

func newRegistration(remove func()) *Registration {
	return &Registration{remove: remove}
}

// Unregister removes the callback, if this is the first call to Unregister or Dispose
func (r *Registration) Unregister() {
	if !r.disposed.CompareAndSwap(false, true) {
		return
	}

	// only the goroutine that won the swap gets here
	remove := r.remove
	r.remove = nil
	if remove != nil {
		remove()
	}
}

// Dispose is an alias for Unregister
func (r *Registration) Dispose() {
	r.Unregister()
}

// IsDisposed reports whether Unregister or Dispose has been called, or the Registration was
// returned already disposed because the signal had fired before registering.
func (r *Registration) IsDisposed() bool {
	return r.disposed.Load()
}
