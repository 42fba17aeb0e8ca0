package abort

import (
	"github.com/go-kit/log"
	"github.com/sharnoff/abort/clock"
)

// Option is a configuration option for a Controller
type Option func(*Controller)

// WithClock sets the clock used to schedule deferred triggers. If c is nil, the system clock is
// used.
func WithClock(c clock.Interface) Option {
	return func(ctrl *Controller) {
		if c != nil {
			ctrl.clock = c
		} else {
			ctrl.clock = clock.System()
		}
	}
}

// WithLogger sets the logger that receives debug entries about the controller's lifecycle. If l is
// nil, nothing is logged.
func WithLogger(l log.Logger) Option {
	return func(ctrl *Controller) {
		if l != nil {
			ctrl.logger = l
		} else {
			ctrl.logger = log.NewNopLogger()
		}
	}
}

// WithMeasures sets the metrics updated by the controller. Nil fields in m, or a nil m, discard
// their updates.
func WithMeasures(m *Measures) Option {
	return func(ctrl *Controller) {
		ctrl.measures = m.orDiscard()
	}
}

// WithTriggerStacks makes the controller record the stack trace of every call that aborts its
// signal. The trace is available from [Signal.TriggerStack] and [AbortedError].Stack.
//
// Collecting the trace costs a call to runtime.Callers per trigger.
func WithTriggerStacks() Option {
	return func(ctrl *Controller) {
		ctrl.recordStacks = true
	}
}
