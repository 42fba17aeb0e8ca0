package abort

import (
	"context"
)

// FromContext returns a signal that is aborted when ctx is done, with context.Cause(ctx) as the
// reason. If ctx can never be done (its Done channel is nil), FromContext returns [None].
//
// The returned signal holds a reference to ctx until ctx is done.
func FromContext(ctx context.Context) *Signal {
	if ctx.Done() == nil {
		return None()
	}

	c := NewController()
	context.AfterFunc(ctx, func() { c.Trigger(context.Cause(ctx)) })
	return c.Signal()
}
