package abort

import (
	"errors"
)

// DefaultMessage is the message carried by an AbortedError when no message was supplied
const DefaultMessage = "The operation was aborted."

// ErrAborted matches every *AbortedError under errors.Is. It can be used directly as a sentinel
// when the message and reason don't matter.
var ErrAborted = errors.New(DefaultMessage)

// AbortedError is the error returned by [Signal.Err] and [Signal.ErrWith] once a signal has been
// aborted.
//
// If Reason is itself an error, it is exposed via Unwrap, so that (for example) a signal derived
// from a context with a deadline satisfies errors.Is(err, context.DeadlineExceeded).
type AbortedError struct {
	Message string
	// Reason is the value the signal was triggered with. It may be nil.
	Reason any
	// Stack is the call site of the trigger, if the controller was built with WithTriggerStacks.
	Stack *StackTrace
}

func (e *AbortedError) Error() string {
	if e.Message == "" {
		return DefaultMessage
	}
	return e.Message
}

// Is reports whether target is ErrAborted
func (e *AbortedError) Is(target error) bool {
	return target == ErrAborted
}

func (e *AbortedError) Unwrap() error {
	if err, ok := e.Reason.(error); ok {
		return err
	}
	return nil
}
