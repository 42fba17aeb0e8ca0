/*
Package abort provides one-shot cancellation signals with explicit registration handles, and a
handful of combinators for deriving new signals from existing ones.

The tools belong to a few groups:

- Signals and their owners: [Signal], [Controller], [Registration]
- Combinators: [None], [Aborted], [Timeout], [Any], [LinkSignals], [NewTimeoutController]
- Bridges to the rest of the world: [FromContext], [Signal.Context], [NotifyOS]
- Diagnostics: [WithTriggerStacks], [StackTrace], [Measures]

# Signals

A [Signal] transitions at most once, from not-aborted to aborted, optionally carrying a reason.
Only the [Controller] that owns a signal can abort it, either right away with
[Controller.Trigger] or later with [Controller.TriggerAfter].

Callbacks are attached with [Signal.Register], which returns a [Registration] to detach them.
Callbacks are called at most once, synchronously, in the order they were registered, by whoever
aborts the signal. Registering on a signal that has already been aborted calls the callback
immediately, so late observers never miss the event.

Work that polls for cancellation should check [Signal.Err] at convenient points, and treat an
error matching [ErrAborted] as a normal outcome rather than a failure.

# Controller lifecycle

Disposing a [Controller] cancels any pending deferred trigger and makes all further triggers
no-ops. It does not abort the signal. [Controller.TryReset] swaps in a fresh signal; callbacks
registered on the old one are abandoned, not transferred. See its documentation.

# Combinators

[Any] and [LinkSignals] fan many signals in to one. However many of the inputs are aborted, the
output is aborted exactly once, with the reason of the first input to abort.
*/
package abort
