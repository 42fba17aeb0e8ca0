package abort_test

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/sharnoff/abort"
	"github.com/sharnoff/abort/clock/clocktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newManualController(options ...abort.Option) (*abort.Controller, *clocktest.Manual) {
	clk := clocktest.NewManual(time.Unix(1700000000, 0))
	return abort.NewController(append([]abort.Option{abort.WithClock(clk)}, options...)...), clk
}

func TestControllerTriggerKeepsFirstReason(t *testing.T) {
	t.Parallel()

	var (
		assert = assert.New(t)
		c      = abort.NewController()
		calls  = 0
	)

	c.Signal().Register(func(any) { calls += 1 })

	c.Trigger("first")
	c.Trigger("second")
	c.Trigger(nil)

	assert.Equal(1, calls)
	assert.Equal("first", c.Reason())
}

func TestControllerTriggerAfter(t *testing.T) {
	t.Parallel()

	var (
		assert  = assert.New(t)
		c, clk  = newManualController()
		aborted []time.Time
	)

	c.Signal().Register(func(reason any) {
		assert.Nil(reason)
		aborted = append(aborted, clk.Now())
	})

	start := clk.Now()
	c.TriggerAfter(100 * time.Millisecond)
	assert.Equal(1, clk.Pending())

	clk.Advance(99 * time.Millisecond)
	assert.False(c.IsAborted())

	clk.Advance(time.Millisecond)
	assert.True(c.IsAborted())
	assert.Equal([]time.Time{start.Add(100 * time.Millisecond)}, aborted)
	assert.Zero(clk.Pending())
}

func TestControllerTriggerAfterLastCallWins(t *testing.T) {
	t.Parallel()

	var (
		assert  = assert.New(t)
		c, clk  = newManualController()
		aborted []time.Time
	)

	c.Signal().Register(func(any) { aborted = append(aborted, clk.Now()) })

	start := clk.Now()
	c.TriggerAfter(10 * time.Millisecond)
	c.TriggerAfterMillis(50)
	assert.Equal(1, clk.Pending(), "the first deferred trigger should have been stopped")

	clk.Advance(10 * time.Millisecond)
	assert.False(c.IsAborted())

	clk.Advance(40 * time.Millisecond)
	assert.True(c.IsAborted())
	assert.Equal([]time.Time{start.Add(50 * time.Millisecond)}, aborted)
}

func TestControllerTriggerAfterStopsReplacedTimer(t *testing.T) {
	t.Parallel()

	var (
		clk    = new(clocktest.Mock)
		first  = new(clocktest.MockTimer)
		second = new(clocktest.MockTimer)
		c      = abort.NewController(abort.WithClock(clk))
	)

	clk.OnAfterFunc(time.Second, first).Once()
	clk.OnAfterFunc(2*time.Second, second).Once()
	first.OnStop(true).Once()
	second.OnStop(true).Once()

	c.TriggerAfter(time.Second)
	c.TriggerAfter(2 * time.Second) // stops first
	c.Trigger("manual")             // stops second

	assert.True(t, c.IsAborted())
	assert.Equal(t, "manual", c.Reason())

	clk.AssertExpectations(t)
	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestControllerTriggerCancelsDeferred(t *testing.T) {
	t.Parallel()

	c, clk := newManualController()
	calls := 0
	c.Signal().Register(func(any) { calls += 1 })

	c.TriggerAfter(time.Second)
	c.Trigger("now")
	assert.Zero(t, clk.Pending())

	clk.Advance(time.Hour)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "now", c.Reason())
}

func TestControllerStaleTimerIgnored(t *testing.T) {
	t.Parallel()

	// a timer whose Stop reports it had already started: its callback must do nothing once it's
	// no longer the pending trigger.
	var (
		clk      = new(clocktest.Mock)
		timer    = new(clocktest.MockTimer)
		callback func()
		c        = abort.NewController(abort.WithClock(clk))
	)

	clk.OnAfterFunc(time.Second, timer).Run(func(args mock.Arguments) {
		callback = args.Get(1).(func())
	}).Once()
	timer.OnStop(false).Once()

	c.TriggerAfter(time.Second)
	require.NotNil(t, callback)
	require.True(t, c.TryReset())

	callback()
	assert.False(t, c.IsAborted())

	clk.AssertExpectations(t)
	timer.AssertExpectations(t)
}

func TestControllerDispose(t *testing.T) {
	t.Parallel()

	var (
		assert = assert.New(t)
		c, clk = newManualController()
		calls  = 0
	)

	c.Signal().Register(func(any) { calls += 1 })
	c.TriggerAfter(time.Second)

	assert.False(c.IsDisposed())
	c.Dispose()
	assert.True(c.IsDisposed())
	assert.Zero(clk.Pending(), "dispose should cancel the deferred trigger")

	c.Trigger("ignored")
	c.TriggerAfter(time.Millisecond)
	assert.Zero(clk.Pending())

	clk.Advance(time.Hour)
	assert.False(c.IsAborted())
	assert.Nil(c.Reason())
	assert.Zero(calls)

	// idempotent
	c.Dispose()
	assert.True(c.IsDisposed())
	assert.False(c.TryReset())
}

func TestControllerDisposeRealTimer(t *testing.T) {
	t.Parallel()

	c := abort.NewController()
	fired := make(chan struct{})
	c.Signal().Register(func(any) { close(fired) })

	c.Dispose()
	c.TriggerAfter(5 * time.Millisecond)

	select {
	case <-fired:
		t.Fatal("disposed controller fired")
	case <-time.After(50 * time.Millisecond):
	}
	assert.False(t, c.IsAborted())
}

func TestControllerDisposeAfterTrigger(t *testing.T) {
	t.Parallel()

	c := abort.NewController()
	c.Trigger("done")
	c.Dispose()

	assert.True(t, c.IsAborted())
	assert.True(t, c.IsDisposed())
	assert.Equal(t, "done", c.Reason())
}

func TestControllerTryReset(t *testing.T) {
	t.Parallel()

	var (
		assert  = assert.New(t)
		require = require.New(t)
		c, clk  = newManualController()
	)

	old := c.Signal()
	staleCalls := 0
	old.Register(func(any) { staleCalls += 1 })
	c.TriggerAfter(time.Second)

	require.True(c.TryReset())
	assert.Zero(clk.Pending(), "reset should cancel the deferred trigger")

	fresh := c.Signal()
	assert.NotSame(old, fresh)
	assert.False(fresh.IsAborted())

	// the abandoned signal never fires, even when the controller is triggered
	c.Trigger("after reset")
	assert.True(fresh.IsAborted())
	assert.False(old.IsAborted())
	assert.Zero(staleCalls)

	// resetting an aborted controller yields a fresh signal again
	require.True(c.TryReset())
	assert.False(c.IsAborted())
	assert.Nil(c.Reason())

	c.Dispose()
	before := c.Signal()
	assert.False(c.TryReset())
	assert.Same(before, c.Signal())
}

func TestControllerNonPositiveDelay(t *testing.T) {
	t.Parallel()

	c := abort.NewTimeoutController(0)
	assert.Eventually(t, c.IsAborted, time.Second, time.Millisecond)
	assert.Nil(t, c.Reason())
}

func TestControllerTriggerRacingDispose(t *testing.T) {
	t.Parallel()

	for i := 0; i < 2000; i++ {
		var (
			c     = abort.NewController()
			start = make(chan struct{})
			wg    sync.WaitGroup

			abortedWhenDisposed bool
		)

		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			c.Trigger("x")
		}()
		go func() {
			defer wg.Done()
			<-start
			c.Dispose()
			abortedWhenDisposed = c.IsAborted()
		}()

		close(start)
		wg.Wait()

		require.True(t, c.IsDisposed())
		// a signal that wasn't aborted by the time Dispose returned must stay that way
		require.Equal(t, abortedWhenDisposed, c.IsAborted(), "iteration %d", i)
	}
}

func TestControllerDeferredTriggerRacingDispose(t *testing.T) {
	t.Parallel()

	for i := 0; i < 200; i++ {
		c := abort.NewController()
		c.TriggerAfter(0)
		c.Dispose()
		abortedWhenDisposed := c.IsAborted()

		time.Sleep(time.Millisecond)
		require.Equal(t, abortedWhenDisposed, c.IsAborted(), "iteration %d", i)
	}
}

func TestControllerTriggerAfterMillisClamped(t *testing.T) {
	t.Parallel()

	t.Run("Huge", func(t *testing.T) {
		c, clk := newManualController()
		c.TriggerAfterMillis(math.MaxInt64)

		clk.Advance(24 * time.Hour)
		assert.False(t, c.IsAborted())
		assert.Equal(t, 1, clk.Pending())
	})

	t.Run("HugeNegative", func(t *testing.T) {
		c, clk := newManualController()
		c.TriggerAfterMillis(math.MinInt64)
		assert.False(t, c.IsAborted())

		clk.Advance(0)
		assert.True(t, c.IsAborted())
	})

	t.Run("Ordinary", func(t *testing.T) {
		c, clk := newManualController()
		c.TriggerAfterMillis(1500)

		clk.Advance(1499 * time.Millisecond)
		assert.False(t, c.IsAborted())
		clk.Advance(time.Millisecond)
		assert.True(t, c.IsAborted())
	})
}
