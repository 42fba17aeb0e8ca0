// Package clocktest provides clock implementations for tests.
package clocktest

import (
	"sort"
	"sync"
	"time"

	"github.com/sharnoff/abort/clock"
	"golang.org/x/exp/slices"
)

// Manual is a clock.Interface whose time only moves when Advance is called. Callbacks scheduled
// with AfterFunc run synchronously within Advance, on the calling goroutine, in deadline order.
// Callbacks with equal deadlines run in the order they were scheduled.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	nextID uint64
	timers []*manualTimer
}

var _ clock.Interface = (*Manual)(nil)

type manualTimer struct {
	m        *Manual
	id       uint64
	deadline time.Time
	f        func()
}

// NewManual returns a Manual clock starting at the given time
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, f func()) clock.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTimer{m: m, id: m.nextID, deadline: m.now.Add(d), f: f}
	m.nextID += 1
	m.timers = append(m.timers, t)
	return t
}

// Pending returns the number of scheduled callbacks that have neither run nor been stopped
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Advance moves the clock forward by d, running every callback whose deadline falls within the
// new time. Callbacks scheduled by other callbacks are run too, if they're due.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		t := m.popDue(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = t.deadline
		m.mu.Unlock()

		// run without holding the lock; the callback may schedule or stop timers
		t.f()
	}
}

func (m *Manual) popDue(target time.Time) *manualTimer {
	if len(m.timers) == 0 {
		return nil
	}

	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].deadline.Equal(m.timers[j].deadline) {
			return m.timers[i].id < m.timers[j].id
		}
		return m.timers[i].deadline.Before(m.timers[j].deadline)
	})

	if m.timers[0].deadline.After(target) {
		return nil
	}

	t := m.timers[0]
	m.timers = m.timers[1:]
	return t
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	i := slices.Index(t.m.timers, t)
	if i < 0 {
		return false
	}
	t.m.timers = slices.Delete(t.m.timers, i, i+1)
	return true
}
