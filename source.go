package abort

import (
	"sync"

	"golang.org/x/exp/slices"
)

// source is the one-shot notification underlying a Signal. It transitions from not-aborted to
// aborted at most once, and never back.
type source struct {
	mu sync.Mutex

	fired  bool
	reason any
	stack  *StackTrace
	done   chan struct{}

	listeners []listener
	nextID    uint64
}

type listener struct {
	id uint64
	f  func(reason any)
}

func newSource() *source {
	return &source{done: make(chan struct{})}
}

// firedSource returns a source that has already been fired with a nil reason
func firedSource() *source {
	return &source{fired: true, done: closedChan}
}

func (s *source) isFired() bool {
	return isClosed(s.done)
}

func (s *source) state() (fired bool, reason any, stack *StackTrace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired, s.reason, s.stack
}

// add appends f to the listeners, unless the source has already fired. The returned function
// removes the listener and is safe to call any number of times.
//
// If ok is false, the source had already fired and f was not added; reason is the reason it fired
// with.
func (s *source) add(f func(reason any)) (remove func(), reason any, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fired {
		return nil, s.reason, false
	}

	id := s.nextID
	s.nextID += 1
	s.listeners = append(s.listeners, listener{id: id, f: f})

	return func() { s.remove(id) }, nil, true
}

func (s *source) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.listeners, func(l listener) bool { return l.id == id })
	if idx == -1 {
		// already removed, or the source fired and dropped its listeners
		return
	}
	s.listeners = slices.Delete(s.listeners, idx, idx+1)
}

// fire transitions the source to aborted and calls every listener, in registration order. It
// returns false, without calling anything, if the source had already fired.
func (s *source) fire(reason any, stack *StackTrace) bool {
	listeners, ok := s.abort(reason, stack)
	if ok {
		notify(listeners, reason)
	}
	return ok
}

// abort is the first half of fire: it transitions the source and hands back the listeners that
// were waiting on it, which the caller must pass to notify. Only the transition needs to happen
// under any locks the caller holds.
func (s *source) abort(reason any, stack *StackTrace) ([]listener, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fired {
		return nil, false
	}

	s.fired = true // prevents all further writes to reason, stack and listeners
	s.reason = reason
	s.stack = stack
	listeners := s.listeners
	s.listeners = nil
	close(s.done)
	return listeners, true
}

// notify calls the listeners taken by abort. It must be called without holding any lock: the
// listeners might be reentrant.
func notify(listeners []listener, reason any) {
	for _, l := range listeners {
		l.f(reason)
	}
}

// closedChan is the done channel of sources that are created already fired
var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

func isClosed(c <-chan struct{}) bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}

// count returns the number of listeners still waiting for the source to fire
func (s *source) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}
