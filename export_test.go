package abort

// ListenerCount exposes the number of callbacks waiting on s, for tests
func ListenerCount(s *Signal) int {
	return s.listenerCount()
}
