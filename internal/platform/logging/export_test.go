package logging

// SetHistoryLimit changes how many records s keeps for diagnostics.
func SetHistoryLimit(s *Sink, limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit = limit
}
