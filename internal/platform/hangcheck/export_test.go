package hangcheck

// WithCounter replaces the goroutine counter for tests.
func (g *GoroutineChecker) WithCounter(baseline int, count func() int) *GoroutineChecker {
	g.baseline = baseline
	g.count = count
	return g
}
