// Package hangcheck provides a thread-safe registry of components that can
// keep the process alive after a command settles. The lifecycle controller
// checks it on both the success and failure paths and logs a warning for each
// finding; nothing is ever terminated.
package hangcheck

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/jsamuelsen11/lernago/internal/ports"
)

// Compile-time interface checks.
var (
	_ ports.HangRegistry = (*Registry)(nil)
	_ ports.HangChecker  = (*GoroutineChecker)(nil)
)

// Registry is a thread-safe implementation of [ports.HangRegistry].
type Registry struct {
	mu       sync.RWMutex
	checkers []ports.HangChecker
}

// New creates an empty hang check registry.
func New() *Registry {
	return &Registry{}
}

// Register adds a checker to the registry. Safe for concurrent use.
func (r *Registry) Register(checker ports.HangChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers = append(r.checkers, checker)
}

// CheckAll executes all registered checks and returns results keyed by
// checker name. Nil values mean nothing is outstanding. The slice is copied
// under a read lock so checks run without holding the lock.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	checkers := make([]ports.HangChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	results := make(map[string]error, len(checkers))
	for _, c := range checkers {
		results[c.Name()] = c.CheckHang(ctx)
	}
	return results
}

// GoroutineChecker reports goroutines that outlived the command. It compares
// the live count against a baseline taken at construction, allowing slack
// for runtime and telemetry workers that start lazily.
type GoroutineChecker struct {
	baseline int
	slack    int
	count    func() int
}

// NewGoroutineChecker captures the current goroutine count as baseline.
func NewGoroutineChecker(slack int) *GoroutineChecker {
	return &GoroutineChecker{
		baseline: runtime.NumGoroutine(),
		slack:    slack,
		count:    runtime.NumGoroutine,
	}
}

// Name implements [ports.HangChecker].
func (g *GoroutineChecker) Name() string {
	return "goroutines"
}

// CheckHang implements [ports.HangChecker].
func (g *GoroutineChecker) CheckHang(_ context.Context) error {
	live := g.count()
	if extra := live - g.baseline; extra > g.slack {
		return fmt.Errorf("%d goroutines still running (%d more than at startup)", live, extra)
	}
	return nil
}
