package ports

import "context"

// HangChecker is implemented by any component that can hold the process
// open after a command finished. Examples: the child-process invoker
// (still-running children), the goroutine checker.
type HangChecker interface {
	// Name returns a human-readable identifier for this component
	// (e.g., "child-processes", "goroutines").
	Name() string

	// CheckHang returns nil when the component holds nothing open, or an
	// error describing what is still outstanding.
	CheckHang(ctx context.Context) error
}

// HangRegistry manages registration and execution of hang checkers.
// Used by the lifecycle controller after a command settles.
type HangRegistry interface {
	// Register adds a HangChecker to the registry.
	Register(checker HangChecker)

	// CheckAll executes all registered checks and returns results keyed by
	// checker name. Nil values indicate nothing is outstanding.
	CheckAll(ctx context.Context) map[string]error
}
