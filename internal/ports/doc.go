// Package ports defines interfaces between layers.
// Client ports are implemented by outbound adapters (filesystem discovery,
// git, child processes) and called by the application layer. The lifecycle
// controller depends only on these interfaces so tests can substitute fakes.
package ports
