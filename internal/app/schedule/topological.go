package schedule

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen11/lernago/internal/domain/monorepo"
)

// Topological runs fn for every package of g with at most concurrency in
// flight. A package starts only after all of its local dependencies
// finished. When only packages in dependency cycles remain, they are all
// released at once.
//
// The first error cancels the context passed to running calls, stops new
// launches and is returned once running calls have settled.
func Topological(ctx context.Context, g *monorepo.Graph, concurrency int, fn func(context.Context, *monorepo.Package) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(1, concurrency))

	names := g.Names()
	waiting := make(map[string]int, len(names))
	for _, name := range names {
		node, _ := g.Get(name)
		waiting[name] = len(node.LocalDependencies)
	}

	cyclic := make(map[string]bool)
	for _, cycle := range g.Cycles() {
		for _, name := range cycle {
			cyclic[name] = true
		}
	}

	done := make(chan string, len(names))
	started := make(map[string]bool, len(names))
	running, finished := 0, 0

	launch := func(name string) {
		node, _ := g.Get(name)
		started[name] = true
		running++
		eg.Go(func() error {
			defer func() { done <- name }()
			if ctx.Err() != nil {
				return nil
			}
			return fn(ctx, node.Package)
		})
	}

	for finished < len(names) && ctx.Err() == nil {
		launched := false
		for _, name := range names {
			if ctx.Err() != nil {
				break
			}
			if !started[name] && waiting[name] <= 0 {
				launch(name)
				launched = true
			}
		}

		if running == 0 && !launched {
			releaseStuck(names, started, cyclic, launch)
			continue
		}

		select {
		case name := <-done:
			running--
			finished++
			node, _ := g.Get(name)
			for dependent := range node.LocalDependents {
				waiting[dependent]--
			}
		case <-ctx.Done():
		}
	}

	return eg.Wait()
}

// releaseStuck launches every unstarted package that sits in a cycle, or
// every unstarted package when none does.
func releaseStuck(names []string, started, cyclic map[string]bool, launch func(string)) {
	released := false
	for _, name := range names {
		if !started[name] && cyclic[name] {
			launch(name)
			released = true
		}
	}
	if released {
		return
	}
	for _, name := range names {
		if !started[name] {
			launch(name)
		}
	}
}
