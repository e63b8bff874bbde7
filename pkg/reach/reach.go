// Package reach implements a breadth-first reachability analyzer: for
// each input channel, it walks the forward dependency relation and
// either reports a non-output dead-end (aborting the calling mode
// before the solver ever runs) or the maximum hop distance reachable
// from any input. That bound feeds H in the bounded-hop extended-graph
// encoding (pkg/encode.BoundedHop).
package reach

import "github.com/gitrdm/nocverify/pkg/graph"

// Result is the outcome of Analyze.
type Result struct {
	// MaxHop is the maximum BFS distance from any input to any
	// channel it can reach. It is only meaningful when HasDeadEnd is
	// false.
	MaxHop int
	// HasDeadEnd reports whether some channel reachable from an input
	// is a non-output terminal -- an unreachable-packet topology
	// failure.
	HasDeadEnd bool
	// DeadEnd is the first such channel found, for diagnostics.
	DeadEnd graph.Channel
}

// Analyze performs a BFS traversal from every input channel. Within H
// = Analyze(g).MaxHop hops, any indirect dependency either reaches an
// output or revisits a node a BFS has already counted; deeper
// unrolling in the bounded-hop encoding cannot uncover new loops.
func Analyze(g *graph.DependencyGraph) Result {
	maxHop := 0
	for _, in := range g.Inputs() {
		dist := map[graph.Channel]int{in: 0}
		queue := []graph.Channel{in}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]

			if g.IsDeadEnd(cur) {
				return Result{MaxHop: -1, HasDeadEnd: true, DeadEnd: cur}
			}

			for _, next := range g.Coms(cur) {
				if _, seen := dist[next]; seen {
					continue
				}
				d := dist[cur] + 1
				dist[next] = d
				if d > maxHop {
					maxHop = d
				}
				queue = append(queue, next)
			}
		}
	}
	return Result{MaxHop: maxHop}
}
