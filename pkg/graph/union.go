package graph

import (
	"fmt"
	"sort"
)

// UnionGraph is the derived graph over a list of per-packet-class
// graphs G1..Gm: N = max(Ni), and coms = union of comsi pointwise. It
// additionally retains the source graphs, since the extended-graph
// encodings (pkg/encode) and the CEGIS synthesizer (pkg/synth) need
// each graph's own dependency relation, not just the merged one, to
// build the per-graph duplicated variables.
type UnionGraph struct {
	*DependencyGraph
	Graphs []*DependencyGraph
}

// Union merges graphs into a UnionGraph. Graphs with differing N are
// zero-extended: channels beyond a graph's own N simply have no
// entries in that graph's coms and are never an input/output of it,
// which is the same as padding with isolated, non-dead-end-checked
// channels.
func Union(name string, graphs []*DependencyGraph) (*UnionGraph, error) {
	if len(graphs) == 0 {
		return nil, fmt.Errorf("graph: union of zero graphs")
	}

	maxN := 0
	for _, g := range graphs {
		if g.N() > maxN {
			maxN = g.N()
		}
	}

	comsUnion := make(map[Channel][]Channel)
	var inputs, outputs []Channel
	seenIn := make(map[Channel]bool)
	seenOut := make(map[Channel]bool)

	for _, g := range graphs {
		for i := 0; i < g.N(); i++ {
			if recv := g.Coms(Channel(i)); len(recv) > 0 {
				comsUnion[Channel(i)] = append(comsUnion[Channel(i)], recv...)
			}
		}
		for _, c := range g.Inputs() {
			if !seenIn[c] {
				seenIn[c] = true
				inputs = append(inputs, c)
			}
		}
		for _, c := range g.Outputs() {
			if !seenOut[c] {
				seenOut[c] = true
				outputs = append(outputs, c)
			}
		}
	}

	// A channel unioned as both input (in one graph) and output (in
	// another) is legal at the union level: the deadlock search only
	// ever looks at coms, inputs, and outputs independently, so
	// building the union graph bypasses New's input/output overlap
	// check -- that check is a per-graph validity rule, not a
	// union-level one.
	dg := &DependencyGraph{
		name:    name,
		n:       maxN,
		inputs:  toSet(inputs),
		outputs: toSet(outputs),
		coms:    toSlice(comsUnion, maxN),
	}

	return &UnionGraph{DependencyGraph: dg, Graphs: graphs}, nil
}

func toSet(cs []Channel) map[Channel]bool {
	m := make(map[Channel]bool, len(cs))
	for _, c := range cs {
		m[c] = true
	}
	return m
}

func toSlice(m map[Channel][]Channel, n int) [][]Channel {
	out := make([][]Channel, n)
	for sender, receivers := range m {
		seen := make(map[Channel]bool, len(receivers))
		dedup := make([]Channel, 0, len(receivers))
		for _, r := range receivers {
			if !seen[r] {
				seen[r] = true
				dedup = append(dedup, r)
			}
		}
		sort.Slice(dedup, func(i, j int) bool { return dedup[i] < dedup[j] })
		out[sender] = dedup
	}
	return out
}
