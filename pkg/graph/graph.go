// Package graph provides the immutable channel-dependency graph value
// used throughout the verifier: construction, validation, and the
// per-channel queries the encodings in pkg/encode and pkg/synth build
// constraints from.
//
// A DependencyGraph is constructed once (from a parsed file, or by a
// caller building one programmatically) and never mutated afterwards.
// Candidate escape sets and counterexample loops are plain slices of
// Channel owned by their callers; this package has no notion of them.
package graph

import (
	"errors"
	"fmt"
	"sort"
)

// Channel is an opaque index into [0, N) identifying one NoC resource
// (buffer, virtual channel) that may hold a packet at a given instant.
type Channel int

// Sentinel errors returned by New. Callers should use errors.Is rather
// than string matching.
var (
	// ErrOutOfRange is returned when an input, output, or receiver
	// index falls outside [0, N).
	ErrOutOfRange = errors.New("graph: channel index out of range")
	// ErrInputOutputOverlap is returned when a channel is listed as
	// both an input and an output of the same graph. This is a
	// per-graph rule only; Union does not apply it.
	ErrInputOutputOverlap = errors.New("graph: channel is both input and output")
)

// DependencyGraph is the tuple (name, N, inputs, outputs, coms): a
// channel count, the input and output channel sets, and each channel's
// receiver set. All fields are private; the graph is reached only
// through the accessors below once constructed.
type DependencyGraph struct {
	name    string
	n       int
	inputs  map[Channel]bool
	outputs map[Channel]bool
	coms    [][]Channel // coms[i] holds the deduplicated, sorted receivers of channel i
}

// New validates and constructs a DependencyGraph. coms maps a sender
// channel to its (possibly duplicated, possibly unsorted) receivers;
// since coms is set-valued, duplicates are removed and receivers are
// sorted for deterministic diagnostics. Channels with no entry in coms
// are treated as having an empty receiver set.
func New(name string, n int, inputs, outputs []Channel, coms map[Channel][]Channel) (*DependencyGraph, error) {
	if n < 0 {
		return nil, fmt.Errorf("graph %q: negative channel count %d", name, n)
	}

	inSet := make(map[Channel]bool, len(inputs))
	for _, c := range inputs {
		if c < 0 || int(c) >= n {
			return nil, fmt.Errorf("graph %q: input %d: %w", name, c, ErrOutOfRange)
		}
		inSet[c] = true
	}

	outSet := make(map[Channel]bool, len(outputs))
	for _, c := range outputs {
		if c < 0 || int(c) >= n {
			return nil, fmt.Errorf("graph %q: output %d: %w", name, c, ErrOutOfRange)
		}
		if inSet[c] {
			return nil, fmt.Errorf("graph %q: channel %d: %w", name, c, ErrInputOutputOverlap)
		}
		outSet[c] = true
	}

	comsSlice := make([][]Channel, n)
	for sender, receivers := range coms {
		if sender < 0 || int(sender) >= n {
			return nil, fmt.Errorf("graph %q: sender %d: %w", name, sender, ErrOutOfRange)
		}
		seen := make(map[Channel]bool, len(receivers))
		dedup := make([]Channel, 0, len(receivers))
		for _, r := range receivers {
			if r < 0 || int(r) >= n {
				return nil, fmt.Errorf("graph %q: coms[%d] receiver %d: %w", name, sender, r, ErrOutOfRange)
			}
			if !seen[r] {
				seen[r] = true
				dedup = append(dedup, r)
			}
		}
		sort.Slice(dedup, func(i, j int) bool { return dedup[i] < dedup[j] })
		comsSlice[sender] = dedup
	}

	return &DependencyGraph{
		name:    name,
		n:       n,
		inputs:  inSet,
		outputs: outSet,
		coms:    comsSlice,
	}, nil
}

// Name returns the human-readable label used only in diagnostics.
func (g *DependencyGraph) Name() string { return g.name }

// N returns the channel count.
func (g *DependencyGraph) N() int { return g.n }

// Inputs returns the sorted source channels.
func (g *DependencyGraph) Inputs() []Channel { return sortedKeys(g.inputs) }

// Outputs returns the sorted sink channels.
func (g *DependencyGraph) Outputs() []Channel { return sortedKeys(g.outputs) }

// IsInput reports whether c is a source channel.
func (g *DependencyGraph) IsInput(c Channel) bool { return g.inputs[c] }

// IsOutput reports whether c is a sink channel.
func (g *DependencyGraph) IsOutput(c Channel) bool { return g.outputs[c] }

// Coms returns the deduplicated, sorted receiver set of channel i. The
// returned slice must not be mutated by the caller.
func (g *DependencyGraph) Coms(i Channel) []Channel {
	if i < 0 || int(i) >= g.n {
		return nil
	}
	return g.coms[i]
}

// IsDeadEnd reports whether channel i has no receivers and is not an
// output -- a packet that reaches it can never progress. pkg/reach
// detects this topology failure before the bounded-hop encoding runs,
// so in that mode a dead end is reported without ever invoking the
// solver.
func (g *DependencyGraph) IsDeadEnd(i Channel) bool {
	return len(g.Coms(i)) == 0 && !g.IsOutput(i)
}

func sortedKeys(m map[Channel]bool) []Channel {
	out := make([]Channel, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
