// Package synth implements the CEGIS escape synthesizer: an outer
// proposal problem that generates candidate escape sets, and an inner
// call into pkg/encode's extended-graph encodings that verifies (or
// refutes) each candidate. Refinement excludes the exact combination a
// counterexample loop came from and repeats.
//
// The loop is modeled as an explicit state machine, rather than as
// control-flow exceptions or coroutine yields: propose -> verify ->
// (done_success | refine -> propose) with an outer-UNSAT exit to
// done_failure.
package synth

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gitrdm/nocverify/pkg/encode"
	"github.com/gitrdm/nocverify/pkg/graph"
	"github.com/gitrdm/nocverify/pkg/satsolver"
)

// Mode selects which extended-graph encoding verifies each candidate.
type Mode int

const (
	// LivenessAssumingMode verifies candidates with the fixed-point
	// extended encoding (the -d CLI mode), assuming each graph is
	// separately known live. Its outer coverage constraint is the
	// strict "⋁ receivers" form.
	LivenessAssumingMode Mode = iota
	// BoundedHopMode verifies candidates with the bounded-hop
	// extended encoding (the -f CLI mode), which does not assume
	// liveness. Its outer coverage constraint is the alternative
	// "⋁ (self, receivers)" form -- see DESIGN.md for why the two
	// modes deliberately differ here.
	BoundedHopMode
)

// state is the CEGIS loop's explicit state.
type state int

const (
	statePropose state = iota
	stateVerify
	stateRefine
	stateDoneSuccess
	stateDoneFailure
)

// Result is the outcome of one Synthesize call.
type Result struct {
	// Feasible reports whether a verified escape set was found.
	Feasible bool
	// Escape holds the verified escape set when Feasible is true.
	Escape []graph.Channel
	// Iterations is the number of outer-solver checks made, including
	// the final check that returns UNSAT when no escape set exists.
	Iterations int

	// counterexample holds the most recent verification failure's
	// loop, consumed by the refine state; it is not part of the
	// public result.
	counterexample []graph.Channel
}

// Synthesize runs the CEGIS loop over the union graph u. hops is only
// consulted in BoundedHopMode (it should be the H computed by
// pkg/reach for the union graph). log may be nil, in which case no
// per-iteration diagnostics are emitted.
func Synthesize(u *graph.UnionGraph, mode Mode, hops int, log *logrus.Entry) (*Result, error) {
	s := satsolver.New()
	x := declareVars(s, u.N())
	buildReachAllOutputs(s, x, u)
	buildOuterCoverage(s, x, u, mode)

	maxIterations := 1
	if u.N() < 30 {
		maxIterations = 1 << uint(u.N())
	} else {
		maxIterations = 1 << 30
	}

	st := statePropose
	iterations := 0
	var result Result

	for {
		switch st {
		case statePropose:
			iterations++
			if iterations > maxIterations {
				return nil, fmt.Errorf("synth: exceeded termination bound of %d iterations", maxIterations)
			}
			res, err := s.Check()
			if err != nil {
				return nil, err
			}
			if res == satsolver.Unsat {
				st = stateDoneFailure
				continue
			}
			result.Escape = extractEscape(s, x, u.N())
			st = stateVerify

		case stateVerify:
			escapeSet := toSet(result.Escape)
			var (
				vr  *encode.ExtendedResult
				err error
			)
			switch mode {
			case LivenessAssumingMode:
				vr, err = encode.LivenessAssuming(u, escapeSet)
			case BoundedHopMode:
				vr, err = encode.BoundedHop(u, escapeSet, hops)
			default:
				return nil, fmt.Errorf("synth: unknown mode %d", mode)
			}
			if err != nil {
				return nil, err
			}
			if log != nil {
				log.WithFields(logrus.Fields{
					"iteration": iterations,
					"candidate": result.Escape,
					"verified":  vr.Result == satsolver.Unsat,
				}).Debug("cegis iteration")
			}
			if vr.Result == satsolver.Unsat {
				st = stateDoneSuccess
				continue
			}
			result.counterexample = vr.Loop
			st = stateRefine

		case stateRefine:
			excludeCombination(s, x, result.counterexample, result.Escape)
			st = statePropose

		case stateDoneSuccess:
			result.Feasible = true
			result.Iterations = iterations
			return &result, nil

		case stateDoneFailure:
			result.Feasible = false
			result.Iterations = iterations
			return &result, nil
		}
	}
}

// excludeCombination asserts ¬(⋀ li) over the counterexample's support
// restricted to the candidate escape set. If the counterexample shares
// no channels with the candidate (which would make the exclusion
// clause vacuous and risk looping forever on the same candidate), the
// whole candidate combination is excluded instead -- a conservative
// fallback that still guarantees progress.
func excludeCombination(s *satsolver.Solver, x []satsolver.Lit, loop, candidate []graph.Channel) {
	inLoop := make(map[graph.Channel]bool, len(loop))
	for _, c := range loop {
		inLoop[c] = true
	}
	var toExclude []graph.Channel
	for _, c := range candidate {
		if inLoop[c] {
			toExclude = append(toExclude, c)
		}
	}
	if len(toExclude) == 0 {
		toExclude = candidate
	}

	negs := make([]satsolver.Lit, len(toExclude))
	for i, c := range toExclude {
		negs[i] = s.Not(x[c])
	}
	s.AssertOr(negs...)
}

func declareVars(s *satsolver.Solver, n int) []satsolver.Lit {
	vars := make([]satsolver.Lit, n)
	for i := range vars {
		vars[i] = s.NewVar(fmt.Sprintf("x[%d]", i))
	}
	return vars
}

// buildOuterCoverage asserts, for each graph g and each non-terminal
// channel i, the outer synthesis problem's coverage constraint: every
// non-terminal channel must have an active receiver-candidate in
// every graph. LivenessAssumingMode uses the strict "⋁ receivers"
// form; BoundedHopMode uses the alternative form that also permits
// x_i itself on the disjunction -- both are preserved as distinct,
// not unified, modes; see DESIGN.md for why.
func buildOuterCoverage(s *satsolver.Solver, x []satsolver.Lit, u *graph.UnionGraph, mode Mode) {
	for _, g := range u.Graphs {
		for i := 0; i < g.N(); i++ {
			recv := g.Coms(graph.Channel(i))
			if len(recv) == 0 {
				continue
			}
			disjuncts := make([]satsolver.Lit, 0, len(recv)+1)
			if mode == BoundedHopMode {
				disjuncts = append(disjuncts, x[i])
			}
			for _, r := range recv {
				disjuncts = append(disjuncts, x[r])
			}
			s.AssertOr(disjuncts...)
		}
	}
}

// buildReachAllOutputs asserts, for each graph g, the reach-all-outputs
// constraint using per-graph duplicated booleans:
//   - each duplicate can only be active if the union-level variable is active
//   - non-output dead-ends' duplicates are false
//   - every input's duplicate is asserted true
//   - every non-terminal duplicate implies some receiver's duplicate is true
func buildReachAllOutputs(s *satsolver.Solver, x []satsolver.Lit, u *graph.UnionGraph) {
	for _, g := range u.Graphs {
		d := make([]satsolver.Lit, g.N())
		for i := range d {
			d[i] = s.NewVar(fmt.Sprintf("rd[%s,%d]", g.Name(), i))
			s.AssertImplies(d[i], x[i])
		}
		for i := 0; i < g.N(); i++ {
			ch := graph.Channel(i)
			recv := g.Coms(ch)
			if len(recv) == 0 {
				if !g.IsOutput(ch) {
					s.AssertNot(d[i])
				}
				continue
			}
			disjuncts := make([]satsolver.Lit, len(recv))
			for j, r := range recv {
				disjuncts[j] = d[r]
			}
			s.AssertOr(append([]satsolver.Lit{s.Not(d[i])}, disjuncts...)...)
		}
		for _, in := range g.Inputs() {
			s.AssertAnd(d[in])
		}
	}
}

func extractEscape(s *satsolver.Solver, x []satsolver.Lit, n int) []graph.Channel {
	var escape []graph.Channel
	for i := 0; i < n; i++ {
		if s.Value(x[i]) {
			escape = append(escape, graph.Channel(i))
		}
	}
	return escape
}

func toSet(cs []graph.Channel) map[graph.Channel]bool {
	m := make(map[graph.Channel]bool, len(cs))
	for _, c := range cs {
		m[c] = true
	}
	return m
}
