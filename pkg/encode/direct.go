// Package encode builds the propositional constraint systems the
// verifier reasons about: the direct encoding (liveness and naive
// deadlock search) and the extended-graph encoding used to verify
// candidate escape sets. Every builder here is a small function over a
// fresh satsolver.Solver; there is no shared base type.
package encode

import (
	"sort"
	"strconv"

	"github.com/gitrdm/nocverify/pkg/graph"
	"github.com/gitrdm/nocverify/pkg/satsolver"
)

// DirectResult is the outcome of a direct-encoding check: the
// satisfiability verdict, plus -- when SAT -- the support set of the
// witnessing activation assignment (a liveness violation or a
// deadlock loop, depending on which builder produced it).
type DirectResult struct {
	Result satsolver.Result
	Active []graph.Channel
}

// Liveness builds and checks the per-graph liveness encoding: every
// non-terminal channel's activation implies some receiver's
// activation, every output is pinned inactive, and at least one input
// is active. UNSAT means liveness holds; SAT exhibits a liveness
// violation (an input-reachable non-output terminal or cycle).
func Liveness(g *graph.DependencyGraph) (*DirectResult, error) {
	s := satsolver.New()
	x := declareVars(s, g.N())

	for i := 0; i < g.N(); i++ {
		receivers := g.Coms(graph.Channel(i))
		if len(receivers) == 0 {
			continue
		}
		s.AssertOr(s.Not(x[i]), orOf(s, x, receivers))
	}
	for _, o := range g.Outputs() {
		s.AssertNot(x[o])
	}
	if inputs := g.Inputs(); len(inputs) > 0 {
		s.AssertOr(litsOf(x, inputs)...)
	} else {
		// No inputs: the disjunction over an empty set is
		// unsatisfiable by convention, so there is nothing that could
		// witness a violation -- liveness holds vacuously.
		return &DirectResult{Result: satsolver.Unsat}, nil
	}

	return checkAndExtract(s, x, g.N())
}

// Deadlock builds and checks the union-level deadlock-search encoding:
// every non-terminal channel's activation implies some receiver's
// activation, every dead-end is pinned inactive, and at least one
// channel is active. SAT exhibits a cycle (deadlock possible); UNSAT
// means deadlock-free.
func Deadlock(g *graph.DependencyGraph) (*DirectResult, error) {
	s := satsolver.New()
	x := declareVars(s, g.N())

	for i := 0; i < g.N(); i++ {
		receivers := g.Coms(graph.Channel(i))
		if len(receivers) == 0 {
			s.AssertNot(x[i])
			continue
		}
		s.AssertOr(s.Not(x[i]), orOf(s, x, receivers))
	}
	s.AssertOr(x...)

	return checkAndExtract(s, x, g.N())
}

// declareVars allocates one boolean per channel, indexed by Channel.
func declareVars(s *satsolver.Solver, n int) []satsolver.Lit {
	vars := make([]satsolver.Lit, n)
	for i := range vars {
		vars[i] = s.NewVar(channelVarName(i))
	}
	return vars
}

func channelVarName(i int) string {
	return "x[" + strconv.Itoa(i) + "]"
}

// orOf returns a single literal representing the disjunction
// x_{receivers[0]} ∨ x_{receivers[1]} ∨ ... When there is exactly one
// receiver it returns that receiver's own literal and asserts nothing;
// otherwise it declares a fresh auxiliary variable, asserts the clauses
// that make it equivalent to the disjunction, and returns it.
func orOf(s *satsolver.Solver, x []satsolver.Lit, receivers []graph.Channel) satsolver.Lit {
	if len(receivers) == 1 {
		return x[receivers[0]]
	}
	aux := s.NewVar("or-aux")
	lits := litsOf(x, receivers)
	// aux ⇒ (r1 ∨ r2 ∨ ...)
	s.AssertOr(append([]satsolver.Lit{s.Not(aux)}, lits...)...)
	// each ri ⇒ aux, so aux is equivalent to the disjunction.
	for _, l := range lits {
		s.AssertImplies(l, aux)
	}
	return aux
}

func litsOf(x []satsolver.Lit, channels []graph.Channel) []satsolver.Lit {
	out := make([]satsolver.Lit, len(channels))
	for i, c := range channels {
		out[i] = x[c]
	}
	return out
}

func checkAndExtract(s *satsolver.Solver, x []satsolver.Lit, n int) (*DirectResult, error) {
	res, err := s.Check()
	if err != nil {
		return nil, err
	}
	out := &DirectResult{Result: res}
	if res != satsolver.Sat {
		return out, nil
	}
	for i := 0; i < n; i++ {
		if s.Value(x[i]) {
			out.Active = append(out.Active, graph.Channel(i))
		}
	}
	sort.Slice(out.Active, func(i, j int) bool { return out.Active[i] < out.Active[j] })
	return out, nil
}
