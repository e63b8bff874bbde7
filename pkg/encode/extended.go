package encode

import (
	"strconv"

	"github.com/gitrdm/nocverify/pkg/graph"
	"github.com/gitrdm/nocverify/pkg/satsolver"
)

// ExtendedResult is the outcome of an extended-graph check: SAT
// exhibits a loop reachable through escape channels and per-graph
// transitive dependencies (the candidate escape set is invalid); UNSAT
// means the escape set is valid under the encoding's assumptions.
type ExtendedResult struct {
	Result satsolver.Result
	Loop   []graph.Channel // union-level active channels, when SAT
}

// LivenessAssuming builds and checks the fixed-point variant of the
// extended-graph encoding, valid when every graph in the union is
// separately known live. escape is the candidate escape set E:
// channels outside it are pinned inactive at the union level.
func LivenessAssuming(u *graph.UnionGraph, escape map[graph.Channel]bool) (*ExtendedResult, error) {
	s := satsolver.New()
	x := declareVars(s, u.N())
	d := make([]map[graph.Channel]satsolver.Lit, len(u.Graphs))

	for k, gk := range u.Graphs {
		d[k] = make(map[graph.Channel]satsolver.Lit, gk.N())
		for i := 0; i < gk.N(); i++ {
			d[k][graph.Channel(i)] = s.NewVar(dupVarName(k, i))
		}
	}

	// x_i ⇒ (⋁ union receivers) ∨ (⋁_k d_{k,i})
	for i := 0; i < u.N(); i++ {
		recv := u.Coms(graph.Channel(i))
		disjuncts := make([]satsolver.Lit, 0, len(recv)+len(u.Graphs))
		for _, r := range recv {
			disjuncts = append(disjuncts, x[r])
		}
		for k, gk := range u.Graphs {
			if i < gk.N() {
				disjuncts = append(disjuncts, d[k][graph.Channel(i)])
			}
		}
		if len(disjuncts) == 0 {
			s.AssertNot(x[i])
			continue
		}
		s.AssertOr(append([]satsolver.Lit{s.Not(x[i])}, disjuncts...)...)
	}

	// Per-graph duplicated transitive dependency.
	for k, gk := range u.Graphs {
		for i := 0; i < gk.N(); i++ {
			recv := gk.Coms(graph.Channel(i))
			if len(recv) == 0 {
				s.AssertNot(d[k][graph.Channel(i)])
				continue
			}
			disjuncts := make([]satsolver.Lit, 0, len(recv))
			for _, r := range recv {
				disjuncts = append(disjuncts, x[r], d[k][r])
			}
			s.AssertOr(append([]satsolver.Lit{s.Not(d[k][graph.Channel(i)])}, disjuncts...)...)
		}
	}

	assertEscapeConstraints(s, x, u.N(), escape)

	r, err := checkAndExtract(s, x, u.N())
	if err != nil {
		return nil, err
	}
	return &ExtendedResult{Result: r.Result, Loop: r.Active}, nil
}

// BoundedHop builds and checks the bounded-hop variant of the
// extended-graph encoding, which does not assume per-graph liveness:
// per-graph duplicated variables are indexed by an explicit hop count
// up to hops (the H returned by pkg/reach), representing reachability
// within H hops as an explicit relational closure.
func BoundedHop(u *graph.UnionGraph, escape map[graph.Channel]bool, hops int) (*ExtendedResult, error) {
	if hops < 1 {
		hops = 1
	}
	s := satsolver.New()
	x := declareVars(s, u.N())

	// d[k][i][h]
	d := make([]map[graph.Channel][]satsolver.Lit, len(u.Graphs))
	for k, gk := range u.Graphs {
		d[k] = make(map[graph.Channel][]satsolver.Lit, gk.N())
		for i := 0; i < gk.N(); i++ {
			hopVars := make([]satsolver.Lit, hops)
			for h := 0; h < hops; h++ {
				hopVars[h] = s.NewVar(dupHopVarName(k, i, h))
			}
			d[k][graph.Channel(i)] = hopVars
		}
	}

	lastHop := hops - 1

	// x_i ⇒ (⋁ union receivers) ∨ (⋁_k d_{k,i,H-1})
	for i := 0; i < u.N(); i++ {
		recv := u.Coms(graph.Channel(i))
		disjuncts := make([]satsolver.Lit, 0, len(recv)+len(u.Graphs))
		for _, r := range recv {
			disjuncts = append(disjuncts, x[r])
		}
		for k, gk := range u.Graphs {
			if i < gk.N() {
				disjuncts = append(disjuncts, d[k][graph.Channel(i)][lastHop])
			}
		}
		if len(disjuncts) == 0 {
			s.AssertNot(x[i])
			continue
		}
		s.AssertOr(append([]satsolver.Lit{s.Not(x[i])}, disjuncts...)...)
	}

	for k, gk := range u.Graphs {
		for i := 0; i < gk.N(); i++ {
			ch := graph.Channel(i)
			recv := gk.Coms(ch)
			if len(recv) == 0 {
				for h := 0; h < hops; h++ {
					s.AssertNot(d[k][ch][h])
				}
				continue
			}
			// hop 0: d_{k,i,0} ⇒ ⋁ x_r
			hop0Disjuncts := make([]satsolver.Lit, len(recv))
			for j, r := range recv {
				hop0Disjuncts[j] = x[r]
			}
			s.AssertOr(append([]satsolver.Lit{s.Not(d[k][ch][0])}, hop0Disjuncts...)...)

			for h := 1; h < hops; h++ {
				disjuncts := make([]satsolver.Lit, 0, 1+len(recv))
				disjuncts = append(disjuncts, d[k][ch][h-1])
				for _, r := range recv {
					disjuncts = append(disjuncts, d[k][r][h-1])
				}
				s.AssertOr(append([]satsolver.Lit{s.Not(d[k][ch][h])}, disjuncts...)...)
				// monotonicity: d_{k,i,h-1} ⇒ d_{k,i,h}
				s.AssertImplies(d[k][ch][h-1], d[k][ch][h])
			}
		}
	}

	assertEscapeConstraints(s, x, u.N(), escape)

	r, err := checkAndExtract(s, x, u.N())
	if err != nil {
		return nil, err
	}
	return &ExtendedResult{Result: r.Result, Loop: r.Active}, nil
}

// assertEscapeConstraints pins every channel outside escape inactive
// and requires at least one escape channel active.
func assertEscapeConstraints(s *satsolver.Solver, x []satsolver.Lit, n int, escape map[graph.Channel]bool) {
	var escapeLits []satsolver.Lit
	for i := 0; i < n; i++ {
		c := graph.Channel(i)
		if escape[c] {
			escapeLits = append(escapeLits, x[c])
		} else {
			s.AssertNot(x[c])
		}
	}
	if len(escapeLits) > 0 {
		s.AssertOr(escapeLits...)
	}
}

func dupVarName(graphIdx, channel int) string {
	return "d[" + strconv.Itoa(graphIdx) + "," + strconv.Itoa(channel) + "]"
}

func dupHopVarName(graphIdx, channel, hop int) string {
	return "d[" + strconv.Itoa(graphIdx) + "," + strconv.Itoa(channel) + "," + strconv.Itoa(hop) + "]"
}
