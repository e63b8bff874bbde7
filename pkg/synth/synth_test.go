package synth

import (
	"testing"

	"github.com/gitrdm/nocverify/pkg/encode"
	"github.com/gitrdm/nocverify/pkg/graph"
	"github.com/gitrdm/nocverify/pkg/reach"
	"github.com/gitrdm/nocverify/pkg/satsolver"
)

// Two graphs forming a cross-dependency cycle, G1: 0->1, G2: 1->0,
// both N=2. -d synthesizes escape {0} or {1}, verified by
// LivenessAssuming.
func TestSynthesize_LivenessAssuming_CrossGraphCycle(t *testing.T) {
	g1, err := graph.New("g1", 2, nil, nil, map[graph.Channel][]graph.Channel{0: {1}})
	if err != nil {
		t.Fatalf("New(g1) error = %v", err)
	}
	g2, err := graph.New("g2", 2, nil, nil, map[graph.Channel][]graph.Channel{1: {0}})
	if err != nil {
		t.Fatalf("New(g2) error = %v", err)
	}
	u, err := graph.Union("u", []*graph.DependencyGraph{g1, g2})
	if err != nil {
		t.Fatalf("Union() error = %v", err)
	}

	result, err := Synthesize(u, LivenessAssumingMode, 0, nil)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !result.Feasible {
		t.Fatalf("Synthesize() = infeasible, want a verified escape set")
	}
	if len(result.Escape) == 0 {
		t.Fatalf("Escape is empty")
	}

	// Re-verifying the synthesized escape set must also return UNSAT:
	// a synthesized escape set stays valid under its own verifier.
	escapeSet := make(map[graph.Channel]bool, len(result.Escape))
	for _, c := range result.Escape {
		escapeSet[c] = true
	}
	verify, err := encode.LivenessAssuming(u, escapeSet)
	if err != nil {
		t.Fatalf("LivenessAssuming() error = %v", err)
	}
	if verify.Result != satsolver.Unsat {
		t.Fatalf("re-verification = %v, want UNSAT", verify.Result)
	}
}

func TestSynthesize_BoundedHop_CrossGraphCycle(t *testing.T) {
	g1, err := graph.New("g1", 2, nil, nil, map[graph.Channel][]graph.Channel{0: {1}})
	if err != nil {
		t.Fatalf("New(g1) error = %v", err)
	}
	g2, err := graph.New("g2", 2, nil, nil, map[graph.Channel][]graph.Channel{1: {0}})
	if err != nil {
		t.Fatalf("New(g2) error = %v", err)
	}
	u, err := graph.Union("u", []*graph.DependencyGraph{g1, g2})
	if err != nil {
		t.Fatalf("Union() error = %v", err)
	}

	hop := reach.Analyze(u.DependencyGraph)
	if hop.HasDeadEnd {
		t.Fatalf("unexpected dead end for bounded-hop scenario")
	}
	result, err := Synthesize(u, BoundedHopMode, hop.MaxHop, nil)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !result.Feasible {
		t.Fatalf("Synthesize() = infeasible, want a verified escape set")
	}

	escapeSet := make(map[graph.Channel]bool, len(result.Escape))
	for _, c := range result.Escape {
		escapeSet[c] = true
	}
	verify, err := encode.BoundedHop(u, escapeSet, hop.MaxHop)
	if err != nil {
		t.Fatalf("BoundedHop() error = %v", err)
	}
	if verify.Result != satsolver.Unsat {
		t.Fatalf("re-verification = %v, want UNSAT", verify.Result)
	}
}
