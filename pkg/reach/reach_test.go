package reach

import (
	"testing"

	"github.com/gitrdm/nocverify/pkg/graph"
)

func TestAnalyze_Scenario1_MaxHopTwo(t *testing.T) {
	g, err := graph.New("ring", 3, []graph.Channel{0}, []graph.Channel{2}, map[graph.Channel][]graph.Channel{
		0: {1},
		1: {2},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	result := Analyze(g)
	if result.HasDeadEnd {
		t.Fatalf("expected no dead end, got one at %d", result.DeadEnd)
	}
	if result.MaxHop != 2 {
		t.Errorf("MaxHop = %d, want 2", result.MaxHop)
	}
}

// A channel with no receivers and no output status is a non-output
// terminal: a packet reaching it can never progress.
func TestAnalyze_Scenario6_DeadEnd(t *testing.T) {
	g, err := graph.New("deadend", 2, []graph.Channel{0}, nil, map[graph.Channel][]graph.Channel{
		0: {1},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	result := Analyze(g)
	if !result.HasDeadEnd {
		t.Fatalf("expected a dead end to be detected")
	}
	if result.DeadEnd != 1 {
		t.Errorf("DeadEnd = %d, want 1", result.DeadEnd)
	}
	if result.MaxHop != -1 {
		t.Errorf("MaxHop = %d, want -1", result.MaxHop)
	}
}

func TestAnalyze_NoInputs_ZeroHop(t *testing.T) {
	g, err := graph.New("isolated", 2, nil, nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	result := Analyze(g)
	if result.HasDeadEnd {
		t.Fatalf("no inputs means nothing is reachable to check")
	}
	if result.MaxHop != 0 {
		t.Errorf("MaxHop = %d, want 0", result.MaxHop)
	}
}
