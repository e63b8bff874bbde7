package driver

import (
	"strings"
	"testing"

	"github.com/gitrdm/nocverify/pkg/graph"
)

func TestRun_Liveness_Scenario2_Fails(t *testing.T) {
	g, err := graph.New("selfloop", 2, []graph.Channel{0}, []graph.Channel{1}, map[graph.Channel][]graph.Channel{
		0: {0},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	out, err := Run(Options{Mode: ModeLiveness, Graphs: []*graph.DependencyGraph{g}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.ExitCode != ExitOK {
		t.Errorf("ExitCode = %d, want %d", out.ExitCode, ExitOK)
	}
	joined := strings.Join(out.Lines, "\n")
	if !strings.Contains(joined, "liveness property failed") {
		t.Errorf("Lines = %v, want a liveness failure report", out.Lines)
	}
}

func TestRun_Deadlock_Scenario3(t *testing.T) {
	g1, _ := graph.New("g1", 2, nil, nil, map[graph.Channel][]graph.Channel{0: {1}})
	g2, _ := graph.New("g2", 2, nil, nil, map[graph.Channel][]graph.Channel{1: {0}})

	out, err := Run(Options{Mode: ModeDeadlock, Graphs: []*graph.DependencyGraph{g1, g2}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.ExitCode != ExitOK {
		t.Errorf("ExitCode = %d, want %d", out.ExitCode, ExitOK)
	}
	joined := strings.Join(out.Lines, "\n")
	if !strings.Contains(joined, "deadlock-free property failed with a loop:") {
		t.Errorf("Lines = %v, want a deadlock report", out.Lines)
	}
}

func TestRun_SynthLivenessAssuming_Scenario3(t *testing.T) {
	g1, _ := graph.New("g1", 2, nil, nil, map[graph.Channel][]graph.Channel{0: {1}})
	g2, _ := graph.New("g2", 2, nil, nil, map[graph.Channel][]graph.Channel{1: {0}})

	out, err := Run(Options{Mode: ModeSynthLivenessAssuming, Graphs: []*graph.DependencyGraph{g1, g2}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.ExitCode != ExitOK {
		t.Errorf("ExitCode = %d, want %d", out.ExitCode, ExitOK)
	}
	joined := strings.Join(out.Lines, "\n")
	if !strings.Contains(joined, "escape set synthesized:") {
		t.Errorf("Lines = %v, want a synthesized escape set", out.Lines)
	}
}

// A non-output dead end makes -e report "packet unreachable" and
// exit 0 without running the solver.
func TestRun_VerifyBoundedHop_DeadEnd(t *testing.T) {
	g, err := graph.New("deadend", 2, []graph.Channel{0}, nil, map[graph.Channel][]graph.Channel{
		0: {1},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	out, err := Run(Options{
		Mode:      ModeVerifyBoundedHop,
		Graphs:    []*graph.DependencyGraph{g},
		EscapeSet: []graph.Channel{0},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.ExitCode != ExitOK {
		t.Errorf("ExitCode = %d, want %d", out.ExitCode, ExitOK)
	}
	joined := strings.Join(out.Lines, "\n")
	if !strings.Contains(joined, "packet unreachable") {
		t.Errorf("Lines = %v, want a packet-unreachable report", out.Lines)
	}
}

func TestRun_NoGraphs_IsFatal(t *testing.T) {
	_, err := Run(Options{Mode: ModeLiveness})
	if err == nil {
		t.Fatal("expected an error for zero graphs")
	}
}
