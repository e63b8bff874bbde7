package graph

import (
	"errors"
	"testing"
)

func TestNew_Valid(t *testing.T) {
	g, err := New("g1", 3, []Channel{0}, []Channel{2}, map[Channel][]Channel{
		0: {1},
		1: {2},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if g.N() != 3 {
		t.Errorf("N() = %d, want 3", g.N())
	}
	if !g.IsInput(0) || !g.IsOutput(2) {
		t.Errorf("expected 0 to be input and 2 to be output")
	}
	if g.IsDeadEnd(2) {
		t.Errorf("output channel 2 must not be a dead end")
	}
	if g.IsDeadEnd(1) {
		t.Errorf("channel 1 has a receiver; must not be a dead end")
	}
}

func TestNew_DeadEnd(t *testing.T) {
	g, err := New("deadend", 2, []Channel{0}, nil, map[Channel][]Channel{
		0: {1},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !g.IsDeadEnd(1) {
		t.Errorf("channel 1 has no receivers and is not an output; expected dead end")
	}
}

func TestNew_OutOfRange(t *testing.T) {
	_, err := New("bad", 2, []Channel{5}, nil, nil)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestNew_InputOutputOverlap(t *testing.T) {
	_, err := New("overlap", 2, []Channel{0}, []Channel{0}, nil)
	if !errors.Is(err, ErrInputOutputOverlap) {
		t.Fatalf("expected ErrInputOutputOverlap, got %v", err)
	}
}

func TestNew_DedupesReceivers(t *testing.T) {
	g, err := New("dup", 2, nil, nil, map[Channel][]Channel{
		0: {1, 1, 1},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := g.Coms(0); len(got) != 1 {
		t.Errorf("Coms(0) = %v, want single deduplicated receiver", got)
	}
}

func TestUnion_Commutative(t *testing.T) {
	g1, _ := New("g1", 2, []Channel{0}, nil, map[Channel][]Channel{0: {1}})
	g2, _ := New("g2", 2, nil, []Channel{1}, map[Channel][]Channel{1: {0}})

	u1, err := Union("u", []*DependencyGraph{g1, g2})
	if err != nil {
		t.Fatalf("Union() error = %v", err)
	}
	u2, err := Union("u", []*DependencyGraph{g2, g1})
	if err != nil {
		t.Fatalf("Union() error = %v", err)
	}

	for i := 0; i < u1.N(); i++ {
		a := u1.Coms(Channel(i))
		b := u2.Coms(Channel(i))
		if len(a) != len(b) {
			t.Fatalf("coms[%d] differ by order of union: %v vs %v", i, a, b)
		}
	}
}

func TestUnion_ZeroExtends(t *testing.T) {
	small, _ := New("small", 1, nil, nil, nil)
	big, _ := New("big", 3, nil, nil, map[Channel][]Channel{0: {1}, 1: {2}})

	u, err := Union("u", []*DependencyGraph{small, big})
	if err != nil {
		t.Fatalf("Union() error = %v", err)
	}
	if u.N() != 3 {
		t.Errorf("N() = %d, want 3", u.N())
	}
}
