// Package satsolver is a narrow boolean-SAT/SMT backend adapter: fresh
// variable creation, assertion of clauses built from
// implication/disjunction/conjunction/negation, incremental
// check/solve, and model extraction. It is the only package in this
// module that imports a SAT engine directly -- every encoding in
// pkg/encode and the CEGIS loop in pkg/synth is written purely against
// this interface.
//
// The backend is github.com/go-air/gini, a pure-Go incremental CDCL
// solver. gini's Lit/Add/Assume/Solve/Value surface maps directly onto
// the contract this package exposes; no quantifiers or theories beyond
// propositional logic are needed or used.
package satsolver

import (
	"errors"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// Lit is a boolean literal: either a declared variable or its
// negation. Lit values are only meaningful relative to the Solver that
// produced them.
type Lit = z.Lit

// Result is the outcome of a Check call.
type Result int

const (
	// Unknown is returned when the backend cannot determine
	// satisfiability. Callers treat this as a fatal error rather than
	// a verdict.
	Unknown Result = iota
	Sat
	Unsat
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	default:
		return "UNKNOWN"
	}
}

// ErrUnknown is returned by Check when the backend cannot decide
// satisfiability.
var ErrUnknown = errors.New("satsolver: backend returned UNKNOWN")

// Solver wraps one gini instance and the assumption literals scoped to
// the next Check call. Clauses asserted via the Assert* methods are
// permanent for the lifetime of the Solver: the CEGIS loop in
// pkg/synth relies on this to accumulate refinement clauses across
// iterations without ever resetting the solver's state.
type Solver struct {
	g         *gini.Gini
	names     map[int]string
	nextID    int
	assumed   []Lit
}

// New constructs an empty Solver.
func New() *Solver {
	return &Solver{
		g:     gini.New(),
		names: make(map[int]string),
	}
}

// NewVar declares a fresh boolean variable. name is recorded alongside
// the variable but has no effect on solving and is not read back by
// this package; it need not be unique, though callers should prefer
// structured indices such as "x[3]" or "d[2,5,1]".
func (s *Solver) NewVar(name string) Lit {
	l := s.g.Lit()
	s.nextID++
	s.names[s.nextID] = name
	return l
}

// Not returns the negation of l.
func (s *Solver) Not(l Lit) Lit { return l.Not() }

func (s *Solver) addClause(lits []Lit) {
	for _, l := range lits {
		s.g.Add(l)
	}
	s.g.Add(0)
}

// AssertOr permanently asserts the n-ary disjunction of lits. With no
// lits it asserts nothing.
func (s *Solver) AssertOr(lits ...Lit) {
	if len(lits) == 0 {
		return
	}
	s.addClause(lits)
}

// AssertAnd permanently asserts that every lit in lits holds.
func (s *Solver) AssertAnd(lits ...Lit) {
	for _, l := range lits {
		s.addClause([]Lit{l})
	}
}

// AssertImplies permanently asserts a ⇒ b, i.e. the clause (¬a ∨ b).
func (s *Solver) AssertImplies(a, b Lit) {
	s.addClause([]Lit{a.Not(), b})
}

// AssertNot permanently asserts ¬l.
func (s *Solver) AssertNot(l Lit) {
	s.addClause([]Lit{l.Not()})
}

// Assume schedules l as an assumption for the next Check call only.
// This is the adapter's scoped-assumption mechanism: it stands in for
// push/pop since gini's incrementality is assumption-based rather than
// trail-based. Assumptions accumulated via Assume are consumed (and
// cleared) by the following Check call; nothing here affects the
// permanent clause set.
func (s *Solver) Assume(l Lit) {
	s.assumed = append(s.assumed, l)
}

// AssumeAll is a convenience wrapper around repeated Assume calls.
func (s *Solver) AssumeAll(lits ...Lit) {
	s.assumed = append(s.assumed, lits...)
}

// ClearAssumptions discards any scheduled assumptions without
// checking, equivalent to "pop" back to no active assumption scope.
func (s *Solver) ClearAssumptions() {
	s.assumed = s.assumed[:0]
}

// Check solves under the currently scheduled assumptions (if any),
// then clears them. It never resets the permanently asserted clauses,
// so successive Check calls are fully incremental.
func (s *Solver) Check() (Result, error) {
	if len(s.assumed) > 0 {
		s.g.Assume(s.assumed...)
	}
	s.assumed = s.assumed[:0]

	switch s.g.Solve() {
	case 1:
		return Sat, nil
	case -1:
		return Unsat, nil
	default:
		return Unknown, ErrUnknown
	}
}

// Value returns the model value of l after a Sat Check call. Its
// result is unspecified otherwise.
func (s *Solver) Value(l Lit) bool {
	return s.g.Value(l)
}
