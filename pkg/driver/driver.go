// Package driver implements the mode dispatcher: it selects among the
// recognized verification modes, builds the union graph when a mode
// needs one, invokes the appropriate encoding(s), and assembles the
// diagnostic lines and exit code the CLI prints. It never talks to a
// SAT backend directly; everything here is built on pkg/graph,
// pkg/encode, pkg/synth, and pkg/reach.
package driver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gitrdm/nocverify/internal/nocdiag"
	"github.com/gitrdm/nocverify/pkg/encode"
	"github.com/gitrdm/nocverify/pkg/graph"
	"github.com/gitrdm/nocverify/pkg/reach"
	"github.com/gitrdm/nocverify/pkg/satsolver"
	"github.com/gitrdm/nocverify/pkg/synth"
)

// Mode selects one of the CLI surface's six verification modes.
type Mode int

const (
	// ModeLiveness is -a: verify liveness of each graph independently.
	ModeLiveness Mode = iota
	// ModeDeadlock is -b: search a loop in the union graph.
	ModeDeadlock
	// ModeVerifyLivenessAssuming is -c: verify a given escape set,
	// liveness-assuming.
	ModeVerifyLivenessAssuming
	// ModeSynthLivenessAssuming is -d: synthesize an escape set,
	// liveness-assuming.
	ModeSynthLivenessAssuming
	// ModeVerifyBoundedHop is -e: verify a given escape set,
	// bounded-hop.
	ModeVerifyBoundedHop
	// ModeSynthBoundedHop is -f: synthesize an escape set, bounded-hop.
	ModeSynthBoundedHop
)

// Exit codes: 0 on a verified property or a clean failure report
// (including a topology dead-end), 1 when synthesis is infeasible, 2
// on a fatal input/solver error.
const (
	ExitOK                 = 0
	ExitSynthesisInfeasible = 1
	ExitFatal              = 2
)

// ErrUnexpectedMode is returned when Options.Mode is not one of the
// Mode constants above.
var ErrUnexpectedMode = errors.New("driver: unrecognized mode")

// Options configures one Run call.
type Options struct {
	Mode       Mode
	Graphs     []*graph.DependencyGraph
	EscapeSet  []graph.Channel // required for ModeVerifyLivenessAssuming / ModeVerifyBoundedHop
	Log        *logrus.Logger
}

// Outcome is the result of one Run call, ready for a cmd package to
// print and turn into a process exit code.
type Outcome struct {
	ExitCode int
	Lines    []string
}

// Run dispatches opts.Mode. A non-nil error indicates a fatal
// input-format error or a solver UNKNOWN result; the caller should
// print it as a single diagnostic line and exit ExitFatal. Everything
// else -- verified properties, property violations, topology
// dead-ends, and synthesis infeasibility -- is a normal Outcome.
func Run(opts Options) (*Outcome, error) {
	log := opts.Log
	if log == nil {
		log = nocdiag.New()
	}
	if len(opts.Graphs) == 0 {
		return nil, fmt.Errorf("driver: no graphs supplied")
	}

	switch opts.Mode {
	case ModeLiveness:
		return runLiveness(opts, log)
	case ModeDeadlock:
		return runDeadlock(opts, log)
	case ModeVerifyLivenessAssuming:
		return runVerify(opts, log, false)
	case ModeSynthLivenessAssuming:
		return runSynth(opts, log, synth.LivenessAssumingMode)
	case ModeVerifyBoundedHop:
		return runVerify(opts, log, true)
	case ModeSynthBoundedHop:
		return runSynth(opts, log, synth.BoundedHopMode)
	default:
		return nil, fmt.Errorf("driver: mode %d: %w", opts.Mode, ErrUnexpectedMode)
	}
}

func runLiveness(opts Options, log *logrus.Logger) (*Outcome, error) {
	out := &Outcome{ExitCode: ExitOK}
	for _, g := range opts.Graphs {
		entry := nocdiag.Graph(nocdiag.Mode(log, "liveness"), g.Name())
		result, err := encode.Liveness(g)
		if err != nil {
			return nil, fmt.Errorf("driver: liveness(%s): %w", g.Name(), err)
		}
		entry.WithField("result", result.Result.String()).Debug("liveness checked")
		if result.Result == satsolver.Sat {
			out.Lines = append(out.Lines,
				fmt.Sprintf("graph %s: liveness property failed with a path:", g.Name()),
				channelsToLine(result.Active))
		} else {
			out.Lines = append(out.Lines, fmt.Sprintf("graph %s: liveness verified", g.Name()))
		}
	}
	return out, nil
}

func runDeadlock(opts Options, log *logrus.Logger) (*Outcome, error) {
	u, err := buildUnion(opts.Graphs)
	if err != nil {
		return nil, err
	}
	entry := nocdiag.Mode(log, "deadlock")
	result, err := encode.Deadlock(u.DependencyGraph)
	if err != nil {
		return nil, fmt.Errorf("driver: deadlock: %w", err)
	}
	entry.WithField("result", result.Result.String()).Debug("deadlock search finished")

	out := &Outcome{ExitCode: ExitOK}
	if result.Result == satsolver.Sat {
		out.Lines = append(out.Lines,
			"deadlock-free property failed with a loop:",
			channelsToLine(result.Active))
	} else {
		out.Lines = append(out.Lines, "deadlock-free property verified")
	}
	return out, nil
}

func runVerify(opts Options, log *logrus.Logger, boundedHop bool) (*Outcome, error) {
	u, err := buildUnion(opts.Graphs)
	if err != nil {
		return nil, err
	}
	escape := toEscapeSet(opts.EscapeSet)
	entry := nocdiag.Mode(log, modeName(boundedHop))

	var deadEnd *Outcome
	var hops int
	if boundedHop {
		var err error
		hops, deadEnd, err = checkTopology(u.Graphs)
		if err != nil {
			return nil, err
		}
		if deadEnd != nil {
			return deadEnd, nil
		}
	}

	var result *encode.ExtendedResult
	if boundedHop {
		result, err = encode.BoundedHop(u, escape, hops)
	} else {
		result, err = encode.LivenessAssuming(u, escape)
	}
	if err != nil {
		return nil, fmt.Errorf("driver: verify escape: %w", err)
	}
	entry.WithField("result", result.Result.String()).Debug("escape verification finished")

	out := &Outcome{ExitCode: ExitOK}
	if result.Result == satsolver.Sat {
		out.Lines = append(out.Lines,
			"escape set property failed with a loop:",
			channelsToLine(result.Loop))
	} else {
		out.Lines = append(out.Lines, "escape set verified")
	}
	return out, nil
}

func runSynth(opts Options, log *logrus.Logger, mode synth.Mode) (*Outcome, error) {
	u, err := buildUnion(opts.Graphs)
	if err != nil {
		return nil, err
	}
	entry := nocdiag.Mode(log, modeName(mode == synth.BoundedHopMode))

	var hops int
	if mode == synth.BoundedHopMode {
		var deadEnd *Outcome
		hops, deadEnd, err = checkTopology(u.Graphs)
		if err != nil {
			return nil, err
		}
		if deadEnd != nil {
			return deadEnd, nil
		}
	}

	result, err := synth.Synthesize(u, mode, hops, entry)
	if err != nil {
		return nil, fmt.Errorf("driver: synthesize: %w", err)
	}
	entry.WithFields(logrus.Fields{
		"feasible":   result.Feasible,
		"iterations": result.Iterations,
	}).Debug("synthesis finished")

	out := &Outcome{}
	if !result.Feasible {
		out.ExitCode = ExitSynthesisInfeasible
		out.Lines = append(out.Lines, "no valid escape set exists")
		return out, nil
	}
	out.ExitCode = ExitOK
	out.Lines = append(out.Lines,
		"escape set synthesized:",
		channelsToLine(result.Escape))
	return out, nil
}

// checkTopology runs pkg/reach over every graph and returns the
// maximum hop bound across them, or a clean "packet unreachable"
// Outcome when any graph has a non-output dead end.
func checkTopology(graphs []*graph.DependencyGraph) (int, *Outcome, error) {
	maxHop := 0
	for _, g := range graphs {
		r := reach.Analyze(g)
		if r.HasDeadEnd {
			return 0, &Outcome{
				ExitCode: ExitOK,
				Lines:    []string{fmt.Sprintf("packet unreachable: graph %s channel %d", g.Name(), r.DeadEnd)},
			}, nil
		}
		if r.MaxHop > maxHop {
			maxHop = r.MaxHop
		}
	}
	return maxHop, nil, nil
}

func buildUnion(graphs []*graph.DependencyGraph) (*graph.UnionGraph, error) {
	u, err := graph.Union("union", graphs)
	if err != nil {
		return nil, fmt.Errorf("driver: union: %w", err)
	}
	return u, nil
}

func toEscapeSet(cs []graph.Channel) map[graph.Channel]bool {
	m := make(map[graph.Channel]bool, len(cs))
	for _, c := range cs {
		m[c] = true
	}
	return m
}

func channelsToLine(cs []graph.Channel) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = strconv.Itoa(int(c))
	}
	return strings.Join(parts, " ")
}

func modeName(boundedHop bool) string {
	if boundedHop {
		return "bounded-hop"
	}
	return "liveness-assuming"
}
