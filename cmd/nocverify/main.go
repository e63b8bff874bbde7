// Command nocverify is the CLI entry point for the NoC deadlock and
// liveness verifier. It wires pflag-parsed mode flags onto pkg/driver
// and turns its Outcome into stdout lines and a process exit code.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/gitrdm/nocverify/internal/nocdiag"
	"github.com/gitrdm/nocverify/pkg/driver"
	"github.com/gitrdm/nocverify/pkg/graph"
	"github.com/gitrdm/nocverify/pkg/noc/parser"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	log := nocdiag.New()

	flags := pflag.NewFlagSet("nocverify", pflag.ContinueOnError)
	liveness := flags.BoolP("liveness", "a", false, "verify liveness of each graph independently")
	deadlock := flags.BoolP("deadlock", "b", false, "search a loop in the union graph")
	verifyLA := flags.StringP("verify-escape", "c", "", "verify a given escape set (liveness-assuming); FILE lists escape channels on its first line")
	synthLA := flags.BoolP("synth-escape", "d", false, "synthesize an escape set (liveness-assuming)")
	verifyBH := flags.StringP("verify-escape-bounded", "e", "", "verify a given escape set (bounded-hop)")
	synthBH := flags.BoolP("synth-escape-bounded", "f", false, "synthesize an escape set (bounded-hop)")
	verbose := flags.BoolP("verbose", "v", false, "emit debug diagnostics")

	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return driver.ExitFatal
	}
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	paths := flags.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "nocverify: at least one graph file is required")
		return driver.ExitFatal
	}

	graphs, err := loadGraphs(paths)
	if err != nil {
		log.Error(err)
		return driver.ExitFatal
	}

	mode, escapeFile, err := selectMode(*liveness, *deadlock, *verifyLA, *synthLA, *verifyBH, *synthBH)
	if err != nil {
		log.Error(err)
		return driver.ExitFatal
	}

	var escapeSet []graph.Channel
	if escapeFile != "" {
		escapeSet, err = parser.ParseEscapeFile(escapeFile)
		if err != nil {
			log.Error(err)
			return driver.ExitFatal
		}
	}

	outcome, err := driver.Run(driver.Options{
		Mode:      mode,
		Graphs:    graphs,
		EscapeSet: escapeSet,
		Log:       log,
	})
	if err != nil {
		log.Error(err)
		return driver.ExitFatal
	}

	for _, line := range outcome.Lines {
		fmt.Println(line)
	}
	return outcome.ExitCode
}

func loadGraphs(paths []string) ([]*graph.DependencyGraph, error) {
	graphs := make([]*graph.DependencyGraph, 0, len(paths))
	for _, p := range paths {
		g, err := parser.ParseFile(p)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}

func selectMode(liveness, deadlock bool, verifyLA string, synthLA bool, verifyBH string, synthBH bool) (driver.Mode, string, error) {
	set := 0
	var mode driver.Mode
	var escapeFile string

	mark := func(m driver.Mode, file string) {
		set++
		mode = m
		escapeFile = file
	}
	if liveness {
		mark(driver.ModeLiveness, "")
	}
	if deadlock {
		mark(driver.ModeDeadlock, "")
	}
	if verifyLA != "" {
		mark(driver.ModeVerifyLivenessAssuming, verifyLA)
	}
	if synthLA {
		mark(driver.ModeSynthLivenessAssuming, "")
	}
	if verifyBH != "" {
		mark(driver.ModeVerifyBoundedHop, verifyBH)
	}
	if synthBH {
		mark(driver.ModeSynthBoundedHop, "")
	}

	if set == 0 {
		return 0, "", fmt.Errorf("nocverify: exactly one mode flag (-a -b -c -d -e -f) is required")
	}
	if set > 1 {
		return 0, "", fmt.Errorf("nocverify: only one mode flag may be given at a time, got %d", set)
	}
	return mode, escapeFile, nil
}
