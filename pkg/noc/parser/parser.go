// Package parser reads the text, line-oriented graph file format this
// tool's command-line input uses. It is an external collaborator to
// the core reasoning packages: the core only ever consumes already
// constructed graph.DependencyGraph values.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gitrdm/nocverify/pkg/graph"
)

// ParseFile opens path and parses it as a graph file, using path as
// given as the resulting graph's diagnostic name.
func ParseFile(path string) (*graph.DependencyGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parser: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse reads a graph file from r. name is used only as the resulting
// graph's diagnostic label.
//
// Format:
//
//	line 1: N (channel count)
//	line 2: space-separated input channel indices
//	line 3: space-separated output channel indices
//	line 4+: "<sender> <receiver> [<receiver> ...]"; lines with fewer
//	         than two tokens are ignored; repeated senders are merged
//	         by list-append (graph.New deduplicates the result).
func Parse(r io.Reader, name string) (*graph.DependencyGraph, error) {
	scanner := bufio.NewScanner(r)

	n, err := nextInt(scanner, name, "channel count")
	if err != nil {
		return nil, err
	}
	inputs, err := nextInts(scanner, name, "inputs")
	if err != nil {
		return nil, err
	}
	outputs, err := nextInts(scanner, name, "outputs")
	if err != nil {
		return nil, err
	}

	coms := make(map[graph.Channel][]graph.Channel)
	lineNo := 3
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		sender, err := parseChannel(fields[0])
		if err != nil {
			return nil, fmt.Errorf("parser: %s:%d: sender: %w", name, lineNo, err)
		}
		for _, tok := range fields[1:] {
			receiver, err := parseChannel(tok)
			if err != nil {
				return nil, fmt.Errorf("parser: %s:%d: receiver: %w", name, lineNo, err)
			}
			coms[sender] = append(coms[sender], receiver)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parser: %s: %w", name, err)
	}

	g, err := graph.New(name, n, toChannels(inputs), toChannels(outputs), coms)
	if err != nil {
		return nil, fmt.Errorf("parser: %s: %w", name, err)
	}
	return g, nil
}

// ParseEscapeFile reads a candidate escape set from the first line of
// path, as the -c and -e CLI modes require.
func ParseEscapeFile(path string) ([]graph.Channel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parser: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	ints, err := nextInts(scanner, path, "escape set")
	if err != nil {
		return nil, err
	}
	return toChannels(ints), nil
}

func nextInt(scanner *bufio.Scanner, name, what string) (int, error) {
	if !scanner.Scan() {
		return 0, fmt.Errorf("parser: %s: missing %s line", name, what)
	}
	v, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return 0, fmt.Errorf("parser: %s: %s: %w", name, what, err)
	}
	return v, nil
}

func nextInts(scanner *bufio.Scanner, name, what string) ([]int, error) {
	if !scanner.Scan() {
		return nil, fmt.Errorf("parser: %s: missing %s line", name, what)
	}
	fields := strings.Fields(scanner.Text())
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("parser: %s: %s: %w", name, what, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseChannel(tok string) (graph.Channel, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, err
	}
	return graph.Channel(v), nil
}

func toChannels(ints []int) []graph.Channel {
	out := make([]graph.Channel, len(ints))
	for i, v := range ints {
		out[i] = graph.Channel(v)
	}
	return out
}
