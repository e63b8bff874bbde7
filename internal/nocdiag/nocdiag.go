// Package nocdiag is a thin logrus wrapper for the field-tagged
// diagnostic lines the driver emits. pkg/driver builds its mode-tagged
// entries here and hands one to pkg/synth, which adds its own
// per-iteration fields; pkg/synth does not import this package.
package nocdiag

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logrus.Logger configured the way this tool's
// diagnostics are meant to read: text formatted, timestamps on,
// writing to stderr so that stdout stays reserved for the property
// results and witnesses the CLI prints.
func New() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}

// Mode returns a logger entry pre-tagged with the active verification
// mode, e.g. "liveness", "deadlock", "bounded-hop".
func Mode(log *logrus.Logger, mode string) *logrus.Entry {
	return log.WithField("mode", mode)
}

// Graph returns an entry pre-tagged with a graph's name, for
// diagnostics scoped to one input graph.
func Graph(entry *logrus.Entry, name string) *logrus.Entry {
	return entry.WithField("graph", name)
}
