// Package obs wires the ambient observability stack shared by every
// cmd/jlineage subcommand: structured logging, Prometheus metrics, OTel
// tracing spans per pipeline phase, and the optional diagnostics HTTP
// server. None of it is part of the query semantics of descriptor/graph/
// dataflow/typehierarchy/branch/query/endpoint — it only watches them run.
package obs

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// NewLogger builds the slog.Logger used across a single CLI invocation,
// stamped with a run ID so every log line from one invocation can be
// correlated (including, when the diagnostics server is running, its
// /debug/run payload).
func NewLogger(w io.Writer, verbose bool) (*slog.Logger, string) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	runID := uuid.NewString()
	return slog.New(handler).With("run_id", runID), runID
}
