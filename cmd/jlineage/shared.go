package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/javalineage/graph"
	"github.com/viant/javalineage/internal/obs"
	"github.com/viant/javalineage/loader"
)

var metricsAddr string

func init() {
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "",
		"address for the optional diagnostics HTTP server (/healthz, /metrics, /debug/run); unset disables it")
}

// splitCSV splits a comma-separated flag value, dropping empty segments. An
// empty input yields a nil slice so callers can tell "not set" from "set to
// nothing".
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// requireInputPath exits 1 with the documented one-line message when path
// does not exist on disk.
func requireInputPath(path string) {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Input path does not exist: %s\n", path)
		os.Exit(1)
	}
}

// resolveIncludeLibs implements the documented --include-libs auto default:
// true when the flag was left unset and the input path ends in .war/.jar,
// false otherwise; an explicit flag value always wins.
func resolveIncludeLibs(cmd *cobra.Command, inputPath string, flagValue bool) bool {
	if cmd.Flags().Changed("include-libs") {
		return flagValue
	}
	return strings.HasSuffix(inputPath, ".war") || strings.HasSuffix(inputPath, ".jar")
}

// parseHTTPMethod validates a user-supplied HTTP method literal, exiting 1
// on an unrecognised value. An empty string means "no filter" and maps to
// the empty graph.HTTPMethod (match-all).
func parseHTTPMethod(v string) graph.HTTPMethod {
	if v == "" {
		return ""
	}
	switch strings.ToUpper(v) {
	case "GET":
		return graph.GET
	case "POST":
		return graph.POST
	case "PUT":
		return graph.PUT
	case "DELETE":
		return graph.DELETE
	case "PATCH":
		return graph.PATCH
	}
	fmt.Fprintf(os.Stderr, "Invalid HTTP method: %s. Valid values: GET, POST, PUT, DELETE, PATCH\n", v)
	os.Exit(1)
	return ""
}

// loadGraph runs the loader under a traced "load" phase, reporting counts to
// obs and printing verbose diagnostics to stderr; it exits 1 when the load
// itself fails (per-class parse failures never reach here — the loader
// already recovered them into the summary).
func loadGraph(ctx context.Context, logger *slog.Logger, inputPath string, cfg loader.LoaderConfig, verbose bool) (*graph.Graph, loader.LoadSummary) {
	spanCtx, span := obs.StartPhase(ctx, "load")
	defer span.End()

	start := time.Now()
	g, summary, err := loader.Load(spanCtx, inputPath, cfg)
	obs.ObservePhase("load", time.Since(start))
	obs.RecordLoadCounts(summary.ClassesLoaded, summary.ClassesSkipped)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error during analysis: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		logger.Info("load complete",
			"classesSeen", summary.ClassesSeen,
			"classesLoaded", summary.ClassesLoaded,
			"classesSkipped", summary.ClassesSkipped,
			"methodsLoaded", summary.MethodsLoaded)
		for _, w := range summary.Errors {
			logger.Warn("class skipped", "detail", w)
		}
	}
	allNodes := g.Nodes(func(*graph.Node) bool { return true })
	edgeCount := 0
	for _, n := range allNodes {
		edgeCount += len(g.Outgoing(n.ID))
	}
	obs.SetGraphSize(len(allNodes), edgeCount)
	return g, summary
}

// maybeStartDiagnostics starts the optional diagnostics server when
// --metrics-addr is set, returning a stop function that blocks until the
// process receives SIGINT/SIGTERM. When the flag is unset, stop is a no-op
// that returns immediately.
func maybeStartDiagnostics(registry *obs.RunRegistry) (stop func()) {
	if metricsAddr == "" {
		return func() {}
	}

	server := obs.NewDiagnosticsServer(metricsAddr, registry)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := server.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "diagnostics server error: %v\n", err)
		}
	}()

	return func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}
}
