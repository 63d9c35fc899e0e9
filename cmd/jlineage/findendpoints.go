package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/javalineage/endpoint"
	"github.com/viant/javalineage/internal/obs"
	"github.com/viant/javalineage/loader"
	"github.com/viant/javalineage/typehierarchy"
)

func init() {
	rootCmd.AddCommand(newFindEndpointsCmd())
}

func newFindEndpointsCmd() *cobra.Command {
	var (
		pathPattern string
		httpMethod  string
		include     string
		exclude     string
		format      string
		verbose     bool
		includeLibs bool
		libFilter   string
	)

	cmd := &cobra.Command{
		Use:   "find-endpoints <input>",
		Short: "Discover annotated HTTP routes and synthesize a response schema per endpoint",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			inputPath := args[0]
			method := parseHTTPMethod(httpMethod)
			requireInputPath(inputPath)

			logger, runID := obs.NewLogger(os.Stderr, verbose)
			tp, err := obs.InstallTracerProvider(os.Stderr, verbose)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error during analysis: %v\n", err)
				os.Exit(1)
			}
			registry := obs.NewRunRegistry()
			wait := maybeStartDiagnostics(registry)

			start := time.Now()
			ctx := context.Background()

			lcfg := loader.NewConfig(
				loader.WithIncludePackages(splitCSV(include)...),
				loader.WithExcludePackages(splitCSV(exclude)...),
				loader.WithIncludeLibraries(resolveIncludeLibs(cmd, inputPath, includeLibs)),
				loader.WithLibraryFilters(splitCSV(libFilter)...),
			)
			if verbose {
				lcfg.VerboseSink = os.Stderr
			}
			g, summary := loadGraph(ctx, logger, inputPath, lcfg, verbose)

			opts := endpoint.DefaultOptions()
			opts.PathPattern = pathPattern
			opts.HTTPMethod = method
			opts.Query.TypeHierarchy.IncludePackages = splitCSV(include)
			opts.Query.TypeHierarchy.ExcludePackages = splitCSV(exclude)

			spanCtx, span := obs.StartPhase(ctx, "endpoint")
			phaseStart := time.Now()
			endpoints := g.Endpoints(pathPattern, method)
			analyzer := typehierarchy.NewAnalyzer(g, opts.Query.TypeHierarchy)
			renderEndpoints(spanCtx, g, endpoints, analyzer, format, opts)
			obs.ObservePhase("endpoint", time.Since(phaseStart))
			span.End()

			registry.Record(obs.RunSummary{
				RunID:          runID,
				Command:        "find-endpoints",
				InputPath:      inputPath,
				ClassesLoaded:  summary.ClassesLoaded,
				ClassesSkipped: summary.ClassesSkipped,
				ResultCount:    len(endpoints),
				Duration:       time.Since(start).String(),
				CompletedAt:    time.Now(),
			})
			wait()
			_ = tp.Shutdown(ctx)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&pathPattern, "endpoint", "e", "", "path pattern filter ('*' one segment, '**' any suffix)")
	fl.StringVarP(&httpMethod, "method", "m", "", "HTTP method filter: GET, POST, PUT, DELETE, PATCH")
	fl.StringVar(&include, "include", "", "comma-separated package prefixes to load (empty means all)")
	fl.StringVar(&exclude, "exclude", "", "comma-separated package prefixes to skip")
	fl.StringVarP(&format, "format", "f", "text", "output format: text, schema, json, or yaml")
	fl.BoolVarP(&verbose, "verbose", "v", false, "diagnostic output on stderr")
	fl.BoolVar(&includeLibs, "include-libs", false, "scan library archives under the web archive's lib root (default: auto by input extension)")
	fl.StringVar(&libFilter, "lib-filter", "", "comma-separated globs restricting which library archives are scanned")
	return cmd
}
