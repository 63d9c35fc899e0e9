package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/javalineage/graph"
	"github.com/viant/javalineage/internal/obs"
	"github.com/viant/javalineage/loader"
	"github.com/viant/javalineage/query"
)

func init() {
	rootCmd.AddCommand(newFindReturnsCmd())
}

func newFindReturnsCmd() *cobra.Command {
	var (
		class        string
		method       string
		useRegex     bool
		declaredType string
		include      string
		exclude      string
		format       string
		verbose      bool
		includeLibs  bool
		libFilter    string
	)

	cmd := &cobra.Command{
		Use:   "find-returns <input>",
		Short: "Resolve the concrete types a method's return value can actually hold",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			inputPath := args[0]
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

			pattern := graph.MethodPattern{
				DeclaringClass: class,
				Name:           method,
				ReturnType:     declaredType,
				UseRegex:       useRegex,
			}

			qcfg := query.DefaultConfig()
			qcfg.TypeHierarchy.IncludePackages = splitCSV(include)
			qcfg.TypeHierarchy.ExcludePackages = splitCSV(exclude)

			spanCtx, span := obs.StartPhase(ctx, "dataflow")
			phaseStart := time.Now()
			results, err := query.FindActualReturnTypes(spanCtx, g, qcfg, pattern)
			obs.ObservePhase("dataflow", time.Since(phaseStart))
			span.End()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error during analysis: %v\n", err)
				os.Exit(1)
			}

			renderReturnTypes(results, format)

			registry.Record(obs.RunSummary{
				RunID:          runID,
				Command:        "find-returns",
				InputPath:      inputPath,
				ClassesLoaded:  summary.ClassesLoaded,
				ClassesSkipped: summary.ClassesSkipped,
				ResultCount:    len(results),
				Duration:       time.Since(start).String(),
				CompletedAt:    time.Now(),
			})
			wait()
			_ = tp.Shutdown(ctx)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&class, "class", "c", "", "declaring-class filter (exact, trailing '*' prefix, or regex with -r)")
	fl.StringVarP(&method, "method", "m", "", "method-name filter")
	fl.BoolVarP(&useRegex, "regex", "r", false, "treat -c/-m/-t as regexes anchored on both ends")
	fl.StringVarP(&declaredType, "type", "t", "", "declared-return-type filter")
	fl.StringVar(&include, "include", "", "comma-separated package prefixes to load (empty means all)")
	fl.StringVar(&exclude, "exclude", "", "comma-separated package prefixes to skip")
	fl.StringVarP(&format, "format", "f", "text", "output format: text, json, or yaml")
	fl.BoolVarP(&verbose, "verbose", "v", false, "diagnostic output on stderr")
	fl.BoolVar(&includeLibs, "include-libs", false, "scan library archives under the web archive's lib root (default: auto by input extension)")
	fl.StringVar(&libFilter, "lib-filter", "", "comma-separated globs restricting which library archives are scanned")
	return cmd
}
