package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/javalineage/graph"
	"github.com/viant/javalineage/internal/obs"
	"github.com/viant/javalineage/loader"
	"github.com/viant/javalineage/query"
)

func init() {
	rootCmd.AddCommand(newFindArgsCmd())
}

func newFindArgsCmd() *cobra.Command {
	var (
		class        string
		method       string
		useRegex     bool
		params       string
		indices      string
		include      string
		exclude      string
		format       string
		verbose      bool
		includeLibs  bool
		libFilter    string
		showPath     bool
		minDepth     int
		maxPathDepth int
	)

	cmd := &cobra.Command{
		Use:   "find-args <input>",
		Short: "Enumerate every constant value passed at an argument position of a target method",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			inputPath := args[0]
			requireInputPath(inputPath)

			idxs := parseIndices(indices)

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
				ParameterTypes: splitCSV(params),
				UseRegex:       useRegex,
			}

			qcfg := query.DefaultConfig()
			qcfg.TypeHierarchy.IncludePackages = splitCSV(include)
			qcfg.TypeHierarchy.ExcludePackages = splitCSV(exclude)

			spanCtx, span := obs.StartPhase(ctx, "dataflow")
			phaseStart := time.Now()
			results, err := query.FindArgumentConstants(spanCtx, g, qcfg, pattern, idxs)
			obs.ObservePhase("dataflow", time.Since(phaseStart))
			span.End()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error during analysis: %v\n", err)
				os.Exit(1)
			}

			if minDepth > 0 {
				filtered := results[:0]
				for _, r := range results {
					if r.PropagationDepth >= minDepth {
						filtered = append(filtered, r)
					}
				}
				results = filtered
			}

			renderArgumentConstants(results, format, showPath, maxPathDepth)

			registry.Record(obs.RunSummary{
				RunID:          runID,
				Command:        "find-args",
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
	fl.StringVarP(&class, "class", "c", "", "declaring class of the target method (exact, trailing '*' prefix, or regex with -r)")
	fl.StringVarP(&method, "method", "m", "", "name of the target method")
	fl.BoolVarP(&useRegex, "regex", "r", false, "treat -c/-m/-p as regexes anchored on both ends")
	fl.StringVarP(&params, "params", "p", "", "comma-separated parameter-type filter (arity must match)")
	fl.StringVarP(&indices, "indices", "i", "0", "comma-separated argument indices to analyze")
	fl.StringVar(&include, "include", "", "comma-separated package prefixes to load (empty means all)")
	fl.StringVar(&exclude, "exclude", "", "comma-separated package prefixes to skip")
	fl.StringVarP(&format, "format", "f", "text", "output format: text, json, or yaml")
	fl.BoolVarP(&verbose, "verbose", "v", false, "diagnostic output on stderr")
	fl.BoolVar(&includeLibs, "include-libs", false, "scan library archives under the web archive's lib root (default: auto by input extension)")
	fl.StringVar(&libFilter, "lib-filter", "", "comma-separated globs restricting which library archives are scanned")
	fl.BoolVar(&showPath, "show-path", false, "print the propagation path of each constant")
	fl.IntVar(&minDepth, "min-depth", 0, "only report constants whose propagation depth is at least N")
	fl.IntVar(&maxPathDepth, "max-path-depth", 0, "truncate printed propagation paths to N steps (0 means all)")

	_ = cmd.MarkFlagRequired("class")
	_ = cmd.MarkFlagRequired("method")
	return cmd
}

// parseIndices parses the -i flag, accepting a single index or a
// comma-separated list, exiting 1 on anything non-numeric.
func parseIndices(s string) []int {
	parts := splitCSV(s)
	if len(parts) == 0 {
		return []int{0}
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			fmt.Fprintf(os.Stderr, "Error: invalid argument index: %s\n", p)
			os.Exit(1)
		}
		out = append(out, n)
	}
	return out
}
