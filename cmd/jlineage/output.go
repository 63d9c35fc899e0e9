package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/viant/javalineage/dataflow"
	"github.com/viant/javalineage/endpoint"
	"github.com/viant/javalineage/graph"
	"github.com/viant/javalineage/query"
	"github.com/viant/javalineage/typehierarchy"
)

// constantLiteral renders a constant node's value the way a user would type
// it in source, per the boxed types find-args reports.
func constantLiteral(n *graph.Node) string {
	switch n.ConstKind {
	case graph.ConstInt, graph.ConstLong:
		return strconv.FormatInt(n.IntValue, 10)
	case graph.ConstFloat, graph.ConstDouble:
		return strconv.FormatFloat(n.FloatValue, 'g', -1, 64)
	case graph.ConstBoolean:
		return strconv.FormatBool(n.BoolValue)
	case graph.ConstString:
		return n.StringValue
	case graph.ConstEnum:
		return n.EnumType.ClassName + "." + n.EnumConstName
	case graph.ConstNull:
		return "null"
	}
	return ""
}

func pathDescriptions(p *dataflow.PropagationPath, maxDepth int) []string {
	if p == nil {
		return nil
	}
	var out []string
	for i, step := range p.Steps {
		if maxDepth > 0 && i >= maxDepth {
			break
		}
		out = append(out, step.HumanDescription)
	}
	return out
}

// --- find-args ---

type argConstantJSON struct {
	Callee              string   `json:"callee"`
	ArgumentIndex       int      `json:"argumentIndex"`
	Value               string   `json:"value"`
	Location            string   `json:"location"`
	PropagationDepth    int      `json:"propagationDepth"`
	InvolvesReturnValue bool     `json:"involvesReturnValue"`
	InvolvesFieldAccess bool     `json:"involvesFieldAccess"`
	Path                []string `json:"path,omitempty"`
}

func renderArgumentConstants(results []query.ArgumentConstantResult, format string, showPath bool, maxPathDepth int) {
	switch format {
	case "json", "yaml":
		out := make([]argConstantJSON, 0, len(results))
		for _, r := range results {
			j := argConstantJSON{
				Callee:              r.CallSite.Callee.Signature(),
				ArgumentIndex:       r.ArgumentIndex,
				Value:               constantLiteral(r.Constant),
				Location:            r.Location,
				PropagationDepth:    r.PropagationDepth,
				InvolvesReturnValue: r.InvolvesReturnValue,
				InvolvesFieldAccess: r.InvolvesFieldAccess,
			}
			if showPath {
				j.Path = pathDescriptions(r.PropagationPath, maxPathDepth)
			}
			out = append(out, j)
		}
		if format == "yaml" {
			writeYAML(os.Stdout, out)
			return
		}
		writeJSON(os.Stdout, out)
	default:
		writeArgumentConstantsText(os.Stdout, results, showPath, maxPathDepth)
	}
}

func writeArgumentConstantsText(w io.Writer, results []query.ArgumentConstantResult, showPath bool, maxPathDepth int) {
	fmt.Fprintf(w, "Found %d result(s):\n", len(results))
	for _, r := range results {
		fmt.Fprintf(w, "  %s -> arg[%d] of %s\n", constantLiteral(r.Constant), r.ArgumentIndex, r.CallSite.Callee.Signature())
		fmt.Fprintf(w, "          at %s (depth %d)\n", r.Location, r.PropagationDepth)
		if showPath {
			for _, step := range pathDescriptions(r.PropagationPath, maxPathDepth) {
				fmt.Fprintf(w, "          -> %s\n", step)
			}
		}
	}
	fmt.Fprintf(w, "Summary: %d result(s)\n", len(results))
}

// --- find-returns ---

type returnTypeJSON struct {
	Method           string   `json:"method"`
	DeclaredType     string   `json:"declaredType"`
	ActualTypes      []string `json:"actualTypes"`
	TypesMismatch    bool     `json:"typesMismatch"`
	HasGenericReturn bool     `json:"hasGenericReturn"`
}

func renderReturnTypes(results []query.ReturnTypeResult, format string) {
	switch format {
	case "json", "yaml":
		out := make([]returnTypeJSON, 0, len(results))
		for _, r := range results {
			types := append([]string(nil), r.ActualTypes...)
			sort.Strings(types)
			out = append(out, returnTypeJSON{
				Method:           r.Method.Signature(),
				DeclaredType:     r.DeclaredType.ClassName,
				ActualTypes:      types,
				TypesMismatch:    r.TypesMismatch,
				HasGenericReturn: r.HasGenericReturn,
			})
		}
		if format == "yaml" {
			writeYAML(os.Stdout, out)
			return
		}
		writeJSON(os.Stdout, out)
	default:
		writeReturnTypesText(os.Stdout, results)
	}
}

func writeReturnTypesText(w io.Writer, results []query.ReturnTypeResult) {
	fmt.Fprintf(w, "Found %d result(s):\n", len(results))
	for _, r := range results {
		types := append([]string(nil), r.ActualTypes...)
		sort.Strings(types)
		fmt.Fprintf(w, "  %s\n", r.Method.Signature())
		fmt.Fprintf(w, "          Declared: %s\n", r.DeclaredType.SimpleName())
		fmt.Fprintf(w, "          Actual:   %v\n", types)
		if r.TypesMismatch {
			fmt.Fprintln(w, "          (mismatch)")
		}
	}
	fmt.Fprintf(w, "Summary: %d result(s)\n", len(results))
}

// --- find-endpoints ---

func renderEndpoints(ctx context.Context, g *graph.Graph, endpoints []graph.EndpointInfo, analyzer *typehierarchy.Analyzer, format string, opts endpoint.Options) {
	switch format {
	case "schema":
		doc, err := endpoint.Synthesize(ctx, g, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error during analysis: %v\n", err)
			os.Exit(1)
		}
		writeJSON(os.Stdout, doc)
	case "json":
		writeJSON(os.Stdout, endpoints)
	case "yaml":
		writeYAML(os.Stdout, endpoints)
	default:
		if err := writeEndpointsText(ctx, os.Stdout, endpoints, analyzer); err != nil {
			fmt.Fprintf(os.Stderr, "Error during analysis: %v\n", err)
			os.Exit(1)
		}
	}
}

func writeEndpointsText(ctx context.Context, w io.Writer, endpoints []graph.EndpointInfo, analyzer *typehierarchy.Analyzer) error {
	if len(endpoints) == 0 {
		return nil
	}
	fmt.Fprintf(w, "Found %d endpoint(s):\n", len(endpoints))

	sorted := append([]graph.EndpointInfo(nil), endpoints...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return groupKey(sorted[i].Path) < groupKey(sorted[j].Path)
	})

	for _, ep := range sorted {
		fmt.Fprintf(w, "  %-7s%s\n", ep.HTTPMethod, ep.Path)
		fmt.Fprintf(w, "          -> %s.%s()\n", ep.Method.DeclaringClass.SimpleName(), ep.Method.Name)
		fmt.Fprintf(w, "          Declared: %s\n", ep.Method.ReturnType.SimpleName())

		result, err := analyzer.AnalyzeMethod(ctx, ep.Method)
		if err != nil {
			return err
		}
		for _, ts := range result.ReturnStructures {
			fmt.Fprintf(w, "          Actual:   %s\n", ts.FormattedName)
			renderFieldTree(w, ts, "          ", 0)
		}
	}
	fmt.Fprintf(w, "Summary: %d endpoint(s)\n", len(endpoints))
	return nil
}

// groupKey is the first three '/'-segments of path, the grouping key the
// text format sorts endpoints by.
func groupKey(path string) string {
	segs := 0
	for i, r := range path {
		if r == '/' {
			segs++
			if segs == 4 {
				return path[:i]
			}
		}
	}
	return path
}

func renderFieldTree(w io.Writer, ts *typehierarchy.TypeStructure, prefix string, depth int) {
	if ts == nil || depth >= 10 || len(ts.Fields) == 0 {
		return
	}
	names := make([]string, 0, len(ts.Fields))
	for name := range ts.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		fs := ts.Fields[name]
		last := i == len(names)-1
		branch, nextPrefix := "├── ", prefix+"│   "
		if last {
			branch, nextPrefix = "└── ", prefix+"    "
		}

		label := formattedFieldType(fs)
		fmt.Fprintf(w, "%s%s%s: %s\n", prefix, branch, name, label)
		if len(fs.ActualTypes) == 1 {
			renderFieldTree(w, fs.ActualTypes[0], nextPrefix, depth+1)
		}
	}
}

func formattedFieldType(fs *typehierarchy.FieldStructure) string {
	if len(fs.ActualTypes) == 1 {
		return fs.ActualTypes[0].FormattedName
	}
	if len(fs.ActualTypes) > 1 {
		names := make([]string, len(fs.ActualTypes))
		for i, t := range fs.ActualTypes {
			names[i] = t.FormattedName
		}
		sort.Strings(names)
		return fmt.Sprintf("%v", names)
	}
	return fs.DeclaredType.FormattedName()
}

func writeJSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error during analysis: %v\n", err)
		os.Exit(1)
	}
}

// writeYAML backs the -f yaml debugging dump; the contractual machine
// formats stay JSON.
func writeYAML(w io.Writer, v interface{}) {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error during analysis: %v\n", err)
		os.Exit(1)
	}
	_ = enc.Close()
}
