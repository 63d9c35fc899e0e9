package query

import (
	"context"

	"github.com/viant/javalineage/graph"
	"github.com/viant/javalineage/typehierarchy"
)

// FindTypeHierarchy delegates to the typehierarchy package for every method
// matching pattern. Cancelling ctx aborts the scan with
// dataflow.ErrCancelled.
func FindTypeHierarchy(ctx context.Context, g *graph.Graph, cfg Config, pattern graph.MethodPattern) ([]*typehierarchy.TypeHierarchyResult, error) {
	analyzer := typehierarchy.NewAnalyzer(g, cfg.TypeHierarchy)
	var out []*typehierarchy.TypeHierarchyResult
	for _, m := range g.Methods(pattern) {
		result, err := analyzer.AnalyzeMethod(ctx, m)
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}
