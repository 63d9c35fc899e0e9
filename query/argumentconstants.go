package query

import (
	"context"
	"fmt"

	"github.com/viant/javalineage/dataflow"
	"github.com/viant/javalineage/graph"
)

// ArgumentConstantResult is one constant reaching an argument slot across a
// matching call site.
type ArgumentConstantResult struct {
	CallSite            *graph.Node
	ArgumentIndex       int
	Constant            *graph.Node
	Source              *dataflow.SourceInfo
	PropagationPath     *dataflow.PropagationPath
	Location            string
	PropagationDepth    int
	InvolvesReturnValue bool
	InvolvesFieldAccess bool
}

// FindArgumentConstants runs a backward slice on the given argument indices
// of every call site matching pattern, keeping only constant/enum-constant
// sources. Cancelling ctx aborts the scan with dataflow.ErrCancelled.
func FindArgumentConstants(ctx context.Context, g *graph.Graph, cfg Config, pattern graph.MethodPattern, argumentIndices []int) ([]ArgumentConstantResult, error) {
	slicer := dataflow.NewSlicer(g, cfg.Dataflow)
	var out []ArgumentConstantResult

	for _, cs := range g.CallSites(pattern) {
		for _, idx := range argumentIndices {
			if idx < 0 || idx >= len(cs.Arguments) {
				continue
			}
			argID := cs.Arguments[idx]
			sliced, err := slicer.BackwardSlice(ctx, argID)
			if err != nil {
				return nil, err
			}
			sources := dataflow.AllConstants(sliced)
			for i := range sources {
				src := sources[i]
				path := src.Path
				out = append(out, ArgumentConstantResult{
					CallSite:            cs,
					ArgumentIndex:       idx,
					Constant:            src.Node,
					Source:              &src,
					PropagationPath:     &path,
					Location:            fmt.Sprintf("%s#%s():%d", cs.CallingMethod.DeclaringClass.ClassName, cs.CallingMethod.Name, cs.SourceLine),
					PropagationDepth:    path.Depth(),
					InvolvesReturnValue: pathContains(path, dataflow.CALL_SITE),
					InvolvesFieldAccess: pathContains(path, dataflow.FIELD),
				})
			}
		}
	}
	return out, nil
}

func pathContains(p dataflow.PropagationPath, t dataflow.StepNodeType) bool {
	for _, step := range p.Steps {
		if step.NodeType == t {
			return true
		}
	}
	return false
}

// ArgumentDescriptorIndex groups results by the signature of their call
// site's callee, a convenience for presentation layers that label results
// by the called method.
func ArgumentDescriptorIndex(results []ArgumentConstantResult) map[string][]ArgumentConstantResult {
	out := map[string][]ArgumentConstantResult{}
	for _, r := range results {
		sig := r.CallSite.Callee.Signature()
		out[sig] = append(out[sig], r)
	}
	return out
}
