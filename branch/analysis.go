package branch

import (
	"context"

	"github.com/viant/javalineage/dataflow"
	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
)

// DeadBranchKind tags which side of a branch condition was determined
// unreachable.
type DeadBranchKind uint8

const (
	BranchTrue DeadBranchKind = iota
	BranchFalse
)

// DeadBranch records one branch scope found unreachable under an
// assumption, together with the call sites inside it.
type DeadBranch struct {
	ConditionID   descriptor.NodeID
	Method        descriptor.MethodDescriptor
	Kind          DeadBranchKind
	DeadCallSites []descriptor.NodeID
}

// Result is the outcome of one Analyze run.
type Result struct {
	DeadBranches  []DeadBranch
	DeadMethods   []descriptor.MethodDescriptor
	DeadCallSites map[descriptor.NodeID]bool
}

// Analyze runs branch-reachability analysis: for every call site matching
// an assumption (and satisfying its optional argument constraint),
// forward-propagate the call's result through DataFlowEdges, evaluate every
// branch condition reached, mark the unreachable side dead, and close the
// transitive dead-method set to a fixed point. Cancelling ctx aborts with
// dataflow.ErrCancelled.
func Analyze(ctx context.Context, g *graph.Graph, cfg Config, assumptions []Assumption) (*Result, error) {
	slicer := dataflow.NewSlicer(g, dataflow.AnalysisConfig{MaxDepth: cfg.MaxDepth, InterProcedural: true})
	dead := map[descriptor.NodeID]bool{}
	var branches []DeadBranch

	for _, assumption := range assumptions {
		for _, cs := range g.CallSites(assumption.Pattern) {
			if ctx.Err() != nil {
				return nil, dataflow.ErrCancelled
			}
			ok, err := satisfiesArgumentConstraint(ctx, g, slicer, cs, assumption)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			reachable := reachableForward(g, cs.ID, cfg.MaxDepth*10)
			for id := range reachable {
				scope := g.BranchScopesFor(id)
				if scope == nil {
					continue
				}
				comparand := g.Node(scope.Comparison.Comparand)
				if comparand == nil || comparand.Kind != graph.KindConstant {
					continue
				}
				verdict := evaluateComparison(scope.Comparison.Operator, assumption.AssumedValue, comparand)

				var deadSet map[descriptor.NodeID]struct{}
				var kind DeadBranchKind
				switch verdict {
				case "true":
					deadSet, kind = scope.FalseSet(), BranchFalse
				case "false":
					deadSet, kind = scope.TrueSet(), BranchTrue
				default:
					continue
				}
				if len(deadSet) == 0 {
					continue
				}

				var deadCS []descriptor.NodeID
				for nid := range deadSet {
					if n := g.Node(nid); n != nil && n.Kind == graph.KindCallSite {
						dead[nid] = true
						deadCS = append(deadCS, nid)
					}
				}
				branches = append(branches, DeadBranch{
					ConditionID:   scope.ConditionID,
					Method:        scope.Method,
					Kind:          kind,
					DeadCallSites: deadCS,
				})
			}
		}
	}

	deadMethods := closeDeadMethods(g, dead)
	return &Result{DeadBranches: branches, DeadMethods: deadMethods, DeadCallSites: dead}, nil
}

// satisfiesArgumentConstraint reports whether cs carries assumption's
// optional argument constant, either directly or by backward slice.
func satisfiesArgumentConstraint(ctx context.Context, g *graph.Graph, slicer *dataflow.Slicer, cs *graph.Node, assumption Assumption) (bool, error) {
	if assumption.ArgumentIndex == nil {
		return true, nil
	}
	idx := *assumption.ArgumentIndex
	if idx < 0 || idx >= len(cs.Arguments) {
		return false, nil
	}
	argID := cs.Arguments[idx]
	if n := g.Node(argID); n != nil && n.Kind == graph.KindConstant && constantEquals(n, assumption.ArgumentValue) {
		return true, nil
	}
	sources, err := slicer.BackwardSlice(ctx, argID)
	if err != nil {
		return false, err
	}
	for _, src := range sources {
		if src.Node != nil && src.Node.Kind == graph.KindConstant && constantEquals(src.Node, assumption.ArgumentValue) {
			return true, nil
		}
	}
	return false, nil
}

// reachableForward performs a step-bounded BFS over outgoing DataFlowEdges
// from start, returning every node id visited.
func reachableForward(g *graph.Graph, start descriptor.NodeID, maxSteps int) map[descriptor.NodeID]bool {
	visited := map[descriptor.NodeID]bool{start: true}
	queue := []descriptor.NodeID{start}
	steps := 0
	for len(queue) > 0 && steps < maxSteps {
		id := queue[0]
		queue = queue[1:]
		steps++
		for _, e := range g.OutgoingOfVariant(id, graph.VariantDataFlow) {
			if !visited[e.To] {
				visited[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	return visited
}

// closeDeadMethods iterates to a fixed point: a method is dead if every
// call site targeting it (excluding <init>/<clinit>) is dead; marking a
// method dead in turn marks every call site inside its own body dead.
func closeDeadMethods(g *graph.Graph, dead map[descriptor.NodeID]bool) []descriptor.MethodDescriptor {
	allCallSites := g.NodesOfKind(graph.KindCallSite)
	deadMethods := map[string]bool{}

	for changed := true; changed; {
		changed = false

		byCallee := map[string][]*graph.Node{}
		for _, cs := range allCallSites {
			if cs.Callee.IsConstructor() || cs.Callee.IsStaticInit() {
				continue
			}
			byCallee[cs.Callee.Signature()] = append(byCallee[cs.Callee.Signature()], cs)
		}

		for sig, sites := range byCallee {
			if deadMethods[sig] {
				continue
			}
			allDead := true
			for _, cs := range sites {
				if !dead[cs.ID] {
					allDead = false
					break
				}
			}
			if !allDead {
				continue
			}
			deadMethods[sig] = true
			changed = true
			for _, cs := range allCallSites {
				if cs.CallingMethod.Signature() == sig && !dead[cs.ID] {
					dead[cs.ID] = true
					changed = true
				}
			}
		}
	}

	var out []descriptor.MethodDescriptor
	for sig := range deadMethods {
		if m, ok := g.MethodBySignature(sig); ok {
			out = append(out, m)
		}
	}
	return out
}

// FindUnreferencedMethods returns every method in the index whose signature
// is not the callee of any call site (excluding constructors), independent
// of any assumption.
func FindUnreferencedMethods(g *graph.Graph) []descriptor.MethodDescriptor {
	referenced := map[string]bool{}
	for _, cs := range g.NodesOfKind(graph.KindCallSite) {
		if cs.Callee.IsConstructor() {
			continue
		}
		referenced[cs.Callee.Signature()] = true
	}
	var out []descriptor.MethodDescriptor
	for _, sig := range g.AllMethodSignatures() {
		if referenced[sig] {
			continue
		}
		m, ok := g.MethodBySignature(sig)
		if !ok || m.IsConstructor() {
			continue
		}
		out = append(out, m)
	}
	return out
}
