package query

import (
	"context"

	"github.com/viant/javalineage/dataflow"
	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
)

// ReturnTypeResult is the outcome of resolving a method's actual return
// type(s), as opposed to its declared (possibly erased) one.
type ReturnTypeResult struct {
	Method           descriptor.MethodDescriptor
	DeclaredType     descriptor.TypeDescriptor
	ActualTypes      []string
	TypesMismatch    bool
	HasGenericReturn bool
}

// boxedForConstant maps a constant's kind to the boxed class it would be
// autoboxed to if returned as an Object.
func boxedForConstant(n *graph.Node) string {
	switch n.ConstKind {
	case graph.ConstInt:
		return "java.lang.Integer"
	case graph.ConstLong:
		return "java.lang.Long"
	case graph.ConstFloat:
		return "java.lang.Float"
	case graph.ConstDouble:
		return "java.lang.Double"
	case graph.ConstBoolean:
		return "java.lang.Boolean"
	case graph.ConstString:
		return "java.lang.String"
	case graph.ConstEnum:
		return n.EnumType.ClassName
	}
	return ""
}

// FindActualReturnTypes resolves, per matching method, the set of concrete
// types its return value can actually hold, by a dedicated backward trace
// that recognises constants (mapped to their boxed class) and recurses
// interprocedurally into any callee whose declared return type is Object.
// Cancelling ctx aborts the scan with dataflow.ErrCancelled.
func FindActualReturnTypes(ctx context.Context, g *graph.Graph, cfg Config, pattern graph.MethodPattern) ([]ReturnTypeResult, error) {
	var out []ReturnTypeResult
	for _, m := range g.Methods(pattern) {
		if ctx.Err() != nil {
			return nil, dataflow.ErrCancelled
		}
		actual := map[string]bool{}
		for _, rn := range returnNodesOf(g, m) {
			for _, e := range g.IncomingOfVariant(rn.ID, graph.VariantDataFlow) {
				if e.FlowKind != graph.ReturnValue {
					continue
				}
				walkActualReturn(g, e.From, map[descriptor.NodeID]bool{}, 0, cfg.Dataflow.MaxDepth, map[string]bool{m.Signature(): true}, actual)
			}
		}

		var types []string
		for t := range actual {
			types = append(types, t)
		}

		mismatch := false
		if len(types) != 1 || types[0] != m.ReturnType.ClassName {
			mismatch = true
		}

		out = append(out, ReturnTypeResult{
			Method:           m,
			DeclaredType:     m.ReturnType,
			ActualTypes:      types,
			TypesMismatch:    mismatch,
			HasGenericReturn: isGenericReturn(m.ReturnType),
		})
	}
	return out, nil
}

func returnNodesOf(g *graph.Graph, m descriptor.MethodDescriptor) []*graph.Node {
	var out []*graph.Node
	for _, n := range g.NodesOfKind(graph.KindReturn) {
		if n.OwningMethod.Signature() == m.Signature() {
			out = append(out, n)
		}
	}
	return out
}

func isGenericReturn(t descriptor.TypeDescriptor) bool {
	if t.ClassName == "java.lang.Object" || t.ClassName == "Object" {
		return true
	}
	for _, arg := range t.TypeArguments {
		if arg.ClassName == "java.lang.Object" || arg.ClassName == "Object" || arg.ClassName == "?" {
			return true
		}
	}
	return false
}

// walkActualReturn walks backward from a return value's data-flow source,
// recording a boxed class name for ConstantNodes (Null produces nothing),
// recursing into a callee's own returns when its declared return type is
// Object, and otherwise the callee's concrete return type directly.
func walkActualReturn(g *graph.Graph, id descriptor.NodeID, visited map[descriptor.NodeID]bool, depth, maxDepth int, callStack map[string]bool, out map[string]bool) {
	if visited[id] || depth > maxDepth {
		return
	}
	visited[id] = true

	n := g.Node(id)
	if n == nil {
		return
	}

	switch n.Kind {
	case graph.KindConstant:
		if n.ConstKind == graph.ConstNull {
			return
		}
		if boxed := boxedForConstant(n); boxed != "" {
			out[boxed] = true
		}
		return
	case graph.KindCallSite:
		ret := n.Callee.ReturnType.ClassName
		if ret == "java.lang.Object" || ret == "Object" {
			if callStack[n.Callee.Signature()] {
				return
			}
			callStack[n.Callee.Signature()] = true
			for _, rn := range returnNodesOf(g, n.Callee) {
				for _, e := range g.IncomingOfVariant(rn.ID, graph.VariantDataFlow) {
					if e.FlowKind != graph.ReturnValue {
						continue
					}
					walkActualReturn(g, e.From, map[descriptor.NodeID]bool{}, depth+1, maxDepth, callStack, out)
				}
			}
			delete(callStack, n.Callee.Signature())
			return
		}
		if ret != "" {
			out[ret] = true
		}
		return
	}

	for _, e := range g.IncomingOfVariant(id, graph.VariantDataFlow) {
		walkActualReturn(g, e.From, visited, depth+1, maxDepth, callStack, out)
	}
}
