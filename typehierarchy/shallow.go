package typehierarchy

import (
	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
)

// shallowConcreteTypes performs a depth-bounded backward walk over
// DataFlowEdges from start, collecting the class names of every concrete
// (non-Object/void/unknown) type revealed along the way: a local variable's
// declared type, a call site's declared return type, a field's declared
// type, or a parameter's declared type. It does not recurse into callees
// (that interprocedural step belongs to the dedicated return-type walk in
// analyzer.go); setter/constructor/generic argument resolution and the
// global cross-method field-assignment precomputation all use this shallow
// trace.
func shallowConcreteTypes(g *graph.Graph, start descriptor.NodeID, maxDepth int) []string {
	visited := map[descriptor.NodeID]bool{}
	seen := map[string]bool{}
	var out []string
	var walk func(id descriptor.NodeID, depth int)
	walk = func(id descriptor.NodeID, depth int) {
		if visited[id] || depth > maxDepth {
			return
		}
		visited[id] = true
		n := g.Node(id)
		if n == nil {
			return
		}
		switch n.Kind {
		case graph.KindLocalVariable:
			if isConcrete(n.DeclaredType.ClassName) {
				addOnce(&out, seen, n.DeclaredType.ClassName)
				return
			}
		case graph.KindCallSite:
			if isConcrete(n.Callee.ReturnType.ClassName) {
				addOnce(&out, seen, n.Callee.ReturnType.ClassName)
				return
			}
		case graph.KindField:
			if isConcrete(n.Field.Type.ClassName) {
				addOnce(&out, seen, n.Field.Type.ClassName)
			}
			return
		case graph.KindParameter:
			if isConcrete(n.DeclaredType.ClassName) {
				addOnce(&out, seen, n.DeclaredType.ClassName)
			}
			return
		case graph.KindConstant:
			if n.ConstKind == graph.ConstEnum {
				addOnce(&out, seen, n.EnumType.ClassName)
			}
			return
		}
		for _, e := range g.IncomingOfVariant(id, graph.VariantDataFlow) {
			walk(e.From, depth+1)
		}
	}
	walk(start, 0)
	return out
}

func addOnce(out *[]string, seen map[string]bool, className string) {
	if className == "" || seen[className] {
		return
	}
	seen[className] = true
	*out = append(*out, className)
}
