package typehierarchy

import (
	"strings"

	"github.com/viant/javalineage/graph"
)

const globalAssignmentTraceDepth = 5

// buildGlobalAssignments precomputes, once per analysis instance, a map
// fieldKey -> set<className> of cross-method field assignments: every
// setter call site anywhere in the program (callee name "set" + capitalized
// field name, arity 1) plus every direct DataFlowEdge ending at a FieldNode,
// each resolved to its assigned type via a shallow backward trace capped at
// depth 5. This lets field discovery (strategy 4) see assignments made from
// a method other than the one currently being analyzed.
func buildGlobalAssignments(g *graph.Graph) map[string]map[string]bool {
	out := map[string]map[string]bool{}
	add := func(fieldKey, className string) {
		if className == "" {
			return
		}
		set := out[fieldKey]
		if set == nil {
			set = map[string]bool{}
			out[fieldKey] = set
		}
		set[className] = true
	}

	for _, n := range g.NodesOfKind(graph.KindCallSite) {
		if !isSetterName(n.Callee.Name) || n.Callee.Arity() != 1 {
			continue
		}
		fieldName := fieldNameFromSetter(n.Callee.Name)
		fieldKey := n.Callee.DeclaringClass.ClassName + "#" + fieldName
		if len(n.Arguments) != 1 {
			continue
		}
		for _, cn := range shallowConcreteTypes(g, n.Arguments[0], globalAssignmentTraceDepth) {
			add(fieldKey, cn)
		}
	}

	for _, n := range g.NodesOfKind(graph.KindField) {
		for _, e := range g.IncomingOfVariant(n.ID, graph.VariantDataFlow) {
			if e.FlowKind != graph.FieldStore {
				continue
			}
			fieldKey := n.Field.Key()
			for _, cn := range shallowConcreteTypes(g, e.From, globalAssignmentTraceDepth) {
				add(fieldKey, cn)
			}
		}
	}

	return out
}

func isSetterName(name string) bool {
	return strings.HasPrefix(name, "set") && len(name) > 3
}

func fieldNameFromSetter(name string) string {
	return lowerFirst(name[3:])
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
