package typehierarchy

import (
	"context"
	"strconv"

	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
)

// inferGenericArguments recovers erased generic bindings from construction:
// for each <init> call of className in the context method, for each
// positional argument, compute its type by a shallow backward trace and
// record it under name "T" (first), "T1", "T2", … This runs before field
// discovery so TypeStructure.TypeArguments is populated ahead of Fields.
func (a *Analyzer) inferGenericArguments(ctx context.Context, ts *TypeStructure, className string, contextMethod descriptor.MethodDescriptor, chain map[string]bool, depth int) error {
	for _, n := range a.g.NodesOfKind(graph.KindCallSite) {
		if n.CallingMethod.Signature() != contextMethod.Signature() {
			continue
		}
		if !n.Callee.IsConstructor() || n.Callee.DeclaringClass.ClassName != className {
			continue
		}
		for i, argID := range n.Arguments {
			name := genericParamName(i)
			for _, cn := range shallowConcreteTypes(a.g, argID, a.cfg.MaxDepth) {
				if _, exists := ts.TypeArguments[name]; exists {
					continue
				}
				bound, err := a.resolveActualOrShallow(ctx, cn, contextMethod, chain, depth)
				if err != nil {
					return err
				}
				ts.TypeArguments[name] = bound
			}
		}
	}
	return nil
}

func genericParamName(index int) string {
	if index == 0 {
		return "T"
	}
	return "T" + strconv.Itoa(index)
}

// isGenericParamPlaceholder reports whether a declared field type looks
// like an unbound generic-parameter placeholder (T, E, K, V, T1, T2, …)
// rather than a concrete class name — used to set FieldStructure's
// IsGenericParameter flag.
func isGenericParamPlaceholder(className string) bool {
	if len(className) == 0 || len(className) > 3 {
		return false
	}
	if className[0] < 'A' || className[0] > 'Z' {
		return false
	}
	for _, r := range className[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
