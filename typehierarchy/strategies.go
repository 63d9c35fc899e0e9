package typehierarchy

import (
	"context"
	"strings"

	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
)

// classAndSupertypes returns className plus its transitive supertypes, used
// by the strategies that say "the target type and its supertypes".
func (a *Analyzer) classAndSupertypes(className string) []string {
	out := []string{className}
	for super := range a.g.AllSupertypes(className) {
		out = append(out, super)
	}
	return out
}

// declaredFields returns every FieldNode declared directly by className
// (not its supertypes), in graph iteration order.
func (a *Analyzer) declaredFields(className string) []*graph.Node {
	var out []*graph.Node
	for _, n := range a.g.NodesOfKind(graph.KindField) {
		if n.Field.DeclaringClass.ClassName == className {
			out = append(out, n)
		}
	}
	return out
}

func mergeField(fields map[string]*FieldStructure, name string, declared descriptor.TypeDescriptor, actual *TypeStructure) {
	fs, ok := fields[name]
	if !ok {
		fs = &FieldStructure{Name: name, DeclaredType: declared}
		fields[name] = fs
	}
	if actual == nil {
		return
	}
	for _, t := range fs.ActualTypes {
		if t.ClassName == actual.ClassName {
			return
		}
	}
	fs.ActualTypes = append(fs.ActualTypes, actual)
}

// resolveActualOrShallow builds a TypeStructure for cn when it is worth
// expanding (isAnalysable), falling back to a shallow leaf structure
// otherwise (e.g. "int", "java.lang.String").
func (a *Analyzer) resolveActualOrShallow(ctx context.Context, cn string, contextMethod descriptor.MethodDescriptor, chain map[string]bool, depth int) (*TypeStructure, error) {
	if a.cfg.isAnalysable(cn) && !isStandardType(cn) {
		return a.buildTypeStructure(ctx, cn, contextMethod, depth+1, chain)
	}
	return newTypeStructure(descriptor.NewType(cn)), nil
}

// strategySetterCalls is field-discovery strategy 1: setter calls in the
// context method whose callee declaring class equals className.
func (a *Analyzer) strategySetterCalls(ctx context.Context, fields map[string]*FieldStructure, className string, contextMethod descriptor.MethodDescriptor, chain map[string]bool, depth int) error {
	for _, n := range a.g.NodesOfKind(graph.KindCallSite) {
		if n.CallingMethod.Signature() != contextMethod.Signature() {
			continue
		}
		if n.Callee.DeclaringClass.ClassName != className {
			continue
		}
		if !isSetterName(n.Callee.Name) || n.Callee.Arity() != 1 || len(n.Arguments) != 1 {
			continue
		}
		fieldName := fieldNameFromSetter(n.Callee.Name)
		declared := a.declaredTypeOf(className, fieldName)
		for _, cn := range shallowConcreteTypes(a.g, n.Arguments[0], a.cfg.MaxDepth) {
			actual, err := a.resolveActualOrShallow(ctx, cn, contextMethod, chain, depth)
			if err != nil {
				return err
			}
			mergeField(fields, fieldName, declared, actual)
		}
	}
	return nil
}

// strategySetterFallback is the seventh fallback: setter calls in the
// context method whose *receiver's* local-variable type matches className
// even though the callee's declaring class differs (subclass-receiver /
// upcast case). Only used when strategies 1-6 find nothing.
func (a *Analyzer) strategySetterFallback(ctx context.Context, fields map[string]*FieldStructure, className string, contextMethod descriptor.MethodDescriptor, chain map[string]bool, depth int) error {
	for _, n := range a.g.NodesOfKind(graph.KindCallSite) {
		if n.CallingMethod.Signature() != contextMethod.Signature() || n.Receiver == nil {
			continue
		}
		recv := a.g.Node(*n.Receiver)
		if recv == nil || recv.Kind != graph.KindLocalVariable || recv.DeclaredType.ClassName != className {
			continue
		}
		if !isSetterName(n.Callee.Name) || n.Callee.Arity() != 1 || len(n.Arguments) != 1 {
			continue
		}
		fieldName := fieldNameFromSetter(n.Callee.Name)
		declared := a.declaredTypeOf(className, fieldName)
		for _, cn := range shallowConcreteTypes(a.g, n.Arguments[0], a.cfg.MaxDepth) {
			actual, err := a.resolveActualOrShallow(ctx, cn, contextMethod, chain, depth)
			if err != nil {
				return err
			}
			mergeField(fields, fieldName, declared, actual)
		}
	}
	return nil
}

// strategyDirectFieldStores is field-discovery strategy 2: a DataFlowEdge
// ending at a FieldNode declared by className, whose source is a
// LocalVariable in the same context method.
func (a *Analyzer) strategyDirectFieldStores(ctx context.Context, fields map[string]*FieldStructure, className string, contextMethod descriptor.MethodDescriptor, chain map[string]bool, depth int) error {
	for _, fn := range a.declaredFields(className) {
		for _, e := range a.g.IncomingOfVariant(fn.ID, graph.VariantDataFlow) {
			if e.FlowKind != graph.FieldStore {
				continue
			}
			src := a.g.Node(e.From)
			if src == nil || src.Kind != graph.KindLocalVariable || src.OwningMethod.Signature() != contextMethod.Signature() {
				continue
			}
			for _, cn := range shallowConcreteTypes(a.g, e.From, a.cfg.MaxDepth) {
				actual, err := a.resolveActualOrShallow(ctx, cn, contextMethod, chain, depth)
				if err != nil {
					return err
				}
				mergeField(fields, fn.Field.Name, fn.Field.Type, actual)
			}
		}
	}
	return nil
}

// compatibleCtorArg matches a constructor argument to a declared field:
// equal class, declared is Object, or both in java.*.
func compatibleCtorArg(declared, argType string) bool {
	if declared == argType || declared == "java.lang.Object" {
		return true
	}
	return strings.HasPrefix(declared, "java.") && strings.HasPrefix(argType, "java.")
}

// strategyConstructorCalls is field-discovery strategy 3: <init> calls in
// the context method targeting className, matching each positional
// argument to the first not-yet-matched declared field that satisfies the
// compatibility relation. Declared fields are visited in graph iteration
// order (see declaredFields), not in source declaration order.
func (a *Analyzer) strategyConstructorCalls(ctx context.Context, fields map[string]*FieldStructure, className string, contextMethod descriptor.MethodDescriptor, chain map[string]bool, depth int) error {
	declared := a.declaredFields(className)
	for _, n := range a.g.NodesOfKind(graph.KindCallSite) {
		if n.CallingMethod.Signature() != contextMethod.Signature() {
			continue
		}
		if !n.Callee.IsConstructor() || n.Callee.DeclaringClass.ClassName != className {
			continue
		}
		used := map[int]bool{}
		for i, argID := range n.Arguments {
			if i >= len(n.Callee.ParameterTypes) {
				break
			}
			paramType := n.Callee.ParameterTypes[i].ClassName
			var target *graph.Node
			for j, fn := range declared {
				if used[j] {
					continue
				}
				if compatibleCtorArg(fn.Field.Type.ClassName, paramType) {
					target = fn
					used[j] = true
					break
				}
			}
			if target == nil {
				continue
			}
			for _, cn := range shallowConcreteTypes(a.g, argID, a.cfg.MaxDepth) {
				actual, err := a.resolveActualOrShallow(ctx, cn, contextMethod, chain, depth)
				if err != nil {
					return err
				}
				mergeField(fields, target.Field.Name, target.Field.Type, actual)
			}
		}
	}
	return nil
}

// strategyGlobalAssignments is field-discovery strategy 4: the
// precomputed global fieldKey -> set<className> map, including fields
// inherited from supertypes.
func (a *Analyzer) strategyGlobalAssignments(ctx context.Context, fields map[string]*FieldStructure, className string, contextMethod descriptor.MethodDescriptor, chain map[string]bool, depth int) error {
	global := a.globalAssignments()
	for _, cls := range a.classAndSupertypes(className) {
		for _, fn := range a.declaredFields(cls) {
			key := fn.Field.Key()
			classes, ok := global[key]
			if !ok {
				continue
			}
			for cn := range classes {
				actual, err := a.resolveActualOrShallow(ctx, cn, contextMethod, chain, depth)
				if err != nil {
					return err
				}
				mergeField(fields, fn.Field.Name, fn.Field.Type, actual)
			}
		}
	}
	return nil
}

// strategyGetters is field-discovery strategy 5: zero-parameter non-void
// getX/isX methods on className or its supertypes, used only for field
// names not already present.
func (a *Analyzer) strategyGetters(ctx context.Context, fields map[string]*FieldStructure, className string, contextMethod descriptor.MethodDescriptor, chain map[string]bool, depth int) error {
	for _, cls := range a.classAndSupertypes(className) {
		for _, m := range a.g.Methods(graph.MethodPattern{DeclaringClass: cls}) {
			if m.Arity() != 0 || m.ReturnType.ClassName == "void" {
				continue
			}
			var fieldName string
			switch {
			case strings.HasPrefix(m.Name, "get") && len(m.Name) > 3:
				fieldName = lowerFirst(m.Name[3:])
			case strings.HasPrefix(m.Name, "is") && len(m.Name) > 2 && (m.ReturnType.ClassName == "boolean" || m.ReturnType.ClassName == "java.lang.Boolean"):
				fieldName = lowerFirst(m.Name[2:])
			default:
				continue
			}
			if _, exists := fields[fieldName]; exists {
				continue
			}
			actual, err := a.resolveActualOrShallow(ctx, m.ReturnType.ClassName, contextMethod, chain, depth)
			if err != nil {
				return err
			}
			mergeField(fields, fieldName, m.ReturnType, actual)
		}
	}
	return nil
}

// strategyDeclaredFields is field-discovery strategy 6: every FieldNode
// declared by className or a supertype, excluding synthetic names, used
// only for field names not already present.
func (a *Analyzer) strategyDeclaredFields(ctx context.Context, fields map[string]*FieldStructure, className string, contextMethod descriptor.MethodDescriptor, chain map[string]bool, depth int) error {
	for _, cls := range a.classAndSupertypes(className) {
		for _, fn := range a.declaredFields(cls) {
			if isSyntheticFieldName(fn.Field.Name) {
				continue
			}
			if _, exists := fields[fn.Field.Name]; exists {
				continue
			}
			actual, err := a.resolveActualOrShallow(ctx, fn.Field.Type.ClassName, contextMethod, chain, depth)
			if err != nil {
				return err
			}
			mergeField(fields, fn.Field.Name, fn.Field.Type, actual)
		}
	}
	return nil
}

// declaredTypeOf looks up the declared type of (className, fieldName) from
// the graph's FieldNodes, falling back to an empty/unknown descriptor.
func (a *Analyzer) declaredTypeOf(className, fieldName string) descriptor.TypeDescriptor {
	for _, cls := range a.classAndSupertypes(className) {
		for _, fn := range a.declaredFields(cls) {
			if fn.Field.Name == fieldName {
				return fn.Field.Type
			}
		}
	}
	return descriptor.NewType("unknown")
}
