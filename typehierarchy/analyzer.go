// Package typehierarchy computes, for a method, the structural (as opposed
// to declared/erased) shape of every concrete type its return value can
// actually hold — following constructor calls, setter calls and field
// assignments rather than trusting Object-typed or generic-erased
// declarations.
package typehierarchy

import (
	"context"
	"sync"

	"github.com/viant/javalineage/dataflow"
	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
)

// typeHit is one concrete type discovered while tracing a method's return
// value backward, paired with the method whose body actually constructed
// or assigned it — the "context method" strategies 1-3 scan for setter /
// store / constructor evidence.
type typeHit struct {
	ClassName string
	Context   descriptor.MethodDescriptor
}

// Analyzer runs type-hierarchy analysis over a single graph, memoising the
// global field-assignment map and per-(class,context) TypeStructures across
// however many methods are queried against it.
type Analyzer struct {
	g   *graph.Graph
	cfg Config

	mu    sync.Mutex
	cache map[string]*TypeStructure

	globalOnce sync.Once
	global     map[string]map[string]bool
}

// NewAnalyzer builds an Analyzer bound to g and cfg.
func NewAnalyzer(g *graph.Graph, cfg Config) *Analyzer {
	return &Analyzer{g: g, cfg: cfg, cache: map[string]*TypeStructure{}}
}

func (a *Analyzer) globalAssignments() map[string]map[string]bool {
	a.globalOnce.Do(func() {
		a.global = buildGlobalAssignments(a.g)
	})
	return a.global
}

// AnalyzeMethod resolves the full structural return-type shape of method,
// guarding against recursive re-entry by method signature and depth-limiting
// interprocedural recursion at cfg.MaxDepth. Cancelling ctx aborts with
// dataflow.ErrCancelled; nothing is cached from an aborted run.
func (a *Analyzer) AnalyzeMethod(ctx context.Context, method descriptor.MethodDescriptor) (*TypeHierarchyResult, error) {
	callStack := map[string]bool{method.Signature(): true}
	hits, err := a.returnTypesForSignature(ctx, method, callStack)
	if err != nil {
		return nil, err
	}

	var structures []*TypeStructure
	built := map[string]bool{}
	for _, h := range hits {
		if built[h.ClassName+"##"+h.Context.Signature()] {
			continue
		}
		built[h.ClassName+"##"+h.Context.Signature()] = true
		ts, err := a.buildTypeStructure(ctx, h.ClassName, h.Context, 0, map[string]bool{})
		if err != nil {
			return nil, err
		}
		structures = append(structures, ts)
	}
	return &TypeHierarchyResult{Method: method, ReturnStructures: structures}, nil
}

// returnNodesOf scans every ReturnNode owned by method.
func (a *Analyzer) returnNodesOf(method descriptor.MethodDescriptor) []*graph.Node {
	var out []*graph.Node
	for _, n := range a.g.NodesOfKind(graph.KindReturn) {
		if n.OwningMethod.Signature() == method.Signature() {
			out = append(out, n)
		}
	}
	return out
}

// returnTypesForSignature resolves every concrete type reachable backward
// from m's return nodes.
func (a *Analyzer) returnTypesForSignature(ctx context.Context, m descriptor.MethodDescriptor, callStack map[string]bool) ([]typeHit, error) {
	var hits []typeHit
	for _, rn := range a.returnNodesOf(m) {
		for _, e := range a.g.IncomingOfVariant(rn.ID, graph.VariantDataFlow) {
			if e.FlowKind != graph.ReturnValue {
				continue
			}
			if err := a.walkReturnSource(ctx, e.From, map[descriptor.NodeID]bool{}, 0, m, callStack, &hits); err != nil {
				return nil, err
			}
		}
	}
	return hits, nil
}

// walkReturnSource walks backward from a return value's source node,
// classifying the first revealing node on each path:
//   - LocalVariable with a concrete declared type: done, record it.
//   - CallSiteNode with a concrete callee return type: record it, context
//     becomes the callee (that's where the object was actually built);
//     otherwise, when InterProcedural, recurse into the callee's own
//     return nodes.
//   - FieldNode: prefer the global cross-method assignment map, else the
//     declared field type.
//
// Anything else (ParameterNode, non-concrete LocalVariable, ConstantNode)
// keeps walking backward through incoming DataFlowEdges.
func (a *Analyzer) walkReturnSource(ctx context.Context, id descriptor.NodeID, visited map[descriptor.NodeID]bool, depth int, contextMethod descriptor.MethodDescriptor, callStack map[string]bool, out *[]typeHit) error {
	if ctx.Err() != nil {
		return dataflow.ErrCancelled
	}
	if visited[id] || depth > a.cfg.MaxDepth {
		return nil
	}
	visited[id] = true

	n := a.g.Node(id)
	if n == nil {
		return nil
	}

	switch n.Kind {
	case graph.KindLocalVariable:
		if isConcrete(n.DeclaredType.ClassName) {
			*out = append(*out, typeHit{ClassName: n.DeclaredType.ClassName, Context: contextMethod})
			return nil
		}
	case graph.KindCallSite:
		retType := n.Callee.ReturnType.ClassName
		if isConcrete(retType) {
			*out = append(*out, typeHit{ClassName: retType, Context: n.Callee})
			return nil
		}
		if a.cfg.InterProcedural && !callStack[n.Callee.Signature()] {
			callStack[n.Callee.Signature()] = true
			calleeHits, err := a.returnTypesForSignature(ctx, n.Callee, callStack)
			delete(callStack, n.Callee.Signature())
			if err != nil {
				return err
			}
			*out = append(*out, calleeHits...)
		}
		return nil
	case graph.KindField:
		key := n.Field.Key()
		if classes, ok := a.globalAssignments()[key]; ok && len(classes) > 0 {
			for cn := range classes {
				*out = append(*out, typeHit{ClassName: cn, Context: contextMethod})
			}
			return nil
		}
		if isConcrete(n.Field.Type.ClassName) {
			*out = append(*out, typeHit{ClassName: n.Field.Type.ClassName, Context: contextMethod})
		}
		return nil
	}

	for _, e := range a.g.IncomingOfVariant(id, graph.VariantDataFlow) {
		if err := a.walkReturnSource(ctx, e.From, visited, depth+1, contextMethod, callStack, out); err != nil {
			return err
		}
	}
	return nil
}

// buildTypeStructure builds (or returns the cached) TypeStructure for
// className as discovered within contextMethod's body, applying generic-
// argument inference then the six-strategy (plus fallback) field
// discovery, finally layering serialization hints onto every field.
func (a *Analyzer) buildTypeStructure(ctx context.Context, className string, contextMethod descriptor.MethodDescriptor, depth int, chain map[string]bool) (*TypeStructure, error) {
	key := className + "##" + contextMethod.Signature()

	a.mu.Lock()
	if cached, ok := a.cache[key]; ok {
		a.mu.Unlock()
		return cached, nil
	}
	a.mu.Unlock()

	if ctx.Err() != nil {
		return nil, dataflow.ErrCancelled
	}
	if chain[className] || depth > a.cfg.MaxDepth {
		return newTypeStructure(descriptor.NewType(className)), nil
	}

	ts := newTypeStructure(descriptor.NewType(className))
	nextChain := make(map[string]bool, len(chain)+1)
	for k := range chain {
		nextChain[k] = true
	}
	nextChain[className] = true

	if err := a.inferGenericArguments(ctx, ts, className, contextMethod, nextChain, depth); err != nil {
		return nil, err
	}

	fields := map[string]*FieldStructure{}
	strategies := []func(context.Context, map[string]*FieldStructure, string, descriptor.MethodDescriptor, map[string]bool, int) error{
		a.strategySetterCalls,
		a.strategyDirectFieldStores,
		a.strategyConstructorCalls,
		a.strategyGlobalAssignments,
		a.strategyGetters,
		a.strategyDeclaredFields,
	}
	for _, strategy := range strategies {
		if err := strategy(ctx, fields, className, contextMethod, nextChain, depth); err != nil {
			return nil, err
		}
	}
	if len(fields) == 0 {
		if err := a.strategySetterFallback(ctx, fields, className, contextMethod, nextChain, depth); err != nil {
			return nil, err
		}
	}

	for name, fs := range fields {
		fs.IsGenericParameter = isGenericParamPlaceholder(fs.DeclaredType.ClassName)
		if hint, ok := a.g.JacksonFieldInfo(className, name); ok {
			fs.JSONName = hint.JSONName
			fs.IsJSONIgnored = hint.IsIgnored
			continue
		}
		if hint, ok := a.g.JacksonGetterInfo(className, "get"+upperFirst(name)); ok {
			fs.JSONName = hint.JSONName
			fs.IsJSONIgnored = hint.IsIgnored
			continue
		}
		if hint, ok := a.g.JacksonGetterInfo(className, "is"+upperFirst(name)); ok {
			fs.JSONName = hint.JSONName
			fs.IsJSONIgnored = hint.IsIgnored
		}
	}
	ts.Fields = fields

	a.mu.Lock()
	a.cache[key] = ts
	a.mu.Unlock()
	return ts, nil
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return stringsToUpperASCII(s[:1]) + s[1:]
}

func stringsToUpperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 32
		}
	}
	return string(b)
}
