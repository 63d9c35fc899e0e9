package dataflow

import (
	"context"
	"errors"
	"sync"

	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
)

// ErrCancelled is returned by every traversal whose context is cancelled
// before completion. A cancelled traversal memoises nothing, so a later
// retry against the same node starts clean.
var ErrCancelled = errors.New("dataflow: analysis cancelled")

// Slicer runs backward/forward data-flow slices over a single graph,
// memoising results per start node so repeated queries against the same
// argument or return value are free.
type Slicer struct {
	g        *graph.Graph
	cfg      AnalysisConfig
	mu       sync.Mutex
	backMemo map[descriptor.NodeID][]SourceInfo
	fwdMemo  map[descriptor.NodeID][]SourceInfo
}

// NewSlicer builds a Slicer bound to g and cfg.
func NewSlicer(g *graph.Graph, cfg AnalysisConfig) *Slicer {
	return &Slicer{
		g:        g,
		cfg:      cfg,
		backMemo: map[descriptor.NodeID][]SourceInfo{},
		fwdMemo:  map[descriptor.NodeID][]SourceInfo{},
	}
}

// BackwardSlice traverses incoming DataFlowEdges depth-first from nodeId,
// recording a SourceInfo whenever it visits a ConstantNode, ParameterNode or
// FieldNode. When cfg.InterProcedural is set, reaching a ParameterNode also
// dives into every call site targeting the parameter's owning method, at the
// parameter's argument index. Depth counts edges, capped at cfg.MaxDepth.
func (s *Slicer) BackwardSlice(ctx context.Context, nodeID descriptor.NodeID) ([]SourceInfo, error) {
	s.mu.Lock()
	if cached, ok := s.backMemo[nodeID]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	visited := map[descriptor.NodeID]bool{}
	var sources []SourceInfo
	if err := s.walkBackward(ctx, nodeID, nil, 0, visited, &sources); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.backMemo[nodeID] = sources
	s.mu.Unlock()
	return sources, nil
}

func (s *Slicer) walkBackward(ctx context.Context, id descriptor.NodeID, path []PropagationStep, depth int, visited map[descriptor.NodeID]bool, out *[]SourceInfo) error {
	if ctx.Err() != nil {
		return ErrCancelled
	}
	if visited[id] || depth > s.cfg.MaxDepth {
		return nil
	}
	visited[id] = true

	n := s.g.Node(id)
	if n == nil {
		return nil
	}
	step := PropagationStep{NodeID: id, NodeType: nodeStepType(n), HumanDescription: describeNode(n), Location: nodeLocation(n), Depth: depth}
	stepPath := append(append([]PropagationStep(nil), path...), step)

	if src, ok := s.classifySource(n, stepPath); ok {
		*out = append(*out, src)
	}

	if n.Kind == graph.KindParameter && s.cfg.InterProcedural {
		if err := s.diveIntoCallers(ctx, n, stepPath, depth, visited, out); err != nil {
			return err
		}
	}

	for _, e := range s.g.Incoming(id) {
		if e.Variant != graph.VariantDataFlow {
			continue
		}
		kind := e.FlowKind
		next := append([]PropagationStep(nil), stepPath...)
		if len(next) > 0 {
			next[len(next)-1].IncomingEdgeKind = &kind
		}
		if err := s.walkBackward(ctx, e.From, next, depth+1, visited, out); err != nil {
			return err
		}
	}
	return nil
}

// diveIntoCallers finds every call site targeting the parameter's owning
// method and continues the backward slice from the argument node bound to
// that parameter's index.
func (s *Slicer) diveIntoCallers(ctx context.Context, param *graph.Node, path []PropagationStep, depth int, visited map[descriptor.NodeID]bool, out *[]SourceInfo) error {
	owner := param.OwningMethod
	pattern := graph.MethodPattern{
		DeclaringClass: owner.DeclaringClass.ClassName,
		Name:           owner.Name,
		ReturnType:     owner.ReturnType.ClassName,
	}
	for _, p := range owner.ParameterTypes {
		pattern.ParameterTypes = append(pattern.ParameterTypes, p.ClassName)
	}
	for _, cs := range s.g.CallSites(pattern) {
		if param.ParamIndex >= len(cs.Arguments) {
			continue
		}
		arg := cs.Arguments[param.ParamIndex]
		if err := s.walkBackward(ctx, arg, path, depth+1, visited, out); err != nil {
			return err
		}
	}
	return nil
}

// ForwardSlice traverses outgoing DataFlowEdges depth-first from nodeId;
// sinks are ReturnNode and FieldNode (field store).
func (s *Slicer) ForwardSlice(ctx context.Context, nodeID descriptor.NodeID) ([]SourceInfo, error) {
	s.mu.Lock()
	if cached, ok := s.fwdMemo[nodeID]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	visited := map[descriptor.NodeID]bool{}
	var sinks []SourceInfo
	if err := s.walkForward(ctx, nodeID, nil, 0, visited, &sinks); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.fwdMemo[nodeID] = sinks
	s.mu.Unlock()
	return sinks, nil
}

func (s *Slicer) walkForward(ctx context.Context, id descriptor.NodeID, path []PropagationStep, depth int, visited map[descriptor.NodeID]bool, out *[]SourceInfo) error {
	if ctx.Err() != nil {
		return ErrCancelled
	}
	if visited[id] || depth > s.cfg.MaxDepth {
		return nil
	}
	visited[id] = true

	n := s.g.Node(id)
	if n == nil {
		return nil
	}
	step := PropagationStep{NodeID: id, NodeType: nodeStepType(n), HumanDescription: describeNode(n), Location: nodeLocation(n), Depth: depth}
	stepPath := append(append([]PropagationStep(nil), path...), step)

	if n.Kind == graph.KindReturn {
		*out = append(*out, SourceInfo{NodeID: id, SourceType: SourceReturnValue, Node: n, Path: PropagationPath{Steps: stepPath}})
	}
	if n.Kind == graph.KindField {
		*out = append(*out, SourceInfo{NodeID: id, SourceType: SourceField, Node: n, Path: PropagationPath{Steps: stepPath}})
	}

	for _, e := range s.g.Outgoing(id) {
		if e.Variant != graph.VariantDataFlow {
			continue
		}
		kind := e.FlowKind
		next := append([]PropagationStep(nil), stepPath...)
		if len(next) > 0 {
			next[len(next)-1].IncomingEdgeKind = &kind
		}
		if err := s.walkForward(ctx, e.To, next, depth+1, visited, out); err != nil {
			return err
		}
	}
	return nil
}

// classifySource recognises ConstantNode/ParameterNode/FieldNode sources,
// synthesising an EnumConstant source when the field is an enum constant
// (static, field type equal to its declaring class).
func (s *Slicer) classifySource(n *graph.Node, path []PropagationStep) (SourceInfo, bool) {
	switch n.Kind {
	case graph.KindConstant:
		return SourceInfo{NodeID: n.ID, SourceType: SourceConstant, Node: n, Path: PropagationPath{Steps: path}}, true
	case graph.KindParameter:
		return SourceInfo{NodeID: n.ID, SourceType: SourceParameter, Node: n, Path: PropagationPath{Steps: path}}, true
	case graph.KindField:
		if n.IsStatic && n.Field.Type.ClassName == n.Field.DeclaringClass.ClassName {
			return s.enumSource(n, path), true
		}
		return SourceInfo{NodeID: n.ID, SourceType: SourceField, Node: n, Path: PropagationPath{Steps: path}}, true
	}
	return SourceInfo{}, false
}

func (s *Slicer) enumSource(n *graph.Node, path []PropagationStep) SourceInfo {
	enumClass := n.Field.DeclaringClass.ClassName
	constName := n.Field.Name
	return SourceInfo{
		NodeID:       n.ID,
		SourceType:   SourceEnumConstant,
		Node:         n,
		Path:         PropagationPath{Steps: path},
		EnumClass:    enumClass,
		EnumConstant: constName,
		EnumArgs:     s.g.EnumValues(enumClass, constName),
	}
}

// Constants returns every source classified as a direct constant.
func Constants(sources []SourceInfo) []SourceInfo {
	return filterSources(sources, SourceConstant)
}

// AllConstants returns direct constants plus synthesised enum constants.
func AllConstants(sources []SourceInfo) []SourceInfo {
	var out []SourceInfo
	out = append(out, filterSources(sources, SourceConstant)...)
	out = append(out, filterSources(sources, SourceEnumConstant)...)
	return out
}

// IntConstants returns direct constants whose ConstKind is ConstInt.
func IntConstants(sources []SourceInfo) []SourceInfo {
	var out []SourceInfo
	for _, s := range filterSources(sources, SourceConstant) {
		if s.Node != nil && s.Node.ConstKind == graph.ConstInt {
			out = append(out, s)
		}
	}
	return out
}

// EnumConstants returns every synthesised enum-constant source.
func EnumConstants(sources []SourceInfo) []SourceInfo {
	return filterSources(sources, SourceEnumConstant)
}

// Fields returns every source classified as a field.
func Fields(sources []SourceInfo) []SourceInfo {
	return filterSources(sources, SourceField)
}

func filterSources(sources []SourceInfo, t SourceType) []SourceInfo {
	var out []SourceInfo
	for _, s := range sources {
		if s.SourceType == t {
			out = append(out, s)
		}
	}
	return out
}

// ConstantsWithPaths returns every constant/enum-constant source paired with
// its recorded PropagationPath. Every source already carries its path, so
// this is a thin alias of AllConstants kept for readability at call sites
// that care about the paths rather than the values.
func ConstantsWithPaths(sources []SourceInfo) []SourceInfo {
	return AllConstants(sources)
}

// MaxPropagationDepth returns the deepest PropagationPath depth across sources.
func MaxPropagationDepth(sources []SourceInfo) int {
	max := 0
	for _, s := range sources {
		if d := s.Path.Depth(); d > max {
			max = d
		}
	}
	return max
}

// PropagationPathsBySourceType groups recorded paths by their source's
// SourceType.
func PropagationPathsBySourceType(sources []SourceInfo) map[SourceType][]PropagationPath {
	out := map[SourceType][]PropagationPath{}
	for _, s := range sources {
		out[s.SourceType] = append(out[s.SourceType], s.Path)
	}
	return out
}
