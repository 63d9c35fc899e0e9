package dataflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
)

func methodDesc(class, name string, params ...string) descriptor.MethodDescriptor {
	m := descriptor.MethodDescriptor{
		DeclaringClass: descriptor.NewType(class),
		Name:           name,
		ReturnType:     descriptor.NewType("void"),
	}
	for _, p := range params {
		m.ParameterTypes = append(m.ParameterTypes, descriptor.NewType(p))
	}
	return m
}

// chainGraph builds constant -> local a -> local b -> call-site argument,
// three data-flow hops deep.
func chainGraph(t *testing.T) (*graph.Graph, descriptor.NodeID) {
	t.Helper()
	caller := methodDesc("com.acme.Caller", "run")
	callee := methodDesc("com.acme.Client", "send", "int")

	b := graph.NewBuilder()
	b.AddNode(&graph.Node{ID: 0, Kind: graph.KindConstant, ConstKind: graph.ConstInt, IntValue: 7, OwningMethod: caller})
	b.AddNode(&graph.Node{ID: 1, Kind: graph.KindLocalVariable, Name: "a", DeclaredType: descriptor.NewType("int"), OwningMethod: caller})
	b.AddNode(&graph.Node{ID: 2, Kind: graph.KindLocalVariable, Name: "b", DeclaredType: descriptor.NewType("int"), OwningMethod: caller})
	b.AddNode(&graph.Node{ID: 3, Kind: graph.KindCallSite, CallingMethod: caller, Callee: callee, SourceLine: 4, Arguments: []descriptor.NodeID{2}})
	b.AddEdge(&graph.Edge{From: 0, To: 1, Variant: graph.VariantDataFlow, FlowKind: graph.Assign})
	b.AddEdge(&graph.Edge{From: 1, To: 2, Variant: graph.VariantDataFlow, FlowKind: graph.Assign})
	b.AddEdge(&graph.Edge{From: 2, To: 3, Variant: graph.VariantDataFlow, FlowKind: graph.ArgumentPass})

	g, err := b.Build()
	require.NoError(t, err)
	return g, 2
}

func TestBackwardSlice_FindsConstantWithPath(t *testing.T) {
	g, argID := chainGraph(t)
	slicer := NewSlicer(g, AnalysisConfig{MaxDepth: 10})

	sources, err := slicer.BackwardSlice(context.Background(), argID)
	require.NoError(t, err)
	consts := Constants(sources)
	require.Len(t, consts, 1)
	assert.Equal(t, int64(7), consts[0].Node.IntValue)
	assert.Equal(t, 2, consts[0].Path.Depth())
	assert.Equal(t, CONSTANT, consts[0].Path.Steps[len(consts[0].Path.Steps)-1].NodeType)
}

func TestBackwardSlice_MonotoneInMaxDepth(t *testing.T) {
	g, argID := chainGraph(t)

	shallow, err := NewSlicer(g, AnalysisConfig{MaxDepth: 1}).BackwardSlice(context.Background(), argID)
	require.NoError(t, err)
	deep, err := NewSlicer(g, AnalysisConfig{MaxDepth: 3}).BackwardSlice(context.Background(), argID)
	require.NoError(t, err)

	shallowIDs := map[descriptor.NodeID]bool{}
	for _, s := range shallow {
		shallowIDs[s.NodeID] = true
	}
	deepIDs := map[descriptor.NodeID]bool{}
	for _, s := range deep {
		deepIDs[s.NodeID] = true
	}
	for id := range shallowIDs {
		assert.True(t, deepIDs[id], "source %d lost at greater depth", id)
	}
	assert.GreaterOrEqual(t, len(deep), len(shallow))
}

func TestBackwardSlice_MaxDepthZeroStaysAtStart(t *testing.T) {
	g, argID := chainGraph(t)
	slicer := NewSlicer(g, AnalysisConfig{MaxDepth: 0})

	sources, err := slicer.BackwardSlice(context.Background(), argID)
	require.NoError(t, err)
	assert.Empty(t, Constants(sources))

	// Starting directly on the constant still classifies it.
	direct, err := NewSlicer(g, AnalysisConfig{MaxDepth: 0}).BackwardSlice(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, Constants(direct), 1)
}

func TestBackwardSlice_EnumConstantSynthesis(t *testing.T) {
	owner := methodDesc("com.acme.Handler", "handle")
	enumField := descriptor.FieldDescriptor{
		DeclaringClass: descriptor.NewType("com.acme.Status"),
		Name:           "ACTIVE",
		Type:           descriptor.NewType("com.acme.Status"),
	}

	b := graph.NewBuilder()
	b.AddNode(&graph.Node{ID: 0, Kind: graph.KindField, Field: enumField, IsStatic: true})
	b.AddNode(&graph.Node{ID: 1, Kind: graph.KindLocalVariable, Name: "s", DeclaredType: descriptor.NewType("com.acme.Status"), OwningMethod: owner})
	b.AddNode(&graph.Node{ID: 2, Kind: graph.KindConstant, ConstKind: graph.ConstInt, IntValue: 1, OwningMethod: owner})
	b.AddEdge(&graph.Edge{From: 0, To: 1, Variant: graph.VariantDataFlow, FlowKind: graph.FieldLoad})
	b.AddEnumConstructorArgs("com.acme.Status", "ACTIVE", []descriptor.NodeID{2})

	g, err := b.Build()
	require.NoError(t, err)

	slicer := NewSlicer(g, AnalysisConfig{MaxDepth: 5})
	sources, err := slicer.BackwardSlice(context.Background(), 1)
	require.NoError(t, err)
	enums := EnumConstants(sources)
	require.Len(t, enums, 1)
	assert.Equal(t, "com.acme.Status", enums[0].EnumClass)
	assert.Equal(t, "ACTIVE", enums[0].EnumConstant)
	assert.Equal(t, []descriptor.NodeID{2}, enums[0].EnumArgs)
}

func TestBackwardSlice_InterProceduralParameterDive(t *testing.T) {
	target := methodDesc("com.acme.Service", "process", "int")
	caller := methodDesc("com.acme.Caller", "run")

	b := graph.NewBuilder()
	b.AddNode(&graph.Node{ID: 0, Kind: graph.KindParameter, ParamIndex: 0, DeclaredType: descriptor.NewType("int"), OwningMethod: target})
	b.AddNode(&graph.Node{ID: 1, Kind: graph.KindConstant, ConstKind: graph.ConstInt, IntValue: 99, OwningMethod: caller})
	b.AddNode(&graph.Node{ID: 2, Kind: graph.KindCallSite, CallingMethod: caller, Callee: target, SourceLine: 8, Arguments: []descriptor.NodeID{1}})
	b.AddEdge(&graph.Edge{From: 1, To: 2, Variant: graph.VariantDataFlow, FlowKind: graph.ArgumentPass})

	g, err := b.Build()
	require.NoError(t, err)

	withDive, err := NewSlicer(g, AnalysisConfig{MaxDepth: 10, InterProcedural: true}).BackwardSlice(context.Background(), 0)
	require.NoError(t, err)
	consts := Constants(withDive)
	require.Len(t, consts, 1)
	assert.Equal(t, int64(99), consts[0].Node.IntValue)

	withoutDive, err := NewSlicer(g, AnalysisConfig{MaxDepth: 10}).BackwardSlice(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, Constants(withoutDive))
}

func TestForwardSlice_ReachesReturnAndFieldStore(t *testing.T) {
	owner := methodDesc("com.acme.Service", "compute")
	f := descriptor.FieldDescriptor{
		DeclaringClass: descriptor.NewType("com.acme.Service"),
		Name:           "cached",
		Type:           descriptor.NewType("int"),
	}

	b := graph.NewBuilder()
	b.AddNode(&graph.Node{ID: 0, Kind: graph.KindConstant, ConstKind: graph.ConstInt, IntValue: 3, OwningMethod: owner})
	b.AddNode(&graph.Node{ID: 1, Kind: graph.KindLocalVariable, Name: "v", DeclaredType: descriptor.NewType("int"), OwningMethod: owner})
	b.AddNode(&graph.Node{ID: 2, Kind: graph.KindReturn, OwningMethod: owner})
	b.AddNode(&graph.Node{ID: 3, Kind: graph.KindField, Field: f})
	b.AddEdge(&graph.Edge{From: 0, To: 1, Variant: graph.VariantDataFlow, FlowKind: graph.Assign})
	b.AddEdge(&graph.Edge{From: 1, To: 2, Variant: graph.VariantDataFlow, FlowKind: graph.ReturnValue})
	b.AddEdge(&graph.Edge{From: 1, To: 3, Variant: graph.VariantDataFlow, FlowKind: graph.FieldStore})

	g, err := b.Build()
	require.NoError(t, err)

	sinks, err := NewSlicer(g, AnalysisConfig{MaxDepth: 10}).ForwardSlice(context.Background(), 0)
	require.NoError(t, err)
	kinds := map[SourceType]int{}
	for _, s := range sinks {
		kinds[s.SourceType]++
	}
	assert.Equal(t, 1, kinds[SourceReturnValue])
	assert.Equal(t, 1, kinds[SourceField])
}

func TestResultHelpers(t *testing.T) {
	g, argID := chainGraph(t)
	sources, err := NewSlicer(g, AnalysisConfig{MaxDepth: 10}).BackwardSlice(context.Background(), argID)
	require.NoError(t, err)

	assert.Len(t, IntConstants(sources), 1)
	assert.Len(t, AllConstants(sources), 1)
	assert.Equal(t, 2, MaxPropagationDepth(sources))

	byType := PropagationPathsBySourceType(sources)
	assert.Len(t, byType[SourceConstant], 1)
}

func TestBackwardSlice_CancelledContext(t *testing.T) {
	g, argID := chainGraph(t)
	slicer := NewSlicer(g, AnalysisConfig{MaxDepth: 10})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := slicer.BackwardSlice(ctx, argID)
	assert.ErrorIs(t, err, ErrCancelled)

	// A cancelled run memoises nothing; a fresh context succeeds.
	sources, err := slicer.BackwardSlice(context.Background(), argID)
	require.NoError(t, err)
	assert.Len(t, Constants(sources), 1)
}
