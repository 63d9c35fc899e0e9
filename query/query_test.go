package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
)

// buildCallerGraph models caller() building constant 1001, assigning it to
// local optId, then passing it to Client.getOption(int).
func buildCallerGraph(t *testing.T) (*graph.Graph, descriptor.MethodDescriptor) {
	t.Helper()
	caller := descriptor.MethodDescriptor{
		DeclaringClass: descriptor.NewType("com.acme.Caller"),
		Name:           "caller",
		ReturnType:     descriptor.NewType("void"),
	}
	getOption := descriptor.MethodDescriptor{
		DeclaringClass: descriptor.NewType("com.acme.Client"),
		Name:           "getOption",
		ParameterTypes: []descriptor.TypeDescriptor{descriptor.NewType("int")},
		ReturnType:     descriptor.NewType("boolean"),
	}

	b := graph.NewBuilder()
	b.AddNode(&graph.Node{ID: 0, Kind: graph.KindConstant, ConstKind: graph.ConstInt, IntValue: 1001, OwningMethod: caller})
	b.AddNode(&graph.Node{ID: 1, Kind: graph.KindLocalVariable, Name: "optId", DeclaredType: descriptor.NewType("int"), OwningMethod: caller})
	b.AddNode(&graph.Node{ID: 2, Kind: graph.KindCallSite, CallingMethod: caller, Callee: getOption, SourceLine: 10, Arguments: []descriptor.NodeID{1}})
	b.AddEdge(&graph.Edge{From: 0, To: 1, Variant: graph.VariantDataFlow, FlowKind: graph.Assign})
	b.AddEdge(&graph.Edge{From: 1, To: 2, Variant: graph.VariantDataFlow, FlowKind: graph.ArgumentPass})

	g, err := b.Build()
	require.NoError(t, err)
	return g, getOption
}

func TestFindArgumentConstants_SingleLocal(t *testing.T) {
	g, callee := buildCallerGraph(t)

	results, err := FindArgumentConstants(context.Background(), g, DefaultConfig(), graph.MethodPattern{
		DeclaringClass: callee.DeclaringClass.ClassName,
		Name:           callee.Name,
	}, []int{0})
	require.NoError(t, err)

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, int64(1001), r.Constant.IntValue)
	assert.Equal(t, 1, r.PropagationDepth)
	assert.Equal(t, "com.acme.Caller#caller():10", r.Location)
	assert.False(t, r.InvolvesReturnValue)
	assert.False(t, r.InvolvesFieldAccess)
}

func TestFindArgumentConstants_NoMatchReturnsEmpty(t *testing.T) {
	g, _ := buildCallerGraph(t)

	results, err := FindArgumentConstants(context.Background(), g, DefaultConfig(), graph.MethodPattern{Name: "nonexistent"}, []int{0})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindFieldsOfType_PrefixAndComplianceCheck(t *testing.T) {
	b := graph.NewBuilder()
	f := descriptor.FieldDescriptor{
		DeclaringClass: descriptor.NewType("com.acme.Order"),
		Name:           "total",
		Type:           descriptor.NewType("com.acme.money.Amount"),
	}
	b.AddNode(&graph.Node{ID: 0, Kind: graph.KindField, Field: f})
	g, err := b.Build()
	require.NoError(t, err)

	results, err := FindFieldsOfType(context.Background(), g, []string{"com.acme.money.*"}, func(fd descriptor.FieldDescriptor) bool {
		return fd.Name == "total"
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsCompliant)

	noMatch, err := FindFieldsOfType(context.Background(), g, []string{"com.acme.other.*"}, nil)
	require.NoError(t, err)
	assert.Empty(t, noMatch)
}

func TestFindActualReturnTypes_ObjectReturnRecursesIntoCallee(t *testing.T) {
	outer := descriptor.MethodDescriptor{
		DeclaringClass: descriptor.NewType("com.acme.Factory"),
		Name:           "create",
		ReturnType:     descriptor.NewType("java.lang.Object"),
	}
	inner := descriptor.MethodDescriptor{
		DeclaringClass: descriptor.NewType("com.acme.Factory"),
		Name:           "build",
		ReturnType:     descriptor.NewType("com.acme.Widget"),
	}

	b := graph.NewBuilder()
	b.AddMethod(outer)
	b.AddNode(&graph.Node{ID: 0, Kind: graph.KindCallSite, CallingMethod: outer, Callee: inner, SourceLine: 5})
	b.AddNode(&graph.Node{ID: 1, Kind: graph.KindReturn, OwningMethod: outer})
	b.AddNode(&graph.Node{ID: 2, Kind: graph.KindReturn, OwningMethod: inner})
	b.AddEdge(&graph.Edge{From: 0, To: 1, Variant: graph.VariantDataFlow, FlowKind: graph.ReturnValue})
	b.AddEdge(&graph.Edge{From: 0, To: 2, Variant: graph.VariantDataFlow, FlowKind: graph.ReturnValue})

	g, err := b.Build()
	require.NoError(t, err)

	results, err := FindActualReturnTypes(context.Background(), g, DefaultConfig(), graph.MethodPattern{DeclaringClass: "com.acme.Factory", Name: "create"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].HasGenericReturn)
	assert.Contains(t, results[0].ActualTypes, "com.acme.Widget")
	assert.True(t, results[0].TypesMismatch)
}
