package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
	"github.com/viant/javalineage/query"
	"github.com/viant/javalineage/typehierarchy"
)

func handlerMethod(class, name, ret string) descriptor.MethodDescriptor {
	return descriptor.MethodDescriptor{
		DeclaringClass: descriptor.NewType(class),
		Name:           name,
		ReturnType:     descriptor.NewType(ret),
	}
}

func TestWriteEndpointsText_Tokens(t *testing.T) {
	b := graph.NewBuilder()
	users := handlerMethod("com.acme.UserController", "listUsers", "java.util.List")
	orders := handlerMethod("com.acme.OrderController", "createOrder", "com.acme.OrderDto")
	b.AddMethod(users)
	b.AddMethod(orders)
	b.AddEndpoint(graph.EndpointInfo{Method: users, HTTPMethod: graph.GET, Path: "/api/users"})
	b.AddEndpoint(graph.EndpointInfo{Method: orders, HTTPMethod: graph.POST, Path: "/api/orders"})
	g, err := b.Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	analyzer := typehierarchy.NewAnalyzer(g, typehierarchy.DefaultConfig())
	require.NoError(t, writeEndpointsText(context.Background(), &buf, g.Endpoints("", ""), analyzer))
	out := buf.String()

	assert.Contains(t, out, "Found 2 endpoint(s):")
	assert.Contains(t, out, "GET    /api/users")
	assert.Contains(t, out, "-> UserController.listUsers()")
	assert.Contains(t, out, "Declared: List")
	assert.Contains(t, out, "-> OrderController.createOrder()")
	assert.Contains(t, out, "Summary: 2 endpoint(s)")
}

func TestWriteEndpointsText_EmptyPrintsNothing(t *testing.T) {
	b := graph.NewBuilder()
	g, err := b.Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeEndpointsText(context.Background(), &buf, nil, typehierarchy.NewAnalyzer(g, typehierarchy.DefaultConfig())))
	assert.Empty(t, buf.String())
}

func TestGroupKey(t *testing.T) {
	assert.Equal(t, "/api/users/1", groupKey("/api/users/1/orders"))
	assert.Equal(t, "/api/users", groupKey("/api/users"))
	assert.Equal(t, "/", groupKey("/"))
}

func TestWriteArgumentConstantsText(t *testing.T) {
	caller := handlerMethod("com.acme.Caller", "caller", "void")
	callee := descriptor.MethodDescriptor{
		DeclaringClass: descriptor.NewType("com.acme.Client"),
		Name:           "getOption",
		ParameterTypes: []descriptor.TypeDescriptor{descriptor.NewType("int")},
		ReturnType:     descriptor.NewType("boolean"),
	}

	b := graph.NewBuilder()
	b.AddNode(&graph.Node{ID: 0, Kind: graph.KindConstant, ConstKind: graph.ConstInt, IntValue: 1001, OwningMethod: caller})
	b.AddNode(&graph.Node{ID: 1, Kind: graph.KindLocalVariable, Name: "optId", DeclaredType: descriptor.NewType("int"), OwningMethod: caller})
	b.AddNode(&graph.Node{ID: 2, Kind: graph.KindCallSite, CallingMethod: caller, Callee: callee, SourceLine: 10, Arguments: []descriptor.NodeID{1}})
	b.AddEdge(&graph.Edge{From: 0, To: 1, Variant: graph.VariantDataFlow, FlowKind: graph.Assign})
	b.AddEdge(&graph.Edge{From: 1, To: 2, Variant: graph.VariantDataFlow, FlowKind: graph.ArgumentPass})
	g, err := b.Build()
	require.NoError(t, err)

	results, err := query.FindArgumentConstants(context.Background(), g, query.DefaultConfig(), graph.MethodPattern{Name: "getOption"}, []int{0})
	require.NoError(t, err)
	require.Len(t, results, 1)

	var buf bytes.Buffer
	writeArgumentConstantsText(&buf, results, true, 0)
	out := buf.String()

	assert.Contains(t, out, "Found 1 result(s):")
	assert.Contains(t, out, "1001 -> arg[0] of com.acme.Client#getOption(int):boolean")
	assert.Contains(t, out, "depth 1")
	assert.Contains(t, out, "Summary: 1 result(s)")
}

func TestConstantLiteral(t *testing.T) {
	assert.Equal(t, "42", constantLiteral(&graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstInt, IntValue: 42}))
	assert.Equal(t, "true", constantLiteral(&graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstBoolean, BoolValue: true}))
	assert.Equal(t, "hello", constantLiteral(&graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstString, StringValue: "hello"}))
	assert.Equal(t, "null", constantLiteral(&graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstNull}))
	assert.Equal(t, "com.acme.Status.ACTIVE", constantLiteral(&graph.Node{
		Kind:          graph.KindConstant,
		ConstKind:     graph.ConstEnum,
		EnumType:      descriptor.NewType("com.acme.Status"),
		EnumConstName: "ACTIVE",
	}))
}

func TestParseIndicesAndCSV(t *testing.T) {
	assert.Equal(t, []int{0}, parseIndices(""))
	assert.Equal(t, []int{0, 2}, parseIndices("0,2"))
	assert.Equal(t, []string{"a", "b"}, splitCSV("a, b,"))
	assert.Nil(t, splitCSV(""))
}
