package branch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/javalineage/dataflow"
	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
)

func method(class, name, ret string, params ...string) descriptor.MethodDescriptor {
	m := descriptor.MethodDescriptor{
		DeclaringClass: descriptor.NewType(class),
		Name:           name,
		ReturnType:     descriptor.NewType(ret),
	}
	for _, p := range params {
		m.ParameterTypes = append(m.ParameterTypes, descriptor.NewType(p))
	}
	return m
}

// assumptionGraph models caller() invoking Client.getOption(1001) whose
// boolean result feeds "if (result == 0)"; the
// JVM true branch holds the only call to Logger.log, the false branch the
// only call to Audit.record.
func assumptionGraph(t *testing.T) (*graph.Graph, descriptor.MethodDescriptor) {
	t.Helper()
	caller := method("com.acme.Caller", "run", "void")
	getOption := method("com.acme.Client", "getOption", "boolean", "int")
	logM := method("com.acme.Logger", "log", "void")
	record := method("com.acme.Audit", "record", "void")

	b := graph.NewBuilder()
	b.AddMethod(caller)
	b.AddMethod(getOption)
	b.AddMethod(logM)
	b.AddMethod(record)

	b.AddNode(&graph.Node{ID: 0, Kind: graph.KindConstant, ConstKind: graph.ConstInt, IntValue: 1001, OwningMethod: caller})
	b.AddNode(&graph.Node{ID: 1, Kind: graph.KindCallSite, CallingMethod: caller, Callee: getOption, SourceLine: 5, Arguments: []descriptor.NodeID{0}})
	b.AddNode(&graph.Node{ID: 2, Kind: graph.KindLocalVariable, Name: "result", DeclaredType: descriptor.NewType("boolean"), OwningMethod: caller})
	b.AddNode(&graph.Node{ID: 3, Kind: graph.KindConstant, ConstKind: graph.ConstInt, IntValue: 0, OwningMethod: caller})
	b.AddNode(&graph.Node{ID: 4, Kind: graph.KindCallSite, CallingMethod: caller, Callee: logM, SourceLine: 7})
	b.AddNode(&graph.Node{ID: 5, Kind: graph.KindCallSite, CallingMethod: caller, Callee: record, SourceLine: 9})

	b.AddEdge(&graph.Edge{From: 0, To: 1, Variant: graph.VariantDataFlow, FlowKind: graph.ArgumentPass})
	b.AddEdge(&graph.Edge{From: 1, To: 2, Variant: graph.VariantDataFlow, FlowKind: graph.Assign})

	b.AddBranchScope(graph.NewBranchScope(2, caller,
		graph.Comparison{Operator: graph.EQ, Comparand: 3},
		[]descriptor.NodeID{4}, []descriptor.NodeID{5}))

	g, err := b.Build()
	require.NoError(t, err)
	return g, getOption
}

func TestAnalyze_TrueBranchDeadUnderAssumption(t *testing.T) {
	g, getOption := assumptionGraph(t)

	assumption := Assumption{
		Pattern:      graph.MethodPattern{DeclaringClass: getOption.DeclaringClass.ClassName, Name: getOption.Name},
		AssumedValue: true,
	}.WithArgument(0, 1001)

	result, err := Analyze(context.Background(), g, DefaultConfig(), []Assumption{assumption})
	require.NoError(t, err)
	require.Len(t, result.DeadBranches, 1)
	db := result.DeadBranches[0]
	assert.Equal(t, BranchTrue, db.Kind, "assumed true makes 1 == 0 false, so the JVM true branch dies")
	assert.Equal(t, []descriptor.NodeID{4}, db.DeadCallSites)
	assert.True(t, result.DeadCallSites[4])
	assert.False(t, result.DeadCallSites[5])
}

func TestAnalyze_TransitiveDeadMethodClosure(t *testing.T) {
	g, getOption := assumptionGraph(t)

	assumption := Assumption{
		Pattern:      graph.MethodPattern{DeclaringClass: getOption.DeclaringClass.ClassName, Name: getOption.Name},
		AssumedValue: true,
	}.WithArgument(0, 1001)

	result, err := Analyze(context.Background(), g, DefaultConfig(), []Assumption{assumption})
	require.NoError(t, err)

	var deadSigs []string
	for _, m := range result.DeadMethods {
		deadSigs = append(deadSigs, m.Signature())
	}
	assert.Contains(t, deadSigs, "com.acme.Logger#log():void")
	assert.NotContains(t, deadSigs, "com.acme.Audit#record():void")
}

func TestAnalyze_ArgumentConstraintRejectsMismatch(t *testing.T) {
	g, getOption := assumptionGraph(t)

	assumption := Assumption{
		Pattern:      graph.MethodPattern{DeclaringClass: getOption.DeclaringClass.ClassName, Name: getOption.Name},
		AssumedValue: true,
	}.WithArgument(0, 9999)

	result, err := Analyze(context.Background(), g, DefaultConfig(), []Assumption{assumption})
	require.NoError(t, err)
	assert.Empty(t, result.DeadBranches)
	assert.Empty(t, result.DeadMethods)
}

func TestAnalyze_OrderingOnNonNumericYieldsNoDeadBranch(t *testing.T) {
	caller := method("com.acme.Caller", "run", "void")
	probe := method("com.acme.Client", "probe", "java.lang.String")

	b := graph.NewBuilder()
	b.AddNode(&graph.Node{ID: 0, Kind: graph.KindCallSite, CallingMethod: caller, Callee: probe, SourceLine: 3})
	b.AddNode(&graph.Node{ID: 1, Kind: graph.KindLocalVariable, Name: "s", DeclaredType: descriptor.NewType("java.lang.String"), OwningMethod: caller})
	b.AddNode(&graph.Node{ID: 2, Kind: graph.KindConstant, ConstKind: graph.ConstString, StringValue: "x", OwningMethod: caller})
	b.AddNode(&graph.Node{ID: 3, Kind: graph.KindCallSite, CallingMethod: caller, Callee: method("com.acme.Logger", "log", "void"), SourceLine: 4})
	b.AddEdge(&graph.Edge{From: 0, To: 1, Variant: graph.VariantDataFlow, FlowKind: graph.Assign})
	b.AddBranchScope(graph.NewBranchScope(1, caller,
		graph.Comparison{Operator: graph.LT, Comparand: 2},
		[]descriptor.NodeID{3}, nil))

	g, err := b.Build()
	require.NoError(t, err)

	result, err := Analyze(context.Background(), g, DefaultConfig(), []Assumption{{
		Pattern:      graph.MethodPattern{Name: "probe"},
		AssumedValue: "abc",
	}})
	require.NoError(t, err)
	assert.Empty(t, result.DeadBranches)
}

func TestFindUnreferencedMethods(t *testing.T) {
	g, getOption := assumptionGraph(t)

	unreferenced := FindUnreferencedMethods(g)
	var sigs []string
	for _, m := range unreferenced {
		sigs = append(sigs, m.Signature())
	}
	assert.Contains(t, sigs, "com.acme.Caller#run():void", "nothing calls the entry point")
	assert.NotContains(t, sigs, getOption.Signature())

	referenced := map[string]bool{}
	for _, cs := range g.CallSites(graph.MethodPattern{}) {
		referenced[cs.Callee.Signature()] = true
	}
	for _, m := range unreferenced {
		assert.False(t, referenced[m.Signature()], "unreferenced set must be disjoint from callee signatures")
	}
}

func TestEvaluateComparison(t *testing.T) {
	intConst := func(v int64) *graph.Node {
		return &graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstInt, IntValue: v}
	}
	strConst := func(v string) *graph.Node {
		return &graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstString, StringValue: v}
	}

	assert.Equal(t, "true", evaluateComparison(graph.EQ, int64(5), intConst(5)))
	assert.Equal(t, "false", evaluateComparison(graph.EQ, true, intConst(0)))
	assert.Equal(t, "true", evaluateComparison(graph.GE, int64(3), intConst(3)))
	assert.Equal(t, "true", evaluateComparison(graph.EQ, "a", strConst("a")))
	assert.Equal(t, "false", evaluateComparison(graph.NE, "a", strConst("a")))
	assert.Equal(t, "unknown", evaluateComparison(graph.LT, "a", strConst("b")))
}

func TestAnalyze_CancelledContext(t *testing.T) {
	g, getOption := assumptionGraph(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Analyze(ctx, g, DefaultConfig(), []Assumption{{
		Pattern:      graph.MethodPattern{DeclaringClass: getOption.DeclaringClass.ClassName, Name: getOption.Name},
		AssumedValue: true,
	}})
	assert.ErrorIs(t, err, dataflow.ErrCancelled)
}
