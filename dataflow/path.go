package dataflow

import (
	"fmt"

	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
)

// StepNodeType classifies one node along a PropagationPath.
type StepNodeType uint8

const (
	OTHER StepNodeType = iota
	CONSTANT
	LOCAL_VARIABLE
	PARAMETER
	FIELD
	CALL_SITE
	RETURN_VALUE
	ENUM_CONSTANT
)

// SourceType classifies what kind of origin a recorded SourceInfo is.
type SourceType uint8

const (
	SourceConstant SourceType = iota
	SourceParameter
	SourceField
	SourceEnumConstant
	SourceReturnValue
)

// PropagationStep is one hop recorded while walking from a slice's start node
// to a discovered source (backwardSlice) or sink (forwardSlice).
type PropagationStep struct {
	NodeID           descriptor.NodeID
	NodeType         StepNodeType
	HumanDescription string
	Location         string // method Signature(), plus ":line" for call sites
	IncomingEdgeKind *graph.DataFlowEdgeKind
	Depth            int
}

// PropagationPath is the ordered step sequence from the slice's start node to
// a recorded source/sink, closest-to-start first.
type PropagationPath struct {
	Steps []PropagationStep
}

// Depth is the step count minus one (the number of edges traversed).
func (p PropagationPath) Depth() int {
	if len(p.Steps) == 0 {
		return 0
	}
	return len(p.Steps) - 1
}

// SourceInfo is one terminal node discovered by a slice, classified by kind,
// together with the path that reached it.
type SourceInfo struct {
	NodeID     descriptor.NodeID
	SourceType SourceType
	Node       *graph.Node
	Path       PropagationPath

	// EnumConstant synthesis, populated only when SourceType == SourceEnumConstant.
	EnumClass    string
	EnumConstant string
	EnumArgs     []descriptor.NodeID
}

func nodeStepType(n *graph.Node) StepNodeType {
	switch n.Kind {
	case graph.KindConstant:
		return CONSTANT
	case graph.KindLocalVariable:
		return LOCAL_VARIABLE
	case graph.KindParameter:
		return PARAMETER
	case graph.KindField:
		return FIELD
	case graph.KindCallSite:
		return CALL_SITE
	case graph.KindReturn:
		return RETURN_VALUE
	}
	return OTHER
}

func describeNode(n *graph.Node) string {
	switch n.Kind {
	case graph.KindConstant:
		return fmt.Sprintf("constant(%s)", n.ConstKind)
	case graph.KindLocalVariable:
		return "local " + n.Name
	case graph.KindParameter:
		return fmt.Sprintf("parameter %d of %s", n.ParamIndex, n.OwningMethod.Signature())
	case graph.KindField:
		return "field " + n.Field.Key()
	case graph.KindCallSite:
		return "call to " + n.Callee.Signature()
	case graph.KindReturn:
		return "return of " + n.OwningMethod.Signature()
	}
	return "node"
}

func nodeLocation(n *graph.Node) string {
	switch n.Kind {
	case graph.KindCallSite:
		return fmt.Sprintf("%s:%d", n.CallingMethod.Signature(), n.SourceLine)
	case graph.KindLocalVariable, graph.KindParameter, graph.KindReturn, graph.KindConstant:
		return n.OwningMethod.Signature()
	}
	return ""
}
