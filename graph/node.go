// Package graph implements the immutable, indexed program-graph substrate:
// nodes, edges, the type hierarchy, enum table, endpoint list, branch scopes
// and serialization hints, plus a concurrent Builder that freezes into a
// read-only Graph.
package graph

import "github.com/viant/javalineage/descriptor"

// NodeKind tags the closed sum of node variants.
type NodeKind uint8

const (
	KindLocalVariable NodeKind = iota
	KindParameter
	KindField
	KindCallSite
	KindReturn
	KindConstant
)

// ConstantKind tags the closed sum of constant literal variants.
type ConstantKind uint8

const (
	ConstInt ConstantKind = iota
	ConstLong
	ConstFloat
	ConstDouble
	ConstBoolean
	ConstString
	ConstNull
	ConstEnum
)

func (k ConstantKind) String() string {
	switch k {
	case ConstInt:
		return "Int"
	case ConstLong:
		return "Long"
	case ConstFloat:
		return "Float"
	case ConstDouble:
		return "Double"
	case ConstBoolean:
		return "Boolean"
	case ConstString:
		return "String"
	case ConstNull:
		return "Null"
	case ConstEnum:
		return "Enum"
	default:
		return "Unknown"
	}
}

// Node is the tagged-union program-graph node. Every field is
// variant-specific except ID/Kind; fields are zero-valued when the variant
// doesn't use them. Dispatch is always by Kind, never by embedding.
type Node struct {
	ID   descriptor.NodeID
	Kind NodeKind

	// LocalVariable / ParameterNode
	Name         string
	DeclaredType descriptor.TypeDescriptor
	OwningMethod descriptor.MethodDescriptor
	ParamIndex   int // ParameterNode only

	// FieldNode
	Field    descriptor.FieldDescriptor
	IsStatic bool

	// CallSiteNode
	CallingMethod descriptor.MethodDescriptor
	Callee        descriptor.MethodDescriptor
	SourceLine    int
	Receiver      *descriptor.NodeID
	Arguments     []descriptor.NodeID

	// ReturnNode
	RefinedType *descriptor.TypeDescriptor

	// ConstantNode
	ConstKind     ConstantKind
	IntValue      int64
	FloatValue    float64
	BoolValue     bool
	StringValue   string
	EnumType      descriptor.TypeDescriptor
	EnumConstName string
	EnumCtorArgs  []descriptor.NodeID
}

// IsConstant reports whether this node is any ConstantNode variant.
func (n *Node) IsConstant() bool { return n.Kind == KindConstant }
