package graph

import "github.com/viant/javalineage/descriptor"

// DataFlowEdgeKind tags the closed sum of data-flow edge variants.
type DataFlowEdgeKind uint8

const (
	Assign DataFlowEdgeKind = iota
	FieldLoad
	FieldStore
	ReturnValue
	ArgumentPass
)

// EdgeVariant tags the closed sum of edge kinds at the graph level.
type EdgeVariant uint8

const (
	VariantDataFlow EdgeVariant = iota
	VariantCall
	VariantType
)

// HierarchyRelation tags how two classes relate in the type hierarchy.
type HierarchyRelation uint8

const (
	Extends HierarchyRelation = iota
	Implements
)

// Edge is the tagged-union edge type. From/To are always node ids; other
// fields are variant-specific.
type Edge struct {
	From, To descriptor.NodeID
	Variant  EdgeVariant

	// DataFlowEdge
	FlowKind DataFlowEdgeKind

	// CallEdge
	IsVirtual bool

	// TypeEdge (consumed into TypeHierarchy during build, not retained)
	Relation HierarchyRelation
}
