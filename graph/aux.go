package graph

import (
	"sync"

	"github.com/viant/javalineage/descriptor"
)

// HTTPMethod enumerates the HTTP verbs an endpoint may declare.
type HTTPMethod string

const (
	GET    HTTPMethod = "GET"
	POST   HTTPMethod = "POST"
	PUT    HTTPMethod = "PUT"
	DELETE HTTPMethod = "DELETE"
	PATCH  HTTPMethod = "PATCH"
	ANY    HTTPMethod = "ANY"
)

// EndpointInfo is one discovered HTTP route declaration.
type EndpointInfo struct {
	Method     descriptor.MethodDescriptor
	HTTPMethod HTTPMethod
	Path       string
	Produces   []string
	Consumes   []string
}

// ComparisonOperator tags the closed sum of branch-condition comparators.
type ComparisonOperator uint8

const (
	EQ ComparisonOperator = iota
	NE
	LT
	GE
	GT
	LE
)

// Comparison is the (operator, comparand) pair guarding a branch condition.
type Comparison struct {
	Operator  ComparisonOperator
	Comparand descriptor.NodeID
}

// BranchScope records the two node sets reachable under the true/false
// outcome of a single conditional, plus the comparison that selects between
// them. Node-id sets are stored as raw arrays and only materialised into set
// form (via TrueSet/FalseSet) on first access.
type BranchScope struct {
	ConditionID    descriptor.NodeID
	Method         descriptor.MethodDescriptor
	Comparison     Comparison
	trueBranchIDs  []descriptor.NodeID
	falseBranchIDs []descriptor.NodeID
	trueSet        map[descriptor.NodeID]struct{}
	falseSet       map[descriptor.NodeID]struct{}
	trueOnce       sync.Once
	falseOnce      sync.Once
}

// NewBranchScope builds a BranchScope from raw node-id slices.
func NewBranchScope(cond descriptor.NodeID, m descriptor.MethodDescriptor, cmp Comparison, trueIDs, falseIDs []descriptor.NodeID) *BranchScope {
	return &BranchScope{ConditionID: cond, Method: m, Comparison: cmp, trueBranchIDs: trueIDs, falseBranchIDs: falseIDs}
}

// TrueSet lazily materialises the true-branch node-id set.
func (b *BranchScope) TrueSet() map[descriptor.NodeID]struct{} {
	b.trueOnce.Do(func() { b.trueSet = toSet(b.trueBranchIDs) })
	return b.trueSet
}

// FalseSet lazily materialises the false-branch node-id set.
func (b *BranchScope) FalseSet() map[descriptor.NodeID]struct{} {
	b.falseOnce.Do(func() { b.falseSet = toSet(b.falseBranchIDs) })
	return b.falseSet
}

func toSet(ids []descriptor.NodeID) map[descriptor.NodeID]struct{} {
	s := make(map[descriptor.NodeID]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// SerializationHint records the Jackson-style json name / ignore flag for a
// field or accessor method.
type SerializationHint struct {
	JSONName  string
	IsIgnored bool
}

// EnumKey identifies one enum constant within the enum table.
type EnumKey struct {
	EnumClass    string
	ConstantName string
}
