package graph

import (
	"sync"

	"github.com/viant/javalineage/descriptor"
)

// Builder populates a Graph. It may be written to concurrently (the loader
// parses classes in parallel); Build freezes the accumulated state into a
// compact, read-only Graph. A Builder must not be reused after Build.
type Builder struct {
	mu sync.Mutex

	nodes map[descriptor.NodeID]*Node
	edges []*Edge

	methodIndex       map[string]descriptor.MethodDescriptor
	methodAnnotations map[string][]string

	supertypes map[string]map[string]HierarchyRelation
	subtypes   map[string]map[string]HierarchyRelation

	enumTable map[EnumKey][]descriptor.NodeID

	endpoints []EndpointInfo

	branchScopes map[descriptor.NodeID]*BranchScope

	fieldHints    map[string]SerializationHint // key: class#field
	accessorHints map[string]SerializationHint // key: class#methodName
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes:             make(map[descriptor.NodeID]*Node),
		methodIndex:       make(map[string]descriptor.MethodDescriptor),
		methodAnnotations: make(map[string][]string),
		supertypes:        make(map[string]map[string]HierarchyRelation),
		subtypes:          make(map[string]map[string]HierarchyRelation),
		enumTable:         make(map[EnumKey][]descriptor.NodeID),
		branchScopes:      make(map[descriptor.NodeID]*BranchScope),
		fieldHints:        make(map[string]SerializationHint),
		accessorHints:     make(map[string]SerializationHint),
	}
}

// AddNode inserts a node. Panics (programmer error) if the id is already
// present: node ids are unique per graph.
func (b *Builder) AddNode(n *Node) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.nodes[n.ID]; exists {
		panic("graph: duplicate node id inserted")
	}
	b.nodes[n.ID] = n
}

// AddEdge appends an edge. Endpoints are validated at Build time.
func (b *Builder) AddEdge(e *Edge) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.edges = append(b.edges, e)
}

// AddMethod registers a method descriptor in the method index, deduplicated
// by signature.
func (b *Builder) AddMethod(m descriptor.MethodDescriptor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.methodIndex[m.Signature()] = m
}

// AddMethodAnnotations records the annotation type names present on a
// method, keyed by its canonical signature.
func (b *Builder) AddMethodAnnotations(sig string, annotationTypes []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.methodAnnotations[sig] = append([]string(nil), annotationTypes...)
}

// AddTypeEdge records a supertype/subtype relation.
func (b *Builder) AddTypeEdge(class, super string, rel HierarchyRelation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.supertypes[class] == nil {
		b.supertypes[class] = map[string]HierarchyRelation{}
	}
	b.supertypes[class][super] = rel
	if b.subtypes[super] == nil {
		b.subtypes[super] = map[string]HierarchyRelation{}
	}
	b.subtypes[super][class] = rel
}

// AddEnumConstructorArgs records the constructor arguments for one enum
// constant, excluding the implicit synthetic name/ordinal.
func (b *Builder) AddEnumConstructorArgs(enumClass, constantName string, args []descriptor.NodeID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enumTable[EnumKey{EnumClass: enumClass, ConstantName: constantName}] = args
}

// AddEndpoint registers a discovered HTTP route.
func (b *Builder) AddEndpoint(e EndpointInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.endpoints = append(b.endpoints, e)
}

// AddBranchScope registers a branch scope keyed by its condition node.
func (b *Builder) AddBranchScope(scope *BranchScope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.branchScopes[scope.ConditionID] = scope
}

// AddFieldHint records a Jackson-style serialization hint for a field.
func (b *Builder) AddFieldHint(class, field string, hint SerializationHint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fieldHints[class+"#"+field] = hint
}

// AddAccessorHint records a Jackson-style serialization hint for a getter.
func (b *Builder) AddAccessorHint(class, method string, hint SerializationHint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accessorHints[class+"#"+method] = hint
}

// Build freezes the builder into an immutable, indexed Graph. Every edge
// endpoint must resolve to a node in the same graph; a dangling endpoint is
// a programmer/loader error and returns ErrDanglingEdge.
func (b *Builder) Build() (*Graph, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g := &Graph{
		nodes:             make(map[descriptor.NodeID]*Node, len(b.nodes)),
		outgoing:          make(map[descriptor.NodeID][]*Edge),
		incoming:          make(map[descriptor.NodeID][]*Edge),
		methodIndex:       make(map[string]descriptor.MethodDescriptor, len(b.methodIndex)),
		methodAnnotations: make(map[string][]string, len(b.methodAnnotations)),
		supertypes:        make(map[string]map[string]HierarchyRelation, len(b.supertypes)),
		subtypes:          make(map[string]map[string]HierarchyRelation, len(b.subtypes)),
		enumTable:         make(map[EnumKey][]descriptor.NodeID, len(b.enumTable)),
		branchScopes:      make(map[descriptor.NodeID]*BranchScope, len(b.branchScopes)),
		fieldHints:        make(map[string]SerializationHint, len(b.fieldHints)),
		accessorHints:     make(map[string]SerializationHint, len(b.accessorHints)),
	}

	for id, n := range b.nodes {
		g.nodes[id] = n
	}
	for k, v := range b.methodIndex {
		g.methodIndex[k] = v
	}
	for k, v := range b.methodAnnotations {
		g.methodAnnotations[k] = append([]string(nil), v...)
	}
	for k, v := range b.supertypes {
		cp := make(map[string]HierarchyRelation, len(v))
		for k2, v2 := range v {
			cp[k2] = v2
		}
		g.supertypes[k] = cp
	}
	for k, v := range b.subtypes {
		cp := make(map[string]HierarchyRelation, len(v))
		for k2, v2 := range v {
			cp[k2] = v2
		}
		g.subtypes[k] = cp
	}
	for k, v := range b.enumTable {
		g.enumTable[k] = append([]descriptor.NodeID(nil), v...)
	}
	for k, v := range b.branchScopes {
		g.branchScopes[k] = v
	}
	for k, v := range b.fieldHints {
		g.fieldHints[k] = v
	}
	for k, v := range b.accessorHints {
		g.accessorHints[k] = v
	}
	g.endpoints = append(g.endpoints, b.endpoints...)

	for _, e := range b.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return nil, &ErrDanglingEdge{NodeID: e.From}
		}
		if _, ok := g.nodes[e.To]; !ok {
			return nil, &ErrDanglingEdge{NodeID: e.To}
		}
		g.edgeList = append(g.edgeList, e)
		g.outgoing[e.From] = append(g.outgoing[e.From], e)
		g.incoming[e.To] = append(g.incoming[e.To], e)
	}

	return g, nil
}

// ErrDanglingEdge reports an edge whose endpoint resolves to no node.
type ErrDanglingEdge struct {
	NodeID descriptor.NodeID
}

func (e *ErrDanglingEdge) Error() string {
	return "graph: edge references unknown node id"
}
