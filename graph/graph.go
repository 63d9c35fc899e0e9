package graph

import (
	"regexp"
	"strings"

	"github.com/viant/javalineage/descriptor"
)

// Graph is the immutable, indexed program graph produced by Builder.Build.
// All read operations are safe for concurrent use without locking.
type Graph struct {
	nodes    map[descriptor.NodeID]*Node
	edgeList []*Edge
	outgoing map[descriptor.NodeID][]*Edge
	incoming map[descriptor.NodeID][]*Edge

	methodIndex       map[string]descriptor.MethodDescriptor
	methodAnnotations map[string][]string

	supertypes map[string]map[string]HierarchyRelation
	subtypes   map[string]map[string]HierarchyRelation

	enumTable map[EnumKey][]descriptor.NodeID

	endpoints []EndpointInfo

	branchScopes map[descriptor.NodeID]*BranchScope

	fieldHints    map[string]SerializationHint
	accessorHints map[string]SerializationHint
}

// Node returns the node with the given id, or nil if absent.
func (g *Graph) Node(id descriptor.NodeID) *Node { return g.nodes[id] }

// Nodes returns every node for which match returns true, in unspecified
// (map iteration) order — callers that need a deterministic order must sort
// by a documented key.
func (g *Graph) Nodes(match func(*Node) bool) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if match == nil || match(n) {
			out = append(out, n)
		}
	}
	return out
}

// NodesOfKind returns every node of the given kind.
func (g *Graph) NodesOfKind(kind NodeKind) []*Node {
	return g.Nodes(func(n *Node) bool { return n.Kind == kind })
}

// Outgoing returns every edge leaving id, of any variant; OutgoingOfVariant
// filters by variant.
func (g *Graph) Outgoing(id descriptor.NodeID) []*Edge { return g.outgoing[id] }

// Incoming returns edges entering id.
func (g *Graph) Incoming(id descriptor.NodeID) []*Edge { return g.incoming[id] }

// OutgoingOfVariant filters Outgoing by edge variant.
func (g *Graph) OutgoingOfVariant(id descriptor.NodeID, v EdgeVariant) []*Edge {
	var out []*Edge
	for _, e := range g.outgoing[id] {
		if e.Variant == v {
			out = append(out, e)
		}
	}
	return out
}

// IncomingOfVariant filters Incoming by edge variant.
func (g *Graph) IncomingOfVariant(id descriptor.NodeID, v EdgeVariant) []*Edge {
	var out []*Edge
	for _, e := range g.incoming[id] {
		if e.Variant == v {
			out = append(out, e)
		}
	}
	return out
}

// Methods returns every method in the index matching pattern.
func (g *Graph) Methods(pattern MethodPattern) []descriptor.MethodDescriptor {
	var out []descriptor.MethodDescriptor
	for _, m := range g.methodIndex {
		if pattern.Matches(m) && g.matchesAnnotations(m.Signature(), pattern) {
			out = append(out, m)
		}
	}
	return out
}

// MethodAnnotations returns the recorded annotation type names of the method
// with the given signature, or nil if none were recorded.
func (g *Graph) MethodAnnotations(sig string) []string {
	return g.methodAnnotations[sig]
}

// matchesAnnotations requires every pattern annotation to be present on the
// method, matched against the annotation's qualified name by the usual field
// rule, or its simple name exactly.
func (g *Graph) matchesAnnotations(sig string, pattern MethodPattern) bool {
	if len(pattern.Annotations) == 0 {
		return true
	}
	present := g.methodAnnotations[sig]
	for _, want := range pattern.Annotations {
		found := false
		for _, have := range present {
			if matchField(want, have, pattern.UseRegex) || want == simpleNameOf(have) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func simpleNameOf(qualified string) string {
	if idx := strings.LastIndex(qualified, "."); idx >= 0 {
		return qualified[idx+1:]
	}
	return qualified
}

// MethodBySignature looks up a method descriptor by its canonical signature.
func (g *Graph) MethodBySignature(sig string) (descriptor.MethodDescriptor, bool) {
	m, ok := g.methodIndex[sig]
	return m, ok
}

// AllMethodSignatures returns every signature in the method index.
func (g *Graph) AllMethodSignatures() []string {
	out := make([]string, 0, len(g.methodIndex))
	for sig := range g.methodIndex {
		out = append(out, sig)
	}
	return out
}

// CallSites scans CallSiteNodes, filtering by a MethodPattern applied to the
// callee descriptor.
func (g *Graph) CallSites(pattern MethodPattern) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.Kind != KindCallSite {
			continue
		}
		if pattern.Matches(n.Callee) && g.matchesAnnotations(n.Callee.Signature(), pattern) {
			out = append(out, n)
		}
	}
	return out
}

// Supertypes returns the direct supertypes/interfaces of a class.
func (g *Graph) Supertypes(className string) map[string]HierarchyRelation {
	return g.supertypes[className]
}

// Subtypes returns the direct subtypes/implementors of a class.
func (g *Graph) Subtypes(className string) map[string]HierarchyRelation {
	return g.subtypes[className]
}

// AllSupertypes returns the transitive closure of supertypes of className,
// cycle-safe.
func (g *Graph) AllSupertypes(className string) map[string]HierarchyRelation {
	out := map[string]HierarchyRelation{}
	visited := map[string]bool{className: true}
	queue := []string{className}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for super, rel := range g.supertypes[cur] {
			if visited[super] {
				continue
			}
			visited[super] = true
			out[super] = rel
			queue = append(queue, super)
		}
	}
	return out
}

// EnumValues returns the ordered constructor-argument node ids for
// (enumClass, constantName), or nil if unknown.
func (g *Graph) EnumValues(enumClass, constantName string) []descriptor.NodeID {
	return g.enumTable[EnumKey{EnumClass: enumClass, ConstantName: constantName}]
}

// HasEnumValue reports whether the enum table has an entry for the key.
func (g *Graph) HasEnumValue(enumClass, constantName string) bool {
	_, ok := g.enumTable[EnumKey{EnumClass: enumClass, ConstantName: constantName}]
	return ok
}

// Endpoints returns every endpoint whose path matches pathPattern (may be
// empty for "match all") and whose HTTP method matches httpMethod exactly
// (an empty filter matches every stored method; a stored ANY matches every
// filter).
func (g *Graph) Endpoints(pathPattern string, httpMethod HTTPMethod) []EndpointInfo {
	var out []EndpointInfo
	for _, e := range g.endpoints {
		if httpMethod != "" && httpMethod != e.HTTPMethod && e.HTTPMethod != ANY {
			continue
		}
		if pathPattern != "" && !MatchEndpointPath(pathPattern, e.Path) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// BranchScopes returns every recorded branch scope.
func (g *Graph) BranchScopes() []*BranchScope {
	out := make([]*BranchScope, 0, len(g.branchScopes))
	for _, b := range g.branchScopes {
		out = append(out, b)
	}
	return out
}

// BranchScopesFor returns the branch scope guarded by conditionID, if any.
func (g *Graph) BranchScopesFor(conditionID descriptor.NodeID) *BranchScope {
	return g.branchScopes[conditionID]
}

// JacksonFieldInfo returns the serialization hint for a declared field.
func (g *Graph) JacksonFieldInfo(class, field string) (SerializationHint, bool) {
	h, ok := g.fieldHints[class+"#"+field]
	return h, ok
}

// JacksonGetterInfo returns the serialization hint for an accessor method.
func (g *Graph) JacksonGetterInfo(class, method string) (SerializationHint, bool) {
	h, ok := g.accessorHints[class+"#"+method]
	return h, ok
}

// MatchEndpointPath matches an endpoint path pattern against a stored path:
// '*' matches a single segment, '**' matches any suffix of segments, and any
// "{...}" path-variable segment in the stored path is treated as a wildcard
// at match time.
func MatchEndpointPath(pattern, actual string) bool {
	pSegs := splitPath(pattern)
	aSegs := splitPath(actual)
	return matchSegments(pSegs, aSegs)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, actual []string) bool {
	if len(pattern) == 0 {
		return len(actual) == 0
	}
	head := pattern[0]
	if head == "**" {
		if len(pattern) == 1 {
			return true
		}
		for i := 0; i <= len(actual); i++ {
			if matchSegments(pattern[1:], actual[i:]) {
				return true
			}
		}
		return false
	}
	if len(actual) == 0 {
		return false
	}
	if head == "*" || (strings.HasPrefix(actual[0], "{") && strings.HasSuffix(actual[0], "}")) || head == actual[0] {
		return matchSegments(pattern[1:], actual[1:])
	}
	return false
}

// MethodPattern filters methods/call sites by declaring class, name,
// parameter types, return type and/or annotations. When UseRegex is set,
// each non-empty field is a regex anchored on both ends; otherwise equality
// is exact, except a trailing '*' means prefix match. Annotations are
// matched against the method's recorded annotation types (qualified name or
// simple name), so they are only effective through Graph.Methods /
// Graph.CallSites, which hold the annotation table.
type MethodPattern struct {
	DeclaringClass string
	Name           string
	ParameterTypes []string
	ReturnType     string
	Annotations    []string
	UseRegex       bool
}

// Matches reports whether m satisfies the pattern.
func (p MethodPattern) Matches(m descriptor.MethodDescriptor) bool {
	if p.DeclaringClass != "" && !matchField(p.DeclaringClass, m.DeclaringClass.ClassName, p.UseRegex) {
		return false
	}
	if p.Name != "" && !matchField(p.Name, m.Name, p.UseRegex) {
		return false
	}
	if p.ReturnType != "" && !matchField(p.ReturnType, m.ReturnType.ClassName, p.UseRegex) {
		return false
	}
	if len(p.ParameterTypes) > 0 {
		if len(p.ParameterTypes) != len(m.ParameterTypes) {
			return false
		}
		for i, pt := range p.ParameterTypes {
			if !matchField(pt, m.ParameterTypes[i].ClassName, p.UseRegex) {
				return false
			}
		}
	}
	return true
}

func matchField(pattern, value string, useRegex bool) bool {
	if useRegex {
		anchored := "^" + pattern + "$"
		re, err := regexp.Compile(anchored)
		if err != nil {
			return false
		}
		return re.MatchString(value)
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(value, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == value
}
