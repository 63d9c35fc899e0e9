package typehierarchy

import "github.com/viant/javalineage/descriptor"

// TypeStructure is a type's reconstructed structural shape: its declared
// class, bound generic-parameter types, and field map, as actually observed
// flowing through the program rather than trusted from the erased
// declaration.
type TypeStructure struct {
	Type          descriptor.TypeDescriptor
	TypeArguments map[string]*TypeStructure
	Fields        map[string]*FieldStructure
	ClassName     string
	SimpleName    string
	FormattedName string
}

// newTypeStructure seeds an empty TypeStructure for t.
func newTypeStructure(t descriptor.TypeDescriptor) *TypeStructure {
	return &TypeStructure{
		Type:          t,
		TypeArguments: map[string]*TypeStructure{},
		Fields:        map[string]*FieldStructure{},
		ClassName:     t.ClassName,
		SimpleName:    t.SimpleName(),
		FormattedName: t.FormattedName(),
	}
}

// NewBareTypeStructure builds a field-less TypeStructure directly from a
// declared type, for callers (e.g. endpoint schema synthesis) that need to
// render a field's static declared type without a graph to analyze it
// against.
func NewBareTypeStructure(t descriptor.TypeDescriptor) *TypeStructure {
	return newTypeStructure(t)
}

// FieldStructure is one field's declared type plus the set of actual
// concrete types observed assigned to it, plus serialization hints.
type FieldStructure struct {
	Name               string
	DeclaredType       descriptor.TypeDescriptor
	ActualTypes        []*TypeStructure
	IsGenericParameter bool
	JSONName           string
	IsJSONIgnored      bool
}

// TypeHierarchyResult is the result of analyzing one target method: the
// structural return types observed, one per distinct (class name, context
// method) pair.
type TypeHierarchyResult struct {
	Method           descriptor.MethodDescriptor
	ReturnStructures []*TypeStructure
}
