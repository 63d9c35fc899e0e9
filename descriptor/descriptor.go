// Package descriptor provides the value types used to name classes, fields
// and methods across the rest of the engine: TypeDescriptor, FieldDescriptor
// and MethodDescriptor. Equality is always structural.
package descriptor

import "strings"

// TypeDescriptor names a (possibly generic) JVM type.
type TypeDescriptor struct {
	ClassName     string
	TypeArguments []TypeDescriptor
}

// NewType builds a TypeDescriptor with no type arguments.
func NewType(className string) TypeDescriptor {
	return TypeDescriptor{ClassName: className}
}

// SimpleName is the last '.'-segment of ClassName.
func (t TypeDescriptor) SimpleName() string {
	if idx := strings.LastIndex(t.ClassName, "."); idx >= 0 {
		return t.ClassName[idx+1:]
	}
	return t.ClassName
}

// Equal reports structural equality between two type descriptors.
func (t TypeDescriptor) Equal(o TypeDescriptor) bool {
	if t.ClassName != o.ClassName || len(t.TypeArguments) != len(o.TypeArguments) {
		return false
	}
	for i := range t.TypeArguments {
		if !t.TypeArguments[i].Equal(o.TypeArguments[i]) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the descriptor names no type at all.
func (t TypeDescriptor) IsEmpty() bool { return t.ClassName == "" }

// FormattedName renders the class name with any bound type arguments, e.g.
// "java.util.List<com.acme.User>".
func (t TypeDescriptor) FormattedName() string {
	if len(t.TypeArguments) == 0 {
		return t.ClassName
	}
	parts := make([]string, len(t.TypeArguments))
	for i, a := range t.TypeArguments {
		parts[i] = a.FormattedName()
	}
	return t.ClassName + "<" + strings.Join(parts, ", ") + ">"
}

// FieldDescriptor names a field declared by a class.
type FieldDescriptor struct {
	DeclaringClass TypeDescriptor
	Name           string
	Type           TypeDescriptor
}

// Equal reports structural equality.
func (f FieldDescriptor) Equal(o FieldDescriptor) bool {
	return f.DeclaringClass.Equal(o.DeclaringClass) && f.Name == o.Name && f.Type.Equal(o.Type)
}

// Key is a compact, order-stable identity for use as a map key.
func (f FieldDescriptor) Key() string {
	return f.DeclaringClass.ClassName + "#" + f.Name
}

// MethodDescriptor names a method declared by a class.
type MethodDescriptor struct {
	DeclaringClass TypeDescriptor
	Name           string
	ParameterTypes []TypeDescriptor
	ReturnType     TypeDescriptor
}

// Signature is the canonical key used to index methods:
// "declaringClass#name(params):return".
func (m MethodDescriptor) Signature() string {
	var b strings.Builder
	b.WriteString(m.DeclaringClass.ClassName)
	b.WriteByte('#')
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, p := range m.ParameterTypes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.ClassName)
	}
	b.WriteString("):")
	b.WriteString(m.ReturnType.ClassName)
	return b.String()
}

// Equal reports structural equality.
func (m MethodDescriptor) Equal(o MethodDescriptor) bool {
	return m.Signature() == o.Signature()
}

// Arity returns the number of formal parameters.
func (m MethodDescriptor) Arity() int { return len(m.ParameterTypes) }

// IsConstructor reports whether this descriptor names a JVM constructor.
func (m MethodDescriptor) IsConstructor() bool { return m.Name == "<init>" }

// IsStaticInit reports whether this descriptor names a JVM static initializer.
func (m MethodDescriptor) IsStaticInit() bool { return m.Name == "<clinit>" }
