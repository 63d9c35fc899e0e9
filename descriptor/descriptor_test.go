package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeDescriptor_SimpleNameAndFormatting(t *testing.T) {
	user := NewType("com.acme.User")
	assert.Equal(t, "User", user.SimpleName())
	assert.Equal(t, "com.acme.User", user.FormattedName())

	wrapper := TypeDescriptor{
		ClassName:     "com.acme.Wrapper",
		TypeArguments: []TypeDescriptor{user, NewType("java.lang.String")},
	}
	assert.Equal(t, "com.acme.Wrapper<com.acme.User, java.lang.String>", wrapper.FormattedName())

	unqualified := NewType("Wrapper")
	assert.Equal(t, "Wrapper", unqualified.SimpleName())
}

func TestTypeDescriptor_StructuralEquality(t *testing.T) {
	a := TypeDescriptor{ClassName: "java.util.List", TypeArguments: []TypeDescriptor{NewType("com.acme.User")}}
	b := TypeDescriptor{ClassName: "java.util.List", TypeArguments: []TypeDescriptor{NewType("com.acme.User")}}
	c := TypeDescriptor{ClassName: "java.util.List", TypeArguments: []TypeDescriptor{NewType("com.acme.Order")}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(NewType("java.util.List")))
}

func TestMethodDescriptor_Signature(t *testing.T) {
	m := MethodDescriptor{
		DeclaringClass: NewType("com.acme.Client"),
		Name:           "getOption",
		ParameterTypes: []TypeDescriptor{NewType("int"), NewType("java.lang.String")},
		ReturnType:     NewType("boolean"),
	}
	assert.Equal(t, "com.acme.Client#getOption(int,java.lang.String):boolean", m.Signature())
	assert.Equal(t, 2, m.Arity())
	assert.False(t, m.IsConstructor())

	ctor := MethodDescriptor{DeclaringClass: NewType("com.acme.Client"), Name: "<init>", ReturnType: NewType("void")}
	assert.True(t, ctor.IsConstructor())
}

func TestFieldDescriptor_Key(t *testing.T) {
	f := FieldDescriptor{
		DeclaringClass: NewType("com.acme.Order"),
		Name:           "total",
		Type:           NewType("long"),
	}
	assert.Equal(t, "com.acme.Order#total", f.Key())
}

func TestAllocator_MonotonicAndReset(t *testing.T) {
	var a Allocator
	first := a.Next()
	second := a.Next()
	assert.Equal(t, NodeID(0), first)
	assert.Equal(t, NodeID(1), second)

	a.Reset()
	assert.Equal(t, NodeID(0), a.Next())
}
