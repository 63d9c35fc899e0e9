package loader

import (
	"strings"

	"github.com/viant/javalineage/descriptor"
)

// parseFieldDescriptor decodes a single JVM field descriptor (JVMS §4.3.2)
// into a TypeDescriptor. Array types are represented by their element type
// with the dimension count folded into the className as a "[]" suffix.
func parseFieldDescriptor(desc string) descriptor.TypeDescriptor {
	t, _ := parseFieldDescriptorAt(desc, 0)
	return t
}

func parseFieldDescriptorAt(desc string, pos int) (descriptor.TypeDescriptor, int) {
	if pos >= len(desc) {
		return descriptor.NewType("unknown"), pos
	}
	switch desc[pos] {
	case 'B':
		return descriptor.NewType("byte"), pos + 1
	case 'C':
		return descriptor.NewType("char"), pos + 1
	case 'D':
		return descriptor.NewType("double"), pos + 1
	case 'F':
		return descriptor.NewType("float"), pos + 1
	case 'I':
		return descriptor.NewType("int"), pos + 1
	case 'J':
		return descriptor.NewType("long"), pos + 1
	case 'S':
		return descriptor.NewType("short"), pos + 1
	case 'Z':
		return descriptor.NewType("boolean"), pos + 1
	case 'V':
		return descriptor.NewType("void"), pos + 1
	case 'L':
		end := strings.IndexByte(desc[pos:], ';')
		if end < 0 {
			return descriptor.NewType("unknown"), len(desc)
		}
		internal := desc[pos+1 : pos+end]
		return descriptor.NewType(strings.ReplaceAll(internal, "/", ".")), pos + end + 1
	case '[':
		elem, next := parseFieldDescriptorAt(desc, pos+1)
		return descriptor.NewType(elem.ClassName + "[]"), next
	default:
		return descriptor.NewType("unknown"), pos + 1
	}
}

// parseMethodDescriptor decodes a JVM method descriptor, e.g.
// "(ILjava/lang/String;)Z", into ordered parameter types plus a return type.
func parseMethodDescriptor(desc string) ([]descriptor.TypeDescriptor, descriptor.TypeDescriptor) {
	if !strings.HasPrefix(desc, "(") {
		return nil, descriptor.NewType("unknown")
	}
	close := strings.IndexByte(desc, ')')
	if close < 0 {
		return nil, descriptor.NewType("unknown")
	}
	paramsDesc := desc[1:close]
	retDesc := desc[close+1:]

	var params []descriptor.TypeDescriptor
	pos := 0
	for pos < len(paramsDesc) {
		t, next := parseFieldDescriptorAt(paramsDesc, pos)
		params = append(params, t)
		pos = next
	}
	ret, _ := parseFieldDescriptorAt(retDesc, 0)
	return params, ret
}

// slotWidth reports how many local-variable / stack slots a type occupies:
// 2 for long/double (category 2), 1 for everything else.
func slotWidth(t descriptor.TypeDescriptor) int {
	switch t.ClassName {
	case "long", "double":
		return 2
	}
	return 1
}

// isCategory2Descriptor reports whether a primitive type name (long or
// double) occupies two stack slots.
func isCategory2Descriptor(className string) bool {
	return className == "long" || className == "double"
}
