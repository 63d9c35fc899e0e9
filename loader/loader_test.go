package loader

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
)

// simpleClassBytes hand-assembles "public class com.acme.Simple" with one
// "static int answer()" method returning the constant 42, giving the loader
// a genuine class file to ingest end to end.
func simpleClassBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := func(v interface{}) {
		require.NoError(t, binary.Write(&buf, binary.BigEndian, v))
	}
	utf8 := func(s string) {
		w(uint8(1)) // CONSTANT_Utf8
		w(uint16(len(s)))
		buf.WriteString(s)
	}
	class := func(nameIdx uint16) {
		w(uint8(7)) // CONSTANT_Class
		w(nameIdx)
	}

	w(uint32(0xCAFEBABE))
	w(uint16(0))
	w(uint16(52))

	w(uint16(8))
	utf8("com/acme/Simple")  // 1
	class(1)                 // 2
	utf8("java/lang/Object") // 3
	class(3)                 // 4
	utf8("answer")           // 5
	utf8("()I")              // 6
	utf8("Code")             // 7

	w(uint16(0x0021))
	w(uint16(2))
	w(uint16(4))
	w(uint16(0))
	w(uint16(0))

	w(uint16(1))
	w(uint16(0x0009))
	w(uint16(5))
	w(uint16(6))
	w(uint16(1))
	w(uint16(7))
	code := []byte{0x10, 0x2a, 0xac} // bipush 42; ireturn
	w(uint32(2 + 2 + 4 + len(code) + 2 + 2))
	w(uint16(1))
	w(uint16(0))
	w(uint32(len(code)))
	buf.Write(code)
	w(uint16(0))
	w(uint16(0))

	w(uint16(0))
	return buf.Bytes()
}

func TestLoad_IngestsRealClassFile(t *testing.T) {
	dir := t.TempDir()
	classPath := filepath.Join(dir, "com", "acme", "Simple.class")
	require.NoError(t, os.MkdirAll(filepath.Dir(classPath), 0o755))
	require.NoError(t, os.WriteFile(classPath, simpleClassBytes(t), 0o644))

	g, summary, err := Load(context.Background(), dir, NewConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ClassesLoaded)
	assert.Equal(t, 1, summary.MethodsLoaded)

	sig := "com.acme.Simple#answer():int"
	m, ok := g.MethodBySignature(sig)
	require.True(t, ok)
	assert.Equal(t, "int", m.ReturnType.ClassName)

	supers := g.Supertypes("com.acme.Simple")
	require.Contains(t, supers, "java.lang.Object")
	assert.Equal(t, graph.Extends, supers["java.lang.Object"])

	var constants, returns []*graph.Node
	for _, n := range g.NodesOfKind(graph.KindConstant) {
		constants = append(constants, n)
	}
	for _, n := range g.NodesOfKind(graph.KindReturn) {
		returns = append(returns, n)
	}
	require.Len(t, constants, 1)
	assert.Equal(t, int64(42), constants[0].IntValue)
	require.Len(t, returns, 1)

	// The return value flows from the pushed constant.
	incoming := g.IncomingOfVariant(returns[0].ID, graph.VariantDataFlow)
	require.Len(t, incoming, 1)
	assert.Equal(t, constants[0].ID, incoming[0].From)
	assert.Equal(t, graph.ReturnValue, incoming[0].FlowKind)
}

func TestLoad_PackageFilterSkipsClass(t *testing.T) {
	dir := t.TempDir()
	classPath := filepath.Join(dir, "com", "acme", "Simple.class")
	require.NoError(t, os.MkdirAll(filepath.Dir(classPath), 0o755))
	require.NoError(t, os.WriteFile(classPath, simpleClassBytes(t), 0o644))

	g, summary, err := Load(context.Background(), dir, NewConfig(WithIncludePackages("org.other")))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ClassesLoaded)
	assert.Empty(t, g.AllMethodSignatures())
}

func TestLoadOne_WarnsOnGarbage(t *testing.T) {
	var warnings bytes.Buffer
	b := graph.NewBuilder()
	fields := newFieldRegistry()
	cfg := NewConfig(WithVerboseSink(&warnings))

	res := loadOne(b, &descriptor.Allocator{}, fields, classEntry{fqn: "com.acme.Bad", data: []byte("junk")}, cfg)
	assert.True(t, res.skipped)
	assert.Contains(t, warnings.String(), "com.acme.Bad")
}
