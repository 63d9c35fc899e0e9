package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/javalineage/graph"
	"github.com/viant/javalineage/loader/classfile"
)

func stringElement(v string) classfile.ElementValue {
	return classfile.ElementValue{Tag: classfile.TagString2, StringValue: v}
}

func arrayElement(values ...classfile.ElementValue) classfile.ElementValue {
	return classfile.ElementValue{Tag: classfile.TagArray2, ArrayValues: values}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		base, rel, want string
	}{
		{"/api", "/users", "/api/users"},
		{"/api/", "/users", "/api/users"},
		{"", "users", "/users"},
		{"/api", "", "/api"},
		{"", "", "/"},
		{"/api//", "//users", "/api/users"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, joinPath(tt.base, tt.rel), "join(%q, %q)", tt.base, tt.rel)
	}
}

func TestIsControllerClass(t *testing.T) {
	assert.True(t, isControllerClass([]classfile.Annotation{{Type: annoRestController}}))
	assert.True(t, isControllerClass([]classfile.Annotation{{Type: annoController}}))
	assert.False(t, isControllerClass([]classfile.Annotation{{Type: "com.acme.Custom"}}))
	assert.False(t, isControllerClass(nil))
}

func TestClassMappingDefaults(t *testing.T) {
	annos := []classfile.Annotation{{
		Type: annoRequestMapping,
		Elements: map[string]classfile.ElementValue{
			"value":    arrayElement(stringElement("/api")),
			"produces": arrayElement(stringElement("application/json")),
		},
	}}
	basePaths, produces, consumes := classMappingDefaults(annos)
	assert.Equal(t, []string{"/api"}, basePaths)
	assert.Equal(t, []string{"application/json"}, produces)
	assert.Empty(t, consumes)

	basePaths, _, _ = classMappingDefaults(nil)
	assert.Equal(t, []string{""}, basePaths, "no mapping still yields one empty base path")
}

func TestMethodEndpoints_SpecificMappings(t *testing.T) {
	annos := []classfile.Annotation{
		{Type: annoGetMapping, Elements: map[string]classfile.ElementValue{"value": stringElement("/users")}},
		{Type: annoPostMapping, Elements: map[string]classfile.ElementValue{"path": stringElement("/users")}},
	}
	eps := methodEndpoints(annos)
	require.Len(t, eps, 2)
	assert.Equal(t, graph.GET, eps[0].Method)
	assert.Equal(t, "/users", eps[0].Path)
	assert.Equal(t, graph.POST, eps[1].Method)
}

func TestMethodEndpoints_RequestMappingWithMethodSet(t *testing.T) {
	annos := []classfile.Annotation{{
		Type: annoRequestMapping,
		Elements: map[string]classfile.ElementValue{
			"value": arrayElement(stringElement("/a"), stringElement("/b")),
			"method": arrayElement(
				classfile.ElementValue{Tag: classfile.TagEnum2, EnumConst: "org.springframework.web.bind.annotation.RequestMethod.PUT"},
			),
		},
	}}
	eps := methodEndpoints(annos)
	require.Len(t, eps, 2, "two paths yield two endpoints")
	assert.Equal(t, graph.PUT, eps[0].Method)
	assert.Equal(t, "/a", eps[0].Path)
	assert.Equal(t, "/b", eps[1].Path)
}

func TestMethodEndpoints_RequestMappingWithoutMethodIsAny(t *testing.T) {
	annos := []classfile.Annotation{{
		Type:     annoRequestMapping,
		Elements: map[string]classfile.ElementValue{"value": stringElement("/any")},
	}}
	eps := methodEndpoints(annos)
	require.Len(t, eps, 1)
	assert.Equal(t, graph.ANY, eps[0].Method)
}

func TestSerializationHint(t *testing.T) {
	hint := serializationHint([]classfile.Annotation{
		{Type: annoJsonProperty, Elements: map[string]classfile.ElementValue{"value": stringElement("order_id")}},
	})
	assert.Equal(t, "order_id", hint.JSONName)
	assert.False(t, hint.IsIgnored)

	hint = serializationHint([]classfile.Annotation{{Type: annoJsonIgnore}})
	assert.True(t, hint.IsIgnored)

	hint = serializationHint(nil)
	assert.Equal(t, graph.SerializationHint{}, hint)
}
