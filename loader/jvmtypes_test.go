package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldDescriptor(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"I", "int"},
		{"J", "long"},
		{"Z", "boolean"},
		{"Ljava/lang/String;", "java.lang.String"},
		{"Lcom/acme/User;", "com.acme.User"},
		{"[I", "int[]"},
		{"[[Ljava/lang/String;", "java.lang.String[][]"},
		{"X", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseFieldDescriptor(tt.desc).ClassName, "descriptor %q", tt.desc)
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	params, ret := parseMethodDescriptor("(IJLjava/lang/String;)Z")
	require.Len(t, params, 3)
	assert.Equal(t, "int", params[0].ClassName)
	assert.Equal(t, "long", params[1].ClassName)
	assert.Equal(t, "java.lang.String", params[2].ClassName)
	assert.Equal(t, "boolean", ret.ClassName)

	params, ret = parseMethodDescriptor("()V")
	assert.Empty(t, params)
	assert.Equal(t, "void", ret.ClassName)

	_, ret = parseMethodDescriptor("garbage")
	assert.Equal(t, "unknown", ret.ClassName)
}

func TestSlotWidth(t *testing.T) {
	params, _ := parseMethodDescriptor("(JDI)V")
	assert.Equal(t, 2, slotWidth(params[0]))
	assert.Equal(t, 2, slotWidth(params[1]))
	assert.Equal(t, 1, slotWidth(params[2]))
}

func TestLoaderConfig_Includes(t *testing.T) {
	cfg := NewConfig(
		WithIncludePackages("com.acme"),
		WithExcludePackages("com.acme.generated"),
	)
	assert.True(t, cfg.includes("com.acme.User"))
	assert.False(t, cfg.includes("com.acme.generated.Stub"))
	assert.False(t, cfg.includes("org.other.Thing"))

	all := NewConfig()
	assert.True(t, all.includes("anything.at.All"))
}

func TestClassNameFromRelPath(t *testing.T) {
	assert.Equal(t, "com.acme.User", classNameFromRelPath("com/acme/User.class"))
	assert.Equal(t, "com.acme.User", classNameFromRelPath("/com/acme/User.class"))
	assert.Equal(t, "Top", classNameFromRelPath("Top.class"))
}

func TestMatchesAnyGlob(t *testing.T) {
	assert.True(t, matchesAnyGlob([]string{"spring-*.jar"}, "spring-web-5.3.1.jar"))
	assert.False(t, matchesAnyGlob([]string{"spring-*.jar"}, "jackson-core.jar"))
	assert.True(t, matchesAnyGlob([]string{"a*", "b*"}, "bravo.jar"))
}
