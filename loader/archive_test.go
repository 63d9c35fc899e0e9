package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, dest string, entries map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(dest, buf.Bytes(), 0o644))
}

func TestResolveInput_ClassDirectory(t *testing.T) {
	dir := t.TempDir()
	classPath := filepath.Join(dir, "com", "acme", "User.class")
	require.NoError(t, os.MkdirAll(filepath.Dir(classPath), 0o755))
	require.NoError(t, os.WriteFile(classPath, []byte("not-really-bytecode"), 0o644))

	entries, err := resolveInput(context.Background(), dir, NewConfig())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "com.acme.User", entries[0].fqn)
	assert.False(t, entries[0].isLibrary)
}

func TestResolveInput_MissingPathFails(t *testing.T) {
	_, err := resolveInput(context.Background(), filepath.Join(t.TempDir(), "nope"), NewConfig())
	assert.Error(t, err)
}

func TestResolveInput_PlainArchive(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "app.jar")
	writeZip(t, jarPath, map[string][]byte{
		"com/acme/Order.class": []byte("aaaa"),
		"META-INF/MANIFEST.MF": []byte("Manifest-Version: 1.0"),
	})

	entries, err := resolveInput(context.Background(), jarPath, NewConfig())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "com.acme.Order", entries[0].fqn)
}

func TestResolveInput_WarWithLibraries(t *testing.T) {
	dir := t.TempDir()

	var lib bytes.Buffer
	lw := zip.NewWriter(&lib)
	w, err := lw.Create("org/dep/Util.class")
	require.NoError(t, err)
	_, err = w.Write([]byte("libbytes"))
	require.NoError(t, err)
	require.NoError(t, lw.Close())

	warPath := filepath.Join(dir, "app.war")
	writeZip(t, warPath, map[string][]byte{
		"WEB-INF/classes/com/acme/Api.class": []byte("webbytes"),
		"WEB-INF/lib/dep-1.0.jar":            lib.Bytes(),
		"WEB-INF/lib/skipme-2.0.jar":         lib.Bytes(),
	})

	entries, err := resolveInput(context.Background(), warPath, NewConfig(
		WithIncludeLibraries(true),
		WithLibraryFilters("dep-*.jar"),
	))
	require.NoError(t, err)

	byFQN := map[string]classEntry{}
	for _, e := range entries {
		byFQN[e.fqn] = e
	}
	require.Contains(t, byFQN, "com.acme.Api")
	require.Contains(t, byFQN, "org.dep.Util")
	assert.False(t, byFQN["com.acme.Api"].isLibrary)
	assert.True(t, byFQN["org.dep.Util"].isLibrary)

	noLibs, err := resolveInput(context.Background(), warPath, NewConfig())
	require.NoError(t, err)
	require.Len(t, noLibs, 1)
	assert.Equal(t, "com.acme.Api", noLibs[0].fqn)
}

func TestResolveInput_ShadowedClassLastWriterWins(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "app.jar")
	// Zip entry names may repeat; both bodies decode, last wins.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, body := range []string{"first", "second"} {
		w, err := zw.Create("com/acme/Dup.class")
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(jarPath, buf.Bytes(), 0o644))

	entries, err := resolveInput(context.Background(), jarPath, NewConfig())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []byte("second"), entries[0].data)
}

func TestLoad_AllClassesUnparseableFails(t *testing.T) {
	dir := t.TempDir()
	classPath := filepath.Join(dir, "Broken.class")
	require.NoError(t, os.WriteFile(classPath, []byte("garbage"), 0o644))

	_, summary, err := Load(context.Background(), dir, NewConfig())
	assert.Error(t, err)
	assert.Equal(t, 1, summary.ClassesSkipped)
}

func TestLoad_EmptyInputYieldsEmptyGraph(t *testing.T) {
	dir := t.TempDir()

	g, summary, err := Load(context.Background(), dir, NewConfig())
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, 0, summary.ClassesSeen)
}
