package template_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notaria/internal/template"
)

func TestNewRegistry_BuiltIns(t *testing.T) {
	reg, err := template.NewRegistry("")
	require.NoError(t, err)

	assert.Equal(t, []string{"compraventa_inmueble", "donacion", "poder_notarial", "testamento"}, reg.IDs())

	_, ok := reg.Lookup("arrendamiento")
	assert.False(t, ok)
}

func TestNewRegistry_DirectoryOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "testamento.md"), []byte("TESTAMENTO {{testador_nombre}}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arrendamiento.md"), []byte("ARRENDAMIENTO"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notas.txt"), []byte("ignored"), 0o600))

	reg, err := template.NewRegistry(dir)
	require.NoError(t, err)

	tpl, ok := reg.Lookup("testamento")
	require.True(t, ok)
	assert.Equal(t, "TESTAMENTO {{testador_nombre}}", tpl)

	_, ok = reg.Lookup("arrendamiento")
	assert.True(t, ok)
	_, ok = reg.Lookup("notas")
	assert.False(t, ok)
	_, ok = reg.Lookup("donacion")
	assert.True(t, ok)
}

func TestNewRegistry_MissingDirectory(t *testing.T) {
	_, err := template.NewRegistry(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestNewRegistryFromMap(t *testing.T) {
	src := map[string]string{"x": "X"}
	reg := template.NewRegistryFromMap(src)
	src["x"] = "changed"

	tpl, ok := reg.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "X", tpl)
}
