package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "structlink.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("full file", func(t *testing.T) {
		path := writeConfig(t, `
records      = "model.json"
records_path = "$.extras.structure"
associations = "/data/assoc.json"
scene        = "scene.json"
context      = "worker"

fragments {
  path = "fragments.db"
}
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		dir := filepath.Dir(path)
		assert.Equal(t, filepath.Join(dir, "model.json"), cfg.Records)
		assert.Equal(t, "$.extras.structure", cfg.RecordsPath)
		assert.Equal(t, "/data/assoc.json", cfg.Associations)
		assert.Equal(t, "worker", cfg.Context)
		require.NotNil(t, cfg.Fragments)
		assert.Equal(t, filepath.Join(dir, "fragments.db"), cfg.Fragments.Path)
		assert.Equal(t, FormatSQLite, cfg.FragmentsFormat())
	})

	t.Run("empty file", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, ""))
		require.NoError(t, err)
		assert.Nil(t, cfg.Fragments)
		assert.Empty(t, cfg.FragmentsFormat())
	})

	t.Run("unknown context", func(t *testing.T) {
		_, err := Load(writeConfig(t, `context = "gpu"`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown context")
	})

	t.Run("unknown attribute", func(t *testing.T) {
		_, err := Load(writeConfig(t, `colour = "red"`))
		require.Error(t, err)
	})

	t.Run("explicit json format", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, `
fragments {
  path   = "fragments.data"
  format = "json"
}
`))
		require.NoError(t, err)
		assert.Equal(t, FormatJSON, cfg.FragmentsFormat())
	})
}

func TestLoadOptional(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadAnyExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "structlink.conf")
	require.NoError(t, os.WriteFile(path, []byte(`
records = "model.json"
context = "worker"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "model.json"), cfg.Records)
	assert.Equal(t, "worker", cfg.Context)
}

func TestLoadJSONSyntax(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "structlink.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"records": "/data/model.json"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/model.json", cfg.Records)
}
