package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/structlink/api"
)

const (
	testRecords = `{"model": {"records": [
		{"name": "Assembly", "children": [1, 2], "nodes": []},
		{"name": "Screw", "number": "M4", "children": [], "nodes": [0], "fragment_guid": "G"},
		{"name": "Screw", "number": "M4", "children": [], "nodes": [1], "fragment_guid": "g"}
	]}}`
	testAssociations = `[
		{"uuid": "s0", "id": 1, "nodes": 0},
		{"uuid": "s1", "id": 2, "nodes": 1}
	]`
	testScene = `[
		{"uuid": "s0", "id": 1},
		{"uuid": "s1", "id": 2}
	]`
	testFragments = `[
		{"guid": "i0", "fragment_guid": "G"},
		{"guid": "i1", "fragment_guid": "G"}
	]`
)

// writeFixture lays out an asset in a temp dir and returns the config path.
func writeFixture(t *testing.T, fragmentsFile string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"records.json":      testRecords,
		"associations.json": testAssociations,
		"scene.json":        testScene,
		"fragments.json":    testFragments,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	hcl := `
records      = "records.json"
records_path = "$.model.records"
associations = "associations.json"
scene        = "scene.json"
context      = "worker"

fragments {
  path = "` + fragmentsFile + `"
}
`
	cfgPath := filepath.Join(dir, "structlink.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(hcl), 0o644))
	return dir, cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	_, cfg := writeFixture(t, "fragments.json")

	out, err := run(t, "build", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Assembly [0]")
	assert.Contains(t, out, "  Screw [1] #M4 -> s0")
	assert.Contains(t, out, "3 records, 3 nodes, 1 roots, 0 diagnostics")

	out, err = run(t, "build", "--config", cfg, "--depth", "1")
	require.NoError(t, err)
	assert.NotContains(t, out, "Screw [1]")
}

func TestVerifyCommand(t *testing.T) {
	_, cfg := writeFixture(t, "fragments.json")

	out, err := run(t, "verify", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "ok: 3 records in 1 roots\n", out)
}

func TestOwnerCommand(t *testing.T) {
	_, cfg := writeFixture(t, "fragments.json")

	out, err := run(t, "owner", "s1", "--config", cfg)
	require.NoError(t, err)
	var view struct {
		Idx   int    `json:"idx"`
		Label string `json:"label"`
		UUID  string `json:"uuid"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, 2, view.Idx)
	assert.Equal(t, "Screw", view.Label)
	assert.Equal(t, "s1", view.UUID)

	out, err = run(t, "owner", "nope", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "no owning node for nope")
}

func TestExpandCommand(t *testing.T) {
	_, cfg := writeFixture(t, "fragments.json")

	out, err := run(t, "expand", "1", "--config", cfg)
	require.NoError(t, err)
	var objs []api.RendererObject
	require.NoError(t, json.Unmarshal([]byte(out), &objs))
	require.Len(t, objs, 2)
	assert.Equal(t, "s0", objs[0].UUID)
	assert.Equal(t, "s1", objs[1].UUID)

	_, err = run(t, "expand", "9", "--config", cfg)
	assert.Error(t, err)

	_, err = run(t, "expand", "one", "--config", cfg)
	assert.Error(t, err)
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir, cfg := writeFixture(t, "fragments.json")
	empty := filepath.Join(dir, "empty-scene.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[]`), 0o644))

	out, err := run(t, "expand", "1", "--config", cfg, "--scene", empty)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestInvalidContext(t *testing.T) {
	_, cfg := writeFixture(t, "fragments.json")

	_, err := run(t, "verify", "--config", cfg, "--context", "sidecar")
	assert.ErrorContains(t, err, "unknown context")
}

func TestMissingRecords(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "structlink.hcl")
	require.NoError(t, os.WriteFile(cfg, []byte(`context = "main"`), 0o644))

	_, err := run(t, "build", "--config", cfg)
	assert.ErrorContains(t, err, "no records given")
}

func TestFragmentsImport(t *testing.T) {
	dir, _ := writeFixture(t, "fragments.json")
	db := filepath.Join(dir, "fragments.db")

	out, err := run(t, "fragments", "import", filepath.Join(dir, "fragments.json"), db)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 fragment records")

	// The SQLite dataset answers the same expansion as the JSON one.
	_, cfg := writeFixture(t, db)
	out, err = run(t, "expand", "2", "--config", cfg)
	require.NoError(t, err)
	var objs []api.RendererObject
	require.NoError(t, json.Unmarshal([]byte(out), &objs))
	require.Len(t, objs, 2)
	assert.Equal(t, "s0", objs[0].UUID, "forest order")
	assert.Equal(t, "s1", objs[1].UUID)
}
