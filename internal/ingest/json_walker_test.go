package ingest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSelector(t *testing.T) {
	input := `
{
  "asset": {"generator": "exporter 2.1"},
  "extras": {
    "structure": [
      {"name": "Frame", "children": [1]},
      {"name": "Axle"}
    ]
  }
}
`
	var data any
	require.NoError(t, json.Unmarshal([]byte(input), &data))

	t.Run("array match yields elements", func(t *testing.T) {
		s, err := NewJSONSelector("$.extras.structure")
		require.NoError(t, err)
		items, err := s.Items(data)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("wildcard yields matches", func(t *testing.T) {
		s, err := NewJSONSelector("$.extras.structure[*]")
		require.NoError(t, err)
		items, err := s.Items(data)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Axle", items[1].(map[string]any)["name"])
	})

	t.Run("wildcard with no matches is empty", func(t *testing.T) {
		s, err := NewJSONSelector("$.missing[*]")
		require.NoError(t, err)
		items, err := s.Items(data)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("object is not a list", func(t *testing.T) {
		s, err := NewJSONSelector("")
		require.NoError(t, err)
		assert.Equal(t, DefaultRecordsPath, s.String())
		_, err = s.Items(data)
		require.Error(t, err)
	})

	t.Run("invalid expression", func(t *testing.T) {
		_, err := NewJSONSelector("$[")
		require.Error(t, err)
	})
}
