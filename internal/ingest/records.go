package ingest

import (
	"encoding/json"
	"fmt"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/structlink/api"
	"github.com/agentic-research/structlink/internal/structure"
)

// LoadRecords reads the structure records of a model from path. selector is a
// JSONPath picking the record array out of the document; "" means the whole
// document is the array. Anything that is not a list of objects fails with
// structure.ErrMalformed.
func LoadRecords(fsys billy.Filesystem, path, selector string) ([]api.RawRecord, error) {
	data, err := readJSON(fsys, path)
	if err != nil {
		return nil, err
	}
	sel, err := NewJSONSelector(selector)
	if err != nil {
		return nil, err
	}
	items, err := sel.Items(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, structure.ErrMalformed, err)
	}
	return DecodeRecords(items)
}

// DecodeRecords converts decoded JSON values into records. Each item must be an
// object; children and nodes, when present, must be integer lists.
func DecodeRecords(items []any) ([]api.RawRecord, error) {
	records := make([]api.RawRecord, 0, len(items))
	for i, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return nil, fmt.Errorf("record %d: %w: expected object, got %T", i, structure.ErrMalformed, item)
		}
		var rec api.RawRecord
		if err := remarshal(item, &rec); err != nil {
			return nil, fmt.Errorf("record %d: %w: %v", i, structure.ErrMalformed, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadAssociations reads an association table: a JSON array of
// {"uuid", "id", "nodes"} entries, kept in file order.
func LoadAssociations(fsys billy.Filesystem, path string) (structure.AssociationTable, error) {
	var table structure.AssociationTable
	if err := readInto(fsys, path, &table); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadScene reads a snapshot of the live scene: a JSON array of objects.
func LoadScene(fsys billy.Filesystem, path string) ([]api.RendererObject, error) {
	var objects []api.RendererObject
	if err := readInto(fsys, path, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

func readJSON(fsys billy.Filesystem, path string) (any, error) {
	content, err := util.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	var data any
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("failed to parse json %s: %w", path, err)
	}
	return data, nil
}

func readInto(fsys billy.Filesystem, path string, v any) error {
	content, err := util.ReadFile(fsys, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("failed to parse json %s: %w", path, err)
	}
	return nil
}

func remarshal(in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
