package ingest

import (
	"strings"

	billy "github.com/go-git/go-billy/v5"

	"github.com/agentic-research/structlink/api"
)

// JSONFragments is a fragment dataset held in memory, indexed by fragment guid.
type JSONFragments struct {
	byGUID map[string][]api.FragmentRecord
	count  int
}

// NewJSONFragments indexes records. Records without a fragment guid are kept
// out of the index since nothing can look them up.
func NewJSONFragments(records []api.FragmentRecord) *JSONFragments {
	f := &JSONFragments{byGUID: make(map[string][]api.FragmentRecord)}
	for _, r := range records {
		if r.FragmentGUID == "" {
			continue
		}
		key := strings.ToLower(r.FragmentGUID)
		f.byGUID[key] = append(f.byGUID[key], r)
		f.count++
	}
	return f
}

// LoadFragmentRecords reads the raw records of a JSON fragment dataset, in
// file order.
func LoadFragmentRecords(fsys billy.Filesystem, path string) ([]api.FragmentRecord, error) {
	var records []api.FragmentRecord
	if err := readInto(fsys, path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// LoadFragmentsJSON reads a fragment dataset from a JSON array.
func LoadFragmentsJSON(fsys billy.Filesystem, path string) (*JSONFragments, error) {
	records, err := LoadFragmentRecords(fsys, path)
	if err != nil {
		return nil, err
	}
	return NewJSONFragments(records), nil
}

// Fragments implements selection.FragmentSource.
func (f *JSONFragments) Fragments(guid string) ([]api.FragmentRecord, error) {
	if guid == "" {
		return nil, nil
	}
	return f.byGUID[strings.ToLower(guid)], nil
}

// Len returns the number of indexed records.
func (f *JSONFragments) Len() int {
	return f.count
}
