package structure

import (
	"fmt"
	"slices"

	"github.com/agentic-research/structlink/api"
)

// IndexRecords turns raw records into unlinked label nodes, one per record and
// in the same order. Child and geometry lists are kept as index lists.
// A negative index anywhere is malformed input and fails the whole batch.
func IndexRecords(raw []api.RawRecord, ids IDSource) ([]*LabelNode, error) {
	if ids == nil {
		ids = RandomIDs()
	}

	nodes := make([]*LabelNode, 0, len(raw))
	for i, r := range raw {
		if err := validateRecord(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		nodes = append(nodes, &LabelNode{
			ID:           ids(),
			Idx:          i,
			IdxParent:    NoIndex,
			Label:        r.Name,
			Description:  r.Description,
			Number:       r.Number,
			RecordID:     r.ID,
			FragmentGUID: r.FragmentGUID,
			RawChildren:  slices.Clone(r.Children),
			Nodes:        slices.Clone(r.Nodes),
		})
	}
	return nodes, nil
}

func validateRecord(r api.RawRecord) error {
	for _, c := range r.Children {
		if c < 0 {
			return fmt.Errorf("%w: negative child index %d", ErrMalformed, c)
		}
	}
	for _, g := range r.Nodes {
		if g < 0 {
			return fmt.Errorf("%w: negative geometry index %d", ErrMalformed, g)
		}
	}
	return nil
}
