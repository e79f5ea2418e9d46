package structure

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// Verify checks the forest against its structural invariants:
//   - every record position appears exactly once, either as a root or under
//     exactly one parent;
//   - no node carries both a single-object link and geometry leaves, and a
//     record node is linked in the shape its geometry list calls for;
//   - roots are exactly the nodes without a parent.
//
// All violations are reported together, each wrapping ErrInvariant.
func (f *Forest) Verify() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...)))
	}

	positions := roaring.New()
	var count func(n *LabelNode)
	count = func(n *LabelNode) {
		if n.Idx != NoIndex {
			if n.Idx < 0 || n.Idx >= f.records {
				fail("node %q has index %d outside [0,%d)", n.Label, n.Idx, f.records)
			} else if !positions.CheckedAdd(uint32(n.Idx)) {
				fail("record %d appears more than once", n.Idx)
				return
			}
		}
		for _, c := range n.Children {
			if c.Idx != NoIndex && c.IdxParent != n.Idx {
				fail("record %d listed under %d but parented to %d", c.Idx, n.Idx, c.IdxParent)
			}
			count(c)
		}
	}
	for _, r := range f.Roots {
		if r.IdxParent != NoIndex {
			fail("root %d has parent %d", r.Idx, r.IdxParent)
		}
		count(r)
	}
	if got := positions.GetCardinality(); got != uint64(f.records) {
		fail("%d of %d records reachable from roots", got, f.records)
	}

	for _, n := range f.arena {
		if n.UUID != "" && len(n.ChildsGeom) > 0 {
			fail("node %d has both uuid %q and %d geometry leaves", n.Idx, n.UUID, len(n.ChildsGeom))
		}
		if n.IsSynthesized() {
			continue
		}
		if n.UUID != "" && len(n.Nodes) != 1 {
			fail("node %d has uuid with %d geometry references", n.Idx, len(n.Nodes))
		}
		if len(n.ChildsGeom) > 0 && len(n.ChildsGeom) != len(n.Nodes) {
			fail("node %d has %d geometry leaves for %d references", n.Idx, len(n.ChildsGeom), len(n.Nodes))
		}
		if len(n.Nodes) > 1 && len(n.ChildsGeom) == 0 {
			fail("node %d has %d geometry references but no leaves", n.Idx, len(n.Nodes))
		}
	}

	return errors.Join(errs...)
}
