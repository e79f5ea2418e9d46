package structure

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/jinzhu/copier"
)

// NoIndex marks an absent record position: synthesized geometry nodes have
// no Idx, and roots have no IdxParent.
const NoIndex = -1

// LabelNode is one logical part or assembly of a model's structure.
type LabelNode struct {
	// ID is a process-local random identity. Zero means "no identity".
	ID uint32
	// Idx is the position of the source record, NoIndex for synthesized nodes.
	Idx int
	// IdxParent is the Idx of the resolved parent, NoIndex for roots.
	IdxParent int

	Label        string
	Description  string
	Number       string
	RecordID     string
	FragmentGUID string

	// Children holds resolved child nodes once the tree is built.
	Children []*LabelNode `copier:"-"`
	// RawChildren is the record's child index list as supplied.
	RawChildren []int
	// Nodes is the record's geometry index list as supplied.
	Nodes []int

	// UUID and Ref3DID identify the single renderable object this node maps to.
	UUID    string
	Ref3DID string
	// ChildsGeom holds one synthesized leaf per geometry reference when the
	// record maps to more than one renderable object.
	ChildsGeom []*LabelNode
}

// IsSynthesized reports whether the node was created for a geometry reference
// rather than from a source record.
func (n *LabelNode) IsSynthesized() bool {
	return n.Idx == NoIndex
}

// HasIdentity reports whether the node carries any identity at all.
func (n *LabelNode) HasIdentity() bool {
	return n != nil && n.ID != 0
}

func (n *LabelNode) String() string {
	if n.IsSynthesized() {
		return fmt.Sprintf("%s (geom of %d)", n.Label, n.IdxParent)
	}
	return fmt.Sprintf("%s [%d]", n.Label, n.Idx)
}

// clone returns a deep copy of n without resolved children.
func (n *LabelNode) clone() (*LabelNode, error) {
	c := &LabelNode{}
	if err := copier.CopyWithOption(c, n, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("copy node %d: %w", n.Idx, err)
	}
	c.keepNil(n)
	return c, nil
}

// keepNil restores the list fields copier turns from nil into empty, so an
// absent list stays distinguishable from an empty one.
func (c *LabelNode) keepNil(src *LabelNode) {
	c.Children = nil
	c.RawChildren = slices.Clone(src.RawChildren)
	c.Nodes = slices.Clone(src.Nodes)
	c.ChildsGeom = nil
	if src.ChildsGeom == nil {
		return
	}
	c.ChildsGeom = make([]*LabelNode, len(src.ChildsGeom))
	for i, g := range src.ChildsGeom {
		leaf := *g
		leaf.keepNil(g)
		c.ChildsGeom[i] = &leaf
	}
}

// IDSource hands out node identities. Implementations must never return zero
// and must not repeat a value within one build.
type IDSource func() uint32

// RandomIDs returns an IDSource drawing unique non-zero random identities.
func RandomIDs() IDSource {
	used := make(map[uint32]struct{})
	return func() uint32 {
		for {
			id := rand.Uint32()
			if id == 0 {
				continue
			}
			if _, dup := used[id]; dup {
				continue
			}
			used[id] = struct{}{}
			return id
		}
	}
}

// SequentialIDs returns an IDSource counting up from start (or 1 if start is 0).
func SequentialIDs(start uint32) IDSource {
	next := start
	if next == 0 {
		next = 1
	}
	return func() uint32 {
		id := next
		next++
		if next == 0 {
			next = 1
		}
		return id
	}
}
