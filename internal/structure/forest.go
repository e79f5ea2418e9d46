package structure

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/structlink/api"
)

var (
	// ErrMalformed reports input the build cannot make sense of at all.
	ErrMalformed = errors.New("malformed structure input")
	// ErrInvariant reports a forest that breaks a structural invariant.
	ErrInvariant = errors.New("structure invariant violated")
)

// Builder runs the full pipeline: index, link geometry, build tree, group roots.
type Builder struct {
	// IDs hands out node identities. RandomIDs is used when nil.
	IDs IDSource
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build runs a Builder with random node identities.
func Build(raw []api.RawRecord, table AssociationTable) (*Forest, error) {
	return NewBuilder().Build(raw, table)
}

// Build produces a new forest from raw records and an association table.
// Unresolvable references end up in Forest.Diagnostics; only malformed input
// fails the build.
func (b *Builder) Build(raw []api.RawRecord, table AssociationTable) (*Forest, error) {
	ids := b.IDs
	if ids == nil {
		ids = RandomIDs()
	}

	indexed, err := IndexRecords(raw, ids)
	if err != nil {
		return nil, fmt.Errorf("index records: %w", err)
	}
	linked, geomDiags, err := LinkGeometry(indexed, table, ids)
	if err != nil {
		return nil, fmt.Errorf("link geometry: %w", err)
	}
	tree, treeDiags, err := BuildTree(linked)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}

	diags := append(geomDiags, treeDiags...)
	return newForest(GroupRoots(tree), len(raw), diags), nil
}

// Forest is the built structure of one asset. It is never modified after
// construction; a new asset produces a new Forest.
//
// Nodes are laid out in an arena in depth-first pre-order, so the subtree of
// the node at slot s occupies slots [s, s+size(s)).
type Forest struct {
	Roots       []*LabelNode
	Diagnostics []Diagnostic

	records int
	arena   []*LabelNode
	sizes   []uint32
	slots   map[*LabelNode]uint32
	byIdx   map[int]*LabelNode
	byUUID  map[string]*LabelNode
}

func newForest(roots []*LabelNode, records int, diags []Diagnostic) *Forest {
	f := &Forest{
		Roots:       roots,
		Diagnostics: diags,
		records:     records,
		slots:       make(map[*LabelNode]uint32),
		byIdx:       make(map[int]*LabelNode, records),
		byUUID:      make(map[string]*LabelNode),
	}
	for _, r := range roots {
		f.place(r)
	}
	return f
}

// place appends n and its unplaced descendants to the arena.
func (f *Forest) place(n *LabelNode) {
	if _, ok := f.slots[n]; ok {
		return
	}
	slot := uint32(len(f.arena))
	f.slots[n] = slot
	f.arena = append(f.arena, n)
	f.sizes = append(f.sizes, 0)

	if n.Idx != NoIndex {
		if _, dup := f.byIdx[n.Idx]; !dup {
			f.byIdx[n.Idx] = n
		}
	}
	if n.UUID != "" {
		if _, dup := f.byUUID[n.UUID]; !dup {
			f.byUUID[n.UUID] = n
		}
	}

	for _, c := range n.Children {
		f.place(c)
	}
	for _, c := range n.ChildsGeom {
		f.place(c)
	}
	f.sizes[slot] = uint32(len(f.arena)) - slot
}

// Len returns the number of distinct nodes in the forest.
func (f *Forest) Len() int {
	return len(f.arena)
}

// Records returns the number of raw records the forest was built from.
func (f *Forest) Records() int {
	return f.records
}

// Nodes returns every node in depth-first pre-order.
func (f *Forest) Nodes() []*LabelNode {
	return f.arena
}

// At returns the node stored at slot.
func (f *Forest) At(slot uint32) *LabelNode {
	if int(slot) >= len(f.arena) {
		return nil
	}
	return f.arena[slot]
}

// Slot returns the arena slot of n.
func (f *Forest) Slot(n *LabelNode) (uint32, bool) {
	s, ok := f.slots[n]
	return s, ok
}

// ByIdx returns the node built from the record at position idx.
func (f *Forest) ByIdx(idx int) (*LabelNode, bool) {
	n, ok := f.byIdx[idx]
	return n, ok
}

// ByUUID returns the first node, in depth-first order, mapped to uuid.
func (f *Forest) ByUUID(uuid string) (*LabelNode, bool) {
	n, ok := f.byUUID[uuid]
	return n, ok
}

// Subtree returns the slots of n and all of its descendants, including
// synthesized geometry leaves. It is empty when n is not part of the forest.
func (f *Forest) Subtree(n *LabelNode) *roaring.Bitmap {
	bm := roaring.New()
	slot, ok := f.slots[n]
	if !ok {
		return bm
	}
	bm.AddRange(uint64(slot), uint64(slot)+uint64(f.sizes[slot]))
	return bm
}

// Walk visits every node depth-first with its depth below the root. Returning
// false from fn skips the node's descendants.
func (f *Forest) Walk(fn func(n *LabelNode, depth int) bool) {
	var visit func(n *LabelNode, depth int, seen map[*LabelNode]bool)
	visit = func(n *LabelNode, depth int, seen map[*LabelNode]bool) {
		if seen[n] {
			return
		}
		seen[n] = true
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1, seen)
		}
		for _, c := range n.ChildsGeom {
			visit(c, depth+1, seen)
		}
	}
	seen := make(map[*LabelNode]bool)
	for _, r := range f.Roots {
		visit(r, 0, seen)
	}
}
