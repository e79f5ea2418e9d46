package selection

import (
	"errors"
	"log"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/structlink/api"
	"github.com/agentic-research/structlink/internal/structure"
)

// ErrNoIdentity is returned when a query target carries no identity at all.
var ErrNoIdentity = errors.New("selection target has no identity")

// Context names the viewer instance a Linker serves.
type Context string

const (
	ContextMain   Context = "main"
	ContextWorker Context = "worker"
)

// FragmentSource is the secondary dataset grouping repeated part instances.
type FragmentSource interface {
	// Fragments returns every record whose fragment guid matches guid,
	// case-insensitively, in dataset order.
	Fragments(guid string) ([]api.FragmentRecord, error)
}

// Linker answers selection queries in both directions: renderable object to
// owning node, and node to the live objects representing it. It never
// modifies the forest.
type Linker struct {
	Context Context

	holder    *Holder
	scene     Scene
	fragments FragmentSource
}

// NewLinker wires a Linker to the forest holder, the live scene and an
// optional fragment dataset (nil disables group expansion).
func NewLinker(ctx Context, holder *Holder, scene Scene, fragments FragmentSource) *Linker {
	if ctx == "" {
		ctx = ContextMain
	}
	return &Linker{
		Context:   ctx,
		holder:    holder,
		scene:     scene,
		fragments: fragments,
	}
}

// FindOwningNode returns the node that owns the renderable object identity.
// If the object's enclosing object in the scene maps to a node, that node
// wins, so picking any instance selects its owning part. A nil node with a nil
// error means no match, or no asset loaded yet.
func (l *Linker) FindOwningNode(identity string) (*structure.LabelNode, error) {
	if identity == "" {
		return nil, ErrNoIdentity
	}
	f := l.holder.Current()
	if f == nil {
		return nil, nil
	}

	if l.scene != nil {
		if parent := l.scene.Parent(identity); parent != "" {
			if n, ok := f.ByUUID(parent); ok {
				return n, nil
			}
		}
	}
	if n, ok := f.ByUUID(identity); ok {
		return n, nil
	}
	return nil, nil
}

// ExpandSelection returns the live objects representing node: its own
// subtree and, when it belongs to a fragment group, the subtrees of all other
// instances of the group. Objects absent from the scene are left out.
func (l *Linker) ExpandSelection(node *structure.LabelNode) ([]api.RendererObject, error) {
	if !node.HasIdentity() {
		return nil, ErrNoIdentity
	}
	f := l.holder.Current()
	if f == nil {
		return nil, nil
	}
	if _, ok := f.Slot(node); !ok {
		return nil, nil
	}

	sel := f.Subtree(node)
	if node.FragmentGUID != "" {
		l.expandGroup(f, node, sel)
	}
	return l.liveObjects(f, sel), nil
}

// Select resolves a picked object to its owning node and expands it.
func (l *Linker) Select(identity string) (*structure.LabelNode, []api.RendererObject, error) {
	owner, err := l.FindOwningNode(identity)
	if err != nil || owner == nil {
		return nil, nil, err
	}
	objs, err := l.ExpandSelection(owner)
	if err != nil {
		return nil, nil, err
	}
	return owner, objs, nil
}

// expandGroup adds to sel the subtree of one forest node per fragment record.
// Each record resolves to the first node, in forest order, not yet selected
// whose fragment guid matches; failures leave sel as the node's own subtree.
func (l *Linker) expandGroup(f *structure.Forest, node *structure.LabelNode, sel *roaring.Bitmap) {
	if l.fragments == nil {
		return
	}
	records, err := l.fragments.Fragments(node.FragmentGUID)
	if err != nil {
		log.Printf("expand %s: fragment lookup %q: %v", node, node.FragmentGUID, err)
		return
	}

	claimed := map[*structure.LabelNode]bool{node: true}
	for _, rec := range records {
		if rec.FragmentGUID == "" {
			continue
		}
		m := firstInstance(f, rec.FragmentGUID, claimed)
		if m == nil {
			continue
		}
		claimed[m] = true
		sel.Or(f.Subtree(m))
	}
}

func firstInstance(f *structure.Forest, guid string, claimed map[*structure.LabelNode]bool) *structure.LabelNode {
	for _, n := range f.Nodes() {
		if claimed[n] || n.FragmentGUID == "" {
			continue
		}
		if strings.EqualFold(n.FragmentGUID, guid) {
			return n
		}
	}
	return nil
}

// liveObjects maps selected slots to scene objects, in forest order.
func (l *Linker) liveObjects(f *structure.Forest, sel *roaring.Bitmap) []api.RendererObject {
	if l.scene == nil {
		return nil
	}
	var out []api.RendererObject
	seen := make(map[string]struct{})
	it := sel.Iterator()
	for it.HasNext() {
		n := f.At(it.Next())
		if n == nil || n.UUID == "" {
			continue
		}
		if _, dup := seen[n.UUID]; dup {
			continue
		}
		seen[n.UUID] = struct{}{}
		if obj, ok := l.scene.Lookup(n.UUID); ok {
			out = append(out, obj)
		}
	}
	return out
}
