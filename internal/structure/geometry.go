package structure

import (
	"fmt"
	"strconv"

	"github.com/agentic-research/structlink/api"
)

// Identity is the identity of one renderable object.
type Identity struct {
	UUID string
	ID   int
}

// AssociationTable maps renderable objects to the geometry table entries they
// draw. It is produced by the asset loader once parsing finished.
type AssociationTable []api.Association

// Lookup scans the table for the first entry drawing geometry index g.
// When several objects reference the same index only the first one in table
// order is returned.
func (t AssociationTable) Lookup(g int) (Identity, bool) {
	for _, a := range t {
		if a.Nodes == g {
			return Identity{UUID: a.UUID, ID: a.ID}, true
		}
	}
	return Identity{}, false
}

// LinkGeometry attaches renderable identities to indexed nodes. A node with a
// single geometry reference gets UUID/Ref3DID; a node with several gets one
// synthesized leaf per reference in ChildsGeom, in reference order.
// The input nodes are left untouched; linked copies are returned.
func LinkGeometry(nodes []*LabelNode, table AssociationTable, ids IDSource) ([]*LabelNode, []Diagnostic, error) {
	if ids == nil {
		ids = RandomIDs()
	}

	var diags []Diagnostic
	linked := make([]*LabelNode, 0, len(nodes))
	for _, src := range nodes {
		n, err := src.clone()
		if err != nil {
			return nil, nil, err
		}
		linked = append(linked, n)

		switch len(n.Nodes) {
		case 0:
		case 1:
			if id, ok := table.Lookup(n.Nodes[0]); ok {
				n.UUID = id.UUID
				n.Ref3DID = strconv.Itoa(id.ID)
			} else {
				diags = append(diags, Diagnostic{Kind: UnresolvedGeometry, Idx: n.Idx, Ref: n.Nodes[0]})
			}
		default:
			n.ChildsGeom = make([]*LabelNode, 0, len(n.Nodes))
			for _, g := range n.Nodes {
				leaf := &LabelNode{
					ID:        ids(),
					Idx:       NoIndex,
					IdxParent: n.Idx,
					Label:     fmt.Sprintf("%d_?", n.Idx),
				}
				if id, ok := table.Lookup(g); ok {
					leaf.Label = fmt.Sprintf("%d_%d", n.Idx, id.ID)
					leaf.UUID = id.UUID
					leaf.Ref3DID = strconv.Itoa(id.ID)
				} else {
					diags = append(diags, Diagnostic{Kind: UnresolvedGeometry, Idx: n.Idx, Ref: g})
				}
				n.ChildsGeom = append(n.ChildsGeom, leaf)
			}
		}
	}
	return linked, diags, nil
}
