package structure

import "slices"

// GroupRoots collects the nodes that never became someone's child, in input
// order and once each. A root's synthesized geometry leaves are appended to
// its visible children; deeper nodes keep them in ChildsGeom only.
func GroupRoots(nodes []*LabelNode) []*LabelNode {
	seen := make(map[*LabelNode]struct{})
	var roots []*LabelNode
	for _, n := range nodes {
		if n == nil || n.IdxParent != NoIndex {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		roots = append(roots, n)
	}

	for _, r := range roots {
		if len(r.ChildsGeom) > 0 {
			r.Children = append(slices.Clip(r.Children), r.ChildsGeom...)
		}
	}
	return roots
}
