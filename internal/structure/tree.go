package structure

// BuildTree resolves raw child index lists into node references on a working
// copy of nodes. Every node with children is resolved, then one more level is
// resolved for each of its children; deeper levels are reached through the
// shared per-index working nodes.
//
// A child keeps the first parent that claims it. Later claims, references to
// the parent itself or its ancestors, and indices with no record are dropped
// and reported as diagnostics. All nodes are returned in input order.
func BuildTree(nodes []*LabelNode) ([]*LabelNode, []Diagnostic, error) {
	work := make([]*LabelNode, 0, len(nodes))
	byIdx := make(map[int]*LabelNode, len(nodes))
	for _, src := range nodes {
		n, err := src.clone()
		if err != nil {
			return nil, nil, err
		}
		n.IdxParent = NoIndex
		work = append(work, n)
		if n.Idx != NoIndex {
			byIdx[n.Idx] = n
		}
	}

	b := &treeBuilder{byIdx: byIdx, resolved: make(map[*LabelNode]bool)}
	for _, n := range work {
		if len(n.RawChildren) == 0 {
			continue
		}
		b.resolve(n)
		for _, c := range n.Children {
			if len(c.RawChildren) > 0 {
				b.resolve(c)
			}
		}
	}
	return work, b.diags, nil
}

type treeBuilder struct {
	byIdx    map[int]*LabelNode
	resolved map[*LabelNode]bool
	diags    []Diagnostic
}

func (b *treeBuilder) resolve(p *LabelNode) {
	if b.resolved[p] {
		return
	}
	b.resolved[p] = true

	kids := make([]*LabelNode, 0, len(p.RawChildren))
	for _, ci := range p.RawChildren {
		c, ok := b.byIdx[ci]
		if !ok {
			b.diags = append(b.diags, Diagnostic{Kind: DanglingChild, Idx: p.Idx, Ref: ci})
			continue
		}
		if b.isAncestor(c, p) {
			b.diags = append(b.diags, Diagnostic{Kind: CyclicChild, Idx: p.Idx, Ref: ci})
			continue
		}
		if c.IdxParent != NoIndex {
			b.diags = append(b.diags, Diagnostic{Kind: ClaimedChild, Idx: p.Idx, Ref: ci})
			continue
		}
		c.IdxParent = p.Idx
		kids = append(kids, c)
	}
	p.Children = kids
}

// isAncestor reports whether c is n or sits above n in the resolved tree.
func (b *treeBuilder) isAncestor(c, n *LabelNode) bool {
	for cur := n; cur != nil; {
		if cur == c {
			return true
		}
		if cur.IdxParent == NoIndex {
			return false
		}
		cur = b.byIdx[cur.IdxParent]
	}
	return false
}
