package hierarchy

// Row is one line of the flattened projection
type Row struct {
	Node        *Node
	Depth       int
	Expanded    bool
	HasChildren bool
}

// Rows flattens the forest depth-first, pre-order. A node's descendants are
// emitted right after it, and only when the node and all of its ancestors are
// expanded. Descendant flags survive a collapse and apply again on re-expand.
func Rows(f *Forest, state ExpandState) []Row {
	if f == nil {
		return nil
	}

	rows := make([]Row, 0, len(f.roots))
	onPath := make(map[int]bool)

	var visit func(idx, depth int)
	visit = func(idx, depth int) {
		// Build never produces a loop; the guard keeps a corrupted arena finite
		if onPath[idx] {
			return
		}
		node := &f.nodes[idx]
		expanded := state.Has(node.ID())

		rows = append(rows, Row{
			Node:        node,
			Depth:       depth,
			Expanded:    expanded,
			HasChildren: node.HasChildren(),
		})

		if !expanded {
			return
		}

		onPath[idx] = true
		for _, child := range node.children {
			visit(child, depth+1)
		}
		delete(onPath, idx)
	}

	for _, root := range f.roots {
		visit(root, 0)
	}

	return rows
}
