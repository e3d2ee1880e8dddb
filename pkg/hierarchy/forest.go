package hierarchy

import "github.com/ritzau/finance-assistant/pkg/model"

const noParent = -1

// Node wraps a record with its materialized children. Nodes live in the
// forest's arena and refer to each other by index.
type Node struct {
	Record model.Record

	forest   *Forest
	index    int
	parent   int
	depth    int
	children []int
}

// ID returns the record ID
func (n *Node) ID() model.ID {
	return n.Record.ID
}

// Children returns child nodes in input order
func (n *Node) Children() []*Node {
	children := make([]*Node, len(n.children))
	for i, idx := range n.children {
		children[i] = &n.forest.nodes[idx]
	}
	return children
}

// HasChildren returns true if the node has at least one child
func (n *Node) HasChildren() bool {
	return len(n.children) > 0
}

// Depth returns the 0-based nesting level
func (n *Node) Depth() int {
	return n.depth
}

// Parent returns the parent node, or nil for roots
func (n *Node) Parent() *Node {
	if n.parent == noParent {
		return nil
	}
	return &n.forest.nodes[n.parent]
}

// Forest is an ordered sequence of root nodes backed by a single node arena
type Forest struct {
	nodes  []Node
	roots  []int
	index  map[model.ID]int
	issues []Issue
}

// Roots returns root nodes in order of first appearance in the input
func (f *Forest) Roots() []*Node {
	roots := make([]*Node, len(f.roots))
	for i, idx := range f.roots {
		roots[i] = &f.nodes[idx]
	}
	return roots
}

// Len returns the total number of nodes, including nested children
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Lookup finds a node by record ID
func (f *Forest) Lookup(id model.ID) (*Node, bool) {
	idx, ok := f.index[id]
	if !ok {
		return nil, false
	}
	return &f.nodes[idx], true
}

// Issues returns the recoverable problems corrected while building
func (f *Forest) Issues() []Issue {
	return f.issues
}

// Walk visits every node depth-first, pre-order, starting from the roots in
// forest order. Returning false from fn skips the node's subtree.
func (f *Forest) Walk(fn func(n *Node) bool) {
	stack := make([]int, 0, len(f.roots))
	for i := len(f.roots) - 1; i >= 0; i-- {
		stack = append(stack, f.roots[i])
	}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &f.nodes[idx]
		if !fn(node) {
			continue
		}
		for i := len(node.children) - 1; i >= 0; i-- {
			stack = append(stack, node.children[i])
		}
	}
}
