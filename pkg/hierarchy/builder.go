// Package hierarchy turns flat parent-referencing records into a forest and
// projects it into depth-annotated rows according to an expand/collapse state.
//
// Everything here is a pure function of its inputs: Build never mutates the
// records it is given, and expand state values are never modified in place.
package hierarchy

import (
	"fmt"

	"github.com/ritzau/finance-assistant/pkg/cycles"
	"github.com/ritzau/finance-assistant/pkg/graph"
	"github.com/ritzau/finance-assistant/pkg/model"
)

// Build converts records into a forest. Sibling order and root order follow
// input order. A parent that does not resolve promotes the record to root, and
// a parent cycle is broken at the member that appears first in the input, so
// every record appears exactly once. Duplicate IDs return *DuplicateIDError
// and a record with an empty ID returns ErrMissingID.
func Build(records []model.Record) (*Forest, error) {
	f := &Forest{
		nodes: make([]Node, len(records)),
		index: make(map[model.ID]int, len(records)),
	}

	// Pass 1: one arena slot per record
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("%w at position %d", ErrMissingID, i)
		}
		if first, exists := f.index[r.ID]; exists {
			return nil, &DuplicateIDError{ID: r.ID, First: first, Second: i}
		}
		f.index[r.ID] = i
		f.nodes[i] = Node{
			Record: r,
			forest: f,
			index:  i,
			parent: noParent,
		}
	}

	promoted := breakCycles(f, records)

	// Pass 2: attach to parent or promote to root, in input order
	for i, r := range records {
		if promoted[i] || r.Parent == nil {
			f.roots = append(f.roots, i)
			continue
		}

		parentIdx, ok := f.index[*r.Parent]
		if !ok {
			f.roots = append(f.roots, i)
			f.issues = append(f.issues, Issue{
				Kind:     IssueOrphan,
				Records:  []model.ID{r.ID},
				Parent:   *r.Parent,
				Promoted: r.ID,
			})
			continue
		}

		f.nodes[i].parent = parentIdx
		f.nodes[parentIdx].children = append(f.nodes[parentIdx].children, i)
	}

	f.Walk(func(n *Node) bool {
		if n.parent != noParent {
			n.depth = f.nodes[n.parent].depth + 1
		}
		return true
	})

	return f, nil
}

// breakCycles finds parent cycles and marks the first member of each, in input
// order, to be rendered as a root. Cycle issues are appended to the forest.
func breakCycles(f *Forest, records []model.Record) map[int]bool {
	promoted := make(map[int]bool)

	pg := graph.BuildParentGraph(records)
	for _, c := range cycles.FindParentCycles(pg) {
		first := c.Records[0]
		promoted[f.index[first]] = true
		f.issues = append(f.issues, Issue{
			Kind:     IssueCycle,
			Records:  c.Records,
			Promoted: first,
		})
	}

	return promoted
}
