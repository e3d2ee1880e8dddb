package hierarchy

import "github.com/ritzau/finance-assistant/pkg/model"

// Action is a user intent that changes the expand state
type Action interface {
	isAction()
}

// Toggle flips a single node
type Toggle struct{ ID model.ID }

// Expand shows a node's children; expanding an expanded node is a no-op
type Expand struct{ ID model.ID }

// Collapse hides a node's subtree; descendant flags are left untouched
type Collapse struct{ ID model.ID }

// ExpandAll expands every node that has children
type ExpandAll struct{ Forest *Forest }

// CollapseAll clears the state
type CollapseAll struct{}

// Reset returns to the initial state, as when a page is recreated
type Reset struct{}

func (Toggle) isAction()      {}
func (Expand) isAction()      {}
func (Collapse) isAction()    {}
func (ExpandAll) isAction()   {}
func (CollapseAll) isAction() {}
func (Reset) isAction()       {}

// Reduce applies an action to a state and returns the resulting state
func Reduce(state ExpandState, action Action) ExpandState {
	switch a := action.(type) {
	case Toggle:
		return ToggleExpanded(state, a.ID)
	case Expand:
		return state.with(a.ID, true)
	case Collapse:
		return state.with(a.ID, false)
	case ExpandAll:
		if a.Forest == nil {
			return state
		}
		next := NewExpandState(state.IDs()...)
		a.Forest.Walk(func(n *Node) bool {
			if n.HasChildren() {
				next.ids[n.ID()] = struct{}{}
			}
			return true
		})
		return next
	case CollapseAll, Reset:
		return ExpandState{}
	default:
		return state
	}
}
