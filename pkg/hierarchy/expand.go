package hierarchy

import (
	"slices"

	"github.com/ritzau/finance-assistant/pkg/model"
)

// ExpandState is the set of node IDs whose children are visible. Values are
// immutable: every operation returns a new state. The zero value is the
// all-collapsed state.
type ExpandState struct {
	ids map[model.ID]struct{}
}

// NewExpandState returns a state with the given IDs expanded
func NewExpandState(ids ...model.ID) ExpandState {
	s := ExpandState{ids: make(map[model.ID]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Has reports whether id is expanded
func (s ExpandState) Has(id model.ID) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of expanded IDs
func (s ExpandState) Len() int {
	return len(s.ids)
}

// IDs returns the expanded IDs in sorted order
func (s ExpandState) IDs() []model.ID {
	ids := make([]model.ID, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Equal reports whether both states expand exactly the same IDs
func (s ExpandState) Equal(other ExpandState) bool {
	if len(s.ids) != len(other.ids) {
		return false
	}
	for id := range s.ids {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

func (s ExpandState) with(id model.ID, expanded bool) ExpandState {
	if s.Has(id) == expanded {
		return s
	}

	next := ExpandState{ids: make(map[model.ID]struct{}, len(s.ids)+1)}
	for k := range s.ids {
		next.ids[k] = struct{}{}
	}
	if expanded {
		next.ids[id] = struct{}{}
	} else {
		delete(next.ids, id)
	}
	return next
}

// ToggleExpanded returns a new state with id removed if present, added otherwise
func ToggleExpanded(state ExpandState, id model.ID) ExpandState {
	return state.with(id, !state.Has(id))
}

// IsExpanded reports whether id is in the expanded set
func IsExpanded(state ExpandState, id model.ID) bool {
	return state.Has(id)
}

// Prune drops IDs that no longer exist in the forest. Flags of surviving
// nodes are kept, including collapsed descendants of collapsed nodes.
func Prune(state ExpandState, f *Forest) ExpandState {
	next := ExpandState{ids: make(map[model.ID]struct{}, len(state.ids))}
	if f == nil {
		return next
	}
	for id := range state.ids {
		if _, ok := f.Lookup(id); ok {
			next.ids[id] = struct{}{}
		}
	}
	return next
}
