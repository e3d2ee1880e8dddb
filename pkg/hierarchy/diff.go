package hierarchy

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/ritzau/finance-assistant/pkg/model"
)

// Diff lists the records that changed between two forests
type Diff struct {
	Added    []model.ID `json:"added"`
	Removed  []model.ID `json:"removed"`
	Modified []model.ID `json:"modified"` // Renamed, moved or relinked
	Full     bool       `json:"full"`     // No previous forest; everything is new
}

// Empty reports whether nothing changed
func (d *Diff) Empty() bool {
	return !d.Full && len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// ComputeDiff compares a previous forest with a new one. Added and modified
// records are listed in the new forest's pre-order, removed ones in the old
// forest's.
func ComputeDiff(old, next *Forest) *Diff {
	diff := &Diff{
		Added:    make([]model.ID, 0),
		Removed:  make([]model.ID, 0),
		Modified: make([]model.ID, 0),
	}

	if next != nil {
		next.Walk(func(n *Node) bool {
			if old == nil {
				diff.Added = append(diff.Added, n.ID())
				return true
			}
			prev, ok := old.Lookup(n.ID())
			switch {
			case !ok:
				diff.Added = append(diff.Added, n.ID())
			case !nodesEqual(prev, n):
				diff.Modified = append(diff.Modified, n.ID())
			}
			return true
		})
	}

	if old == nil {
		diff.Full = true
		return diff
	}

	old.Walk(func(n *Node) bool {
		if next == nil {
			diff.Removed = append(diff.Removed, n.ID())
			return true
		}
		if _, ok := next.Lookup(n.ID()); !ok {
			diff.Removed = append(diff.Removed, n.ID())
		}
		return true
	})

	return diff
}

// nodesEqual compares what a rendered row shows: name, placement and link
func nodesEqual(a, b *Node) bool {
	return a.Record.Name == b.Record.Name &&
		parentID(a) == parentID(b) &&
		linkKey(a.Record) == linkKey(b.Record)
}

// parentID is the effective parent after orphan and cycle promotion
func parentID(n *Node) model.ID {
	if p := n.Parent(); p != nil {
		return p.ID()
	}
	return ""
}

func linkKey(r model.Record) string {
	if !r.Linked() {
		return ""
	}
	return fmt.Sprintf("%s|%s", r.LinkData.ID, r.LinkData.PluginRecord.Name)
}

// Hash returns a content hash of the forest in pre-order. Equal hashes mean
// an identical rendering for every expand state.
func (f *Forest) Hash() string {
	type entry struct {
		ID     model.ID
		Name   string
		Parent model.ID
		Link   string
	}

	entries := make([]entry, 0, f.Len())
	f.Walk(func(n *Node) bool {
		entries = append(entries, entry{n.ID(), n.Record.Name, parentID(n), linkKey(n.Record)})
		return true
	})

	data, err := json.Marshal(entries)
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
