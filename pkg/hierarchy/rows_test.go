package hierarchy

import (
	"testing"

	"github.com/ritzau/finance-assistant/pkg/model"
)

type rowKey struct {
	id    model.ID
	depth int
}

func keys(rows []Row) []rowKey {
	out := make([]rowKey, len(rows))
	for i, r := range rows {
		out[i] = rowKey{r.Node.ID(), r.Depth}
	}
	return out
}

func equalKeys(a, b []rowKey) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRows_Collapsed(t *testing.T) {
	f, _ := Build([]model.Record{
		rec("1", "", "A"),
		rec("2", "1", "B"),
		rec("3", "1", "C"),
	})

	rows := Rows(f, ExpandState{})
	want := []rowKey{{"1", 0}}
	if got := keys(rows); !equalKeys(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if !rows[0].HasChildren || rows[0].Expanded {
		t.Errorf("Expected collapsed row with children, got %+v", rows[0])
	}
}

func TestRows_Expanded(t *testing.T) {
	f, _ := Build([]model.Record{
		rec("1", "", "A"),
		rec("2", "1", "B"),
		rec("3", "1", "C"),
	})

	rows := Rows(f, NewExpandState("1"))
	want := []rowKey{{"1", 0}, {"2", 1}, {"3", 1}}
	if got := keys(rows); !equalKeys(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestRows_PreOrder(t *testing.T) {
	f, _ := Build([]model.Record{
		rec("a", "", "A"),
		rec("b", "", "B"),
		rec("a1", "a", "A1"),
		rec("a1x", "a1", "A1x"),
		rec("a2", "a", "A2"),
		rec("b1", "b", "B1"),
	})

	rows := Rows(f, NewExpandState("a", "a1", "b"))
	want := []rowKey{{"a", 0}, {"a1", 1}, {"a1x", 2}, {"a2", 1}, {"b", 0}, {"b1", 1}}
	if got := keys(rows); !equalKeys(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestRows_CollapseHidesSubtree(t *testing.T) {
	f, _ := Build([]model.Record{
		rec("1", "", "A"),
		rec("2", "1", "B"),
		rec("3", "2", "C"),
		rec("4", "3", "D"),
	})

	// Everything below 1 is flagged expanded, but 1 itself is collapsed
	state := NewExpandState("2", "3")
	if got := keys(Rows(f, state)); !equalKeys(got, []rowKey{{"1", 0}}) {
		t.Errorf("Collapsed root should hide all descendants, got %v", got)
	}

	expanded := Reduce(state, Expand{ID: "1"})
	want := []rowKey{{"1", 0}, {"2", 1}, {"3", 2}, {"4", 3}}
	if got := keys(Rows(f, expanded)); !equalKeys(got, want) {
		t.Errorf("Re-expanding should restore previous descendants, got %v", got)
	}

	collapsed := Reduce(expanded, Collapse{ID: "1"})
	if got := keys(Rows(f, collapsed)); !equalKeys(got, []rowKey{{"1", 0}}) {
		t.Errorf("Collapse should hide the subtree again, got %v", got)
	}

	restored := Reduce(collapsed, Expand{ID: "1"})
	if got := keys(Rows(f, restored)); !equalKeys(got, want) {
		t.Errorf("Expected %v after re-expand, got %v", want, got)
	}
}

func TestRows_PartialChainHidden(t *testing.T) {
	f, _ := Build([]model.Record{
		rec("1", "", "A"),
		rec("2", "1", "B"),
		rec("3", "2", "C"),
	})

	// 3's parent 2 is collapsed, so 3 stays hidden even though 1 is expanded
	rows := Rows(f, NewExpandState("1"))
	want := []rowKey{{"1", 0}, {"2", 1}}
	if got := keys(rows); !equalKeys(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestRows_NilForest(t *testing.T) {
	if rows := Rows(nil, ExpandState{}); rows != nil {
		t.Errorf("Expected nil rows, got %v", rows)
	}
}
