package cycles

import (
	"testing"

	"github.com/ritzau/finance-assistant/pkg/graph"
	"github.com/ritzau/finance-assistant/pkg/model"
)

func rec(id, parent string) model.Record {
	r := model.Record{ID: model.ID(id), Name: "rec " + id}
	if parent != "" {
		r.Parent = model.Ref(model.ID(parent))
	}
	return r
}

func TestFindParentCycles_NoCycles(t *testing.T) {
	// a <- b <- c
	pg := graph.BuildParentGraph([]model.Record{
		rec("a", ""),
		rec("b", "a"),
		rec("c", "b"),
	})

	cycles := FindParentCycles(pg)

	if len(cycles) != 0 {
		t.Errorf("Expected no cycles, but found %d", len(cycles))
	}
}

func TestFindParentCycles_SimpleCycle(t *testing.T) {
	pg := graph.BuildParentGraph([]model.Record{
		rec("a", "b"),
		rec("b", "a"),
	})

	cycles := FindParentCycles(pg)

	if len(cycles) != 1 {
		t.Fatalf("Expected 1 cycle, but found %d", len(cycles))
	}

	got := cycles[0].Records
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Expected cycle [a b] in input order, got %v", got)
	}
}

func TestFindParentCycles_SelfParent(t *testing.T) {
	pg := graph.BuildParentGraph([]model.Record{
		rec("root", ""),
		rec("loop", "loop"),
	})

	cycles := FindParentCycles(pg)

	if len(cycles) != 1 {
		t.Fatalf("Expected 1 cycle, but found %d", len(cycles))
	}
	if len(cycles[0].Records) != 1 || cycles[0].Records[0] != "loop" {
		t.Errorf("Expected self cycle [loop], got %v", cycles[0].Records)
	}
}

func TestFindParentCycles_MultipleCycles(t *testing.T) {
	// Cycle 1: c -> d -> e -> c, listed first in input
	// Cycle 2: a -> b -> a
	pg := graph.BuildParentGraph([]model.Record{
		rec("c", "d"),
		rec("d", "e"),
		rec("e", "c"),
		rec("a", "b"),
		rec("b", "a"),
	})

	cycles := FindParentCycles(pg)

	if len(cycles) != 2 {
		t.Fatalf("Expected 2 cycles, but found %d", len(cycles))
	}
	if len(cycles[0].Records) != 3 || cycles[0].Records[0] != "c" {
		t.Errorf("Expected first cycle to start at c with 3 members, got %v", cycles[0].Records)
	}
	if len(cycles[1].Records) != 2 || cycles[1].Records[0] != "a" {
		t.Errorf("Expected second cycle to start at a with 2 members, got %v", cycles[1].Records)
	}
}

func TestFindParentCycles_TailIntoCycle(t *testing.T) {
	// x hangs off the a <-> b loop but is not part of it
	pg := graph.BuildParentGraph([]model.Record{
		rec("x", "a"),
		rec("a", "b"),
		rec("b", "a"),
	})

	cycles := FindParentCycles(pg)

	if len(cycles) != 1 {
		t.Fatalf("Expected 1 cycle, but found %d", len(cycles))
	}
	for _, id := range cycles[0].Records {
		if id == "x" {
			t.Errorf("Record x should not be part of the cycle: %v", cycles[0].Records)
		}
	}
}
