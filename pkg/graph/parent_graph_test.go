package graph

import (
	"testing"

	"github.com/ritzau/finance-assistant/pkg/model"
)

func TestNewParentGraph(t *testing.T) {
	pg := NewParentGraph()
	if pg == nil {
		t.Fatal("NewParentGraph() returned nil")
	}

	if pg.Len() != 0 {
		t.Errorf("New graph should have 0 records, got %d", pg.Len())
	}
}

func TestAddRecord(t *testing.T) {
	pg := NewParentGraph()

	pg.AddRecord("1")
	pg.AddRecord("1")

	if pg.Len() != 1 {
		t.Errorf("Expected 1 record, got %d", pg.Len())
	}

	nodeID, ok := pg.NodeID("1")
	if !ok {
		t.Fatal("Record not found in graph")
	}

	id, ok := pg.RecordID(nodeID)
	if !ok || id != "1" {
		t.Errorf("Expected record 1 for node %d, got %q", nodeID, id)
	}
}

func TestAddParent(t *testing.T) {
	pg := NewParentGraph()
	pg.AddRecord("1")
	pg.AddRecord("2")

	if !pg.AddParent("2", "1") {
		t.Fatal("AddParent(2, 1) should resolve")
	}
	if pg.AddParent("2", "99") {
		t.Error("AddParent to an unknown parent should not resolve")
	}

	parent, ok := pg.Parent("2")
	if !ok || parent != "1" {
		t.Errorf("Expected parent 1, got %q", parent)
	}

	if _, ok := pg.Parent("1"); ok {
		t.Error("Record 1 should have no parent")
	}
}

func TestSelfParentIsNotAnEdge(t *testing.T) {
	pg := BuildParentGraph([]model.Record{
		{ID: "1", Name: "loop", Parent: model.Ref("1")},
	})

	if pg.Graph().Edges().Len() != 0 {
		t.Errorf("Expected no edges, got %d", pg.Graph().Edges().Len())
	}

	loops := pg.SelfLoops()
	if len(loops) != 1 || loops[0] != "1" {
		t.Errorf("Expected self loop on 1, got %v", loops)
	}
}

func TestBuildParentGraph(t *testing.T) {
	pg := BuildParentGraph([]model.Record{
		{ID: "3", Name: "C", Parent: model.Ref("1")},
		{ID: "1", Name: "A"},
		{ID: "2", Name: "B", Parent: model.Ref("1")},
		{ID: "5", Name: "Orphan", Parent: model.Ref("99")},
	})

	if pg.Len() != 4 {
		t.Fatalf("Expected 4 records, got %d", pg.Len())
	}

	// Graph IDs follow input order
	if nodeID, _ := pg.NodeID("3"); nodeID != 0 {
		t.Errorf("Expected record 3 to get graph ID 0, got %d", nodeID)
	}

	if pg.Graph().Edges().Len() != 2 {
		t.Errorf("Expected 2 edges, got %d", pg.Graph().Edges().Len())
	}

	if _, ok := pg.Parent("5"); ok {
		t.Error("Orphan reference should not become an edge")
	}
}
