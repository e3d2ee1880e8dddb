package graph

import (
	"github.com/ritzau/finance-assistant/pkg/model"
	"gonum.org/v1/gonum/graph/simple"
)

// ParentGraph holds the child -> parent references of a record set as a
// directed graph. Only references that resolve to another record are edges;
// self references are kept aside since simple graphs reject self loops.
type ParentGraph struct {
	graph     *simple.DirectedGraph
	ids       map[model.ID]int64 // Map from record ID to graph ID
	records   []model.ID         // Graph ID -> record ID (graph IDs follow input order)
	selfLoops []model.ID         // Records that name themselves as parent
}

// NewParentGraph creates an empty parent graph
func NewParentGraph() *ParentGraph {
	return &ParentGraph{
		graph: simple.NewDirectedGraph(),
		ids:   make(map[model.ID]int64),
	}
}

// AddRecord adds a record node to the graph. Adding an ID twice is a no-op.
func (pg *ParentGraph) AddRecord(id model.ID) {
	if _, exists := pg.ids[id]; exists {
		return
	}

	nodeID := int64(len(pg.records))
	pg.ids[id] = nodeID
	pg.records = append(pg.records, id)
	pg.graph.AddNode(simple.Node(nodeID))
}

// AddParent adds a child -> parent edge. It returns false if either record is
// unknown; self references are recorded but do not become edges.
func (pg *ParentGraph) AddParent(child, parent model.ID) bool {
	childID, ok := pg.ids[child]
	if !ok {
		return false
	}
	parentID, ok := pg.ids[parent]
	if !ok {
		return false
	}

	if childID == parentID {
		pg.selfLoops = append(pg.selfLoops, child)
		return true
	}

	if !pg.graph.HasEdgeFromTo(childID, parentID) {
		pg.graph.SetEdge(pg.graph.NewEdge(pg.graph.Node(childID), pg.graph.Node(parentID)))
	}
	return true
}

// NodeID returns the graph ID of a record
func (pg *ParentGraph) NodeID(id model.ID) (int64, bool) {
	nodeID, ok := pg.ids[id]
	return nodeID, ok
}

// RecordID returns the record ID behind a graph ID
func (pg *ParentGraph) RecordID(nodeID int64) (model.ID, bool) {
	if nodeID < 0 || nodeID >= int64(len(pg.records)) {
		return "", false
	}
	return pg.records[nodeID], true
}

// Graph returns the underlying directed graph
func (pg *ParentGraph) Graph() *simple.DirectedGraph {
	return pg.graph
}

// SelfLoops returns the records that reference themselves as parent
func (pg *ParentGraph) SelfLoops() []model.ID {
	return pg.selfLoops
}

// Len returns the number of records in the graph
func (pg *ParentGraph) Len() int {
	return len(pg.records)
}

// Parent returns the resolved parent of a record, if any
func (pg *ParentGraph) Parent(id model.ID) (model.ID, bool) {
	nodeID, ok := pg.ids[id]
	if !ok {
		return "", false
	}

	iter := pg.graph.From(nodeID)
	for iter.Next() {
		return pg.RecordID(iter.Node().ID())
	}
	return "", false
}

// BuildParentGraph builds the parent graph for a record set. Duplicate IDs
// collapse into the first occurrence; callers that care must check first.
func BuildParentGraph(records []model.Record) *ParentGraph {
	pg := NewParentGraph()

	for _, r := range records {
		pg.AddRecord(r.ID)
	}

	for _, r := range records {
		if r.Parent != nil {
			pg.AddParent(r.ID, *r.Parent)
		}
	}

	return pg
}
