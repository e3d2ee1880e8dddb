package cycles

import (
	"github.com/ritzau/finance-assistant/pkg/graph"
	"github.com/ritzau/finance-assistant/pkg/model"
)

// ParentCycle is a set of records whose parent references loop back on themselves
type ParentCycle struct {
	Records []model.ID // Members in input order
}

// FindParentCycles finds every parent cycle in the graph, including records
// that name themselves as parent. Cycles are ordered by their first member.
func FindParentCycles(pg *graph.ParentGraph) []ParentCycle {
	byFirst := make(map[int64]ParentCycle)

	for _, id := range pg.SelfLoops() {
		if nodeID, ok := pg.NodeID(id); ok {
			byFirst[nodeID] = ParentCycle{Records: []model.ID{id}}
		}
	}

	tarjan := NewTarjanSCC(pg.Graph())
	for _, scc := range tarjan.FindSCCs() {
		records := make([]model.ID, 0, len(scc))
		for _, nodeID := range scc {
			if id, ok := pg.RecordID(nodeID); ok {
				records = append(records, id)
			}
		}
		if len(records) > 1 {
			byFirst[scc[0]] = ParentCycle{Records: records}
		}
	}

	cycles := make([]ParentCycle, 0, len(byFirst))
	for nodeID := int64(0); nodeID < int64(pg.Len()); nodeID++ {
		if c, ok := byFirst[nodeID]; ok {
			cycles = append(cycles, c)
		}
	}
	return cycles
}
