package web

import (
	"net/http"

	"github.com/ritzau/finance-assistant/pkg/hierarchy"
	"github.com/ritzau/finance-assistant/pkg/model"
)

// TreeNode is the nested JSON form of a forest node
type TreeNode struct {
	ID       model.ID        `json:"id"`
	Name     string          `json:"name"`
	Parent   *model.ID       `json:"parent"`
	LinkData *model.LinkData `json:"link_data,omitempty"`
	Children []TreeNode      `json:"children"`
}

// TreeResponse is the body of GET /api/resources/{resource}/tree
type TreeResponse struct {
	Resource   string            `json:"resource"`
	Generation uint64            `json:"generation"`
	Roots      []TreeNode        `json:"roots"`
	Issues     []hierarchy.Issue `json:"issues"`
}

func buildTree(nodes []*hierarchy.Node) []TreeNode {
	out := make([]TreeNode, len(nodes))
	for i, n := range nodes {
		out[i] = TreeNode{
			ID:       n.ID(),
			Name:     n.Record.Name,
			Parent:   n.Record.Parent,
			LinkData: n.Record.LinkData,
			Children: buildTree(n.Children()),
		}
	}
	return out
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	res, err := s.resource(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	snap, err := s.snapshot(r.Context(), res)
	if err != nil {
		writeError(w, r, err)
		return
	}

	issues := snap.Forest.Issues()
	if issues == nil {
		issues = []hierarchy.Issue{}
	}
	writeJSON(w, http.StatusOK, TreeResponse{
		Resource:   res.Name,
		Generation: snap.Generation,
		Roots:      buildTree(snap.Forest.Roots()),
		Issues:     issues,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := s.resource(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	snap, err := s.runner.Refresh(r.Context(), res, "requested")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Summary())
}
