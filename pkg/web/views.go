package web

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/ritzau/finance-assistant/pkg/hierarchy"
	"github.com/ritzau/finance-assistant/pkg/model"
	"github.com/ritzau/finance-assistant/pkg/refresh"
)

// view is one client's expand/collapse state over a resource. Views live in
// memory only; a restart resets every view to fully collapsed.
type view struct {
	id         string
	resource   model.Resource
	state      hierarchy.ExpandState
	generation uint64 // Snapshot generation the state was last pruned against
}

// RowJSON is one line of the flattened projection
type RowJSON struct {
	ID          model.ID        `json:"id"`
	Name        string          `json:"name"`
	Depth       int             `json:"depth"`
	Expanded    bool            `json:"expanded"`
	HasChildren bool            `json:"has_children"`
	LinkData    *model.LinkData `json:"link_data,omitempty"`
}

// ViewResponse is returned by every view route
type ViewResponse struct {
	View       string     `json:"view"`
	Resource   string     `json:"resource"`
	Generation uint64     `json:"generation"`
	Expanded   []model.ID `json:"expanded"`
	Rows       []RowJSON  `json:"rows"`
}

type actionRequest struct {
	Action string   `json:"action"`
	ID     model.ID `json:"id,omitempty"`
}

// Action names accepted by POST /api/views/{view}/actions
const (
	ActionExpand      = "expand"
	ActionCollapse    = "collapse"
	ActionExpandAll   = "expand_all"
	ActionCollapseAll = "collapse_all"
	ActionReset       = "reset"
)

func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
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

	v := &view{
		id:         uuid.New().String(),
		resource:   res,
		state:      hierarchy.NewExpandState(),
		generation: snap.Generation,
	}

	s.mu.Lock()
	s.views[v.id] = v
	resp := s.viewResponse(v, snap)
	s.mu.Unlock()

	log.DebugContext(r.Context(), "view created", "view", v.id, "resource", res.Name)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["view"]

	s.mu.Lock()
	_, ok := s.views[id]
	delete(s.views, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, r, fmt.Errorf("%w: %s", errUnknownView, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	s.updateView(w, r, func(_ *hierarchy.Forest, state hierarchy.ExpandState) (hierarchy.ExpandState, error) {
		return state, nil
	})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := model.ID(mux.Vars(r)["id"])
	s.updateView(w, r, func(f *hierarchy.Forest, state hierarchy.ExpandState) (hierarchy.ExpandState, error) {
		if _, ok := f.Lookup(id); !ok {
			return state, fmt.Errorf("%w: %s", errUnknownNode, id)
		}
		return hierarchy.Reduce(state, hierarchy.Toggle{ID: id}), nil
	})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	s.updateView(w, r, func(f *hierarchy.Forest, state hierarchy.ExpandState) (hierarchy.ExpandState, error) {
		var action hierarchy.Action
		switch req.Action {
		case ActionExpand:
			action = hierarchy.Expand{ID: req.ID}
		case ActionCollapse:
			action = hierarchy.Collapse{ID: req.ID}
		case ActionExpandAll:
			action = hierarchy.ExpandAll{Forest: f}
		case ActionCollapseAll:
			action = hierarchy.CollapseAll{}
		case ActionReset:
			action = hierarchy.Reset{}
		default:
			return state, fmt.Errorf("%w: unknown action %q", errBadRequest, req.Action)
		}

		if req.Action == ActionExpand || req.Action == ActionCollapse {
			if _, ok := f.Lookup(req.ID); !ok {
				return state, fmt.Errorf("%w: %s", errUnknownNode, req.ID)
			}
		}
		return hierarchy.Reduce(state, action), nil
	})
}

// updateView applies fn to a view's state against the current snapshot and
// responds with the resulting rows
func (s *Server) updateView(w http.ResponseWriter, r *http.Request, fn func(*hierarchy.Forest, hierarchy.ExpandState) (hierarchy.ExpandState, error)) {
	id := mux.Vars(r)["view"]

	s.mu.Lock()
	v, ok := s.views[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, r, fmt.Errorf("%w: %s", errUnknownView, id))
		return
	}

	snap, err := s.snapshot(r.Context(), v.resource)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneView(v, snap)
	next, err := fn(snap.Forest, v.state)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v.state = next

	writeJSON(w, http.StatusOK, s.viewResponse(v, snap))
}

// pruneView prunes a view's state after the forest was rebuilt. A snapshot
// older than the one the view last saw is ignored. Caller holds s.mu.
func (s *Server) pruneView(v *view, snap *refresh.Snapshot) {
	if snap.Generation <= v.generation {
		return
	}
	v.state = hierarchy.Prune(v.state, snap.Forest)
	v.generation = snap.Generation
}

// viewResponse renders a view. Caller holds s.mu.
func (s *Server) viewResponse(v *view, snap *refresh.Snapshot) ViewResponse {
	rows := hierarchy.Rows(snap.Forest, v.state)
	out := make([]RowJSON, len(rows))
	for i, row := range rows {
		out[i] = RowJSON{
			ID:          row.Node.ID(),
			Name:        row.Node.Record.Name,
			Depth:       row.Depth,
			Expanded:    row.Expanded,
			HasChildren: row.HasChildren,
			LinkData:    row.Node.Record.LinkData,
		}
	}
	return ViewResponse{
		View:       v.id,
		Resource:   v.resource.Name,
		Generation: snap.Generation,
		Expanded:   v.state.IDs(),
		Rows:       out,
	}
}
