package web

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ritzau/finance-assistant/pkg/model"
	"github.com/ritzau/finance-assistant/pkg/store"
)

type linkRequest struct {
	PluginID model.ID `json:"plugin_id"`
}

// LinkResponse is returned after linking a record
type LinkResponse struct {
	ID   model.ID   `json:"id"`
	Link store.Link `json:"link"`
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	res, err := s.resource(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in store.RecordInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	rec, err := s.store.Create(r.Context(), res, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.InfoContext(r.Context(), "record created", "resource", res.Name, "id", rec.ID.String())
	s.invalidate(r.Context(), res, "record created")
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	res, err := s.resource(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := model.ID(mux.Vars(r)["id"])

	var in store.RecordInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	rec, err := s.store.Update(r.Context(), res, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.InfoContext(r.Context(), "record updated", "resource", res.Name, "id", id.String())
	s.invalidate(r.Context(), res, "record updated")
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	res, err := s.resource(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := model.ID(mux.Vars(r)["id"])

	if err := s.store.Delete(r.Context(), res, id); err != nil {
		writeError(w, r, err)
		return
	}

	log.InfoContext(r.Context(), "record deleted", "resource", res.Name, "id", id.String())
	s.invalidate(r.Context(), res, "record deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	if s.links == nil {
		writeError(w, r, fmt.Errorf("link service %w", errNotConfigured))
		return
	}

	res, err := s.resource(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := model.ID(mux.Vars(r)["id"])

	var req linkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.PluginID == "" {
		writeError(w, r, fmt.Errorf("%w: plugin_id is required", errBadRequest))
		return
	}

	link := store.NewLink(res, id, req.PluginID)
	linkID, err := s.links.CreateLink(r.Context(), link)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.InfoContext(r.Context(), "record linked", "resource", res.Name, "id", id.String(), "link", linkID.String())
	s.invalidate(r.Context(), res, "record linked")
	writeJSON(w, http.StatusCreated, LinkResponse{ID: linkID, Link: link})
}

func (s *Server) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	if s.links == nil {
		writeError(w, r, fmt.Errorf("link service %w", errNotConfigured))
		return
	}

	linkID := model.ID(mux.Vars(r)["link"])
	if err := s.links.DeleteLink(r.Context(), linkID); err != nil {
		writeError(w, r, err)
		return
	}

	log.InfoContext(r.Context(), "link removed", "link", linkID.String())

	// The link id does not say which resource it belonged to
	for _, res := range s.order {
		s.invalidate(r.Context(), res, "link removed")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnlinked(w http.ResponseWriter, r *http.Request) {
	if s.links == nil {
		writeError(w, r, fmt.Errorf("link service %w", errNotConfigured))
		return
	}

	res, err := s.resource(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	records, err := s.links.ListUnlinked(r.Context(), s.plugin, res.PluginType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
