package web

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ritzau/finance-assistant/pkg/layout"
)

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	if s.layouts == nil {
		writeError(w, r, fmt.Errorf("layout store %w", errNotConfigured))
		return
	}

	cfg, err := s.layouts.Get(mux.Vars(r)["key"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Unknown keys answer null so clients fall back to their defaults
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handlePutLayout(w http.ResponseWriter, r *http.Request) {
	if s.layouts == nil {
		writeError(w, r, fmt.Errorf("layout store %w", errNotConfigured))
		return
	}

	var cfg layout.Config
	if err := decodeBody(r, &cfg); err != nil {
		writeError(w, r, err)
		return
	}

	key := mux.Vars(r)["key"]
	if err := s.layouts.Put(key, cfg); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
