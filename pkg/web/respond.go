package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ritzau/finance-assistant/pkg/hierarchy"
	"github.com/ritzau/finance-assistant/pkg/layout"
	"github.com/ritzau/finance-assistant/pkg/store"
)

// maxBodyBytes bounds request bodies; records and layouts are tiny
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var statusErr *store.StatusError
	switch {
	case errors.Is(err, ErrUnknownResource), errors.Is(err, errUnknownView),
		errors.Is(err, errUnknownNode), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidInput), errors.Is(err, errBadRequest),
		errors.Is(err, layout.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrReadOnly):
		return http.StatusMethodNotAllowed
	case errors.Is(err, errNotConfigured):
		return http.StatusNotImplemented
	case errors.Is(err, hierarchy.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, hierarchy.ErrMissingID):
		return http.StatusBadGateway
	case errors.As(err, &statusErr):
		if statusErr.Status >= 400 && statusErr.Status < 500 {
			return statusErr.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

var (
	errUnknownView   = errors.New("unknown view")
	errUnknownNode   = errors.New("unknown node")
	errBadRequest    = errors.New("bad request")
	errNotConfigured = errors.New("not configured")
)
