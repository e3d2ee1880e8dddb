package web

import (
	"fmt"
	"net/http"

	"github.com/ritzau/finance-assistant/pkg/pubsub"
)

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	res, err := s.resource(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if s.publisher == nil {
		writeError(w, r, fmt.Errorf("publisher %w", errNotConfigured))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := s.publisher.Subscribe(r.Context(), pubsub.HierarchyTopic(res.Name))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Initial comment establishes the stream (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				log.Debug("SSE client went away", "resource", res.Name, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
