// Package web serves hierarchies, expand/collapse views and record mutations
// over HTTP, plus change notifications over SSE.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/ritzau/finance-assistant/pkg/layout"
	"github.com/ritzau/finance-assistant/pkg/logging"
	"github.com/ritzau/finance-assistant/pkg/model"
	"github.com/ritzau/finance-assistant/pkg/pubsub"
	"github.com/ritzau/finance-assistant/pkg/refresh"
	"github.com/ritzau/finance-assistant/pkg/store"
)

//go:embed static/*
var staticFiles embed.FS

var log = logging.New("web")

// ErrUnknownResource is returned for resources the server was not configured with
var ErrUnknownResource = errors.New("unknown resource")

// DefaultPlugin is the budgeting plugin records are linked against
const DefaultPlugin = "ynab"

// Options wires the server to its collaborators. Links and Layouts may be
// nil; the corresponding routes then answer 501.
type Options struct {
	Resources []model.Resource
	Store     store.RecordStore
	Links     store.LinkService
	Layouts   layout.Store
	Runner    *refresh.Runner
	Publisher pubsub.Publisher
	Plugin    string
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	resources map[string]model.Resource
	order     []model.Resource
	store     store.RecordStore
	links     store.LinkService
	layouts   layout.Store
	runner    *refresh.Runner
	publisher pubsub.Publisher
	plugin    string

	mu    sync.Mutex
	views map[string]*view
}

// NewServer creates a new web server
func NewServer(opts Options) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		resources: make(map[string]model.Resource, len(opts.Resources)),
		order:     opts.Resources,
		store:     opts.Store,
		links:     opts.Links,
		layouts:   opts.Layouts,
		runner:    opts.Runner,
		publisher: opts.Publisher,
		plugin:    opts.Plugin,
		views:     make(map[string]*view),
	}
	if s.plugin == "" {
		s.plugin = DefaultPlugin
	}
	for _, r := range opts.Resources {
		s.resources[r.Name] = r
	}
	s.setupRoutes()
	return s
}

// Handler returns the root handler including request logging
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// SSE subscription endpoint
	api.HandleFunc("/subscribe/{resource}", s.handleSubscribe).Methods("GET")

	api.HandleFunc("/resources", s.handleResources).Methods("GET")
	api.HandleFunc("/resources/{resource}/tree", s.handleTree).Methods("GET")
	api.HandleFunc("/resources/{resource}/refresh", s.handleRefresh).Methods("POST")
	api.HandleFunc("/resources/{resource}/unlinked", s.handleUnlinked).Methods("GET")
	api.HandleFunc("/resources/{resource}/views", s.handleCreateView).Methods("POST")

	api.HandleFunc("/views/{view}", s.handleDeleteView).Methods("DELETE")
	api.HandleFunc("/views/{view}/rows", s.handleRows).Methods("GET")
	api.HandleFunc("/views/{view}/toggle/{id}", s.handleToggle).Methods("POST")
	api.HandleFunc("/views/{view}/actions", s.handleAction).Methods("POST")

	api.HandleFunc("/resources/{resource}/records", s.handleCreateRecord).Methods("POST")
	api.HandleFunc("/resources/{resource}/records/{id}", s.handleUpdateRecord).Methods("PUT")
	api.HandleFunc("/resources/{resource}/records/{id}", s.handleDeleteRecord).Methods("DELETE")
	api.HandleFunc("/resources/{resource}/records/{id}/link", s.handleCreateLink).Methods("POST")
	api.HandleFunc("/links/{link}", s.handleDeleteLink).Methods("DELETE")

	api.HandleFunc("/layouts/{key}", s.handleGetLayout).Methods("GET")
	api.HandleFunc("/layouts/{key}", s.handlePutLayout).Methods("PUT")

	// Serve static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

func (s *Server) resource(r *http.Request) (model.Resource, error) {
	name := mux.Vars(r)["resource"]
	res, ok := s.resources[name]
	if !ok {
		return model.Resource{}, fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	return res, nil
}

// snapshot returns the installed snapshot, fetching it on first use
func (s *Server) snapshot(ctx context.Context, res model.Resource) (*refresh.Snapshot, error) {
	if snap, ok := s.runner.Snapshot(res.Name); ok {
		return snap, nil
	}

	snap, err := s.runner.Refresh(ctx, res, "first request")
	if errors.Is(err, refresh.ErrStale) {
		// A concurrent fetch won; use whatever it installed
		if snap, ok := s.runner.Snapshot(res.Name); ok {
			return snap, nil
		}
	}
	return snap, err
}

// invalidate refetches a resource after a mutation. The mutation already
// succeeded, so a failed refetch is only logged.
func (s *Server) invalidate(ctx context.Context, res model.Resource, reason string) {
	if _, err := s.runner.Refresh(ctx, res, reason); err != nil && !errors.Is(err, refresh.ErrStale) {
		log.WarnContext(ctx, "refetch after mutation failed", "resource", res.Name, "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.order)
}

// Run serves on port until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, port int) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Streams end with ctx so Shutdown does not wait on open subscriptions
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
