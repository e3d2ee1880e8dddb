// Package refresh fetches resources from the record store, rebuilds their
// hierarchies and installs the results for readers.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ritzau/finance-assistant/pkg/hierarchy"
	"github.com/ritzau/finance-assistant/pkg/logging"
	"github.com/ritzau/finance-assistant/pkg/model"
	"github.com/ritzau/finance-assistant/pkg/pubsub"
	"github.com/ritzau/finance-assistant/pkg/store"
	"github.com/ritzau/finance-assistant/pkg/watcher"
)

var log = logging.New("refresh")

// ErrStale is returned when a newer fetch of the same resource was started
// while this one ran. Its result was discarded.
var ErrStale = errors.New("superseded by a newer fetch")

// Snapshot is an installed forest and the fetch that produced it
type Snapshot struct {
	Resource   model.Resource
	Forest     *hierarchy.Forest
	Generation uint64
	Hash       string
	Changes    *hierarchy.Diff // Against the snapshot this one replaced
	BuiltAt    time.Time
}

// Summary describes the snapshot for change notifications
func (s *Snapshot) Summary() pubsub.HierarchySummary {
	issues := s.Forest.Issues()
	summary := pubsub.HierarchySummary{
		Resource:   s.Resource.Name,
		Records:    s.Forest.Len(),
		Roots:      len(s.Forest.Roots()),
		Generation: s.Generation,
		Changes:    s.Changes,
	}
	for _, issue := range issues {
		summary.Issues = append(summary.Issues, issue.String())
	}
	return summary
}

// Runner refreshes resources. Concurrent refreshes of one resource are
// allowed; only the most recently started one may install its result.
type Runner struct {
	store     store.RecordStore
	publisher pubsub.Publisher

	mu        sync.RWMutex
	issued    map[string]uint64 // resource -> newest fetch generation started
	snapshots map[string]*Snapshot
}

// NewRunner creates a runner. publisher may be nil when nobody listens.
func NewRunner(s store.RecordStore, publisher pubsub.Publisher) *Runner {
	return &Runner{
		store:     s,
		publisher: publisher,
		issued:    make(map[string]uint64),
		snapshots: make(map[string]*Snapshot),
	}
}

// Snapshot returns the installed snapshot of a resource, if any
func (r *Runner) Snapshot(resource string) (*Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.snapshots[resource]
	return s, ok
}

// Refresh fetches res, rebuilds its forest and installs it. On any failure
// the previously installed snapshot stays in place.
func (r *Runner) Refresh(ctx context.Context, res model.Resource, reason string) (*Snapshot, error) {
	r.mu.Lock()
	r.issued[res.Name]++
	gen := r.issued[res.Name]
	r.mu.Unlock()

	log.DebugContext(ctx, "refreshing", "resource", res.Name, "generation", gen, "reason", reason)

	records, err := r.store.List(ctx, res)
	if err != nil {
		err = fmt.Errorf("failed to fetch %s: %w", res.Name, err)
		log.ErrorContext(ctx, "refresh failed", "resource", res.Name, "generation", gen, "error", err)
		r.publishError(res, gen, err)
		return nil, err
	}

	forest, err := hierarchy.Build(records)
	if err != nil {
		err = fmt.Errorf("failed to build %s hierarchy: %w", res.Name, err)
		log.ErrorContext(ctx, "refresh failed", "resource", res.Name, "generation", gen, "error", err)
		r.publishError(res, gen, err)
		return nil, err
	}

	for _, issue := range forest.Issues() {
		log.WarnContext(ctx, "hierarchy issue", "resource", res.Name, "kind", string(issue.Kind), "issue", issue.String())
	}

	snap := &Snapshot{Resource: res, Forest: forest, Generation: gen, Hash: forest.Hash(), BuiltAt: time.Now()}

	r.mu.Lock()
	if r.issued[res.Name] != gen {
		newest := r.issued[res.Name]
		r.mu.Unlock()
		log.InfoContext(ctx, "discarding stale result", "resource", res.Name, "generation", gen, "newest", newest)
		return nil, ErrStale
	}
	var prevForest *hierarchy.Forest
	prev := r.snapshots[res.Name]
	if prev != nil {
		prevForest = prev.Forest
	}
	snap.Changes = hierarchy.ComputeDiff(prevForest, forest)
	r.snapshots[res.Name] = snap
	r.mu.Unlock()

	if prev != nil && prev.Hash == snap.Hash {
		log.DebugContext(ctx, "hierarchy unchanged", "resource", res.Name, "generation", gen)
		return snap, nil
	}

	log.InfoContext(ctx, "hierarchy rebuilt", "resource", res.Name, "records", forest.Len(), "roots", len(forest.Roots()),
		"added", len(snap.Changes.Added), "removed", len(snap.Changes.Removed), "modified", len(snap.Changes.Modified), "generation", gen)

	if r.publisher != nil {
		if err := r.publisher.Publish(pubsub.HierarchyTopic(res.Name), pubsub.EventRebuilt, snap.Summary()); err != nil {
			log.Warn("failed to publish rebuild", "resource", res.Name, "error", err)
		}
	}

	return snap, nil
}

// RefreshAll refreshes each resource in turn and returns the first error
func (r *Runner) RefreshAll(ctx context.Context, resources []model.Resource, reason string) error {
	var first error
	for _, res := range resources {
		if _, err := r.Refresh(ctx, res, reason); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Watch refreshes resources as change events arrive, until events closes or
// ctx is done
func (r *Runner) Watch(ctx context.Context, events <-chan watcher.ChangeEvent, resources []model.Resource) {
	known := make([]string, len(resources))
	byName := make(map[string]model.Resource, len(resources))
	for i, res := range resources {
		known[i] = res.Name
		byName[res.Name] = res
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}

			changes := watcher.AnalyzeChanges([]watcher.ChangeEvent{event}, known)
			if changes.Empty() {
				continue
			}
			for _, name := range changes.Resources {
				log.Info("snapshot changed", "resource", name, "files", len(changes.ChangedFiles))
				// Errors are logged and published by Refresh
				r.Refresh(ctx, byName[name], "snapshot changed")
			}
		}
	}
}

func (r *Runner) publishError(res model.Resource, gen uint64, err error) {
	if r.publisher == nil {
		return
	}
	payload := pubsub.RefreshError{Resource: res.Name, Message: err.Error(), Generation: gen}
	if perr := r.publisher.Publish(pubsub.HierarchyTopic(res.Name), pubsub.EventError, payload); perr != nil {
		log.Warn("failed to publish refresh error", "resource", res.Name, "error", perr)
	}
}
