// Package watcher turns file system activity in the snapshot directory into
// per-resource change events.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ritzau/finance-assistant/pkg/logging"
	"github.com/ritzau/finance-assistant/pkg/model"
)

var log = logging.New("watcher")

// batchWindow groups the write bursts editors and exporters produce for one save
const batchWindow = 100 * time.Millisecond

// ChangeEvent is a batch of changes to one resource snapshot
type ChangeEvent struct {
	Resource  string
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches a snapshot directory for <resource>.json changes
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	dir       string
	resources map[string]model.Resource // file name -> resource
	events    chan ChangeEvent
}

// NewFileWatcher creates a watcher for the snapshots of resources in dir
func NewFileWatcher(dir string, resources []model.Resource) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	byFile := make(map[string]model.Resource, len(resources))
	for _, r := range resources {
		byFile[r.Path+".json"] = r
	}

	return &FileWatcher{
		watcher:   watcher,
		dir:       dir,
		resources: byFile,
		events:    make(chan ChangeEvent, 16),
	}, nil
}

// Start begins watching. The event channel is closed when ctx is done.
func (fw *FileWatcher) Start(ctx context.Context) error {
	// Watch the directory rather than the files so atomic rename-over saves
	// keep being observed
	if err := fw.watcher.Add(fw.dir); err != nil {
		fw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", fw.dir, err)
	}

	log.Info("watching snapshots", "path", fw.dir, "resources", len(fw.resources))

	go fw.processEvents(ctx)
	return nil
}

// resourceFor maps an fsnotify event to the resource it touches, if any
func (fw *FileWatcher) resourceFor(event fsnotify.Event) (model.Resource, bool) {
	if event.Op == fsnotify.Chmod {
		return model.Resource{}, false
	}
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, ".json") {
		return model.Resource{}, false
	}
	r, ok := fw.resources[name]
	return r, ok
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.watcher.Close()

	pending := make(map[string][]string)

	flushTimer := time.NewTimer(batchWindow)
	flushTimer.Stop()

	flush := func() {
		for resource, paths := range pending {
			select {
			case fw.events <- ChangeEvent{Resource: resource, Paths: paths, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
		clear(pending)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			r, ok := fw.resourceFor(event)
			if !ok {
				continue
			}
			log.Debug("snapshot changed", "resource", r.Name, "op", event.Op.String(), "path", event.Name)
			pending[r.Name] = appendUnique(pending[r.Name], event.Name)
			flushTimer.Reset(batchWindow)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

func appendUnique(paths []string, path string) []string {
	for _, p := range paths {
		if p == path {
			return paths
		}
	}
	return append(paths, path)
}
