// Package finder locates record snapshots on disk.
package finder

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Snapshot is a <resource>.json file found in a snapshot directory
type Snapshot struct {
	Resource string
	Path     string
}

// FindSnapshots returns the .json files directly inside dir, sorted by
// resource name. Subdirectories (archives, exports in progress) are skipped.
func FindSnapshots(dir string) ([]Snapshot, error) {
	var snapshots []Snapshot

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		// Editors leave hidden swap and backup files next to the snapshots
		if filepath.Ext(path) != ".json" || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		snapshots = append(snapshots, Snapshot{
			Resource: strings.TrimSuffix(d.Name(), ".json"),
			Path:     path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// WalkDir visits in lexical order, so the result is already sorted
	return snapshots, nil
}

// Missing returns the names in want that have no snapshot
func Missing(snapshots []Snapshot, want []string) []string {
	have := make(map[string]bool, len(snapshots))
	for _, s := range snapshots {
		have[s.Resource] = true
	}

	var missing []string
	for _, name := range want {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
