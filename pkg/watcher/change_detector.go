package watcher

import "slices"

// ChangeAnalysis lists the resources a batch of events invalidates
type ChangeAnalysis struct {
	Resources    []string
	ChangedFiles []string
}

// Empty reports whether nothing needs refreshing
func (a *ChangeAnalysis) Empty() bool {
	return len(a.Resources) == 0
}

// AnalyzeChanges folds events into the set of resources to rebuild, in the
// order they first changed. Resources not in known are ignored.
func AnalyzeChanges(events []ChangeEvent, known []string) *ChangeAnalysis {
	analysis := &ChangeAnalysis{}
	for _, e := range events {
		if !slices.Contains(known, e.Resource) {
			continue
		}
		if !slices.Contains(analysis.Resources, e.Resource) {
			analysis.Resources = append(analysis.Resources, e.Resource)
		}
		analysis.ChangedFiles = append(analysis.ChangedFiles, e.Paths...)
	}
	return analysis
}
