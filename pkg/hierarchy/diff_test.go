package hierarchy

import (
	"testing"

	"github.com/ritzau/finance-assistant/pkg/model"
)

func mustBuild(t *testing.T, records ...model.Record) *Forest {
	t.Helper()
	f, err := Build(records)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	return f
}

func TestComputeDiffFull(t *testing.T) {
	next := mustBuild(t, rec("1", "", "A"), rec("2", "1", "B"))

	d := ComputeDiff(nil, next)
	if !d.Full || !equalIDs(d.Added, []model.ID{"1", "2"}) {
		t.Errorf("Expected full diff adding [1 2], got %+v", d)
	}
}

func TestComputeDiffChanges(t *testing.T) {
	old := mustBuild(t,
		rec("1", "", "A"),
		rec("2", "1", "B"),
		rec("3", "1", "C"),
		rec("4", "", "D"),
	)
	next := mustBuild(t,
		rec("1", "", "A"),
		rec("2", "4", "B"),  // moved
		rec("3", "1", "C2"), // renamed
		rec("4", "", "D"),
		rec("5", "", "E"), // added
	)

	d := ComputeDiff(old, next)
	if d.Full {
		t.Error("Expected incremental diff")
	}
	if !equalIDs(d.Added, []model.ID{"5"}) {
		t.Errorf("Added = %v", d.Added)
	}
	if !equalIDs(d.Modified, []model.ID{"3", "2"}) {
		t.Errorf("Modified = %v", d.Modified)
	}
	if len(d.Removed) != 0 {
		t.Errorf("Removed = %v", d.Removed)
	}

	d = ComputeDiff(next, old)
	if !equalIDs(d.Removed, []model.ID{"5"}) {
		t.Errorf("Removed = %v", d.Removed)
	}
}

func TestComputeDiffRelinked(t *testing.T) {
	linked := rec("1", "", "A")
	linked.LinkData = &model.LinkData{ID: "9", PluginRecord: model.PluginRecord{Name: "A (YNAB)"}}

	d := ComputeDiff(mustBuild(t, rec("1", "", "A")), mustBuild(t, linked))
	if !equalIDs(d.Modified, []model.ID{"1"}) {
		t.Errorf("Expected link change to count as modified, got %+v", d)
	}
}

func TestComputeDiffUnchanged(t *testing.T) {
	a := mustBuild(t, rec("1", "", "A"), rec("2", "1", "B"))
	b := mustBuild(t, rec("1", "", "A"), rec("2", "1", "B"))

	if d := ComputeDiff(a, b); !d.Empty() {
		t.Errorf("Expected empty diff, got %+v", d)
	}
	if a.Hash() != b.Hash() {
		t.Error("Expected equal hashes for identical forests")
	}
	if a.Hash() == mustBuild(t, rec("1", "", "A")).Hash() {
		t.Error("Expected different hashes for different forests")
	}
}
