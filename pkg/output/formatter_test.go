package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/ritzau/finance-assistant/pkg/hierarchy"
	"github.com/ritzau/finance-assistant/pkg/model"
)

func buildForest(t *testing.T) *hierarchy.Forest {
	t.Helper()
	f, err := hierarchy.Build([]model.Record{
		{ID: "1", Name: "Food"},
		{ID: "2", Name: "Groceries", Parent: model.Ref("1"), LinkData: &model.LinkData{ID: "9", PluginRecord: model.PluginRecord{Name: "Groceries (YNAB)"}}},
		{ID: "3", Name: "Stray", Parent: model.Ref("77")},
	})
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	return f
}

func TestPrintTree(t *testing.T) {
	color.NoColor = true
	f := buildForest(t)

	var buf bytes.Buffer
	PrintTree(&buf, "categories", hierarchy.Rows(f, hierarchy.NewExpandState("1")), f.Issues())
	out := buf.String()

	for _, want := range []string{
		"Categories\n==========\n",
		"▾ Food #1\n",
		"    Groceries #2  ↔ Groceries (YNAB)\n",
		"  Stray #3\n",
		"1 issue(s):",
		"record 3 references missing parent 77",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintTreeCollapsed(t *testing.T) {
	color.NoColor = true
	f := buildForest(t)

	var buf bytes.Buffer
	PrintTree(&buf, "categories", hierarchy.Rows(f, hierarchy.NewExpandState()), nil)
	out := buf.String()

	if !strings.Contains(out, "▸ Food #1") {
		t.Errorf("Expected collapsed marker:\n%s", out)
	}
	if strings.Contains(out, "Groceries") {
		t.Errorf("Collapsed child should be hidden:\n%s", out)
	}
}

func TestPrintTreeEmpty(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	PrintTree(&buf, "payees", nil, nil)
	if !strings.Contains(buf.String(), "(no records)") {
		t.Errorf("Expected empty marker, got %q", buf.String())
	}
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	PrintSummary(&buf, "categories", buildForest(t))
	if got := buf.String(); got != "categories: 3 records, 2 roots, 1 issue(s)\n" {
		t.Errorf("Unexpected summary %q", got)
	}
}
