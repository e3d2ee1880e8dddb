package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/ritzau/finance-assistant/pkg/hierarchy"
)

const indentWidth = 2

// PrintTree prints the flattened rows of a resource hierarchy with colors.
// Expandable rows are marked ▸ (collapsed) or ▾ (expanded); linked records
// show the plugin record they are linked to.
func PrintTree(w io.Writer, resource string, rows []hierarchy.Row, issues []hierarchy.Issue) {
	// Color definitions
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	faint := color.New(color.Faint)

	// Header
	title := strings.ToUpper(resource[:min(1, len(resource))]) + resource[min(1, len(resource)):]
	bold.Fprintln(w, title)
	bold.Fprintln(w, strings.Repeat("=", max(len(title), 1)))

	if len(rows) == 0 {
		faint.Fprintln(w, "(no records)")
	}

	for _, row := range rows {
		fmt.Fprint(w, strings.Repeat(" ", row.Depth*indentWidth))

		switch {
		case !row.HasChildren:
			fmt.Fprint(w, "  ")
		case row.Expanded:
			cyan.Fprint(w, "▾ ")
		default:
			cyan.Fprint(w, "▸ ")
		}

		fmt.Fprint(w, row.Node.Record.Name)
		faint.Fprintf(w, " #%s", row.Node.ID())

		if row.Node.Record.Linked() {
			green.Fprintf(w, "  ↔ %s", row.Node.Record.LinkData.PluginRecord.Name)
		}
		fmt.Fprintln(w)
	}

	if len(issues) > 0 {
		fmt.Fprintln(w)
		yellow.Fprintf(w, "%d issue(s):\n", len(issues))
		for _, issue := range issues {
			yellow.Fprintf(w, "  - %s\n", issue)
		}
	}
}

// PrintSummary prints a one-line record count for a resource
func PrintSummary(w io.Writer, resource string, f *hierarchy.Forest) {
	if f == nil {
		return
	}
	summaryColor := color.New(color.FgGreen)
	if len(f.Issues()) > 0 {
		summaryColor = color.New(color.FgYellow)
	}
	summaryColor.Fprintf(w, "%s: %d records, %d roots, %d issue(s)\n", resource, f.Len(), len(f.Roots()), len(f.Issues()))
}
