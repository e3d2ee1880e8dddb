package hierarchy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ritzau/finance-assistant/pkg/model"
)

// ErrDuplicateID matches any *DuplicateIDError via errors.Is
var ErrDuplicateID = errors.New("duplicate record id")

// ErrMissingID is returned for a record without an id
var ErrMissingID = errors.New("record without id")

// DuplicateIDError reports two input records sharing an ID. Row keys depend
// on ID uniqueness, so Build refuses the input rather than dropping one.
type DuplicateIDError struct {
	ID     model.ID
	First  int // Input index of the first occurrence
	Second int // Input index of the duplicate
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate record id %q at positions %d and %d", e.ID, e.First, e.Second)
}

func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}

// IssueKind classifies a recoverable problem found while building
type IssueKind string

const (
	IssueOrphan IssueKind = "orphan" // Parent reference did not resolve; record promoted to root
	IssueCycle  IssueKind = "cycle"  // Parent references loop; first member promoted to root
)

// Issue is a non-fatal condition the builder corrected. Callers decide
// whether to log or display them.
type Issue struct {
	Kind     IssueKind  `json:"kind"`
	Records  []model.ID `json:"records"`          // Affected records (cycle members in input order)
	Parent   model.ID   `json:"parent,omitempty"` // Unresolved parent, for orphans
	Promoted model.ID   `json:"promoted"`         // Record rendered as root because of this issue
}

func (i Issue) String() string {
	switch i.Kind {
	case IssueOrphan:
		return fmt.Sprintf("record %s references missing parent %s", i.Promoted, i.Parent)
	case IssueCycle:
		ids := make([]string, len(i.Records))
		for n, id := range i.Records {
			ids[n] = string(id)
		}
		return fmt.Sprintf("parent cycle %s broken at %s", strings.Join(ids, " -> "), i.Promoted)
	default:
		return fmt.Sprintf("%s: %v", i.Kind, i.Records)
	}
}
