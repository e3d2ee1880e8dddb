// Package store talks to the collaborators that own the data: the record
// store serving core records and the link service tying core records to
// budgeting-plugin records.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ritzau/finance-assistant/pkg/model"
)

// ErrReadOnly is returned by stores that cannot mutate records
var ErrReadOnly = errors.New("store is read-only")

// ErrNotFound is returned when a record or link does not exist
var ErrNotFound = errors.New("not found")

// ErrInvalidInput is returned for input rejected before it reaches the API
var ErrInvalidInput = errors.New("invalid input")

// RecordInput is the writable part of a record
type RecordInput struct {
	Name   string    `json:"name"`
	Parent *model.ID `json:"parent"`
}

// Validate checks the input before it is sent anywhere
func (in RecordInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return nil
}

// RecordStore lists and mutates a named resource collection
type RecordStore interface {
	List(ctx context.Context, res model.Resource) ([]model.Record, error)
	Create(ctx context.Context, res model.Resource, in RecordInput) (model.Record, error)
	Update(ctx context.Context, res model.Resource, id model.ID, in RecordInput) (model.Record, error)
	Delete(ctx context.Context, res model.Resource, id model.ID) error
}

// Link associates a core record with a plugin record
type Link struct {
	PluginModel string `json:"plugin_model"`
	PluginID    string `json:"plugin_id"`
	CoreModel   string `json:"core_model"`
	CoreID      string `json:"core_id"`
}

// NewLink builds the link payload for a core record of res
func NewLink(res model.Resource, coreID, pluginID model.ID) Link {
	return Link{
		PluginModel: singular(res.PluginType),
		PluginID:    string(pluginID),
		CoreModel:   res.CoreModel,
		CoreID:      string(coreID),
	}
}

// LinkService creates and removes links and lists link candidates
type LinkService interface {
	CreateLink(ctx context.Context, link Link) (model.ID, error)
	DeleteLink(ctx context.Context, linkID model.ID) error
	ListUnlinked(ctx context.Context, plugin, recordType string) ([]model.PluginRecord, error)
}

// singular turns a plugin collection name into the model name the link
// endpoint expects ("categories" -> "category", "payees" -> "payee")
func singular(collection string) string {
	switch {
	case strings.HasSuffix(collection, "ies"):
		return strings.TrimSuffix(collection, "ies") + "y"
	case strings.HasSuffix(collection, "s"):
		return strings.TrimSuffix(collection, "s")
	default:
		return collection
	}
}

// StatusError is returned for non-2xx API responses
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, body)
}

// Is lets callers test for ErrNotFound on 404 responses
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}
