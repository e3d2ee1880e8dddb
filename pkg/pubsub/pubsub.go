// Package pubsub fans hierarchy change notifications out to streaming clients.
package pubsub

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ritzau/finance-assistant/pkg/hierarchy"
)

// Event types published on hierarchy topics
const (
	EventRebuilt = "rebuilt" // A new forest was installed
	EventError   = "error"   // A refresh failed; the previous forest is still served
)

const hierarchyTopicPrefix = "hierarchy:"

// HierarchyTopic returns the topic carrying updates for a resource
func HierarchyTopic(resource string) string {
	return hierarchyTopicPrefix + resource
}

// TopicResource returns the resource of a hierarchy topic
func TopicResource(topic string) (string, bool) {
	return strings.CutPrefix(topic, hierarchyTopicPrefix)
}

// Event is a single notification on a topic
type Event struct {
	Topic   string          `json:"topic"`   // e.g. "hierarchy:categories"
	Type    string          `json:"type"`    // EventRebuilt or EventError
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Per-topic sequence number
}

// Subscription is one client's view of a topic
type Subscription interface {
	Topic() string

	// Events returns a channel for receiving events. It is closed when the
	// publisher shuts down.
	Events() <-chan Event

	Close() error
}

// Publisher manages subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic.
	// Context cancellation will close the subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data any) error

	Close() error
}

// HierarchySummary is the payload of a rebuilt event
type HierarchySummary struct {
	Resource   string          `json:"resource"`
	Records    int             `json:"records"`
	Roots      int             `json:"roots"`
	Issues     []string        `json:"issues,omitempty"`
	Generation uint64          `json:"generation"`
	Changes    *hierarchy.Diff `json:"changes,omitempty"`
}

// RefreshError is the payload of an error event
type RefreshError struct {
	Resource   string `json:"resource"`
	Message    string `json:"message"`
	Generation uint64 `json:"generation"`
}
