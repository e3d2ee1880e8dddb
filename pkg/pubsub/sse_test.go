package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func publishN(t *testing.T, pub *SSEPublisher, topic string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		summary := HierarchySummary{Resource: "categories", Records: i, Generation: uint64(i)}
		if err := pub.Publish(topic, EventRebuilt, summary); err != nil {
			t.Fatalf("Failed to publish event %d: %v", i, err)
		}
	}
}

func TestEventBuffer(t *testing.T) {
	pub := NewSSEPublisher(TopicConfig{})
	defer pub.Close()

	topic := HierarchyTopic("categories")
	pub.ConfigureTopic(topic, TopicConfig{BufferSize: 3, ReplayAll: true})
	publishN(t, pub, topic, 5)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub, err := pub.Subscribe(ctx, topic)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Last 3 of 5
	for want := 3; want <= 5; want++ {
		select {
		case event := <-sub.Events():
			if event.Version != want {
				t.Errorf("Expected version %d, got %d", want, event.Version)
			}
		case <-time.After(time.Second):
			t.Fatalf("Timeout waiting for event %d", want)
		}
	}
}

func TestReplayLastOnly(t *testing.T) {
	pub := NewSSEPublisher(TopicConfig{BufferSize: 5})
	defer pub.Close()

	topic := HierarchyTopic("payees")
	publishN(t, pub, topic, 3)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub, err := pub.Subscribe(ctx, topic)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	select {
	case event := <-sub.Events():
		if event.Version != 3 {
			t.Errorf("Expected version 3, got %d", event.Version)
		}
		var summary HierarchySummary
		if err := json.Unmarshal(event.Data, &summary); err != nil {
			t.Fatalf("Failed to decode payload: %v", err)
		}
		if summary.Generation != 3 {
			t.Errorf("Expected generation 3, got %d", summary.Generation)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
	}

	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected extra event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNoBuffer(t *testing.T) {
	pub := NewSSEPublisher(TopicConfig{})
	defer pub.Close()

	topic := HierarchyTopic("categories")
	publishN(t, pub, topic, 3)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub, err := pub.Subscribe(ctx, topic)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected replayed event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
	}

	if err := pub.Publish(topic, EventError, RefreshError{Resource: "categories", Message: "boom"}); err != nil {
		t.Fatalf("Failed to publish new event: %v", err)
	}

	select {
	case event := <-sub.Events():
		if event.Version != 4 || event.Type != EventError {
			t.Errorf("Expected error event version 4, got %s version %d", event.Type, event.Version)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for new event")
	}
}

func TestSubscriptionClosesWithContext(t *testing.T) {
	pub := NewSSEPublisher(TopicConfig{})
	defer pub.Close()

	topic := HierarchyTopic("categories")
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := pub.Subscribe(ctx, topic); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if n := pub.Subscribers(topic); n != 1 {
		t.Fatalf("Expected 1 subscriber, got %d", n)
	}

	cancel()
	deadline := time.Now().Add(time.Second)
	for pub.Subscribers(topic) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Subscription was not removed after cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPublishAfterClose(t *testing.T) {
	pub := NewSSEPublisher(TopicConfig{})
	pub.Close()

	if err := pub.Publish("x", EventRebuilt, nil); err == nil {
		t.Error("Expected error publishing on closed publisher")
	}
	if _, err := pub.Subscribe(context.Background(), "x"); err == nil {
		t.Error("Expected error subscribing on closed publisher")
	}
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	event := Event{Topic: HierarchyTopic("payees"), Type: EventRebuilt, Data: json.RawMessage(`{"records":2}`), Version: 7}
	if err := WriteSSE(&buf, event); err != nil {
		t.Fatalf("WriteSSE() unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "id: 7\nevent: rebuilt\ndata: {") || !strings.HasSuffix(out, "\n\n") {
		t.Errorf("Unexpected SSE framing: %q", out)
	}
}

func TestTopicResource(t *testing.T) {
	if res, ok := TopicResource(HierarchyTopic("payees")); !ok || res != "payees" {
		t.Errorf("TopicResource() = %q, %v", res, ok)
	}
	if _, ok := TopicResource("other"); ok {
		t.Error("Expected non-hierarchy topic to be rejected")
	}
}
