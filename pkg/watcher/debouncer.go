package watcher

import (
	"context"
	"slices"
	"time"
)

// Debouncer merges bursts of change events. A batch is flushed once no new
// event arrived for the quiet period, or at the latest maxWait after its first
// event.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 16),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		quiet       <-chan time.Time
		deadline    <-chan time.Time
		accumulated = make(map[string][]string)
		order       []string
		eventCount  int
	)

	flush := func() {
		quiet, deadline = nil, nil
		if eventCount == 0 {
			return
		}

		log.Debug("flushing accumulated events", "count", eventCount, "resources", len(order))

		// Resources go out in the order they first changed
		for _, resource := range order {
			select {
			case d.output <- ChangeEvent{Resource: resource, Paths: accumulated[resource], Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}
		}

		accumulated = make(map[string][]string)
		order = nil
		eventCount = 0
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			if _, seen := accumulated[event.Resource]; !seen {
				order = append(order, event.Resource)
			}
			for _, p := range event.Paths {
				if !slices.Contains(accumulated[event.Resource], p) {
					accumulated[event.Resource] = append(accumulated[event.Resource], p)
				}
			}
			if accumulated[event.Resource] == nil {
				accumulated[event.Resource] = []string{}
			}
			eventCount++

			quiet = time.After(d.quietPeriod)
			if deadline == nil {
				deadline = time.After(d.maxWait)
			}

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
