package emit

import (
	"context"
	"sync"
)

// BufferedEmitter captures events in memory, keyed by FlowID, for
// post-tick inspection in tests and dashboards. Not suited to
// long-running deployments with high event volume — nothing evicts old
// entries.
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event
}

// HistoryFilter narrows GetHistoryWithFilter's result. Zero-value fields
// impose no constraint; all set fields combine with AND.
type HistoryFilter struct {
	NodeID  string
	Msg     string
	MinTick *int
	MaxTick *int
}

func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{events: make(map[string][]Event)}
}

func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[event.FlowID] = append(b.events[event.FlowID], event)
}

func (b *BufferedEmitter) EmitBatch(_ context.Context, events []Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, event := range events {
		b.events[event.FlowID] = append(b.events[event.FlowID], event)
	}
	return nil
}

func (b *BufferedEmitter) Flush(context.Context) error { return nil }

// GetHistory returns a copy of every event recorded for flowID, in
// emission order.
func (b *BufferedEmitter) GetHistory(flowID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[flowID]
	result := make([]Event, len(events))
	copy(result, events)
	return result
}

// GetHistoryWithFilter returns flowID's events matching filter.
func (b *BufferedEmitter) GetHistoryWithFilter(flowID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []Event
	for _, event := range b.events[flowID] {
		if matchesFilter(event, filter) {
			result = append(result, event)
		}
	}
	return result
}

func matchesFilter(event Event, filter HistoryFilter) bool {
	if filter.NodeID != "" && event.NodeID != filter.NodeID {
		return false
	}
	if filter.Msg != "" && event.Msg != filter.Msg {
		return false
	}
	if filter.MinTick != nil && event.Tick < *filter.MinTick {
		return false
	}
	if filter.MaxTick != nil && event.Tick > *filter.MaxTick {
		return false
	}
	return true
}

// Clear drops flowID's events, or every flow's events if flowID is empty.
func (b *BufferedEmitter) Clear(flowID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if flowID == "" {
		b.events = make(map[string][]Event)
		return
	}
	delete(b.events, flowID)
}
