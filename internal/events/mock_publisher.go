package events

import (
	"context"
	"log/slog"
	"sync"
)

// PublishedEvent pairs a recorded event with its topic.
type PublishedEvent struct {
	Topic string
	*Event
}

// MockEventPublisher records events in memory. Used by tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
	logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, PublishedEvent{Topic: topic, Event: event})
	if m.logger != nil {
		m.logger.Debug("Mock event published", "topic", topic, "type", event.Type)
	}
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

func (m *MockEventPublisher) GetPublishedEvents() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedEvent, len(m.events))
	copy(out, m.events)
	return out
}

// EventsOnTopic returns the recorded events of one topic.
func (m *MockEventPublisher) EventsOnTopic(topic string) []PublishedEvent {
	var out []PublishedEvent
	for _, e := range m.GetPublishedEvents() {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
