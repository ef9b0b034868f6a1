package mocks

import (
	"context"
	"sync"

	"github.com/netcinema/booking/internal/domain"
)

// EventRecorder captures published events. Setting Err makes every publish
// fail, which callers must treat as fire-and-forget.
type EventRecorder struct {
	mu     sync.Mutex
	events []domain.Event

	Err error
}

func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

func (r *EventRecorder) Publish(ctx context.Context, event domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}

	r.events = append(r.events, event)

	return nil
}

func (r *EventRecorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]domain.Event, len(r.events))
	copy(events, r.events)

	return events
}

// EventsOfType returns the captured events matching the given type.
func (r *EventRecorder) EventsOfType(eventType domain.EventType) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	matches := make([]domain.Event, 0)

	for _, event := range r.events {
		if event.Type == eventType {
			matches = append(matches, event)
		}
	}

	return matches
}
