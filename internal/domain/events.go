package domain

import (
	"context"
	"time"
)

type EventType string

const (
	EventSeatsHeld            EventType = "SEATS_HELD"
	EventSeatsReleased        EventType = "SEATS_RELEASED"
	EventReservationConfirmed EventType = "RESERVATION_CONFIRMED"
	EventReservationCancelled EventType = "RESERVATION_CANCELLED"
)

// Event announces a seat-state change to connected clients. Delivery is
// fire-and-forget: a failed publish never rolls back the state transition
// that produced it.
type Event struct {
	Type          EventType `json:"type"`
	ScreeningID   string    `json:"screening_id"`
	ReservationID string    `json:"reservation_id"`
	Code          string    `json:"code"`
	Seats         []string  `json:"seats"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewEvent builds an event carrying the affected seat labels.
func NewEvent(eventType EventType, res *Reservation, now time.Time) Event {
	seats := make([]string, len(res.Seats))
	for i, seat := range res.Seats {
		seats[i] = seat.Label()
	}

	return Event{
		Type:          eventType,
		ScreeningID:   res.ScreeningID,
		ReservationID: res.ID,
		Code:          res.Code,
		Seats:         seats,
		OccurredAt:    now,
	}
}

type NotificationPublisher interface {
	Publish(ctx context.Context, event Event) error
}
