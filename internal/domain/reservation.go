package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationExpired   ReservationStatus = "EXPIRED"
)

// Terminal reports whether no further transition may leave the status.
// Confirmed is not terminal: a confirmed reservation can still be cancelled.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationCancelled || s == ReservationExpired
}

// Contact identifies an anonymous buyer. Registered accounts are handled by
// an external layer; the engine only needs someone to hand the tickets to.
type Contact struct {
	Name  string
	Email string
}

// Reservation is one claim over a set of seats for one screening. It owns the
// seat-set by value and is the source of truth for state transitions; the
// SeatMap only mirrors it. Terminal reservations are kept for audit, never
// deleted by the engine.
type Reservation struct {
	ID            string
	Code          string
	ScreeningID   string
	Requester     string
	Contact       Contact
	Seats         []Seat
	Status        ReservationStatus
	Total         decimal.Decimal
	PaymentMethod string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	UpdatedAt     time.Time
}

// NewReservation creates a pending reservation over a deduplicated seat set
// with a hold deadline of now + ttl. The total is seat count times the
// screening's base price.
func NewReservation(
	screeningID string,
	requester string,
	contact Contact,
	seats []Seat,
	basePrice decimal.Decimal,
	now time.Time,
	ttl time.Duration) *Reservation {

	return &Reservation{
		ID:          uuid.New().String(),
		Code:        newReservationCode(),
		ScreeningID: screeningID,
		Requester:   requester,
		Contact:     contact,
		Seats:       seats,
		Status:      ReservationPending,
		Total:       basePrice.Mul(decimal.NewFromInt(int64(len(seats)))),
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
		UpdatedAt:   now,
	}
}

func newReservationCode() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "RES-" + strings.ToUpper(raw[:8])
}

// IsExpired reports whether the hold deadline has passed. Expiry is data, not
// a timer: any code path can re-check it deterministically.
func (r *Reservation) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// RemainingSeconds returns the seconds left until the hold deadline, clamped
// at zero.
func (r *Reservation) RemainingSeconds(now time.Time) int64 {
	remaining := int64(r.ExpiresAt.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}

	return remaining
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *Reservation) error
	Update(ctx context.Context, reservation *Reservation) error
	GetById(ctx context.Context, id string) (*Reservation, error)
	GetByCode(ctx context.Context, code string) (*Reservation, error)
	FindByScreening(ctx context.Context, screeningID string) ([]*Reservation, error)
	FindPendingByScreening(ctx context.Context, screeningID string) ([]*Reservation, error)
	FindByRequester(ctx context.Context, requester string) ([]*Reservation, error)
	FindDueBefore(ctx context.Context, deadline time.Time) ([]string, error)
}
