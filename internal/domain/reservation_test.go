package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservation(t *testing.T) {
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	seats := []Seat{{Row: "A", Number: 1}, {Row: "A", Number: 2}, {Row: "B", Number: 5}}
	contact := Contact{Name: "Ana Torres", Email: "ana@example.com"}

	res := NewReservation("scr-1", "session-token", contact, seats, decimal.NewFromFloat(8.50), now, 10*time.Minute)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "scr-1", res.ScreeningID)
	assert.Equal(t, "session-token", res.Requester)
	assert.Equal(t, contact, res.Contact)
	assert.Equal(t, ReservationPending, res.Status)
	assert.Equal(t, now, res.CreatedAt)
	assert.Equal(t, now.Add(10*time.Minute), res.ExpiresAt)

	assert.True(t, res.Total.Equal(decimal.NewFromFloat(25.50)), "total should be base price times seat count, got %s", res.Total)

	assert.Regexp(t, regexp.MustCompile(`^RES-[0-9A-F]{8}$`), res.Code)
}

func TestReservationCodesAreUnique(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code := newReservationCode()
		require.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestReservation_IsExpired(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 18, 10, 0, 0, time.UTC)
	res := &Reservation{ExpiresAt: deadline}

	assert.False(t, res.IsExpired(deadline.Add(-time.Second)))
	assert.True(t, res.IsExpired(deadline))
	assert.True(t, res.IsExpired(deadline.Add(time.Second)))
}

func TestReservation_RemainingSeconds(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 18, 10, 0, 0, time.UTC)
	res := &Reservation{ExpiresAt: deadline}

	assert.Equal(t, int64(90), res.RemainingSeconds(deadline.Add(-90*time.Second)))
	assert.Equal(t, int64(0), res.RemainingSeconds(deadline))
	assert.Equal(t, int64(0), res.RemainingSeconds(deadline.Add(time.Hour)))
}

func TestReservationStatus_Terminal(t *testing.T) {
	assert.False(t, ReservationPending.Terminal())
	assert.False(t, ReservationConfirmed.Terminal())
	assert.True(t, ReservationCancelled.Terminal())
	assert.True(t, ReservationExpired.Terminal())
}

func TestDedupSeats(t *testing.T) {
	seats := []Seat{
		{Row: "A", Number: 1},
		{Row: "A", Number: 2},
		{Row: "A", Number: 1},
		{Row: "B", Number: 1},
		{Row: "A", Number: 2},
	}

	deduped := DedupSeats(seats)

	assert.Equal(t, []Seat{
		{Row: "A", Number: 1},
		{Row: "A", Number: 2},
		{Row: "B", Number: 1},
	}, deduped)
}

func TestSeatLabel(t *testing.T) {
	assert.Equal(t, "A1", Seat{Row: "A", Number: 1}.Label())
	assert.Equal(t, "AB12", Seat{Row: "AB", Number: 12}.Label())
}
