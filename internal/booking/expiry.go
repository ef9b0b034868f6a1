package booking

import (
	"context"
	"time"

	"github.com/netcinema/booking/internal/domain"
)

// ExpiryManager decides which pending holds are due for automatic release.
// It only detects; acting on the result is the engine's job. Keeping
// detection separate from action avoids lock ordering hazards between the
// global sweep and the per-screening locks.
type ExpiryManager struct {
	reservations domain.ReservationRepository
}

func NewExpiryManager(reservations domain.ReservationRepository) *ExpiryManager {
	return &ExpiryManager{reservations: reservations}
}

func (m *ExpiryManager) IsExpired(res *domain.Reservation, now time.Time) bool {
	return res.IsExpired(now)
}

// SweepDue returns the ids of all pending reservations across all screenings
// whose hold deadline has passed. No state is mutated.
func (m *ExpiryManager) SweepDue(ctx context.Context, now time.Time) ([]string, error) {
	return m.reservations.FindDueBefore(ctx, now)
}
