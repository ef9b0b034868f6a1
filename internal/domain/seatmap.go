package domain

import "time"

type SeatStatus int

const (
	SeatFree SeatStatus = iota
	SeatHeld
	SeatBooked
)

type seatClaim struct {
	status        SeatStatus
	reservationID string
	expiresAt     time.Time
}

// SeatMap is the per-screening seat-state index. It is derived data: the
// reservations are the source of truth and the map only keeps a non-owning
// seat -> reservation lookup. Every mutation must happen under the owning
// screening lock; reads never mutate state, expired holds are simply treated
// as free (lazy expiry).
type SeatMap struct {
	seats map[Seat]seatClaim
}

// NewSeatMap creates a seat map with every seat of the layout free.
func NewSeatMap(layout []Seat) *SeatMap {
	seats := make(map[Seat]seatClaim, len(layout))
	for _, seat := range layout {
		seats[seat] = seatClaim{status: SeatFree}
	}

	return &SeatMap{seats: seats}
}

// BuildSeatMap rebuilds the index from reservation data. Confirmed
// reservations mark their seats booked; pending ones that have not expired
// mark them held. Terminal reservations leave their seats free.
func BuildSeatMap(layout []Seat, reservations []*Reservation, now time.Time) *SeatMap {
	sm := NewSeatMap(layout)

	for _, res := range reservations {
		switch {
		case res.Status == ReservationConfirmed:
			for _, seat := range res.Seats {
				sm.seats[seat] = seatClaim{status: SeatBooked, reservationID: res.ID}
			}
		case res.Status == ReservationPending && now.Before(res.ExpiresAt):
			for _, seat := range res.Seats {
				sm.seats[seat] = seatClaim{
					status:        SeatHeld,
					reservationID: res.ID,
					expiresAt:     res.ExpiresAt,
				}
			}
		}
	}

	return sm
}

// Contains reports whether the seat belongs to the room layout.
func (sm *SeatMap) Contains(seat Seat) bool {
	_, ok := sm.seats[seat]
	return ok
}

// IsAvailable reports whether the seat can be claimed at the given instant.
// A held seat whose expiry has passed counts as available, but the stored
// state is left untouched; clearing expired holds is the expiry sweep's job.
func (sm *SeatMap) IsAvailable(seat Seat, now time.Time) bool {
	claim, ok := sm.seats[seat]
	if !ok {
		return false
	}

	switch claim.status {
	case SeatFree:
		return true
	case SeatHeld:
		return !now.Before(claim.expiresAt)
	default:
		return false
	}
}

// MarkHeld transitions all given seats to held by the reservation. The
// mutation is atomic: if any seat is unavailable, a SeatConflictError naming
// that seat is returned and no seat state changes.
func (sm *SeatMap) MarkHeld(seats []Seat, reservationID string, expiresAt time.Time, now time.Time) error {
	for _, seat := range seats {
		if !sm.IsAvailable(seat, now) {
			return SeatConflictError{Seat: seat}
		}
	}

	for _, seat := range seats {
		sm.seats[seat] = seatClaim{
			status:        SeatHeld,
			reservationID: reservationID,
			expiresAt:     expiresAt,
		}
	}

	return nil
}

// MarkBooked transitions held seats to booked. Every seat must currently be
// held by the same reservation, otherwise ErrInvalidTransition is returned
// and nothing changes.
func (sm *SeatMap) MarkBooked(seats []Seat, reservationID string) error {
	for _, seat := range seats {
		claim, ok := sm.seats[seat]
		if !ok || claim.status != SeatHeld || claim.reservationID != reservationID {
			return ErrInvalidTransition
		}
	}

	for _, seat := range seats {
		sm.seats[seat] = seatClaim{status: SeatBooked, reservationID: reservationID}
	}

	return nil
}

// MarkFree releases the seats still claimed by the given reservation. Used by
// cancellation and expiry. The release is reservation-scoped: a seat whose
// lapsed hold was already overwritten by a newer claim belongs to that newer
// reservation now and is left untouched. Already-free seats are a no-op.
func (sm *SeatMap) MarkFree(seats []Seat, reservationID string) {
	for _, seat := range seats {
		claim, ok := sm.seats[seat]
		if !ok || claim.reservationID != reservationID {
			continue
		}

		sm.seats[seat] = seatClaim{status: SeatFree}
	}
}

// ReservationFor returns the id of the reservation currently claiming the
// seat, if any. The index is lookup-only; ownership of the claim stays with
// the reservation.
func (sm *SeatMap) ReservationFor(seat Seat) (string, bool) {
	claim, ok := sm.seats[seat]
	if !ok || claim.status == SeatFree {
		return "", false
	}

	return claim.reservationID, true
}

// SeatAvailability is a read-only snapshot entry of one seat's state.
type SeatAvailability struct {
	Seat      Seat
	Available bool
}

// Snapshot returns the availability of every seat in the layout at the given
// instant, applying lazy expiry without mutating stored state.
func (sm *SeatMap) Snapshot(now time.Time) []SeatAvailability {
	availability := make([]SeatAvailability, 0, len(sm.seats))

	for seat := range sm.seats {
		availability = append(availability, SeatAvailability{
			Seat:      seat,
			Available: sm.IsAvailable(seat, now),
		})
	}

	return availability
}
