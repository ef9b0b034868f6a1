package domain

import "fmt"

// Seat identifies one seat inside a room layout. Seats are not persisted as
// standalone entities; they only act as keys into a screening's SeatMap.
type Seat struct {
	Row    string
	Number int
}

func (s Seat) Label() string {
	return fmt.Sprintf("%s%d", s.Row, s.Number)
}

// DedupSeats removes duplicate seats while preserving the order of first
// occurrence.
func DedupSeats(seats []Seat) []Seat {
	seen := make(map[Seat]bool, len(seats))
	deduped := make([]Seat, 0, len(seats))

	for _, seat := range seats {
		if seen[seat] {
			continue
		}

		seen[seat] = true
		deduped = append(deduped, seat)
	}

	return deduped
}
