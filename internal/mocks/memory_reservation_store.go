package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/netcinema/booking/internal/domain"
)

// InMemoryReservationStore is a thread-safe ReservationRepository for tests.
// It copies reservations on the way in and out so that writes only become
// visible through Create/Update, mirroring a real store.
type InMemoryReservationStore struct {
	mu           sync.Mutex
	reservations map[string]*domain.Reservation
	order        []string

	CreateErr error
	UpdateErr error
}

func NewInMemoryReservationStore() *InMemoryReservationStore {
	return &InMemoryReservationStore{
		reservations: make(map[string]*domain.Reservation),
	}
}

func clone(res *domain.Reservation) *domain.Reservation {
	copied := *res
	copied.Seats = make([]domain.Seat, len(res.Seats))
	copy(copied.Seats, res.Seats)

	return &copied
}

func (s *InMemoryReservationStore) Create(ctx context.Context, reservation *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return s.CreateErr
	}

	s.reservations[reservation.ID] = clone(reservation)
	s.order = append(s.order, reservation.ID)

	return nil
}

func (s *InMemoryReservationStore) Update(ctx context.Context, reservation *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpdateErr != nil {
		return s.UpdateErr
	}

	if _, ok := s.reservations[reservation.ID]; !ok {
		return domain.ErrRecordNotFound
	}

	s.reservations[reservation.ID] = clone(reservation)

	return nil
}

func (s *InMemoryReservationStore) GetById(ctx context.Context, id string) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.reservations[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return clone(res), nil
}

func (s *InMemoryReservationStore) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		if s.reservations[id].Code == code {
			return clone(s.reservations[id]), nil
		}
	}

	return nil, domain.ErrRecordNotFound
}

func (s *InMemoryReservationStore) FindByScreening(ctx context.Context, screeningID string) ([]*domain.Reservation, error) {
	return s.filter(func(res *domain.Reservation) bool {
		return res.ScreeningID == screeningID
	}), nil
}

func (s *InMemoryReservationStore) FindPendingByScreening(ctx context.Context, screeningID string) ([]*domain.Reservation, error) {
	return s.filter(func(res *domain.Reservation) bool {
		return res.ScreeningID == screeningID && res.Status == domain.ReservationPending
	}), nil
}

func (s *InMemoryReservationStore) FindByRequester(ctx context.Context, requester string) ([]*domain.Reservation, error) {
	return s.filter(func(res *domain.Reservation) bool {
		return res.Requester == requester
	}), nil
}

func (s *InMemoryReservationStore) FindDueBefore(ctx context.Context, deadline time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0)

	for _, id := range s.order {
		res := s.reservations[id]
		if res.Status == domain.ReservationPending && !res.ExpiresAt.After(deadline) {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

func (s *InMemoryReservationStore) filter(keep func(*domain.Reservation) bool) []*domain.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make([]*domain.Reservation, 0)

	for _, id := range s.order {
		if keep(s.reservations[id]) {
			matches = append(matches, clone(s.reservations[id]))
		}
	}

	return matches
}
