package booking

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/netcinema/booking/internal/domain"
)

// DefaultHoldTTL is the hold duration applied when no explicit TTL is
// configured.
const DefaultHoldTTL = 10 * time.Minute

// Engine is the state machine authority for seat holds. Every mutating
// operation on a screening runs inside that screening's critical section:
// acquire the lock, validate against the seat map, persist, mutate the map,
// release, then emit the notification. The background sweep goes through the
// same locks and is not a privileged writer.
type Engine struct {
	reservations domain.ReservationRepository
	screenings   domain.ScreeningRepository
	notifier     domain.NotificationPublisher
	clock        domain.Clock
	logger       *slog.Logger
	expiry       *ExpiryManager
	holdTTL      time.Duration

	locks *screeningLocks

	mu       sync.Mutex
	seatMaps map[string]*domain.SeatMap
}

func NewEngine(
	reservations domain.ReservationRepository,
	screenings domain.ScreeningRepository,
	notifier domain.NotificationPublisher,
	clock domain.Clock,
	logger *slog.Logger,
	holdTTL time.Duration) *Engine {

	if holdTTL <= 0 {
		holdTTL = DefaultHoldTTL
	}

	return &Engine{
		reservations: reservations,
		screenings:   screenings,
		notifier:     notifier,
		clock:        clock,
		logger:       logger,
		expiry:       NewExpiryManager(reservations),
		holdTTL:      holdTTL,
		locks:        newScreeningLocks(),
		seatMaps:     make(map[string]*domain.SeatMap),
	}
}

// HoldTTL returns the configured hold duration.
func (e *Engine) HoldTTL() time.Duration {
	return e.holdTTL
}

// CreateHold places a pending reservation over the requested seats. The whole
// seat set is claimed atomically: if any seat is unavailable the request
// fails with a SeatConflictError naming that seat and nothing is held.
func (e *Engine) CreateHold(
	ctx context.Context,
	screeningID string,
	requester string,
	contact domain.Contact,
	seats []domain.Seat) (*domain.Reservation, error) {

	if len(seats) == 0 {
		return nil, domain.ErrEmptySeatSelection
	}

	seats = domain.DedupSeats(seats)

	screening, err := e.screenings.GetById(ctx, screeningID)
	if err != nil {
		return nil, err
	}

	lock := e.locks.forScreening(screeningID)
	lock.Lock()
	res, err := e.createHoldLocked(ctx, screening, requester, contact, seats)
	lock.Unlock()

	if err != nil {
		return nil, err
	}

	e.publish(ctx, domain.NewEvent(domain.EventSeatsHeld, res, e.clock.Now()))

	return res, nil
}

func (e *Engine) createHoldLocked(
	ctx context.Context,
	screening *domain.Screening,
	requester string,
	contact domain.Contact,
	seats []domain.Seat) (*domain.Reservation, error) {

	sm, err := e.seatMapLocked(ctx, screening)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	res := domain.NewReservation(screening.ID, requester, contact, seats, screening.BasePrice, now, e.holdTTL)

	err = sm.MarkHeld(seats, res.ID, res.ExpiresAt, now)
	if err != nil {
		return nil, err
	}

	err = e.reservations.Create(ctx, res)
	if err != nil {
		sm.MarkFree(seats, res.ID)
		return nil, domain.PersistenceError{Op: "create hold", Err: err}
	}

	return res, nil
}

// Confirm promotes a pending reservation to confirmed and books its seats.
// Confirming after the hold deadline fails with ErrHoldExpired and releases
// the seats as a side effect; a reservation in any terminal state fails with
// ErrAlreadyProcessed.
func (e *Engine) Confirm(ctx context.Context, reservationID, paymentMethod string) (*domain.Reservation, error) {
	res, err := e.reservations.GetById(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	lock := e.locks.forScreening(res.ScreeningID)
	lock.Lock()
	res, event, err := e.confirmLocked(ctx, reservationID, paymentMethod)
	lock.Unlock()

	if event != nil {
		e.publish(ctx, *event)
	}

	if err != nil {
		return nil, err
	}

	return res, nil
}

func (e *Engine) confirmLocked(
	ctx context.Context,
	reservationID string,
	paymentMethod string) (*domain.Reservation, *domain.Event, error) {

	// Re-read inside the critical section: a concurrent cancel or sweep may
	// have won the lock first, and we must observe its transition.
	res, err := e.reservations.GetById(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}

	if res.Status != domain.ReservationPending {
		return nil, nil, domain.ErrAlreadyProcessed
	}

	screening, err := e.screenings.GetById(ctx, res.ScreeningID)
	if err != nil {
		return nil, nil, err
	}

	sm, err := e.seatMapLocked(ctx, screening)
	if err != nil {
		return nil, nil, err
	}

	now := e.clock.Now()

	if res.IsExpired(now) {
		res.Status = domain.ReservationExpired
		res.UpdatedAt = now

		err = e.reservations.Update(ctx, res)
		if err != nil {
			return nil, nil, domain.PersistenceError{Op: "expire hold", Err: err}
		}

		sm.MarkFree(res.Seats, res.ID)
		event := domain.NewEvent(domain.EventSeatsReleased, res, now)

		return nil, &event, domain.ErrHoldExpired
	}

	// Book the seats before committing the status: if the index attributes
	// any seat to another reservation, the confirm must fail outright.
	err = sm.MarkBooked(res.Seats, res.ID)
	if err != nil {
		return nil, nil, err
	}

	res.Status = domain.ReservationConfirmed
	res.PaymentMethod = paymentMethod
	res.UpdatedAt = now

	err = e.reservations.Update(ctx, res)
	if err != nil {
		// The booking never reached the store; reinstate the hold.
		res.Status = domain.ReservationPending
		res.PaymentMethod = ""
		sm.MarkFree(res.Seats, res.ID)

		if holdErr := sm.MarkHeld(res.Seats, res.ID, res.ExpiresAt, now); holdErr != nil {
			e.logger.Error("failed to reinstate hold after aborted confirm",
				"reservation_id", res.ID, "screening_id", res.ScreeningID, "error", holdErr)
		}

		return nil, nil, domain.PersistenceError{Op: "confirm reservation", Err: err}
	}

	event := domain.NewEvent(domain.EventReservationConfirmed, res, now)

	return res, &event, nil
}

// Cancel releases a reservation's seats immediately. Pending and confirmed
// reservations can be cancelled; cancelling one that is already in a terminal
// state fails with ErrAlreadyProcessed and leaves seat state untouched.
func (e *Engine) Cancel(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	res, err := e.reservations.GetById(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	lock := e.locks.forScreening(res.ScreeningID)
	lock.Lock()
	res, event, err := e.cancelLocked(ctx, reservationID)
	lock.Unlock()

	if err != nil {
		return nil, err
	}

	e.publish(ctx, *event)

	return res, nil
}

func (e *Engine) cancelLocked(ctx context.Context, reservationID string) (*domain.Reservation, *domain.Event, error) {
	res, err := e.reservations.GetById(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}

	if res.Status != domain.ReservationPending && res.Status != domain.ReservationConfirmed {
		return nil, nil, domain.ErrAlreadyProcessed
	}

	screening, err := e.screenings.GetById(ctx, res.ScreeningID)
	if err != nil {
		return nil, nil, err
	}

	sm, err := e.seatMapLocked(ctx, screening)
	if err != nil {
		return nil, nil, err
	}

	now := e.clock.Now()
	previous := res.Status

	res.Status = domain.ReservationCancelled
	res.UpdatedAt = now

	err = e.reservations.Update(ctx, res)
	if err != nil {
		res.Status = previous
		return nil, nil, domain.PersistenceError{Op: "cancel reservation", Err: err}
	}

	sm.MarkFree(res.Seats, res.ID)
	event := domain.NewEvent(domain.EventReservationCancelled, res, now)

	return res, &event, nil
}

// ExpireDue releases every pending hold whose deadline has passed. One stuck
// reservation must not halt the sweep, so individual failures are logged and
// skipped. Returns the number of reservations expired.
func (e *Engine) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := e.expiry.SweepDue(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0

	for _, id := range due {
		released, err := e.expireOne(ctx, id, now)
		if err != nil {
			e.logger.Error("failed to expire hold", "reservation_id", id, "error", err)
			continue
		}

		if released {
			expired++
		}
	}

	return expired, nil
}

func (e *Engine) expireOne(ctx context.Context, reservationID string, now time.Time) (bool, error) {
	res, err := e.reservations.GetById(ctx, reservationID)
	if err != nil {
		return false, err
	}

	lock := e.locks.forScreening(res.ScreeningID)
	lock.Lock()
	res, event, err := e.expireLocked(ctx, reservationID, now)
	lock.Unlock()

	if err != nil {
		return false, err
	}

	if event != nil {
		e.publish(ctx, *event)
	}

	return res != nil, nil
}

func (e *Engine) expireLocked(
	ctx context.Context,
	reservationID string,
	now time.Time) (*domain.Reservation, *domain.Event, error) {

	res, err := e.reservations.GetById(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}

	// A confirm or cancel may have won the race for the lock; in that case
	// there is nothing left to release.
	if res.Status != domain.ReservationPending || !res.IsExpired(now) {
		return nil, nil, nil
	}

	screening, err := e.screenings.GetById(ctx, res.ScreeningID)
	if err != nil {
		return nil, nil, err
	}

	sm, err := e.seatMapLocked(ctx, screening)
	if err != nil {
		return nil, nil, err
	}

	res.Status = domain.ReservationExpired
	res.UpdatedAt = now

	err = e.reservations.Update(ctx, res)
	if err != nil {
		return nil, nil, domain.PersistenceError{Op: "expire hold", Err: err}
	}

	sm.MarkFree(res.Seats, res.ID)
	event := domain.NewEvent(domain.EventSeatsReleased, res, now)

	return res, &event, nil
}

// Availability returns the screening together with a seat-by-seat
// availability snapshot, ordered by row and seat number.
func (e *Engine) Availability(ctx context.Context, screeningID string) (*domain.Screening, []domain.SeatAvailability, error) {
	screening, err := e.screenings.GetById(ctx, screeningID)
	if err != nil {
		return nil, nil, err
	}

	lock := e.locks.forScreening(screeningID)
	lock.Lock()
	sm, err := e.seatMapLocked(ctx, screening)
	if err != nil {
		lock.Unlock()
		return nil, nil, err
	}

	snapshot := sm.Snapshot(e.clock.Now())
	lock.Unlock()

	sort.Slice(snapshot, func(i, j int) bool {
		if snapshot[i].Seat.Row != snapshot[j].Seat.Row {
			return snapshot[i].Seat.Row < snapshot[j].Seat.Row
		}
		return snapshot[i].Seat.Number < snapshot[j].Seat.Number
	})

	return screening, snapshot, nil
}

// GetScreening looks a screening up by id.
func (e *Engine) GetScreening(ctx context.Context, screeningID string) (*domain.Screening, error) {
	return e.screenings.GetById(ctx, screeningID)
}

// GetReservation looks a reservation up by id.
func (e *Engine) GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	return e.reservations.GetById(ctx, reservationID)
}

// GetReservationByCode looks a reservation up by its public code.
func (e *Engine) GetReservationByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	return e.reservations.GetByCode(ctx, code)
}

// RemainingSeconds reports how long a pending hold has left before it
// auto-releases. Terminal reservations report zero. The read is lock-free and
// tolerant of in-flight mutations.
func (e *Engine) RemainingSeconds(ctx context.Context, reservationID string) (int64, error) {
	res, err := e.reservations.GetById(ctx, reservationID)
	if err != nil {
		return 0, err
	}

	if res.Status != domain.ReservationPending {
		return 0, nil
	}

	return res.RemainingSeconds(e.clock.Now()), nil
}

// ByRequester lists all reservations created by the given requester.
func (e *Engine) ByRequester(ctx context.Context, requester string) ([]*domain.Reservation, error) {
	return e.reservations.FindByRequester(ctx, requester)
}

// ByScreening lists all reservations for the given screening.
func (e *Engine) ByScreening(ctx context.Context, screeningID string) ([]*domain.Reservation, error) {
	return e.reservations.FindByScreening(ctx, screeningID)
}

// seatMapLocked returns the screening's seat map, rebuilding the index from
// reservation data on first access. Must be called with the screening lock
// held.
func (e *Engine) seatMapLocked(ctx context.Context, screening *domain.Screening) (*domain.SeatMap, error) {
	e.mu.Lock()
	sm, ok := e.seatMaps[screening.ID]
	e.mu.Unlock()

	if ok {
		return sm, nil
	}

	reservations, err := e.reservations.FindByScreening(ctx, screening.ID)
	if err != nil {
		return nil, err
	}

	sm = domain.BuildSeatMap(screening.Layout, reservations, e.clock.Now())

	e.mu.Lock()
	e.seatMaps[screening.ID] = sm
	e.mu.Unlock()

	return sm, nil
}

func (e *Engine) publish(ctx context.Context, event domain.Event) {
	err := e.notifier.Publish(ctx, event)
	if err != nil {
		e.logger.Error("failed to publish event",
			"event_type", event.Type, "screening_id", event.ScreeningID, "error", err)
	}
}
