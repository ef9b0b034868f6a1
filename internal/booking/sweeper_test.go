package booking

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/netcinema/booking/internal/domain"
	"github.com/netcinema/booking/internal/mocks"
)

func newSweeperFixture(t *testing.T) (*Sweeper, *Engine, *mocks.InMemoryReservationStore, *mocks.Clock) {
	t.Helper()

	store := mocks.NewInMemoryReservationStore()
	clock := mocks.NewClock(testStart)
	screenings := &mocks.MockScreeningRepo{
		GetByIdFunc: func(ctx context.Context, id string) (*domain.Screening, error) {
			return testScreening(), nil
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := NewEngine(store, screenings, mocks.NewEventRecorder(), clock, logger, 10*time.Minute)
	sweeper := NewSweeper(engine, clock, logger, 5*time.Millisecond)

	return sweeper, engine, store, clock
}

func TestSweeper_ReleasesDueHolds(t *testing.T) {
	sweeper, engine, store, clock := newSweeperFixture(t)

	res, err := engine.CreateHold(context.Background(), testScreeningID, "session-1", testContact(), []domain.Seat{{Row: "A", Number: 1}})
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sweeper.Run(ctx)

	require.Eventually(t, func() bool {
		stored, err := store.GetById(context.Background(), res.ID)
		if err != nil {
			return false
		}
		return stored.Status == domain.ReservationExpired
	}, time.Second, 5*time.Millisecond)
}

func TestSweeper_StopsOnContextCancel(t *testing.T) {
	sweeper, _, _, _ := newSweeperFixture(t)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}

func TestSweeper_DefaultsInterval(t *testing.T) {
	_, engine, _, clock := newSweeperFixture(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sweeper := NewSweeper(engine, clock, logger, 0)

	require.Equal(t, DefaultSweepInterval, sweeper.interval)
}
