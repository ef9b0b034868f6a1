package booking

import (
	"context"
	"log/slog"
	"time"

	"github.com/netcinema/booking/internal/domain"
)

// DefaultSweepInterval keeps the worst case seat-blocking window at
// holdTTL + interval.
const DefaultSweepInterval = 30 * time.Second

// Sweeper periodically asks the engine to release due holds. It serializes
// with user-initiated operations on the same screening locks and stops when
// its context is cancelled.
type Sweeper struct {
	engine   *Engine
	clock    domain.Clock
	logger   *slog.Logger
	interval time.Duration
}

func NewSweeper(engine *Engine, clock domain.Clock, logger *slog.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &Sweeper{
		engine:   engine,
		clock:    clock,
		logger:   logger,
		interval: interval,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("hold expiry sweeper started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("hold expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := s.clock.Now()

	expired, err := s.engine.ExpireDue(ctx, now)
	if err != nil {
		s.logger.Error("hold expiry sweep failed", "error", err)
		return
	}

	if expired > 0 {
		s.logger.Info("released expired holds", "count", expired)
	}
}
