package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Screening is one scheduled showing of a title in a room. Catalog CRUD
// belongs to an external layer; the engine reads screenings through the
// repository and never caches them beyond a single operation.
type Screening struct {
	ID         string
	MovieTitle string
	RoomID     string
	StartTime  time.Time
	Duration   time.Duration
	BasePrice  decimal.Decimal
	Layout     []Seat
}

type ScreeningRepository interface {
	GetById(ctx context.Context, id string) (*Screening, error)
}
