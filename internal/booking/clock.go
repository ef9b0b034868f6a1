package booking

import (
	"time"

	"github.com/netcinema/booking/internal/domain"
)

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns the wall clock used outside of tests.
func SystemClock() domain.Clock {
	return systemClock{}
}
