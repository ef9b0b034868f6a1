package domain

import "time"

// Clock abstracts wall-clock time so that expiry behavior is deterministic in
// tests.
type Clock interface {
	Now() time.Time
}
