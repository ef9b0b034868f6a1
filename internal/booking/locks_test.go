package booking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreeningLocks(t *testing.T) {
	locks := newScreeningLocks()

	first := locks.forScreening("scr-1")
	second := locks.forScreening("scr-2")

	assert.Same(t, first, locks.forScreening("scr-1"))
	assert.NotSame(t, first, second)
}

func TestScreeningLocks_ConcurrentAccessYieldsOneMutex(t *testing.T) {
	locks := newScreeningLocks()

	const goroutines = 16

	var wg sync.WaitGroup
	results := make([]*sync.Mutex, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = locks.forScreening("scr-1")
		}(i)
	}

	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, results[0], results[i])
	}
}
