// internal/matching/rand.go
package matching

import (
	"math/rand"
	"time"
)

// Rand is the randomness source used for fallback baseline scores and
// diversity shuffling. It is injected so tests can seed it; the engine
// never reaches for ambient global randomness.
type Rand interface {
	Intn(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// NewSeededRand returns a deterministic source for tests.
func NewSeededRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

// NewTimeRand returns a production source seeded from the clock.
func NewTimeRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
