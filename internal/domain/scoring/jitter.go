package scoring

import (
	"math/rand"
	"sync"
)

// Jitter supplies the random perturbation added to the availability factor.
// Float64 returns a value in [0,1).
type Jitter interface {
	Float64() float64
}

// NoJitter disables the availability perturbation.
type NoJitter struct{}

// Float64 always returns 0.
func (NoJitter) Float64() float64 { return 0 }

// seededJitter is a math/rand source safe for concurrent scoring.
type seededJitter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededJitter returns a concurrency-safe Jitter seeded with seed.
func NewSeededJitter(seed int64) Jitter {
	return &seededJitter{
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // non-cryptographic perturbation
	}
}

func (j *seededJitter) Float64() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.rng.Float64()
}
