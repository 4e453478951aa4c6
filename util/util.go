package util

import "math/rand"

// RNG struct encapsulates the random number generator and seed.
//
// Every operation that needs randomness (matrix initialization, vocabulary
// growth, legacy unpacking) takes its own RNG seeded once per call, so
// results are reproducible independent of call order.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Seed returns the seed this RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Uniform returns a single float32 drawn uniformly from [lo, hi).
func (r *RNG) Uniform(lo, hi float32) float32 {
	return lo + r.rand.Float32()*(hi-lo)
}

// FillUniform fills dst with values drawn independently and uniformly
// from [lo, hi).
func (r *RNG) FillUniform(dst []float32, lo, hi float32) {
	for i := range dst {
		dst[i] = lo + r.rand.Float32()*(hi-lo)
	}
}
