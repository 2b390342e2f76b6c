package engine

import "math/rand"

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position increments with every draw, so a transcript replayed with
// the same seed sees the same variant choices.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Pick returns a random index in [0, n). Pools of fewer than two
// entries return 0 without consuming a draw.
func (r *RNG) Pick(n int) int {
	if n < 2 {
		return 0
	}
	r.pos++
	return r.src.Intn(n)
}

// Seed returns the seed this stream was created from.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of draws made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}
