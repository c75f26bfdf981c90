package engine

import "math/rand"

// RNG wraps math/rand.Rand with deterministic position tracking.
// The position counts draws from the underlying source, so a save can
// record it and a load can replay the stream to exactly the same point.
type RNG struct {
	seed int64
	cs   *countingSource
	src  *rand.Rand
}

type countingSource struct {
	rand.Source
	n int64
}

func (c *countingSource) Int63() int64 {
	c.n++
	return c.Source.Int63()
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	cs := &countingSource{Source: rand.NewSource(seed)}
	return &RNG{
		seed: seed,
		cs:   cs,
		src:  rand.New(cs),
	}
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	if sides < 1 {
		return 1
	}
	return r.src.Intn(sides) + 1
}

// Float64 returns a random value in [0, 1).
func (r *RNG) Float64() float64 {
	return r.src.Float64()
}

// Chance reports whether a draw falls under probability p.
func (r *RNG) Chance(p float64) bool {
	return r.Float64() < p
}

// Seed returns the seed the stream was created from.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of source draws made since creation.
func (r *RNG) Position() int64 {
	return r.cs.n
}

// RestoreRNG creates an RNG and advances it to the given position.
func RestoreRNG(seed int64, position int64) *RNG {
	rng := NewRNG(seed)
	for rng.cs.n < position {
		rng.cs.Int63()
	}
	return rng
}
