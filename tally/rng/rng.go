// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
)

// RNG is a deterministic, title-seeded generator for tie-breaking choices
// inside a single tally invocation. It must never be shared across calls.
type RNG struct {
	r *rand.Rand
}

// New derives a generator from an election title. The same title always
// produces the same sequence of draws.
func New(title string) *RNG {
	sum := sha256.Sum256([]byte(title))
	seed1 := binary.BigEndian.Uint64(sum[0:8])
	seed2 := binary.BigEndian.Uint64(sum[8:16])
	return &RNG{r: rand.New(rand.NewPCG(seed1, seed2))}
}

// Intn returns a pseudo-random number in [0, n).
func (g *RNG) Intn(n int) int {
	return g.r.IntN(n)
}

// Choose returns a uniformly random element of options.
func Choose[T any](g *RNG, options []T) T {
	return options[g.Intn(len(options))]
}

// Shuffle randomizes the order of a slice of length n in place.
func (g *RNG) Shuffle(n int, swap func(i, j int)) {
	g.r.Shuffle(n, swap)
}
