// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package rng provides the deterministic, title-seeded pseudo-random generator
used exclusively for tie-breaking inside the tally engines.

	r := rng.New(election.Title)
	pick := r.Intn(len(tied))

Every tally is a pure function of (election, votes): the same title and
ballots always produce the same generator state, and therefore the same
tie-break choices. Never use a package-level or global generator; always
thread one *RNG instance through a single GetResult call.
*/
package rng
