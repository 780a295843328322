// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package threetwoone implements the 3-2-1 voting method: three
// semifinalists by Good count, two finalists after dropping the one with
// the most Bad ratings, decided by a pairwise head-to-head comparison.
package threetwoone

import (
	"sort"

	"github.com/sardap/voting-systems/tally/rng"
)

const (
	Bad = iota
	Ok
	Good
)

type Election struct {
	Title   string
	Options []string
}

type Vote struct {
	VoterID string
	Grades  []int // parallel to Options; Bad, Ok, or Good
}

type candidate struct {
	option    int
	good      int
	ok        int
	bad       int
	numeric   int
}

type Result struct {
	Options       []string
	Semifinalists []int
	Finalists     []int
	Winner        int
	VoteCount     int
}

func tallyCandidates(election Election, votes []Vote) []candidate {
	candidates := make([]candidate, len(election.Options))
	for i := range candidates {
		candidates[i].option = i
	}
	for _, v := range votes {
		for option, grade := range v.Grades {
			switch grade {
			case Good:
				candidates[option].good++
			case Ok:
				candidates[option].ok++
			case Bad:
				candidates[option].bad++
			}
		}
	}
	for i := range candidates {
		candidates[i].numeric = 2*candidates[i].good + candidates[i].ok
	}
	return candidates
}

// topByKey groups candidates into ties by (good, numeric) descending and
// pulls out `n` of them, breaking a boundary tie with the seeded RNG.
func topByKey(r *rng.RNG, pool []candidate, n int) []candidate {
	sorted := append([]candidate{}, pool...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].good != sorted[j].good {
			return sorted[i].good > sorted[j].good
		}
		return sorted[i].numeric > sorted[j].numeric
	})

	if len(sorted) <= n {
		return sorted
	}

	cutoff := sorted[n-1]
	sameKey := func(c candidate) bool {
		return c.good == cutoff.good && c.numeric == cutoff.numeric
	}

	groupStart := n - 1
	for groupStart > 0 && sameKey(sorted[groupStart-1]) {
		groupStart--
	}
	groupEnd := n - 1
	for groupEnd+1 < len(sorted) && sameKey(sorted[groupEnd+1]) {
		groupEnd++
	}

	tiedGroup := append([]candidate{}, sorted[groupStart:groupEnd+1]...)
	if len(tiedGroup) <= 1 {
		return append([]candidate{}, sorted[:n]...)
	}

	r.Shuffle(len(tiedGroup), func(i, j int) {
		tiedGroup[i], tiedGroup[j] = tiedGroup[j], tiedGroup[i]
	})

	result := append([]candidate{}, sorted[:groupStart]...)
	needed := n - groupStart
	result = append(result, tiedGroup[:needed]...)
	return result
}

func GetResult(election Election, votes []Vote) Result {
	r := rng.New(election.Title)

	candidates := tallyCandidates(election, votes)

	n := 3
	if n > len(candidates) {
		n = len(candidates)
	}
	semifinalists := topByKey(r, candidates, n)

	semiOptions := make([]int, len(semifinalists))
	for i, c := range semifinalists {
		semiOptions[i] = c.option
	}

	// Drop the semifinalist with the most Bad ratings; ties by seeded RNG.
	maxBad := -1
	for _, c := range semifinalists {
		if c.bad > maxBad {
			maxBad = c.bad
		}
	}
	var worst []candidate
	for _, c := range semifinalists {
		if c.bad == maxBad {
			worst = append(worst, c)
		}
	}
	dropped := worst[0]
	if len(worst) > 1 {
		dropped = rng.Choose(r, worst)
	}

	var finalists []candidate
	for _, c := range semifinalists {
		if c.option != dropped.option {
			finalists = append(finalists, c)
		}
	}

	finalistOptions := make([]int, len(finalists))
	for i, c := range finalists {
		finalistOptions[i] = c.option
	}

	winner := finalistOptions[0]
	if len(finalists) == 2 {
		a, b := finalists[0], finalists[1]
		var aCount, bCount int
		for _, v := range votes {
			ga, gb := v.Grades[a.option], v.Grades[b.option]
			if ga > gb {
				aCount++
			} else if gb > ga {
				bCount++
			}
		}
		// On an exact tie, the second finalist wins — matching the
		// source's implicit if/else fallthrough, made explicit here.
		if aCount > bCount {
			winner = a.option
		} else {
			winner = b.option
		}
	}

	return Result{
		Options:       election.Options,
		Semifinalists: semiOptions,
		Finalists:     finalistOptions,
		Winner:        winner,
		VoteCount:     len(votes),
	}
}
