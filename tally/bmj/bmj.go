// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package bmj implements Balanced Majority Judgment: continuous 0..1
// ballot scores are remapped to a signed -1..1 scale, ranked by median
// with p10/p90/mean tiebreakers, and soft-vetoed when a third of ballots
// are negative and the median itself is non-positive.
package bmj

import "sort"

type Election struct {
	Title   string
	Options []string
}

// Vote carries one ballot's 0..1 scores, parallel to Election.Options.
type Vote struct {
	VoterID string
	Scores  []float64
}

type Tally struct {
	OptionIndex int
	Median      float64
	P10         float64
	P90         float64
	Mean        float64
	NegShare    float64
	Veto        bool
}

type Result struct {
	Options   []string
	Winner    int
	Tally     []Tally
	VoteCount int
}

// percentile returns the p-th percentile (0..1) of sorted via linear
// interpolation between the closest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0.0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p * float64(len(sorted)-1)
	lower := int(rank)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func negativeShare(signedScores []float64) float64 {
	if len(signedScores) == 0 {
		return 0.0
	}
	neg := 0
	for _, s := range signedScores {
		if s < 0 {
			neg++
		}
	}
	return float64(neg) / float64(len(signedScores))
}

func GetResult(election Election, votes []Vote) Result {
	numOptions := len(election.Options)

	tally := make([]Tally, numOptions)
	for option := 0; option < numOptions; option++ {
		signed := make([]float64, 0, len(votes))
		for _, v := range votes {
			signed = append(signed, 2.0*v.Scores[option]-1.0)
		}
		sort.Float64s(signed)

		t := Tally{
			OptionIndex: option,
			Median:      percentile(signed, 0.5),
			P10:         percentile(signed, 0.1),
			P90:         percentile(signed, 0.9),
			Mean:        mean(signed),
			NegShare:    negativeShare(signed),
		}
		t.Veto = t.NegShare >= 0.33 && t.Median <= 0
		tally[option] = t
	}

	sort.SliceStable(tally, func(i, j int) bool {
		a, b := tally[i], tally[j]
		if a.Veto != b.Veto {
			return !a.Veto
		}
		if a.Median != b.Median {
			return a.Median > b.Median
		}
		if a.P10 != b.P10 {
			return a.P10 > b.P10
		}
		if a.P90 != b.P90 {
			return a.P90 > b.P90
		}
		if a.Mean != b.Mean {
			return a.Mean > b.Mean
		}
		return a.OptionIndex < b.OptionIndex
	})

	winner := -1
	if len(tally) > 0 {
		winner = tally[0].OptionIndex
	}

	return Result{
		Options:   election.Options,
		Winner:    winner,
		Tally:     tally,
		VoteCount: len(votes),
	}
}
