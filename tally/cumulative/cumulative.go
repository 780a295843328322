// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package cumulative implements Cumulative voting: each ballot distributes
// points across options. GetResult does not check a ballot's total against
// MaxVotes, and the raw-ballot handler does not either.
package cumulative

import "sort"

type Election struct {
	Title    string
	Options  []string
	MaxVotes int
}

type Vote struct {
	VoterID string
	Votes   []int // parallel to Options; per-option point allocation
}

type Tally struct {
	OptionIndex int
	VoteCount   int
}

type Result struct {
	Options   []string
	VotesTally []Tally
	Winner    int
	VoteCount int
	Votes     []Vote
}

func GetResult(election Election, votes []Vote) Result {
	points := make([]int, len(election.Options))
	for _, v := range votes {
		for i, p := range v.Votes {
			points[i] += p
		}
	}

	tally := make([]Tally, len(points))
	for i, p := range points {
		tally[i] = Tally{OptionIndex: i, VoteCount: p}
	}
	sort.SliceStable(tally, func(i, j int) bool {
		return tally[i].VoteCount > tally[j].VoteCount
	})

	return Result{
		Options:    election.Options,
		Winner:     tally[0].OptionIndex,
		VotesTally: tally,
		VoteCount:  len(votes),
		Votes:      votes,
	}
}
