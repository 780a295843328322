// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package antiplurality implements Anti-Plurality: each ballot names the
// option it disapproves of most; the winner has the fewest disapprovals.
package antiplurality

import "sort"

type Election struct {
	Title   string
	Options []string
}

type Vote struct {
	VoterID     string
	Disapproved int // single option index
}

type Tally struct {
	OptionIndex      int
	DisapprovalCount int
}

type Result struct {
	Options   []string
	Winner    int
	VoteTally []Tally
	VoteCount int
}

func GetResult(election Election, votes []Vote) Result {
	counts := make([]int, len(election.Options))
	for _, v := range votes {
		counts[v.Disapproved]++
	}

	tally := make([]Tally, len(counts))
	for i, c := range counts {
		tally[i] = Tally{OptionIndex: i, DisapprovalCount: c}
	}
	sort.SliceStable(tally, func(i, j int) bool {
		return tally[i].DisapprovalCount < tally[j].DisapprovalCount
	})

	return Result{
		Options:   election.Options,
		Winner:    tally[0].OptionIndex,
		VoteTally: tally,
		VoteCount: len(votes),
	}
}
