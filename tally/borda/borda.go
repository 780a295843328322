// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package borda implements Borda count: each ballot assigns an integer
// score per option, the winner is the option with the highest total.
package borda

import "sort"

type Election struct {
	Title   string
	Options []string
}

type Vote struct {
	VoterID string
	Votes   []int // parallel to Options; per-option Borda points
}

type Tally struct {
	OptionIndex int
	VoteCount   int
}

type Result struct {
	Options   []string
	Winner    int
	VoteTally []Tally
	VoteCount int
}

func GetResult(election Election, votes []Vote) Result {
	sums := make([]int, len(election.Options))
	for _, v := range votes {
		for i, points := range v.Votes {
			sums[i] += points
		}
	}

	tally := make([]Tally, len(sums))
	for i, s := range sums {
		tally[i] = Tally{OptionIndex: i, VoteCount: s}
	}
	sort.SliceStable(tally, func(i, j int) bool {
		return tally[i].VoteCount > tally[j].VoteCount
	})

	return Result{
		Options:   election.Options,
		Winner:    tally[0].OptionIndex,
		VoteTally: tally,
		VoteCount: len(votes),
	}
}
