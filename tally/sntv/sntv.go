// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package sntv implements Single Non-Transferable Vote: each ballot selects
// exactly one option, the top ElectedCount options by count are elected.
package sntv

import "sort"

type Election struct {
	Title        string
	Options      []string
	ElectedCount int
}

type Vote struct {
	VoterID string
	Option  int
}

type Tally struct {
	OptionIndex int
	VoteCount   int
}

type Result struct {
	Options          []string
	ElectedCandidates []int
	VoteTally        []Tally
	VoteCount        int
}

func GetResult(election Election, votes []Vote) Result {
	counts := make([]int, len(election.Options))
	for _, v := range votes {
		counts[v.Option]++
	}

	tally := make([]Tally, len(counts))
	for i, c := range counts {
		tally[i] = Tally{OptionIndex: i, VoteCount: c}
	}
	sort.SliceStable(tally, func(i, j int) bool {
		return tally[i].VoteCount > tally[j].VoteCount
	})

	elected := election.ElectedCount
	if elected > len(tally) {
		elected = len(tally)
	}
	electedCandidates := make([]int, elected)
	for i := 0; i < elected; i++ {
		electedCandidates[i] = tally[i].OptionIndex
	}

	return Result{
		Options:           election.Options,
		ElectedCandidates: electedCandidates,
		VoteTally:         tally,
		VoteCount:         len(votes),
	}
}
