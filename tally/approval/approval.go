// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package approval implements Approval voting: each ballot names a set of
// approved options, the winner is the option with the most approvals.
package approval

import "sort"

type Election struct {
	Title   string
	Options []string
}

// Vote carries one ballot's approvals, parallel to Election.Options.
type Vote struct {
	VoterID   string
	Approvals []bool
}

type Tally struct {
	OptionIndex   int
	ApprovalCount int
}

type Result struct {
	Options      []string
	Winner       int
	ApproveTally []Tally
	VoteCount    int
}

func GetResult(election Election, votes []Vote) Result {
	counts := make([]int, len(election.Options))
	for _, v := range votes {
		for i, approved := range v.Approvals {
			if approved {
				counts[i]++
			}
		}
	}

	tally := make([]Tally, len(counts))
	for i, c := range counts {
		tally[i] = Tally{OptionIndex: i, ApprovalCount: c}
	}
	sort.SliceStable(tally, func(i, j int) bool {
		return tally[i].ApprovalCount > tally[j].ApprovalCount
	})

	return Result{
		Options:      election.Options,
		Winner:       tally[0].OptionIndex,
		ApproveTally: tally,
		VoteCount:    len(votes),
	}
}
