// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package star implements STAR voting (Score-Then-Automatic-Runoff): sum
// scores, take the top two, then run an automatic head-to-head runoff.
package star

import "sort"

type Election struct {
	Title    string
	Options  []string
	MaxScore int
}

type Vote struct {
	VoterID string
	Votes   []int // parallel to Options; 0..MaxScore
}

type Tally struct {
	OptionIndex int
	VoteCount   int
}

type Runoff struct {
	FinalistA int
	FinalistB int
	WinsA     int
	WinsB     int
}

type Result struct {
	Options   []string
	Winner    int
	VoteTally []Tally
	Runoff    Runoff
	VoteCount int
}

func GetResult(election Election, votes []Vote) Result {
	sums := make([]int, len(election.Options))
	for _, v := range votes {
		for i, s := range v.Votes {
			sums[i] += s
		}
	}

	tally := make([]Tally, len(sums))
	for i, s := range sums {
		tally[i] = Tally{OptionIndex: i, VoteCount: s}
	}
	sort.SliceStable(tally, func(i, j int) bool {
		return tally[i].VoteCount > tally[j].VoteCount
	})

	finalistA := tally[0].OptionIndex
	finalistB := tally[1].OptionIndex

	var winsA, winsB int
	for _, v := range votes {
		a, b := v.Votes[finalistA], v.Votes[finalistB]
		if a > b {
			winsA++
		} else if b > a {
			winsB++
		}
	}

	winner := finalistA
	if winsB > winsA {
		winner = finalistB
	}

	return Result{
		Options:   election.Options,
		Winner:    winner,
		VoteTally: tally,
		Runoff:    Runoff{FinalistA: finalistA, FinalistB: finalistB, WinsA: winsA, WinsB: winsB},
		VoteCount: len(votes),
	}
}
