// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package score implements Score voting with a descending-score runoff
// among options tied for the highest total.
package score

import (
	"sort"

	"github.com/sardap/voting-systems/tally/rng"
)

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
	Participants []int
	Winners      []int
	ScoreChecked int
}

type Result struct {
	Options   []string
	Runoff    *Runoff
	Winner    int
	VoteTally []Tally
	VoteCount int
}

func runoff(participants []int, votes []Vote, maxScore int) Runoff {
	tally := make(map[int]map[int]int, len(participants))
	for _, p := range participants {
		inner := make(map[int]int, maxScore+1)
		for j := 0; j <= maxScore; j++ {
			inner[j] = 0
		}
		tally[p] = inner
	}

	for _, v := range votes {
		for optionIndex, s := range v.Votes {
			if inner, ok := tally[optionIndex]; ok {
				inner[s]++
			}
		}
	}

	var winners []int
	top := maxScore
	for {
		max := 0
		for _, p := range participants {
			if c := tally[p][top]; c > max {
				max = c
			}
		}

		winners = nil
		for _, p := range participants {
			if tally[p][top] == max {
				winners = append(winners, p)
			}
		}

		if len(winners) == 1 || top-1 == 0 {
			break
		}
		top--
	}

	return Runoff{Participants: append([]int{}, participants...), Winners: winners, ScoreChecked: top}
}

func GetResult(election Election, votes []Vote) Result {
	r := rng.New(election.Title)

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

	topScore := tally[0].VoteCount
	var matchingScore []int
	for _, t := range tally {
		if t.VoteCount == topScore {
			matchingScore = append(matchingScore, t.OptionIndex)
		}
	}

	if len(matchingScore) > 1 {
		runoffResult := runoff(matchingScore, votes, election.MaxScore)

		var winner int
		if len(runoffResult.Winners) == 0 {
			winner = matchingScore[0]
		} else {
			winner = rng.Choose(r, runoffResult.Winners)
		}

		return Result{
			Options:   election.Options,
			Winner:    winner,
			Runoff:    &runoffResult,
			VoteTally: tally,
			VoteCount: len(votes),
		}
	}

	return Result{
		Options:   election.Options,
		Winner:    matchingScore[0],
		Runoff:    nil,
		VoteTally: tally,
		VoteCount: len(votes),
	}
}
