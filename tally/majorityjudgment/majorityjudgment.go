// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package majorityjudgment implements Majority Judgment over five grades,
// resolving ties by repeatedly eroding the shared median grade until one
// option remains, falling back to a restricted Score runoff if the tie
// survives every grade.
package majorityjudgment

import "github.com/sardap/voting-systems/tally/score"

const (
	Terrible = iota
	Poor
	Acceptable
	Good
	VeryGood
	numGrades
)

var GradeNames = [numGrades]string{"Terrible", "Poor", "Acceptable", "Good", "VeryGood"}

type Election struct {
	Title   string
	Options []string
}

type Vote struct {
	VoterID string
	Grades  []int // parallel to Options; one of Terrible..VeryGood
}

type Result struct {
	Options      []string
	Winner       int
	Medians      []int
	Histograms   [][numGrades]int
	VoteCount    int
	RestrictedScore *score.Result
}

func histograms(election Election, votes []Vote) [][numGrades]int {
	hists := make([][numGrades]int, len(election.Options))
	for _, v := range votes {
		for option, grade := range v.Grades {
			hists[option][grade]++
		}
	}
	return hists
}

func median(h [numGrades]int) int {
	total := 0
	for _, c := range h {
		total += c
	}
	if total == 0 {
		return Terrible
	}
	mid := total / 2
	cum := 0
	for grade, c := range h {
		cum += c
		if cum > mid {
			return grade
		}
	}
	return numGrades - 1
}

func GetResult(election Election, votes []Vote) Result {
	hists := histograms(election, votes)

	medians := make([]int, len(hists))
	for i, h := range hists {
		medians[i] = median(h)
	}

	best := Terrible
	for _, m := range medians {
		if m > best {
			best = m
		}
	}

	var tied []int
	for i, m := range medians {
		if m == best {
			tied = append(tied, i)
		}
	}

	if len(tied) == 1 {
		return Result{Options: election.Options, Winner: tied[0], Medians: medians, Histograms: hists, VoteCount: len(votes)}
	}

	working := make(map[int][numGrades]int, len(tied))
	for _, i := range tied {
		working[i] = hists[i]
	}

	bestMedian := best
	for {
		bucketExhausted := true
		for _, i := range tied {
			h := working[i]
			if h[bestMedian] > 0 {
				h[bestMedian]--
				working[i] = h
				bucketExhausted = false
			}
		}
		if bucketExhausted {
			break
		}

		newBest := Terrible
		roundMedians := make(map[int]int, len(tied))
		for _, i := range tied {
			m := median(working[i])
			roundMedians[i] = m
			if m > newBest {
				newBest = m
			}
		}

		var survivors []int
		for _, i := range tied {
			if roundMedians[i] == newBest {
				survivors = append(survivors, i)
			}
		}

		if len(survivors) == 1 {
			return Result{Options: election.Options, Winner: survivors[0], Medians: medians, Histograms: hists, VoteCount: len(votes)}
		}

		tied = survivors
		bestMedian = newBest
	}

	restrictedVotes := make([]score.Vote, len(votes))
	for i, v := range votes {
		scores := make([]int, len(election.Options))
		for _, option := range tied {
			scores[option] = v.Grades[option]
		}
		restrictedVotes[i] = score.Vote{VoterID: v.VoterID, Votes: scores}
	}
	restrictedResult := score.GetResult(score.Election{Title: election.Title, Options: election.Options, MaxScore: numGrades - 1}, restrictedVotes)

	return Result{
		Options:         election.Options,
		Winner:          restrictedResult.Winner,
		Medians:         medians,
		Histograms:      hists,
		VoteCount:       len(votes),
		RestrictedScore: &restrictedResult,
	}
}
