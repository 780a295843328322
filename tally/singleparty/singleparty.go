// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package singleparty implements Single-Party voting: a single yes/no
// question, "won" iff more than half of ballots voted true.
package singleparty

type Election struct {
	Title string
}

type Vote struct {
	VoterID string
	Voted   bool
}

type Result struct {
	Won       bool
	VoteCount int
	VotedFor  int
}

func GetResult(election Election, votes []Vote) Result {
	var votedFor int
	for _, v := range votes {
		if v.Voted {
			votedFor++
		}
	}

	return Result{
		Won:       votedFor > len(votes)/2,
		VoteCount: len(votes),
		VotedFor:  votedFor,
	}
}
