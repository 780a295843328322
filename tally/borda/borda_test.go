// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package borda

import "testing"

func TestGetResultSumsPointsPerOption(t *testing.T) {
	election := Election{Title: "ranking", Options: []string{"A", "B"}}
	votes := []Vote{
		{VoterID: "1", Votes: []int{2, 0}},
		{VoterID: "2", Votes: []int{1, 1}},
	}

	result := GetResult(election, votes)

	if result.Winner != 0 {
		t.Fatalf("expected winner 0, got %d", result.Winner)
	}
	if result.VoteTally[0].VoteCount != 3 {
		t.Fatalf("expected top tally 3, got %d", result.VoteTally[0].VoteCount)
	}
}
