// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package irv

import "testing"

// 3 options, 5 ballots all ranking option 0 first -> winner = 0 in 1 round.
func TestGetResultBasicUnanimous(t *testing.T) {
	election := Election{Title: "irv-basic", Options: []string{"A", "B", "C"}}
	votes := []Vote{
		{Votes: []int{0, 1, 2}},
		{Votes: []int{0, 1, 2}},
		{Votes: []int{0, 2, 1}},
		{Votes: []int{0, 1, 2}},
		{Votes: []int{0, 2, 1}},
	}

	result := GetResult(election, votes)

	if result.Winner != 0 {
		t.Fatalf("expected winner 0, got %d", result.Winner)
	}
	if len(result.Rounds) != 1 {
		t.Fatalf("expected 1 round, got %d", len(result.Rounds))
	}
}

// A,B,C; 4 ballots [A,B,C], 3 [B,A,C], 2 [C,B,A] -> round1: A=4,B=3,C=2;
// eliminate C; round2: A=4, B=5 -> winner B.
func TestGetResultEliminationRound(t *testing.T) {
	election := Election{Title: "irv-elim", Options: []string{"A", "B", "C"}}
	var votes []Vote
	for i := 0; i < 4; i++ {
		votes = append(votes, Vote{Votes: []int{0, 1, 2}}) // [A,B,C]
	}
	for i := 0; i < 3; i++ {
		votes = append(votes, Vote{Votes: []int{1, 0, 2}}) // [B,A,C]
	}
	for i := 0; i < 2; i++ {
		votes = append(votes, Vote{Votes: []int{2, 1, 0}}) // [C,B,A]
	}

	result := GetResult(election, votes)

	if result.Rounds[0].PerCandidateVotes[0] != 4 {
		t.Fatalf("expected round 1 A=4, got %d", result.Rounds[0].PerCandidateVotes[0])
	}
	if result.Rounds[0].PerCandidateVotes[1] != 3 {
		t.Fatalf("expected round 1 B=3, got %d", result.Rounds[0].PerCandidateVotes[1])
	}
	if result.Rounds[0].PerCandidateVotes[2] != 2 {
		t.Fatalf("expected round 1 C=2, got %d", result.Rounds[0].PerCandidateVotes[2])
	}
	if result.Winner != 1 {
		t.Fatalf("expected winner B (index 1), got %d", result.Winner)
	}
}

// A,B,C,D; round 1 ties B,C,D at 3 first-choice votes each (A=10, clear of
// the tie). Ballots are built so B has 10 second-preference votes while C
// and D have 0, then C has 13 third-preference votes while D has 0 -
// narrowing on the LEAST support at each depth must eliminate D, the
// candidate with genuinely the least overall backing. The old shared
// max-based comparator would instead eliminate B, the strongest of the
// three tied candidates.
func TestGetResultEliminationTieBreaksTowardWeakest(t *testing.T) {
	election := Election{Title: "irv-elim-tie", Options: []string{"A", "B", "C", "D"}}
	var votes []Vote
	for i := 0; i < 10; i++ {
		votes = append(votes, Vote{Votes: []int{0, 1, 2, 3}}) // A,B,C,D
	}
	for i := 0; i < 3; i++ {
		votes = append(votes, Vote{Votes: []int{1, 0, 2, 3}}) // B,A,C,D
	}
	for i := 0; i < 3; i++ {
		votes = append(votes, Vote{Votes: []int{1, 2, 0, 3}}) // C,A,B,D
	}
	for i := 0; i < 3; i++ {
		votes = append(votes, Vote{Votes: []int{1, 2, 3, 0}}) // D,A,B,C
	}

	result := GetResult(election, votes)

	if len(result.Rounds) < 2 {
		t.Fatalf("expected at least 2 rounds, got %d", len(result.Rounds))
	}
	eliminatedAfterRound1 := result.Rounds[1].EliminatedSet
	if len(eliminatedAfterRound1) != 1 || eliminatedAfterRound1[0] != 3 {
		t.Fatalf("expected D (index 3) eliminated first, got %v", eliminatedAfterRound1)
	}
}
