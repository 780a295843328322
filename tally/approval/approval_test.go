// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package approval

import "testing"

func TestGetResultWinnerHasMostApprovals(t *testing.T) {
	election := Election{Title: "snacks", Options: []string{"A", "B", "C"}}
	votes := []Vote{
		{VoterID: "1", Approvals: []bool{true, true, false}},
		{VoterID: "2", Approvals: []bool{true, false, false}},
		{VoterID: "3", Approvals: []bool{false, true, true}},
	}

	result := GetResult(election, votes)

	if result.Winner != 0 {
		t.Fatalf("expected winner 0, got %d", result.Winner)
	}
	if result.VoteCount != 3 {
		t.Fatalf("expected vote count 3, got %d", result.VoteCount)
	}
	var sum int
	for _, tally := range result.ApproveTally {
		sum += tally.ApprovalCount
	}
	if sum != 5 {
		t.Fatalf("expected total approvals 5, got %d", sum)
	}
}

func TestGetResultDeterministic(t *testing.T) {
	election := Election{Title: "snacks", Options: []string{"A", "B"}}
	votes := []Vote{{VoterID: "1", Approvals: []bool{true, true}}}

	first := GetResult(election, votes)
	second := GetResult(election, votes)

	if first.Winner != second.Winner {
		t.Fatalf("expected deterministic winner, got %d then %d", first.Winner, second.Winner)
	}
}
