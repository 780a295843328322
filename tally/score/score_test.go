// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package score

import "testing"

func TestGetResultClearWinnerNoRunoff(t *testing.T) {
	election := Election{Title: "scoring", Options: []string{"A", "B"}, MaxScore: 5}
	votes := []Vote{
		{VoterID: "1", Votes: []int{5, 1}},
		{VoterID: "2", Votes: []int{4, 2}},
	}

	result := GetResult(election, votes)

	if result.Winner != 0 {
		t.Fatalf("expected winner 0, got %d", result.Winner)
	}
	if result.Runoff != nil {
		t.Fatalf("expected no runoff, got %+v", result.Runoff)
	}
}

func TestGetResultTiedTotalsTriggersRunoff(t *testing.T) {
	election := Election{Title: "scoring-tie", Options: []string{"A", "B"}, MaxScore: 5}
	votes := []Vote{
		{VoterID: "1", Votes: []int{5, 0}},
		{VoterID: "2", Votes: []int{0, 5}},
	}

	result := GetResult(election, votes)

	if result.Runoff == nil {
		t.Fatalf("expected a runoff for tied totals")
	}
	if result.Winner != 0 && result.Winner != 1 {
		t.Fatalf("expected winner in {0,1}, got %d", result.Winner)
	}
}

func TestGetResultDeterministicAcrossRuns(t *testing.T) {
	election := Election{Title: "scoring-tie", Options: []string{"A", "B"}, MaxScore: 5}
	votes := []Vote{
		{VoterID: "1", Votes: []int{5, 0}},
		{VoterID: "2", Votes: []int{0, 5}},
	}

	first := GetResult(election, votes)
	second := GetResult(election, votes)

	if first.Winner != second.Winner {
		t.Fatalf("expected same winner across runs, got %d then %d", first.Winner, second.Winner)
	}
}
