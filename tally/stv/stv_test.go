// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stv

import "testing"

// 2 elected, 6 ballots all [0,1], quota = 3; option 0 elected round 1 with
// 6 >= 3; 3 papers filtered, 3 transferred to option 1; option 1 elected
// round 2.
func TestGetResultQuotaTransfer(t *testing.T) {
	election := Election{Title: "stv-quota", Options: []string{"A", "B"}, ElectedCount: 2}
	var votes []Vote
	for i := 0; i < 6; i++ {
		votes = append(votes, Vote{Votes: []int{0, 1}})
	}

	result := GetResult(election, votes, Options{})

	if result.Quota != 3 {
		t.Fatalf("expected quota 3, got %d", result.Quota)
	}
	if len(result.Elected) != 2 {
		t.Fatalf("expected 2 elected, got %v", result.Elected)
	}
	if result.Elected[0] != 0 {
		t.Fatalf("expected option 0 elected first, got %v", result.Elected)
	}
	if result.Elected[1] != 1 {
		t.Fatalf("expected option 1 elected second, got %v", result.Elected)
	}
}

func TestGetResultPreEliminatedSeedsWhatIf(t *testing.T) {
	election := Election{Title: "stv-whatif", Options: []string{"A", "B", "C"}, ElectedCount: 1}
	votes := []Vote{
		{Votes: []int{0, 1, 2}},
		{Votes: []int{0, 1, 2}},
		{Votes: []int{1, 0, 2}},
	}

	result := GetResult(election, votes, Options{PreEliminated: []int{0}})

	for _, elected := range result.Elected {
		if elected == 0 {
			t.Fatalf("expected option 0 to stay excluded per PreEliminated, got %v", result.Elected)
		}
	}
}
