// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package threetwoone

import "testing"

func TestGetResultPicksFinalistsAndWinner(t *testing.T) {
	election := Election{Title: "321", Options: []string{"A", "B", "C", "D"}}
	votes := []Vote{
		{Grades: []int{Good, Good, Ok, Bad}},
		{Grades: []int{Good, Ok, Good, Bad}},
		{Grades: []int{Good, Good, Bad, Bad}},
		{Grades: []int{Ok, Good, Ok, Bad}},
	}

	result := GetResult(election, votes)

	if len(result.Semifinalists) != 3 {
		t.Fatalf("expected 3 semifinalists, got %v", result.Semifinalists)
	}
	if len(result.Finalists) != 2 {
		t.Fatalf("expected 2 finalists, got %v", result.Finalists)
	}
	found := false
	for _, f := range result.Finalists {
		if f == result.Winner {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected winner %d to be among finalists %v", result.Winner, result.Finalists)
	}
}

func TestGetResultDeterministic(t *testing.T) {
	election := Election{Title: "321-tie", Options: []string{"A", "B", "C"}}
	votes := []Vote{
		{Grades: []int{Good, Good, Ok}},
		{Grades: []int{Ok, Ok, Good}},
	}

	first := GetResult(election, votes)
	second := GetResult(election, votes)

	if first.Winner != second.Winner {
		t.Fatalf("expected deterministic winner, got %d then %d", first.Winner, second.Winner)
	}
}
