// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package quotapreferential

import "testing"

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// Fewer candidates than seats: everyone wins outright.
func TestGetResultEveryoneWins(t *testing.T) {
	election := Election{
		Title: "qp-everyone-wins",
		Candidates: []Candidate{
			{Name: "Amy", IsFemale: true},
			{Name: "Bo", IsFemale: false},
		},
		ElectedCount:  2,
		PercentFemale: 0.5,
	}
	votes := []Vote{
		{VoterID: "v1", Votes: []int{0, 1}},
		{VoterID: "v2", Votes: []int{1, 0}},
	}

	result := GetResult(election, votes)

	if len(result.Elected) != 2 {
		t.Fatalf("expected both candidates elected, got %v", result.Elected)
	}
}

// 4 candidates (2 male, 2 female) for 3 seats, two-thirds female target
// (min 2 of 3 given round-half-down of 2.0). Electing both male first-
// preference leaders would leave only one seat for two required female
// candidates, so affirmative action must roll back the second male's
// election and elect both women instead.
func TestGetResultAffirmativeActionKeepsSeatsReachable(t *testing.T) {
	election := Election{
		Title: "qp-aa-trigger",
		Candidates: []Candidate{
			{Name: "Mark", IsFemale: false},
			{Name: "Mike", IsFemale: false},
			{Name: "Fiona", IsFemale: true},
			{Name: "Faye", IsFemale: true},
		},
		ElectedCount:  3,
		PercentFemale: 2.0 / 3.0,
	}

	var votes []Vote
	for i := 0; i < 4; i++ {
		votes = append(votes, Vote{Votes: []int{0, 2, 3, 1}}) // Mark first
	}
	for i := 0; i < 3; i++ {
		votes = append(votes, Vote{Votes: []int{1, 2, 3, 0}}) // Mike first
	}
	for i := 0; i < 2; i++ {
		votes = append(votes, Vote{Votes: []int{2, 0, 1, 3}}) // Fiona first
	}
	votes = append(votes, Vote{Votes: []int{3, 0, 1, 2}}) // Faye first

	result := GetResult(election, votes)

	if len(result.Elected) != 3 {
		t.Fatalf("expected all 3 seats filled, got %v", result.Elected)
	}
	if !contains(result.Elected, 2) || !contains(result.Elected, 3) {
		t.Fatalf("expected both female candidates elected via affirmative action, got %v", result.Elected)
	}
	if !contains(result.Elected, 0) {
		t.Fatalf("expected Mark (first elected before AA triggered) to keep his seat, got %v", result.Elected)
	}
}

// A clean first-preference majority for every seat needs no elimination or
// AA intervention; Phase A alone should fill every seat.
func TestGetResultClearFirstPreferenceMajorities(t *testing.T) {
	election := Election{
		Title: "qp-clear-majorities",
		Candidates: []Candidate{
			{Name: "Wendy", IsFemale: true},
			{Name: "Will", IsFemale: false},
			{Name: "Mac", IsFemale: false},
		},
		ElectedCount:  2,
		PercentFemale: 0.5,
	}
	var votes []Vote
	for i := 0; i < 10; i++ {
		votes = append(votes, Vote{Votes: []int{0, 1, 2}})
	}
	for i := 0; i < 10; i++ {
		votes = append(votes, Vote{Votes: []int{1, 0, 2}})
	}

	result := GetResult(election, votes)

	if len(result.Elected) != 2 {
		t.Fatalf("expected 2 elected, got %v", result.Elected)
	}
	if result.Quota != 6666 {
		t.Fatalf("expected quota floor(20*1000/3)=6666, got %d", result.Quota)
	}
}

func TestGetResultDeterministicAcrossRuns(t *testing.T) {
	election := Election{
		Title: "qp-deterministic",
		Candidates: []Candidate{
			{Name: "A", IsFemale: true},
			{Name: "B", IsFemale: false},
			{Name: "C", IsFemale: false},
			{Name: "D", IsFemale: true},
		},
		ElectedCount:  2,
		PercentFemale: 0.5,
	}
	votes := []Vote{
		{Votes: []int{1, 0, 2, 3}},
		{Votes: []int{2, 1, 0, 3}},
		{Votes: []int{0, 3, 1, 2}},
		{Votes: []int{3, 0, 2, 1}},
	}

	first := GetResult(election, votes)
	second := GetResult(election, votes)

	if len(first.Elected) != len(second.Elected) {
		t.Fatalf("expected deterministic result sizes, got %v then %v", first.Elected, second.Elected)
	}
	for i := range first.Elected {
		if first.Elected[i] != second.Elected[i] {
			t.Fatalf("expected deterministic elected order, got %v then %v", first.Elected, second.Elected)
		}
	}
}
