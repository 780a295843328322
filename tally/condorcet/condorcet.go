// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package condorcet implements the Condorcet method with a Ranked Pairs
// tie-resolution procedure: a pairwise-preference matrix, cycle-free
// lock-in of margins in descending order, a Borda-count tie-break among
// multiple sources, and an Instant-Runoff fallback for pathological input.
//
// Ballots are PreferenceBallot: Votes[option] = rank, lower is better.
package condorcet

import (
	"sort"

	"github.com/sardap/voting-systems/tally/irv"
	"github.com/sardap/voting-systems/tally/rng"
)

type Election struct {
	Title   string
	Options []string
}

type Vote struct {
	VoterID string
	Votes   []int
}

type Pair struct {
	Winner int
	Loser  int
	Margin int
}

type Result struct {
	Options                   []string
	VoteCount                 int
	Matchups                  [][]int
	CondorcetWinner           *int
	MatchedPairs              []Pair
	LockedInPairwiseVictories []Pair
	MatchedPairWinner         *int
	LastResortWinner          *int
	Winner                    int
}

func buildMatrix(numOptions int, votes []Vote) [][]int {
	m := make([][]int, numOptions)
	for i := range m {
		m[i] = make([]int, numOptions)
	}
	for _, v := range votes {
		for i := 0; i < numOptions; i++ {
			for j := 0; j < numOptions; j++ {
				if i == j {
					continue
				}
				if v.Votes[i] < v.Votes[j] {
					m[i][j]++
				}
			}
		}
	}
	return m
}

func findCondorcetWinner(m [][]int, numOptions int) *int {
	for i := 0; i < numOptions; i++ {
		winsAll := true
		for j := 0; j < numOptions; j++ {
			if i == j {
				continue
			}
			if !(m[i][j] > m[j][i]) {
				winsAll = false
				break
			}
		}
		if winsAll {
			w := i
			return &w
		}
	}
	return nil
}

// canReach reports whether node `to` is reachable from `from` in the
// locked-in graph, used to reject edges that would create a cycle.
func canReach(graph map[int][]int, from, to int) bool {
	visited := map[int]bool{from: true}
	stack := []int{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		for _, next := range graph[n] {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

func bordaScores(numOptions int, votes []Vote) []int {
	scores := make([]int, numOptions)
	for _, v := range votes {
		for option, rank := range v.Votes {
			// Lower rank is better; convert to Borda points.
			scores[option] += numOptions - 1 - rank
		}
	}
	return scores
}

func GetResult(election Election, votes []Vote) Result {
	numOptions := len(election.Options)
	r := rng.New(election.Title)

	m := buildMatrix(numOptions, votes)

	result := Result{
		Options:   election.Options,
		VoteCount: len(votes),
		Matchups:  m,
	}

	if len(votes) == 0 {
		result.Winner = 0
		return result
	}

	if cw := findCondorcetWinner(m, numOptions); cw != nil {
		result.CondorcetWinner = cw
		result.Winner = *cw
		return result
	}

	var pairs []Pair
	for i := 0; i < numOptions; i++ {
		for j := 0; j < numOptions; j++ {
			if i == j {
				continue
			}
			margin := m[i][j] - m[j][i]
			if margin > 0 {
				pairs = append(pairs, Pair{Winner: i, Loser: j, Margin: margin})
			}
		}
	}
	result.MatchedPairs = pairs

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Margin > pairs[j].Margin
	})

	// Shuffle within equal-margin groups so tie order is seeded, not
	// slice-order, dependent.
	for i := 0; i < len(pairs); {
		j := i + 1
		for j < len(pairs) && pairs[j].Margin == pairs[i].Margin {
			j++
		}
		if j-i > 1 {
			group := pairs[i:j]
			r.Shuffle(len(group), func(a, b int) {
				group[a], group[b] = group[b], group[a]
			})
		}
		i = j
	}

	graph := make(map[int][]int, numOptions)
	incoming := make(map[int]int, numOptions)
	var locked []Pair
	for _, p := range pairs {
		if canReach(graph, p.Loser, p.Winner) {
			continue
		}
		graph[p.Winner] = append(graph[p.Winner], p.Loser)
		incoming[p.Loser]++
		locked = append(locked, p)
	}
	result.LockedInPairwiseVictories = locked

	var sources []int
	for i := 0; i < numOptions; i++ {
		if incoming[i] == 0 {
			sources = append(sources, i)
		}
	}

	if len(sources) == 0 {
		fallbackVotes := make([]irv.Vote, len(votes))
		for i, v := range votes {
			fallbackVotes[i] = irv.Vote{VoterID: v.VoterID, Votes: v.Votes}
		}
		fallback := irv.GetResult(irv.Election{Title: election.Title, Options: election.Options}, fallbackVotes)
		w := fallback.Winner
		result.LastResortWinner = &w
		result.Winner = w
		return result
	}

	if len(sources) == 1 {
		w := sources[0]
		result.MatchedPairWinner = &w
		result.Winner = w
		return result
	}

	scores := bordaScores(numOptions, votes)
	best := -1
	var tied []int
	for _, s := range sources {
		if scores[s] > best {
			best = scores[s]
			tied = []int{s}
		} else if scores[s] == best {
			tied = append(tied, s)
		}
	}

	w := tied[0]
	if len(tied) > 1 {
		w = rng.Choose(r, tied)
	}
	result.MatchedPairWinner = &w
	result.Winner = w
	return result
}
