// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package irv implements Instant-Runoff (preferential) voting: round-based
// elimination with a preference-depth tie-break, falling back to the
// seeded RNG only once every preference depth has been exhausted.
//
// Ballots are PreferenceBallot: Votes[option] = rank, lower is better.
package irv

import "github.com/sardap/voting-systems/tally/rng"

type Election struct {
	Title   string
	Options []string
}

// Vote is a PreferenceBallot: Votes[option] holds the rank assigned to
// that option (0 = most preferred).
type Vote struct {
	VoterID string
	Votes   []int
}

type Round struct {
	EliminatedSet     []int
	PerCandidateVotes map[int]int
}

type Result struct {
	Options   []string
	Winner    int
	Rounds    []Round
	VoteCount int
}

func topChoice(v Vote, eliminated map[int]bool) (int, bool) {
	best := -1
	bestRank := -1
	for option, rank := range v.Votes {
		if eliminated[option] {
			continue
		}
		if best == -1 || rank < bestRank {
			best = option
			bestRank = rank
		}
	}
	return best, best != -1
}

// preferenceDepthCounts counts, for a candidate, how many original ballots
// rank it at each depth (index = rank value).
func preferenceDepthCounts(votes []Vote, candidate, numOptions int) []int {
	counts := make([]int, numOptions)
	for _, v := range votes {
		rank := v.Votes[candidate]
		if rank >= 0 && rank < numOptions {
			counts[rank]++
		}
	}
	return counts
}

// breakTie resolves a terminal (final-round) tie among candidates by
// comparing preference-depth counts from the original ballots, depth by
// depth, preferring the candidate with the most support at each depth and
// falling back to the seeded RNG only once every depth has been exhausted.
func breakTie(r *rng.RNG, candidates []int, votes []Vote, numOptions int) int {
	pool := append([]int{}, candidates...)
	for depth := 0; depth < numOptions; depth++ {
		best := -1
		var survivors []int
		for _, c := range pool {
			counts := preferenceDepthCounts(votes, c, numOptions)
			if counts[depth] > best {
				best = counts[depth]
				survivors = []int{c}
			} else if counts[depth] == best {
				survivors = append(survivors, c)
			}
		}
		if len(survivors) == 1 {
			return survivors[0]
		}
		pool = survivors
	}
	return rng.Choose(r, pool)
}

// breakEliminationTie resolves a tie among candidates already tied for
// fewest votes by narrowing to the candidate with the LEAST support at each
// preference depth, falling back to the seeded RNG once every depth has
// been exhausted. The comparator is inverted from breakTie's: an
// elimination tie must keep picking among the weakest candidates, not
// bounce back to the strongest of the tied group.
func breakEliminationTie(r *rng.RNG, candidates []int, votes []Vote, numOptions int) int {
	pool := append([]int{}, candidates...)
	for depth := 0; depth < numOptions; depth++ {
		worst := -1
		var survivors []int
		for _, c := range pool {
			counts := preferenceDepthCounts(votes, c, numOptions)
			if worst == -1 || counts[depth] < worst {
				worst = counts[depth]
				survivors = []int{c}
			} else if counts[depth] == worst {
				survivors = append(survivors, c)
			}
		}
		if len(survivors) == 1 {
			return survivors[0]
		}
		pool = survivors
	}
	return rng.Choose(r, pool)
}

func GetResult(election Election, votes []Vote) Result {
	r := rng.New(election.Title)
	numOptions := len(election.Options)

	elimSet := make(map[int]bool, numOptions)

	var rounds []Round
	majority := len(votes) / 2

	for {
		counts := make(map[int]int)
		for o := 0; o < numOptions; o++ {
			if !elimSet[o] {
				counts[o] = 0
			}
		}
		for _, v := range votes {
			if choice, ok := topChoice(v, elimSet); ok {
				counts[choice]++
			}
		}

		elimList := make([]int, 0, len(elimSet))
		for o := range elimSet {
			elimList = append(elimList, o)
		}
		rounds = append(rounds, Round{EliminatedSet: elimList, PerCandidateVotes: counts})

		remaining := 0
		for range counts {
			remaining++
		}

		for candidate, c := range counts {
			if c > majority {
				return Result{Options: election.Options, Winner: candidate, Rounds: rounds, VoteCount: len(votes)}
			}
		}

		if remaining <= 2 {
			// Terminal tie-break: no candidate exceeded the majority
			// threshold; resolve between the remaining candidates by
			// preference depth, falling back to the seeded RNG.
			var remainingCandidates []int
			for o := range counts {
				remainingCandidates = append(remainingCandidates, o)
			}
			winner := remainingCandidates[0]
			if len(remainingCandidates) > 1 {
				winner = breakTie(r, remainingCandidates, votes, numOptions)
			}
			return Result{Options: election.Options, Winner: winner, Rounds: rounds, VoteCount: len(votes)}
		}

		lowest := -1
		var lowestCandidates []int
		for candidate, c := range counts {
			if lowest == -1 || c < lowest {
				lowest = c
				lowestCandidates = []int{candidate}
			} else if c == lowest {
				lowestCandidates = append(lowestCandidates, candidate)
			}
		}

		toEliminate := lowestCandidates[0]
		if len(lowestCandidates) > 1 {
			toEliminate = breakEliminationTie(r, lowestCandidates, votes, numOptions)
		}
		elimSet[toEliminate] = true
	}
}
