// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package stv implements Single Transferable Vote with a quota of
// floor(ballots/seats) (at least 1), bucket-based vote transfer, and
// election/elimination tie-breaks.
//
// Ballots are RankedBallot: Votes[position] = option, position 0 is the
// first preference.
package stv

import (
	"sort"

	"github.com/sardap/voting-systems/tally/rng"
)

type Election struct {
	Title        string
	Options      []string
	ElectedCount int
}

type Vote struct {
	VoterID string
	Votes   []int
}

type Round struct {
	VoteCounts           map[int]int
	ElectedCandidates    []int
	EliminatedCandidates []int
}

type Result struct {
	Options   []string
	Quota     int
	Rounds    []Round
	Elected   []int
	VoteCount int
}

// Options for GetResult: PreEliminated seeds the eliminated set before
// round 1, used to answer "what-if" queries.
type Options struct {
	PreEliminated []int
}

func quota(totalBallots, electedCount int) int {
	q := totalBallots / electedCount
	if q < 1 {
		q = 1
	}
	return q
}

func firstContinuingChoice(v Vote, elected, eliminated map[int]bool) (int, bool) {
	for _, option := range v.Votes {
		if !elected[option] && !eliminated[option] {
			return option, true
		}
	}
	return -1, false
}

func depthCounts(votes []Vote, candidate int) []int {
	counts := make([]int, len(votes[0].Votes))
	for _, v := range votes {
		for pos, option := range v.Votes {
			if option == candidate {
				counts[pos]++
				break
			}
		}
	}
	return counts
}

func breakTieByDepth(r *rng.RNG, candidates []int, votes []Vote) int {
	pool := append([]int{}, candidates...)
	if len(votes) == 0 || len(pool) <= 1 {
		if len(pool) == 0 {
			return -1
		}
		return pool[0]
	}
	depth := len(votes[0].Votes)
	for d := 0; d < depth; d++ {
		best := -1
		var survivors []int
		for _, c := range pool {
			counts := depthCounts(votes, c)
			if counts[d] > best {
				best = counts[d]
				survivors = []int{c}
			} else if counts[d] == best {
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

func alphabeticalOrder(options []string, candidates []int) []int {
	sorted := append([]int{}, candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return options[sorted[i]] < options[sorted[j]]
	})
	return sorted
}

// pickByNameThenDepth breaks a tie first by option name order, then by
// preference-depth tally, then by the seeded RNG.
func pickByNameThenDepth(r *rng.RNG, options []string, candidates []int, votes []Vote) int {
	alpha := alphabeticalOrder(options, candidates)
	var namedTied []int
	for _, o := range alpha {
		if options[o] == options[alpha[0]] {
			namedTied = append(namedTied, o)
		}
	}
	if len(namedTied) == 1 {
		return namedTied[0]
	}
	return breakTieByDepth(r, namedTied, votes)
}

func GetResult(election Election, votes []Vote, opts Options) Result {
	r := rng.New(election.Title)
	numOptions := len(election.Options)

	q := quota(len(votes), election.ElectedCount)

	elected := make(map[int]bool, numOptions)
	eliminated := make(map[int]bool, numOptions)
	for _, o := range opts.PreEliminated {
		eliminated[o] = true
	}
	filtered := make(map[int]bool, len(votes)) // ballot indices consumed by an elected candidate

	var electedOrder []int
	var eliminatedOrder []int
	var rounds []Round

	for {
		buckets := make(map[int][]int, numOptions) // option -> ballot indices
		for i, v := range votes {
			if filtered[i] {
				continue
			}
			if choice, ok := firstContinuingChoice(v, elected, eliminated); ok {
				buckets[choice] = append(buckets[choice], i)
			}
		}

		counts := make(map[int]int, len(buckets))
		for option, ballotIdxs := range buckets {
			counts[option] = len(ballotIdxs)
		}
		rounds = append(rounds, Round{
			VoteCounts:           counts,
			ElectedCandidates:    append([]int{}, electedOrder...),
			EliminatedCandidates: append([]int{}, eliminatedOrder...),
		})

		if len(electedOrder) == election.ElectedCount {
			break
		}

		var overQuota []int
		for option, c := range counts {
			if c >= q {
				overQuota = append(overQuota, option)
			}
		}

		if len(overQuota) > 0 {
			best := -1
			var tied []int
			for _, o := range overQuota {
				if counts[o] > best {
					best = counts[o]
					tied = []int{o}
				} else if counts[o] == best {
					tied = append(tied, o)
				}
			}

			winner := tied[0]
			if len(tied) > 1 {
				winner = pickByNameThenDepth(r, election.Options, tied, votes)
			}

			electedOrder = append(electedOrder, winner)
			elected[winner] = true

			bucket := append([]int{}, buckets[winner]...)
			r.Shuffle(len(bucket), func(a, b int) {
				bucket[a], bucket[b] = bucket[b], bucket[a]
			})
			for i, idx := range bucket {
				if i < q {
					filtered[idx] = true
				}
			}

			if len(electedOrder) == election.ElectedCount {
				continue
			}
		} else {
			remainingBallots := 0
			for _, c := range counts {
				remainingBallots += c
			}
			if remainingBallots < q {
				break
			}

			lowest := -1
			var tied []int
			for option, c := range counts {
				if lowest == -1 || c < lowest {
					lowest = c
					tied = []int{option}
				} else if c == lowest {
					tied = append(tied, option)
				}
			}

			toEliminate := tied[0]
			if len(tied) > 1 {
				toEliminate = pickByNameThenDepth(r, election.Options, tied, votes)
			}
			eliminatedOrder = append(eliminatedOrder, toEliminate)
			eliminated[toEliminate] = true
		}
	}

	return Result{
		Options:   election.Options,
		Quota:     q,
		Rounds:    rounds,
		Elected:   electedOrder,
		VoteCount: len(votes),
	}
}
