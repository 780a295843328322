// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package quotapreferential

import (
	"math"
	"sort"
)

type Candidate struct {
	Name     string
	IsFemale bool
}

type Election struct {
	Title string
	// Candidates is the name/gender table; index is the candidate's option
	// index throughout ballots and results.
	Candidates []Candidate
	// PercentFemale is the affirmative-action target, e.g. 0.5 for 50%.
	PercentFemale float64
	ElectedCount  int
}

// Vote is RankedBallot: Votes[position] = option, position 0 is the voter's
// first preference.
type Vote struct {
	VoterID string
	Votes   []int
}

type Result struct {
	Candidates  []Candidate
	Quota       int
	Elected     []int
	Defeated    []int
	DecisionLog []string
	VoteCount   int
}

// minFemalePositions rounds electedCount*percentFemale half down, clamped to
// the number of female candidates standing.
func minFemalePositions(electedCount int, percentFemale float64, femaleCount int) int {
	raw := float64(electedCount) * percentFemale
	rounded := int(math.Ceil(raw - 0.5))
	if rounded < 0 {
		rounded = 0
	}
	if rounded > femaleCount {
		rounded = femaleCount
	}
	return rounded
}

func optionNames(candidates []Candidate) []string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	return names
}

func alphabetical(names []string, candidates []int) []int {
	sorted := append([]int{}, candidates...)
	sort.SliceStable(sorted, func(i, j int) bool { return names[sorted[i]] < names[sorted[j]] })
	return sorted
}

// pickOne breaks a tie by alphabetical name order, the rule the source uses
// for "elected by lot" and "excluded by lot".
func pickOne(names []string, candidates []int) int {
	if len(candidates) == 1 {
		return candidates[0]
	}
	return alphabetical(names, candidates)[0]
}

type electionState struct {
	election  Election
	names     []string
	quota     int
	minFemale int
	elected   map[int]bool
	defeated  map[int]bool
	order     []int // election order, used for Phase B's redistribution worklist
	log       *decisionLog
}

func (s *electionState) continuing() []int {
	var out []int
	for i := range s.election.Candidates {
		if !s.elected[i] && !s.defeated[i] {
			out = append(out, i)
		}
	}
	return out
}

func (s *electionState) femaleContinuing() []int {
	var out []int
	for _, c := range s.continuing() {
		if s.election.Candidates[c].IsFemale {
			out = append(out, c)
		}
	}
	return out
}

func (s *electionState) femaleElected() int {
	n := 0
	for c := range s.elected {
		if s.election.Candidates[c].IsFemale {
			n++
		}
	}
	return n
}

// aaPossible reports whether the affirmative-action target can still be met
// given the candidates who remain in play (continuing, not yet
// elected/defeated). It is the gate checked before letting a male take a
// seat that a later female candidate might need.
func (s *electionState) aaPossible() bool {
	remainingSeats := s.election.ElectedCount - len(s.elected)
	if remainingSeats <= 0 {
		return s.femaleElected() >= s.minFemale
	}
	neededFemales := s.minFemale - s.femaleElected()
	if neededFemales <= 0 {
		return true
	}
	if neededFemales > remainingSeats {
		return false
	}
	return len(s.femaleContinuing()) >= neededFemales
}

// distributeSurplus spreads a just-elected candidate's surplus over quota
// to the next continuing preference on each of their papers, at a reduced
// per-paper value. Papers with no continuing next preference exhaust.
func distributeSurplus(log *decisionLog, cs *countSheet, quota int, continuing map[int]bool, candidate int) {
	entry := cs.get(candidate)
	score := entry.score()
	surplus := score - quota
	if surplus <= 0 || len(entry.papers) == 0 {
		return
	}
	perPaper := floorDiv(surplus, len(entry.papers))
	log.add("Distributing surplus of %d from %s over %d papers at %d each", surplus, c1(candidate), len(entry.papers), perPaper)
	if perPaper <= 0 {
		return
	}
	papers := append([]Paper{}, entry.papers...)
	for _, p := range papers {
		next, ok := p.topContinuingPreference(continuing)
		if !ok {
			cs.exhaustPaper(candidate, p)
			continue
		}
		cs.transferPaper(candidate, next, p, perPaper)
	}
}

// fillAARequirements runs the affirmative-action procedure triggered when
// electing blocked (a male candidate) would make the AA target
// unreachable. It restricts a fresh count to continuing female candidates,
// preferring ballots in proportion to their next usable preference, and
// returns the candidates newly elected as a result (at least one, falling
// back to blocked itself if AA elects nobody).
func fillAARequirements(s *electionState, votes []Vote, blocked int) []int {
	s.log.add("Affirmative action triggered: electing %s now would make the target of %d female seats unreachable", c1(blocked), s.minFemale)

	females := s.femaleContinuing()
	if len(females) == 0 {
		s.log.add("No continuing female candidates remain; electing %s as a fallback", c1(blocked))
		return []int{blocked}
	}

	femaleSet := make(map[int]bool, len(females))
	for _, f := range females {
		femaleSet[f] = true
	}

	aaCS := newCountSheet(females)
	for _, v := range votes {
		p := Paper{VoterID: v.VoterID, Votes: v.Votes, Value: PaperScore}
		if pref, ok := p.topContinuingPreference(femaleSet); ok {
			aaCS.add(pref, p)
		}
	}

	var newlyElected []int
	remaining := append([]int{}, females...)
	seatsAvailable := s.election.ElectedCount - len(s.elected)

	for len(remaining) > 0 && len(newlyElected) < seatsAvailable {
		top := aaCS.topScore(remaining)
		if top < s.quota {
			break
		}
		tied := aaCS.matchingScore(remaining, top)
		winner := pickOne(s.names, tied)
		newlyElected = append(newlyElected, winner)
		s.log.add("Affirmative action elects %s", c1(winner))

		remainingSet := make(map[int]bool, len(remaining)-1)
		var next []int
		for _, c := range remaining {
			if c != winner {
				remainingSet[c] = true
				next = append(next, c)
			}
		}
		distributeSurplus(s.log, aaCS, s.quota, remainingSet, winner)
		remaining = next
	}

	if len(newlyElected) == 0 {
		s.log.add("Affirmative action elected nobody; electing %s as a fallback", c1(blocked))
		return []int{blocked}
	}
	return newlyElected
}

// GetResult runs the Quota-Preferential count: Phase A elects any candidate
// clearing quota on first preferences, Phase B distributes surpluses and
// elects whoever clears quota as a result, Phase C eliminates the lowest
// continuing candidate (transferring their papers) when nobody clears
// quota, until every seat is filled.
func GetResult(election Election, votes []Vote) Result {
	names := optionNames(election.Candidates)
	femaleCount := 0
	for _, c := range election.Candidates {
		if c.IsFemale {
			femaleCount++
		}
	}

	s := &electionState{
		election:  election,
		names:     names,
		quota:     floorDiv(len(votes)*PaperScore, election.ElectedCount+1),
		minFemale: minFemalePositions(election.ElectedCount, election.PercentFemale, femaleCount),
		elected:   make(map[int]bool, len(election.Candidates)),
		defeated:  make(map[int]bool, len(election.Candidates)),
		log:       &decisionLog{},
	}

	if len(election.Candidates) <= election.ElectedCount {
		for i := range election.Candidates {
			s.elected[i] = true
			s.order = append(s.order, i)
		}
		s.log.add("Fewer candidates than seats; electing everyone")
		return s.finish(votes)
	}

	allCandidates := make([]int, len(election.Candidates))
	for i := range allCandidates {
		allCandidates[i] = i
	}
	cs := newCountSheet(allCandidates)
	for _, v := range votes {
		if len(v.Votes) == 0 {
			continue
		}
		cs.add(v.Votes[0], Paper{VoterID: v.VoterID, Votes: v.Votes, Value: PaperScore})
	}

	// Phase A: elect anyone already over quota on first preferences.
phaseA:
	for len(s.elected) < election.ElectedCount {
		continuing := s.continuing()
		top := cs.topScore(continuing)
		if top < s.quota {
			break
		}
		tied := cs.matchingScore(continuing, top)
		winner := pickOne(names, tied)

		if !election.Candidates[winner].IsFemale {
			s.elect(winner)
			if !s.aaPossible() {
				s.unelect(winner)
				newly := fillAARequirements(s, votes, winner)
				for _, c := range newly {
					s.elect(c)
					if len(s.elected) >= election.ElectedCount {
						break phaseA
					}
				}
				continue
			}
		} else {
			s.elect(winner)
		}
		s.log.add("%s elected in phase A with %d/%d", c1(winner), top, s.quota)
	}

	// Phase B: redistribute surpluses of already-elected candidates in the
	// order they were elected, checking after each distribution whether a
	// continuing candidate now clears quota.
	toRedistribute := append([]int{}, s.order...)
	aaAttempted := false
	for len(toRedistribute) > 0 && len(s.elected) < election.ElectedCount {
		continuing := s.continuing()
		continuingSet := make(map[int]bool, len(continuing))
		for _, c := range continuing {
			continuingSet[c] = true
		}

		top := cs.topScore(toRedistribute)
		tied := cs.matchingScore(toRedistribute, top)
		candidate := pickOne(names, tied)
		toRedistribute = removeValue(toRedistribute, candidate)

		distributeSurplus(s.log, cs, s.quota, continuingSet, candidate)

		newTop := cs.topScore(continuing)
		if newTop < s.quota {
			continue
		}
		newTied := cs.matchingScore(continuing, newTop)
		newWinner := pickOne(names, newTied)

		if !election.Candidates[newWinner].IsFemale && !s.aaPossible() {
			if aaAttempted {
				s.elect(newWinner)
				toRedistribute = append(toRedistribute, newWinner)
			} else {
				aaAttempted = true
				newly := fillAARequirements(s, votes, newWinner)
				for _, c := range newly {
					s.elect(c)
					toRedistribute = append(toRedistribute, c)
				}
			}
		} else {
			s.elect(newWinner)
			toRedistribute = append(toRedistribute, newWinner)
		}
	}

	// Phase C: elimination.
	for len(s.elected) < election.ElectedCount {
		continuing := s.continuing()
		if len(continuing) == 0 {
			break
		}

		// 4.1: zero-score defeat.
		var zeroScore []int
		for _, c := range continuing {
			if cs.get(c).score() == 0 {
				zeroScore = append(zeroScore, c)
			}
		}
		if len(zeroScore) > 0 {
			for _, c := range zeroScore {
				s.defeat(c)
				s.log.add("%s has a zero score and is defeated", c1(c))
			}
			continue
		}

		vacancies := election.ElectedCount - len(s.elected)

		// 4.6.3: continuing candidates equal remaining vacancies.
		if len(continuing) == vacancies {
			for _, c := range alphabetical(names, continuing) {
				if len(s.elected) >= election.ElectedCount {
					break
				}
				if !election.Candidates[c].IsFemale && !s.aaPossible() {
					newly := fillAARequirements(s, votes, c)
					for _, nc := range newly {
						s.elect(nc)
					}
					continue
				}
				s.elect(c)
			}
			break
		}

		// 4.6.2: one vacancy, two continuing candidates.
		if vacancies == 1 && len(continuing) == 2 {
			a, b := continuing[0], continuing[1]
			winner := a
			if cs.get(b).score() > cs.get(a).score() {
				winner = b
			} else if cs.get(b).score() == cs.get(a).score() {
				winner = pickOne(names, continuing)
			}
			if !election.Candidates[winner].IsFemale && !s.aaPossible() {
				other := a
				if winner == a {
					other = b
				}
				if election.Candidates[other].IsFemale {
					winner = other
				}
			}
			s.elect(winner)
			break
		}

		lowest := cs.lowestScore(continuing)
		tied := cs.matchingScore(continuing, lowest)
		loser := pickOne(names, tied)
		s.defeat(loser)
		s.log.add("%s has the lowest score (%d) and is eliminated", c1(loser), lowest)

		remaining := s.continuing()
		remainingSet := make(map[int]bool, len(remaining))
		for _, c := range remaining {
			remainingSet[c] = true
		}
		papers := append([]Paper{}, cs.get(loser).papers...)
		for _, p := range papers {
			next, ok := p.topContinuingPreference(remainingSet)
			if !ok {
				cs.exhaustPaper(loser, p)
				continue
			}
			cs.transferPaperRestricted(loser, next, p, p.Value, s.quota)
		}

		top := cs.topScore(remaining)
		if top < s.quota {
			continue
		}
		tiedWinners := cs.matchingScore(remaining, top)
		winner := pickOne(names, tiedWinners)
		if !election.Candidates[winner].IsFemale && !s.aaPossible() {
			newly := fillAARequirements(s, votes, winner)
			for _, c := range newly {
				s.elect(c)
			}
		} else {
			s.elect(winner)
		}
	}

	return s.finish(votes)
}

func (s *electionState) elect(candidate int) {
	s.elected[candidate] = true
	s.order = append(s.order, candidate)
}

func (s *electionState) unelect(candidate int) {
	delete(s.elected, candidate)
	s.order = removeValue(s.order, candidate)
}

func (s *electionState) defeat(candidate int) {
	s.defeated[candidate] = true
}

func (s *electionState) finish(votes []Vote) Result {
	return Result{
		Candidates:  s.election.Candidates,
		Quota:       s.quota,
		Elected:     s.order,
		Defeated:    mapKeys(s.defeated),
		DecisionLog: s.log.render(s.names),
		VoteCount:   len(votes),
	}
}

func removeValue(xs []int, v int) []int {
	out := make([]int, 0, len(xs))
	for _, x := range xs {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func mapKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
