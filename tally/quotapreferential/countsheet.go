// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package quotapreferential

import "github.com/shopspring/decimal"

// PaperScore is the fixed-point value every ballot starts at.
const PaperScore = 1000

// Paper is one ballot's transferable unit: its current value and the
// original ranked ballot it carries, used to find the next preference.
type Paper struct {
	VoterID string
	Votes   []int // RankedBallot: Votes[position] = option
	Value   int
}

// topContinuingPreference walks the paper's ranked ballot and returns the
// first option that is still a continuing candidate.
func (p Paper) topContinuingPreference(continuing map[int]bool) (int, bool) {
	for _, option := range p.Votes {
		if continuing[option] {
			return option, true
		}
	}
	return -1, false
}

type countSheetEntry struct {
	candidate int
	papers    []Paper
}

func (e *countSheetEntry) score() int {
	sum := 0
	for _, p := range e.papers {
		sum += p.Value
	}
	return sum
}

// countSheet holds the paper bundles currently allotted to each candidate
// plus the exhausted pile.
type countSheet struct {
	entries   map[int]*countSheetEntry
	exhausted []Paper
}

func newCountSheet(candidates []int) *countSheet {
	cs := &countSheet{entries: make(map[int]*countSheetEntry, len(candidates))}
	for _, c := range candidates {
		cs.entries[c] = &countSheetEntry{candidate: c}
	}
	return cs
}

func (cs *countSheet) clone() *countSheet {
	out := &countSheet{entries: make(map[int]*countSheetEntry, len(cs.entries))}
	for k, v := range cs.entries {
		papers := append([]Paper{}, v.papers...)
		out.entries[k] = &countSheetEntry{candidate: k, papers: papers}
	}
	out.exhausted = append([]Paper{}, cs.exhausted...)
	return out
}

func (cs *countSheet) get(candidate int) *countSheetEntry {
	e, ok := cs.entries[candidate]
	if !ok {
		e = &countSheetEntry{candidate: candidate}
		cs.entries[candidate] = e
	}
	return e
}

func (cs *countSheet) add(candidate int, p Paper) {
	cs.get(candidate).papers = append(cs.get(candidate).papers, p)
}

func (cs *countSheet) topScore(candidates []int) int {
	top := 0
	for _, c := range candidates {
		if s := cs.get(c).score(); s > top {
			top = s
		}
	}
	return top
}

func (cs *countSheet) lowestScore(candidates []int) int {
	lowest := -1
	for _, c := range candidates {
		s := cs.get(c).score()
		if lowest == -1 || s < lowest {
			lowest = s
		}
	}
	if lowest == -1 {
		return 0
	}
	return lowest
}

func (cs *countSheet) matchingScore(candidates []int, score int) []int {
	var out []int
	for _, c := range candidates {
		if cs.get(c).score() == score {
			out = append(out, c)
		}
	}
	return out
}

// transferPaper moves a single paper from one candidate to another at a
// new value, used for ordinary surplus transfers.
func (cs *countSheet) transferPaper(from, to int, p Paper, newValue int) {
	fromEntry := cs.get(from)
	for i, existing := range fromEntry.papers {
		if existing.VoterID == p.VoterID {
			fromEntry.papers = append(fromEntry.papers[:i], fromEntry.papers[i+1:]...)
			break
		}
	}
	p.Value = newValue
	cs.get(to).papers = append(cs.get(to).papers, p)
}

// transferPaperRestricted is the Phase C / 4.2 variant: it does not add
// more value to a candidate already at or above quota.
func (cs *countSheet) transferPaperRestricted(from, to int, p Paper, newValue, quota int) {
	if cs.get(to).score() >= quota {
		cs.exhaustPaper(from, p)
		return
	}
	cs.transferPaper(from, to, p, newValue)
}

func (cs *countSheet) exhaustPaper(from int, p Paper) {
	fromEntry := cs.get(from)
	for i, existing := range fromEntry.papers {
		if existing.VoterID == p.VoterID {
			fromEntry.papers = append(fromEntry.papers[:i], fromEntry.papers[i+1:]...)
			break
		}
	}
	cs.exhausted = append(cs.exhausted, p)
}

// floorDiv performs exact floor division using shopspring/decimal so the
// paper-score arithmetic never drifts from the source's integer semantics.
func floorDiv(numerator, denominator int) int {
	if denominator == 0 {
		return 0
	}
	quotient := decimal.NewFromInt(int64(numerator)).Div(decimal.NewFromInt(int64(denominator)))
	return int(quotient.Floor().IntPart())
}
