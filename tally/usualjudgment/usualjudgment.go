// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package usualjudgment implements Usual Judgment over seven grades. Ties
// on majority grade are broken by an escalating tie-break score; the
// formula and its bounded-iteration fallback follow the original source
// exactly, not the looser prose paraphrase.
package usualjudgment

import "math"

const (
	Bad = iota
	Inadequate
	Passable
	Fair
	Good
	VeryGood
	Excellent
	numGrades
)

var GradeNames = [numGrades]string{"Bad", "Inadequate", "Passable", "Fair", "Good", "VeryGood", "Excellent"}

const tieBreakCeiling = 100

type Election struct {
	Title   string
	Options []string
}

type Vote struct {
	VoterID string
	Grades  []int // parallel to Options; one of Bad..Excellent
}

type Result struct {
	Options       []string
	Winner        int
	MajorityGrade []int
	VoteCount     int
}

func histogram(voterGrades [][]int, option int) [numGrades]int {
	var h [numGrades]int
	for _, g := range voterGrades {
		h[g[option]]++
	}
	return h
}

func majorityGrade(h [numGrades]int) int {
	total := 0
	for _, c := range h {
		total += c
	}
	if total == 0 {
		return Bad
	}
	cum := 0
	for grade, c := range h {
		cum += c
		if float64(cum)/float64(total) >= 0.5 {
			return grade
		}
	}
	return numGrades - 1
}

func percentAbove(h [numGrades]int, grade int) float64 {
	total, above := 0, 0
	for g, c := range h {
		total += c
		if g > grade {
			above += c
		}
	}
	if total == 0 {
		return 0
	}
	return float64(above) / float64(total)
}

func percentBelow(h [numGrades]int, grade int) float64 {
	total, below := 0, 0
	for g, c := range h {
		total += c
		if g < grade {
			below += c
		}
	}
	if total == 0 {
		return 0
	}
	return float64(below) / float64(total)
}

// tieBreakScore implements score_n = a + 0.5*(p^n - q^n)/(1 - p^n - q^n),
// per original_source/src/usual_judgment.rs rather than spec.md's prose.
func tieBreakScore(a int, p, q float64, n int) float64 {
	pn := math.Pow(p, float64(n))
	qn := math.Pow(q, float64(n))
	denom := 1 - pn - qn
	if denom == 0 {
		return float64(a)
	}
	return float64(a) + 0.5*(pn-qn)/denom
}

func GetResult(election Election, votes []Vote) Result {
	var voterGrades [][]int
	for _, v := range votes {
		voterGrades = append(voterGrades, v.Grades)
	}

	hists := make([][numGrades]int, len(election.Options))
	grades := make([]int, len(election.Options))
	for i := range election.Options {
		hists[i] = histogram(voterGrades, i)
		grades[i] = majorityGrade(hists[i])
	}

	best := Bad
	for _, g := range grades {
		if g > best {
			best = g
		}
	}

	var tied []int
	for i, g := range grades {
		if g == best {
			tied = append(tied, i)
		}
	}

	if len(tied) == 1 {
		return Result{Options: election.Options, Winner: tied[0], MajorityGrade: grades, VoteCount: len(votes)}
	}

	ps := make(map[int]float64, len(tied))
	qs := make(map[int]float64, len(tied))
	for _, i := range tied {
		ps[i] = percentAbove(hists[i], grades[i])
		qs[i] = percentBelow(hists[i], grades[i])
	}

	for n := 1; n <= tieBreakCeiling; n++ {
		best := math.Inf(-1)
		var winners []int
		for _, i := range tied {
			s := tieBreakScore(grades[i], ps[i], qs[i], n)
			if s > best {
				best = s
				winners = []int{i}
			} else if s == best {
				winners = append(winners, i)
			}
		}
		if len(winners) == 1 {
			return Result{Options: election.Options, Winner: winners[0], MajorityGrade: grades, VoteCount: len(votes)}
		}
	}

	// Ceiling reached with a tie still standing: fall back to the first
	// option in the tied pool, matching usual_judgment.rs::break_tie's
	// documented approximation.
	return Result{Options: election.Options, Winner: tied[0], MajorityGrade: grades, VoteCount: len(votes)}
}
