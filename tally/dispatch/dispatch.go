// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package dispatch maps a poll's configured voting method to the matching
// tally/* engine, decoding the method's native ballot payload shape and
// producing a generic per-option ranking plus the engine's full detail for
// storage in a result snapshot.
package dispatch

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sardap/voting-systems/models"
	"github.com/sardap/voting-systems/tally/antiplurality"
	"github.com/sardap/voting-systems/tally/approval"
	"github.com/sardap/voting-systems/tally/bmj"
	"github.com/sardap/voting-systems/tally/borda"
	"github.com/sardap/voting-systems/tally/condorcet"
	"github.com/sardap/voting-systems/tally/cumulative"
	"github.com/sardap/voting-systems/tally/irv"
	"github.com/sardap/voting-systems/tally/majorityjudgment"
	"github.com/sardap/voting-systems/tally/quotapreferential"
	"github.com/sardap/voting-systems/tally/score"
	"github.com/sardap/voting-systems/tally/singleparty"
	"github.com/sardap/voting-systems/tally/sntv"
	"github.com/sardap/voting-systems/tally/star"
	"github.com/sardap/voting-systems/tally/stv"
	"github.com/sardap/voting-systems/tally/threetwoone"
	"github.com/sardap/voting-systems/tally/usualjudgment"
)

// OptionRef is the decode-time view of a poll option.
type OptionRef struct {
	ID       string
	Label    string
	IsFemale bool
}

// Ballot carries one voter's raw submission: RawPayload for ranked/choice
// methods, Scores for rated methods (option id -> 0..1 value).
type Ballot struct {
	VoterID    string
	RawPayload json.RawMessage
	Scores     map[string]float64
}

// Output is the method-agnostic summary written into a result snapshot.
type Output struct {
	Rankings []models.OptionStats
	Detail   json.RawMessage
}

func indexOptions(options []OptionRef) (names []string, idOf map[string]int) {
	names = make([]string, len(options))
	idOf = make(map[string]int, len(options))
	for i, o := range options {
		names[i] = o.Label
		idOf[o.ID] = i
	}
	return names, idOf
}

func rankingsByOrder(optionIDs []string, order []int) []models.OptionStats {
	out := make([]models.OptionStats, len(order))
	for rank, idx := range order {
		out[rank] = models.OptionStats{OptionID: optionIDs[idx], Rank: rank + 1}
	}
	return out
}

func detailJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}

// decodeRanking turns a raw JSON array of option ids into the slice of
// option indices a ranked ballot expresses, in preference order.
func decodeRanking(payload json.RawMessage, idOf map[string]int) ([]int, error) {
	var ids []string
	if err := json.Unmarshal(payload, &ids); err != nil {
		return nil, fmt.Errorf("decode ranking: %w", err)
	}
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if idx, ok := idOf[id]; ok {
			out = append(out, idx)
		}
	}
	return out, nil
}

func toPreferenceVotes(ranking []int, numOptions int) []int {
	votes := make([]int, numOptions)
	for i := range votes {
		votes[i] = numOptions // unranked defaults to worst
	}
	for rank, idx := range ranking {
		votes[idx] = rank
	}
	return votes
}

// Compute runs the tally engine matching method and returns the generic
// ranking plus the engine's own detail payload. title seeds every engine
// that needs an RNG tie-break. electedCount only matters for sntv, stv and
// quota_preferential; percentFemale only for quota_preferential.
func Compute(method, title string, options []OptionRef, ballots []Ballot, electedCount int, percentFemale float64) (Output, error) {
	names, idOf := indexOptions(options)
	numOptions := len(options)

	switch method {
	case models.MethodBMJ:
		votes := make([]bmj.Vote, len(ballots))
		for i, b := range ballots {
			votes[i] = bmj.Vote{VoterID: b.VoterID, Scores: floatRow(b.Scores, options)}
		}
		result := bmj.GetResult(bmj.Election{Title: title, Options: names}, votes)
		rankings := make([]models.OptionStats, len(result.Tally))
		for i, row := range result.Tally {
			o := options[row.OptionIndex]
			rankings[i] = models.OptionStats{
				OptionID: o.ID,
				Label:    o.Label,
				Median:   row.Median,
				P10:      row.P10,
				P90:      row.P90,
				Mean:     row.Mean,
				NegShare: row.NegShare,
				Veto:     row.Veto,
				Rank:     i + 1,
			}
		}
		return Output{Rankings: rankings, Detail: nil}, nil

	case models.MethodApproval:
		votes := make([]approval.Vote, len(ballots))
		for i, b := range ballots {
			var approvedIDs []string
			if err := json.Unmarshal(b.RawPayload, &approvedIDs); err != nil {
				return Output{}, fmt.Errorf("decode approval ballot: %w", err)
			}
			approvals := make([]bool, numOptions)
			for _, id := range approvedIDs {
				if idx, ok := idOf[id]; ok {
					approvals[idx] = true
				}
			}
			votes[i] = approval.Vote{VoterID: b.VoterID, Approvals: approvals}
		}
		result := approval.GetResult(approval.Election{Title: title, Options: names}, votes)
		return Output{Rankings: rankingsByOrder(optionIDsOf(options), orderOf(result.Winner, numOptions, result.ApproveTally)), Detail: detailJSON(result)}, nil

	case models.MethodBorda:
		votes := make([]borda.Vote, len(ballots))
		for i, b := range ballots {
			var points map[string]int
			if err := json.Unmarshal(b.RawPayload, &points); err != nil {
				return Output{}, fmt.Errorf("decode borda ballot: %w", err)
			}
			row := make([]int, numOptions)
			for id, pts := range points {
				if idx, ok := idOf[id]; ok {
					row[idx] = pts
				}
			}
			votes[i] = borda.Vote{VoterID: b.VoterID, Votes: row}
		}
		result := borda.GetResult(borda.Election{Title: title, Options: names}, votes)
		return Output{Rankings: rankingsByOrder(optionIDsOf(options), orderOf(result.Winner, numOptions, result.VoteTally)), Detail: detailJSON(result)}, nil

	case models.MethodCumulative:
		votes := make([]cumulative.Vote, len(ballots))
		for i, b := range ballots {
			var points map[string]int
			if err := json.Unmarshal(b.RawPayload, &points); err != nil {
				return Output{}, fmt.Errorf("decode cumulative ballot: %w", err)
			}
			row := make([]int, numOptions)
			for id, pts := range points {
				if idx, ok := idOf[id]; ok {
					row[idx] = pts
				}
			}
			votes[i] = cumulative.Vote{VoterID: b.VoterID, Votes: row}
		}
		result := cumulative.GetResult(cumulative.Election{Title: title, Options: names, MaxVotes: 100}, votes)
		return Output{Rankings: rankingsByOrder(optionIDsOf(options), orderOf(result.Winner, numOptions, result.VotesTally)), Detail: detailJSON(result)}, nil

	case models.MethodAntiPlurality:
		votes := make([]antiplurality.Vote, len(ballots))
		for i, b := range ballots {
			var disapprovedID string
			if err := json.Unmarshal(b.RawPayload, &disapprovedID); err != nil {
				return Output{}, fmt.Errorf("decode anti-plurality ballot: %w", err)
			}
			votes[i] = antiplurality.Vote{VoterID: b.VoterID, Disapproved: idOf[disapprovedID]}
		}
		result := antiplurality.GetResult(antiplurality.Election{Title: title, Options: names}, votes)
		return Output{Rankings: rankingsByOrder(optionIDsOf(options), orderOf(result.Winner, numOptions, result.VoteTally)), Detail: detailJSON(result)}, nil

	case models.MethodSingleParty:
		svotes := make([]singleparty.Vote, len(ballots))
		for i, b := range ballots {
			var voted bool
			if err := json.Unmarshal(b.RawPayload, &voted); err != nil {
				return Output{}, fmt.Errorf("decode single-party ballot: %w", err)
			}
			svotes[i] = singleparty.Vote{VoterID: b.VoterID, Voted: voted}
		}
		result := singleparty.GetResult(singleparty.Election{Title: title}, svotes)
		return Output{Rankings: nil, Detail: detailJSON(result)}, nil

	case models.MethodSNTV:
		votes := make([]sntv.Vote, len(ballots))
		for i, b := range ballots {
			var chosenID string
			if err := json.Unmarshal(b.RawPayload, &chosenID); err != nil {
				return Output{}, fmt.Errorf("decode sntv ballot: %w", err)
			}
			votes[i] = sntv.Vote{VoterID: b.VoterID, Option: idOf[chosenID]}
		}
		result := sntv.GetResult(sntv.Election{Title: title, Options: names, ElectedCount: electedCount}, votes)
		return Output{Rankings: rankingsByOrder(optionIDsOf(options), result.ElectedCandidates), Detail: detailJSON(result)}, nil

	case models.MethodScore:
		votes := make([]score.Vote, len(ballots))
		for i, b := range ballots {
			votes[i] = score.Vote{VoterID: b.VoterID, Votes: scoreRow(b.Scores, options, 5)}
		}
		result := score.GetResult(score.Election{Title: title, Options: names, MaxScore: 5}, votes)
		return Output{Rankings: rankingsByOrder(optionIDsOf(options), orderOf(result.Winner, numOptions, result.VoteTally)), Detail: detailJSON(result)}, nil

	case models.MethodSTAR:
		votes := make([]star.Vote, len(ballots))
		for i, b := range ballots {
			votes[i] = star.Vote{VoterID: b.VoterID, Votes: scoreRow(b.Scores, options, 5)}
		}
		result := star.GetResult(star.Election{Title: title, Options: names, MaxScore: 5}, votes)
		return Output{Rankings: rankingsByOrder(optionIDsOf(options), orderOf(result.Winner, numOptions, result.VoteTally)), Detail: detailJSON(result)}, nil

	case models.MethodMajorityJudgment:
		votes := make([]majorityjudgment.Vote, len(ballots))
		for i, b := range ballots {
			votes[i] = majorityjudgment.Vote{VoterID: b.VoterID, Grades: gradeRow(b.Scores, options, 4)}
		}
		result := majorityjudgment.GetResult(majorityjudgment.Election{Title: title, Options: names}, votes)
		return Output{Rankings: nil, Detail: detailJSON(result)}, nil

	case models.MethodUsualJudgment:
		votes := make([]usualjudgment.Vote, len(ballots))
		for i, b := range ballots {
			votes[i] = usualjudgment.Vote{VoterID: b.VoterID, Grades: gradeRow(b.Scores, options, 6)}
		}
		result := usualjudgment.GetResult(usualjudgment.Election{Title: title, Options: names}, votes)
		return Output{Rankings: nil, Detail: detailJSON(result)}, nil

	case models.MethodThreeTwoOne:
		votes := make([]threetwoone.Vote, len(ballots))
		for i, b := range ballots {
			votes[i] = threetwoone.Vote{VoterID: b.VoterID, Grades: gradeRow(b.Scores, options, 2)}
		}
		result := threetwoone.GetResult(threetwoone.Election{Title: title, Options: names}, votes)
		return Output{Rankings: nil, Detail: detailJSON(result)}, nil

	case models.MethodIRV:
		votes := make([]irv.Vote, len(ballots))
		for i, b := range ballots {
			ranking, err := decodeRanking(b.RawPayload, idOf)
			if err != nil {
				return Output{}, err
			}
			votes[i] = irv.Vote{VoterID: b.VoterID, Votes: toPreferenceVotes(ranking, numOptions)}
		}
		result := irv.GetResult(irv.Election{Title: title, Options: names}, votes)
		return Output{Rankings: nil, Detail: detailJSON(result)}, nil

	case models.MethodCondorcet:
		votes := make([]condorcet.Vote, len(ballots))
		for i, b := range ballots {
			ranking, err := decodeRanking(b.RawPayload, idOf)
			if err != nil {
				return Output{}, err
			}
			votes[i] = condorcet.Vote{VoterID: b.VoterID, Votes: toPreferenceVotes(ranking, numOptions)}
		}
		result := condorcet.GetResult(condorcet.Election{Title: title, Options: names}, votes)
		return Output{Rankings: nil, Detail: detailJSON(result)}, nil

	case models.MethodSTV:
		votes := make([]stv.Vote, len(ballots))
		for i, b := range ballots {
			ranking, err := decodeRanking(b.RawPayload, idOf)
			if err != nil {
				return Output{}, err
			}
			votes[i] = stv.Vote{VoterID: b.VoterID, Votes: ranking}
		}
		result := stv.GetResult(stv.Election{Title: title, Options: names, ElectedCount: electedCount}, votes, stv.Options{})
		return Output{Rankings: rankingsByOrder(optionIDsOf(options), result.Elected), Detail: detailJSON(result)}, nil

	case models.MethodQuotaPreferential:
		candidates := make([]quotapreferential.Candidate, len(options))
		for i, o := range options {
			candidates[i] = quotapreferential.Candidate{Name: o.Label, IsFemale: o.IsFemale}
		}
		votes := make([]quotapreferential.Vote, len(ballots))
		for i, b := range ballots {
			ranking, err := decodeRanking(b.RawPayload, idOf)
			if err != nil {
				return Output{}, err
			}
			votes[i] = quotapreferential.Vote{VoterID: b.VoterID, Votes: ranking}
		}
		election := quotapreferential.Election{
			Title:         title,
			Candidates:    candidates,
			PercentFemale: percentFemale,
			ElectedCount:  electedCount,
		}
		result := quotapreferential.GetResult(election, votes)
		return Output{Rankings: rankingsByOrder(optionIDsOf(options), result.Elected), Detail: detailJSON(result)}, nil

	default:
		return Output{}, fmt.Errorf("unknown voting method %q", method)
	}
}

func optionIDsOf(options []OptionRef) []string {
	ids := make([]string, len(options))
	for i, o := range options {
		ids[i] = o.ID
	}
	return ids
}

// orderOf puts the winner first, then the rest of the options sorted by
// descending tally.
func orderOf(winner, numOptions int, tally any) []int {
	order := make([]int, numOptions)
	for i := range order {
		order[i] = i
	}
	keyOf := func(idx int) float64 {
		switch t := tally.(type) {
		case []approval.Tally:
			for _, row := range t {
				if row.OptionIndex == idx {
					return float64(row.ApprovalCount)
				}
			}
		case []borda.Tally:
			for _, row := range t {
				if row.OptionIndex == idx {
					return float64(row.VoteCount)
				}
			}
		case []cumulative.Tally:
			for _, row := range t {
				if row.OptionIndex == idx {
					return float64(row.VoteCount)
				}
			}
		case []antiplurality.Tally:
			for _, row := range t {
				if row.OptionIndex == idx {
					return -float64(row.DisapprovalCount)
				}
			}
		case []score.Tally:
			for _, row := range t {
				if row.OptionIndex == idx {
					return float64(row.VoteCount)
				}
			}
		case []star.Tally:
			for _, row := range t {
				if row.OptionIndex == idx {
					return float64(row.VoteCount)
				}
			}
		}
		return 0
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i] == winner {
			return true
		}
		if order[j] == winner {
			return false
		}
		return keyOf(order[i]) > keyOf(order[j])
	})
	return order
}

func scoreRow(scores map[string]float64, options []OptionRef, maxScore int) []int {
	row := make([]int, len(options))
	for i, o := range options {
		row[i] = int(scores[o.ID] * float64(maxScore))
	}
	return row
}

func gradeRow(scores map[string]float64, options []OptionRef, maxGrade int) []int {
	return scoreRow(scores, options, maxGrade)
}

// floatRow reshapes a sparse option_id -> value01 map into the dense,
// option-order array bmj scores its ballots with. A missing option
// defaults to 0, matching scoreRow's convention for the other rated
// engines.
func floatRow(scores map[string]float64, options []OptionRef) []float64 {
	row := make([]float64, len(options))
	for i, o := range options {
		row[i] = scores[o.ID]
	}
	return row
}
