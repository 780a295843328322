// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sardap/voting-systems/models"
	"github.com/sardap/voting-systems/tally/dispatch"
)

// ratedMethods store ballots as a 0..1 value per option in the score
// table; everything else stores its native JSON shape in ballot_payload.
var ratedMethods = map[string]bool{
	models.MethodBMJ:              true,
	models.MethodScore:            true,
	models.MethodSTAR:             true,
	models.MethodMajorityJudgment: true,
	models.MethodUsualJudgment:    true,
	models.MethodThreeTwoOne:      true,
}

// computeResultSnapshotPayload runs method's tally engine over pollID's
// stored ballots and returns the JSON to persist as result_snapshot.payload.
func computeResultSnapshotPayload(db *sql.DB, pollID, method, title string, electedCount int, percentFemale float64) ([]byte, error) {
	options, err := loadOptionRefs(db, pollID)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}

	var ballots []dispatch.Ballot
	if ratedMethods[method] {
		ballots, err = loadRatedBallots(db, pollID)
	} else {
		ballots, err = loadRawBallots(db, pollID)
	}
	if err != nil {
		return nil, fmt.Errorf("load ballots: %w", err)
	}

	out, err := dispatch.Compute(method, title, options, ballots, electedCount, percentFemale)
	if err != nil {
		return nil, err
	}

	payload := struct {
		Rankings     []models.OptionStats `json:"rankings"`
		InputsHash   string                `json:"inputs_hash"`
		EngineDetail json.RawMessage       `json:"engine_detail,omitempty"`
	}{
		Rankings:     out.Rankings,
		InputsHash:   computeInputsHash(db, pollID),
		EngineDetail: out.Detail,
	}

	return json.Marshal(payload)
}

func loadOptionRefs(db *sql.DB, pollID string) ([]dispatch.OptionRef, error) {
	rows, err := db.Query(`
		SELECT id, label, is_female FROM option WHERE poll_id = $1 ORDER BY id
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []dispatch.OptionRef
	for rows.Next() {
		var o dispatch.OptionRef
		if err := rows.Scan(&o.ID, &o.Label, &o.IsFemale); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// loadRatedBallots pulls every (ballot, option, value01) triple for a poll
// and groups it back into one Scores map per ballot.
func loadRatedBallots(db *sql.DB, pollID string) ([]dispatch.Ballot, error) {
	rows, err := db.Query(`
		SELECT b.id, s.option_id, s.value01
		FROM ballot b
		JOIN score s ON s.ballot_id = b.id
		WHERE b.poll_id = $1
		ORDER BY b.id
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byBallot := make(map[string]map[string]float64)
	var order []string
	for rows.Next() {
		var ballotID, optionID string
		var value float64
		if err := rows.Scan(&ballotID, &optionID, &value); err != nil {
			return nil, err
		}
		if _, ok := byBallot[ballotID]; !ok {
			byBallot[ballotID] = make(map[string]float64)
			order = append(order, ballotID)
		}
		byBallot[ballotID][optionID] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ballots := make([]dispatch.Ballot, len(order))
	for i, id := range order {
		ballots[i] = dispatch.Ballot{VoterID: id, Scores: byBallot[id]}
	}
	return ballots, nil
}

// loadRawBallots pulls the stored native-shape JSON for every ballot of a
// poll using a ranked or choice-based method.
func loadRawBallots(db *sql.DB, pollID string) ([]dispatch.Ballot, error) {
	rows, err := db.Query(`
		SELECT b.id, bp.payload
		FROM ballot b
		JOIN ballot_payload bp ON bp.ballot_id = b.id
		WHERE b.poll_id = $1
		ORDER BY b.id
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ballots []dispatch.Ballot
	for rows.Next() {
		var ballotID string
		var payload []byte
		if err := rows.Scan(&ballotID, &payload); err != nil {
			return nil, err
		}
		ballots = append(ballots, dispatch.Ballot{VoterID: ballotID, RawPayload: payload})
	}
	return ballots, rows.Err()
}

// computeInputsHash fingerprints a poll's current ballot set so a cached
// result snapshot can be invalidated the moment a new ballot arrives.
func computeInputsHash(db *sql.DB, pollID string) string {
	rows, err := db.Query(`
		SELECT id FROM ballot WHERE poll_id = $1 ORDER BY id
	`, pollID)
	if err != nil {
		return "error"
	}
	defer rows.Close()

	var ballotIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "error"
		}
		ballotIDs = append(ballotIDs, id)
	}

	if len(ballotIDs) == 0 {
		return "no-ballots"
	}
	return fmt.Sprintf("%d-ballots", len(ballotIDs))
}
