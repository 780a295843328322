// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command tallyctl replays a poll's result offline, without the HTTP
// server or a database, from an election description and a set of ballots
// saved as JSON files. It runs the same tally/dispatch.Compute path
// handlers/tally.go uses when a poll closes.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/sardap/voting-systems/models"
	"github.com/sardap/voting-systems/tally/dispatch"
)

// electionFile is the on-disk shape of the election file argument: the poll's
// configuration plus its option list.
type electionFile struct {
	Title         string       `json:"title"`
	Method        string       `json:"method"`
	ElectedCount  int          `json:"elected_count"`
	PercentFemale float64      `json:"percent_female"`
	Options       []optionFile `json:"options"`
}

type optionFile struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	IsFemale bool   `json:"is_female"`
}

// ballotFile is one entry of the votes file argument: a voter's scores map for
// rated methods, or a raw JSON payload (ranked lists, approved-ID sets,
// ...) for every other method. Supplying both is harmless; dispatch.Compute
// only reads the one its method needs.
type ballotFile struct {
	VoterID    string                 `json:"voter_id"`
	RawPayload json.RawMessage        `json:"raw_payload,omitempty"`
	Scores     map[string]float64     `json:"scores,omitempty"`
}

type tallyCmd struct {
	Election string `arg:"" help:"Path to the election JSON file (title, method, elected_count, percent_female, options)."`
	Votes    string `arg:"" help:"Path to the votes JSON file (array of ballots)."`
}

func (c *tallyCmd) Run() error {
	electionBytes, err := os.ReadFile(c.Election)
	if err != nil {
		return fmt.Errorf("read election file: %w", err)
	}
	var election electionFile
	if err := json.Unmarshal(electionBytes, &election); err != nil {
		return fmt.Errorf("parse election file: %w", err)
	}
	if election.ElectedCount == 0 {
		election.ElectedCount = 1
	}

	votesBytes, err := os.ReadFile(c.Votes)
	if err != nil {
		return fmt.Errorf("read votes file: %w", err)
	}
	var ballots []ballotFile
	if err := json.Unmarshal(votesBytes, &ballots); err != nil {
		return fmt.Errorf("parse votes file: %w", err)
	}

	options := make([]dispatch.OptionRef, len(election.Options))
	labelByID := make(map[string]string, len(election.Options))
	for i, o := range election.Options {
		options[i] = dispatch.OptionRef{ID: o.ID, Label: o.Label, IsFemale: o.IsFemale}
		labelByID[o.ID] = o.Label
	}

	votes := make([]dispatch.Ballot, len(ballots))
	for i, b := range ballots {
		votes[i] = dispatch.Ballot{VoterID: b.VoterID, RawPayload: b.RawPayload, Scores: b.Scores}
	}

	result, err := dispatch.Compute(election.Method, election.Title, options, votes, election.ElectedCount, election.PercentFemale)
	if err != nil {
		return fmt.Errorf("compute tally: %w", err)
	}

	for i := range result.Rankings {
		if label, ok := labelByID[result.Rankings[i].OptionID]; ok {
			result.Rankings[i].Label = label
		}
	}

	out := struct {
		Method   string               `json:"method"`
		Rankings []models.OptionStats `json:"rankings"`
		Detail   json.RawMessage      `json:"detail,omitempty"`
	}{Method: election.Method, Rankings: result.Rankings, Detail: result.Detail}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

var cli struct {
	Tally tallyCmd `cmd:"" help:"Replay a tally from election+votes JSON files."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("tallyctl"),
		kong.Description("Offline replay tool for the voting-systems tally engines."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
