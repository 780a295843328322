// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePollRequest: title, description, creator_name, method,
    elected_count, percent_female
  - AddOptionRequest: label, is_female
  - ClaimUsernameRequest: username
  - SubmitBallotRequest: scores (map[string]float64), for rated methods
  - SubmitRawBallotRequest: payload (json.RawMessage), for ranked/choice
    methods
  - RegisterDeviceRequest: platform

# Response Types

Types for JSON responses:

  - CreatePollResponse: poll_id, admin_key
  - AddOptionResponse: option_id
  - PublishPollResponse: share_slug, share_url
  - ClaimUsernameResponse: voter_token
  - SubmitBallotResponse: ballot_id, message
  - ClosePollResponse: closed_at, snapshot
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Poll: poll metadata, method, elected_count/percent_female, lifecycle
    state
  - Option: voting option with label and is_female flag
  - Ballot: voter submission metadata
  - Score: individual option score (0-1)
  - OptionStats: per-option ranking (rank, plus BMJ statistics when the
    method is bmj)
  - ResultSnapshot: immutable result record; EngineDetail carries the full
    per-method detail (rounds, decision log, matchups, ...) for methods
    whose result doesn't reduce to OptionStats alone

# Constants

Status values:

	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"

Voting methods:

	MethodBMJ               = "bmj"
	MethodApproval          = "approval"
	MethodBorda             = "borda"
	MethodCumulative        = "cumulative"
	MethodAntiPlurality     = "anti_plurality"
	MethodSingleParty       = "single_party"
	MethodSNTV              = "sntv"
	MethodScore             = "score"
	MethodSTAR              = "star"
	MethodMajorityJudgment  = "majority_judgment"
	MethodUsualJudgment     = "usual_judgment"
	MethodThreeTwoOne       = "three_two_one"
	MethodIRV               = "irv"
	MethodCondorcet         = "condorcet"
	MethodSTV               = "stv"
	MethodQuotaPreferential = "quota_preferential"

Device roles:

	RoleVoter = "voter"
	RoleAdmin = "admin"

Platforms:

	PlatformIOS     = "ios"
	PlatformMacOS   = "macos"
	PlatformAndroid = "android"
	PlatformWeb     = "web"
*/
package models
