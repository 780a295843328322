// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Pick API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - PollHandler: Poll lifecycle (create, publish, close)
  - VotingHandler: Username claims and ballot submission
  - ResultsHandler: Poll info and results retrieval
  - DeviceHandler: Device registration and poll history

Handlers are created via constructor functions that accept *sql.DB and Config,
plus optional functional options such as WithCache:

	pollHandler := handlers.NewPollHandler(db, cfg)
	pollHandler := handlers.NewPollHandler(db, cfg, handlers.WithCache(resultCache))

# Poll Lifecycle

Polls progress through three states: draft → open → closed

	POST /polls           → CreatePoll (returns admin_key)
	POST /polls/{id}/options → AddOption (draft only)
	POST /polls/{id}/publish → PublishPoll (generates share_slug)
	POST /polls/{id}/close   → ClosePoll (computes results for the poll's configured method)

Admin operations require the X-Admin-Key header.

# Voting Flow

Voters interact via the share slug:

	POST /polls/{slug}/claim-username → ClaimUsername (returns voter_token)
	POST /polls/{slug}/ballots        → SubmitBallot (rated methods)
	POST /polls/{slug}/ballots/raw    → SubmitRawBallot (ranked/other methods)
	GET  /polls/{slug}/my-ballot      → GetMyBallot

Voter operations require the X-Voter-Token header.

# Tallying

ClosePoll dispatches every one of the sixteen methods, including bmj,
through tally.go's computeResultSnapshotPayload, which loads the poll's
ballots (rated, via the score table, or native-shape, via ballot_payload)
and calls tally/dispatch.Compute:

	payload, err := computeResultSnapshotPayload(db, pollID, method, title, electedCount, percentFemale)

tally/bmj computes median, P10, P90, mean, negative share, and veto
status for each option from rated ballots, then ranks them
lexicographically, the same way the other rated engines (score, star,
majority_judgment, usual_judgment, three_two_one) are pure functions
over decoded ballot values.

# Device Tracking

Optional device tracking for native apps:

	POST /devices/register → Register
	GET /devices/me        → GetMe
	GET /devices/my-polls  → GetMyPolls

Device operations require the X-Device-UUID header.
*/
package handlers
