// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - poll: Poll metadata, configured tallying method, and lifecycle state
  - option: Voting options per poll (is_female flags affirmative-action
    eligibility for quota_preferential)
  - username_claim: Maps usernames to voter tokens
  - ballot: One ballot per voter per poll
  - score: Individual option scores (0-1), used by the rated methods (bmj,
    score, star, majority_judgment, usual_judgment, three_two_one)
  - ballot_payload: Native-shape ballot JSON for every other method (ranked
    lists, approval sets, single choices, point allocations)
  - result_snapshot: Immutable tally results, one per closed poll
  - device: Registered devices
  - device_poll: Links devices to polls

CreateSchema creates every table above except device and device_poll, and
does not create the device.device_uuid index; testutil's migrate creates
all of them.

# Relationships

	poll 1──* option
	poll 1──* username_claim
	poll 1──* ballot
	ballot 1──* score
	ballot 1──1 ballot_payload
	poll 1──* result_snapshot
	device *──* poll (via device_poll)

All foreign keys use ON DELETE CASCADE.

# Indexes

Performance indexes on:

  - poll.share_slug (unique)
  - poll.status
  - option.poll_id
  - ballot.poll_id
  - ballot.(poll_id, voter_token)
  - score.option_id
  - device.device_uuid (unique)
*/
package db
