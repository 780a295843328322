// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    creator_name TEXT NOT NULL,
    method TEXT NOT NULL DEFAULT 'bmj',
    -- Seats to fill; only consulted by stv, sntv, quota_preferential.
    elected_count INTEGER NOT NULL DEFAULT 1,
    -- Affirmative-action target for quota_preferential; ignored otherwise.
    percent_female REAL NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'open', 'closed')),
    share_slug TEXT UNIQUE,
    closes_at TIMESTAMP,
    closed_at TIMESTAMP,
    final_snapshot_id TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_poll_share_slug ON poll(share_slug);
CREATE INDEX IF NOT EXISTS idx_poll_status ON poll(status);

-- Options
CREATE TABLE IF NOT EXISTS option (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    label TEXT NOT NULL,
    -- Only meaningful for the quota_preferential method's affirmative-action rules.
    is_female BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_option_poll_id ON option(poll_id);

-- Username Claims
CREATE TABLE IF NOT EXISTS username_claim (
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    username TEXT NOT NULL,
    voter_token TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    PRIMARY KEY (poll_id, voter_token),
    UNIQUE (poll_id, username)
);

CREATE INDEX IF NOT EXISTS idx_username_claim_poll_id ON username_claim(poll_id);

-- Ballots
CREATE TABLE IF NOT EXISTS ballot (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    voter_token TEXT NOT NULL,
    submitted_at TIMESTAMP NOT NULL DEFAULT NOW(),
    ip_hash TEXT,
    user_agent TEXT,
    UNIQUE (poll_id, voter_token)
);

CREATE INDEX IF NOT EXISTS idx_ballot_poll_id ON ballot(poll_id);
CREATE INDEX IF NOT EXISTS idx_ballot_voter_token ON ballot(poll_id, voter_token);

-- Scores (used by the rated methods: bmj, score, star, majority_judgment,
-- usual_judgment, three_two_one)
CREATE TABLE IF NOT EXISTS score (
    ballot_id TEXT NOT NULL REFERENCES ballot(id) ON DELETE CASCADE,
    option_id TEXT NOT NULL REFERENCES option(id) ON DELETE CASCADE,
    value01 REAL NOT NULL CHECK (value01 >= 0 AND value01 <= 1),
    PRIMARY KEY (ballot_id, option_id)
);

CREATE INDEX IF NOT EXISTS idx_score_option_id ON score(option_id);

-- Raw ballot payload for the ranked and choice-based methods (irv, stv,
-- condorcet, quota_preferential, approval, borda, cumulative,
-- anti_plurality, sntv, single_party). Holds the method's native shape as
-- JSON, e.g. an ordered option-id array for ranked ballots, an option-id
-- set for approval, or an option-id -> points map for borda/cumulative.
CREATE TABLE IF NOT EXISTS ballot_payload (
    ballot_id TEXT PRIMARY KEY REFERENCES ballot(id) ON DELETE CASCADE,
    payload JSONB NOT NULL
);

-- Result Snapshots
CREATE TABLE IF NOT EXISTS result_snapshot (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    method TEXT NOT NULL,
    computed_at TIMESTAMP NOT NULL DEFAULT NOW(),
    payload JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_result_snapshot_poll_id ON result_snapshot(poll_id);
`
