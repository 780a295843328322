// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the voting-systems API server.

The server hosts group polls configurable with sixteen tallying methods —
Balanced Majority Judgment (the legacy bipolar hate/meh/love default),
Majority Judgment, Usual Judgment, STAR, Score, 3-2-1, Approval, Borda,
Cumulative, Anti-Plurality, Single-Party, SNTV, IRV, Condorcet/Ranked
Pairs, STV, and Quota-Preferential with affirmative action.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... go run main.go

Or with flags:

	go run main.go -p 3318 -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL or SQLite connection string
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC
  - POLL_SLUG_SALT (--slug-salt): Secret for share slug generation

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE: sql.Open driver name; derived from DATABASE_URL's scheme
    if unset
  - REDIS_URL (-redis-url): enables the result-snapshot cache when set

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (polls, voting, results, devices);
    dispatches tallying by the poll's configured method
  - tally: the sixteen pure tally engines, plus tally/dispatch, the
    switchboard that adapts stored ballots into each engine's native type
  - cache: Redis-backed result-snapshot cache, optional
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Token generation and validation
  - db: Schema creation
  - cliparse: Configuration parsing

cmd/tallyctl offers the same tallying as an offline CLI, replaying a result
from election+votes JSON files without a database or HTTP server.

See package documentation for each component.
*/
package main
