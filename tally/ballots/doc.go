// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ballots provides a ranked-ballot grouping utility. No tally engine
in this repository imports it.

GroupPreference and GroupRanked collapse identical ballots into
(sequence, count) pairs sorted by multiplicity descending, for use in
reporting and round-log construction. They do no tallying of their own.
*/
package ballots
