// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package quotapreferential implements the Quota-Preferential method with
affirmative-action rules (the "VIC Labor 2024" schedule): integer-valued
paper scores transferred between candidates, a Droop-style quota, and a
gender-quota enforcement procedure: when electing a male candidate would
make the affirmative-action target unreachable, that election is withdrawn
and a fresh count restricted to the continuing female candidates is run.
Earlier surplus transfers are not replayed and count sheets are not
restored from snapshots.

Ballots are RankedBallot: Votes[position] = option. Candidates carry a
gender flag; the election carries a PercentFemale target. The engine
produces an ordered decision log of every material choice, with
candidate-name placeholders ($C<i>, $C[i,j,...]) expanded at result
construction time.
*/
package quotapreferential
