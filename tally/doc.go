// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally computes poll results from a full snapshot of ballots.

	result := tally.Compute(poll, ballots)

Compute is pure: it performs no I/O, never mutates its inputs, and returns
the same result for any ordering of the same ballot set. It is safe to call
concurrently.

# Ordering and Tie-Breaks

Ballots are sorted by (voter, option, timestamp) before counting. Options
are reported by score descending, then option ID ascending, with 1-indexed
ranks. The winner always holds rank 1.

  - Plurality: highest count; equal counts go to the smallest option ID
  - Approval: same rule as plurality
  - STAR: the runoff winner; an even runoff goes to the higher scorer
  - Ranked: majority winner, last remaining option, or an explicit tie

# Methods

Plurality counts each voter's single positively rated option. A voter with
no positive rating abstains; a voter with several is not counted, which
resolves a momentary double selection deterministically.

Approval counts every option rated 1 or higher.

STAR sums 0-5 star ratings (missing ratings are 0), then compares the two
top scorers voter by voter. Equal ratings are reported as "no preference".
Percentages are each option's share of all stars awarded.

Ranked choice eliminates every option at the lowest count each round until
one option holds floor(voters/2)+1 first choices, where voters counts only
voters who ranked at least one option. A round cap of options+5 reports
Exhausted instead of looping.

# Empty Polls

When nothing was cast every method returns Winner "No votes were cast",
an empty WinnerID, and zero percentages.
*/
package tally
