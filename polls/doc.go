// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package polls is the poll service: creating polls, recording ballots,
closing polls and computing results.

	svc := polls.NewService(store, publish.LogPublisher{})
	poll, err := svc.CreatePoll(ctx, polls.CreatePollInput{...})
	err = svc.SubmitBallot(ctx, polls.BallotInput{PollID: poll.ID, ...})
	result, err := svc.ClosePoll(ctx, poll.ID)

# Ballots

A ballot is a set of entries, one rating per (poll, voter, option). Each
submission replaces the voter's rating for that option, so retries and
double clicks never add votes. Rating domains depend on the method:

  - plurality, approval: 0 or 1
  - star: 0 to 5
  - ranked: 0 (unranked) to the number of options

CastChoice is the single-choice form for plurality polls.

Polls with auth tags only accept voters holding at least one of them.

# Closing

Manual close and the lifecycle scheduler share one pipeline. The store ends
the poll with a conditional update, so exactly one caller wins; the others
get models.ErrAlreadyClosed. The winner tallies and publishes. A publish
failure is logged and does not fail the close.

# Errors

All errors wrap the sentinels in models and are checked with errors.Is.
The service holds no locks; every race is settled by the store.
*/
package polls
