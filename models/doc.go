// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types shared by every
other package.

# Request Types

Types for parsing incoming JSON:

  - CreatePollRequest: scope, question, options, method, deadline_minutes, auth_tags
  - SubmitBallotRequest: option_id, rating
  - CastChoiceRequest: option_id (plurality helper)

# Response Types

  - CreatePollResponse: poll, admin_key
  - SubmitBallotResponse: message
  - MyBallotResponse: poll_id, entries
  - ClosePollResponse: ended_at, result
  - PollListResponse: scope, state, polls
  - ErrorResponse: error, message

# Domain Types

  - Poll: question, ordered options, method, lifecycle state, timestamps
  - Option: stable identity and immutable text
  - BallotEntry: (poll, voter, option) → rating with last-write timestamp
  - TallyResult: winner, per-option breakdown, rounds, and summary text
  - PollEnded: the payload handed to publishers

# Rating Domains

	plurality  0 or 1, at most one 1 per voter
	approval   0 or 1 per option
	star       0..5
	ranked     0..len(options), 0 = unranked, 1 = most preferred

ValidRating enforces these bounds at submission time.

# Errors

Sentinel errors are compared with errors.Is:

	ErrNotFound       poll or option does not exist
	ErrPollClosed     ballot written after the poll ended
	ErrAlreadyClosed  close requested on an ended poll
	ErrInvalidRating  rating outside the method's domain
	ErrInvalidPoll    malformed poll creation input
	ErrForbidden      voter holds none of the poll's auth tags
*/
package models
