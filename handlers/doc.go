// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the quickly-vote API.

# Handler Types

Each handler is a thin struct over *polls.Service:

  - PollHandler: create, fetch, close and list polls
  - VotingHandler: ballot submission and the caller's ballot
  - ResultsHandler: tallies

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(svc, cfg)

# Poll Lifecycle

Polls are active from creation until closed by an admin or by the
lifecycle scheduler once their deadline passes:

	POST /polls            → CreatePoll (returns admin_key)
	POST /polls/{id}/close → ClosePoll (tallies and publishes PollEnded)

Closing requires the X-Admin-Key header. Closing twice returns 409.

# Voting Flow

The interaction layer in front of the API identifies voters:

	POST /polls/{id}/ballots → SubmitBallot (create or replace one rating)
	POST /polls/{id}/choice  → CastChoice (plurality only)

Voter operations require the X-Voter-ID header; X-Voter-Tags is matched
against the poll's auth tags.

# Errors

Service errors go through middleware.ServiceError, which maps the
sentinels in models to 400, 403, 404 and 409.
*/
package handlers
