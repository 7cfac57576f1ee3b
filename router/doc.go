// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the quickly-vote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	svc := polls.NewService(store, publisher)
	mux := router.NewRouter(svc, cfg)

# Endpoints

Health:

	GET /health

Polls:

	POST /polls                - Create poll (returns admin_key)
	GET  /polls/{id}           - Poll with its options
	POST /polls/{id}/close     - End poll (requires X-Admin-Key)
	GET  /scopes/{scope}/polls - List polls, ?state=active|ended&limit=N

Voting (requires X-Voter-ID, optional X-Voter-Tags):

	POST /polls/{id}/ballots   - Rate one option
	POST /polls/{id}/choice    - Single choice on plurality polls
	GET  /polls/{id}/my-ballot - Caller's current entries

Results:

	GET /polls/{id}/results - Tally of the current ballots

Every route except /health and / is wrapped in middleware.WithLogging.
*/
package router
