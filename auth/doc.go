// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth handles admin keys and voter identity for the HTTP API.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(pollID, salt)
	err := auth.ValidateAdminKey(pollID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same poll ID and salt always produce the same key. This allows validation
without storing the key in the database. Closing a poll over HTTP requires
the key in the X-Admin-Key header.

# Voters

Voters are identified by the interaction layer (a chat bot, a web front end)
that sits in front of the API:

	X-Voter-ID: 81234
	X-Voter-Tags: members, mods

VoterFromRequest reads both. Tags are matched against a poll's auth tags;
a poll without auth tags accepts anyone.
*/
package auth
