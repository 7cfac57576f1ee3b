// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db is the SQL poll registry and ballot store.

# Opening a Database

Open picks the driver, pings, and creates the schema:

	conn, err := db.Open(db.TypeSQLite, "quickly-vote.db")
	if err != nil {
		log.Fatal(err)
	}
	store := db.NewStore(conn)

PostgreSQL goes through lib/pq and SQLite through modernc.org/sqlite.
Queries use $n placeholders, which both drivers accept.

CreateSchema is safe to call multiple times - uses IF NOT EXISTS for all
tables and indexes.

# Tables

  - poll: Poll metadata and lifecycle state
  - poll_option: Options per poll, in display order
  - ballot: One rating per (poll, voter, option)

Timestamps are BIGINT Unix nanoseconds.

# Relationships

	poll 1──* poll_option
	poll_option 1──* ballot

# Conditional Writes

Every write that races is a single conditional statement:

  - UpsertBallot inserts only while the poll is active, and replaces a
    stored rating only when the new entry is not older
  - EndPoll updates only rows still marked active, so exactly one caller
    ends a poll

When a conditional write touches nothing, the store looks up why and
returns models.ErrNotFound, models.ErrPollClosed or models.ErrAlreadyClosed.
A stale ballot is not an error.
*/
package db
