// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the quickly-vote API server.

quickly-vote runs scoped polls for a chat front end. Voters rate options
and a poll is tallied with Plurality, Approval, STAR or Ranked Choice
(instant runoff) when it closes, either by its admin or automatically
once its deadline passes.

# Starting the Server

Settings come from CLI flags, then the environment (a .env file is loaded
first if present):

	ADMIN_KEY_SALT=secret DATABASE_URL=quickly-vote.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -admin-salt secret

# Configuration

Required settings:

  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC
  - DATABASE_URL (-d): Connection string, unless DATABASE_TYPE is memory

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres or memory (default: sqlite)
  - TICK_INTERVAL (-tick): How often expired polls are closed (default: 60s)
  - SCHEDULER_WORKERS (-workers): Polls closed concurrently (default: 4)
  - PUBLISHER (-publisher): Comma-separated log, kafka, redis (default: log)
  - KAFKA_BROKERS, KAFKA_TOPIC: Kafka publisher settings
  - REDIS_ADDR, REDIS_CHANNEL: Redis publisher settings

# Architecture

  - polls: Poll and ballot operations, closing and publishing
  - tally: Vote counting for each method
  - lifecycle: Scheduler that ends expired polls
  - db, memstore: Storage (SQLite/PostgreSQL, or in process)
  - publish: PollEnded delivery to logs, Kafka and Redis
  - handlers, router, middleware: HTTP surface
  - models: Domain, request and response types
  - auth: Admin keys and voter identity
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
