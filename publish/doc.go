// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package publish delivers PollEnded events once a poll has been closed and
tallied.

# Publishers

  - LogPublisher: one slog line with the winner and voter count
  - KafkaPublisher: JSON value on a topic, keyed by poll ID
  - RedisPublisher: JSON payload on a pub/sub channel
  - Multi: fans out to several publishers

Kafka and Redis carry the same JSON document produced by Encode.

Publishing happens after the poll is already ended, so a failure never
reopens it. Callers log the error and move on.
*/
package publish
