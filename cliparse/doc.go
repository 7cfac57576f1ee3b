// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

main loads a .env file (godotenv) before calling it, so values from .env
behave like real environment variables.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Connection string or SQLite file (required unless memory)
  - DatabaseType: sqlite (default), postgres or memory
  - AdminKeySalt: Secret for admin key HMAC (required)
  - TickInterval: How often expired polls are closed (default: 60s)
  - SchedulerWorkers: Polls closed concurrently per tick (default: 4)
  - Publishers: Where ended polls are announced (default: log)
  - KafkaBrokers, KafkaTopic: Kafka publisher settings
  - RedisAddr, RedisChannel: Redis publisher settings

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	-admin-salt      Admin key salt
	-tick            Expiry check interval (e.g. 30s)
	-workers         Scheduler workers
	-publisher       log,kafka,redis
	-kafka-brokers   host:port list
	-kafka-topic     Kafka topic
	-redis-addr      Redis address
	-redis-channel   Redis channel

# Environment Variables

Flags fall back to environment variables:

	PORT              → -p
	DATABASE_URL      → -d
	DATABASE_TYPE     → -t
	ADMIN_KEY_SALT    → -admin-salt
	TICK_INTERVAL     → -tick
	SCHEDULER_WORKERS → -workers
	PUBLISHER         → -publisher
	KAFKA_BROKERS     → -kafka-brokers
	KAFKA_TOPIC       → -kafka-topic
	REDIS_ADDR        → -redis-addr
	REDIS_CHANNEL     → -redis-channel

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing for sqlite or postgres
  - ADMIN_KEY_SALT is missing
  - a publisher is unknown, or kafka/redis lack their address
*/
package cliparse
