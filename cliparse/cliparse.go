// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Publisher names accepted in -publisher / PUBLISHER
const (
	PublisherLog   = "log"
	PublisherKafka = "kafka"
	PublisherRedis = "redis"
)

// DatabaseMemory keeps everything in process memory; nothing survives a restart
const DatabaseMemory = "memory"

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string

	TickInterval     time.Duration
	SchedulerWorkers int

	Publishers   []string
	KafkaBrokers []string
	KafkaTopic   string
	RedisAddr    string
	RedisChannel string
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var publishers, brokers string

	fs := flag.NewFlagSet("quickly-vote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres or memory)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")

	// Scheduler
	fs.DurationVar(&cfg.TickInterval, "tick", 0, "Expiry check interval")
	fs.IntVar(&cfg.SchedulerWorkers, "workers", 0, "Polls closed concurrently per tick")

	// Result publishing
	fs.StringVar(&publishers, "publisher", "", "Comma-separated publishers (log, kafka, redis)")
	fs.StringVar(&brokers, "kafka-brokers", "", "Comma-separated Kafka brokers")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", "", "Kafka topic for ended polls")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "Redis address")
	fs.StringVar(&cfg.RedisChannel, "redis-channel", "", "Redis channel for ended polls")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	switch cfg.DatabaseType {
	case "sqlite", "postgres", DatabaseMemory:
	default:
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseType != DatabaseMemory {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.TickInterval == 0 {
		if s := os.Getenv("TICK_INTERVAL"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return Config{}, errors.New("invalid TICK_INTERVAL env variable")
			}
			cfg.TickInterval = d
		} else {
			cfg.TickInterval = 60 * time.Second
		}
	}
	if cfg.TickInterval <= 0 {
		return Config{}, errors.New("tick interval must be positive")
	}

	if cfg.SchedulerWorkers == 0 {
		if s := os.Getenv("SCHEDULER_WORKERS"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return Config{}, errors.New("invalid SCHEDULER_WORKERS env variable")
			}
			cfg.SchedulerWorkers = n
		} else {
			cfg.SchedulerWorkers = 4
		}
	}
	if cfg.SchedulerWorkers <= 0 {
		return Config{}, errors.New("scheduler workers must be positive")
	}

	if publishers == "" {
		publishers = envOr("PUBLISHER", PublisherLog)
	}
	cfg.Publishers = splitList(publishers)
	if brokers == "" {
		brokers = os.Getenv("KAFKA_BROKERS")
	}
	cfg.KafkaBrokers = splitList(brokers)
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = envOr("KAFKA_TOPIC", "poll-ended")
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	}
	if cfg.RedisChannel == "" {
		cfg.RedisChannel = envOr("REDIS_CHANNEL", "poll-ended")
	}

	for _, p := range cfg.Publishers {
		switch p {
		case PublisherLog:
		case PublisherKafka:
			if len(cfg.KafkaBrokers) == 0 {
				return Config{}, errors.New("kafka publisher needs KAFKA_BROKERS")
			}
		case PublisherRedis:
			if cfg.RedisAddr == "" {
				return Config{}, errors.New("redis publisher needs REDIS_ADDR")
			}
		default:
			return Config{}, fmt.Errorf("unknown publisher %q", p)
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
