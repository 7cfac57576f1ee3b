// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"reflect"
	"testing"
	"time"
)

// clearEnv blanks every variable ParseFlags reads; t.Setenv restores them
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_URL", "DATABASE_TYPE", "ADMIN_KEY_SALT",
		"TICK_INTERVAL", "SCHEDULER_WORKERS", "PUBLISHER",
		"KAFKA_BROKERS", "KAFKA_TOPIC", "REDIS_ADDR", "REDIS_CHANNEL",
	} {
		t.Setenv(key, "")
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("ADMIN_KEY_SALT", "test-salt")
	t.Setenv("TICK_INTERVAL", "15s")
	t.Setenv("SCHEDULER_WORKERS", "8")
	t.Setenv("PUBLISHER", "log, kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.TickInterval != 15*time.Second {
		t.Errorf("expected 15s tick, got %v", cfg.TickInterval)
	}
	if cfg.SchedulerWorkers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.SchedulerWorkers)
	}
	if !reflect.DeepEqual(cfg.Publishers, []string{"log", "kafka"}) {
		t.Errorf("unexpected publishers: %v", cfg.Publishers)
	}
	if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"k1:9092", "k2:9092"}) {
		t.Errorf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.KafkaTopic != "poll-ended" {
		t.Errorf("expected default topic, got %s", cfg.KafkaTopic)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_KEY_SALT", "s")

	cfg, err := ParseFlags([]string{"-d", "votes.db"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 || cfg.DatabaseType != "sqlite" {
		t.Errorf("unexpected defaults: port=%d type=%s", cfg.Port, cfg.DatabaseType)
	}
	if cfg.TickInterval != time.Minute || cfg.SchedulerWorkers != 4 {
		t.Errorf("unexpected scheduler defaults: %v %d", cfg.TickInterval, cfg.SchedulerWorkers)
	}
	if !reflect.DeepEqual(cfg.Publishers, []string{PublisherLog}) {
		t.Errorf("expected log publisher by default, got %v", cfg.Publishers)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("TICK_INTERVAL", "15s")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-admin-salt", "s1", "-tick", "5s"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.TickInterval != 5*time.Second {
		t.Errorf("CLI should override env: expected 5s, got %v", cfg.TickInterval)
	}
}

func TestParseFlags_MemoryNeedsNoURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_KEY_SALT", "s")

	cfg, err := ParseFlags([]string{"-t", "memory"})
	if err != nil {
		t.Fatalf("memory store should not need a URL: %v", err)
	}
	if cfg.DatabaseType != DatabaseMemory {
		t.Errorf("expected memory, got %s", cfg.DatabaseType)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing database url", map[string]string{"ADMIN_KEY_SALT": "s"}, nil},
		{"missing admin salt", map[string]string{"DATABASE_URL": "x.db"}, nil},
		{"bad port", map[string]string{"PORT": "http", "DATABASE_URL": "x.db", "ADMIN_KEY_SALT": "s"}, nil},
		{"bad database type", map[string]string{"DATABASE_TYPE": "mysql", "DATABASE_URL": "x", "ADMIN_KEY_SALT": "s"}, nil},
		{"bad tick", map[string]string{"TICK_INTERVAL": "soon", "DATABASE_URL": "x.db", "ADMIN_KEY_SALT": "s"}, nil},
		{"zero workers", map[string]string{"DATABASE_URL": "x.db", "ADMIN_KEY_SALT": "s"}, []string{"-workers", "-1"}},
		{"unknown publisher", map[string]string{"PUBLISHER": "sns", "DATABASE_URL": "x.db", "ADMIN_KEY_SALT": "s"}, nil},
		{"kafka without brokers", map[string]string{"PUBLISHER": "kafka", "DATABASE_URL": "x.db", "ADMIN_KEY_SALT": "s"}, nil},
		{"redis without addr", map[string]string{"PUBLISHER": "redis", "DATABASE_URL": "x.db", "ADMIN_KEY_SALT": "s"}, nil},
		{"unknown flag", map[string]string{"DATABASE_URL": "x.db", "ADMIN_KEY_SALT": "s"}, []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}
