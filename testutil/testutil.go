// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/models"
)

// SetupTestDB creates a fresh SQLite database file with the full schema.
// The file lives in the test's temp dir and is removed with it.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open(db.TypeSQLite, path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      "file::memory:",
		DatabaseType:     db.TypeSQLite,
		AdminKeySalt:     "test-admin-salt",
		TickInterval:     time.Minute,
		SchedulerWorkers: 4,
		Publishers:       []string{cliparse.PublisherLog},
	}
}

// PollStore is the part of a store the fixtures need
type PollStore interface {
	CreatePoll(ctx context.Context, poll *models.Poll) error
	UpsertBallot(ctx context.Context, entry models.BallotEntry) error
}

// CreateTestPoll stores an active poll whose option IDs are opt1, opt2, ...
func CreateTestPoll(t *testing.T, store PollStore, pollID, method string, labels ...string) *models.Poll {
	t.Helper()

	poll := &models.Poll{
		ID:        pollID,
		Scope:     "test-scope",
		Question:  "Test Poll",
		Method:    method,
		Status:    models.StatusActive,
		CreatedAt: time.Now().UTC(),
	}
	for i, label := range labels {
		poll.Options = append(poll.Options, models.Option{
			ID:       fmt.Sprintf("opt%d", i+1),
			Text:     label,
			Position: i,
		})
	}

	if err := store.CreatePoll(context.Background(), poll); err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return poll
}

// SubmitTestBallot writes one voter's ratings, keyed by option ID
func SubmitTestBallot(t *testing.T, store PollStore, pollID, voterID string, ratings map[string]int) {
	t.Helper()

	at := time.Now().UTC()
	for optionID, rating := range ratings {
		err := store.UpsertBallot(context.Background(), models.BallotEntry{
			PollID:    pollID,
			VoterID:   voterID,
			OptionID:  optionID,
			Rating:    rating,
			UpdatedAt: at,
		})
		if err != nil {
			t.Fatalf("Failed to submit test ballot: %v", err)
		}
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
