// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-vote/models"
)

// Store is the SQL-backed poll registry and ballot store
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const pollColumns = `id, scope, channel_id, creator_id, question, method, status, auth_tags, created_at, deadline, ended_at`

// CreatePoll inserts a poll and its options in one transaction
func (s *Store) CreatePoll(ctx context.Context, poll *models.Poll) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll (`+pollColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, poll.ID, poll.Scope, poll.ChannelID, poll.CreatorID, poll.Question, poll.Method, poll.Status,
		strings.Join(poll.AuthTags, ","), poll.CreatedAt.UnixNano(), nanosOrNull(poll.Deadline), nanosOrNull(poll.EndedAt))
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	for _, opt := range poll.Options {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO poll_option (poll_id, id, text, position)
			VALUES ($1, $2, $3, $4)
		`, poll.ID, opt.ID, opt.Text, opt.Position)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit poll: %w", err)
	}
	return nil
}

// GetPoll returns the poll with its options in position order
func (s *Store) GetPoll(ctx context.Context, pollID string) (*models.Poll, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pollColumns+` FROM poll WHERE id = $1`, pollID)
	poll, err := scanPoll(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("poll %s: %w", pollID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}

	if err := s.loadOptions(ctx, poll); err != nil {
		return nil, err
	}
	return poll, nil
}

// EndPoll moves an active poll to ended. Only one caller can succeed; the
// rest see ErrAlreadyClosed.
func (s *Store) EndPoll(ctx context.Context, pollID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE poll
		SET status = $1, ended_at = $2
		WHERE id = $3 AND status = $4
	`, models.StatusEnded, at.UnixNano(), pollID, models.StatusActive)
	if err != nil {
		return fmt.Errorf("failed to end poll: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to end poll: %w", err)
	}
	if n == 1 {
		return nil
	}

	var status string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM poll WHERE id = $1`, pollID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("poll %s: %w", pollID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to query poll: %w", err)
	}
	return fmt.Errorf("poll %s: %w", pollID, models.ErrAlreadyClosed)
}

// ListActive returns the active polls of a scope, newest first
func (s *Store) ListActive(ctx context.Context, scope string) ([]models.Poll, error) {
	return s.listPolls(ctx, `
		SELECT `+pollColumns+` FROM poll
		WHERE scope = $1 AND status = $2
		ORDER BY created_at DESC, id
	`, scope, models.StatusActive)
}

// ListEnded returns up to limit ended polls of a scope, most recently ended first
func (s *Store) ListEnded(ctx context.Context, scope string, limit int) ([]models.Poll, error) {
	return s.listPolls(ctx, `
		SELECT `+pollColumns+` FROM poll
		WHERE scope = $1 AND status = $2
		ORDER BY ended_at DESC, id
		LIMIT $3
	`, scope, models.StatusEnded, limit)
}

// ListExpired returns the IDs of active polls whose deadline is before now
func (s *Store) ListExpired(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM poll
		WHERE status = $1 AND deadline IS NOT NULL AND deadline < $2
		ORDER BY deadline, id
	`, models.StatusActive, now.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query expired polls: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan poll id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) listPolls(ctx context.Context, query string, args ...any) ([]models.Poll, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}

	polls := []models.Poll{}
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, *poll)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read polls: %w", err)
	}

	// Options are loaded after the cursor is closed; SQLite runs on one connection
	for i := range polls {
		if err := s.loadOptions(ctx, &polls[i]); err != nil {
			return nil, err
		}
	}
	return polls, nil
}

func (s *Store) loadOptions(ctx context.Context, poll *models.Poll) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, position
		FROM poll_option
		WHERE poll_id = $1
		ORDER BY position, id
	`, poll.ID)
	if err != nil {
		return fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	poll.Options = []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.Text, &opt.Position); err != nil {
			return fmt.Errorf("failed to scan option: %w", err)
		}
		poll.Options = append(poll.Options, opt)
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPoll(row scanner) (*models.Poll, error) {
	var (
		poll      models.Poll
		authTags  string
		createdAt int64
		deadline  sql.NullInt64
		endedAt   sql.NullInt64
	)
	err := row.Scan(
		&poll.ID, &poll.Scope, &poll.ChannelID, &poll.CreatorID, &poll.Question,
		&poll.Method, &poll.Status, &authTags, &createdAt, &deadline, &endedAt,
	)
	if err != nil {
		return nil, err
	}

	poll.CreatedAt = fromNanos(createdAt)
	poll.Deadline = nullableTime(deadline)
	poll.EndedAt = nullableTime(endedAt)
	if authTags != "" {
		poll.AuthTags = strings.Split(authTags, ",")
	}
	return &poll, nil
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func nullableTime(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromNanos(n.Int64)
	return &t
}

func nanosOrNull(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixNano()
}
