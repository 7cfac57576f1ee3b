// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/quickly-vote/models"
)

// The insert only happens while the poll is active and the option exists.
// An existing entry is replaced unless it carries a newer timestamp.
// Postgres cannot infer parameter types in a select list, hence the casts.
const upsertBallot = `
	INSERT INTO ballot (poll_id, voter_id, option_id, rating, updated_at)
	SELECT CAST($1 AS TEXT), CAST($2 AS TEXT), CAST($3 AS TEXT), CAST($4 AS INTEGER), CAST($5 AS BIGINT)
	WHERE EXISTS (SELECT 1 FROM poll WHERE id = $1 AND status = 'active')
	  AND EXISTS (SELECT 1 FROM poll_option WHERE poll_id = $1 AND id = $3)
	ON CONFLICT (poll_id, voter_id, option_id) DO UPDATE
	SET rating = excluded.rating, updated_at = excluded.updated_at
	WHERE ballot.updated_at <= excluded.updated_at
`

// UpsertBallot records one rating. Writing the same entry twice is a no-op,
// and an entry older than the stored one is ignored.
func (s *Store) UpsertBallot(ctx context.Context, entry models.BallotEntry) error {
	res, err := s.db.ExecContext(ctx, upsertBallot,
		entry.PollID, entry.VoterID, entry.OptionID, entry.Rating, entry.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert ballot: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to upsert ballot: %w", err)
	}
	if n > 0 {
		return nil
	}

	return s.explainSkippedUpsert(ctx, entry)
}

// explainSkippedUpsert works out why the upsert touched no rows
func (s *Store) explainSkippedUpsert(ctx context.Context, entry models.BallotEntry) error {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM poll WHERE id = $1`, entry.PollID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("poll %s: %w", entry.PollID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to query poll: %w", err)
	}
	if status != models.StatusActive {
		return fmt.Errorf("poll %s: %w", entry.PollID, models.ErrPollClosed)
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `
		SELECT 1 FROM poll_option WHERE poll_id = $1 AND id = $2
	`, entry.PollID, entry.OptionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("option %s: %w", entry.OptionID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to query option: %w", err)
	}

	// Stale write: a newer entry is already stored
	return nil
}

// BallotsForPoll returns every stored entry for a poll, ordered by voter then option
func (s *Store) BallotsForPoll(ctx context.Context, pollID string) ([]models.BallotEntry, error) {
	return s.queryBallots(ctx, `
		SELECT poll_id, voter_id, option_id, rating, updated_at
		FROM ballot
		WHERE poll_id = $1
		ORDER BY voter_id, option_id
	`, pollID)
}

// BallotsForVoter returns one voter's entries for a poll, ordered by option
func (s *Store) BallotsForVoter(ctx context.Context, pollID, voterID string) ([]models.BallotEntry, error) {
	return s.queryBallots(ctx, `
		SELECT poll_id, voter_id, option_id, rating, updated_at
		FROM ballot
		WHERE poll_id = $1 AND voter_id = $2
		ORDER BY option_id
	`, pollID, voterID)
}

func (s *Store) queryBallots(ctx context.Context, query string, args ...any) ([]models.BallotEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ballots: %w", err)
	}
	defer rows.Close()

	entries := []models.BallotEntry{}
	for rows.Next() {
		var (
			e         models.BallotEntry
			updatedAt int64
		)
		if err := rows.Scan(&e.PollID, &e.VoterID, &e.OptionID, &e.Rating, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ballot: %w", err)
		}
		e.UpdatedAt = fromNanos(updatedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ballots: %w", err)
	}
	return entries, nil
}
