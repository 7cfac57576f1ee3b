// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/tally"
)

// ClosePoll ends an active poll on request, tallies it and publishes the
// result. Concurrent callers race on the store; the losers get
// ErrAlreadyClosed.
func (s *Service) ClosePoll(ctx context.Context, pollID string) (models.TallyResult, error) {
	return s.Close(ctx, pollID, models.EndReasonManual)
}

// Close is the close pipeline shared by manual close and the scheduler.
// Only the caller that wins the Active to Ended transition tallies and
// publishes, so every poll is published once.
func (s *Service) Close(ctx context.Context, pollID, reason string) (models.TallyResult, error) {
	if err := s.store.EndPoll(ctx, pollID, s.Now()); err != nil {
		return models.TallyResult{}, err
	}

	// The poll is ended now; a caller going away must not cost its result
	ctx = context.WithoutCancel(ctx)

	poll, result, err := s.results(ctx, pollID)
	if err != nil {
		return models.TallyResult{}, fmt.Errorf("poll %s ended but could not be tallied: %w", pollID, err)
	}

	slog.Info("poll closed",
		"poll_id", pollID,
		"reason", reason,
		"winner", result.Winner,
		"voters", result.Voters)

	event := models.PollEnded{Poll: *poll, Result: result, Reason: reason}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			slog.Error("failed to publish poll result", "poll_id", pollID, "error", err)
		}
	}

	return result, nil
}

// GetResults tallies the current ballots of a poll, active or ended
func (s *Service) GetResults(ctx context.Context, pollID string) (models.TallyResult, error) {
	_, result, err := s.results(ctx, pollID)
	return result, err
}

func (s *Service) results(ctx context.Context, pollID string) (*models.Poll, models.TallyResult, error) {
	poll, err := s.store.GetPoll(ctx, pollID)
	if err != nil {
		return nil, models.TallyResult{}, err
	}

	ballots, err := s.store.BallotsForPoll(ctx, pollID)
	if err != nil {
		return nil, models.TallyResult{}, fmt.Errorf("failed to load ballots: %w", err)
	}

	return poll, tally.Compute(*poll, ballots), nil
}
