// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"fmt"
	"slices"

	"github.com/danielhkuo/quickly-vote/models"
)

type BallotInput struct {
	PollID    string
	VoterID   string
	VoterTags []string
	OptionID  string
	Rating    int
}

// SubmitBallot records one voter's rating of one option. Resubmitting the
// same rating is a no-op; a different rating replaces the old one.
func (s *Service) SubmitBallot(ctx context.Context, in BallotInput) error {
	poll, err := s.votablePoll(ctx, in.PollID, in.VoterID, in.VoterTags)
	if err != nil {
		return err
	}

	if _, ok := poll.Option(in.OptionID); !ok {
		return fmt.Errorf("option %s: %w", in.OptionID, models.ErrNotFound)
	}
	if !models.ValidRating(poll.Method, in.Rating, len(poll.Options)) {
		return fmt.Errorf("rating %d for %s poll: %w", in.Rating, poll.Method, models.ErrInvalidRating)
	}

	return s.store.UpsertBallot(ctx, models.BallotEntry{
		PollID:    in.PollID,
		VoterID:   in.VoterID,
		OptionID:  in.OptionID,
		Rating:    in.Rating,
		UpdatedAt: s.Now(),
	})
}

// CastChoice selects a single option on a plurality poll: the chosen option
// is rated 1 and every other option 0, all with one timestamp.
func (s *Service) CastChoice(ctx context.Context, pollID, voterID string, voterTags []string, optionID string) error {
	poll, err := s.votablePoll(ctx, pollID, voterID, voterTags)
	if err != nil {
		return err
	}
	if poll.Method != models.MethodPlurality {
		return fmt.Errorf("single choice needs a plurality poll, got %s: %w", poll.Method, models.ErrInvalidRating)
	}
	if _, ok := poll.Option(optionID); !ok {
		return fmt.Errorf("option %s: %w", optionID, models.ErrNotFound)
	}

	at := s.Now()
	for _, opt := range poll.Options {
		rating := 0
		if opt.ID == optionID {
			rating = 1
		}
		err := s.store.UpsertBallot(ctx, models.BallotEntry{
			PollID:    pollID,
			VoterID:   voterID,
			OptionID:  opt.ID,
			Rating:    rating,
			UpdatedAt: at,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// MyBallot returns the voter's current entries for a poll
func (s *Service) MyBallot(ctx context.Context, pollID, voterID string) ([]models.BallotEntry, error) {
	if _, err := s.store.GetPoll(ctx, pollID); err != nil {
		return nil, err
	}
	return s.store.BallotsForVoter(ctx, pollID, voterID)
}

// votablePoll loads a poll and checks that it is active and that the voter
// holds one of its auth tags
func (s *Service) votablePoll(ctx context.Context, pollID, voterID string, voterTags []string) (*models.Poll, error) {
	if voterID == "" {
		return nil, fmt.Errorf("voter ID is required: %w", models.ErrForbidden)
	}

	poll, err := s.store.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !poll.IsActive() {
		return nil, fmt.Errorf("poll %s: %w", pollID, models.ErrPollClosed)
	}
	if !allowed(poll.AuthTags, voterTags) {
		return nil, fmt.Errorf("voter %s on poll %s: %w", voterID, pollID, models.ErrForbidden)
	}
	return poll, nil
}

// allowed reports whether a voter may vote: anyone when the poll has no
// auth tags, otherwise voters holding at least one of them
func allowed(pollTags, voterTags []string) bool {
	if len(pollTags) == 0 {
		return true
	}
	for _, tag := range voterTags {
		if slices.Contains(pollTags, tag) {
			return true
		}
	}
	return false
}
