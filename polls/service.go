// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/publish"
)

// Store is the poll registry and ballot store the service runs on.
// db.Store and memstore.Store both implement it.
type Store interface {
	CreatePoll(ctx context.Context, poll *models.Poll) error
	GetPoll(ctx context.Context, pollID string) (*models.Poll, error)
	EndPoll(ctx context.Context, pollID string, at time.Time) error
	ListActive(ctx context.Context, scope string) ([]models.Poll, error)
	ListEnded(ctx context.Context, scope string, limit int) ([]models.Poll, error)
	ListExpired(ctx context.Context, now time.Time) ([]string, error)

	UpsertBallot(ctx context.Context, entry models.BallotEntry) error
	BallotsForPoll(ctx context.Context, pollID string) ([]models.BallotEntry, error)
	BallotsForVoter(ctx context.Context, pollID, voterID string) ([]models.BallotEntry, error)
}

// DefaultEndedLimit caps ended-poll listings when no limit is given
const DefaultEndedLimit = 10

type Service struct {
	store     Store
	publisher publish.Publisher
	now       func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, publisher publish.Publisher, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock in UTC
func (s *Service) Now() time.Time {
	return s.now().UTC()
}

type CreatePollInput struct {
	Scope           string
	ChannelID       string
	CreatorID       string
	Question        string
	Options         []string
	Method          string
	DeadlineMinutes int // 0 = manual close only
	AuthTags        []string
}

// CreatePoll validates the input and stores a new active poll
func (s *Service) CreatePoll(ctx context.Context, in CreatePollInput) (*models.Poll, error) {
	if err := validatePoll(&in); err != nil {
		return nil, err
	}

	now := s.Now()
	poll := &models.Poll{
		ID:        uuid.NewString(),
		Scope:     in.Scope,
		ChannelID: in.ChannelID,
		CreatorID: in.CreatorID,
		Question:  in.Question,
		Method:    in.Method,
		Status:    models.StatusActive,
		CreatedAt: now,
		AuthTags:  in.AuthTags,
	}
	if in.DeadlineMinutes > 0 {
		deadline := now.Add(time.Duration(in.DeadlineMinutes) * time.Minute)
		poll.Deadline = &deadline
	}
	for i, text := range in.Options {
		poll.Options = append(poll.Options, models.Option{
			ID:       uuid.NewString(),
			Text:     text,
			Position: i,
		})
	}

	if err := s.store.CreatePoll(ctx, poll); err != nil {
		return nil, fmt.Errorf("failed to create poll: %w", err)
	}

	slog.Info("poll created", "poll_id", poll.ID, "scope", poll.Scope, "method", poll.Method, "options", len(poll.Options))
	return poll, nil
}

func validatePoll(in *CreatePollInput) error {
	in.Scope = strings.TrimSpace(in.Scope)
	in.Question = strings.TrimSpace(in.Question)

	if in.Scope == "" {
		return fmt.Errorf("scope is required: %w", models.ErrInvalidPoll)
	}
	if in.Question == "" {
		return fmt.Errorf("question is required: %w", models.ErrInvalidPoll)
	}
	if !models.ValidMethod(in.Method) {
		return fmt.Errorf("unknown voting method %q: %w", in.Method, models.ErrInvalidPoll)
	}
	if in.DeadlineMinutes < 0 {
		return fmt.Errorf("deadline must not be negative: %w", models.ErrInvalidPoll)
	}
	if len(in.Options) < models.MinOptions || len(in.Options) > models.MaxOptions {
		return fmt.Errorf("need between %d and %d options, got %d: %w",
			models.MinOptions, models.MaxOptions, len(in.Options), models.ErrInvalidPoll)
	}

	seen := make(map[string]bool, len(in.Options))
	options := make([]string, len(in.Options))
	for i, text := range in.Options {
		text = strings.TrimSpace(text)
		if text == "" {
			return fmt.Errorf("option %d is empty: %w", i+1, models.ErrInvalidPoll)
		}
		key := strings.ToLower(text)
		if seen[key] {
			return fmt.Errorf("duplicate option %q: %w", text, models.ErrInvalidPoll)
		}
		seen[key] = true
		options[i] = text
	}
	in.Options = options

	var tags []string
	for _, tag := range in.AuthTags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		// Voter tags arrive comma-separated, so a tag can never hold a comma
		if strings.Contains(tag, ",") {
			return fmt.Errorf("auth tag %q contains a comma: %w", tag, models.ErrInvalidPoll)
		}
		tags = append(tags, tag)
	}
	in.AuthTags = tags

	return nil
}

// GetPoll returns a poll by ID
func (s *Service) GetPoll(ctx context.Context, pollID string) (*models.Poll, error) {
	return s.store.GetPoll(ctx, pollID)
}

// ListActivePolls returns the active polls of a scope, newest first
func (s *Service) ListActivePolls(ctx context.Context, scope string) ([]models.Poll, error) {
	return s.store.ListActive(ctx, scope)
}

// ListEndedPolls returns recently ended polls of a scope. A limit of zero
// or less uses DefaultEndedLimit.
func (s *Service) ListEndedPolls(ctx context.Context, scope string, limit int) ([]models.Poll, error) {
	if limit <= 0 {
		limit = DefaultEndedLimit
	}
	return s.store.ListEnded(ctx, scope, limit)
}

// ExpiredPolls returns the IDs of active polls past their deadline
func (s *Service) ExpiredPolls(ctx context.Context) ([]string, error) {
	return s.store.ListExpired(ctx, s.Now())
}

// Summarize builds the listing view of a poll. EndsIn is set for active
// polls with a deadline, e.g. "5 minutes from now".
func (s *Service) Summarize(poll models.Poll) models.PollSummary {
	summary := models.PollSummary{
		ID:       poll.ID,
		Question: poll.Question,
		Method:   poll.Method,
		Status:   poll.Status,
		Deadline: poll.Deadline,
		EndedAt:  poll.EndedAt,
	}
	if poll.IsActive() && poll.Deadline != nil {
		summary.EndsIn = humanize.RelTime(*poll.Deadline, s.Now(), "ago", "from now")
	}
	return summary
}
