// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/danielhkuo/quickly-vote/models"
)

type ballotKey struct {
	pollID   string
	voterID  string
	optionID string
}

// Store keeps polls and ballots in memory. Every method holds the lock for
// the whole check-and-write, so it gives the same guarantees as db.Store.
type Store struct {
	mu    sync.RWMutex
	polls map[string]*models.Poll

	// ballots are partitioned by poll ID so range reads touch one poll
	ballots map[string]map[ballotKey]models.BallotEntry
}

func New() *Store {
	return &Store{
		polls:   make(map[string]*models.Poll),
		ballots: make(map[string]map[ballotKey]models.BallotEntry),
	}
}

func (s *Store) CreatePoll(ctx context.Context, poll *models.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.polls[poll.ID]; exists {
		return fmt.Errorf("poll %s already exists", poll.ID)
	}
	s.polls[poll.ID] = clonePoll(poll)
	return nil
}

func (s *Store) GetPoll(ctx context.Context, pollID string) (*models.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return nil, fmt.Errorf("poll %s: %w", pollID, models.ErrNotFound)
	}
	return clonePoll(poll), nil
}

func (s *Store) EndPoll(ctx context.Context, pollID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return fmt.Errorf("poll %s: %w", pollID, models.ErrNotFound)
	}
	if !poll.IsActive() {
		return fmt.Errorf("poll %s: %w", pollID, models.ErrAlreadyClosed)
	}

	endedAt := at.UTC()
	poll.Status = models.StatusEnded
	poll.EndedAt = &endedAt
	return nil
}

// ListActive returns the active polls of a scope, newest first
func (s *Store) ListActive(ctx context.Context, scope string) ([]models.Poll, error) {
	polls := s.filter(func(p *models.Poll) bool {
		return p.Scope == scope && p.IsActive()
	})
	sort.Slice(polls, func(i, j int) bool {
		if !polls[i].CreatedAt.Equal(polls[j].CreatedAt) {
			return polls[i].CreatedAt.After(polls[j].CreatedAt)
		}
		return polls[i].ID < polls[j].ID
	})
	return polls, nil
}

// ListEnded returns up to limit ended polls of a scope, most recently ended first
func (s *Store) ListEnded(ctx context.Context, scope string, limit int) ([]models.Poll, error) {
	polls := s.filter(func(p *models.Poll) bool {
		return p.Scope == scope && !p.IsActive()
	})
	sort.Slice(polls, func(i, j int) bool {
		a, b := endedAt(polls[i]), endedAt(polls[j])
		if !a.Equal(b) {
			return a.After(b)
		}
		return polls[i].ID < polls[j].ID
	})
	if limit >= 0 && len(polls) > limit {
		polls = polls[:limit]
	}
	return polls, nil
}

// ListExpired returns the IDs of active polls whose deadline is before now
func (s *Store) ListExpired(ctx context.Context, now time.Time) ([]string, error) {
	polls := s.filter(func(p *models.Poll) bool {
		return p.IsActive() && p.Deadline != nil && p.Deadline.Before(now)
	})
	sort.Slice(polls, func(i, j int) bool {
		if !polls[i].Deadline.Equal(*polls[j].Deadline) {
			return polls[i].Deadline.Before(*polls[j].Deadline)
		}
		return polls[i].ID < polls[j].ID
	})

	ids := make([]string, len(polls))
	for i, p := range polls {
		ids[i] = p.ID
	}
	return ids, nil
}

// UpsertBallot records one rating. Writing the same entry twice is a no-op,
// and an entry older than the stored one is ignored.
func (s *Store) UpsertBallot(ctx context.Context, entry models.BallotEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[entry.PollID]
	if !ok {
		return fmt.Errorf("poll %s: %w", entry.PollID, models.ErrNotFound)
	}
	if !poll.IsActive() {
		return fmt.Errorf("poll %s: %w", entry.PollID, models.ErrPollClosed)
	}
	if _, ok := poll.Option(entry.OptionID); !ok {
		return fmt.Errorf("option %s: %w", entry.OptionID, models.ErrNotFound)
	}

	key := ballotKey{entry.PollID, entry.VoterID, entry.OptionID}
	byKey, ok := s.ballots[entry.PollID]
	if !ok {
		byKey = make(map[ballotKey]models.BallotEntry)
		s.ballots[entry.PollID] = byKey
	}
	if stored, ok := byKey[key]; ok && stored.UpdatedAt.After(entry.UpdatedAt) {
		return nil
	}
	entry.UpdatedAt = entry.UpdatedAt.UTC()
	byKey[key] = entry
	return nil
}

// BallotsForPoll returns every stored entry for a poll, ordered by voter then option
func (s *Store) BallotsForPoll(ctx context.Context, pollID string) ([]models.BallotEntry, error) {
	return s.ballotsWhere(pollID, func(ballotKey) bool { return true }), nil
}

// BallotsForVoter returns one voter's entries for a poll, ordered by option
func (s *Store) BallotsForVoter(ctx context.Context, pollID, voterID string) ([]models.BallotEntry, error) {
	return s.ballotsWhere(pollID, func(k ballotKey) bool { return k.voterID == voterID }), nil
}

func (s *Store) ballotsWhere(pollID string, match func(ballotKey) bool) []models.BallotEntry {
	s.mu.RLock()
	entries := []models.BallotEntry{}
	for k, e := range s.ballots[pollID] {
		if match(k) {
			entries = append(entries, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].VoterID != entries[j].VoterID {
			return entries[i].VoterID < entries[j].VoterID
		}
		return entries[i].OptionID < entries[j].OptionID
	})
	return entries
}

func (s *Store) filter(match func(*models.Poll) bool) []models.Poll {
	s.mu.RLock()
	defer s.mu.RUnlock()

	polls := []models.Poll{}
	for _, p := range s.polls {
		if match(p) {
			polls = append(polls, *clonePoll(p))
		}
	}
	return polls
}

func endedAt(p models.Poll) time.Time {
	if p.EndedAt == nil {
		return time.Time{}
	}
	return *p.EndedAt
}

// clonePoll copies the slices and pointers so callers never share state
// with the arena
func clonePoll(p *models.Poll) *models.Poll {
	c := *p
	c.Options = append([]models.Option(nil), p.Options...)
	c.AuthTags = append([]string(nil), p.AuthTags...)
	if p.Deadline != nil {
		d := *p.Deadline
		c.Deadline = &d
	}
	if p.EndedAt != nil {
		e := *p.EndedAt
		c.EndedAt = &e
	}
	return &c
}
