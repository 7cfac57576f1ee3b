// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/quickly-vote/models"
)

// Defaults used when New gets zero values
const (
	DefaultInterval = 60 * time.Second
	DefaultWorkers  = 4
)

// Closer finds expired polls and runs the close pipeline on them.
// polls.Service implements it.
type Closer interface {
	ExpiredPolls(ctx context.Context) ([]string, error)
	Close(ctx context.Context, pollID, reason string) (models.TallyResult, error)
}

// Scheduler ends polls whose deadline has passed
type Scheduler struct {
	closer   Closer
	interval time.Duration
	workers  int
}

func New(closer Closer, interval time.Duration, workers int) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Scheduler{closer: closer, interval: interval, workers: workers}
}

// Run ticks once immediately and then every interval until ctx is done
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("lifecycle scheduler started", "interval", s.interval, "workers", s.workers)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Tick(ctx); err != nil && ctx.Err() == nil {
			slog.Error("scheduler tick failed", "error", err)
		}

		select {
		case <-ctx.Done():
			slog.Info("lifecycle scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

// Tick closes every expired poll and returns how many it ended. A poll
// closed by someone else in the meantime is skipped quietly; other close
// failures are logged and do not stop the remaining polls.
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	ids, err := s.closer.ExpiredPolls(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired polls: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var (
		g     errgroup.Group
		ended atomic.Int32
	)
	g.SetLimit(s.workers)

	for _, id := range ids {
		g.Go(func() error {
			_, err := s.closer.Close(ctx, id, models.EndReasonExpired)
			switch {
			case err == nil:
				ended.Add(1)
			case errors.Is(err, models.ErrAlreadyClosed):
				slog.Debug("expired poll already closed", "poll_id", id)
			default:
				slog.Error("failed to close expired poll", "poll_id", id, "error", err)
			}
			return nil
		})
	}
	g.Wait()

	n := int(ended.Load())
	if n > 0 {
		slog.Info("closed expired polls", "count", n)
	}
	return n, nil
}
