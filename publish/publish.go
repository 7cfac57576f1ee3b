// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/quickly-vote/models"
)

// Publisher announces a poll that has ended
type Publisher interface {
	Publish(ctx context.Context, event models.PollEnded) error
}

// Encode renders the wire form shared by the Kafka and Redis publishers
func Encode(event models.PollEnded) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode poll ended event: %w", err)
	}
	return data, nil
}

// LogPublisher writes one structured log line per ended poll
type LogPublisher struct {
	Logger *slog.Logger // nil uses slog.Default()
}

func (p LogPublisher) Publish(ctx context.Context, event models.PollEnded) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "poll ended",
		"poll_id", event.Poll.ID,
		"scope", event.Poll.Scope,
		"method", event.Result.Method,
		"reason", event.Reason,
		"winner", event.Result.Winner,
		"tie", event.Result.Tie,
		"voters", event.Result.Voters)
	return nil
}

// Multi publishes to every publisher in order. A failing publisher does not
// stop the rest; all failures are joined.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event models.PollEnded) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
