// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-vote/memstore"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/polls"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.PollEnded
}

func (p *recordingPublisher) Publish(ctx context.Context, event models.PollEnded) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func TestTick_EndsOnlyExpiredActivePolls(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	pub := &recordingPublisher{}
	svc := polls.NewService(memstore.New(), pub, polls.WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	create := func(question string, minutes int) *models.Poll {
		poll, err := svc.CreatePoll(ctx, polls.CreatePollInput{
			Scope: "g", Question: question, Options: []string{"A", "B"},
			Method: models.MethodApproval, DeadlineMinutes: minutes,
		})
		if err != nil {
			t.Fatal(err)
		}
		return poll
	}

	short := create("short", 5)
	long := create("long", 60)
	manual := create("manual", 0)
	closedEarly := create("closed early", 5)

	if err := svc.SubmitBallot(ctx, polls.BallotInput{
		PollID: short.ID, VoterID: "v1", OptionID: short.Options[1].ID, Rating: 1,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ClosePoll(ctx, closedEarly.ID); err != nil {
		t.Fatal(err)
	}

	clock = now.Add(10 * time.Minute)
	sched := New(svc, time.Minute, 2)

	n, err := sched.Tick(ctx)
	if err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 poll ended, got %d", n)
	}

	for _, tc := range []struct {
		poll   *models.Poll
		active bool
	}{
		{short, false},
		{long, true},
		{manual, true},
	} {
		got, _ := svc.GetPoll(ctx, tc.poll.ID)
		if got.IsActive() != tc.active {
			t.Errorf("poll %q: expected active=%v, got status %s", tc.poll.Question, tc.active, got.Status)
		}
	}

	// One manual close plus one expiry
	if len(pub.events) != 2 {
		t.Fatalf("expected 2 publications, got %d", len(pub.events))
	}
	expired := pub.events[1]
	if expired.Poll.ID != short.ID || expired.Reason != models.EndReasonExpired {
		t.Errorf("unexpected event: poll=%s reason=%s", expired.Poll.ID, expired.Reason)
	}
	if expired.Result.WinnerID != short.Options[1].ID {
		t.Errorf("expected B to win, got %q", expired.Result.Winner)
	}

	// Nothing left to do on the next tick
	n, err = sched.Tick(ctx)
	if err != nil || n != 0 {
		t.Errorf("second tick: expected 0 ended, got %d (err %v)", n, err)
	}
}

// fakeCloser hands out a fixed list of IDs and records concurrency
type fakeCloser struct {
	ids      []string
	listErr  error
	closeErr map[string]error
	delay    time.Duration

	inFlight atomic.Int32
	maxSeen  atomic.Int32
	calls    atomic.Int32
}

func (f *fakeCloser) ExpiredPolls(ctx context.Context) ([]string, error) {
	return f.ids, f.listErr
}

func (f *fakeCloser) Close(ctx context.Context, pollID, reason string) (models.TallyResult, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(f.delay)

	if reason != models.EndReasonExpired {
		return models.TallyResult{}, fmt.Errorf("unexpected reason %q", reason)
	}
	return models.TallyResult{PollID: pollID}, f.closeErr[pollID]
}

func TestTick_SkipsAlreadyClosedAndContinuesOnError(t *testing.T) {
	closer := &fakeCloser{
		ids: []string{"a", "b", "c", "d"},
		closeErr: map[string]error{
			"b": fmt.Errorf("poll b: %w", models.ErrAlreadyClosed),
			"c": errors.New("disk full"),
		},
	}

	n, err := New(closer, time.Minute, 4).Tick(context.Background())
	if err != nil {
		t.Fatalf("close failures should not fail the tick: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 polls ended, got %d", n)
	}
	if closer.calls.Load() != 4 {
		t.Errorf("every expired poll should be tried, got %d calls", closer.calls.Load())
	}
}

func TestTick_BoundsConcurrency(t *testing.T) {
	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprintf("poll-%d", i)
	}
	closer := &fakeCloser{ids: ids, delay: 10 * time.Millisecond}

	n, err := New(closer, time.Minute, 3).Tick(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 12 {
		t.Errorf("expected 12 polls ended, got %d", n)
	}
	if closer.maxSeen.Load() > 3 {
		t.Errorf("expected at most 3 concurrent closes, saw %d", closer.maxSeen.Load())
	}
}

func TestTick_ListError(t *testing.T) {
	closer := &fakeCloser{listErr: errors.New("connection reset")}

	_, err := New(closer, time.Minute, 1).Tick(context.Background())
	if err == nil {
		t.Error("expected list error to be returned")
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New(&fakeCloser{}, 0, 0)
	if s.interval != DefaultInterval || s.workers != DefaultWorkers {
		t.Errorf("expected defaults, got interval=%v workers=%d", s.interval, s.workers)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	closer := &fakeCloser{ids: []string{"a"}}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		New(closer, 5*time.Millisecond, 1).Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for closer.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("scheduler did not tick")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
