// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/testutil"
)

func TestUpsertBallot_LastWriteWins(t *testing.T) {
	store := New()
	ctx := context.Background()
	testutil.CreateTestPoll(t, store, "p", models.MethodStar, "A", "B")

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	writes := []struct {
		rating int
		at     time.Time
		want   int
	}{
		{3, t0, 3},
		{3, t0, 3},                  // identical resubmission
		{5, t0.Add(time.Second), 5}, // newer replaces
		{1, t0, 5},                  // stale is ignored
		{2, t0.Add(time.Second), 2}, // equal timestamp, later call wins
	}

	for i, w := range writes {
		err := store.UpsertBallot(ctx, models.BallotEntry{
			PollID: "p", VoterID: "v1", OptionID: "opt1", Rating: w.rating, UpdatedAt: w.at,
		})
		if err != nil {
			t.Fatalf("write %d: %v", i, err)
		}

		ballots, _ := store.BallotsForVoter(ctx, "p", "v1")
		if len(ballots) != 1 || ballots[0].Rating != w.want {
			t.Errorf("write %d: expected single rating %d, got %+v", i, w.want, ballots)
		}
	}
}

func TestUpsertBallot_Errors(t *testing.T) {
	store := New()
	ctx := context.Background()
	testutil.CreateTestPoll(t, store, "open", models.MethodApproval, "A", "B")
	testutil.CreateTestPoll(t, store, "ended", models.MethodApproval, "A", "B")
	if err := store.EndPoll(ctx, "ended", time.Now()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		pollID  string
		option  string
		wantErr error
	}{
		{"missing poll", "nope", "opt1", models.ErrNotFound},
		{"missing option", "open", "opt7", models.ErrNotFound},
		{"ended poll", "ended", "opt1", models.ErrPollClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.UpsertBallot(ctx, models.BallotEntry{
				PollID: tt.pollID, VoterID: "v", OptionID: tt.option, Rating: 1, UpdatedAt: time.Now(),
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBallotsForPoll_PartitionedByPoll(t *testing.T) {
	store := New()
	ctx := context.Background()
	testutil.CreateTestPoll(t, store, "p1", models.MethodApproval, "A", "B")
	testutil.CreateTestPoll(t, store, "p2", models.MethodApproval, "A", "B")
	testutil.SubmitTestBallot(t, store, "p1", "v2", map[string]int{"opt2": 1, "opt1": 0})
	testutil.SubmitTestBallot(t, store, "p1", "v1", map[string]int{"opt1": 1})
	testutil.SubmitTestBallot(t, store, "p2", "v1", map[string]int{"opt2": 1})

	if len(store.ballots) != 2 || len(store.ballots["p1"]) != 3 || len(store.ballots["p2"]) != 1 {
		t.Fatalf("unexpected partitions: p1=%d p2=%d", len(store.ballots["p1"]), len(store.ballots["p2"]))
	}

	ballots, err := store.BallotsForPoll(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, b := range ballots {
		got = append(got, b.VoterID+"/"+b.OptionID)
	}
	want := "v1/opt1 v2/opt1 v2/opt2"
	if fmt.Sprint(got) != "["+want+"]" {
		t.Errorf("expected %s, got %v", want, got)
	}

	mine, _ := store.BallotsForVoter(ctx, "p2", "v1")
	if len(mine) != 1 || mine[0].OptionID != "opt2" {
		t.Errorf("unexpected ballots for v1 in p2: %+v", mine)
	}
	if none, _ := store.BallotsForPoll(ctx, "missing"); len(none) != 0 {
		t.Errorf("expected no ballots for an unknown poll, got %+v", none)
	}
}

func TestEndPoll_ConcurrentOnlyOneSucceeds(t *testing.T) {
	store := New()
	ctx := context.Background()
	testutil.CreateTestPoll(t, store, "p", models.MethodPlurality, "A", "B")

	var wg sync.WaitGroup
	var successes, alreadyClosed atomic.Int32

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.EndPoll(ctx, "p", time.Now())
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, models.ErrAlreadyClosed):
				alreadyClosed.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 1 {
		t.Errorf("expected exactly 1 success, got %d", successes.Load())
	}
	if alreadyClosed.Load() != 19 {
		t.Errorf("expected 19 already-closed, got %d", alreadyClosed.Load())
	}
}

func TestGetPoll_ReturnsCopy(t *testing.T) {
	store := New()
	ctx := context.Background()
	testutil.CreateTestPoll(t, store, "p", models.MethodPlurality, "A", "B")

	got, err := store.GetPoll(ctx, "p")
	if err != nil {
		t.Fatal(err)
	}
	got.Status = models.StatusEnded
	got.Options[0].Text = "changed"

	again, _ := store.GetPoll(ctx, "p")
	if !again.IsActive() || again.Options[0].Text != "A" {
		t.Errorf("caller mutation leaked into the store: %+v", again)
	}
}

func TestListings(t *testing.T) {
	store := New()
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	for i := 0; i < 4; i++ {
		poll := &models.Poll{
			ID: fmt.Sprintf("p%d", i), Scope: "s", Question: "q", Method: models.MethodPlurality,
			Status: models.StatusActive, CreatedAt: now.Add(time.Duration(i) * time.Second),
			Options: []models.Option{{ID: "a", Text: "A"}, {ID: "b", Text: "B", Position: 1}},
		}
		if i < 2 {
			poll.Deadline = &past
		}
		if err := store.CreatePoll(ctx, poll); err != nil {
			t.Fatal(err)
		}
	}

	expired, _ := store.ListExpired(ctx, now)
	if len(expired) != 2 || expired[0] != "p0" || expired[1] != "p1" {
		t.Errorf("unexpected expired polls: %v", expired)
	}

	if err := store.EndPoll(ctx, "p0", now); err != nil {
		t.Fatal(err)
	}
	if err := store.EndPoll(ctx, "p3", now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	active, _ := store.ListActive(ctx, "s")
	if len(active) != 2 || active[0].ID != "p2" || active[1].ID != "p1" {
		t.Errorf("unexpected active polls: %+v", active)
	}

	ended, _ := store.ListEnded(ctx, "s", 5)
	if len(ended) != 2 || ended[0].ID != "p3" || ended[1].ID != "p0" {
		t.Errorf("unexpected ended polls: %+v", ended)
	}

	limited, _ := store.ListEnded(ctx, "s", 1)
	if len(limited) != 1 {
		t.Errorf("expected 1 ended poll, got %d", len(limited))
	}

	expired, _ = store.ListExpired(ctx, now)
	if len(expired) != 1 || expired[0] != "p1" {
		t.Errorf("ended polls should not be listed as expired: %v", expired)
	}
}
