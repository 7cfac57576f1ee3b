// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/testutil"
)

func voterHeaders(voterID, tags string) map[string]string {
	headers := map[string]string{}
	if voterID != "" {
		headers["X-Voter-ID"] = voterID
	}
	if tags != "" {
		headers["X-Voter-Tags"] = tags
	}
	return headers
}

func TestSubmitBallot(t *testing.T) {
	svc, _ := newTestService()
	cfg := testutil.GetTestConfig()
	pollHandler := NewPollHandler(svc, cfg)
	handler := NewVotingHandler(svc, cfg)

	star, _ := createPoll(t, pollHandler, lunchPoll(models.MethodStar))
	closed, _ := createPoll(t, pollHandler, lunchPoll(models.MethodStar))
	if _, err := svc.ClosePoll(context.Background(), closed.ID); err != nil {
		t.Fatal(err)
	}
	gated := lunchPoll(models.MethodStar)
	gated.AuthTags = []string{"members"}
	gatedPoll, _ := createPoll(t, pollHandler, gated)

	testCases := []struct {
		name           string
		poll           models.Poll
		headers        map[string]string
		body           interface{}
		expectedStatus int
	}{
		{
			name:           "valid rating",
			poll:           star,
			headers:        voterHeaders("alice", ""),
			body:           models.SubmitBallotRequest{OptionID: star.Options[0].ID, Rating: 5},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "zero rating",
			poll:           star,
			headers:        voterHeaders("alice", ""),
			body:           models.SubmitBallotRequest{OptionID: star.Options[1].ID, Rating: 0},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing voter",
			poll:           star,
			headers:        voterHeaders("", ""),
			body:           models.SubmitBallotRequest{OptionID: star.Options[0].ID, Rating: 3},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing option",
			poll:           star,
			headers:        voterHeaders("alice", ""),
			body:           models.SubmitBallotRequest{Rating: 3},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown option",
			poll:           star,
			headers:        voterHeaders("alice", ""),
			body:           models.SubmitBallotRequest{OptionID: "nope", Rating: 3},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "rating above five stars",
			poll:           star,
			headers:        voterHeaders("alice", ""),
			body:           models.SubmitBallotRequest{OptionID: star.Options[0].ID, Rating: 6},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative rating",
			poll:           star,
			headers:        voterHeaders("alice", ""),
			body:           models.SubmitBallotRequest{OptionID: star.Options[0].ID, Rating: -1},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "closed poll",
			poll:           closed,
			headers:        voterHeaders("alice", ""),
			body:           models.SubmitBallotRequest{OptionID: closed.Options[0].ID, Rating: 3},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "voter without tag",
			poll:           gatedPoll,
			headers:        voterHeaders("alice", "guests"),
			body:           models.SubmitBallotRequest{OptionID: gatedPoll.Options[0].ID, Rating: 3},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "voter with tag",
			poll:           gatedPoll,
			headers:        voterHeaders("alice", "guests, members"),
			body:           models.SubmitBallotRequest{OptionID: gatedPoll.Options[0].ID, Rating: 3},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/polls/"+tc.poll.ID+"/ballots", tc.body, tc.headers)
			req.SetPathValue("id", tc.poll.ID)
			w := httptest.NewRecorder()

			handler.SubmitBallot(w, req)
			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}

	t.Run("unknown poll", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/polls/ghost/ballots",
			models.SubmitBallotRequest{OptionID: "x", Rating: 1}, voterHeaders("alice", ""))
		req.SetPathValue("id", "ghost")
		w := httptest.NewRecorder()

		handler.SubmitBallot(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestCastChoice(t *testing.T) {
	svc, _ := newTestService()
	cfg := testutil.GetTestConfig()
	pollHandler := NewPollHandler(svc, cfg)
	handler := NewVotingHandler(svc, cfg)

	plurality, _ := createPoll(t, pollHandler, lunchPoll(models.MethodPlurality))
	approval, _ := createPoll(t, pollHandler, lunchPoll(models.MethodApproval))

	cast := func(poll models.Poll, optionID string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/polls/"+poll.ID+"/choice",
			models.CastChoiceRequest{OptionID: optionID}, voterHeaders("bob", ""))
		req.SetPathValue("id", poll.ID)
		w := httptest.NewRecorder()
		handler.CastChoice(w, req)
		return w
	}

	t.Run("plurality poll", func(t *testing.T) {
		w := cast(plurality, plurality.Options[1].ID)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.SubmitBallotResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Message != "Choice recorded" {
			t.Errorf("Unexpected message: %q", resp.Message)
		}
	})

	t.Run("switching choice", func(t *testing.T) {
		testutil.AssertStatus(t, cast(plurality, plurality.Options[2].ID), http.StatusOK)

		entries, err := svc.MyBallot(context.Background(), plurality.ID, "bob")
		if err != nil {
			t.Fatal(err)
		}
		chosen := 0
		for _, e := range entries {
			chosen += e.Rating
		}
		if len(entries) != 3 || chosen != 1 {
			t.Errorf("Expected exactly one chosen option out of 3 entries, got %+v", entries)
		}
	})

	t.Run("approval poll", func(t *testing.T) {
		testutil.AssertStatus(t, cast(approval, approval.Options[0].ID), http.StatusBadRequest)
	})

	t.Run("missing option", func(t *testing.T) {
		testutil.AssertStatus(t, cast(plurality, ""), http.StatusBadRequest)
	})
}

func TestGetMyBallot(t *testing.T) {
	svc, _ := newTestService()
	cfg := testutil.GetTestConfig()
	pollHandler := NewPollHandler(svc, cfg)
	handler := NewVotingHandler(svc, cfg)

	poll, _ := createPoll(t, pollHandler, lunchPoll(models.MethodApproval))

	submit := testutil.MakeRequest("POST", "/polls/"+poll.ID+"/ballots",
		models.SubmitBallotRequest{OptionID: poll.Options[0].ID, Rating: 1}, voterHeaders("carol", ""))
	submit.SetPathValue("id", poll.ID)
	handler.SubmitBallot(httptest.NewRecorder(), submit)

	t.Run("own entries", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls/"+poll.ID+"/my-ballot", nil, voterHeaders("carol", ""))
		req.SetPathValue("id", poll.ID)
		w := httptest.NewRecorder()
		handler.GetMyBallot(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.MyBallotResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.PollID != poll.ID || len(resp.Entries) != 1 {
			t.Fatalf("Unexpected ballot: %+v", resp)
		}
		if resp.Entries[0].OptionID != poll.Options[0].ID || resp.Entries[0].Rating != 1 {
			t.Errorf("Unexpected entry: %+v", resp.Entries[0])
		}
	})

	t.Run("other voter sees nothing", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls/"+poll.ID+"/my-ballot", nil, voterHeaders("dave", ""))
		req.SetPathValue("id", poll.ID)
		w := httptest.NewRecorder()
		handler.GetMyBallot(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.MyBallotResponse
		testutil.AssertJSON(t, w, &resp)
		if len(resp.Entries) != 0 {
			t.Errorf("Expected no entries, got %+v", resp.Entries)
		}
	})

	t.Run("missing voter", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls/"+poll.ID+"/my-ballot", nil, nil)
		req.SetPathValue("id", poll.ID)
		w := httptest.NewRecorder()
		handler.GetMyBallot(w, req)
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}
