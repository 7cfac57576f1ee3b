// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/polls"
)

type VotingHandler struct {
	svc *polls.Service
	cfg cliparse.Config
}

func NewVotingHandler(svc *polls.Service, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{svc: svc, cfg: cfg}
}

// SubmitBallot handles POST /polls/{id}/ballots
// Creates or replaces the voter's rating for one option
func (h *VotingHandler) SubmitBallot(w http.ResponseWriter, r *http.Request) {
	voter, err := auth.VoterFromRequest(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-ID header is required")
		return
	}

	var req models.SubmitBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option_id is required")
		return
	}

	err = h.svc.SubmitBallot(r.Context(), polls.BallotInput{
		PollID:    r.PathValue("id"),
		VoterID:   voter.ID,
		VoterTags: voter.Tags,
		OptionID:  req.OptionID,
		Rating:    req.Rating,
	})
	if err != nil {
		middleware.ServiceError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SubmitBallotResponse{Message: "Ballot recorded"})
}

// CastChoice handles POST /polls/{id}/choice
// Single-choice voting for plurality polls
func (h *VotingHandler) CastChoice(w http.ResponseWriter, r *http.Request) {
	voter, err := auth.VoterFromRequest(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-ID header is required")
		return
	}

	var req models.CastChoiceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option_id is required")
		return
	}

	err = h.svc.CastChoice(r.Context(), r.PathValue("id"), voter.ID, voter.Tags, req.OptionID)
	if err != nil {
		middleware.ServiceError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SubmitBallotResponse{Message: "Choice recorded"})
}

// GetMyBallot handles GET /polls/{id}/my-ballot
func (h *VotingHandler) GetMyBallot(w http.ResponseWriter, r *http.Request) {
	voter, err := auth.VoterFromRequest(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-ID header is required")
		return
	}

	pollID := r.PathValue("id")
	entries, err := h.svc.MyBallot(r.Context(), pollID, voter.ID)
	if err != nil {
		middleware.ServiceError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MyBallotResponse{PollID: pollID, Entries: entries})
}
