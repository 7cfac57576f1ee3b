// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/polls"
)

type PollHandler struct {
	svc *polls.Service
	cfg cliparse.Config
}

func NewPollHandler(svc *polls.Service, cfg cliparse.Config) *PollHandler {
	return &PollHandler{svc: svc, cfg: cfg}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, err := h.svc.CreatePoll(r.Context(), polls.CreatePollInput{
		Scope:           req.Scope,
		ChannelID:       req.ChannelID,
		CreatorID:       req.CreatorID,
		Question:        req.Question,
		Options:         req.Options,
		Method:          req.Method,
		DeadlineMinutes: req.DeadlineMinutes,
		AuthTags:        req.AuthTags,
	})
	if err != nil {
		middleware.ServiceError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		Poll:     *poll,
		AdminKey: auth.GenerateAdminKey(poll.ID, h.cfg.AdminKeySalt),
	})
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.svc.GetPoll(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.ServiceError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// ClosePoll handles POST /polls/{id}/close
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	adminKey := r.Header.Get(auth.HeaderAdminKey)
	if err := auth.ValidateAdminKey(pollID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	result, err := h.svc.ClosePoll(r.Context(), pollID)
	if err != nil {
		middleware.ServiceError(w, err)
		return
	}

	resp := models.ClosePollResponse{EndedAt: h.svc.Now(), Result: result}
	if poll, err := h.svc.GetPoll(r.Context(), pollID); err == nil && poll.EndedAt != nil {
		resp.EndedAt = *poll.EndedAt
	} else if err != nil {
		slog.Warn("closed poll could not be reloaded", "poll_id", pollID, "error", err)
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// ListPolls handles GET /scopes/{scope}/polls?state=active|ended&limit=N
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	scope := r.PathValue("scope")
	state := r.URL.Query().Get("state")
	if state == "" {
		state = models.StatusActive
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	var (
		list []models.Poll
		err  error
	)
	switch state {
	case models.StatusActive:
		list, err = h.svc.ListActivePolls(r.Context(), scope)
	case models.StatusEnded:
		list, err = h.svc.ListEndedPolls(r.Context(), scope, limit)
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "state must be active or ended")
		return
	}
	if err != nil {
		middleware.ServiceError(w, err)
		return
	}

	resp := models.PollListResponse{Scope: scope, State: state, Polls: []models.PollSummary{}}
	for _, poll := range list {
		resp.Polls = append(resp.Polls, h.svc.Summarize(poll))
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
