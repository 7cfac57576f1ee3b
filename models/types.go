// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Poll status constants
const (
	StatusActive = "active"
	StatusEnded  = "ended"
)

// Voting method constants
const (
	MethodPlurality = "plurality"
	MethodApproval  = "approval"
	MethodStar      = "star"
	MethodRanked    = "ranked"
)

// Poll option bounds
const (
	MinOptions = 2
	MaxOptions = 10
)

// MaxStars is the highest rating a STAR ballot may hold
const MaxStars = 5

// End reasons carried on PollEnded
const (
	EndReasonManual  = "manual"
	EndReasonExpired = "expired"
)

// Request types

type CreatePollRequest struct {
	Scope           string   `json:"scope"`
	ChannelID       string   `json:"channel_id"`
	CreatorID       string   `json:"creator_id"`
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	Method          string   `json:"method"`
	DeadlineMinutes int      `json:"deadline_minutes"` // 0 = manual close only
	AuthTags        []string `json:"auth_tags,omitempty"`
}

type SubmitBallotRequest struct {
	OptionID string `json:"option_id"`
	Rating   int    `json:"rating"`
}

// Plurality helper: one chosen option, every other option rated 0
type CastChoiceRequest struct {
	OptionID string `json:"option_id"`
}

// Response types

type CreatePollResponse struct {
	Poll     Poll   `json:"poll"`
	AdminKey string `json:"admin_key"`
}

type SubmitBallotResponse struct {
	Message string `json:"message"`
}

type MyBallotResponse struct {
	PollID  string        `json:"poll_id"`
	Entries []BallotEntry `json:"entries"`
}

type ClosePollResponse struct {
	EndedAt time.Time   `json:"ended_at"`
	Result  TallyResult `json:"result"`
}

type PollListResponse struct {
	Scope string        `json:"scope"`
	State string        `json:"state"`
	Polls []PollSummary `json:"polls"`
}

// Domain types

type Poll struct {
	ID        string     `json:"id"`
	Scope     string     `json:"scope"`
	ChannelID string     `json:"channel_id,omitempty"`
	CreatorID string     `json:"creator_id,omitempty"`
	Question  string     `json:"question"`
	Options   []Option   `json:"options"`
	Method    string     `json:"method"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	Deadline  *time.Time `json:"deadline,omitempty"` // nil = manual close only
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	AuthTags  []string   `json:"auth_tags,omitempty"` // empty = anyone may vote
}

type Option struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// IsActive reports whether the poll still accepts ballots
func (p *Poll) IsActive() bool {
	return p.Status == StatusActive
}

// Option returns the option with the given ID
func (p *Poll) Option(optionID string) (Option, bool) {
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return Option{}, false
}

// BallotEntry is one voter's current rating of one option in one poll
type BallotEntry struct {
	PollID    string    `json:"poll_id"`
	VoterID   string    `json:"voter_id"`
	OptionID  string    `json:"option_id"`
	Rating    int       `json:"rating"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PollSummary is the listing view of a poll
type PollSummary struct {
	ID       string     `json:"id"`
	Question string     `json:"question"`
	Method   string     `json:"method"`
	Status   string     `json:"status"`
	Deadline *time.Time `json:"deadline,omitempty"`
	EndedAt  *time.Time `json:"ended_at,omitempty"`
	EndsIn   string     `json:"ends_in,omitempty"`
}

// Tally types

type OptionResult struct {
	OptionID   string  `json:"option_id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	Percentage float64 `json:"percentage"`
	Rank       int     `json:"rank"` // 1-indexed ranking
}

type RoundCount struct {
	OptionID string `json:"option_id"`
	Text     string `json:"text"`
	Count    int    `json:"count"`
}

// Round records one counting round (ranked choice) or the STAR runoff
type Round struct {
	Number       int          `json:"number"`
	Counts       []RoundCount `json:"counts"`
	Eliminated   []string     `json:"eliminated,omitempty"`
	NoPreference int          `json:"no_preference,omitempty"`
}

type TallyResult struct {
	PollID    string         `json:"poll_id"`
	Method    string         `json:"method"`
	Winner    string         `json:"winner"`
	WinnerID  string         `json:"winner_id,omitempty"` // empty when there is no winner
	Tie       bool           `json:"tie"`
	Exhausted bool           `json:"exhausted"`
	Voters    int            `json:"voters"`
	Options   []OptionResult `json:"options"`
	Rounds    []Round        `json:"rounds,omitempty"`
	Summary   string         `json:"summary"`
}

// PollEnded is handed to publishers after a poll transitions to ended
type PollEnded struct {
	Poll   Poll        `json:"poll"`
	Result TallyResult `json:"result"`
	Reason string      `json:"reason"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MethodName returns the display name of a voting method
func MethodName(method string) string {
	switch method {
	case MethodPlurality:
		return "Plurality"
	case MethodApproval:
		return "Approval"
	case MethodStar:
		return "STAR"
	case MethodRanked:
		return "Ranked Choice"
	default:
		return method
	}
}

// ValidMethod reports whether method is a supported voting method
func ValidMethod(method string) bool {
	switch method {
	case MethodPlurality, MethodApproval, MethodStar, MethodRanked:
		return true
	}
	return false
}
