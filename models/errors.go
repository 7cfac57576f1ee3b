// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrPollClosed    = errors.New("poll is closed")
	ErrAlreadyClosed = errors.New("poll already closed")
	ErrInvalidRating = errors.New("invalid rating")
	ErrInvalidPoll   = errors.New("invalid poll")
	ErrForbidden     = errors.New("voter not allowed")
)

// ValidRating reports whether rating is inside the domain of method for a
// poll with optionCount options
func ValidRating(method string, rating, optionCount int) bool {
	if rating < 0 {
		return false
	}
	switch method {
	case MethodPlurality, MethodApproval:
		return rating <= 1
	case MethodStar:
		return rating <= MaxStars
	case MethodRanked:
		return rating <= optionCount
	}
	return false
}
