// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// Headers carrying caller identity
const (
	HeaderVoterID   = "X-Voter-ID"
	HeaderVoterTags = "X-Voter-Tags"
	HeaderAdminKey  = "X-Admin-Key"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrMissingVoter    = errors.New("missing voter ID")
)

// GenerateAdminKey creates an HMAC-based admin key for a poll
// This is deterministic and verifiable
func GenerateAdminKey(pollID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(pollID))
	sum := h.Sum(nil)
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the poll
func ValidateAdminKey(pollID, adminKey, salt string) error {
	if adminKey == "" {
		return ErrInvalidAdminKey
	}
	expected := GenerateAdminKey(pollID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// Voter is the caller identity supplied by the interaction layer
type Voter struct {
	ID   string
	Tags []string
}

// VoterFromRequest reads the voter ID and the comma-separated tag list.
// The interaction layer in front of the API is trusted to set them.
func VoterFromRequest(r *http.Request) (Voter, error) {
	id := strings.TrimSpace(r.Header.Get(HeaderVoterID))
	if id == "" {
		return Voter{}, ErrMissingVoter
	}
	return Voter{ID: id, Tags: ParseTags(r.Header.Get(HeaderVoterTags))}, nil
}

// ParseTags splits a comma-separated list, dropping blanks
func ParseTags(s string) []string {
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
