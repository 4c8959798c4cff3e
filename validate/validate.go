// Package validate decodes and checks request payloads before they reach the
// game service. It checks:
//   - the body is a JSON object
//   - required fields are present and non-blank
//   - save_score usernames fit the leaderboard (at most 64 characters)
//   - scores are non-negative integers
//   - the high_scores limit is a positive integer no larger than MaxLimit
//
// Every problem found is reported, not just the first.
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 64
	DefaultLimit      = 10
	MaxLimit          = 100
)

// ErrMalformed is matched by every *Result returned as an error.
var ErrMalformed = errors.New("malformed request")

// Result accumulates the problems found in one payload.
type Result struct {
	Errors []string
}

func (r *Result) addf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Valid reports whether no problems were recorded.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Result) Error() string {
	return strings.Join(r.Errors, "; ")
}

func (r *Result) Unwrap() error {
	return ErrMalformed
}

func (r *Result) err() error {
	if r.Valid() {
		return nil
	}
	return r
}

// MoveRequest is the body of POST /move. A blank GameID is passed through so
// the caller can report an unknown game.
type MoveRequest struct {
	GameID    string `json:"game_id"`
	Direction string `json:"direction"`
}

// SaveScoreRequest is the body of POST /save_score.
type SaveScoreRequest struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

func decodeObject(body io.Reader, fields map[string]json.RawMessage) error {
	if body == nil {
		return &Result{Errors: []string{"request body must be a JSON object"}}
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return &Result{Errors: []string{fmt.Sprintf("failed to read request body: %v", err)}}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return &Result{Errors: []string{"request body must be a JSON object"}}
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return &Result{Errors: []string{fmt.Sprintf("invalid JSON: %v", err)}}
	}
	return nil
}

func stringField(r *Result, fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		r.addf("%s must be a string", name)
		return ""
	}
	return s
}

// DecodeMove reads a MoveRequest. Direction is free-form; unknown values are
// no-ops downstream.
func DecodeMove(body io.Reader) (MoveRequest, error) {
	fields := map[string]json.RawMessage{}
	if err := decodeObject(body, fields); err != nil {
		return MoveRequest{}, err
	}

	var result Result
	req := MoveRequest{
		GameID:    stringField(&result, fields, "game_id"),
		Direction: stringField(&result, fields, "direction"),
	}
	return req, result.err()
}

// DecodeSaveScore reads and checks a SaveScoreRequest.
func DecodeSaveScore(body io.Reader) (SaveScoreRequest, error) {
	fields := map[string]json.RawMessage{}
	if err := decodeObject(body, fields); err != nil {
		return SaveScoreRequest{}, err
	}

	var result Result
	var req SaveScoreRequest

	if _, ok := fields["username"]; !ok {
		result.addf("username is required")
	} else {
		req.Username = strings.TrimSpace(stringField(&result, fields, "username"))
		if req.Username == "" && result.Valid() {
			result.addf("username is required")
		}
		if n := utf8.RuneCountInString(req.Username); n > MaxUsernameLength {
			result.addf("username must be at most %d characters, got %d", MaxUsernameLength, n)
		}
	}

	raw, ok := fields["score"]
	switch {
	case !ok || string(raw) == "null":
		result.addf("score is required")
	default:
		score, err := strconv.Atoi(string(raw))
		if err != nil {
			result.addf("score must be an integer")
		} else if score < 0 {
			result.addf("score must not be negative, got %d", score)
		} else {
			req.Score = score
		}
	}

	return req, result.err()
}

// ParseLimit parses the optional limit query parameter.
func ParseLimit(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultLimit, nil
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit <= 0 || limit > MaxLimit {
		return 0, &Result{Errors: []string{fmt.Sprintf("limit must be an integer between 1 and %d", MaxLimit)}}
	}
	return limit, nil
}
