package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeMove(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    MoveRequest
		wantErr string
	}{
		{"valid move", `{"game_id":"abc","direction":"up"}`, MoveRequest{GameID: "abc", Direction: "up"}, ""},
		{"unknown direction passes", `{"game_id":"abc","direction":"left"}`, MoveRequest{GameID: "abc", Direction: "left"}, ""},
		{"missing game id passes through", `{"direction":"down"}`, MoveRequest{Direction: "down"}, ""},
		{"null fields are blank", `{"game_id":null,"direction":null}`, MoveRequest{}, ""},
		{"empty body", ``, MoveRequest{}, "JSON object"},
		{"not JSON", `game_id=abc`, MoveRequest{}, "JSON object"},
		{"array body", `["abc"]`, MoveRequest{}, "JSON object"},
		{"truncated JSON", `{"game_id":`, MoveRequest{}, "invalid JSON"},
		{"numeric game id", `{"game_id":42,"direction":"up"}`, MoveRequest{Direction: "up"}, "game_id must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMove(strings.NewReader(tt.body))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("Expected %+v, got %+v", tt.want, got)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Expected ErrMalformed, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err)
			}
		})
	}
}

func TestDecodeMove_NilBody(t *testing.T) {
	if _, err := DecodeMove(nil); !errors.Is(err, ErrMalformed) {
		t.Errorf("Expected ErrMalformed, got %v", err)
	}
}

func TestDecodeSaveScore(t *testing.T) {
	longName := strings.Repeat("a", MaxUsernameLength+1)

	tests := []struct {
		name     string
		body     string
		want     SaveScoreRequest
		wantErrs []string
	}{
		{"valid", `{"username":"alice","score":5}`, SaveScoreRequest{Username: "alice", Score: 5}, nil},
		{"zero score", `{"username":"bob","score":0}`, SaveScoreRequest{Username: "bob"}, nil},
		{"username trimmed", `{"username":"  carol ","score":3}`, SaveScoreRequest{Username: "carol", Score: 3}, nil},
		{"max length username", `{"username":"` + strings.Repeat("é", MaxUsernameLength) + `","score":1}`,
			SaveScoreRequest{Username: strings.Repeat("é", MaxUsernameLength), Score: 1}, nil},
		{"missing everything", `{}`, SaveScoreRequest{}, []string{"username is required", "score is required"}},
		{"blank username", `{"username":"   ","score":1}`, SaveScoreRequest{}, []string{"username is required"}},
		{"long username", `{"username":"` + longName + `","score":1}`, SaveScoreRequest{}, []string{"at most 64"}},
		{"non-string username", `{"username":7,"score":1}`, SaveScoreRequest{}, []string{"username must be a string"}},
		{"negative score", `{"username":"dave","score":-1}`, SaveScoreRequest{}, []string{"must not be negative"}},
		{"fractional score", `{"username":"dave","score":2.5}`, SaveScoreRequest{}, []string{"score must be an integer"}},
		{"string score", `{"username":"dave","score":"5"}`, SaveScoreRequest{}, []string{"score must be an integer"}},
		{"null score", `{"username":"dave","score":null}`, SaveScoreRequest{}, []string{"score is required"}},
		{"not JSON", `username=dave`, SaveScoreRequest{}, []string{"JSON object"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSaveScore(strings.NewReader(tt.body))
			if len(tt.wantErrs) == 0 {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("Expected %+v, got %+v", tt.want, got)
				}
				return
			}
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("Expected ErrMalformed, got %v", err)
			}
			for _, want := range tt.wantErrs {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Expected %q in %q", want, err)
				}
			}
		})
	}
}

func TestDecodeSaveScore_ReportsAllProblems(t *testing.T) {
	_, err := DecodeSaveScore(strings.NewReader(`{"username":"","score":-3}`))

	var result *Result
	if !errors.As(err, &result) {
		t.Fatalf("Expected *Result, got %T", err)
	}
	if len(result.Errors) != 2 {
		t.Errorf("Expected 2 problems, got %v", result.Errors)
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", DefaultLimit, false},
		{"5", 5, false},
		{" 100 ", 100, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"101", 0, true},
		{"ten", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLimit(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLimit(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLimit(%q) = %d, want %d", tt.in, got, tt.want)
			}
			if tt.wantErr && !errors.Is(err, ErrMalformed) {
				t.Errorf("Expected ErrMalformed, got %v", err)
			}
		})
	}
}
