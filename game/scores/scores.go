// Package scores records finished-game scores and serves the leaderboard.
package scores

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultLimit is the leaderboard size.
const DefaultLimit = 10

var ErrInvalidEntry = errors.New("invalid score entry")

// Entry is one recorded score. Date is assigned by the recorder in UTC.
type Entry struct {
	Username string    `json:"username"`
	Score    int       `json:"score"`
	Date     time.Time `json:"date"`
}

// Recorder appends scores and reads the top of the leaderboard.
type Recorder interface {
	Save(ctx context.Context, username string, score int) (Entry, error)
	Top(ctx context.Context, limit int) ([]Entry, error)
}

func validateEntry(username string, score int) error {
	if strings.TrimSpace(username) == "" {
		return errors.Join(ErrInvalidEntry, errors.New("username is required"))
	}
	if score < 0 {
		return errors.Join(ErrInvalidEntry, errors.New("score must not be negative"))
	}
	return nil
}

// MemoryStore keeps scores in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory recorder.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Save appends a score stamped with the current UTC time.
func (s *MemoryStore) Save(ctx context.Context, username string, score int) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	if err := validateEntry(username, score); err != nil {
		return Entry{}, err
	}

	entry := Entry{
		Username: strings.TrimSpace(username),
		Score:    score,
		Date:     s.now().UTC(),
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return entry, nil
}

// Top returns up to limit entries, highest score first, earlier entries
// first on ties.
func (s *MemoryStore) Top(ctx context.Context, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.RLock()
	sorted := make([]Entry, len(s.entries))
	copy(sorted, s.entries)
	s.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}
