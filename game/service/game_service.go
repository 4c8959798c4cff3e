package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/pong-arena/game/engine"
	"github.com/wricardo/pong-arena/game/scores"
	"github.com/wricardo/pong-arena/game/session"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrMalformedRequest = errors.New("malformed request")
	ErrPersistence      = errors.New("persistence failure")
)

// GameService defines all game-related operations
type GameService interface {
	// Game Operations
	StartGame(ctx context.Context) (*StartResult, error)
	Move(ctx context.Context, gameID, direction string) (*engine.GameState, error)
	PollState(ctx context.Context, gameID string) (*engine.GameState, error)

	// Session Management
	GetSession(ctx context.Context, gameID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, gameID string) error

	// Leaderboard
	SaveScore(ctx context.Context, username string, score int) (*scores.Entry, error)
	HighScores(ctx context.Context, limit int) ([]scores.Entry, error)
}

// SessionStore defines session storage operations
type SessionStore interface {
	Create() (session.Snapshot, error)
	Get(id string) (session.Snapshot, error)
	ApplyMove(id string, direction engine.Direction) (session.Snapshot, error)
	Poll(id string) (session.Snapshot, error)
	List() []session.Snapshot
	Delete(id string) error
}

// StartResult is returned when a new game starts.
type StartResult struct {
	GameID string           `json:"game_id"`
	State  engine.GameState `json:"state"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string           `json:"id"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	State          engine.GameState `json:"state"`
}

func sessionInfoFrom(snap session.Snapshot) *SessionInfo {
	return &SessionInfo{
		ID:             snap.ID,
		CreatedAt:      snap.CreatedAt,
		LastAccessedAt: snap.LastAccessedAt,
		State:          snap.State,
	}
}
