package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wricardo/pong-arena/game/engine"
	"github.com/wricardo/pong-arena/game/scores"
	"github.com/wricardo/pong-arena/game/session"
)

var tracer = otel.Tracer("github.com/wricardo/pong-arena/game/service")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionStore
	scores   scores.Recorder
	logger   *zap.Logger
}

// NewGameService creates a new game service instance. A nil logger is
// replaced by a no-op logger.
func NewGameService(sessions SessionStore, recorder scores.Recorder, logger *zap.Logger) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gameServiceImpl{
		sessions: sessions,
		scores:   recorder,
		logger:   logger,
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// sessionError folds session store failures into the service error kinds.
func sessionError(gameID string, err error) error {
	if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrInvalidSessionID) {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, gameID)
	}
	return err
}

// StartGame creates a new session
func (s *gameServiceImpl) StartGame(ctx context.Context) (result *StartResult, err error) {
	_, span := startSpan(ctx, "GameService.StartGame")
	defer func() { endSpan(span, err) }()

	snap, err := s.sessions.Create()
	if err != nil {
		s.logger.Error("create session failed", zap.Error(err))
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	span.SetAttributes(attribute.String("game.id", snap.ID))
	s.logger.Info("game started", zap.String("game_id", snap.ID))

	return &StartResult{GameID: snap.ID, State: snap.State}, nil
}

// Move applies a player move and advances the game one tick.
func (s *gameServiceImpl) Move(ctx context.Context, gameID, direction string) (state *engine.GameState, err error) {
	_, span := startSpan(ctx, "GameService.Move",
		attribute.String("game.id", gameID),
		attribute.String("game.direction", direction),
	)
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(gameID) == "" {
		return nil, fmt.Errorf("%w: game_id is required", ErrSessionNotFound)
	}

	dir := engine.ParseDirection(direction)
	if !dir.Valid() {
		s.logger.Debug("ignoring unknown direction", zap.String("game_id", gameID), zap.String("direction", direction))
	}

	snap, err := s.sessions.ApplyMove(gameID, dir)
	if err != nil {
		return nil, sessionError(gameID, err)
	}
	s.logFinished(snap)
	return &snap.State, nil
}

// PollState advances the game one tick without a player move.
func (s *gameServiceImpl) PollState(ctx context.Context, gameID string) (state *engine.GameState, err error) {
	_, span := startSpan(ctx, "GameService.PollState", attribute.String("game.id", gameID))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(gameID) == "" {
		return nil, fmt.Errorf("%w: game_id is required", ErrSessionNotFound)
	}

	snap, err := s.sessions.Poll(gameID)
	if err != nil {
		return nil, sessionError(gameID, err)
	}
	s.logFinished(snap)
	return &snap.State, nil
}

func (s *gameServiceImpl) logFinished(snap session.Snapshot) {
	if snap.State.Status() != engine.Finished {
		return
	}
	s.logger.Debug("game finished",
		zap.String("game_id", snap.ID),
		zap.String("winner", string(snap.State.Winner)),
		zap.Int("player_score", snap.State.PlayerScore),
		zap.Int("computer_score", snap.State.ComputerScore),
	)
}

// GetSession returns session information without advancing the game.
func (s *gameServiceImpl) GetSession(ctx context.Context, gameID string) (info *SessionInfo, err error) {
	_, span := startSpan(ctx, "GameService.GetSession", attribute.String("game.id", gameID))
	defer func() { endSpan(span, err) }()

	snap, err := s.sessions.Get(gameID)
	if err != nil {
		return nil, sessionError(gameID, err)
	}
	return sessionInfoFrom(snap), nil
}

// ListSessions returns all active sessions, oldest first.
func (s *gameServiceImpl) ListSessions(ctx context.Context) (infos []*SessionInfo, err error) {
	_, span := startSpan(ctx, "GameService.ListSessions")
	defer func() { endSpan(span, err) }()

	snaps := s.sessions.List()
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.Before(snaps[j].CreatedAt)
	})

	infos = make([]*SessionInfo, 0, len(snaps))
	for _, snap := range snaps {
		infos = append(infos, sessionInfoFrom(snap))
	}
	span.SetAttributes(attribute.Int("session.count", len(infos)))
	return infos, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, gameID string) (err error) {
	_, span := startSpan(ctx, "GameService.DeleteSession", attribute.String("game.id", gameID))
	defer func() { endSpan(span, err) }()

	if err := s.sessions.Delete(gameID); err != nil {
		return sessionError(gameID, err)
	}
	s.logger.Info("game deleted", zap.String("game_id", gameID))
	return nil
}

// SaveScore records a finished game's score on the leaderboard.
func (s *gameServiceImpl) SaveScore(ctx context.Context, username string, score int) (entry *scores.Entry, err error) {
	ctx, span := startSpan(ctx, "GameService.SaveScore",
		attribute.String("score.username", username),
		attribute.Int("score.value", score),
	)
	defer func() { endSpan(span, err) }()

	saved, err := s.scores.Save(ctx, username, score)
	if err != nil {
		if errors.Is(err, scores.ErrInvalidEntry) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		s.logger.Error("save score failed", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.logger.Info("score saved", zap.String("username", saved.Username), zap.Int("score", saved.Score))
	return &saved, nil
}

// HighScores returns the top entries of the leaderboard.
func (s *gameServiceImpl) HighScores(ctx context.Context, limit int) (entries []scores.Entry, err error) {
	ctx, span := startSpan(ctx, "GameService.HighScores", attribute.Int("score.limit", limit))
	defer func() { endSpan(span, err) }()

	if limit <= 0 {
		limit = scores.DefaultLimit
	}
	entries, err = s.scores.Top(ctx, limit)
	if err != nil {
		s.logger.Error("read high scores failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if entries == nil {
		entries = []scores.Entry{}
	}
	return entries, nil
}
