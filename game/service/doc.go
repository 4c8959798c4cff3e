// Package service provides the business logic layer for Pong Arena.
//
// The service package implements:
//   - Game start, move and poll orchestration over the session store
//   - Read-only session inspection and deletion
//   - Score recording and the high-score leaderboard
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionStore is the subset of session.Manager the service depends on.
//
// Architecture:
//
// The service layer sits between the transports (HTTP and MCP) and the game
// engine. It translates store failures into three error kinds that callers
// classify with errors.Is: ErrSessionNotFound, ErrMalformedRequest and
// ErrPersistence. Every operation runs inside an OpenTelemetry span.
//
// Usage:
//
//	sessions := session.NewManager()
//	recorder := scores.NewMemoryStore()
//	gameService := service.NewGameService(sessions, recorder, logger)
//
//	started, err := gameService.StartGame(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	state, err := gameService.Move(ctx, started.GameID, "up")
//
// Polling:
//
// PollState advances the simulation exactly like a move without a player
// action, so a client that polls faster makes the ball travel faster.
// GetSession is the side-effect free alternative.
package service
