// Package session provides session management for Pong Arena.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation (UUIDv4)
//   - Per-session serialization of game updates
//   - Idle session expiry
//   - Optional on-disk snapshots of every session
//
// Core Types:
//
// Manager is the session store. Session is an individual game with its own
// engine, random source and lock. Snapshot is the value copy handed to
// callers; nothing outside this package holds live game state.
//
// Concurrency:
//
// The manager's map lock is only held to find, insert or remove a session.
// Every game operation then takes that session's own mutex, so two requests
// for the same game are serialized while requests for different games run in
// parallel. Creating a session never waits on an existing one.
//
// Usage:
//
//	manager := session.NewManager(session.WithLogger(logger))
//
//	// Create a new session
//	snap, err := manager.Create()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Move the player paddle (also advances the game one tick)
//	snap, err = manager.ApplyMove(snap.ID, engine.Up)
//
//	// Poll also advances the game one tick
//	snap, err = manager.Poll(snap.ID)
//
// Cleanup:
//
// Sessions are never removed by gameplay. CleanupExpiredSessions and
// RunSweeper evict sessions that have been idle longer than a configured age.
package session
