// Package engine provides the core game logic for Pong Arena.
//
// The engine package implements the game mechanics including:
//   - Ball integration, wall bounces and paddle collisions
//   - Scoring, ball resets and win detection
//   - The player paddle controller
//   - The stochastic computer paddle controller
//
// Core Types:
//
// GameState is the full state of one game and doubles as the wire format.
// GameEngine pairs a GameState with the RandomSource that drives the computer
// paddle, and implements the Engine interface used by sessions.
//
// Usage:
//
//	rng, err := engine.NewRandomSource()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(rng)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Move the player and advance one tick
//	state := gameEngine.Move(engine.Up)
//
//	// Advance one tick without player input
//	state = gameEngine.Poll()
//
// Game Rules:
//
// There is no clock. The game advances one tick per Move or Poll. A side
// scores when the ball leaves the field behind the opposing paddle, and the
// first side to reach WinScore wins. Once finished, the state is frozen.
package engine
