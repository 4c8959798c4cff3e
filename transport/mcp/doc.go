// Package mcp provides the Model Context Protocol interface for Pong Arena.
//
// The package implements a thin MCP server whose tools proxy to the REST
// API, so agents and browsers observe the same games:
//   - start_game: Create a game
//   - move: Move the player paddle and advance one tick
//   - game_state: Advance one tick without moving
//   - peek_session: Read a game without advancing it
//   - save_score: Record a score
//   - high_scores: Read the leaderboard
//   - game_rules: Field geometry and scoring rules
//
// Transport Modes:
//   - Stdio: GetMCPServer is served with server.ServeStdio
//   - HTTP: Handler answers one JSON-RPC message per POST
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:5000", version)
//	apiServer.Mount("/mcp", client.Handler())
package mcp
