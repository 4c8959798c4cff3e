// Package api provides the HTTP JSON API for Pong Arena.
//
// The api package implements:
//   - The game endpoints used by the browser client
//   - The score endpoints backing the leaderboard
//   - Read-only session inspection and deletion
//   - Health and metrics endpoints
//
// Endpoints:
//
// Game Operations:
//   - POST /start - Create a game, returns {"game_id", "state"}
//   - POST /move - Body {"game_id", "direction"}, moves and ticks, returns {"state"}
//   - GET /state?game_id= - Ticks without a move, returns {"state"}
//
// Leaderboard:
//   - POST /save_score - Body {"username", "score"}, returns {"status": "ok"}
//   - GET /high_scores?limit= - Returns {"high_scores": [{"username", "score", "date"}]}
//
// Session Management:
//   - GET /sessions - List running games
//   - GET /sessions/{id} - Inspect a game without advancing it
//   - DELETE /sessions/{id} - Discard a game
//
// Operations:
//   - GET /healthz - Liveness
//   - GET /metrics - Request and game counters
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status code:
//
//	{
//	  "error": "Invalid game_id"
//	}
//
// Unknown or missing game ids and malformed bodies are 400; score storage
// failures are 500. Every response carries CORS headers and OPTIONS
// preflight requests are answered with 204.
//
// Usage:
//
//	server := api.NewServer(gameService, api.WithLogger(logger))
//	server.Mount("/mcp", mcpHandler)
//	http.ListenAndServe(":5000", server)
package api
