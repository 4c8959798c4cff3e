package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/pong-arena/api"
	"github.com/wricardo/pong-arena/game/engine"
	"github.com/wricardo/pong-arena/game/scores"
	"github.com/wricardo/pong-arena/game/service"
	"github.com/wricardo/pong-arena/game/session"
)

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:5000/", "test")

	if client.baseURL != "http://localhost:5000" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %q", r.Header.Get("Content-Type"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"game_id": "abc"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test")
	var result map[string]string
	if err := client.apiCall(context.Background(), http.MethodPost, "/start", map[string]string{}, &result); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if result["game_id"] != "abc" {
		t.Errorf("Expected game_id abc, got %v", result)
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "test")
	if err := client.apiCall(context.Background(), http.MethodGet, "/healthz", nil, nil); err == nil {
		t.Error("Expected error for unreachable server")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"error message is surfaced", `{"error":"Invalid game_id"}`, "Invalid game_id"},
		{"status code without message", `oops`, "API error: 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, "test")
			err := client.apiCall(context.Background(), http.MethodGet, "/state", nil, nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClient_handleMove(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/move" {
			t.Errorf("Expected POST /move, got %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["game_id"] != "g1" || body["direction"] != "down" {
			t.Errorf("Unexpected body %v", body)
		}

		state := engine.NewGameState()
		state.PlayerY = 282
		json.NewEncoder(w).Encode(map[string]interface{}{"state": state})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test")

	result, err := client.handleMove(context.Background(), toolRequest("move", map[string]interface{}{
		"game_id":   "g1",
		"direction": "down",
	}))
	if err != nil {
		t.Fatalf("handleMove failed: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "Your paddle: y=282") {
		t.Errorf("Expected paddle position in result, got: %s", text)
	}

	result, _ = client.handleMove(context.Background(), toolRequest("move", map[string]interface{}{}))
	if !result.IsError {
		t.Error("Expected error result without game_id")
	}
}

func TestClient_handleSaveScore_RejectsFractionalScore(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "test")

	result, err := client.handleSaveScore(context.Background(), toolRequest("save_score", map[string]interface{}{
		"username": "alice",
		"score":    2.5,
	}))
	if err != nil {
		t.Fatalf("handleSaveScore failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected error result for fractional score")
	}
}

func TestFormatGameState(t *testing.T) {
	state := engine.NewGameState()
	state.PlayerScore = 2
	state.ComputerScore = 3
	state.BallVX = -engine.BallSpeed

	result := formatGameState(&state)

	expected := []string{
		"Score: you 2 - 3 computer",
		"Your paddle: y=250",
		"Ball: (392, 292) moving down-left",
	}
	for _, want := range expected {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in result, got: %s", want, result)
		}
	}
	if strings.Contains(result, "GAME OVER") {
		t.Error("Expected no game over banner for a running game")
	}
}

func TestFormatGameState_GameOver(t *testing.T) {
	tests := []struct {
		winner engine.Winner
		want   string
	}{
		{engine.PlayerWinner, "You win"},
		{engine.ComputerWinner, "computer wins"},
	}

	for _, tt := range tests {
		t.Run(string(tt.winner), func(t *testing.T) {
			state := engine.NewGameState()
			state.GameOver = true
			state.Winner = tt.winner

			if result := formatGameState(&state); !strings.Contains(result, tt.want) {
				t.Errorf("Expected %q in result, got: %s", tt.want, result)
			}
		})
	}
}

func TestFormatHighScores(t *testing.T) {
	if got := formatHighScores(nil); got != "No scores recorded yet." {
		t.Errorf("Unexpected empty leaderboard text %q", got)
	}

	got := formatHighScores([]scores.Entry{
		{Username: "alice", Score: 5, Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	})
	if !strings.Contains(got, "alice") || !strings.Contains(got, "2026-03-01") {
		t.Errorf("Unexpected leaderboard %q", got)
	}
}

func TestClient_handleGameRules(t *testing.T) {
	client := NewClient("http://localhost:5000", "test")

	result, err := client.handleGameRules(context.Background(), toolRequest("game_rules", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameRules failed: %v", err)
	}

	text := resultText(t, result)
	expected := []string{
		"800x600",
		"shifts your paddle 32px",
		"First to 5 points wins",
		"probability 70%",
	}
	for _, want := range expected {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in rules, got: %s", want, text)
		}
	}
}

func TestClient_Handler_ToolsList(t *testing.T) {
	client := NewClient("http://localhost:5000", "test")

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	w := httptest.NewRecorder()
	client.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	for _, tool := range []string{"start_game", "move", "game_state", "peek_session", "save_score", "high_scores", "game_rules"} {
		if !strings.Contains(w.Body.String(), `"`+tool+`"`) {
			t.Errorf("Expected tool %s in list, got %s", tool, w.Body.String())
		}
	}
}

// Drives the tools against a real API server.
func TestClient_Integration(t *testing.T) {
	manager := session.NewManager(session.WithSourceFactory(func() (engine.RandomSource, error) {
		return engine.NewSequenceSource(0.99), nil
	}))
	svc := service.NewGameService(manager, scores.NewMemoryStore(), nil)
	server := httptest.NewServer(api.NewServer(svc))
	defer server.Close()

	client := NewClient(server.URL, "test")
	ctx := context.Background()

	result, err := client.handleStartGame(ctx, toolRequest("start_game", nil))
	if err != nil {
		t.Fatalf("start_game failed: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("start_game returned error: %s", text)
	}

	sessions := manager.List()
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}
	gameID := sessions[0].ID
	if !strings.Contains(text, gameID) {
		t.Errorf("Expected game id in result, got: %s", text)
	}

	result, _ = client.handleMove(ctx, toolRequest("move", map[string]interface{}{"game_id": gameID, "direction": "up"}))
	if text := resultText(t, result); !strings.Contains(text, "Your paddle: y=218") {
		t.Errorf("Expected paddle at 218, got: %s", text)
	}

	result, _ = client.handleGameState(ctx, toolRequest("game_state", map[string]interface{}{"game_id": gameID}))
	if text := resultText(t, result); !strings.Contains(text, "Ball: (416, 316)") {
		t.Errorf("Expected ball advanced by poll, got: %s", text)
	}

	result, _ = client.handlePeekSession(ctx, toolRequest("peek_session", map[string]interface{}{"game_id": gameID}))
	if text := resultText(t, result); !strings.Contains(text, "Ball: (416, 316)") {
		t.Errorf("Expected peek to leave the ball in place, got: %s", text)
	}

	result, _ = client.handleGameState(ctx, toolRequest("game_state", map[string]interface{}{"game_id": "missing"}))
	if !result.IsError || !strings.Contains(resultText(t, result), "Invalid game_id") {
		t.Error("Expected Invalid game_id for unknown game")
	}

	result, _ = client.handleSaveScore(ctx, toolRequest("save_score", map[string]interface{}{"username": "alice", "score": float64(5)}))
	if result.IsError {
		t.Fatalf("save_score failed: %s", resultText(t, result))
	}

	result, _ = client.handleHighScores(ctx, toolRequest("high_scores", map[string]interface{}{"limit": float64(5)}))
	if text := resultText(t, result); !strings.Contains(text, "alice") {
		t.Errorf("Expected alice on the leaderboard, got: %s", text)
	}
}
