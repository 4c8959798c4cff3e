package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/pong-arena/game/engine"
	"github.com/wricardo/pong-arena/game/scores"
	"github.com/wricardo/pong-arena/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL, version string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer(version)
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer(version string) {
	c.mcpServer = server.NewMCPServer(
		"Pong Arena",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Pong Arena - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Return the ball past the computer paddle. First to 5 points wins.

AVAILABLE TOOLS:
- start_game: Start a new game and get its game_id
- move: Move your paddle up or down; the game advances one tick
- game_state: Advance the game one tick without moving and read the state
- peek_session: Read a game's state without advancing it
- save_score: Record a score on the leaderboard
- high_scores: Show the leaderboard
- game_rules: Field geometry and rules

NOTE: Every move and game_state call advances the ball. Use peek_session to look without time passing.`),
	)

	c.registerTools()
}

func gameIDSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Game ID returned by start_game",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start a new game. Returns the game_id used by the other tools",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move your paddle one step and advance the game one tick",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDSchema(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down"},
					"description": "Direction to move the paddle",
				},
			},
			Required: []string{"game_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Advance the game one tick without moving and return the state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDSchema(),
			},
			Required: []string{"game_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "peek_session",
		Description: "Read a game's state without advancing it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDSchema(),
			},
			Required: []string{"game_id"},
		},
	}, c.handlePeekSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "save_score",
		Description: "Record a score on the leaderboard",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username": map[string]interface{}{
					"type":        "string",
					"description": "Name shown on the leaderboard (max 64 characters)",
				},
				"score": map[string]interface{}{
					"type":        "integer",
					"minimum":     0,
					"description": "Points scored",
				},
			},
			Required: []string{"username", "score"},
		},
	}, c.handleSaveScore)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "high_scores",
		Description: "Show the leaderboard, highest score first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"minimum":     1,
					"maximum":     100,
					"description": "Number of entries (default 10)",
				},
			},
		},
	}, c.handleHighScores)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Describe the field geometry, controls and scoring rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Handler serves single JSON-RPC messages over HTTP POST.
func (c *Client) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func stringArg(request mcp.CallToolRequest, name string) string {
	value, _ := request.GetArguments()[name].(string)
	return value
}

// intArg reads an integer argument. JSON numbers arrive as float64.
func intArg(request mcp.CallToolRequest, name string) (int, bool) {
	switch v := request.GetArguments()[name].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var started service.StartResult
	if err := c.apiCall(ctx, http.MethodPost, "/start", map[string]string{}, &started); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Started game: %s\n\n%s", started.GameID, formatGameState(&started.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID := stringArg(request, "game_id")
	direction := stringArg(request, "direction")
	if gameID == "" {
		return mcp.NewToolResultError("game_id is required"), nil
	}

	body := map[string]string{
		"game_id":   gameID,
		"direction": direction,
	}
	var response struct {
		State engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, http.MethodPost, "/move", body, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&response.State)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID := stringArg(request, "game_id")
	if gameID == "" {
		return mcp.NewToolResultError("game_id is required"), nil
	}

	var response struct {
		State engine.GameState `json:"state"`
	}
	path := "/state?game_id=" + url.QueryEscape(gameID)
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&response.State)), nil
}

func (c *Client) handlePeekSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID := stringArg(request, "game_id")
	if gameID == "" {
		return mcp.NewToolResultError("game_id is required"), nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, "/sessions/"+url.PathEscape(gameID), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleSaveScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username := stringArg(request, "username")
	score, ok := intArg(request, "score")
	if !ok {
		return mcp.NewToolResultError("score must be an integer"), nil
	}

	body := map[string]interface{}{
		"username": username,
		"score":    score,
	}
	if err := c.apiCall(ctx, http.MethodPost, "/save_score", body, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Saved score %d for %s", score, strings.TrimSpace(username))), nil
}

func (c *Client) handleHighScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/high_scores"
	if limit, ok := intArg(request, "limit"); ok {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	var response struct {
		HighScores []scores.Entry `json:"high_scores"`
	}
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHighScores(response.HighScores)), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules := fmt.Sprintf(`# Pong Arena Rules

## Field
- %dx%d pixels, origin at the top-left corner; y grows downward
- Your paddle is on the left edge, the computer's on the right
- Paddles are %dpx tall and %dpx wide; the ball is a %dpx square

## Controls
- move "up" or "down" shifts your paddle %dpx, clamped to the field
- Any other direction leaves the paddle in place but the game still advances

## Time
- Every move and every game_state call advances the game exactly one tick
- The ball travels %dpx horizontally and vertically per tick
- peek_session reads the state without advancing it

## Scoring
- Ball past the left edge: the computer scores
- Ball past the right edge: you score
- After a point the ball restarts from the center
- First to %d points wins; the game is then frozen

## Opponent
- On each tick the computer reacts with probability %.0f%%, stepping toward the ball
`,
		engine.FieldWidth, engine.FieldHeight,
		engine.PaddleHeight, engine.PaddleWidth, engine.BallSize,
		engine.PaddleStep,
		engine.BallSpeed,
		engine.WinScore,
		engine.OpponentReaction*100,
	)

	return mcp.NewToolResultText(rules), nil
}

// Formatting helpers

func formatGameState(state *engine.GameState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Score: you %d - %d computer\n", state.PlayerScore, state.ComputerScore)
	fmt.Fprintf(&b, "Your paddle: y=%d\n", state.PlayerY)
	fmt.Fprintf(&b, "Computer paddle: y=%d\n", state.ComputerY)
	fmt.Fprintf(&b, "Ball: (%d, %d) moving %s\n", state.BallX, state.BallY, describeVelocity(state.BallVX, state.BallVY))

	if state.GameOver {
		switch state.Winner {
		case engine.PlayerWinner:
			b.WriteString("\n🏆 GAME OVER - You win!\n")
		case engine.ComputerWinner:
			b.WriteString("\n💀 GAME OVER - The computer wins.\n")
		default:
			b.WriteString("\nGAME OVER\n")
		}
	}

	return b.String()
}

func describeVelocity(vx, vy int) string {
	horizontal := "right"
	if vx < 0 {
		horizontal = "left"
	}
	vertical := "down"
	if vy < 0 {
		vertical = "up"
	}
	return vertical + "-" + horizontal
}

func formatSessionInfo(info *service.SessionInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Game: %s\n", info.ID)
	fmt.Fprintf(&b, "Created: %s\n", info.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Last Accessed: %s\n\n", info.LastAccessedAt.Format(time.RFC3339))
	b.WriteString(formatGameState(&info.State))

	return b.String()
}

func formatHighScores(entries []scores.Entry) string {
	if len(entries) == 0 {
		return "No scores recorded yet."
	}

	var b strings.Builder
	b.WriteString("High Scores:\n")
	for i, entry := range entries {
		fmt.Fprintf(&b, "%2d. %-20s %3d  %s\n", i+1, entry.Username, entry.Score, entry.Date.Format("2006-01-02"))
	}
	return b.String()
}
