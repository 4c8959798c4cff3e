package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field geometry and pacing. These are fixed policy, not per-session state.
const (
	FieldWidth   = 800
	FieldHeight  = 600
	PaddleHeight = 100
	PaddleWidth  = 16
	BallSize     = 16
	PaddleStep   = 32
	BallSpeed    = 12
	WinScore     = 5

	// MaxPaddleY is the largest valid paddle offset.
	MaxPaddleY = FieldHeight - PaddleHeight

	// OpponentReaction is the probability that the opponent moves on a given step.
	OpponentReaction = 0.7
)

// Direction is a paddle move command.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Winner identifies which side won a finished game. The zero value means no winner yet.
type Winner string

const (
	NoWinner       Winner = ""
	PlayerWinner   Winner = "player"
	ComputerWinner Winner = "computer"
)

// MarshalJSON encodes NoWinner as null.
func (w Winner) MarshalJSON() ([]byte, error) {
	if w == NoWinner {
		return []byte("null"), nil
	}
	return json.Marshal(string(w))
}

// UnmarshalJSON accepts null, "player" and "computer".
func (w *Winner) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*w = NoWinner
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Winner(s) {
	case NoWinner, PlayerWinner, ComputerWinner:
		*w = Winner(s)
		return nil
	default:
		return fmt.Errorf("unknown winner %q", s)
	}
}

// Status is the lifecycle phase of a game.
type Status int

const (
	InProgress Status = iota
	Finished
)

func (s Status) String() string {
	if s == Finished {
		return "finished"
	}
	return "in_progress"
}

// GameState is the complete state of one game. The JSON shape is the public wire format.
type GameState struct {
	PlayerY       int    `json:"player_y"`
	ComputerY     int    `json:"computer_y"`
	BallX         int    `json:"ball_x"`
	BallY         int    `json:"ball_y"`
	BallVX        int    `json:"ball_vx"`
	BallVY        int    `json:"ball_vy"`
	PlayerScore   int    `json:"player_score"`
	ComputerScore int    `json:"computer_score"`
	GameOver      bool   `json:"game_over"`
	Winner        Winner `json:"winner"`
}

// NewGameState returns a fresh game with paddles and ball centered.
func NewGameState() GameState {
	return GameState{
		PlayerY:   MaxPaddleY / 2,
		ComputerY: MaxPaddleY / 2,
		BallX:     (FieldWidth - BallSize) / 2,
		BallY:     (FieldHeight - BallSize) / 2,
		BallVX:    BallSpeed,
		BallVY:    BallSpeed,
	}
}

// Status reports whether the game is still being played.
func (gs *GameState) Status() Status {
	if gs.GameOver {
		return Finished
	}
	return InProgress
}
