package engine

import "errors"

// ErrNilRandomSource is returned when an engine is built without a RandomSource.
var ErrNilRandomSource = errors.New("random source cannot be nil")

// Engine provides the operations a session runs against its game.
type Engine interface {
	GetState() GameState
	SetState(state GameState)
	Move(direction Direction) GameState
	Poll() GameState
	IsGameOver() bool
	Winner() Winner
}

// GameEngine implements Engine for a single game. It is not safe for
// concurrent use; callers serialize access per session.
type GameEngine struct {
	state GameState
	rng   RandomSource
}

// NewEngine creates an engine with a fresh game driven by rng.
func NewEngine(rng RandomSource) (*GameEngine, error) {
	if rng == nil {
		return nil, ErrNilRandomSource
	}
	return &GameEngine{
		state: NewGameState(),
		rng:   rng,
	}, nil
}

// GetState returns a copy of the current state.
func (e *GameEngine) GetState() GameState {
	return e.state
}

// SetState replaces the current state (used when restoring a session).
func (e *GameEngine) SetState(state GameState) {
	e.state = state
}

// Move applies a player command, lets the opponent react and advances one tick.
func (e *GameEngine) Move(direction Direction) GameState {
	e.state.MovePlayer(direction)
	e.state.StepOpponent(e.rng)
	e.state.Tick()
	return e.state
}

// Poll advances the opponent and the ball without player input. Polling is
// not read-only: every call moves the game forward one tick.
func (e *GameEngine) Poll() GameState {
	e.state.StepOpponent(e.rng)
	e.state.Tick()
	return e.state
}

// IsGameOver reports whether a side has reached WinScore.
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// Winner returns the winning side, or NoWinner while in progress.
func (e *GameEngine) Winner() Winner {
	return e.state.Winner
}

// Tick advances the ball one step and resolves bounces, scoring and the win
// check. A finished game is frozen.
func (gs *GameState) Tick() {
	if gs.GameOver {
		return
	}

	gs.BallX += gs.BallVX
	gs.BallY += gs.BallVY

	// Position is not clamped; an overshoot is corrected by the flipped
	// velocity on the next tick.
	if gs.BallY <= 0 || gs.BallY+BallSize >= FieldHeight {
		gs.BallVY = -gs.BallVY
	}

	if gs.BallX <= PaddleWidth && gs.ballOverlaps(gs.PlayerY) {
		gs.BallVX = BallSpeed
	}
	if gs.BallX+BallSize >= FieldWidth-PaddleWidth && gs.ballOverlaps(gs.ComputerY) {
		gs.BallVX = -BallSpeed
	}

	if gs.BallX < 0 {
		gs.ComputerScore++
		gs.ResetBall(1)
	}
	if gs.BallX > FieldWidth {
		gs.PlayerScore++
		gs.ResetBall(-1)
	}

	switch {
	case gs.PlayerScore >= WinScore:
		gs.GameOver = true
		gs.Winner = PlayerWinner
	case gs.ComputerScore >= WinScore:
		gs.GameOver = true
		gs.Winner = ComputerWinner
	}
}

// ResetBall re-centers the ball and serves it horizontally in direction
// (+1 right, -1 left), always moving down.
func (gs *GameState) ResetBall(direction int) {
	gs.BallX = (FieldWidth - BallSize) / 2
	gs.BallY = (FieldHeight - BallSize) / 2
	gs.BallVX = BallSpeed * direction
	gs.BallVY = BallSpeed
}

// ballOverlaps reports whether [BallY, BallY+BallSize) intersects the paddle
// span [paddleY, paddleY+PaddleHeight).
func (gs *GameState) ballOverlaps(paddleY int) bool {
	return paddleY < gs.BallY+BallSize && paddleY+PaddleHeight > gs.BallY
}
