package engine

import (
	"testing"
)

func newTestEngine(t *testing.T, draws ...float64) *GameEngine {
	t.Helper()
	engine, err := NewEngine(NewSequenceSource(draws...))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return engine
}

func TestNewEngine(t *testing.T) {
	engine := newTestEngine(t, 0.5)

	state := engine.GetState()
	if state.PlayerY != 250 || state.ComputerY != 250 {
		t.Errorf("Expected paddles at 250, got player=%d computer=%d", state.PlayerY, state.ComputerY)
	}
	if state.BallX != 392 || state.BallY != 292 {
		t.Errorf("Expected ball at (392,292), got (%d,%d)", state.BallX, state.BallY)
	}
	if state.BallVX != BallSpeed || state.BallVY != BallSpeed {
		t.Errorf("Expected ball velocity (%d,%d), got (%d,%d)", BallSpeed, BallSpeed, state.BallVX, state.BallVY)
	}
	if state.PlayerScore != 0 || state.ComputerScore != 0 {
		t.Errorf("Expected zero scores, got %d-%d", state.PlayerScore, state.ComputerScore)
	}
	if engine.IsGameOver() {
		t.Error("Expected game not to be over initially")
	}
	if engine.Winner() != NoWinner {
		t.Errorf("Expected no winner, got %q", engine.Winner())
	}
	if state.Status() != InProgress {
		t.Errorf("Expected status in_progress, got %s", state.Status())
	}
}

func TestNewEngine_NilRandomSource(t *testing.T) {
	if _, err := NewEngine(nil); err != ErrNilRandomSource {
		t.Errorf("Expected ErrNilRandomSource, got %v", err)
	}
}

func TestTick_BallIntegration(t *testing.T) {
	state := NewGameState()
	state.Tick()

	if state.BallX != 404 || state.BallY != 304 {
		t.Errorf("Expected ball at (404,304), got (%d,%d)", state.BallX, state.BallY)
	}
}

func TestTick_WallBounce(t *testing.T) {
	tests := []struct {
		name       string
		ballY      int
		ballVY     int
		expectedY  int
		expectedVY int
	}{
		{"top wall at zero", 0, -12, -12, 12},
		{"top wall overshoot", 5, -12, -7, 12},
		{"bottom wall", 580, 12, 592, -12},
		{"bottom wall exact", 572, 12, 584, -12},
		{"no bounce mid field", 300, 12, 312, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewGameState()
			state.BallY = tt.ballY
			state.BallVY = tt.ballVY
			state.Tick()

			if state.BallY != tt.expectedY {
				t.Errorf("Expected ballY %d (no clamping), got %d", tt.expectedY, state.BallY)
			}
			if state.BallVY != tt.expectedVY {
				t.Errorf("Expected ballVY %d, got %d", tt.expectedVY, state.BallVY)
			}
		})
	}
}

func TestTick_PlayerPaddleCollision(t *testing.T) {
	t.Run("ball overlapping paddle bounces right", func(t *testing.T) {
		state := NewGameState()
		state.PlayerY = 250
		state.BallX = 20
		state.BallY = 280
		state.BallVX = -12
		state.Tick()

		if state.BallVX != BallSpeed {
			t.Errorf("Expected ballVX %d, got %d", BallSpeed, state.BallVX)
		}
		if state.BallX != 8 {
			t.Errorf("Expected ballX 8, got %d", state.BallX)
		}
	})

	t.Run("ball above paddle passes", func(t *testing.T) {
		state := NewGameState()
		state.PlayerY = 250
		state.BallX = 20
		state.BallY = 210
		state.BallVX = -12
		state.BallVY = 12
		state.Tick()

		// ball span [222,238) ends above paddle top 250
		if state.BallVX != -BallSpeed {
			t.Errorf("Expected ballVX to stay %d, got %d", -BallSpeed, state.BallVX)
		}
	})

	t.Run("touching edge does not overlap", func(t *testing.T) {
		state := NewGameState()
		state.PlayerY = 250
		state.BallX = 20
		state.BallY = 222
		state.BallVX = -12
		state.BallVY = 12
		state.Tick()

		// ball span [234,250) is adjacent to [250,350)
		if state.BallVX != -BallSpeed {
			t.Errorf("Expected no collision at exact edge, got ballVX %d", state.BallVX)
		}
	})
}

func TestTick_ComputerPaddleCollision(t *testing.T) {
	state := NewGameState()
	state.ComputerY = 250
	state.BallX = 760
	state.BallY = 280
	state.BallVX = 12
	state.Tick()

	if state.BallVX != -BallSpeed {
		t.Errorf("Expected ballVX %d, got %d", -BallSpeed, state.BallVX)
	}
}

func TestTick_ComputerScores(t *testing.T) {
	state := NewGameState()
	state.PlayerY = 0
	state.BallX = 5
	state.BallY = 400
	state.BallVX = -12
	state.Tick()

	if state.ComputerScore != 1 {
		t.Fatalf("Expected computer score 1, got %d", state.ComputerScore)
	}
	if state.BallX != 392 || state.BallY != 292 {
		t.Errorf("Expected ball re-centered, got (%d,%d)", state.BallX, state.BallY)
	}
	if state.BallVX != BallSpeed || state.BallVY != BallSpeed {
		t.Errorf("Expected reset velocity (12,12), got (%d,%d)", state.BallVX, state.BallVY)
	}
	if state.GameOver {
		t.Error("Expected game to continue")
	}
}

func TestTick_PlayerWins(t *testing.T) {
	state := NewGameState()
	state.PlayerScore = WinScore - 1
	state.BallX = 801
	state.Tick()

	if state.PlayerScore != WinScore {
		t.Errorf("Expected player score %d, got %d", WinScore, state.PlayerScore)
	}
	if !state.GameOver || state.Winner != PlayerWinner {
		t.Errorf("Expected finished with player winner, got game_over=%v winner=%q", state.GameOver, state.Winner)
	}
	if state.Status() != Finished {
		t.Errorf("Expected status finished, got %s", state.Status())
	}
	if state.BallX != 392 || state.BallY != 292 {
		t.Errorf("Expected ball re-centered, got (%d,%d)", state.BallX, state.BallY)
	}
	if state.BallVX != -BallSpeed {
		t.Errorf("Expected ballVX %d, got %d", -BallSpeed, state.BallVX)
	}
}

func TestTick_ComputerWins(t *testing.T) {
	state := NewGameState()
	state.ComputerScore = WinScore - 1
	state.PlayerY = 0
	state.BallX = -1
	state.BallY = 400
	state.BallVX = -12
	state.Tick()

	if !state.GameOver || state.Winner != ComputerWinner {
		t.Errorf("Expected computer to win, got game_over=%v winner=%q", state.GameOver, state.Winner)
	}
}

func TestTick_FinishedGameIsFrozen(t *testing.T) {
	state := NewGameState()
	state.PlayerScore = WinScore
	state.GameOver = true
	state.Winner = PlayerWinner
	state.BallX = 100
	before := state

	state.Tick()
	state.MovePlayer(Down)
	state.StepOpponent(NewSequenceSource(0))

	if state != before {
		t.Errorf("Expected frozen state, got %+v want %+v", state, before)
	}
}

func TestEngine_Move(t *testing.T) {
	engine := newTestEngine(t, 0.9)

	state := engine.Move(Up)
	if state.PlayerY != 218 {
		t.Errorf("Expected playerY 218, got %d", state.PlayerY)
	}
	if state.ComputerY != 250 {
		t.Errorf("Expected computer to hold at 250 on a 0.9 draw, got %d", state.ComputerY)
	}
	if state.BallX != 404 {
		t.Errorf("Expected one tick of ball movement, got ballX %d", state.BallX)
	}
	if engine.GetState() != state {
		t.Error("Expected returned state to match engine state")
	}
}

func TestEngine_MoveClampsAtTop(t *testing.T) {
	engine := newTestEngine(t, 0.9)

	var state GameState
	for i := 0; i < 20; i++ {
		state = engine.Move(Up)
	}
	if state.PlayerY != 0 {
		t.Errorf("Expected playerY clamped to 0, got %d", state.PlayerY)
	}
}

func TestEngine_PollAdvances(t *testing.T) {
	engine := newTestEngine(t, 0.1)

	first := engine.Poll()
	second := engine.Poll()

	if first.BallX != 404 || second.BallX != 416 {
		t.Errorf("Expected each poll to tick, got ballX %d then %d", first.BallX, second.BallX)
	}
	if first.PlayerY != 250 || second.PlayerY != 250 {
		t.Error("Expected poll to leave the player paddle alone")
	}
	if first.ComputerY != 218 {
		t.Errorf("Expected computer to chase ball on a 0.1 draw, got %d", first.ComputerY)
	}
}

func TestEngine_SetState(t *testing.T) {
	engine := newTestEngine(t, 0.5)

	restored := NewGameState()
	restored.PlayerScore = 3
	restored.BallX = 100
	engine.SetState(restored)

	if engine.GetState() != restored {
		t.Errorf("Expected restored state, got %+v", engine.GetState())
	}
}
