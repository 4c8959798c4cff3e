package engine

// clampPaddle keeps a paddle offset inside the field.
func clampPaddle(y int) int {
	if y < 0 {
		return 0
	}
	if y > MaxPaddleY {
		return MaxPaddleY
	}
	return y
}

// ParseDirection maps a wire value to a Direction. Unknown values are
// returned as-is and treated as no-ops by MovePlayer.
func ParseDirection(s string) Direction {
	return Direction(s)
}

// Valid reports whether d is one of the recognized directions.
func (d Direction) Valid() bool {
	return d == Up || d == Down
}

// MovePlayer moves the player paddle one step. Unrecognized directions leave
// the paddle where it is. A finished game is not changed.
func (gs *GameState) MovePlayer(direction Direction) {
	if gs.GameOver {
		return
	}

	switch direction {
	case Up:
		gs.PlayerY -= PaddleStep
	case Down:
		gs.PlayerY += PaddleStep
	}
	gs.PlayerY = clampPaddle(gs.PlayerY)
}

// StepOpponent moves the computer paddle toward the ball with probability
// OpponentReaction. Exactly one draw is taken from rng per call on a live game.
func (gs *GameState) StepOpponent(rng RandomSource) {
	if gs.GameOver {
		return
	}

	if rng.Float64() < OpponentReaction {
		center := gs.ComputerY + PaddleHeight/2
		switch {
		case center < gs.BallY:
			gs.ComputerY += PaddleStep
		case center > gs.BallY:
			gs.ComputerY -= PaddleStep
		}
	}
	gs.ComputerY = clampPaddle(gs.ComputerY)
}
