// Command analyze plays batches of headless games against the computer
// opponent and summarizes how each player strategy fares. It is useful for
// checking that a change to the opponent or the physics keeps games winnable
// and finite.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/pong-arena/game/engine"
)

// Strategy picks the player's command for the next tick. An empty
// direction means the player only polls.
type Strategy func(state engine.GameState, rng engine.RandomSource) engine.Direction

var strategies = map[string]Strategy{
	"idle":   idle,
	"track":  track,
	"random": random,
}

// strategyOrder keeps report rows stable.
var strategyOrder = []string{"idle", "random", "track"}

func idle(engine.GameState, engine.RandomSource) engine.Direction {
	return ""
}

// track keeps the paddle centered on the ball.
func track(state engine.GameState, _ engine.RandomSource) engine.Direction {
	paddle := state.PlayerY + engine.PaddleHeight/2
	ball := state.BallY + engine.BallSize/2
	switch {
	case ball < paddle-engine.PaddleStep/2:
		return engine.Up
	case ball > paddle+engine.PaddleStep/2:
		return engine.Down
	}
	return ""
}

func random(_ engine.GameState, rng engine.RandomSource) engine.Direction {
	switch r := rng.Float64(); {
	case r < 1.0/3:
		return engine.Up
	case r < 2.0/3:
		return engine.Down
	}
	return ""
}

// Summary aggregates the outcome of a batch of games.
type Summary struct {
	Strategy       string
	Games          int
	PlayerWins     int
	ComputerWins   int
	Unfinished     int
	TotalTicks     int
	PlayerPoints   int
	ComputerPoints int
}

// AvgTicks is the mean game length in ticks.
func (s Summary) AvgTicks() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.TotalTicks) / float64(s.Games)
}

// WinRate is the fraction of games the player won.
func (s Summary) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.PlayerWins) / float64(s.Games)
}

// playGame runs one game to completion or maxTicks and returns the final
// state and the number of ticks played.
func playGame(strategy Strategy, seed uint64, maxTicks int) (engine.GameState, int, error) {
	game, err := engine.NewEngine(engine.NewSeededSource(seed))
	if err != nil {
		return engine.GameState{}, 0, err
	}
	player := engine.NewSeededSource(^seed)

	state := game.GetState()
	ticks := 0
	for !state.GameOver && ticks < maxTicks {
		if direction := strategy(state, player); direction != "" {
			state = game.Move(direction)
		} else {
			state = game.Poll()
		}
		ticks++
	}
	return state, ticks, nil
}

// simulate plays games for one strategy. Game i uses seed+i so runs are
// reproducible.
func simulate(ctx context.Context, name string, games int, seed uint64, maxTicks int) (Summary, error) {
	strategy, ok := strategies[name]
	if !ok {
		return Summary{}, fmt.Errorf("unknown strategy %q", name)
	}

	summary := Summary{Strategy: name, Games: games}
	for i := 0; i < games; i++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		state, ticks, err := playGame(strategy, seed+uint64(i), maxTicks)
		if err != nil {
			return summary, err
		}

		summary.TotalTicks += ticks
		summary.PlayerPoints += state.PlayerScore
		summary.ComputerPoints += state.ComputerScore
		switch state.Winner {
		case engine.PlayerWinner:
			summary.PlayerWins++
		case engine.ComputerWinner:
			summary.ComputerWins++
		default:
			summary.Unfinished++
		}
	}
	return summary, nil
}

// simulateAll runs each named strategy concurrently and returns the
// summaries in the order given.
func simulateAll(ctx context.Context, names []string, games int, seed uint64, maxTicks int) ([]Summary, error) {
	summaries := make([]Summary, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			summary, err := simulate(gctx, name, games, seed, maxTicks)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func printReport(w io.Writer, summaries []Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tGAMES\tWON\tLOST\tUNFINISHED\tWIN RATE\tAVG TICKS\tPOINTS FOR\tPOINTS AGAINST")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.1f%%\t%.0f\t%d\t%d\n",
			s.Strategy, s.Games, s.PlayerWins, s.ComputerWins, s.Unfinished,
			s.WinRate()*100, s.AvgTicks(), s.PlayerPoints, s.ComputerPoints)
	}
	tw.Flush()
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Simulate headless games against the computer opponent",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "games", Value: 100, Usage: "Games per strategy"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "Seed of the first game"},
			&cli.IntFlag{Name: "max-ticks", Value: 50000, Usage: "Stop a game after this many ticks"},
			&cli.StringFlag{
				Name:  "strategy",
				Value: strings.Join(strategyOrder, ","),
				Usage: "Comma separated strategies: " + strings.Join(strategyOrder, ", "),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			games := int(cmd.Int("games"))
			maxTicks := int(cmd.Int("max-ticks"))
			if games <= 0 || maxTicks <= 0 {
				return fmt.Errorf("games and max-ticks must be positive")
			}

			var names []string
			for _, name := range strings.Split(cmd.String("strategy"), ",") {
				if name = strings.TrimSpace(name); name != "" {
					names = append(names, name)
				}
			}

			summaries, err := simulateAll(ctx, names, games, uint64(cmd.Int("seed")), maxTicks)
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			if w == nil {
				w = os.Stdout
			}
			printReport(w, summaries)
			return nil
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
