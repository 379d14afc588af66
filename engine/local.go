package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"quarto/experiments/metrics"
	"quarto/game"
	"quarto/player"
	"quarto/searcher"
)

type LocalEngine struct {
	State  game.State
	Agents [game.NumPlayers]player.Agent
}

// NewLocalEngine drives state with one agent per player; agents[i] plays for
// game.Player(i).
func NewLocalEngine(state game.State, agents ...player.Agent) *LocalEngine {
	if len(agents) != game.NumPlayers {
		panic("number of agents does not match number of players")
	}
	e := &LocalEngine{State: state}
	copy(e.Agents[:], agents)
	return e
}

// Run executes the game loop until the game is finished. Every agent is
// handed the moves played since it was last asked, so searchers can reuse
// their trees.
func (e *LocalEngine) Run(ctx context.Context) (game.Player, metrics.GameMetric, []metrics.MoveMetric, error) {
	var updates [game.NumPlayers][]searcher.Segment

	gameMetric := metrics.GameMetric{
		StartingPlayer: e.State.Player(),
		Winner:         game.NoPlayer,
		StartTime:      time.Now(),
	}
	log.Info().Msgf("player %d is starting", e.State.Player())

	var moveMetrics []metrics.MoveMetric
	step := 1
	for !e.State.Finished() && step <= MaxMoves {
		current := e.State.Player()

		move, searchMetric, err := e.Agents[current].FindMove(ctx, e.State, updates[current])
		if err != nil {
			return game.NoPlayer, e.complete(gameMetric, step-1), moveMetrics, fmt.Errorf("player %d at move %d: %w", current, step, err)
		}
		updates[current] = nil
		if move == nil || !e.State.IsLegal(move) {
			return game.NoPlayer, e.complete(gameMetric, step-1), moveMetrics, fmt.Errorf("%w: player %d played %v in phase %v", ErrIllegalMove, current, move, e.State.Phase())
		}

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       current,
			Move:         move.String(),
			SearchMetric: searchMetric,
		})
		log.Debug().Int("step", step).Int("player", int(current)).Str("move", move.String()).Msg("move")

		e.State = e.State.Play(move)
		u := searcher.Segment{Move: move, StateHash: e.State.Hash()}
		for i := range updates {
			updates[i] = append(updates[i], u)
		}
		step++
	}

	gameMetric = e.complete(gameMetric, step-1)
	if winner, ok := e.State.Winner(); ok {
		gameMetric.Winner = winner
		log.Info().Msgf("game ended after %d moves with winner: player %d", gameMetric.TotalMoves, winner)
	} else {
		log.Info().Msgf("game ended after %d moves in a draw", gameMetric.TotalMoves)
	}
	return gameMetric.Winner, gameMetric, moveMetrics, nil
}

func (e *LocalEngine) complete(gameMetric metrics.GameMetric, moves int) metrics.GameMetric {
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = moves
	return gameMetric
}
