package engine

import (
	"context"
	"errors"

	"quarto/experiments/metrics"
	"quarto/game"
)

// MaxMoves bounds a game: 16 piece choices and 16 placements.
const MaxMoves = 2 * game.NumPieces

var ErrIllegalMove = errors.New("illegal move")

type Engine interface {
	// Run plays a game till there's a winner, a draw or an error
	Run(ctx context.Context) (winner game.Player, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
