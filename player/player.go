package player

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/exp/rand"

	"quarto/experiments/metrics"
	"quarto/game"
	"quarto/searcher"
)

var ErrNoMoves = errors.New("no legal moves")

// Agent decides moves for one side. updates lists the moves played since the
// agent was last asked, ending with the current state.
type Agent interface {
	FindMove(ctx context.Context, state game.State, updates []searcher.Segment) (game.Move, metrics.SearchMetric, error)
	// Reset drops anything kept from a previous game.
	Reset()
}

// MCTS plays the move chosen by a Monte Carlo tree search.
type MCTS struct {
	mcts *searcher.MCTS
}

func NewMCTS(options ...searcher.Option) *MCTS {
	return &MCTS{mcts: searcher.NewMCTS(options...)}
}

func (a *MCTS) FindMove(ctx context.Context, state game.State, updates []searcher.Segment) (game.Move, metrics.SearchMetric, error) {
	move, metric, err := a.mcts.FindNextMove(ctx, state, updates)
	if err != nil {
		return nil, metric, fmt.Errorf("mcts agent: %w", err)
	}
	return move, metric, nil
}

func (a *MCTS) Reset() {
	a.mcts.Reset()
}

// Random plays a uniformly random legal move.
type Random struct {
	rng *rand.Rand
}

func NewRandom(rng *rand.Rand) *Random {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Random{rng: rng}
}

func (a *Random) FindMove(ctx context.Context, state game.State, _ []searcher.Segment) (game.Move, metrics.SearchMetric, error) {
	if err := ctx.Err(); err != nil {
		return nil, metrics.SearchMetric{}, err
	}
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return nil, metrics.SearchMetric{}, ErrNoMoves
	}
	return moves[a.rng.Intn(len(moves))], metrics.SearchMetric{}, nil
}

func (a *Random) Reset() {}

// Scripted replays a fixed list of moves and records the updates it was
// handed. It fails once the script runs out.
type Scripted struct {
	Moves   []game.Move
	Updates [][]searcher.Segment
	next    int
}

func NewScripted(moves ...game.Move) *Scripted {
	return &Scripted{Moves: moves}
}

func (a *Scripted) FindMove(_ context.Context, _ game.State, updates []searcher.Segment) (game.Move, metrics.SearchMetric, error) {
	a.Updates = append(a.Updates, append([]searcher.Segment(nil), updates...))
	if a.next >= len(a.Moves) {
		return nil, metrics.SearchMetric{}, fmt.Errorf("script exhausted after %d moves", len(a.Moves))
	}
	move := a.Moves[a.next]
	a.next++
	return move, metrics.SearchMetric{}, nil
}

func (a *Scripted) Reset() {
	a.next = 0
	a.Updates = nil
}
