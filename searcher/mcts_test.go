package searcher

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"quarto/game"
)

// captureLogs routes the global logger into a buffer for the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	t.Cleanup(func() { log.Logger = previous })
	return &buf
}

// midgame places five pieces without completing a line and hands piece 0 to
// the player to act, who is then expected to place it.
func midgame(t *testing.T) game.State {
	t.Helper()
	s := game.NewGameWithPlayer(1)
	for i, n := range []int{12, 8, 2, 7, 5} {
		s = s.Play(game.NewPiece(n)).Play(game.CellAt(i))
	}
	s = s.Play(game.NewPiece(0))
	require.Equal(t, game.ChooseSpace, s.Phase())
	require.False(t, s.Finished())
	return s
}

// winInOne returns a state where the player to act holds a light piece and
// row 0 already has three light pieces.
func winInOne(t *testing.T) game.State {
	t.Helper()
	s := game.NewGameWithPlayer(0)
	for i, n := range []int{1, 3, 5} {
		s = s.Play(game.NewPiece(n)).Play(game.CellAt(i))
	}
	return s.Play(game.NewPiece(7))
}

func TestNewMCTS(t *testing.T) {
	t.Run("panics without a budget", func(t *testing.T) {
		require.Panics(t, func() { NewMCTS() })
		require.Panics(t, func() { NewMCTS(WithDuration(-time.Second), WithEpisodes(0)) })
	})

	t.Run("ignores out of range options", func(t *testing.T) {
		m := NewMCTS(WithEpisodes(1), WithExploitation(1.5), WithGoroutines(0))
		require.Equal(t, DefaultExploitation, m.exploitation)
		require.Equal(t, 1, m.goroutines)
	})
}

func TestFindNextMove(t *testing.T) {
	ctx := context.Background()

	t.Run("fails fast on a finished game", func(t *testing.T) {
		s := winInOne(t).Play(game.Cell{Row: 0, Col: 3})
		require.True(t, s.Finished())

		m := NewMCTS(WithDuration(time.Hour))
		start := time.Now()
		_, _, err := m.FindNextMove(ctx, s, nil)

		require.ErrorIs(t, err, ErrTerminalRoot)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("returns a legal move", func(t *testing.T) {
		s := midgame(t)
		m := NewMCTS(WithEpisodes(200), WithSeed(1), WithMetrics())

		move, metric, err := m.FindNextMove(ctx, s, nil)

		require.NoError(t, err)
		require.Contains(t, s.LegalMoves(), move)
		require.Equal(t, 200, metric.Episodes)
		require.Greater(t, metric.Nodes, 0)
		require.True(t, metric.IsTreeReset)
	})

	t.Run("is reproducible for a seed", func(t *testing.T) {
		s := midgame(t)
		a, _, err := NewMCTS(WithEpisodes(300), WithSeed(5)).FindNextMove(ctx, s, nil)
		require.NoError(t, err)
		b, _, err := NewMCTS(WithEpisodes(300), WithSeed(5)).FindNextMove(ctx, s, nil)
		require.NoError(t, err)
		require.Equal(t, a, b)
	})

	t.Run("takes an immediate win", func(t *testing.T) {
		s := winInOne(t)
		m := NewMCTS(WithEpisodes(3000), WithSeed(9))

		move, _, err := m.FindNextMove(ctx, s, nil)

		require.NoError(t, err)
		require.Equal(t, game.Move(game.Cell{Row: 0, Col: 3}), move)
	})

	t.Run("stops at the first exhausted budget", func(t *testing.T) {
		m := NewMCTS(WithEpisodes(50), WithDuration(time.Minute), WithMetrics())
		_, metric, err := m.FindNextMove(ctx, midgame(t), nil)
		require.NoError(t, err)
		require.Equal(t, 50, metric.Episodes)
	})

	t.Run("works with exact transpositions", func(t *testing.T) {
		s := midgame(t)
		m := NewMCTS(WithEpisodes(200), WithSeed(3), WithExactTranspositions())
		move, _, err := m.FindNextMove(ctx, s, nil)
		require.NoError(t, err)
		require.Contains(t, s.LegalMoves(), move)
	})

	t.Run("returns the context error when cancelled", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, _, err := NewMCTS(WithDuration(time.Second)).FindNextMove(cancelled, midgame(t), nil)
		require.ErrorIs(t, err, context.Canceled)

		_, _, err = NewMCTS(WithDuration(time.Second), WithGoroutines(3)).FindNextMove(cancelled, midgame(t), nil)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestFindNextMoveParallel(t *testing.T) {
	s := midgame(t)
	m := NewMCTS(WithEpisodes(100), WithGoroutines(4), WithSeed(8), WithMetrics())

	move, metric, err := m.FindNextMove(context.Background(), s, nil)

	require.NoError(t, err)
	require.Contains(t, s.LegalMoves(), move)
	require.Equal(t, 4, metric.Goroutines)
	require.Equal(t, 400, metric.Episodes)
}

func TestFindNextMoveTreeReuse(t *testing.T) {
	ctx := context.Background()
	m := NewMCTS(WithEpisodes(400), WithSeed(2), WithTreeReuse(), WithMetrics())
	s := midgame(t)

	move, metric, err := m.FindNextMove(ctx, s, nil)
	require.NoError(t, err)
	require.True(t, metric.IsTreeReset)

	// Placing keeps the same player to act, who now hands a piece over.
	next := s.Play(move)
	require.Equal(t, s.Player(), next.Player())
	before := m.tree.nodes[m.tree.root].visits

	_, metric, err = m.FindNextMove(ctx, next, []Segment{{Move: move, StateHash: next.Hash()}})
	require.NoError(t, err)
	require.False(t, metric.IsTreeReset, "Tree should be reused along the played move")
	require.Greater(t, m.tree.nodes[m.tree.root].visits, 400, "Reused root keeps its earlier visits")
	require.Greater(t, before, 0)

	other := midgame(t)
	_, metric, err = m.FindNextMove(ctx, other, []Segment{{Move: game.NewPiece(15), StateHash: 1}})
	require.NoError(t, err)
	require.True(t, metric.IsTreeReset, "Unknown lineage should start a fresh tree")

	m.Reset()
	require.Nil(t, m.tree)
}

func TestPlan(t *testing.T) {
	t.Run("returns a legal move within the budget", func(t *testing.T) {
		s := midgame(t)
		start := time.Now()

		move, err := Plan(s, 200*time.Millisecond, 0.5, rand.New(rand.NewSource(1)))

		require.NoError(t, err)
		require.Contains(t, s.LegalMoves(), move)
		require.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("handles piece choice too", func(t *testing.T) {
		s := midgame(t).Play(game.CellAt(10))
		require.Equal(t, game.ChoosePiece, s.Phase())

		move, err := Plan(s, 200*time.Millisecond, 0.5, rand.New(rand.NewSource(2)))

		require.NoError(t, err)
		require.Contains(t, s.LegalMoves(), move)
	})

	t.Run("fails fast on a finished game", func(t *testing.T) {
		s := winInOne(t).Play(game.Cell{Row: 0, Col: 3})
		_, err := Plan(s, time.Hour, 0.5, nil)
		require.ErrorIs(t, err, ErrTerminalRoot)
	})

	t.Run("reports a budget too small to expand anything", func(t *testing.T) {
		_, err := Plan(midgame(t), 0, 0.5, nil)
		require.ErrorIs(t, err, ErrNoChildren)
	})

	t.Run("rejects an exploitation probability outside [0, 1]", func(t *testing.T) {
		_, err := Plan(midgame(t), time.Second, 1.5, nil)
		require.Error(t, err)
	})
}

func TestSearchLog(t *testing.T) {
	ctx := context.Background()

	t.Run("leaves out counters nobody collected", func(t *testing.T) {
		logs := captureLogs(t)

		_, err := Plan(midgame(t), 50*time.Millisecond, 0.5, rand.New(rand.NewSource(1)))

		require.NoError(t, err)
		require.Contains(t, logs.String(), "search-complete")
		require.Contains(t, logs.String(), `"root-visits":`)
		require.NotContains(t, logs.String(), `"episodes":`)
		require.NotContains(t, logs.String(), `"nodes":`)
	})

	t.Run("reports collected counters", func(t *testing.T) {
		logs := captureLogs(t)

		_, _, err := NewMCTS(WithEpisodes(30), WithSeed(1), WithMetrics()).FindNextMove(ctx, midgame(t), nil)

		require.NoError(t, err)
		require.Contains(t, logs.String(), `"episodes":30`)
	})

	t.Run("warns that parallel search drops tree reuse", func(t *testing.T) {
		logs := captureLogs(t)

		NewMCTS(WithEpisodes(10), WithGoroutines(2), WithTreeReuse())
		require.Contains(t, logs.String(), "tree reuse is ignored by root-parallel search")

		logs.Reset()
		NewMCTS(WithEpisodes(10), WithTreeReuse())
		require.Empty(t, logs.String())
	})
}
