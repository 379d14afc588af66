package player

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"quarto/game"
	"quarto/searcher"
)

func TestRandom(t *testing.T) {
	ctx := context.Background()

	t.Run("plays legal moves until the game ends", func(t *testing.T) {
		a := NewRandom(rand.New(rand.NewSource(3)))
		s := game.NewGameWithPlayer(0)
		for !s.Finished() {
			move, _, err := a.FindMove(ctx, s, nil)
			require.NoError(t, err)
			require.True(t, s.IsLegal(move), "Random agent played illegal move %v", move)
			s = s.Play(move)
		}
	})

	t.Run("has nothing to play on a finished game", func(t *testing.T) {
		a := NewRandom(nil)
		s := game.NewGameWithPlayer(0)
		for i, n := range []int{1, 3, 5, 7} {
			s = s.Play(game.NewPiece(n)).Play(game.CellAt(i))
		}
		require.True(t, s.Finished())

		_, _, err := a.FindMove(ctx, s, nil)
		require.ErrorIs(t, err, ErrNoMoves)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := NewRandom(nil).FindMove(cancelled, game.NewGameWithPlayer(0), nil)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestMCTS(t *testing.T) {
	ctx := context.Background()
	a := NewMCTS(searcher.WithEpisodes(100), searcher.WithSeed(4))
	s := game.NewGameWithPlayer(1)

	move, _, err := a.FindMove(ctx, s, nil)
	require.NoError(t, err)
	require.True(t, s.IsLegal(move))

	s = s.Play(move).Play(game.CellAt(0))
	require.Equal(t, game.ChoosePiece, s.Phase())
	move, _, err = a.FindMove(ctx, s, nil)
	require.NoError(t, err)
	require.True(t, s.IsLegal(move))

	a.Reset()
}

func TestScripted(t *testing.T) {
	ctx := context.Background()
	a := NewScripted(game.NewPiece(2), game.CellAt(5))
	segments := []searcher.Segment{{Move: game.NewPiece(1), StateHash: 1}}

	move, _, err := a.FindMove(ctx, game.State{}, segments)
	require.NoError(t, err)
	require.Equal(t, game.Move(game.NewPiece(2)), move)

	move, _, err = a.FindMove(ctx, game.State{}, nil)
	require.NoError(t, err)
	require.Equal(t, game.Move(game.CellAt(5)), move)

	_, _, err = a.FindMove(ctx, game.State{}, nil)
	require.Error(t, err)

	require.Len(t, a.Updates, 3)
	require.Equal(t, segments, a.Updates[0])

	a.Reset()
	move, _, err = a.FindMove(ctx, game.State{}, nil)
	require.NoError(t, err)
	require.Equal(t, game.Move(game.NewPiece(2)), move)
}
