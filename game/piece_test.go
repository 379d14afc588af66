package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllPieces(t *testing.T) {
	pieces := AllPieces()
	require.Len(t, pieces, NumPieces)

	seen := map[Piece]bool{}
	for i, p := range pieces {
		require.True(t, p.Valid(), "Piece %v should carry one value per attribute", p)
		require.False(t, seen[p], "Piece %v should be unique", p)
		require.Equal(t, i, p.Index(), "Index should invert NewPiece")
		seen[p] = true
	}
}

func TestNewPiece(t *testing.T) {
	require.Equal(t, Dark|Short|Hollow|Circle, NewPiece(0))
	require.Equal(t, Light|Short|Hollow|Circle, NewPiece(1))
	require.Equal(t, Light|Tall|Flat|Square, NewPiece(15))
}

func TestPieceShares(t *testing.T) {
	require.True(t, NewPiece(1).Shares(NewPiece(3)), "Both pieces are light")
	require.False(t, NewPiece(0).Shares(NewPiece(15)), "Opposite pieces share nothing")
	require.True(t, NewPiece(6).Has(Tall|Flat))
}

func TestParsePiece(t *testing.T) {
	t.Run("round trips the letter code", func(t *testing.T) {
		for _, p := range AllPieces() {
			got, err := ParsePiece(p.String())
			require.NoError(t, err)
			require.Equal(t, p, got)
		}
	})

	t.Run("accepts lower case and numbers", func(t *testing.T) {
		got, err := ParsePiece("ltfq")
		require.NoError(t, err)
		require.Equal(t, NewPiece(15), got)

		got, err = ParsePiece("5")
		require.NoError(t, err)
		require.Equal(t, NewPiece(5), got)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		for _, in := range []string{"", "16", "-1", "LTF", "LTFX", "XTFQ"} {
			_, err := ParsePiece(in)
			require.Error(t, err, "input %q", in)
		}
	})
}

func TestParseCell(t *testing.T) {
	got, err := ParseCell("a1")
	require.NoError(t, err)
	require.Equal(t, Cell{Row: 0, Col: 0}, got)

	got, err = ParseCell("D3")
	require.NoError(t, err)
	require.Equal(t, Cell{Row: 2, Col: 3}, got)

	got, err = ParseCell("3, 1")
	require.NoError(t, err)
	require.Equal(t, Cell{Row: 3, Col: 1}, got)
	require.Equal(t, "b4", got.String())

	for _, in := range []string{"", "e1", "a5", "a0", "4,0", "x,1", "a"} {
		_, err := ParseCell(in)
		require.Error(t, err, "input %q", in)
	}

	// Numbers outside int8 must not wrap onto a real cell.
	for _, in := range []string{"256,0", "0,-256", "-1,0", "0,260", "-255,1"} {
		got, err := ParseCell(in)
		require.Error(t, err, "input %q", in)
		require.Equal(t, Cell{}, got)
	}
}
