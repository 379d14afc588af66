package game

import (
	"testing"

	"github.com/matryer/is"
)

func TestZobristIncrementalMatchesFull(t *testing.T) {
	is := is.New(t)
	z := NewZobrist()

	var b Board
	key := z.Hash(b)
	for i, n := range drawLayout {
		c := CellAt(i)
		b[i] = NewPiece(n)
		key = z.AddPiece(key, c, b[i])
		is.Equal(key, z.Hash(b))
	}
}

func TestZobristOrderIndependent(t *testing.T) {
	is := is.New(t)
	z := NewZobrist()

	a := z.AddPiece(z.AddPiece(0, Cell{0, 0}, NewPiece(1)), Cell{2, 3}, NewPiece(9))
	b := z.AddPiece(z.AddPiece(0, Cell{2, 3}, NewPiece(9)), Cell{0, 0}, NewPiece(1))
	is.Equal(a, b)

	c := z.AddPiece(z.AddPiece(0, Cell{0, 0}, NewPiece(9)), Cell{2, 3}, NewPiece(1))
	is.True(a != c) // same pieces on swapped cells
}
