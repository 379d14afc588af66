package game

import "lukechampine.com/frand"

const bignum = 1<<63 - 2

// Zobrist hashes a board as the XOR of one random key per (cell, piece)
// placement. Keys are drawn once per process, so hashes are only comparable
// within a run.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	posTable [NumCells][NumPieces]uint64
}

var zobrist = NewZobrist()

func NewZobrist() *Zobrist {
	z := &Zobrist{}
	for i := range z.posTable {
		for j := range z.posTable[i] {
			z.posTable[i][j] = frand.Uint64n(bignum) + 1
		}
	}
	return z
}

func (z *Zobrist) Hash(b Board) StateHash {
	key := uint64(0)
	for i, p := range b {
		if p == NoPiece {
			continue
		}
		key ^= z.posTable[i][p.Index()]
	}
	return StateHash(key)
}

// AddPiece updates key for piece p being placed on cell c.
func (z *Zobrist) AddPiece(key StateHash, c Cell, p Piece) StateHash {
	return key ^ StateHash(z.posTable[c.Index()][p.Index()])
}
