package game

import "strings"

// Board is a value type: assigning or passing it copies all cells, so two
// states never alias the same grid.
type Board [NumCells]Piece

// lines lists the cell indices of the 4 rows, 4 columns and 2 diagonals.
var lines = func() [][BoardSize]int {
	var out [][BoardSize]int
	for r := 0; r < BoardSize; r++ {
		var row [BoardSize]int
		for c := 0; c < BoardSize; c++ {
			row[c] = r*BoardSize + c
		}
		out = append(out, row)
	}
	for c := 0; c < BoardSize; c++ {
		var col [BoardSize]int
		for r := 0; r < BoardSize; r++ {
			col[r] = r*BoardSize + c
		}
		out = append(out, col)
	}
	var diag, anti [BoardSize]int
	for i := 0; i < BoardSize; i++ {
		diag[i] = i*BoardSize + i
		anti[i] = (BoardSize-1-i)*BoardSize + i
	}
	return append(out, diag, anti)
}()

func (b Board) At(c Cell) Piece {
	return b[c.Index()]
}

func (b Board) Placed() []Piece {
	placed := make([]Piece, 0, NumCells)
	for _, p := range b {
		if p != NoPiece {
			placed = append(placed, p)
		}
	}
	return placed
}

// WinningLine reports the first line whose four pieces share an attribute.
// An empty cell ANDs to zero, so incomplete lines never win.
func (b Board) WinningLine() ([BoardSize]Cell, bool) {
	for _, line := range lines {
		shared := ^Piece(0)
		for _, i := range line {
			shared &= b[i]
		}
		if shared != 0 {
			var cells [BoardSize]Cell
			for k, i := range line {
				cells[k] = CellAt(i)
			}
			return cells, true
		}
	}
	return [BoardSize]Cell{}, false
}

func (b Board) String() string {
	var sb strings.Builder
	sb.WriteString("   a    b    c    d\n")
	for r := 0; r < BoardSize; r++ {
		sb.WriteByte('1' + byte(r))
		for c := 0; c < BoardSize; c++ {
			sb.WriteByte(' ')
			sb.WriteString(b[r*BoardSize+c].String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
