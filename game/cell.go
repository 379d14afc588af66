package game

import (
	"fmt"
	"strconv"
	"strings"
)

const BoardSize = 4

const NumCells = BoardSize * BoardSize

type Cell struct {
	Row int8
	Col int8
}

func CellAt(index int) Cell {
	return Cell{Row: int8(index / BoardSize), Col: int8(index % BoardSize)}
}

func AllCells() []Cell {
	cells := make([]Cell, NumCells)
	for i := range cells {
		cells[i] = CellAt(i)
	}
	return cells
}

func (c Cell) Index() int {
	return int(c.Row)*BoardSize + int(c.Col)
}

func (c Cell) Valid() bool {
	return c.Row >= 0 && c.Row < BoardSize && c.Col >= 0 && c.Col < BoardSize
}

func (c Cell) isMove() {}

// String uses a column letter and a 1-based row number: Cell{0, 0} is "a1".
func (c Cell) String() string {
	return fmt.Sprintf("%c%d", 'a'+rune(c.Col), c.Row+1)
}

// ParseCell accepts "a1" style names or a zero-based "row,col" pair.
func ParseCell(s string) (Cell, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	var c Cell
	if row, col, ok := strings.Cut(s, ","); ok {
		r, err := strconv.Atoi(strings.TrimSpace(row))
		if err != nil {
			return c, fmt.Errorf("invalid cell row %q: %w", row, err)
		}
		k, err := strconv.Atoi(strings.TrimSpace(col))
		if err != nil {
			return c, fmt.Errorf("invalid cell column %q: %w", col, err)
		}
		if r < 0 || r >= BoardSize || k < 0 || k >= BoardSize {
			return Cell{}, fmt.Errorf("cell %q is off the board", s)
		}
		c = Cell{Row: int8(r), Col: int8(k)}
	} else {
		if len(s) != 2 {
			return c, fmt.Errorf("invalid cell %q", s)
		}
		c = Cell{Row: int8(s[1] - '1'), Col: int8(s[0] - 'a')}
	}
	if !c.Valid() {
		return Cell{}, fmt.Errorf("cell %q is off the board", s)
	}
	return c, nil
}
