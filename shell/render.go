package shell

import (
	"fmt"
	"strings"

	"quarto/game"
)

func (sc *ShellController) styled(p game.Piece, highlight bool) string {
	s := sc.out.String(p.String())
	switch {
	case p == game.NoPiece:
		s = s.Faint()
	case p.Has(game.Light):
		s = s.Foreground(sc.out.Color("11"))
	default:
		s = s.Foreground(sc.out.Color("12"))
	}
	if highlight {
		s = s.Bold().Reverse()
	}
	return s.String()
}

// render draws the board, the player to act and the pieces left.
func (sc *ShellController) render() string {
	board := sc.state.Board()
	line, won := board.WinningLine()
	winning := map[game.Cell]bool{}
	if won {
		for _, c := range line {
			winning[c] = true
		}
	}

	var sb strings.Builder
	sb.WriteString("   a    b    c    d\n")
	for r := 0; r < game.BoardSize; r++ {
		fmt.Fprintf(&sb, "%d", r+1)
		for c := 0; c < game.BoardSize; c++ {
			cell := game.Cell{Row: int8(r), Col: int8(c)}
			sb.WriteByte(' ')
			sb.WriteString(sc.styled(board.At(cell), winning[cell]))
		}
		sb.WriteByte('\n')
	}

	pool := sc.state.Pieces()
	codes := make([]string, len(pool))
	for i, p := range pool {
		codes[i] = sc.styled(p, false)
	}
	fmt.Fprintf(&sb, "pieces: %s\n", strings.Join(codes, " "))
	sb.WriteString(sc.status())
	return sb.String()
}

func (sc *ShellController) status() string {
	if sc.state.Finished() {
		winner, ok := sc.state.Winner()
		switch {
		case !ok:
			return "Draw: the board is full."
		case winner == sc.human:
			return "You win!"
		default:
			return "The AI wins."
		}
	}
	if sc.state.Player() != sc.human {
		return "The AI is thinking."
	}
	if sc.state.Phase() == game.ChoosePiece {
		return "Your turn: pick a piece for the AI."
	}
	p := sc.state.ChosenPiece()
	return fmt.Sprintf("Your turn: place %v (%s).", p, p.Describe())
}
