package game

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/exp/rand"

	"quarto/utils"
)

// State is an immutable Quarto position. Play never changes its receiver: it
// returns a new value and allocates fresh slices for whatever changed, so
// states can be shared freely between tree nodes and goroutines.
type State struct {
	board  Board
	pieces []Piece // Unplaced and not pending
	spaces []Cell  // Empty cells
	phase  Phase
	player Player // Player to act
	chosen Piece  // Piece handed to the player to act, NoPiece when none
	winner Player
	hash   StateHash
}

// NewGame starts a game with the first player drawn from rng.
func NewGame(rng *rand.Rand) State {
	return NewGameWithPlayer(Player(rng.Intn(NumPlayers)))
}

func NewGameWithPlayer(first Player) State {
	return State{
		pieces: AllPieces(),
		spaces: AllCells(),
		phase:  ChoosePiece,
		player: first,
		chosen: NoPiece,
		winner: NoPlayer,
		hash:   zobrist.Hash(Board{}),
	}
}

func (s State) Board() Board {
	return s.board
}

func (s State) Pieces() []Piece {
	return slices.Clone(s.pieces)
}

func (s State) Spaces() []Cell {
	return slices.Clone(s.spaces)
}

func (s State) Phase() Phase {
	return s.phase
}

func (s State) Player() Player {
	return s.player
}

func (s State) ChosenPiece() Piece {
	return s.chosen
}

func (s State) Finished() bool {
	return s.phase == Finished
}

// Winner returns the winning player; ok is false while the game is running
// and after a draw.
func (s State) Winner() (player Player, ok bool) {
	return s.winner, s.winner != NoPlayer
}

// Hash identifies the board layout only: states reached by different orders
// of the same placements hash equal, as do states that differ only by phase
// or pending piece.
func (s State) Hash() StateHash {
	return s.hash
}

func (s State) Key() StateKey {
	return StateKey{Hash: s.hash, Phase: s.phase, Chosen: s.chosen}
}

func (s State) LegalMoves() []Move {
	switch s.phase {
	case ChoosePiece:
		moves := make([]Move, len(s.pieces))
		for i, p := range s.pieces {
			moves[i] = p
		}
		return moves
	case ChooseSpace:
		moves := make([]Move, len(s.spaces))
		for i, c := range s.spaces {
			moves[i] = c
		}
		return moves
	}
	return nil
}

func (s State) IsLegal(move Move) bool {
	switch m := move.(type) {
	case Piece:
		return s.phase == ChoosePiece && utils.FindIndex(s.pieces, m) >= 0
	case Cell:
		return s.phase == ChooseSpace && utils.FindIndex(s.spaces, m) >= 0
	}
	return false
}

// Play returns the state after move. A move that is not legal in s is
// ignored and s itself is returned.
func (s State) Play(move Move) State {
	switch s.phase {
	case ChoosePiece:
		piece, ok := move.(Piece)
		if !ok {
			return s
		}
		if utils.FindIndex(s.pieces, piece) < 0 {
			return s
		}
		next := s
		next.pieces = lo.Without(s.pieces, piece)
		next.chosen = piece
		next.phase = ChooseSpace
		next.player = s.player.Opponent()
		return next

	case ChooseSpace:
		cell, ok := move.(Cell)
		if !ok {
			return s
		}
		if utils.FindIndex(s.spaces, cell) < 0 {
			return s
		}
		next := s
		next.spaces = lo.Without(s.spaces, cell)
		next.board[cell.Index()] = s.chosen
		next.hash = zobrist.AddPiece(s.hash, cell, s.chosen)
		next.chosen = NoPiece
		next.phase = ChoosePiece
		next.checkTerminal()
		return next
	}
	return s
}

// checkTerminal runs right after a placement. The placing player is still the
// player to act, so a completed line is credited to them.
func (s *State) checkTerminal() {
	if _, ok := s.board.WinningLine(); ok {
		s.winner = s.player
		s.phase = Finished
		return
	}
	if len(s.pieces) == 0 && s.chosen == NoPiece {
		s.phase = Finished
	}
}

// Equal compares two states by content. Piece pool and empty cell order do
// not matter.
func (s State) Equal(o State) bool {
	if s.board != o.board || s.phase != o.phase || s.player != o.player ||
		s.chosen != o.chosen || s.winner != o.winner {
		return false
	}
	return sameSet(s.pieces, o.pieces) && sameSet(s.spaces, o.spaces)
}

func sameSet[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[T]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		if seen[v] == 0 {
			return false
		}
		seen[v]--
	}
	return true
}

var ErrInvalidState = errors.New("invalid state")

// Validate checks the bookkeeping invariants: every piece is exactly one of
// placed, pending or unplaced; every cell is exactly one of empty or filled;
// the phase agrees with the pending piece and the winner.
func (s State) Validate() error {
	seen := make(map[Piece]bool, NumPieces)
	mark := func(p Piece, where string) error {
		if !p.Valid() {
			return fmt.Errorf("%w: malformed piece %08b %s", ErrInvalidState, uint8(p), where)
		}
		if seen[p] {
			return fmt.Errorf("%w: piece %v duplicated %s", ErrInvalidState, p, where)
		}
		seen[p] = true
		return nil
	}
	for _, p := range s.board.Placed() {
		if err := mark(p, "on board"); err != nil {
			return err
		}
	}
	for _, p := range s.pieces {
		if err := mark(p, "in pool"); err != nil {
			return err
		}
	}
	if s.chosen != NoPiece {
		if err := mark(s.chosen, "as chosen piece"); err != nil {
			return err
		}
	}
	if len(seen) != NumPieces {
		return fmt.Errorf("%w: %d pieces accounted for", ErrInvalidState, len(seen))
	}

	empty := make(map[Cell]bool, len(s.spaces))
	for _, c := range s.spaces {
		if empty[c] {
			return fmt.Errorf("%w: cell %v listed twice", ErrInvalidState, c)
		}
		if s.board.At(c) != NoPiece {
			return fmt.Errorf("%w: cell %v listed empty but holds %v", ErrInvalidState, c, s.board.At(c))
		}
		empty[c] = true
	}
	if len(empty)+len(s.board.Placed()) != NumCells {
		return fmt.Errorf("%w: %d empty and %d filled cells", ErrInvalidState, len(empty), len(s.board.Placed()))
	}

	switch s.phase {
	case ChooseSpace:
		if s.chosen == NoPiece {
			return fmt.Errorf("%w: %v without a chosen piece", ErrInvalidState, s.phase)
		}
	case ChoosePiece, Finished:
		if s.chosen != NoPiece {
			return fmt.Errorf("%w: %v with chosen piece %v", ErrInvalidState, s.phase, s.chosen)
		}
	default:
		return fmt.Errorf("%w: unknown phase %d", ErrInvalidState, int(s.phase))
	}
	if s.winner != NoPlayer && s.phase != Finished {
		return fmt.Errorf("%w: winner set while %v", ErrInvalidState, s.phase)
	}
	if s.hash != zobrist.Hash(s.board) {
		return fmt.Errorf("%w: stale board hash", ErrInvalidState)
	}
	return nil
}

// ParseMove reads a move in the notation expected by the current phase.
func (s State) ParseMove(text string) (Move, error) {
	switch s.phase {
	case ChoosePiece:
		piece, err := ParsePiece(text)
		if err != nil {
			return nil, err
		}
		return piece, nil
	case ChooseSpace:
		cell, err := ParseCell(text)
		if err != nil {
			return nil, err
		}
		return cell, nil
	}
	return nil, fmt.Errorf("no moves in phase %v", s.phase)
}

func (s State) String() string {
	winner := "none"
	if w, ok := s.Winner(); ok {
		winner = fmt.Sprint(int(w))
	}
	return fmt.Sprintf("%sphase=%v player=%d chosen=%v winner=%s", s.board, s.phase, s.player, s.chosen, winner)
}
