package game

import "fmt"

// Player identifies one of the two seats. The automated player is whichever
// seat asks the searcher for a move.
type Player int

const NoPlayer Player = -1

const NumPlayers = 2

func (p Player) Opponent() Player {
	return (p + 1) % NumPlayers
}

type Phase int

const (
	ChoosePiece Phase = iota + 1
	ChooseSpace
	Finished
)

func (p Phase) String() string {
	switch p {
	case ChoosePiece:
		return "CHOOSE_PIECE"
	case ChooseSpace:
		return "CHOOSE_SPACE"
	case Finished:
		return "FINISHED"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

type StateHash uint64

// StateKey is the full identity of a position: the board plus what the phase
// and the pending piece add on top of it.
type StateKey struct {
	Hash   StateHash
	Phase  Phase
	Chosen Piece
}

// Move is either a Piece (handed to the opponent) or a Cell (where the pending
// piece goes). Both are comparable so moves can key maps.
type Move interface {
	fmt.Stringer
	isMove()
}
