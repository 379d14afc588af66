package searcher

import "quarto/game"

const noParent int32 = -1

// node lives in a tree arena and links to its parent and children by index.
// Legal moves and terminality are cached since the state never changes.
type node struct {
	stats
	state    game.State
	move     game.Move // Move that produced state, nil for the root
	parent   int32
	children []int32
	terminal bool
	moves    []game.Move
}

func newNode(state game.State, move game.Move, parent int32) node {
	return node{
		state:    state,
		move:     move,
		parent:   parent,
		terminal: state.Finished(),
		moves:    state.LegalMoves(),
	}
}

// backup records one finished episode. The node scores when the player to
// move at its state is the one who went on to win; draws score for nobody.
func (n *node) backup(winner game.Player, won bool) {
	n.visits++
	if won && n.state.Player() == winner {
		n.score++
	}
}
