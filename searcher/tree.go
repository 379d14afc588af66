package searcher

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"quarto/game"
)

type transposition struct {
	key  game.StateKey
	move game.Move
}

// tree is an arena of nodes plus a transposition table mapping (parent state
// key, move) to the node that move leads to.
type tree struct {
	nodes []node
	root  int32
	ai    game.Player // Player the search decides for
	exact bool        // Key transpositions on phase and pending piece too
	table map[transposition]int32
	path  []int32
}

func newTree(state game.State, exact bool) *tree {
	t := &tree{
		nodes: make([]node, 0, 1024),
		ai:    state.Player(),
		exact: exact,
		table: make(map[transposition]int32),
	}
	t.nodes = append(t.nodes, newNode(state, nil, noParent))
	return t
}

// key narrows a state down to what the transposition table distinguishes. The
// default is the board alone: states with the same layout but a different
// pending piece share entries, so reuse is approximate.
func (t *tree) key(s game.State) game.StateKey {
	if t.exact {
		return s.Key()
	}
	return game.StateKey{Hash: s.Hash()}
}

// expand returns the node reached by playing move at parent. A node already
// registered for (parent key, move) is returned as is and is not added to the
// parent's children a second time.
func (t *tree) expand(parent int32, move game.Move) (child int32, created bool) {
	k := transposition{key: t.key(t.nodes[parent].state), move: move}
	if idx, ok := t.table[k]; ok {
		return idx, false
	}
	state := t.nodes[parent].state.Play(move)
	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, newNode(state, move, parent))
	t.nodes[parent].children = append(t.nodes[parent].children, idx)
	t.table[k] = idx
	return idx, true
}

// bestChild maximizes the children's average when the first child has the ai
// to move and minimizes it otherwise.
func (t *tree) bestChild(parent int32) int32 {
	children := t.nodes[parent].children
	if len(children) == 0 {
		panic("node has no children")
	}
	maximize := t.nodes[children[0]].state.Player() == t.ai
	i := bestIndex(len(children), maximize, func(i int) float64 {
		return t.nodes[children[i]].average()
	})
	return children[i]
}

// episode runs one descent from the root to a finished state and backs the
// outcome up along the visited path. At each step it explores a uniformly
// drawn legal move, sampled with replacement, unless the node has children
// and a draw falls within the exploitation probability, in which case it
// follows bestChild.
func (t *tree) episode(rng *rand.Rand, exploitation float64) (created, hits int) {
	current := t.root
	t.path = append(t.path[:0], current)

	for !t.nodes[current].terminal {
		explore := rng.Float64() > exploitation
		if len(t.nodes[current].children) > 0 && !explore {
			current = t.bestChild(current)
		} else {
			moves := t.nodes[current].moves
			move := moves[rng.Intn(len(moves))]
			next, isNew := t.expand(current, move)
			if isNew {
				created++
			} else {
				hits++
			}
			current = next
		}
		t.path = append(t.path, current)
	}

	winner, won := t.nodes[current].state.Winner()
	for _, idx := range t.path {
		t.nodes[idx].backup(winner, won)
	}
	return created, hits
}

type candidate struct {
	stats
	move game.Move
	next game.Player // Player to move after move
}

func (t *tree) rootCandidates() []candidate {
	children := t.nodes[t.root].children
	out := make([]candidate, len(children))
	for i, idx := range children {
		n := &t.nodes[idx]
		out[i] = candidate{stats: n.stats, move: n.move, next: n.state.Player()}
	}
	return out
}

// follow walks the table from the root along lineage and returns the node the
// last segment leads to.
func (t *tree) follow(lineage []Segment) (int32, bool) {
	idx := t.root
	for _, segment := range lineage {
		next, ok := t.table[transposition{key: t.key(t.nodes[idx].state), move: segment.Move}]
		if !ok { // Move was never expanded
			return 0, false
		}
		if hash := t.nodes[next].state.Hash(); hash != segment.StateHash {
			log.Warn().Msgf("node's state hash %d does not match segment's state hash %d", hash, segment.StateHash)
			return 0, false
		}
		idx = next
	}
	return idx, true
}

// reroot makes idx the root and drops every node outside its subtree,
// compacting the arena. Table entries pointing outside the subtree go too.
func (t *tree) reroot(idx int32) {
	remap := map[int32]int32{idx: 0}
	nodes := []node{t.nodes[idx]}
	for i := 0; i < len(nodes); i++ {
		for _, child := range nodes[i].children {
			if _, seen := remap[child]; seen {
				continue
			}
			remap[child] = int32(len(nodes))
			nodes = append(nodes, t.nodes[child])
		}
	}

	for i := range nodes {
		n := &nodes[i]
		if parent, ok := remap[n.parent]; ok && i > 0 {
			n.parent = parent
		} else {
			n.parent = noParent
		}
		children := make([]int32, len(n.children))
		for j, child := range n.children {
			children[j] = remap[child]
		}
		n.children = children
	}

	table := make(map[transposition]int32, len(nodes))
	for k, v := range t.table {
		if nv, ok := remap[v]; ok {
			table[k] = nv
		}
	}

	t.nodes = nodes
	t.table = table
	t.root = 0
}

func (t *tree) size() int {
	return len(t.nodes)
}
