package searcher

import (
	"errors"

	"quarto/game"
)

var (
	ErrTerminalRoot = errors.New("cannot search from a finished game")
	ErrNoChildren   = errors.New("search did not expand any move from the root")
)

// Segment is one move played since the previous search, with the board hash
// it led to. A list of segments lets the searcher find the new root inside
// the tree it kept.
type Segment struct {
	Move      game.Move
	StateHash game.StateHash
}

type stats struct {
	visits int
	score  int
}

// average is the share of visits won by the player to move, or unvisited.
func (s stats) average() float64 {
	if s.visits == 0 {
		return unvisited
	}
	return float64(s.score) / float64(s.visits)
}

// bestIndex returns the entry with the highest average when maximize is set
// and the lowest otherwise. The first of equal averages wins.
func bestIndex(n int, maximize bool, average func(i int) float64) int {
	best := 0
	bestAverage := average(0)
	for i := 1; i < n; i++ {
		avg := average(i)
		if (maximize && avg > bestAverage) || (!maximize && avg < bestAverage) {
			best = i
			bestAverage = avg
		}
	}
	return best
}
