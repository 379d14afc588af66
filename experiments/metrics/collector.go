package metrics

import (
	"sync/atomic"
	"time"

	"quarto/game"
)

type SearchMetric struct {
	Goroutines     int
	Duration       time.Duration
	Episodes       int
	Nodes          int // Nodes created during this search
	Transpositions int // Descents that landed on an existing node through the transposition table
	Exploitation   float64
	IsTreeReset    bool
}

type MoveMetric struct {
	Step   int
	Player game.Player
	Move   string
	SearchMetric
}

type GameMetric struct {
	StartingPlayer game.Player
	Winner         game.Player // game.NoPlayer for a draw or an unfinished game
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(goroutines int, exploitation float64)
	SetTreeReset(value bool)
	AddEpisode()
	AddNodes(n int)
	AddTranspositions(n int)
	Complete() SearchMetric
}

type collector struct {
	goroutines     int
	exploitation   float64
	startTime      time.Time
	episodes       atomic.Int32
	nodes          atomic.Int32
	transpositions atomic.Int32
	isTreeReset    atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset.Store(value)
}

func (m *collector) Start(goroutines int, exploitation float64) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.exploitation = exploitation
	m.episodes.Store(0)
	m.nodes.Store(0)
	m.transpositions.Store(0)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddNodes(n int) {
	m.nodes.Add(int32(n))
}

func (m *collector) AddTranspositions(n int) {
	m.transpositions.Add(int32(n))
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:     m.goroutines,
		Duration:       time.Since(m.startTime),
		Episodes:       int(m.episodes.Load()),
		Nodes:          int(m.nodes.Load()),
		Transpositions: int(m.transpositions.Load()),
		Exploitation:   m.exploitation,
		IsTreeReset:    m.isTreeReset.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines int, exploitation float64) {}
func (m *dummyCollector) SetTreeReset(value bool)                    {}
func (m *dummyCollector) AddEpisode()                                {}
func (m *dummyCollector) AddNodes(n int)                             {}
func (m *dummyCollector) AddTranspositions(n int)                    {}
func (m *dummyCollector) Complete() SearchMetric                     { return SearchMetric{} }
