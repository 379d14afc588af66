package searcher

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"quarto/experiments/metrics"
	"quarto/game"
)

type Option func(mcts *MCTS)

type MCTS struct {
	goroutines   int
	duration     time.Duration
	episodes     int
	exploitation float64
	rng          *rand.Rand
	exact        bool
	reuse        bool
	tree         *tree // Kept between searches when reuse is set
	metrics      metrics.Collector
	collecting   bool // metrics is a real collector
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

// WithEpisodes caps the number of episodes per search. Combined with a
// duration, whichever runs out first ends the search.
func WithEpisodes(episodes int) Option {
	return func(m *MCTS) {
		if episodes > 0 {
			m.episodes = episodes
		}
	}
}

func WithExploitation(p float64) Option {
	return func(m *MCTS) {
		if p >= 0 && p <= 1 {
			m.exploitation = p
		}
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(m *MCTS) {
		if rng != nil {
			m.rng = rng
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// WithGoroutines runs that many independent trees per search and merges their
// root statistics before deciding.
func WithGoroutines(goroutines int) Option {
	return func(m *MCTS) {
		if goroutines > 0 {
			m.goroutines = goroutines
		}
	}
}

// WithExactTranspositions keys the transposition table on the board, the
// phase and the pending piece instead of the board alone.
func WithExactTranspositions() Option {
	return func(m *MCTS) {
		m.exact = true
	}
}

// WithTreeReuse keeps the tree between searches so the next search can start
// from the subtree of the position actually reached. Only single-goroutine
// searches keep a tree; with WithGoroutines above 1 every search starts fresh.
func WithTreeReuse() Option {
	return func(m *MCTS) {
		m.reuse = true
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
		m.collecting = true
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines:   1,
		exploitation: DefaultExploitation,
		metrics:      metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.episodes <= 0 && m.duration <= 0 {
		panic("Must specify search episodes or duration")
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(frand.Uint64n(math.MaxUint64)))
	}
	if m.reuse && m.goroutines > 1 {
		log.Warn().Int("goroutines", m.goroutines).Msg("tree reuse is ignored by root-parallel search")
	}
	return m
}

// Reset forgets the kept tree, e.g. when a new game starts.
func (m *MCTS) Reset() {
	m.tree = nil
}

// FindNextMove searches from state and returns the move of the root's best
// child. lineage lists the moves played since the previous call and is only
// used with tree reuse. Cancelling ctx stops the search between episodes and
// returns the context's error.
func (m *MCTS) FindNextMove(ctx context.Context, state game.State, lineage []Segment) (game.Move, metrics.SearchMetric, error) {
	if state.Finished() {
		return nil, metrics.SearchMetric{}, ErrTerminalRoot
	}

	var deadline time.Time
	if m.duration > 0 {
		deadline = time.Now().Add(m.duration)
	}

	m.metrics.Start(m.goroutines, m.exploitation)
	var candidates []candidate
	var err error
	if m.goroutines > 1 {
		candidates, err = m.searchParallel(ctx, state, deadline)
	} else {
		t := m.findRoot(state, lineage)
		err = m.search(ctx, t, m.rng, deadline)
		candidates = t.rootCandidates()
		if m.reuse {
			m.tree = t
		}
	}
	metric := m.metrics.Complete()
	if err != nil {
		return nil, metric, err
	}
	if len(candidates) == 0 {
		return nil, metric, ErrNoChildren
	}

	ai := state.Player()
	best := bestIndex(len(candidates), candidates[0].next == ai, func(i int) float64 {
		return candidates[i].average()
	})
	move := candidates[best].move

	event := log.Debug().
		Int("ai", int(ai)).
		Str("move", move.String()).
		Float64("average", candidates[best].average()).
		Int("root-visits", lo.SumBy(candidates, func(c candidate) int { return c.visits }))
	if m.collecting {
		event = event.Int("episodes", metric.Episodes).Int("nodes", metric.Nodes)
	}
	event.Msg("search-complete")

	return move, metric, nil
}

func (m *MCTS) search(ctx context.Context, t *tree, rng *rand.Rand, deadline time.Time) error {
	for i := 0; m.episodes <= 0 || i < m.episodes; i++ {
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		created, hits := t.episode(rng, m.exploitation)
		m.metrics.AddEpisode()
		m.metrics.AddNodes(created)
		m.metrics.AddTranspositions(hits)
	}
	return nil
}

// searchParallel grows one private tree per goroutine, each with its own
// generator seeded from the searcher's, and merges root children by move.
func (m *MCTS) searchParallel(ctx context.Context, state game.State, deadline time.Time) ([]candidate, error) {
	trees := make([]*tree, m.goroutines)
	rngs := make([]*rand.Rand, m.goroutines)
	for i := range trees {
		trees[i] = newTree(state, m.exact)
		rngs[i] = rand.New(rand.NewSource(m.rng.Uint64()))
	}
	m.metrics.SetTreeReset(true)

	g, gctx := errgroup.WithContext(ctx)
	for i := range trees {
		g.Go(func() error {
			return m.search(gctx, trees[i], rngs[i], deadline)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parallel search: %w", err)
	}

	var merged []candidate
	index := make(map[game.Move]int)
	for _, t := range trees {
		for _, c := range t.rootCandidates() {
			i, ok := index[c.move]
			if !ok {
				index[c.move] = len(merged)
				merged = append(merged, c)
				continue
			}
			merged[i].visits += c.visits
			merged[i].score += c.score
		}
	}
	return merged, nil
}

func (m *MCTS) findRoot(state game.State, lineage []Segment) *tree {
	if m.reuse && m.tree != nil {
		if idx, ok := m.tree.follow(lineage); ok && m.tree.nodes[idx].state.Equal(state) {
			m.tree.reroot(idx)
			m.tree.ai = state.Player()
			m.metrics.SetTreeReset(false)
			log.Debug().Int("nodes", m.tree.size()).Msg("reusing-tree")
			return m.tree
		}
		log.Debug().Msg("kept tree does not reach the position, starting over")
	}
	m.metrics.SetTreeReset(true)
	return newTree(state, m.exact)
}

// Plan runs a single-goroutine search from state for budget, following the
// best known child with the given exploitation probability, and returns the
// chosen move. It fails with ErrTerminalRoot on a finished game and with
// ErrNoChildren when the budget did not allow a single episode.
func Plan(state game.State, budget time.Duration, exploitation float64, rng *rand.Rand) (game.Move, error) {
	if state.Finished() {
		return nil, ErrTerminalRoot
	}
	if budget <= 0 {
		return nil, fmt.Errorf("%w: budget %v", ErrNoChildren, budget)
	}
	if exploitation < 0 || exploitation > 1 {
		return nil, fmt.Errorf("exploitation probability %v outside [0, 1]", exploitation)
	}
	m := NewMCTS(WithDuration(budget), WithExploitation(exploitation), WithRand(rng))
	move, _, err := m.FindNextMove(context.Background(), state, nil)
	return move, err
}
