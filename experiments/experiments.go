package experiments

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"quarto/engine"
	"quarto/experiments/metrics"
	"quarto/game"
	"quarto/player"
	"quarto/searcher"
)

type Experiment struct {
	Name     string
	Configs  []metrics.AgentConfig
	MatchUps [][2]metrics.AgentConfig
}

// Budget pairs agents with growing time budgets against the baseline.
func Budget(budget time.Duration) Experiment {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: 1, Duration: budget, Exploitation: searcher.DefaultExploitation}
	configs := []metrics.AgentConfig{
		{ID: 1, Goroutines: 1, Duration: budget / 2, Exploitation: searcher.DefaultExploitation},
		{ID: 2, Goroutines: 1, Duration: 2 * budget, Exploitation: searcher.DefaultExploitation},
		{ID: 3, Goroutines: 1, Duration: 4 * budget, Exploitation: searcher.DefaultExploitation},
	}
	return againstBaseline("budget", baseline, configs)
}

// Exploitation pairs agents with different exploitation probabilities
// against the baseline.
func Exploitation(budget time.Duration) Experiment {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: 1, Duration: budget, Exploitation: searcher.DefaultExploitation}
	configs := []metrics.AgentConfig{}
	for i, p := range []float64{0, 0.25, 0.75, 0.9} {
		configs = append(configs, metrics.AgentConfig{ID: i + 1, Goroutines: 1, Duration: budget, Exploitation: p})
	}
	return againstBaseline("exploitation", baseline, configs)
}

// Parallelization pairs root-parallel agents against the sequential baseline.
func Parallelization(budget time.Duration) Experiment {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: 1, Duration: budget, Exploitation: searcher.DefaultExploitation}
	configs := []metrics.AgentConfig{}
	for i, goroutines := range []int{2, 4, 8} {
		configs = append(configs, metrics.AgentConfig{ID: i + 1, Goroutines: goroutines, Duration: budget, Exploitation: searcher.DefaultExploitation})
	}
	return againstBaseline("parallelization", baseline, configs)
}

// TreeReuse pairs an agent that keeps its tree between moves against one that
// starts over each move.
func TreeReuse(budget time.Duration) Experiment {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: 1, Duration: budget, Exploitation: searcher.DefaultExploitation}
	reuse := baseline
	reuse.ID = 1
	reuse.TreeReuse = true
	return againstBaseline("tree_reuse", baseline, []metrics.AgentConfig{reuse})
}

// Random pairs the baseline searcher against a random mover.
func Random(budget time.Duration) Experiment {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: 1, Duration: budget, Exploitation: searcher.DefaultExploitation}
	random := metrics.AgentConfig{ID: 1, Random: true}
	return againstBaseline("random", baseline, []metrics.AgentConfig{random})
}

var registry = map[string]func(time.Duration) Experiment{
	"budget":          Budget,
	"exploitation":    Exploitation,
	"parallelization": Parallelization,
	"tree_reuse":      TreeReuse,
	"random":          Random,
}

// Names lists the experiments ByName knows, sorted.
func Names() []string {
	names := lo.Keys(registry)
	sort.Strings(names)
	return names
}

func ByName(name string, budget time.Duration) (Experiment, error) {
	create, ok := registry[name]
	if !ok {
		return Experiment{}, fmt.Errorf("unknown experiment %q, expected one of %v", name, Names())
	}
	return create(budget), nil
}

func againstBaseline(name string, baseline metrics.AgentConfig, configs []metrics.AgentConfig) Experiment {
	matchUps := [][2]metrics.AgentConfig{}
	for _, config := range configs {
		matchUps = append(matchUps, [2]metrics.AgentConfig{baseline, config})
	}
	return Experiment{
		Name:     name,
		Configs:  append([]metrics.AgentConfig{baseline}, configs...),
		MatchUps: matchUps,
	}
}

type Runner struct {
	Dir      string // Results are written below Dir; nothing is written when empty
	Games    int    // Per match up; the starting player alternates
	Parallel int    // Games played at the same time
	Seed     uint64 // 0 picks a random seed
}

func (r Runner) seed() uint64 {
	if r.Seed != 0 {
		return r.Seed
	}
	return frand.Uint64n(math.MaxUint64-1) + 1
}

type result struct {
	record metrics.GameRecord
	moves  []metrics.MoveMetric
}

// Run plays every match up of exp and returns one summary per match up.
func (r Runner) Run(ctx context.Context, exp Experiment) ([]metrics.MatchupSummary, error) {
	if r.Games <= 0 {
		return nil, fmt.Errorf("experiment %s: games must be positive, got %d", exp.Name, r.Games)
	}
	seed := r.seed()
	log.Info().Uint64("seed", seed).Msgf("starting %s experiment...", exp.Name)
	seeds := rand.New(rand.NewSource(seed))
	results := make([]result, len(exp.MatchUps)*r.Games)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Parallel, 1))
	for mi, matchup := range exp.MatchUps {
		log.Info().Msgf("queueing matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(exp.MatchUps), matchup[0], matchup[1])
		for i := 0; i < r.Games; i++ {
			id := mi*r.Games + i
			gameSeed := seeds.Uint64()
			g.Go(func() error {
				start := game.Player(i % game.NumPlayers)
				winner, gameMetric, moveMetrics, err := runGame(gctx, matchup[0], matchup[1], start, gameSeed)
				if err != nil {
					return fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
				}
				results[id] = result{
					record: metrics.GameRecord{ID: id + 1, Agent1: matchup[0].ID, Agent2: matchup[1].ID, GameMetric: gameMetric},
					moves:  moveMetrics,
				}
				log.Info().Msgf("completed matchup %d of %d game %d with winner: %d", mi+1, len(exp.MatchUps), i+1, winner)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("experiment %s: %w", exp.Name, err)
	}
	log.Info().Msgf("completed %s experiment", exp.Name)

	gameRecords := lo.Map(results, func(res result, _ int) metrics.GameRecord { return res.record })
	moveRecords := []metrics.MoveRecord{}
	for _, res := range results {
		for _, mm := range res.moves {
			moveRecords = append(moveRecords, metrics.MoveRecord{Game: res.record.ID, MoveMetric: mm})
		}
	}
	summaries := lo.Map(exp.MatchUps, func(matchup [2]metrics.AgentConfig, mi int) metrics.MatchupSummary {
		return summarize(matchup, gameRecords[mi*r.Games:(mi+1)*r.Games])
	})

	if r.Dir != "" {
		if err := store(r.Dir, exp, gameRecords, moveRecords, summaries); err != nil {
			return summaries, err
		}
	}
	return summaries, nil
}

func summarize(matchup [2]metrics.AgentConfig, records []metrics.GameRecord) metrics.MatchupSummary {
	return metrics.MatchupSummary{
		Agent1: matchup[0].ID,
		Agent2: matchup[1].ID,
		Games:  len(records),
		Wins1:  lo.CountBy(records, func(r metrics.GameRecord) bool { return r.Winner == 0 }),
		Wins2:  lo.CountBy(records, func(r metrics.GameRecord) bool { return r.Winner == 1 }),
		Draws:  lo.CountBy(records, func(r metrics.GameRecord) bool { return r.Winner == game.NoPlayer }),
	}
}

func store(dir string, exp Experiment, games []metrics.GameRecord, moves []metrics.MoveRecord, summaries []metrics.MatchupSummary) error {
	writer, err := metrics.NewWriter(dir, exp.Name)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(exp.Configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")
	if err := writer.WriteGameRecords(games); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")
	if err := writer.WriteMoveRecords(moves); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")
	if err := writer.WriteSummaries(summaries); err != nil {
		return fmt.Errorf("failed to write summaries: %w", err)
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored summaries")
	return nil
}

// runGame plays a single game with config1 as player 0 and config2 as player 1.
func runGame(ctx context.Context, config1, config2 metrics.AgentConfig, start game.Player, seed uint64) (game.Player, metrics.GameMetric, []metrics.MoveMetric, error) {
	seeds := rand.New(rand.NewSource(seed))
	e := engine.NewLocalEngine(
		game.NewGameWithPlayer(start),
		createAgent(config1, seeds.Uint64()),
		createAgent(config2, seeds.Uint64()),
	)
	return e.Run(ctx)
}

func createAgent(config metrics.AgentConfig, seed uint64) player.Agent {
	if config.Random {
		return player.NewRandom(rand.New(rand.NewSource(seed)))
	}

	options := []searcher.Option{
		searcher.WithSeed(seed),
		searcher.WithExploitation(config.Exploitation),
		searcher.WithGoroutines(config.Goroutines),
		searcher.WithMetrics(),
	}
	if config.Episodes > 0 {
		options = append(options, searcher.WithEpisodes(config.Episodes))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	if config.TreeReuse {
		options = append(options, searcher.WithTreeReuse())
	}
	return player.NewMCTS(options...)
}
