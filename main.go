package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"quarto/config"
	"quarto/experiments"
	"quarto/shell"
)

func main() {
	cfg := config.New()
	err := cfg.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Debug().Msgf("Loaded config: %v", cfg.AllSettings())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cfg.GetString(config.ConfigMode) {
	case config.ModeExperiment:
		runExperiment(ctx, cfg)
	default:
		play(ctx, cfg)
	}
}

func play(ctx context.Context, cfg *config.Config) {
	sc, err := shell.NewShellController(shell.Options{
		Budget:       cfg.GetDuration(config.ConfigTimeBudget),
		Exploitation: cfg.GetFloat64(config.ConfigExploitation),
		Goroutines:   cfg.GetInt(config.ConfigGoroutines),
		Exact:        cfg.GetBool(config.ConfigExactTranspositions),
		TreeReuse:    cfg.GetBool(config.ConfigTreeReuse),
		AIFirst:      cfg.GetBool(config.ConfigAIFirst),
		Seed:         cfg.GetUint64(config.ConfigSeed),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start shell")
	}
	sc.Loop(ctx)
	log.Info().Msg("bye")
}

func runExperiment(ctx context.Context, cfg *config.Config) {
	exp, err := experiments.ByName(cfg.GetString(config.ConfigExperiment), cfg.GetDuration(config.ConfigExperimentBudget))
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
	runner := experiments.Runner{
		Dir:      cfg.GetString(config.ConfigExperimentDir),
		Games:    cfg.GetInt(config.ConfigExperimentGames),
		Parallel: cfg.GetInt(config.ConfigExperimentParallel),
		Seed:     cfg.GetUint64(config.ConfigSeed),
	}
	summaries, err := runner.Run(ctx, exp)
	if err != nil {
		log.Fatal().Err(err).Msg("experiment failed")
	}
	for _, s := range summaries {
		log.Info().
			Int("agent1", s.Agent1).
			Int("agent2", s.Agent2).
			Int("wins1", s.Wins1).
			Int("wins2", s.Wins2).
			Int("draws", s.Draws).
			Msg("matchup")
	}
}
