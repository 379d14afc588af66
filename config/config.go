package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"quarto/meta"
)

const (
	ConfigMode                = "mode"
	ConfigTimeBudget          = "time-budget"
	ConfigExploitation        = "exploitation"
	ConfigSeed                = "seed"
	ConfigGoroutines          = "goroutines"
	ConfigExactTranspositions = "exact-transpositions"
	ConfigTreeReuse           = "tree-reuse"
	ConfigAIFirst             = "ai-first"
	ConfigDebug               = "debug"
	ConfigExperiment          = "experiment"
	ConfigExperimentGames     = "experiment-games"
	ConfigExperimentBudget    = "experiment-budget"
	ConfigExperimentParallel  = "experiment-parallel"
	ConfigExperimentDir       = "experiment-dir"
	ConfigFile                = "config"
)

const (
	ModePlay       = "play"
	ModeExperiment = "experiment"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config resolves settings from flags, then QUARTO_ environment variables,
// then an optional config file, then the defaults in meta.
type Config struct {
	*viper.Viper
}

func New() *Config {
	return &Config{Viper: viper.New()}
}

func (c *Config) Load(args []string) error {
	fs := pflag.NewFlagSet("quarto", pflag.ContinueOnError)
	fs.String(ConfigMode, ModePlay, "play against the AI in the terminal or run an experiment: play, experiment")
	fs.Duration(ConfigTimeBudget, meta.TIME_BUDGET, "thinking time of the AI per move")
	fs.Float64(ConfigExploitation, meta.EXPLOITATION, "probability of following the best known child while searching")
	fs.Uint64(ConfigSeed, 0, "seed for games and search; 0 picks one at random")
	fs.Int(ConfigGoroutines, meta.GO_ROUTINES, "independent search trees per move")
	fs.Bool(ConfigExactTranspositions, false, "key the transposition table on phase and pending piece too")
	fs.Bool(ConfigTreeReuse, false, "keep the search tree between moves")
	fs.Bool(ConfigAIFirst, false, "let the AI choose the first piece")
	fs.Bool(ConfigDebug, false, "log at debug level")
	fs.String(ConfigExperiment, "budget", "experiment to run in experiment mode")
	fs.Int(ConfigExperimentGames, meta.EXPERIMENT_GAMES, "games per experiment matchup")
	fs.Duration(ConfigExperimentBudget, meta.EXPERIMENT_BUDGET, "baseline thinking time of experiment agents")
	fs.Int(ConfigExperimentParallel, 1, "experiment games played at the same time")
	fs.String(ConfigExperimentDir, meta.EXPERIMENT_DIR, "directory for experiment results")
	fs.String(ConfigFile, "", "path to a config file (yaml, toml or json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c.SetEnvPrefix("QUARTO")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	if err := c.BindPFlags(fs); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := c.GetString(ConfigFile); path != "" {
		c.SetConfigFile(path)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	switch mode := c.GetString(ConfigMode); mode {
	case ModePlay, ModeExperiment:
	default:
		return fmt.Errorf("%w: mode %q is not one of %s, %s", ErrInvalidConfig, mode, ModePlay, ModeExperiment)
	}
	if budget := c.GetDuration(ConfigTimeBudget); budget <= 0 {
		return fmt.Errorf("%w: time budget %v must be positive", ErrInvalidConfig, budget)
	}
	if budget := c.GetDuration(ConfigExperimentBudget); budget <= 0 {
		return fmt.Errorf("%w: experiment budget %v must be positive", ErrInvalidConfig, budget)
	}
	if p := c.GetFloat64(ConfigExploitation); p < 0 || p > 1 {
		return fmt.Errorf("%w: exploitation %v outside [0, 1]", ErrInvalidConfig, p)
	}
	for _, key := range []string{ConfigGoroutines, ConfigExperimentGames, ConfigExperimentParallel} {
		if n := c.GetInt(key); n < 1 {
			return fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalidConfig, key, n)
		}
	}
	return nil
}
