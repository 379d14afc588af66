package experiments

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quarto/experiments/metrics"
)

func TestByName(t *testing.T) {
	require.Equal(t, []string{"budget", "exploitation", "parallelization", "random", "tree_reuse"}, Names())

	exp, err := ByName("budget", 100*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, "budget", exp.Name)
	require.Len(t, exp.MatchUps, 3)
	require.Len(t, exp.Configs, 4)
	for _, matchup := range exp.MatchUps {
		require.Equal(t, 0, matchup[0].ID, "Every match up is played against the baseline")
	}
	require.Equal(t, 400*time.Millisecond, exp.Configs[3].Duration)

	_, err = ByName("chess", time.Second)
	require.Error(t, err)
}

func TestRunnerRun(t *testing.T) {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: 1, Episodes: 20, Exploitation: 0.5}
	reuse := metrics.AgentConfig{ID: 1, Goroutines: 2, Episodes: 10, Exploitation: 0.5, TreeReuse: true}
	random := metrics.AgentConfig{ID: 2, Random: true}
	exp := Experiment{
		Name:     "smoke",
		Configs:  []metrics.AgentConfig{baseline, reuse, random},
		MatchUps: [][2]metrics.AgentConfig{{baseline, reuse}, {baseline, random}},
	}

	t.Run("summarizes and stores every game", func(t *testing.T) {
		dir := t.TempDir()
		r := Runner{Dir: dir, Games: 2, Parallel: 2, Seed: 7}

		summaries, err := r.Run(context.Background(), exp)

		require.NoError(t, err)
		require.Len(t, summaries, 2)
		for _, s := range summaries {
			require.Equal(t, 2, s.Games)
			require.Equal(t, 2, s.Wins1+s.Wins2+s.Draws)
		}
		require.Equal(t, 2, summaries[1].Agent2)

		runs, err := os.ReadDir(filepath.Join(dir, "smoke"))
		require.NoError(t, err)
		require.Len(t, runs, 1)
		for _, file := range []string{"agent_configs.csv", "game_records.csv", "move_records.csv", "summaries.csv"} {
			require.FileExists(t, filepath.Join(dir, "smoke", runs[0].Name(), file))
		}
	})

	t.Run("rejects a non-positive game count", func(t *testing.T) {
		_, err := Runner{}.Run(context.Background(), exp)
		require.Error(t, err)
	})

	t.Run("stops when cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Runner{Games: 1}.Run(ctx, exp)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestRunnerSeed(t *testing.T) {
	require.Equal(t, uint64(42), Runner{Seed: 42}.seed())

	drawn := map[uint64]bool{}
	for i := 0; i < 5; i++ {
		seed := Runner{}.seed()
		require.NotZero(t, seed)
		drawn[seed] = true
	}
	require.Greater(t, len(drawn), 1, "An unset seed should be drawn at random")
}
