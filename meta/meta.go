// meta/meta.go
package meta

import "time"

// TIME_BUDGET defines the thinking time of the AI per move.
const TIME_BUDGET = 1500 * time.Millisecond

// EXPLOITATION defines the probability of following the best known child.
const EXPLOITATION = 0.5

// GO_ROUTINES defines the number of goroutines to use.
const GO_ROUTINES = 1

// EXPERIMENT_GAMES defines the number of games per experiment matchup.
const EXPERIMENT_GAMES = 20

// EXPERIMENT_BUDGET defines the per-move budget of experiment agents.
const EXPERIMENT_BUDGET = 50 * time.Millisecond

// EXPERIMENT_DIR defines where experiment results are written.
const EXPERIMENT_DIR = "results"
