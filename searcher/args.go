package searcher

import "quarto/meta"

// Hyperparameters for MCTS

const DefaultExploitation = meta.EXPLOITATION // Chance of following the best known child instead of sampling a move

// Average reported by a node that has never been visited. It sorts below any
// real average, so an unvisited child never wins a max comparison and always
// wins a min comparison.
const unvisited = -1.0
