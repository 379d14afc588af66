package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"lukechampine.com/frand"

	"quarto/game"
	"quarto/player"
	"quarto/searcher"
)

var errQuit = errors.New("quit")

type Options struct {
	Budget       time.Duration
	Exploitation float64
	Goroutines   int
	Exact        bool
	TreeReuse    bool
	AIFirst      bool
	Seed         uint64 // 0 picks a random seed
}

type ShellController struct {
	l   *readline.Instance
	out *termenv.Output

	options Options
	rng     *rand.Rand

	state   game.State
	human   game.Player
	ai      player.Agent
	updates []searcher.Segment // Moves the AI has not seen yet
}

type shellcmd struct {
	cmd  string
	args []string
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func NewShellController(options Options) (*ShellController, error) {
	sc := newController(nil, options)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mquarto>\033[0m ",
		HistoryFile:     "/tmp/quarto_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc.l = l
	sc.out = termenv.NewOutput(l.Stderr())
	return sc, nil
}

// newController builds a controller writing to w; with a nil w it writes to
// stdout until a readline instance takes over.
func newController(w io.Writer, options Options, outputOptions ...termenv.OutputOption) *ShellController {
	seed := options.Seed
	if seed == 0 {
		seed = frand.Uint64n(math.MaxUint64)
	}
	sc := &ShellController{
		out:     termenv.NewOutput(w, outputOptions...),
		options: options,
		rng:     rand.New(rand.NewSource(seed)),
	}
	sc.ai = sc.newAI()
	sc.human = 0
	if options.AIFirst {
		sc.human = 1
	}
	sc.state = sc.newGame()
	return sc
}

// newGame lets the AI open when asked to and draws the opener otherwise.
func (sc *ShellController) newGame() game.State {
	if sc.options.AIFirst {
		return game.NewGameWithPlayer(sc.human.Opponent())
	}
	return game.NewGame(sc.rng)
}

func (sc *ShellController) newAI() player.Agent {
	options := []searcher.Option{
		searcher.WithDuration(sc.options.Budget),
		searcher.WithExploitation(sc.options.Exploitation),
		searcher.WithGoroutines(sc.options.Goroutines),
		searcher.WithSeed(sc.rng.Uint64()),
	}
	if sc.options.Exact {
		options = append(options, searcher.WithExactTranspositions())
	}
	if sc.options.TreeReuse {
		options = append(options, searcher.WithTreeReuse())
	}
	return player.NewMCTS(options...)
}

func (sc *ShellController) showMessage(msg string) {
	io.WriteString(sc.out, msg)
	io.WriteString(sc.out, "\n")
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return &shellcmd{cmd: strings.ToLower(fields[0]), args: fields[1:]}, nil
}

// Loop reads commands until exit, EOF or an interrupt on an empty line.
func (sc *ShellController) Loop(ctx context.Context) {
	defer sc.l.Close()

	sc.showMessage("Welcome to Quarto. Type help for the list of commands.")
	if err := sc.startGame(ctx); err != nil {
		sc.showError(err)
	}

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			break
		}

		resp, err := sc.Execute(ctx, line)
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Execute runs a single command line against the current game.
func (sc *ShellController) Execute(ctx context.Context, line string) (*Response, error) {
	cmd, err := extractFields(strings.TrimSpace(line))
	if err != nil {
		return nil, err
	}
	if cmd == nil {
		return nil, nil
	}

	switch cmd.cmd {
	case "exit", "quit", "bye":
		return nil, errQuit
	case "help":
		return msg(usage(cmd.args)), nil
	case "new":
		return nil, sc.startGame(ctx)
	case "show", "s":
		return msg(sc.render()), nil
	case "moves":
		return msg(sc.legalMoves()), nil
	case "pieces":
		return msg(sc.pieces()), nil
	case "pick", "place", "play":
		return sc.play(ctx, cmd)
	case "hint":
		return sc.hint()
	case "set":
		return sc.set(cmd)
	default:
		// A bare piece or cell is played as a move.
		if len(cmd.args) == 0 {
			if move, err := sc.state.ParseMove(cmd.cmd); err == nil {
				return sc.play(ctx, &shellcmd{cmd: "play", args: []string{move.String()}})
			}
		}
		log.Debug().Msgf("you said: %v", strconv.Quote(line))
		return nil, fmt.Errorf("unknown command %q, type help", cmd.cmd)
	}
}

func (sc *ShellController) startGame(ctx context.Context) error {
	sc.state = sc.newGame()
	sc.updates = nil
	sc.ai.Reset()
	who := "you choose"
	if sc.human != sc.state.Player() {
		who = "the AI chooses"
	}
	sc.showMessage(fmt.Sprintf("New game: %s the first piece.", who))
	return sc.respond(ctx)
}

func (sc *ShellController) play(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if sc.state.Finished() {
		return nil, errors.New("the game is over, type new to start another")
	}
	if sc.state.Player() != sc.human {
		return nil, errors.New("it is not your turn")
	}
	if len(cmd.args) != 1 {
		return nil, fmt.Errorf("usage: %s <move>", cmd.cmd)
	}
	switch {
	case cmd.cmd == "pick" && sc.state.Phase() != game.ChoosePiece:
		return nil, errors.New("you must place the piece you were given first")
	case cmd.cmd == "place" && sc.state.Phase() != game.ChooseSpace:
		return nil, errors.New("you must pick a piece for the AI first")
	}

	move, err := sc.state.ParseMove(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if !sc.state.IsLegal(move) {
		return nil, fmt.Errorf("%v is not a legal move, type moves for the list", move)
	}
	sc.apply(move)
	return nil, sc.respond(ctx)
}

func (sc *ShellController) apply(move game.Move) {
	sc.state = sc.state.Play(move)
	sc.updates = append(sc.updates, searcher.Segment{Move: move, StateHash: sc.state.Hash()})
}

// respond lets the AI move until the human is to act again, then shows the
// board.
func (sc *ShellController) respond(ctx context.Context) error {
	for !sc.state.Finished() && sc.state.Player() != sc.human {
		move, metric, err := sc.ai.FindMove(ctx, sc.state, sc.updates)
		if err != nil {
			return err
		}
		sc.updates = nil
		log.Debug().Int("episodes", metric.Episodes).Dur("duration", metric.Duration).Msg("ai-move")
		sc.showMessage(describe(sc.state, move))
		sc.apply(move)
	}
	sc.showMessage(sc.render())
	return nil
}

func describe(s game.State, move game.Move) string {
	switch m := move.(type) {
	case game.Piece:
		return fmt.Sprintf("AI gives you %v (%s).", m, m.Describe())
	case game.Cell:
		return fmt.Sprintf("AI places %v on %v.", s.ChosenPiece(), m)
	}
	return fmt.Sprintf("AI plays %v.", move)
}

func (sc *ShellController) hint() (*Response, error) {
	if sc.state.Player() != sc.human || sc.state.Finished() {
		return nil, errors.New("there is nothing for you to play")
	}
	move, err := searcher.Plan(sc.state, sc.options.Budget, sc.options.Exploitation, sc.rng)
	if err != nil {
		return nil, err
	}
	return msg("hint: " + move.String()), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(fmt.Sprintf("budget=%v exploitation=%v goroutines=%d",
			sc.options.Budget, sc.options.Exploitation, sc.options.Goroutines)), nil
	}
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: set <budget|exploitation|goroutines> <value>")
	}
	opt, value := cmd.args[0], cmd.args[1]
	switch opt {
	case "budget":
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, err
		}
		if d <= 0 {
			return nil, errors.New("budget must be positive")
		}
		sc.options.Budget = d
	case "exploitation":
		p, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, err
		}
		if p < 0 || p > 1 {
			return nil, errors.New("exploitation must be within [0, 1]")
		}
		sc.options.Exploitation = p
	case "goroutines":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, err
		}
		if n < 1 {
			return nil, errors.New("goroutines must be at least 1")
		}
		sc.options.Goroutines = n
	default:
		return nil, fmt.Errorf("unknown setting %q", opt)
	}
	sc.ai = sc.newAI()
	sc.updates = nil
	return msg("set " + opt + " to " + value), nil
}

func (sc *ShellController) legalMoves() string {
	moves := sc.state.LegalMoves()
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.String()
	}
	return strings.Join(names, " ")
}

func (sc *ShellController) pieces() string {
	var sb strings.Builder
	for _, p := range sc.state.Pieces() {
		fmt.Fprintf(&sb, "%2d %v %s\n", p.Index(), p, p.Describe())
	}
	return strings.TrimRight(sb.String(), "\n")
}

func usage(args []string) string {
	if len(args) > 0 {
		if text, ok := helpTopics[args[0]]; ok {
			return text
		}
		return "no help for " + args[0]
	}
	var sb strings.Builder
	sb.WriteString("commands:\n")
	for _, name := range commandNames {
		sb.WriteString(helpTopics[name])
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
