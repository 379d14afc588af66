package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"quarto/game"
)

// ShellCompleter completes command names and the moves legal right now.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

var settingNames = []string{"budget", "exploitation", "goroutines"}

// Do implements the readline.AutoCompleter interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string
	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		switch fields[0] {
		case "pick":
			completions = c.moves(game.ChoosePiece)
		case "place":
			completions = c.moves(game.ChooseSpace)
		case "play":
			completions = c.moves(c.sc.state.Phase())
		case "set":
			completions = settingNames
		case "help":
			completions = commandNames
		}
	}

	var candidates [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(strings.ToLower(completion), strings.ToLower(prefix)) {
			candidates = append(candidates, []rune(completion[len(prefix):]+" "))
		}
	}
	return candidates, len([]rune(prefix))
}

func (c *ShellCompleter) moves(phase game.Phase) []string {
	if c.sc.state.Phase() != phase {
		return nil
	}
	var names []string
	for _, m := range c.sc.state.LegalMoves() {
		names = append(names, m.String())
	}
	return names
}
