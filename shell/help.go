package shell

var commandNames = []string{
	"new", "show", "pick", "place", "play", "moves", "pieces", "hint", "set", "help", "exit",
}

var helpTopics = map[string]string{
	"new":    "new - start a new game",
	"show":   "show (or s) - show the board",
	"pick":   "pick <piece> - give the AI a piece, e.g. pick LTFQ or pick 15",
	"place":  "place <cell> - place the piece you were given, e.g. place b3",
	"play":   "play <move> - pick or place, whichever is due; a bare move works too",
	"moves":  "moves - list your legal moves",
	"pieces": "pieces - list the pieces left with their attributes",
	"hint":   "hint - ask the planner for a move",
	"set":    "set [budget|exploitation|goroutines] [value] - show or change AI settings",
	"help":   "help [command] - show help",
	"exit":   "exit - leave the shell",
}
