package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"chessrules/internal/board"
	"chessrules/internal/core"
)

// LineReader is the input side of the terminal. *readline.Instance
// satisfies it; tests use a scripted reader.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// NewReadline opens a readline session on the process terminal.
func NewReadline(historyFile string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
)

type themeColors struct {
	lightBg string
	darkBg  string
	white   string
	black   string
	reset   string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m", // Beige
		darkBg:  "\033[48;5;94m",  // Brown
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   colorReset,
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m",
		darkBg:  "\033[48;5;22m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   colorReset,
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m",
		darkBg:  "\033[48;5;240m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   colorReset,
	},
}

// CommandHelp is one line of the help listing.
type CommandHelp struct {
	Name        string
	ShortName   string
	Usage       string
	Description string
}

type CLI struct {
	input    LineReader
	output   io.Writer
	theme    ColorTheme
	colorful bool // output is a terminal
}

// New creates the view. Colour themes are only available when colorful is
// set, which callers derive from IsTerminal.
func New(input LineReader, output io.Writer, colorful bool) *CLI {
	return &CLI{
		input:    input,
		output:   output,
		theme:    ThemeOff,
		colorful: colorful,
	}
}

// ReadLine returns the next trimmed input line. Interrupt and end of input
// both end the session with io.EOF.
func (c *CLI) ReadLine() (string, error) {
	line, err := c.input.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *CLI) SetPrompt(prompt string) {
	c.input.SetPrompt(prompt)
}

func (c *CLI) Close() error {
	return c.input.Close()
}

func (c *CLI) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	if theme != ThemeOff && !c.colorful {
		return fmt.Errorf("colour themes need a terminal")
	}
	c.theme = theme
	return nil
}

func (c *CLI) Theme() ColorTheme {
	return c.theme
}

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	if c.colorful {
		fmt.Fprintf(c.output, "%sError: %v%s\n", colorRed, err, colorReset)
		return
	}
	fmt.Fprintf(c.output, "Error: %v\n", err)
}

// DisplayBoard draws b with white at the bottom.
func (c *CLI) DisplayBoard(b *board.Board) {
	theme := themes[c.theme]
	var sb strings.Builder

	sb.WriteString("\n  a b c d e f g h\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d ", rank+1)
		for file := 0; file < 8; file++ {
			piece := b.PieceAt(core.NewSquare(rank, file))

			if c.theme == ThemeOff {
				if piece == core.NoPiece {
					sb.WriteString(". ")
				} else {
					fmt.Fprintf(&sb, "%c ", piece.Char())
				}
				continue
			}

			bg := theme.darkBg
			if (rank+file)%2 == 1 {
				bg = theme.lightBg
			}
			if piece == core.NoPiece {
				fmt.Fprintf(&sb, "%s  %s", bg, theme.reset)
				continue
			}
			fg := theme.black
			if piece.Color() == core.White {
				fg = theme.white
			}
			fmt.Fprintf(&sb, "%s%s%c %s", bg, fg, piece.Char(), theme.reset)
		}
		fmt.Fprintf(&sb, " %d\n", rank+1)
	}
	sb.WriteString("  a b c d e f g h\n")

	c.ShowMessage(sb.String())
}

func (c *CLI) ShowHelp(cmds []CommandHelp) {
	c.ShowMessage("Commands:")
	for _, cmd := range cmds {
		name := cmd.Usage
		if cmd.ShortName != "" {
			name = fmt.Sprintf("%s (%s)", cmd.Usage, cmd.ShortName)
		}
		c.ShowMessage(fmt.Sprintf("  %-26s %s", name, cmd.Description))
	}
	c.ShowMessage("\nPress ENTER on a computer player's turn to let the engine move.")
}

func (c *CLI) ShowWelcome() {
	title := "Chess"
	if c.colorful {
		title = colorCyan + title + colorReset
	}
	c.ShowMessage(title)
	c.ShowMessage("Type 'new' to start, 'resume <FEN>' to load a position, 'help' for commands.")
	c.ShowMessage("")
}

// ShowGameHistory prints the move list in numbered pairs.
func (c *CLI) ShowGameHistory(initialFEN string, moves []string, fen string, status core.Status) {
	c.ShowMessage(fmt.Sprintf("Starting FEN: %s", initialFEN))

	for i := 0; i < len(moves); i += 2 {
		if i+1 < len(moves) {
			c.ShowMessage(fmt.Sprintf("%d. %s | %s", i/2+1, moves[i], moves[i+1]))
		} else {
			c.ShowMessage(fmt.Sprintf("%d. %s | ...", i/2+1, moves[i]))
		}
	}
	c.ShowMessage(fmt.Sprintf("Current FEN: %s", fen))
	c.ShowMessage(fmt.Sprintf("Status: %s", status))
}

// ShowMoves lists moves eight to a line.
func (c *CLI) ShowMoves(moves []string) {
	if len(moves) == 0 {
		c.ShowMessage("No legal moves.")
		return
	}
	for i := 0; i < len(moves); i += 8 {
		end := min(i+8, len(moves))
		c.ShowMessage("  " + strings.Join(moves[i:end], " "))
	}
	c.ShowMessage(fmt.Sprintf("%d moves", len(moves)))
}

func (c *CLI) ShowMove(player core.Color, move string, computer bool) {
	who := player.Name()
	if computer {
		who = "Computer (" + who + ")"
	}
	c.ShowMessage(fmt.Sprintf("%s: %s", who, move))
}

func (c *CLI) ShowGameOver(status core.Status, loser core.Color) {
	switch status {
	case core.StatusCheckmate:
		c.ShowMessage(fmt.Sprintf("\nCheckmate. %s wins.", loser.Opposite().Name()))
	case core.StatusStalemate:
		c.ShowMessage("\nStalemate. The game is drawn.")
	}
	c.ShowMessage("Start a new game with 'new' or 'resume'.")
}
