package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"chessrules/internal/cli"
	"chessrules/internal/core"
	"chessrules/internal/position"
)

// Games is the game API a session plays through: the in-process service or
// a client of a remote server.
type Games interface {
	CreateGame(ctx context.Context, req core.CreateGameRequest) (*core.GameResponse, error)
	GetGame(ctx context.Context, gameID string) (*core.GameResponse, error)
	MakeMove(ctx context.Context, gameID, uci string) (*core.GameResponse, error)
	MakeComputerMove(ctx context.Context, gameID string) (*core.GameResponse, error)
	Undo(ctx context.Context, gameID string, count int) (*core.GameResponse, error)
	Redo(ctx context.Context, gameID string) (*core.GameResponse, error)
	LegalMoves(ctx context.Context, gameID, from string) (*core.LegalMovesResponse, error)
	Hint(ctx context.Context, gameID string) (*core.HintResponse, error)
	Select(ctx context.Context, gameID, square string) (*core.SelectionResponse, error)
	ClearSelection(ctx context.Context, gameID string) error
	MoveSelected(ctx context.Context, gameID, to, promo string) (*core.GameResponse, error)
	ResetGame(ctx context.Context, gameID, fen string) (*core.GameResponse, error)
	DeleteGame(ctx context.Context, gameID string) error
}

// Command is one terminal command.
type Command struct {
	Name        string
	ShortName   string
	Usage       string
	Description string
	Handler     func(args []string) error
}

var errQuit = errors.New("quit")

// CLIHandler drives one terminal session over the game service.
type CLIHandler struct {
	svc      Games
	view     *cli.CLI
	ctx      context.Context
	commands map[string]*Command
	order    []*Command
	gameID   string
}

func New(ctx context.Context, svc Games, view *cli.CLI) *CLIHandler {
	h := &CLIHandler{
		svc:      svc,
		view:     view,
		ctx:      ctx,
		commands: make(map[string]*Command),
	}
	h.registerCommands()
	return h
}

func (h *CLIHandler) Register(cmd *Command) {
	h.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		h.commands[cmd.ShortName] = cmd
	}
	h.order = append(h.order, cmd)
}

func (h *CLIHandler) registerCommands() {
	h.Register(&Command{"new", "n", "new [h|c] [h|c]", "Start a game; seats default to human", h.newGame})
	h.Register(&Command{"resume", "r", "resume <FEN>", "Set up a FEN position, keeping the players", h.resume})
	h.Register(&Command{"move", "m", "move <uci>", "Play a move, e.g. e2e4 or e7e8q", h.move})
	h.Register(&Command{"moves", "l", "moves [square]", "List legal moves", h.listMoves})
	h.Register(&Command{"select", "s", "select <square>", "Pick up a piece and show its targets", h.selectSquare})
	h.Register(&Command{"to", "t", "to <square> [q|r|b|n]", "Move the selected piece", h.moveSelected})
	h.Register(&Command{"drop", "d", "drop", "Put the selected piece back", h.dropSelection})
	h.Register(&Command{"undo", "u", "undo [count]", "Take back moves, default 1", h.undo})
	h.Register(&Command{"redo", "", "redo", "Replay the last undone move", h.redo})
	h.Register(&Command{"fen", "f", "fen", "Print the current FEN", h.fen})
	h.Register(&Command{"status", "", "status", "Show whose turn it is and the game status", h.status})
	h.Register(&Command{"hint", "", "hint", "Ask the engine for a suggestion", h.hint})
	h.Register(&Command{"history", "", "history", "Show the move list", h.history})
	h.Register(&Command{"color", "", "color <off|brown|green|gray>", "Set the board theme", h.color})
	h.Register(&Command{"help", "?", "help", "Show this help", h.help})
	h.Register(&Command{"quit", "q", "quit", "Exit", func([]string) error { return errQuit }})
	h.commands["exit"] = h.commands["quit"]
}

// Run reads commands until quit or end of input.
func (h *CLIHandler) Run() {
	for {
		h.view.SetPrompt(h.prompt())
		line, err := h.view.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				h.view.ShowError(err)
			}
			return
		}
		if !h.Execute(line) {
			return
		}
	}
}

// Execute runs one input line and reports whether the session continues.
func (h *CLIHandler) Execute(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		h.computerTurn()
		return true
	}

	name, args := parts[0], parts[1:]
	cmd, ok := h.commands[name]
	if !ok {
		// Bare moves are accepted without the "move" prefix.
		if _, _, _, err := position.ParseUCI(name); err == nil {
			cmd, args = h.commands["move"], parts
		} else {
			h.view.ShowMessage(fmt.Sprintf("Unknown command: %s. Type 'help' for commands.", name))
			return true
		}
	}

	if err := cmd.Handler(args); err != nil {
		if errors.Is(err, errQuit) {
			return false
		}
		h.view.ShowError(err)
	}
	return true
}

func (h *CLIHandler) prompt() string {
	if h.gameID == "" {
		return "> "
	}
	g, err := h.svc.GetGame(h.ctx, h.gameID)
	if err != nil {
		return "> "
	}
	p := fmt.Sprintf("[%s]> ", g.Turn)
	if next := h.nextPlayer(g); next != nil && next.Type == core.PlayerComputer && g.Status != core.StatusCheckmate.String() && g.Status != core.StatusStalemate.String() {
		p = "ENTER for the computer move " + p
	}
	return p
}

func (h *CLIHandler) nextPlayer(g *core.GameResponse) *core.Player {
	if g.Turn == core.White.String() {
		return g.Players.White
	}
	return g.Players.Black
}

func (h *CLIHandler) activeGame() (*core.GameResponse, error) {
	if h.gameID == "" {
		return nil, fmt.Errorf("no active game, use 'new' or 'resume <FEN>'")
	}
	return h.svc.GetGame(h.ctx, h.gameID)
}

func parseSeat(arg string) (core.PlayerType, error) {
	switch arg {
	case "h", "human":
		return core.PlayerHuman, nil
	case "c", "computer":
		return core.PlayerComputer, nil
	}
	return 0, fmt.Errorf("player must be h or c, got %q", arg)
}

func (h *CLIHandler) newGame(args []string) error {
	req := core.CreateGameRequest{
		White: core.PlayerConfig{Type: core.PlayerHuman},
		Black: core.PlayerConfig{Type: core.PlayerHuman},
	}
	if len(args) > 0 {
		t, err := parseSeat(args[0])
		if err != nil {
			return err
		}
		req.White.Type = t
	}
	if len(args) > 1 {
		t, err := parseSeat(args[1])
		if err != nil {
			return err
		}
		req.Black.Type = t
	}
	return h.start(req)
}

// resume sets up a position on the current game, or starts a human game
// from it when there is none.
func (h *CLIHandler) resume(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: resume <FEN>")
	}
	fen := strings.Join(args, " ")
	if h.gameID == "" {
		return h.start(core.CreateGameRequest{
			White: core.PlayerConfig{Type: core.PlayerHuman},
			Black: core.PlayerConfig{Type: core.PlayerHuman},
			FEN:   fen,
		})
	}
	resp, err := h.svc.ResetGame(h.ctx, h.gameID, fen)
	if err != nil {
		return fmt.Errorf("could not set up the position: %w", err)
	}
	h.view.ShowMessage("Position set.")
	h.showBoard(resp)
	return nil
}

func (h *CLIHandler) start(req core.CreateGameRequest) error {
	resp, err := h.svc.CreateGame(h.ctx, req)
	if err != nil {
		return fmt.Errorf("could not start the game: %w", err)
	}
	if h.gameID != "" {
		h.svc.DeleteGame(h.ctx, h.gameID)
	}
	h.gameID = resp.GameID
	h.view.ShowMessage("Game started.")
	h.showPosition(resp)
	return nil
}

func (h *CLIHandler) move(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: move <uci>")
	}
	if _, err := h.activeGame(); err != nil {
		return err
	}
	resp, err := h.svc.MakeMove(h.ctx, h.gameID, args[0])
	if err != nil {
		return err
	}
	h.showPosition(resp)
	return nil
}

func (h *CLIHandler) listMoves(args []string) error {
	if _, err := h.activeGame(); err != nil {
		return err
	}
	from := ""
	if len(args) > 0 {
		from = args[0]
	}
	resp, err := h.svc.LegalMoves(h.ctx, h.gameID, from)
	if err != nil {
		return err
	}
	h.view.ShowMoves(resp.Moves)
	return nil
}

func (h *CLIHandler) selectSquare(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: select <square>")
	}
	if _, err := h.activeGame(); err != nil {
		return err
	}
	resp, err := h.svc.Select(h.ctx, h.gameID, args[0])
	if err != nil {
		return err
	}
	h.view.ShowMessage(fmt.Sprintf("Selected %s: %s", resp.Square, strings.Join(resp.Targets, " ")))
	return nil
}

func (h *CLIHandler) moveSelected(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: to <square> [q|r|b|n]")
	}
	g, err := h.activeGame()
	if err != nil {
		return err
	}
	if g.Selected == "" {
		return fmt.Errorf("no piece selected, use 'select <square>'")
	}
	promo := ""
	if len(args) == 2 {
		promo = args[1]
	}
	resp, err := h.svc.MoveSelected(h.ctx, h.gameID, args[0], promo)
	if err != nil {
		return err
	}
	h.showPosition(resp)
	return nil
}

func (h *CLIHandler) dropSelection([]string) error {
	if _, err := h.activeGame(); err != nil {
		return err
	}
	if err := h.svc.ClearSelection(h.ctx, h.gameID); err != nil {
		return err
	}
	h.view.ShowMessage("Selection cleared.")
	return nil
}

func (h *CLIHandler) undo(args []string) error {
	if _, err := h.activeGame(); err != nil {
		return err
	}
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("usage: undo [count]")
		}
		count = n
	}
	resp, err := h.svc.Undo(h.ctx, h.gameID, count)
	if err != nil {
		return err
	}
	if count == 1 {
		h.view.ShowMessage("Move undone")
	} else {
		h.view.ShowMessage(fmt.Sprintf("%d moves undone", count))
	}
	h.showBoard(resp)
	return nil
}

func (h *CLIHandler) redo([]string) error {
	if _, err := h.activeGame(); err != nil {
		return err
	}
	resp, err := h.svc.Redo(h.ctx, h.gameID)
	if err != nil {
		return err
	}
	h.showPosition(resp)
	return nil
}

func (h *CLIHandler) fen([]string) error {
	g, err := h.activeGame()
	if err != nil {
		return err
	}
	h.view.ShowMessage(g.FEN)
	return nil
}

func (h *CLIHandler) status([]string) error {
	g, err := h.activeGame()
	if err != nil {
		return err
	}
	turn := core.White
	if g.Turn == core.Black.String() {
		turn = core.Black
	}
	h.view.ShowMessage(fmt.Sprintf("%s to move (%s), status: %s, moves played: %d",
		turn.Name(), h.nextPlayer(g).Type, g.Status, g.MoveCount))
	return nil
}

func (h *CLIHandler) hint([]string) error {
	if _, err := h.activeGame(); err != nil {
		return err
	}
	resp, err := h.svc.Hint(h.ctx, h.gameID)
	if err != nil {
		return err
	}
	h.view.ShowMessage("Hint: " + resp.Move)
	return nil
}

func (h *CLIHandler) history([]string) error {
	g, err := h.activeGame()
	if err != nil {
		return err
	}
	pos, err := position.ParseFEN(g.FEN)
	if err != nil {
		return err
	}
	h.view.ShowGameHistory(g.InitialFEN, g.Moves, g.FEN, pos.Status())
	return nil
}

func (h *CLIHandler) color(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: color <off|brown|green|gray>")
	}
	if err := h.view.SetTheme(cli.ColorTheme(args[0])); err != nil {
		return err
	}
	h.view.ShowMessage(fmt.Sprintf("Color theme set to: %s", args[0]))
	if g, err := h.activeGame(); err == nil {
		h.drawBoard(g.FEN)
	}
	return nil
}

func (h *CLIHandler) help([]string) error {
	helps := make([]cli.CommandHelp, len(h.order))
	for i, cmd := range h.order {
		helps[i] = cli.CommandHelp{
			Name:        cmd.Name,
			ShortName:   cmd.ShortName,
			Usage:       cmd.Usage,
			Description: cmd.Description,
		}
	}
	h.view.ShowHelp(helps)
	return nil
}

// computerTurn plays the engine move when the side to move is a computer.
func (h *CLIHandler) computerTurn() {
	g, err := h.activeGame()
	if err != nil {
		return
	}
	if next := h.nextPlayer(g); next == nil || next.Type != core.PlayerComputer {
		return
	}
	resp, err := h.svc.MakeComputerMove(h.ctx, h.gameID)
	if err != nil {
		h.view.ShowError(fmt.Errorf("engine error: %w", err))
		return
	}
	h.showPosition(resp)
}

// showPosition reports the last move, redraws the board and announces the
// end of the game.
func (h *CLIHandler) showPosition(g *core.GameResponse) {
	if lm := g.LastMove; lm != nil {
		mover := core.White
		if lm.PlayerColor == core.Black.String() {
			mover = core.Black
		}
		seat := g.Players.White
		if mover == core.Black {
			seat = g.Players.Black
		}
		h.view.ShowMove(mover, lm.Move, seat != nil && seat.Type == core.PlayerComputer)
	}
	h.showBoard(g)
}

// showBoard redraws the board and announces check or the end of the game.
func (h *CLIHandler) showBoard(g *core.GameResponse) {
	h.drawBoard(g.FEN)

	switch g.Status {
	case core.StatusCheck.String():
		h.view.ShowMessage("Check.")
	case core.StatusCheckmate.String():
		loser := core.White
		if g.Turn == core.Black.String() {
			loser = core.Black
		}
		h.view.ShowGameOver(core.StatusCheckmate, loser)
	case core.StatusStalemate.String():
		h.view.ShowGameOver(core.StatusStalemate, core.White)
	}
}

func (h *CLIHandler) drawBoard(fen string) {
	pos, err := position.ParseFEN(fen)
	if err != nil {
		h.view.ShowError(err)
		return
	}
	h.view.DisplayBoard(&pos.Board)
}
