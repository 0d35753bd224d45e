package game

import (
	"fmt"

	"chessrules/internal/core"
	"chessrules/internal/position"
)

// MoveResult tracks the outcome of the last move
type MoveResult struct {
	Move   string
	Player core.Color
	Kind   position.MoveKind
	Status core.Status
}

// Game is one chess session: a position, its undo and redo stacks, the two
// players and the square selected by an interactive client. It is not safe
// for concurrent use; the service serialises access.
type Game struct {
	pos        *position.Position
	initialFEN string
	undo       []position.UndoRecord
	redo       []position.Move
	players    map[core.Color]*core.Player
	selected   core.Square
	lastResult *MoveResult
}

func New(fen string, whitePlayer, blackPlayer *core.Player) (*Game, error) {
	if fen == "" {
		fen = position.StartingFEN
	}
	pos, err := position.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return &Game{
		pos:        pos,
		initialFEN: pos.FEN(),
		players: map[core.Color]*core.Player{
			core.White: whitePlayer,
			core.Black: blackPlayer,
		},
		selected: core.NoSquare,
	}, nil
}

// Reset replaces the position and clears all history. The game is left
// unchanged when fen does not parse.
func (g *Game) Reset(fen string) error {
	if fen == "" {
		fen = position.StartingFEN
	}
	pos, err := position.ParseFEN(fen)
	if err != nil {
		return err
	}
	g.pos = pos
	g.initialFEN = pos.FEN()
	g.undo = nil
	g.redo = nil
	g.selected = core.NoSquare
	g.lastResult = nil
	return nil
}

// MakeMove validates (from, to, promo) against the current legal moves and
// applies it. A successful move discards the redo stack.
func (g *Game) MakeMove(from, to core.Square, promo core.PieceType) (position.Move, error) {
	m, err := g.pos.ResolveMove(from, to, promo)
	if err != nil {
		return position.Move{}, err
	}
	g.apply(m)
	g.redo = g.redo[:0]
	return m, nil
}

// MakeMoveUCI is MakeMove for minimal notation such as "e2e4" or "e7e8q".
func (g *Game) MakeMoveUCI(text string) (position.Move, error) {
	from, to, promo, err := position.ParseUCI(text)
	if err != nil {
		return position.Move{}, err
	}
	return g.MakeMove(from, to, promo)
}

func (g *Game) apply(m position.Move) {
	mover := g.pos.SideToMove()
	g.undo = append(g.undo, g.pos.Apply(m))
	g.selected = core.NoSquare
	g.lastResult = &MoveResult{
		Move:   m.String(),
		Player: mover,
		Kind:   m.Kind,
		Status: g.pos.Status(),
	}
}

// Undo reverts the most recent move and pushes it onto the redo stack.
func (g *Game) Undo() error {
	if len(g.undo) == 0 {
		return core.ErrEmptyUndoStack
	}
	rec := g.undo[len(g.undo)-1]
	g.undo = g.undo[:len(g.undo)-1]
	g.pos.Undo(rec)
	g.redo = append(g.redo, rec.Move)
	g.selected = core.NoSquare
	g.lastResult = nil
	if m, ok := g.LastMove(); ok {
		g.lastResult = &MoveResult{
			Move:   m.String(),
			Player: g.pos.SideToMove().Opposite(),
			Kind:   m.Kind,
			Status: g.pos.Status(),
		}
	}
	return nil
}

// UndoMoves reverts count moves, or none if fewer are available.
func (g *Game) UndoMoves(count int) error {
	if count < 1 {
		return fmt.Errorf("invalid undo count: %d", count)
	}
	if available := len(g.undo); available < count {
		return fmt.Errorf("%w: cannot undo %d moves, only %d available", core.ErrEmptyUndoStack, count, available)
	}
	for i := 0; i < count; i++ {
		if err := g.Undo(); err != nil {
			return err
		}
	}
	return nil
}

// Redo replays the most recently undone move.
func (g *Game) Redo() (position.Move, error) {
	if len(g.redo) == 0 {
		return position.Move{}, core.ErrEmptyRedoStack
	}
	m := g.redo[len(g.redo)-1]
	g.redo = g.redo[:len(g.redo)-1]
	g.apply(m)
	return m, nil
}

func (g *Game) CanUndo() bool { return len(g.undo) > 0 }

func (g *Game) CanRedo() bool { return len(g.redo) > 0 }

// Select marks sq as the source of the next MoveSelectedTo. Only a square
// holding a piece of the side to move can be selected.
func (g *Game) Select(sq core.Square) bool {
	if !sq.Valid() {
		return false
	}
	piece := g.pos.Board.PieceAt(sq)
	if piece.IsEmpty() || piece.Color() != g.pos.SideToMove() {
		return false
	}
	g.selected = sq
	return true
}

func (g *Game) ClearSelection() {
	g.selected = core.NoSquare
}

// Selected returns the selected square, or core.NoSquare.
func (g *Game) Selected() core.Square {
	return g.selected
}

// MoveSelectedTo moves the selected piece to to. promo is a promotion letter
// (q, r, b, n) or 0; a promoting move without one is rejected.
func (g *Game) MoveSelectedTo(to core.Square, promo byte) (position.Move, error) {
	if g.selected == core.NoSquare {
		return position.Move{}, fmt.Errorf("%w: no piece selected", core.ErrIllegalMove)
	}
	pt := core.NoPieceType
	if promo != 0 {
		var ok bool
		if pt, ok = core.PromotionFromLetter(promo); !ok {
			return position.Move{}, fmt.Errorf("%w: bad promotion letter %q", core.ErrIllegalMove, promo)
		}
	}
	return g.MakeMove(g.selected, to, pt)
}

func (g *Game) LegalMoves() []position.Move {
	return g.pos.LegalMoves()
}

func (g *Game) LegalMovesFrom(sq core.Square) []position.Move {
	return g.pos.LegalMovesFrom(sq)
}

func (g *Game) Status() core.Status {
	return g.pos.Status()
}

func (g *Game) FEN() string {
	return g.pos.FEN()
}

func (g *Game) InitialFEN() string {
	return g.initialFEN
}

// Position returns a copy of the current position.
func (g *Game) Position() *position.Position {
	return g.pos.Clone()
}

func (g *Game) NextTurn() core.Color {
	return g.pos.SideToMove()
}

func (g *Game) NextPlayer() *core.Player {
	return g.players[g.NextTurn()]
}

func (g *Game) Player(c core.Color) *core.Player {
	return g.players[c]
}

// Moves returns the played moves in minimal notation, oldest first.
func (g *Game) Moves() []string {
	moves := make([]string, len(g.undo))
	for i, rec := range g.undo {
		moves[i] = rec.Move.String()
	}
	return moves
}

// LastMove returns the most recent move still on the undo stack.
func (g *Game) LastMove() (position.Move, bool) {
	if len(g.undo) == 0 {
		return position.Move{}, false
	}
	return g.undo[len(g.undo)-1].Move, true
}

func (g *Game) LastResult() *MoveResult {
	return g.lastResult
}
