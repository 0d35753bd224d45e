package game

import (
	"errors"
	"testing"

	"chessrules/internal/core"
	"chessrules/internal/position"
)

func newGame(t *testing.T, fen string) *Game {
	t.Helper()
	white := core.NewPlayer(core.PlayerConfig{Type: core.PlayerHuman}, core.White)
	black := core.NewPlayer(core.PlayerConfig{Type: core.PlayerHuman}, core.Black)
	g, err := New(fen, white, black)
	if err != nil {
		t.Fatalf("New(%q): %v", fen, err)
	}
	return g
}

func square(t *testing.T, name string) core.Square {
	t.Helper()
	sq, err := core.ParseSquare(name)
	if err != nil {
		t.Fatal(err)
	}
	return sq
}

func TestNewRejectsMalformedFEN(t *testing.T) {
	if _, err := New("not a fen", nil, nil); !errors.Is(err, core.ErrMalformedFEN) {
		t.Fatalf("got %v", err)
	}
}

func TestUndoOnFreshGame(t *testing.T) {
	g := newGame(t, "")
	if err := g.Undo(); !errors.Is(err, core.ErrEmptyUndoStack) {
		t.Fatalf("got %v", err)
	}
	if g.FEN() != position.StartingFEN {
		t.Fatalf("undo changed the position: %q", g.FEN())
	}
	if _, err := g.Redo(); !errors.Is(err, core.ErrEmptyRedoStack) {
		t.Fatalf("got %v", err)
	}
}

func TestMakeMoveUndoRedo(t *testing.T) {
	g := newGame(t, "")
	for _, mv := range []string{"e2e4", "e7e5", "g1f3"} {
		if _, err := g.MakeMoveUCI(mv); err != nil {
			t.Fatalf("%s: %v", mv, err)
		}
	}
	afterThree := g.FEN()
	if got := g.Moves(); len(got) != 3 || got[2] != "g1f3" {
		t.Fatalf("moves: %v", got)
	}

	if err := g.UndoMoves(2); err != nil {
		t.Fatal(err)
	}
	if g.FEN() != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1" {
		t.Fatalf("after undo: %q", g.FEN())
	}
	if !g.CanRedo() || !g.CanUndo() {
		t.Fatal("expected both stacks non-empty")
	}

	for i := 0; i < 2; i++ {
		if _, err := g.Redo(); err != nil {
			t.Fatal(err)
		}
	}
	if g.FEN() != afterThree {
		t.Fatalf("after redo: %q want %q", g.FEN(), afterThree)
	}
	if g.CanRedo() {
		t.Fatal("redo stack not drained")
	}
}

func TestUndoKeepsPreviousLastResult(t *testing.T) {
	g := newGame(t, "")
	for _, mv := range []string{"f2f3", "e7e5", "g2g4"} {
		if _, err := g.MakeMoveUCI(mv); err != nil {
			t.Fatalf("%s: %v", mv, err)
		}
	}
	if err := g.Undo(); err != nil {
		t.Fatal(err)
	}
	res := g.LastResult()
	if res == nil || res.Move != "e7e5" || res.Player != core.Black || res.Kind != position.DoublePawnPush {
		t.Fatalf("after one undo: %+v", res)
	}
	if res.Status != core.StatusPlaying {
		t.Fatalf("status %v", res.Status)
	}

	if err := g.UndoMoves(2); err != nil {
		t.Fatal(err)
	}
	if g.LastResult() != nil {
		t.Fatalf("fresh position still reports %+v", g.LastResult())
	}
}

func TestMoveClearsRedo(t *testing.T) {
	g := newGame(t, "")
	g.MakeMoveUCI("e2e4")
	g.Undo()
	if !g.CanRedo() {
		t.Fatal("expected redo")
	}
	if _, err := g.MakeMoveUCI("d2d4"); err != nil {
		t.Fatal(err)
	}
	if g.CanRedo() {
		t.Fatal("new move kept the redo stack")
	}
}

func TestUndoMovesAllOrNothing(t *testing.T) {
	g := newGame(t, "")
	g.MakeMoveUCI("e2e4")
	before := g.FEN()
	if err := g.UndoMoves(2); !errors.Is(err, core.ErrEmptyUndoStack) {
		t.Fatalf("got %v", err)
	}
	if g.FEN() != before {
		t.Fatal("partial undo")
	}
	if err := g.UndoMoves(0); err == nil {
		t.Fatal("zero count accepted")
	}
}

func TestIllegalMoveLeavesGameUnchanged(t *testing.T) {
	g := newGame(t, "")
	for _, mv := range []string{"e2e5", "e7e5", "e1e2", "bogus"} {
		if _, err := g.MakeMoveUCI(mv); !errors.Is(err, core.ErrIllegalMove) {
			t.Fatalf("%s: got %v", mv, err)
		}
	}
	if g.FEN() != position.StartingFEN || g.CanUndo() {
		t.Fatal("rejected move mutated the game")
	}
}

func TestSelection(t *testing.T) {
	g := newGame(t, "")
	if g.Select(square(t, "e7")) {
		t.Fatal("selected an opponent piece")
	}
	if g.Select(square(t, "e4")) {
		t.Fatal("selected an empty square")
	}
	if !g.Select(square(t, "g1")) {
		t.Fatal("could not select own knight")
	}
	if g.Selected() != square(t, "g1") {
		t.Fatalf("selected %v", g.Selected())
	}
	if _, err := g.MoveSelectedTo(square(t, "g3"), 0); !errors.Is(err, core.ErrIllegalMove) {
		t.Fatalf("got %v", err)
	}
	m, err := g.MoveSelectedTo(square(t, "f3"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != "g1f3" {
		t.Fatalf("moved %s", m)
	}
	if g.Selected() != core.NoSquare {
		t.Fatal("selection kept after move")
	}
	if _, err := g.MoveSelectedTo(square(t, "f6"), 0); !errors.Is(err, core.ErrIllegalMove) {
		t.Fatalf("move without selection: %v", err)
	}
}

func TestMoveSelectedPromotion(t *testing.T) {
	g := newGame(t, "1n5k/P7/8/8/8/8/8/7K w - - 0 1")
	g.Select(square(t, "a7"))
	if _, err := g.MoveSelectedTo(square(t, "a8"), 0); !errors.Is(err, core.ErrIllegalMove) {
		t.Fatalf("promotion without letter: %v", err)
	}
	if _, err := g.MoveSelectedTo(square(t, "a8"), 'k'); !errors.Is(err, core.ErrIllegalMove) {
		t.Fatalf("king promotion: %v", err)
	}
	m, err := g.MoveSelectedTo(square(t, "b8"), 'R')
	if err != nil {
		t.Fatal(err)
	}
	if m.Promotion != core.Rook || m.String() != "a7b8r" {
		t.Fatalf("got %s", m)
	}
}

func TestStatusAndLastResult(t *testing.T) {
	g := newGame(t, "")
	for _, mv := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		if _, err := g.MakeMoveUCI(mv); err != nil {
			t.Fatal(err)
		}
	}
	if g.Status() != core.StatusCheckmate {
		t.Fatalf("status %v", g.Status())
	}
	res := g.LastResult()
	if res == nil || res.Move != "d8h4" || res.Player != core.Black || res.Status != core.StatusCheckmate {
		t.Fatalf("last result %+v", res)
	}
	if len(g.LegalMoves()) != 0 {
		t.Fatal("moves after checkmate")
	}
	g.Undo()
	if g.Status() != core.StatusPlaying || g.LastResult() != nil {
		t.Fatal("undo did not clear the result")
	}
	if last, ok := g.LastMove(); !ok || last.String() != "g2g4" {
		t.Fatalf("last move %v", last)
	}
}

func TestReset(t *testing.T) {
	g := newGame(t, "")
	g.MakeMoveUCI("e2e4")
	g.Select(square(t, "e7"))
	if err := g.Reset("garbage"); err == nil {
		t.Fatal("reset accepted garbage")
	}
	if len(g.Moves()) != 1 {
		t.Fatal("failed reset touched the game")
	}
	const fen = "4k3/8/8/8/8/8/8/4K3 w - - 0 1"
	if err := g.Reset(fen); err != nil {
		t.Fatal(err)
	}
	if g.FEN() != fen || g.InitialFEN() != fen || g.CanUndo() || g.CanRedo() {
		t.Fatal("reset left history behind")
	}
	if g.Selected() != core.NoSquare {
		t.Fatal("reset kept selection")
	}
}

func TestPlayers(t *testing.T) {
	g := newGame(t, "")
	if g.NextPlayer() != g.Player(core.White) {
		t.Fatal("white does not move first")
	}
	g.MakeMoveUCI("e2e4")
	if g.NextPlayer().Color != core.Black {
		t.Fatal("black is not next")
	}
}
