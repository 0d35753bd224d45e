package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"

	"chessrules/internal/core"
	"chessrules/internal/service"
	httptransport "chessrules/internal/transport/http"
)

type stubHinter struct{ move string }

func (s stubHinter) BestMove(context.Context, string) (string, error) { return s.move, nil }

func startServer(t *testing.T, opts service.Options) *Client {
	t.Helper()
	svc := service.New(opts)
	app := httptransport.NewFiberApp(svc, true)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go app.Listener(ln)
	t.Cleanup(func() {
		app.Shutdown()
		svc.Close()
	})
	return New("http://" + ln.Addr().String())
}

var humans = core.CreateGameRequest{
	White: core.PlayerConfig{Type: core.PlayerHuman},
	Black: core.PlayerConfig{Type: core.PlayerHuman},
}

func TestGameLifecycle(t *testing.T) {
	c := startServer(t, service.Options{})
	ctx := context.Background()

	g, err := c.CreateGame(ctx, humans)
	if err != nil {
		t.Fatal(err)
	}
	if g.Turn != "w" || g.MoveCount != 0 {
		t.Fatalf("created %+v", g)
	}

	for _, mv := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		if g, err = c.MakeMove(ctx, g.GameID, mv); err != nil {
			t.Fatalf("%s: %v", mv, err)
		}
	}
	if g.Status != "checkmate" || g.MoveCount != 4 {
		t.Fatalf("after fool's mate %+v", g)
	}
	if _, err := c.MakeMove(ctx, g.GameID, "a2a3"); !errors.Is(err, core.ErrGameOver) {
		t.Fatalf("move after mate: %v", err)
	}

	if g, err = c.Undo(ctx, g.GameID, 2); err != nil || g.MoveCount != 2 {
		t.Fatalf("undo: %+v %v", g, err)
	}
	if g, err = c.Redo(ctx, g.GameID); err != nil || g.MoveCount != 3 || !g.CanRedo {
		t.Fatalf("redo: %+v %v", g, err)
	}

	board, err := c.Board(ctx, g.GameID)
	if err != nil || board.FEN != g.FEN || board.Board == "" {
		t.Fatalf("board: %+v %v", board, err)
	}

	if err := c.DeleteGame(ctx, g.GameID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetGame(ctx, g.GameID); !errors.Is(err, core.ErrGameNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}

func TestErrorsUnwrapToSentinels(t *testing.T) {
	c := startServer(t, service.Options{})
	ctx := context.Background()

	g, err := c.CreateGame(ctx, humans)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.MakeMove(ctx, g.GameID, "e2e5")
	if !errors.Is(err, core.ErrIllegalMove) {
		t.Fatalf("illegal move: %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 400 || apiErr.Code != core.ErrCodeInvalidMove {
		t.Fatalf("api error %+v", apiErr)
	}

	if _, err := c.Undo(ctx, g.GameID, 1); !errors.Is(err, core.ErrEmptyUndoStack) {
		t.Fatalf("undo: %v", err)
	}
	if _, err := c.Redo(ctx, g.GameID); !errors.Is(err, core.ErrEmptyRedoStack) {
		t.Fatalf("redo: %v", err)
	}
	if _, err := c.Hint(ctx, g.GameID); !errors.Is(err, core.ErrEngineUnavailable) {
		t.Fatalf("hint: %v", err)
	}
	if _, err := c.GetGame(ctx, uuid.New().String()); !errors.Is(err, core.ErrGameNotFound) {
		t.Fatalf("unknown game: %v", err)
	}

	bad := core.CreateGameRequest{White: humans.White, Black: humans.Black, FEN: "8/8/8 w - - 0 1"}
	if _, err := c.CreateGame(ctx, bad); !errors.Is(err, core.ErrMalformedFEN) {
		t.Fatalf("bad fen: %v", err)
	}
}

func TestLegalMovesFromSquare(t *testing.T) {
	c := startServer(t, service.Options{})
	ctx := context.Background()

	g, err := c.CreateGame(ctx, humans)
	if err != nil {
		t.Fatal(err)
	}
	all, err := c.LegalMoves(ctx, g.GameID, "")
	if err != nil || len(all.Moves) != 20 {
		t.Fatalf("all moves: %+v %v", all, err)
	}
	knight, err := c.LegalMoves(ctx, g.GameID, "g1")
	if err != nil || len(knight.Moves) != 2 {
		t.Fatalf("g1 moves: %+v %v", knight, err)
	}
}

func TestComputerMoveAndHint(t *testing.T) {
	c := startServer(t, service.Options{Hinter: stubHinter{move: "e7e5"}})
	ctx := context.Background()

	g, err := c.CreateGame(ctx, core.CreateGameRequest{
		White: core.PlayerConfig{Type: core.PlayerHuman},
		Black: core.PlayerConfig{Type: core.PlayerComputer},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.MakeComputerMove(ctx, g.GameID); !errors.Is(err, core.ErrNotComputerTurn) {
		t.Fatalf("computer on white's turn: %v", err)
	}
	if _, err := c.MakeMove(ctx, g.GameID, "e2e4"); err != nil {
		t.Fatal(err)
	}

	hint, err := c.Hint(ctx, g.GameID)
	if err != nil || hint.Move != "e7e5" {
		t.Fatalf("hint: %+v %v", hint, err)
	}
	g, err = c.MakeComputerMove(ctx, g.GameID)
	if err != nil {
		t.Fatal(err)
	}
	if g.LastMove == nil || g.LastMove.Move != "e7e5" || g.LastMove.PlayerColor != "b" {
		t.Fatalf("computer move %+v", g.LastMove)
	}
}

func TestSelectionAndReset(t *testing.T) {
	c := startServer(t, service.Options{})
	ctx := context.Background()

	g, err := c.CreateGame(ctx, humans)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Select(ctx, g.GameID, "e7"); !errors.Is(err, core.ErrIllegalMove) {
		t.Fatalf("select black piece on white's turn: %v", err)
	}
	sel, err := c.Select(ctx, g.GameID, "g1")
	if err != nil || len(sel.Targets) != 2 || sel.Targets[0] != "f3" || sel.Targets[1] != "h3" {
		t.Fatalf("select g1: %+v %v", sel, err)
	}
	if err := c.ClearSelection(ctx, g.GameID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.MoveSelected(ctx, g.GameID, "f3", ""); !errors.Is(err, core.ErrIllegalMove) {
		t.Fatalf("move after clear: %v", err)
	}
	if _, err := c.Select(ctx, g.GameID, "g1"); err != nil {
		t.Fatal(err)
	}
	if g, err = c.MoveSelected(ctx, g.GameID, "f3", ""); err != nil || g.MoveCount != 1 {
		t.Fatalf("move selected: %+v %v", g, err)
	}

	fen := "4k3/8/8/8/8/8/8/4K2R w K - 0 1"
	reset, err := c.ResetGame(ctx, g.GameID, fen)
	if err != nil || reset.FEN != fen || reset.MoveCount != 0 || reset.InitialFEN != fen {
		t.Fatalf("reset: %+v %v", reset, err)
	}
	if _, err := c.ResetGame(ctx, g.GameID, "nonsense"); !errors.Is(err, core.ErrMalformedFEN) {
		t.Fatalf("bad reset: %v", err)
	}
}

func TestWaitForUpdate(t *testing.T) {
	c := startServer(t, service.Options{})
	ctx := context.Background()

	g, err := c.CreateGame(ctx, humans)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan *core.GameResponse, 1)
	go func() {
		resp, err := c.WaitForUpdate(ctx, g.GameID, 0)
		if err != nil {
			t.Error(err)
		}
		done <- resp
	}()

	// Give the poll time to register before moving.
	time.Sleep(100 * time.Millisecond)
	if _, err := c.MakeMove(ctx, g.GameID, "d2d4"); err != nil {
		t.Fatal(err)
	}

	select {
	case resp := <-done:
		if resp == nil || resp.MoveCount != 1 {
			t.Fatalf("woke with %+v", resp)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("long poll did not wake")
	}
}

func TestHealth(t *testing.T) {
	c := startServer(t, service.Options{})
	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if h["status"] == nil {
		t.Fatalf("health %v", h)
	}
}

func TestUnreachableServer(t *testing.T) {
	c := New("http://127.0.0.1:1", WithTimeout(time.Second))
	_, err := c.GetGame(context.Background(), uuid.New().String())
	var apiErr *APIError
	if err == nil || errors.As(err, &apiErr) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
