package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chessrules/internal/storage"
)

func TestInitQueryMovesDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")
	var out bytes.Buffer

	if err := Run([]string{"init", "-path", path}, &out); err != nil {
		t.Fatal(err)
	}
	if err := Run([]string{"query", "-path", path}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No games found") {
		t.Fatalf("query output:\n%s", out.String())
	}

	store, err := storage.NewStore(path, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	store.RecordNewGame(storage.GameRecord{
		GameID:        "0f0e0d0c-aaaa-bbbb-cccc-000000000001",
		InitialFEN:    "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		WhitePlayerID: "white-player",
		WhiteType:     1,
		BlackPlayerID: "black-player",
		BlackType:     2,
		StartTimeUTC:  time.Now().UTC(),
	})
	store.RecordMove(storage.MoveRecord{
		GameID:       "0f0e0d0c-aaaa-bbbb-cccc-000000000001",
		MoveNumber:   1,
		MoveUCI:      "e2e4",
		MoveKind:     "double-pawn-push",
		FENAfterMove: "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		StatusAfter:  "playing",
		PlayerColor:  "w",
		MoveTimeUTC:  time.Now().UTC(),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	store.Close()

	out.Reset()
	if err := Run([]string{"query", "-path", path, "-playerId", "black-player"}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "0f0e0d0c...") || !strings.Contains(out.String(), "Found 1 game(s)") {
		t.Fatalf("query output:\n%s", out.String())
	}

	out.Reset()
	if err := Run([]string{"moves", "-path", path, "-gameId", "0f0e0d0c-aaaa-bbbb-cccc-000000000001"}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "double-pawn-push") {
		t.Fatalf("moves output:\n%s", out.String())
	}

	if err := Run([]string{"delete", "-path", path}, &out); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("database still present: %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	var out bytes.Buffer
	for _, args := range [][]string{
		nil,
		{"vacuum"},
		{"init"},
		{"moves", "-path", filepath.Join(t.TempDir(), "x.db")},
	} {
		if err := Run(args, &out); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}
