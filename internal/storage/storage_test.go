package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "chess.db"), true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.InitDB(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatal(err)
	}
}

func move(gameID string, n int, uci, color string) MoveRecord {
	return MoveRecord{
		GameID:       gameID,
		MoveNumber:   n,
		MoveUCI:      uci,
		MoveKind:     "quiet",
		FENAfterMove: "8/8/8/8/8/8/8/8 w - - 0 1",
		StatusAfter:  "playing",
		PlayerColor:  color,
		MoveTimeUTC:  time.Now().UTC(),
	}
}

func TestRecordAndQuery(t *testing.T) {
	s := openStore(t)
	s.RecordNewGame(GameRecord{
		GameID:        "g1",
		InitialFEN:    "start",
		WhitePlayerID: "alice",
		WhiteType:     1,
		BlackPlayerID: "bob",
		BlackType:     2,
		StartTimeUTC:  time.Now().UTC(),
	})
	s.RecordNewGame(GameRecord{GameID: "g2", InitialFEN: "start", WhitePlayerID: "carol", BlackPlayerID: "dave", StartTimeUTC: time.Now().UTC()})
	s.RecordMove(move("g1", 1, "e2e4", "w"))
	s.RecordMove(move("g1", 2, "e7e5", "b"))
	flush(t, s)

	games, err := s.QueryGames("*", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 1 || games[0].GameID != "g1" || games[0].BlackType != 2 {
		t.Fatalf("games %+v", games)
	}
	all, err := s.QueryGames("", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d games", len(all))
	}

	moves, err := s.GameMoves("g1")
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 2 || moves[0].MoveUCI != "e2e4" || moves[1].PlayerColor != "b" {
		t.Fatalf("moves %+v", moves)
	}
	if !s.IsHealthy() {
		t.Fatal("store degraded")
	}
}

func TestUndoneMovesAreReplaced(t *testing.T) {
	s := openStore(t)
	s.RecordNewGame(GameRecord{GameID: "g", InitialFEN: "start", WhitePlayerID: "w", BlackPlayerID: "b", StartTimeUTC: time.Now().UTC()})
	s.RecordMove(move("g", 1, "e2e4", "w"))
	s.RecordMove(move("g", 2, "e7e5", "b"))
	s.RecordMove(move("g", 3, "g1f3", "w"))
	s.DeleteUndoneMoves("g", 1)
	s.RecordMove(move("g", 2, "c7c5", "b"))
	flush(t, s)

	moves, err := s.GameMoves("g")
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 2 || moves[1].MoveUCI != "c7c5" {
		t.Fatalf("moves %+v", moves)
	}
}

func TestResetGame(t *testing.T) {
	s := openStore(t)
	s.RecordNewGame(GameRecord{GameID: "g", InitialFEN: "start", WhitePlayerID: "w", BlackPlayerID: "b", StartTimeUTC: time.Now().UTC()})
	s.RecordMove(move("g", 1, "e2e4", "w"))
	s.ResetGame("g", "8/8/8/8/8/8/8/K6k w - - 0 1")
	flush(t, s)

	games, err := s.QueryGames("g", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 1 || games[0].InitialFEN != "8/8/8/8/8/8/8/K6k w - - 0 1" {
		t.Fatalf("games %+v", games)
	}
	if moves, _ := s.GameMoves("g"); len(moves) != 0 {
		t.Fatalf("moves survived the reset: %+v", moves)
	}
}

func TestDeleteGame(t *testing.T) {
	s := openStore(t)
	s.RecordNewGame(GameRecord{GameID: "g", InitialFEN: "start", WhitePlayerID: "w", BlackPlayerID: "b", StartTimeUTC: time.Now().UTC()})
	s.RecordMove(move("g", 1, "e2e4", "w"))
	s.DeleteGame("g")
	flush(t, s)

	games, _ := s.QueryGames("g", "")
	moves, _ := s.GameMoves("g")
	if len(games) != 0 || len(moves) != 0 {
		t.Fatalf("leftovers: %v %v", games, moves)
	}
}

func TestFailedWriteDegrades(t *testing.T) {
	s := openStore(t)
	// Status outside the CHECK constraint.
	bad := move("g", 1, "e2e4", "w")
	bad.StatusAfter = "resigned"
	s.RecordNewGame(GameRecord{GameID: "g", InitialFEN: "start", WhitePlayerID: "w", BlackPlayerID: "b", StartTimeUTC: time.Now().UTC()})
	s.RecordMove(bad)

	deadline := time.Now().Add(5 * time.Second)
	for s.IsHealthy() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.IsHealthy() {
		t.Fatal("store still healthy after a failed write")
	}
	if err := s.RecordMove(move("g", 2, "e7e5", "b")); err != nil {
		t.Fatalf("degraded store should drop silently: %v", err)
	}
}

func TestDeleteDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.db")
	s, err := NewStore(path, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.InitDB(); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteDB(); err != nil {
		t.Fatal(err)
	}
	reopened, err := NewStore(path, false, nil)
	if err != nil {
		t.Fatalf("reopen after delete: %v", err)
	}
	reopened.Close()
}
