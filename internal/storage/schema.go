package storage

import "time"

// GameRecord represents a row in the games table
type GameRecord struct {
	GameID        string    `db:"game_id"`
	InitialFEN    string    `db:"initial_fen"`
	WhitePlayerID string    `db:"white_player_id"`
	WhiteType     int       `db:"white_type"`
	BlackPlayerID string    `db:"black_player_id"`
	BlackType     int       `db:"black_type"`
	StartTimeUTC  time.Time `db:"start_time_utc"`
}

// MoveRecord represents a row in the moves table
type MoveRecord struct {
	MoveID       int64     `db:"move_id"`
	GameID       string    `db:"game_id"`
	MoveNumber   int       `db:"move_number"`
	MoveUCI      string    `db:"move_uci"`
	MoveKind     string    `db:"move_kind"`
	FENAfterMove string    `db:"fen_after_move"`
	StatusAfter  string    `db:"status_after"`
	PlayerColor  string    `db:"player_color"` // "w" or "b"
	MoveTimeUTC  time.Time `db:"move_time_utc"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	initial_fen TEXT NOT NULL,
	white_player_id TEXT NOT NULL,
	white_type INTEGER NOT NULL,
	black_player_id TEXT NOT NULL,
	black_type INTEGER NOT NULL,
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id TEXT NOT NULL,
	move_number INTEGER NOT NULL,
	move_uci TEXT NOT NULL,
	move_kind TEXT NOT NULL,
	fen_after_move TEXT NOT NULL,
	status_after TEXT NOT NULL CHECK(status_after IN ('playing', 'check', 'checkmate', 'stalemate')),
	player_color TEXT NOT NULL CHECK(player_color IN ('w', 'b')),
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE,
	UNIQUE(game_id, move_number)
);

CREATE INDEX IF NOT EXISTS idx_moves_game_id ON moves(game_id);
CREATE INDEX IF NOT EXISTS idx_games_white_player ON games(white_player_id);
CREATE INDEX IF NOT EXISTS idx_games_black_player ON games(black_player_id);
`
