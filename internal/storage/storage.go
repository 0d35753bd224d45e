package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var ErrQueueFull = errors.New("storage write queue full")

// Store handles SQLite database operations with async writes. A failed write
// marks the store degraded; later writes are dropped so gameplay never waits
// on the database.
type Store struct {
	db           *sql.DB
	path         string
	writeChan    chan func(*sql.Tx) error
	healthStatus atomic.Bool
	log          *zap.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewStore creates a new storage instance with async writer
func NewStore(dataSourceName string, devMode bool, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode in development for better concurrency
	if devMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithCancel(context.Background())

	s := &Store{
		db:        db,
		path:      dataSourceName,
		writeChan: make(chan func(*sql.Tx) error, 1000),
		log:       log.Named("storage"),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.healthStatus.Store(true)

	s.wg.Add(1)
	go s.writerLoop()

	return s, nil
}

// writerLoop processes async write operations
func (s *Store) writerLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			// Drain remaining writes with timeout
			deadline := time.After(2 * time.Second)
			for {
				select {
				case fn := <-s.writeChan:
					if s.healthStatus.Load() {
						s.executeWrite(fn)
					}
				case <-deadline:
					return
				default:
					return
				}
			}

		case fn := <-s.writeChan:
			if !s.healthStatus.Load() {
				continue
			}
			s.executeWrite(fn)
		}
	}
}

// executeWrite runs a transactional write operation
func (s *Store) executeWrite(fn func(*sql.Tx) error) {
	tx, err := s.db.Begin()
	if err != nil {
		s.degrade("begin transaction", err)
		return
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		s.degrade("write", err)
		return
	}

	if err := tx.Commit(); err != nil {
		s.degrade("commit", err)
	}
}

func (s *Store) degrade(op string, err error) {
	s.log.Error("storage degraded", zap.String("op", op), zap.Error(err))
	s.healthStatus.Store(false)
}

func (s *Store) enqueue(what string, fn func(*sql.Tx) error) error {
	if !s.healthStatus.Load() {
		return nil
	}
	select {
	case s.writeChan <- fn:
		return nil
	default:
		s.log.Warn("write queue full, dropping", zap.String("record", what))
		return ErrQueueFull
	}
}

// RecordNewGame asynchronously records a new game
func (s *Store) RecordNewGame(record GameRecord) error {
	return s.enqueue("game", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO games (
			game_id, initial_fen,
			white_player_id, white_type,
			black_player_id, black_type,
			start_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			record.GameID, record.InitialFEN,
			record.WhitePlayerID, record.WhiteType,
			record.BlackPlayerID, record.BlackType,
			record.StartTimeUTC,
		)
		return err
	})
}

// RecordMove asynchronously records a move. A move replacing an undone one
// with the same number overwrites it.
func (s *Store) RecordMove(record MoveRecord) error {
	return s.enqueue("move", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT OR REPLACE INTO moves (
			game_id, move_number, move_uci, move_kind, fen_after_move, status_after, player_color, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			record.GameID, record.MoveNumber, record.MoveUCI, record.MoveKind,
			record.FENAfterMove, record.StatusAfter, record.PlayerColor, record.MoveTimeUTC,
		)
		return err
	})
}

// DeleteUndoneMoves asynchronously deletes moves numbered after afterMoveNumber
func (s *Store) DeleteUndoneMoves(gameID string, afterMoveNumber int) error {
	return s.enqueue("undo", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM moves WHERE game_id = ? AND move_number > ?`, gameID, afterMoveNumber)
		return err
	})
}

// ResetGame asynchronously drops a game's moves and records its new start
// position.
func (s *Store) ResetGame(gameID, initialFEN string) error {
	return s.enqueue("reset", func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM moves WHERE game_id = ?`, gameID); err != nil {
			return err
		}
		_, err := tx.Exec(`UPDATE games SET initial_fen = ?, start_time_utc = ? WHERE game_id = ?`,
			initialFEN, time.Now().UTC(), gameID)
		return err
	})
}

// DeleteGame asynchronously removes a game and its moves
func (s *Store) DeleteGame(gameID string) error {
	return s.enqueue("delete", func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM moves WHERE game_id = ?`, gameID); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM games WHERE game_id = ?`, gameID)
		return err
	})
}

// Flush blocks until every write queued before the call has been executed.
// A degraded store has nothing to flush.
func (s *Store) Flush(ctx context.Context) error {
	if !s.healthStatus.Load() {
		return nil
	}
	done := make(chan struct{})
	marker := func(*sql.Tx) error {
		close(done)
		return nil
	}
	select {
	case s.writeChan <- marker:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsHealthy returns the current health status
func (s *Store) IsHealthy() bool {
	return s.healthStatus.Load()
}

// Close gracefully closes the database connection
func (s *Store) Close() error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.log.Warn("storage writer shutdown timeout, some writes may be lost")
	}

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitDB creates the database schema
func (s *Store) InitDB() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return tx.Commit()
}

// DeleteDB removes the database file
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	// ☣ DESTRUCTIVE: Removes database file
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database file: %w", err)
	}

	return nil
}

// QueryGames retrieves games with optional filtering; "" or "*" matches all.
func (s *Store) QueryGames(gameID, playerID string) ([]GameRecord, error) {
	query := `SELECT
		game_id, initial_fen,
		white_player_id, white_type,
		black_player_id, black_type,
		start_time_utc
	FROM games WHERE 1=1`

	var args []interface{}

	if gameID != "" && gameID != "*" {
		query += " AND game_id = ?"
		args = append(args, gameID)
	}

	if playerID != "" && playerID != "*" {
		query += " AND (white_player_id = ? OR black_player_id = ?)"
		args = append(args, playerID, playerID)
	}

	query += " ORDER BY start_time_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		err := rows.Scan(
			&g.GameID, &g.InitialFEN,
			&g.WhitePlayerID, &g.WhiteType,
			&g.BlackPlayerID, &g.BlackType,
			&g.StartTimeUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return games, nil
}

// GameMoves returns the recorded moves of a game in play order.
func (s *Store) GameMoves(gameID string) ([]MoveRecord, error) {
	rows, err := s.db.Query(`SELECT
		move_id, game_id, move_number, move_uci, move_kind, fen_after_move, status_after, player_color, move_time_utc
	FROM moves WHERE game_id = ? ORDER BY move_number`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(&m.MoveID, &m.GameID, &m.MoveNumber, &m.MoveUCI, &m.MoveKind,
			&m.FENAfterMove, &m.StatusAfter, &m.PlayerColor, &m.MoveTimeUTC); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return moves, nil
}
