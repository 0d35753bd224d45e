package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chessrules/internal/core"
	"chessrules/internal/game"
	"chessrules/internal/position"
	"chessrules/internal/storage"
)

// CreateGame starts a game from req.FEN (the standard position when empty).
func (s *Service) CreateGame(ctx context.Context, req core.CreateGameRequest) (*core.GameResponse, error) {
	white := core.NewPlayer(req.White, core.White)
	black := core.NewPlayer(req.Black, core.Black)

	g, err := game.New(req.FEN, white, black)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.generateGameID()
	s.games[id] = g

	if s.store != nil {
		s.store.RecordNewGame(storage.GameRecord{
			GameID:        id,
			InitialFEN:    g.InitialFEN(),
			WhitePlayerID: white.ID,
			WhiteType:     int(white.Type),
			BlackPlayerID: black.ID,
			BlackType:     int(black.Type),
			StartTimeUTC:  time.Now().UTC(),
		})
	}
	s.mirror(id, g)

	s.log.Info("game created",
		zap.String("game_id", id),
		zap.String("fen", g.InitialFEN()),
		zap.Stringer("white", white.Type),
		zap.Stringer("black", black.Type))
	return snapshot(id, g), nil
}

// generateGameID creates a new unique game ID. Called with mu held.
func (s *Service) generateGameID() string {
	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// GetGame returns the current state of a game.
func (s *Service) GetGame(ctx context.Context, gameID string) (*core.GameResponse, error) {
	g, err := s.lookup(ctx, gameID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(gameID, g), nil
}

// MakeMove plays a move given in minimal notation for the human to move.
func (s *Service) MakeMove(ctx context.Context, gameID, uci string) (*core.GameResponse, error) {
	g, err := s.lookup(ctx, gameID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := humanToMove(g); err != nil {
		return nil, err
	}
	m, err := g.MakeMoveUCI(uci)
	if err != nil {
		return nil, err
	}
	s.afterMove(gameID, g, m)
	return snapshot(gameID, g), nil
}

// humanToMove rejects a move when the game is over or a computer holds the
// seat to move. Called with mu held.
func humanToMove(g *game.Game) error {
	if status := g.Status(); status.IsTerminal() {
		return fmt.Errorf("%w: %s", core.ErrGameOver, status)
	}
	if p := g.NextPlayer(); p != nil && p.Type == core.PlayerComputer {
		return core.ErrNotHumanTurn
	}
	return nil
}

// MakeComputerMove asks the engine for the side to move and plays its answer
// through the same legality check as a human move. The lock is not held
// while the engine searches; if the game changed meanwhile the move is
// discarded with core.ErrPositionChanged.
func (s *Service) MakeComputerMove(ctx context.Context, gameID string) (*core.GameResponse, error) {
	if s.hinter == nil {
		return nil, core.ErrEngineUnavailable
	}
	g, err := s.lookup(ctx, gameID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	fen := g.FEN()
	status := g.Status()
	next := g.NextPlayer()
	s.mu.Unlock()

	if status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", core.ErrGameOver, status)
	}
	if next == nil || next.Type != core.PlayerComputer {
		return nil, core.ErrNotComputerTurn
	}

	uci, err := s.hinter.BestMove(ctx, fen)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if g.FEN() != fen {
		return nil, core.ErrPositionChanged
	}
	m, err := g.MakeMoveUCI(uci)
	if err != nil {
		s.log.Warn("engine suggested an illegal move", zap.String("fen", fen), zap.String("move", uci))
		return nil, fmt.Errorf("engine move %s: %w", uci, err)
	}
	s.afterMove(gameID, g, m)
	return snapshot(gameID, g), nil
}

// afterMove fans a played move out to history, mirror and waiters. Called
// with mu held.
func (s *Service) afterMove(gameID string, g *game.Game, m position.Move) {
	res := g.LastResult()
	if s.store != nil {
		s.store.RecordMove(storage.MoveRecord{
			GameID:       gameID,
			MoveNumber:   len(g.Moves()),
			MoveUCI:      m.String(),
			MoveKind:     m.Kind.String(),
			FENAfterMove: g.FEN(),
			StatusAfter:  res.Status.String(),
			PlayerColor:  res.Player.String(),
			MoveTimeUTC:  time.Now().UTC(),
		})
	}
	s.mirror(gameID, g)
	s.waiter.NotifyGame(gameID)

	if res.Status.IsTerminal() {
		s.log.Info("game over", zap.String("game_id", gameID), zap.Stringer("status", res.Status))
	}
}

// Hint returns the engine's suggestion for the side to move. The suggestion
// is checked against the legal moves before it is returned.
func (s *Service) Hint(ctx context.Context, gameID string) (*core.HintResponse, error) {
	if s.hinter == nil {
		return nil, core.ErrEngineUnavailable
	}
	g, err := s.lookup(ctx, gameID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	pos := g.Position()
	s.mu.Unlock()

	if pos.Status().IsTerminal() {
		return nil, fmt.Errorf("%w: %s", core.ErrGameOver, pos.Status())
	}
	fen := pos.FEN()
	uci, err := s.hinter.BestMove(ctx, fen)
	if err != nil {
		return nil, err
	}
	m, err := pos.ResolveUCI(uci)
	if err != nil {
		return nil, fmt.Errorf("engine hint %s: %w", uci, err)
	}
	return &core.HintResponse{FEN: fen, Move: m.String()}, nil
}

// Undo takes back count moves (at least one).
func (s *Service) Undo(ctx context.Context, gameID string, count int) (*core.GameResponse, error) {
	if count < 1 {
		count = 1
	}
	g, err := s.lookup(ctx, gameID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := g.UndoMoves(count); err != nil {
		return nil, err
	}
	if s.store != nil {
		s.store.DeleteUndoneMoves(gameID, len(g.Moves()))
	}
	s.mirror(gameID, g)
	s.waiter.NotifyGame(gameID)
	return snapshot(gameID, g), nil
}

// Redo replays the most recently undone move.
func (s *Service) Redo(ctx context.Context, gameID string) (*core.GameResponse, error) {
	g, err := s.lookup(ctx, gameID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := g.Redo()
	if err != nil {
		return nil, err
	}
	s.afterMove(gameID, g, m)
	return snapshot(gameID, g), nil
}

// LegalMoves lists the legal moves, optionally only those from one square.
func (s *Service) LegalMoves(ctx context.Context, gameID, from string) (*core.LegalMovesResponse, error) {
	g, err := s.lookup(ctx, gameID)
	if err != nil {
		return nil, err
	}

	var fromSq core.Square = core.NoSquare
	if from != "" {
		if fromSq, err = core.ParseSquare(from); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrIllegalMove, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var moves []position.Move
	if fromSq == core.NoSquare {
		moves = g.LegalMoves()
	} else {
		moves = g.LegalMovesFrom(fromSq)
	}
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return &core.LegalMovesResponse{FEN: g.FEN(), From: from, Moves: out}, nil
}

// Board returns the FEN and a text diagram of the current position.
func (s *Service) Board(ctx context.Context, gameID string) (*core.BoardResponse, error) {
	g, err := s.lookup(ctx, gameID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := g.Position()
	return &core.BoardResponse{FEN: pos.FEN(), Board: pos.Board.ASCII()}, nil
}

// Select picks up the piece on square for the side to move and lists the
// squares it can reach. A piece with no legal move cannot be selected.
func (s *Service) Select(ctx context.Context, gameID, square string) (*core.SelectionResponse, error) {
	g, err := s.lookup(ctx, gameID)
	if err != nil {
		return nil, err
	}
	sq, err := core.ParseSquare(square)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIllegalMove, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !g.Select(sq) {
		return nil, fmt.Errorf("%w: no %s piece on %s", core.ErrIllegalMove, g.NextTurn().Name(), sq)
	}
	moves := g.LegalMovesFrom(sq)
	if len(moves) == 0 {
		g.ClearSelection()
		return nil, fmt.Errorf("%w: no legal moves from %s", core.ErrIllegalMove, sq)
	}

	seen := make(map[core.Square]bool, len(moves))
	targets := make([]string, 0, len(moves))
	for _, m := range moves {
		if !seen[m.To] {
			seen[m.To] = true
			targets = append(targets, m.To.String())
		}
	}
	sort.Strings(targets)
	return &core.SelectionResponse{FEN: g.FEN(), Square: sq.String(), Targets: targets}, nil
}

// ClearSelection drops the selected square, if any.
func (s *Service) ClearSelection(ctx context.Context, gameID string) error {
	g, err := s.lookup(ctx, gameID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	g.ClearSelection()
	s.mu.Unlock()
	return nil
}

// MoveSelected moves the selected piece to square to. promo is a promotion
// letter and is required when the move promotes.
func (s *Service) MoveSelected(ctx context.Context, gameID, to, promo string) (*core.GameResponse, error) {
	g, err := s.lookup(ctx, gameID)
	if err != nil {
		return nil, err
	}
	toSq, err := core.ParseSquare(to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIllegalMove, err)
	}
	var letter byte
	if promo != "" {
		if len(promo) != 1 {
			return nil, fmt.Errorf("%w: bad promotion %q", core.ErrIllegalMove, promo)
		}
		letter = promo[0]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := humanToMove(g); err != nil {
		return nil, err
	}
	m, err := g.MoveSelectedTo(toSq, letter)
	if err != nil {
		return nil, err
	}
	s.afterMove(gameID, g, m)
	return snapshot(gameID, g), nil
}

// ResetGame replaces the position of an existing game, keeping its players
// and clearing its history. An empty fen resets to the standard position.
func (s *Service) ResetGame(ctx context.Context, gameID, fen string) (*core.GameResponse, error) {
	g, err := s.lookup(ctx, gameID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := g.Reset(fen); err != nil {
		return nil, err
	}
	if s.store != nil {
		s.store.ResetGame(gameID, g.InitialFEN())
	}
	s.mirror(gameID, g)
	s.waiter.NotifyGame(gameID)
	s.log.Info("game reset", zap.String("game_id", gameID), zap.String("fen", g.InitialFEN()))
	return snapshot(gameID, g), nil
}

// DeleteGame removes a game from memory and the mirror, waking its waiters.
func (s *Service) DeleteGame(ctx context.Context, gameID string) error {
	if _, err := s.lookup(ctx, gameID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.waiter.RemoveGame(gameID)
	delete(s.games, gameID)

	if s.store != nil {
		s.store.DeleteGame(gameID)
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, gameID); err != nil {
			s.log.Warn("session mirror delete failed", zap.String("game_id", gameID), zap.Error(err))
		}
	}
	s.log.Info("game deleted", zap.String("game_id", gameID))
	return nil
}

// snapshot renders the response view of g. Called with mu held.
func snapshot(gameID string, g *game.Game) *core.GameResponse {
	moves := g.Moves()
	resp := &core.GameResponse{
		GameID:     gameID,
		FEN:        g.FEN(),
		InitialFEN: g.InitialFEN(),
		Turn:       g.NextTurn().String(),
		Status:     g.Status().String(),
		Moves:      moves,
		CanUndo:    g.CanUndo(),
		CanRedo:    g.CanRedo(),
		Players: core.PlayersResponse{
			White: g.Player(core.White),
			Black: g.Player(core.Black),
		},
		MoveCount: len(moves),
	}
	if sel := g.Selected(); sel != core.NoSquare {
		resp.Selected = sel.String()
	}
	if res := g.LastResult(); res != nil {
		resp.LastMove = &core.MoveInfo{
			Move:        res.Move,
			PlayerColor: res.Player.String(),
			Kind:        res.Kind.String(),
		}
	}
	return resp
}
