package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"chessrules/internal/cache"
	"chessrules/internal/core"
	"chessrules/internal/engine"
	"chessrules/internal/game"
	"chessrules/internal/storage"
)

const mirrorTimeout = 2 * time.Second

// Service owns every live game. The rules core is single-threaded and even
// its read paths (legal moves, status) apply and undo moves in place, so
// every access to a game, read or write, holds mu exclusively. History, the
// Redis mirror and long-poll waiters are fed from here after each mutation.
type Service struct {
	games  map[string]*game.Game
	mu     sync.Mutex
	store  *storage.Store // nil if persistence disabled
	cache  *cache.Cache   // nil if the session mirror is disabled
	hinter engine.Hinter  // nil if no engine is configured
	waiter *WaitRegistry
	log    *zap.Logger
}

type Options struct {
	Store       *storage.Store
	Cache       *cache.Cache
	Hinter      engine.Hinter
	Logger      *zap.Logger
	WaitTimeout time.Duration
}

func New(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		games:  make(map[string]*game.Game),
		store:  opts.Store,
		cache:  opts.Cache,
		hinter: opts.Hinter,
		waiter: NewWaitRegistry(opts.WaitTimeout),
		log:    log.Named("service"),
	}
}

// lookup returns the live game, restoring it from the session mirror when it
// is not in memory. Callers must not hold mu.
func (s *Service) lookup(ctx context.Context, gameID string) (*game.Game, error) {
	s.mu.Lock()
	g, ok := s.games[gameID]
	s.mu.Unlock()
	if ok {
		return g, nil
	}
	if s.cache == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrGameNotFound, gameID)
	}

	sess, err := s.cache.Load(ctx, gameID)
	if err != nil {
		if !errors.Is(err, core.ErrGameNotFound) {
			s.log.Warn("session mirror read failed", zap.String("game_id", gameID), zap.Error(err))
			return nil, fmt.Errorf("%w: %s", core.ErrGameNotFound, gameID)
		}
		return nil, err
	}
	restored, err := replay(sess)
	if err != nil {
		s.log.Error("session mirror replay failed", zap.String("game_id", gameID), zap.Error(err))
		return nil, fmt.Errorf("%w: %s", core.ErrGameNotFound, gameID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.games[gameID]; ok {
		return existing, nil
	}
	s.games[gameID] = restored
	s.log.Info("game restored from mirror", zap.String("game_id", gameID), zap.Int("moves", len(sess.Moves)))
	return restored, nil
}

// replay rebuilds a game by playing its recorded moves through the legality
// check, so a tampered mirror cannot produce an illegal position.
func replay(sess *cache.Session) (*game.Game, error) {
	white, black := sess.White, sess.Black
	if white == nil {
		white = core.NewPlayer(core.PlayerConfig{Type: core.PlayerHuman}, core.White)
	}
	if black == nil {
		black = core.NewPlayer(core.PlayerConfig{Type: core.PlayerHuman}, core.Black)
	}
	g, err := game.New(sess.InitialFEN, white, black)
	if err != nil {
		return nil, err
	}
	for i, mv := range sess.Moves {
		if _, err := g.MakeMoveUCI(mv); err != nil {
			return nil, fmt.Errorf("move %d %q: %w", i+1, mv, err)
		}
	}
	return g, nil
}

// mirror writes the session to Redis. Failures are logged; the in-memory game
// stays authoritative. Called with mu held.
func (s *Service) mirror(gameID string, g *game.Game) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
	defer cancel()
	sess := &cache.Session{
		GameID:     gameID,
		InitialFEN: g.InitialFEN(),
		Moves:      g.Moves(),
		White:      g.Player(core.White),
		Black:      g.Player(core.Black),
	}
	if err := s.cache.Save(ctx, sess); err != nil {
		s.log.Warn("session mirror write failed", zap.String("game_id", gameID), zap.Error(err))
	}
}

// WaitForUpdate blocks until the game changes, the wait times out or ctx ends.
// It returns immediately when the caller's move count is already stale.
func (s *Service) WaitForUpdate(ctx context.Context, gameID string, moveCount int) error {
	g, err := s.lookup(ctx, gameID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	current := len(g.Moves())
	var ch <-chan struct{}
	if current == moveCount {
		ch = s.waiter.RegisterWait(ctx, gameID)
	}
	s.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
	case <-ctx.Done():
	}
	return nil
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// GetCacheHealth reports the session mirror status
func (s *Service) GetCacheHealth(ctx context.Context) string {
	if s.cache == nil {
		return "disabled"
	}
	if err := s.cache.Ping(ctx); err != nil {
		return "degraded"
	}
	return "ok"
}

func (s *Service) EngineAvailable() bool {
	return s.hinter != nil
}

// Close releases waiters and closes storage and cache. The engine is owned
// by the caller.
func (s *Service) Close() error {
	if err := s.waiter.Shutdown(5 * time.Second); err != nil {
		s.log.Warn("waiter shutdown", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = make(map[string]*game.Game)

	var errs []error
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	return errors.Join(errs...)
}
