package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"chessrules/internal/core"
)

const DefaultPath = "stockfish"

// Hinter suggests a move for a position. Implementations are advisory only;
// callers still check the suggestion against the legal move list.
type Hinter interface {
	BestMove(ctx context.Context, fen string) (string, error)
}

type Config struct {
	Path       string
	SkillLevel int           // 0-20
	MoveTime   time.Duration // search budget per hint
}

// UCI drives an external engine process speaking the UCI protocol. One
// search runs at a time.
type UCI struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string
	cfg   Config
	log   *zap.Logger
	mu    sync.Mutex
}

type SearchResult struct {
	BestMove string
	Score    int
	Depth    int
	IsMate   bool
	MateIn   int
}

func New(ctx context.Context, cfg Config, log *zap.Logger, args ...string) (*UCI, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.MoveTime <= 0 {
		cfg.MoveTime = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}

	cmd := exec.Command(cfg.Path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start %s: %v", core.ErrEngineUnavailable, cfg.Path, err)
	}

	u := &UCI{
		cmd:   cmd,
		stdin: stdin,
		lines: make(chan string, 64),
		cfg:   cfg,
		log:   log.Named("engine"),
	}
	go u.readLoop(stdout)

	if err := u.initialize(ctx); err != nil {
		u.Close()
		return nil, err
	}
	u.log.Info("engine ready", zap.String("path", cfg.Path), zap.Int("skill", cfg.SkillLevel))
	return u, nil
}

// readLoop is the only reader of the engine's stdout. The channel is closed
// when the process exits.
func (u *UCI) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		u.lines <- scanner.Text()
	}
	close(u.lines)
}

func (u *UCI) initialize(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := u.send("uci"); err != nil {
		return err
	}
	if _, err := u.waitFor(ctx, "uciok"); err != nil {
		return err
	}
	level := u.cfg.SkillLevel
	if level < 0 {
		level = 0
	} else if level > 20 {
		level = 20
	}
	if err := u.send(fmt.Sprintf("setoption name Skill Level value %d", level)); err != nil {
		return err
	}
	return u.ready(ctx)
}

func (u *UCI) ready(ctx context.Context) error {
	if err := u.send("isready"); err != nil {
		return err
	}
	_, err := u.waitFor(ctx, "readyok")
	return err
}

func (u *UCI) send(cmd string) error {
	if _, err := fmt.Fprintln(u.stdin, cmd); err != nil {
		return fmt.Errorf("%w: write %q: %v", core.ErrEngineUnavailable, cmd, err)
	}
	return nil
}

// waitFor consumes output until a line starting with prefix arrives.
func (u *UCI) waitFor(ctx context.Context, prefix string) (string, error) {
	for {
		select {
		case line, ok := <-u.lines:
			if !ok {
				return "", fmt.Errorf("%w: engine closed unexpectedly", core.ErrEngineUnavailable)
			}
			if strings.HasPrefix(line, prefix) {
				return line, nil
			}
		case <-ctx.Done():
			return "", fmt.Errorf("%w: waiting for %s: %v", core.ErrEngineUnavailable, prefix, ctx.Err())
		}
	}
}

// Search runs a fixed-time search from fen.
func (u *UCI) Search(ctx context.Context, fen string) (*SearchResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	// 2x the search time plus a buffer
	ctx, cancel := context.WithTimeout(ctx, 2*u.cfg.MoveTime+time.Second)
	defer cancel()

	if err := u.send("ucinewgame"); err != nil {
		return nil, err
	}
	if err := u.ready(ctx); err != nil {
		return nil, err
	}
	if err := u.send("position fen " + fen); err != nil {
		return nil, err
	}
	if err := u.send(fmt.Sprintf("go movetime %d", u.cfg.MoveTime.Milliseconds())); err != nil {
		return nil, err
	}

	result := &SearchResult{}
	for {
		select {
		case line, ok := <-u.lines:
			if !ok {
				return nil, fmt.Errorf("%w: engine closed unexpectedly", core.ErrEngineUnavailable)
			}
			if strings.HasPrefix(line, "info ") {
				parseInfo(line, result)
				continue
			}
			if strings.HasPrefix(line, "bestmove ") {
				parts := strings.Fields(line)
				if len(parts) < 2 || parts[1] == "(none)" {
					return nil, fmt.Errorf("%w: no move for %s", core.ErrEngineUnavailable, fen)
				}
				result.BestMove = parts[1]
				u.log.Debug("search finished",
					zap.String("fen", fen),
					zap.String("bestmove", result.BestMove),
					zap.Int("depth", result.Depth),
					zap.Int("score", result.Score))
				return result, nil
			}
		case <-ctx.Done():
			// Stop the search so the next caller does not read a stale bestmove.
			u.send("stop")
			u.drainUntil("bestmove", time.Second)
			return nil, fmt.Errorf("%w: timeout waiting for bestmove: %v", core.ErrEngineUnavailable, ctx.Err())
		}
	}
}

func (u *UCI) drainUntil(prefix string, limit time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), limit)
	defer cancel()
	u.waitFor(ctx, prefix)
}

func parseInfo(line string, result *SearchResult) {
	fields := strings.Fields(line)
	for i := 0; i < len(fields)-1; i++ {
		switch fields[i] {
		case "depth":
			fmt.Sscanf(fields[i+1], "%d", &result.Depth)
		case "cp":
			fmt.Sscanf(fields[i+1], "%d", &result.Score)
			result.IsMate = false
		case "mate":
			fmt.Sscanf(fields[i+1], "%d", &result.MateIn)
			result.IsMate = true
			if result.MateIn > 0 {
				result.Score = 100000 - result.MateIn
			} else {
				result.Score = -100000 - result.MateIn
			}
		}
	}
}

// BestMove implements Hinter.
func (u *UCI) BestMove(ctx context.Context, fen string) (string, error) {
	res, err := u.Search(ctx, fen)
	if err != nil {
		return "", err
	}
	return res.BestMove, nil
}

func (u *UCI) Close() error {
	u.send("quit")
	u.stdin.Close()

	done := make(chan error, 1)
	go func() {
		done <- u.cmd.Wait()
	}()

	select {
	case err := <-done:
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			return err
		}
		return nil
	case <-time.After(1 * time.Second):
		// Force kill if doesn't exit gracefully
		return u.cmd.Process.Kill()
	}
}
