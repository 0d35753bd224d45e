// Package main is a terminal chess board: two humans, or a human against a
// UCI engine when one is configured.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"chessrules/internal/cli"
	"chessrules/internal/engine"
	"chessrules/internal/logger"
	"chessrules/internal/service"
	clitransport "chessrules/internal/transport/cli"
)

func main() {
	var (
		enginePath = flag.String("engine", "", "UCI engine binary for hints and computer players")
		skill      = flag.Int("skill", 10, "Engine skill level (0-20)")
		moveTime   = flag.Duration("movetime", 500*time.Millisecond, "Engine search time per move")
		history    = flag.String("history", ".chess_history", "Readline history file")
		logFile    = flag.String("log-file", "", "Write debug logs to this file")
		theme      = flag.String("theme", "off", "Board colour theme (off, brown, green, gray)")
	)
	flag.Parse()

	// Logs go to a file only; the terminal belongs to the board.
	log, closeLog, err := logger.New(logger.Config{Level: "debug", Format: "console", File: *logFile}, io.Discard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	rl, err := cli.NewReadline(*history)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	view := cli.New(rl, os.Stdout, cli.IsTerminal(os.Stdout))
	defer view.Close()

	if err := view.SetTheme(cli.ColorTheme(*theme)); err != nil {
		view.ShowError(err)
	}

	ctx := context.Background()
	opts := service.Options{Logger: log}
	if *enginePath != "" {
		uci, err := engine.New(ctx, engine.Config{Path: *enginePath, SkillLevel: *skill, MoveTime: *moveTime}, log)
		if err != nil {
			view.ShowError(err)
		} else {
			defer uci.Close()
			opts.Hinter = uci
			log.Info("engine attached", zap.String("path", *enginePath))
		}
	}

	svc := service.New(opts)
	defer svc.Close()

	view.ShowWelcome()
	clitransport.New(ctx, svc, view).Run()
}
