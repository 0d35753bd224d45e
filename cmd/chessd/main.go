// Package main runs the chess rules service over HTTP, with optional SQLite
// history, a Redis session mirror and a UCI engine for hints and computer
// players.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chessrules/cmd/chessd/cli"
	"chessrules/internal/cache"
	"chessrules/internal/config"
	"chessrules/internal/engine"
	"chessrules/internal/logger"
	"chessrules/internal/service"
	"chessrules/internal/storage"
	transport "chessrules/internal/transport/http"
)

const gracefulShutdownTimeout = 5 * time.Second

func main() {
	// Database maintenance subcommands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "chessd db: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chessd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "Path to a YAML config file")
		host        = flag.String("host", "", "API server host")
		port        = flag.Int("port", 0, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits)")
		storagePath = flag.String("storage-path", "", "SQLite database file (persistence disabled if empty)")
		redisURL    = flag.String("redis-url", "", "Redis URL for the session mirror (disabled if empty)")
		enginePath  = flag.String("engine", "", "UCI engine binary; enables hints and computer players")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// Flags given explicitly override file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Server.Host = *host
		case "port":
			cfg.Server.Port = *port
		case "dev":
			cfg.Server.Dev = *dev
		case "storage-path":
			cfg.Storage.Path = *storagePath
		case "redis-url":
			cfg.Redis.URL = *redisURL
		case "engine":
			cfg.Engine.Enabled = true
			cfg.Engine.Path = *enginePath
		case "log-level":
			cfg.Log.Level = *logLevel
		case "pid":
			cfg.PID.Path = *pidPath
		case "pid-lock":
			cfg.PID.Lock = *pidLock
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closeLog, err := logger.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	if cfg.PID.Path != "" {
		release, err := acquirePIDFile(cfg.PID.Path, cfg.PID.Lock, log)
		if err != nil {
			return err
		}
		defer release()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := service.Options{Logger: log}

	if cfg.Storage.Path != "" {
		store, err := storage.NewStore(cfg.Storage.Path, cfg.Server.Dev, log)
		if err != nil {
			return err
		}
		if err := store.InitDB(); err != nil {
			store.Close()
			return fmt.Errorf("initialize schema: %w", err)
		}
		opts.Store = store
		log.Info("persistent storage enabled", zap.String("path", cfg.Storage.Path))
	} else {
		log.Info("persistent storage disabled")
	}

	if cfg.Redis.URL != "" {
		c, err := cache.New(ctx, cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			// The mirror is optional; games stay in memory.
			log.Warn("session mirror unavailable", zap.Error(err))
		} else {
			opts.Cache = c
			log.Info("session mirror enabled", zap.Duration("ttl", cfg.Redis.TTL))
		}
	}

	var uci *engine.UCI
	if cfg.Engine.Enabled {
		uci, err = engine.New(ctx, engine.Config{
			Path:       cfg.Engine.Path,
			SkillLevel: cfg.Engine.SkillLevel,
			MoveTime:   cfg.Engine.MoveTime,
		}, log)
		if err != nil {
			log.Warn("engine unavailable; hints and computer players disabled", zap.Error(err))
		} else {
			opts.Hinter = uci
			defer uci.Close()
		}
	}

	svc := service.New(opts)
	app := transport.NewFiberApp(svc, cfg.Server.Dev)

	errCh := make(chan error, 1)
	go func() {
		log.Info("API server starting",
			zap.String("addr", cfg.Addr()),
			zap.Bool("dev", cfg.Server.Dev),
			zap.Bool("engine", svc.EngineAvailable()))
		errCh <- app.Listen(cfg.Addr())
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.Error("API server stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("server forced to shut down", zap.Error(err))
	}
	if err := svc.Close(); err != nil {
		log.Warn("service close", zap.Error(err))
	}
	log.Info("server exited")
	return nil
}
