package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
	File   string `yaml:"file"`   // optional, appended to
	Caller bool   `yaml:"caller"`
}

// New builds a zap logger writing to w and, when cfg.File is set, to that file.
// The returned close function syncs the logger and closes the file; call it
// once the logger is no longer used.
func New(cfg Config, w io.Writer) (*zap.Logger, func() error, error) {
	level := ParseLevel(cfg.Level)
	enc := encoder(cfg.Format)

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(w), level)}

	var file *os.File
	if path := strings.TrimSpace(cfg.File); path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create log dir: %w", err)
			}
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(encoder(cfg.Format), zapcore.AddSync(f), level))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zapcore.ErrorLevel))
	if cfg.Caller {
		log = log.WithOptions(zap.AddCaller())
	}

	closeFn := func() error {
		// Sync on a terminal or pipe reports EINVAL; only the file matters.
		log.Sync()
		if file == nil {
			return nil
		}
		return file.Close()
	}
	return log, closeFn, nil
}

func encoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.ConsoleSeparator = " | "
	return zapcore.NewConsoleEncoder(cfg)
}

func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
