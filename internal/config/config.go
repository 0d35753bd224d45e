package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"chessrules/internal/logger"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	Engine  EngineConfig  `yaml:"engine"`
	Log     logger.Config `yaml:"log"`
	PID     PIDConfig     `yaml:"pid"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Dev  bool   `yaml:"dev"` // relaxed rate limits, WAL journal
}

type StorageConfig struct {
	Path string `yaml:"path"` // empty disables persistence
}

type RedisConfig struct {
	URL string        `yaml:"url"` // empty disables the session mirror
	TTL time.Duration `yaml:"ttl"`
}

type EngineConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Path       string        `yaml:"path"`
	SkillLevel int           `yaml:"skill_level"`
	MoveTime   time.Duration `yaml:"move_time"`
}

type PIDConfig struct {
	Path string `yaml:"path"`
	Lock bool   `yaml:"lock"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "localhost", Port: 8080},
		Redis:  RedisConfig{TTL: 24 * time.Hour},
		Engine: EngineConfig{Path: "stockfish", SkillLevel: 10, MoveTime: 500 * time.Millisecond},
		Log:    logger.Config{Level: "info", Format: "console"},
	}
}

// Load layers defaults, the YAML file at path (skipped when empty) and
// CHESS_* environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. lookup is os.LookupEnv
// outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("CHESS_HOST"); ok {
		c.Server.Host = v
	}
	if v, ok := get("CHESS_PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHESS_PORT: %w", err)
		}
		c.Server.Port = n
	}
	if v, ok := get("CHESS_DEV"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CHESS_DEV: %w", err)
		}
		c.Server.Dev = b
	}
	if v, ok := get("CHESS_STORAGE_PATH"); ok {
		c.Storage.Path = v
	}
	if v, ok := get("CHESS_REDIS_URL"); ok {
		c.Redis.URL = v
	}
	if v, ok := get("CHESS_REDIS_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CHESS_REDIS_TTL: %w", err)
		}
		c.Redis.TTL = d
	}
	if v, ok := get("CHESS_ENGINE_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CHESS_ENGINE_ENABLED: %w", err)
		}
		c.Engine.Enabled = b
	}
	if v, ok := get("CHESS_ENGINE_PATH"); ok {
		c.Engine.Path = v
	}
	if v, ok := get("CHESS_ENGINE_SKILL"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHESS_ENGINE_SKILL: %w", err)
		}
		c.Engine.SkillLevel = n
	}
	if v, ok := get("CHESS_ENGINE_MOVE_TIME"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CHESS_ENGINE_MOVE_TIME: %w", err)
		}
		c.Engine.MoveTime = d
	}
	if v, ok := get("CHESS_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := get("CHESS_LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := get("CHESS_LOG_FILE"); ok {
		c.Log.File = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Engine.SkillLevel < 0 || c.Engine.SkillLevel > 20 {
		return fmt.Errorf("engine skill level %d outside 0-20", c.Engine.SkillLevel)
	}
	if c.Engine.Enabled && c.Engine.MoveTime <= 0 {
		return errors.New("engine move time must be positive")
	}
	if c.PID.Lock && c.PID.Path == "" {
		return errors.New("pid lock requires a pid path")
	}
	return nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
