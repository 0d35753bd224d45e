// Package cache mirrors live sessions into Redis so a restarted or peer
// process can rebuild a game by replaying its moves.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"chessrules/internal/core"
)

const DefaultTTL = 24 * time.Hour

// Session is the mirrored form of a game: enough to replay it, nothing derived.
type Session struct {
	GameID     string       `json:"gameId"`
	InitialFEN string       `json:"initialFen"`
	Moves      []string     `json:"moves"`
	White      *core.Player `json:"white"`
	Black      *core.Player `json:"black"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to url (redis://host:port/db) and pings the server.
func New(ctx context.Context, url string, ttl time.Duration) (*Cache, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("redis url required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Cache{rdb: rdb, ttl: ttl}, nil
}

func sessionKey(id string) string { return "chess:game:" + strings.TrimSpace(id) }

func (c *Cache) Save(ctx context.Context, s *Session) error {
	s.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, sessionKey(s.GameID), raw, c.ttl).Err()
}

// Load returns core.ErrGameNotFound when no session is stored under id.
func (c *Cache) Load(ctx context.Context, id string) (*Session, error) {
	raw, err := c.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", core.ErrGameNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

func (c *Cache) Delete(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, sessionKey(id)).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
