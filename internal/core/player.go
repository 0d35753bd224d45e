package core

import (
	"github.com/google/uuid"
)

type PlayerType int

const (
	PlayerHuman PlayerType = iota + 1
	PlayerComputer
)

func (t PlayerType) String() string {
	if t == PlayerComputer {
		return "computer"
	}
	return "human"
}

// Player is a seat at the board. Computer players get their moves from the
// engine hint; the rules core treats both kinds identically.
type Player struct {
	ID    string     `json:"id"`
	Color Color      `json:"color"`
	Type  PlayerType `json:"type"`
}

// PlayerConfig for API requests and configuration
type PlayerConfig struct {
	Type PlayerType `json:"type" validate:"required,oneof=1 2"`
}

// NewPlayer creates a Player from PlayerConfig
func NewPlayer(config PlayerConfig, color Color) *Player {
	t := config.Type
	if t != PlayerComputer {
		t = PlayerHuman
	}
	return &Player{
		ID:    uuid.New().String(),
		Color: color,
		Type:  t,
	}
}
