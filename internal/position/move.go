package position

import (
	"fmt"

	"chessrules/internal/core"
)

// MoveKind classifies a move. A promotion that also captures is tagged
// Promotion.
type MoveKind uint8

const (
	Quiet MoveKind = iota
	Capture
	DoublePawnPush
	EnPassant
	CastleKingside
	CastleQueenside
	Promotion
)

func (k MoveKind) String() string {
	switch k {
	case Capture:
		return "capture"
	case DoublePawnPush:
		return "double-pawn-push"
	case EnPassant:
		return "en-passant"
	case CastleKingside:
		return "castle-kingside"
	case CastleQueenside:
		return "castle-queenside"
	case Promotion:
		return "promotion"
	default:
		return "quiet"
	}
}

// Move is a small fixed-size value; generation never allocates per move.
type Move struct {
	From      core.Square
	To        core.Square
	Promotion core.PieceType
	Kind      MoveKind
}

// IsCastle reports whether the move is either castling kind.
func (m Move) IsCastle() bool {
	return m.Kind == CastleKingside || m.Kind == CastleQueenside
}

// String returns the minimal boundary notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != core.NoPieceType {
		s += string(m.Promotion.Letter())
	}
	return s
}

// Matches compares the boundary identity (from, to, promotion) only.
func (m Move) Matches(from, to core.Square, promo core.PieceType) bool {
	return m.From == from && m.To == to && m.Promotion == promo
}

// ParseUCI splits minimal notation into its squares and optional promotion.
// It checks syntax only; legality is decided against a position.
func ParseUCI(text string) (from, to core.Square, promo core.PieceType, err error) {
	if len(text) != 4 && len(text) != 5 {
		return core.NoSquare, core.NoSquare, core.NoPieceType, fmt.Errorf("%w: %q is not a move", core.ErrIllegalMove, text)
	}
	if from, err = core.ParseSquare(text[0:2]); err != nil {
		return core.NoSquare, core.NoSquare, core.NoPieceType, fmt.Errorf("%w: %v", core.ErrIllegalMove, err)
	}
	if to, err = core.ParseSquare(text[2:4]); err != nil {
		return core.NoSquare, core.NoSquare, core.NoPieceType, fmt.Errorf("%w: %v", core.ErrIllegalMove, err)
	}
	if len(text) == 5 {
		var ok bool
		if promo, ok = core.PromotionFromLetter(text[4]); !ok {
			return core.NoSquare, core.NoSquare, core.NoPieceType, fmt.Errorf("%w: bad promotion letter %q", core.ErrIllegalMove, text[4])
		}
	}
	return from, to, promo, nil
}
