// Package position holds the rules of chess: game state, FEN codec, attack
// detection, move generation, legality filtering and apply/undo.
//
// Nothing in this package locks or performs I/O. A Position must not be used
// from more than one goroutine at a time.
package position

import (
	"strings"

	"chessrules/internal/board"
	"chessrules/internal/core"
)

// CastlingRights is a set of four independent flags.
type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside
)

func (cr CastlingRights) Has(flag CastlingRights) bool {
	return cr&flag != 0
}

// String renders the FEN castling field in canonical KQkq order.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	if cr.Has(WhiteKingside) {
		sb.WriteByte('K')
	}
	if cr.Has(WhiteQueenside) {
		sb.WriteByte('Q')
	}
	if cr.Has(BlackKingside) {
		sb.WriteByte('k')
	}
	if cr.Has(BlackQueenside) {
		sb.WriteByte('q')
	}
	return sb.String()
}

// castlingMask[sq] holds the rights lost when a piece leaves or is captured on sq.
var castlingMask [64]CastlingRights

func init() {
	castlingMask[core.NewSquare(0, 4)] = WhiteKingside | WhiteQueenside
	castlingMask[core.NewSquare(0, 7)] = WhiteKingside
	castlingMask[core.NewSquare(0, 0)] = WhiteQueenside
	castlingMask[core.NewSquare(7, 4)] = BlackKingside | BlackQueenside
	castlingMask[core.NewSquare(7, 7)] = BlackKingside
	castlingMask[core.NewSquare(7, 0)] = BlackQueenside
}

// State is everything about a position that is not piece placement. It is a
// flat value so undo records can copy it without aliasing.
type State struct {
	SideToMove core.Color
	Castling   CastlingRights
	EnPassant  core.Square // core.NoSquare when there is no target
	Halfmove   int
	Fullmove   int
}

// Position is a board plus its state. Every legality and attack query is a
// pure function of it.
type Position struct {
	Board board.Board
	State State
}

// StartingFEN is the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// New returns the standard starting position.
func New() *Position {
	p, err := ParseFEN(StartingFEN)
	if err != nil {
		panic(err)
	}
	return p
}

// Clone returns an independent copy.
func (p *Position) Clone() *Position {
	c := *p
	return &c
}

func (p *Position) SideToMove() core.Color {
	return p.State.SideToMove
}
