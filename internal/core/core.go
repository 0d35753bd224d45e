package core

import "fmt"

// Status is the derived condition of the side to move. It is recomputed from
// the position on every query and never stored.
type Status int

const (
	StatusPlaying Status = iota
	StatusCheck
	StatusCheckmate
	StatusStalemate
)

func (s Status) String() string {
	switch s {
	case StatusCheck:
		return "check"
	case StatusCheckmate:
		return "checkmate"
	case StatusStalemate:
		return "stalemate"
	default:
		return "playing"
	}
}

// IsTerminal reports whether no legal move exists.
func (s Status) IsTerminal() bool {
	return s == StatusCheckmate || s == StatusStalemate
}

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	if c == White {
		return "w"
	}
	return "b"
}

// Name returns "White" or "Black".
func (c Color) Name() string {
	if c == White {
		return "White"
	}
	return "Black"
}

func (c Color) Opposite() Color {
	return c ^ 1
}

type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// PromotionTypes lists the piece types a pawn may promote to, in generation order.
var PromotionTypes = [4]PieceType{Queen, Rook, Bishop, Knight}

// Letter returns the lowercase piece letter ('p', 'n', ...), or 0 for NoPieceType.
func (t PieceType) Letter() byte {
	switch t {
	case Pawn:
		return 'p'
	case Knight:
		return 'n'
	case Bishop:
		return 'b'
	case Rook:
		return 'r'
	case Queen:
		return 'q'
	case King:
		return 'k'
	default:
		return 0
	}
}

// PromotionFromLetter accepts q, r, b, n in either case.
func PromotionFromLetter(ch byte) (PieceType, bool) {
	switch ch {
	case 'q', 'Q':
		return Queen, true
	case 'r', 'R':
		return Rook, true
	case 'b', 'B':
		return Bishop, true
	case 'n', 'N':
		return Knight, true
	default:
		return NoPieceType, false
	}
}

// Piece packs a type and a color: bits 0-2 hold the type, bit 3 the color.
// The zero value is an empty square.
type Piece uint8

const NoPiece Piece = 0

func NewPiece(c Color, t PieceType) Piece {
	if t == NoPieceType {
		return NoPiece
	}
	return Piece(t) | Piece(c)<<3
}

func (p Piece) Type() PieceType { return PieceType(p & 7) }

func (p Piece) Color() Color { return Color(p>>3) & 1 }

func (p Piece) IsEmpty() bool { return p == NoPiece }

// Is reports whether p is a piece of the given color and type.
func (p Piece) Is(c Color, t PieceType) bool {
	return p != NoPiece && p == NewPiece(c, t)
}

// Char returns the FEN letter: uppercase for White, lowercase for Black.
func (p Piece) Char() byte {
	ch := p.Type().Letter()
	if ch == 0 {
		return '.'
	}
	if p.Color() == White {
		return ch - 'a' + 'A'
	}
	return ch
}

func (p Piece) String() string {
	return string(p.Char())
}

// PieceFromChar decodes a FEN piece letter.
func PieceFromChar(ch byte) (Piece, bool) {
	color := White
	if ch >= 'a' && ch <= 'z' {
		color = Black
		ch = ch - 'a' + 'A'
	}
	var t PieceType
	switch ch {
	case 'P':
		t = Pawn
	case 'N':
		t = Knight
	case 'B':
		t = Bishop
	case 'R':
		t = Rook
	case 'Q':
		t = Queen
	case 'K':
		t = King
	default:
		return NoPiece, false
	}
	return NewPiece(color, t), true
}

// Square indexes the board as rank*8+file; rank 0 is White's back rank and
// file 0 is the a-file.
type Square int8

const NoSquare Square = -1

func NewSquare(rank, file int) Square {
	return Square(rank*8 + file)
}

func (s Square) Rank() int { return int(s) >> 3 }

func (s Square) File() int { return int(s) & 7 }

func (s Square) Valid() bool { return s >= 0 && s < 64 }

// Offset returns the square dr ranks and df files away, or false if it falls
// off the board.
func (s Square) Offset(dr, df int) (Square, bool) {
	r, f := s.Rank()+dr, s.File()+df
	if r < 0 || r > 7 || f < 0 || f > 7 {
		return NoSquare, false
	}
	return NewSquare(r, f), true
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// ParseSquare decodes algebraic coordinates such as "e4".
func ParseSquare(text string) (Square, error) {
	if len(text) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q", text)
	}
	file, rank := text[0], text[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return NoSquare, fmt.Errorf("invalid square %q", text)
	}
	return NewSquare(int(rank-'1'), int(file-'a')), nil
}
