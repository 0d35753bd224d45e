package board

import (
	"fmt"
	"strings"

	"chessrules/internal/core"
)

// Board is the 8x8 piece grid. It knows nothing about the rules: every
// mutation touches only the square it names.
type Board struct {
	squares [64]core.Piece
}

func (b *Board) PieceAt(sq core.Square) core.Piece {
	return b.squares[sq]
}

func (b *Board) IsEmpty(sq core.Square) bool {
	return b.squares[sq] == core.NoPiece
}

func (b *Board) Place(sq core.Square, p core.Piece) {
	b.squares[sq] = p
}

// Remove clears the square and returns what was on it.
func (b *Board) Remove(sq core.Square) core.Piece {
	p := b.squares[sq]
	b.squares[sq] = core.NoPiece
	return p
}

// FindKing returns the first square holding a king of the given color, or
// core.NoSquare when there is none.
func (b *Board) FindKing(c core.Color) core.Square {
	king := core.NewPiece(c, core.King)
	for sq := core.Square(0); sq < 64; sq++ {
		if b.squares[sq] == king {
			return sq
		}
	}
	return core.NoSquare
}

// ASCII creates an ASCII representation of the board, rank 8 first
func (b *Board) ASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for rank := 7; rank >= 0; rank-- {
		sb.WriteString(fmt.Sprintf("%d ", rank+1))
		for file := 0; file < 8; file++ {
			piece := b.squares[core.NewSquare(rank, file)]
			sb.WriteByte(piece.Char())
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprintf(" %d\n", rank+1))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
