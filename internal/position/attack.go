package position

import "chessrules/internal/core"

// Direction offsets for piece movement, as (rank, file) deltas.
var (
	knightOffsets = [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	diagonalDirs  = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	straightDirs  = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
)

// pawnForward is the rank delta of a pawn push for each color.
var pawnForward = [2]int{1, -1}

// IsAttacked reports whether any piece of side by could capture onto sq under
// the current occupancy. It is purely geometric and never consults legality:
// a pinned piece still attacks.
func (p *Position) IsAttacked(sq core.Square, by core.Color) bool {
	b := &p.Board

	// A pawn of side by attacks sq from one rank behind it, diagonally.
	pawn := core.NewPiece(by, core.Pawn)
	for _, df := range [2]int{-1, 1} {
		if from, ok := sq.Offset(-pawnForward[by], df); ok && b.PieceAt(from) == pawn {
			return true
		}
	}

	knight := core.NewPiece(by, core.Knight)
	for _, o := range knightOffsets {
		if from, ok := sq.Offset(o[0], o[1]); ok && b.PieceAt(from) == knight {
			return true
		}
	}

	king := core.NewPiece(by, core.King)
	for _, o := range kingOffsets {
		if from, ok := sq.Offset(o[0], o[1]); ok && b.PieceAt(from) == king {
			return true
		}
	}

	queen := core.NewPiece(by, core.Queen)
	if p.rayHits(sq, diagonalDirs, core.NewPiece(by, core.Bishop), queen) {
		return true
	}
	return p.rayHits(sq, straightDirs, core.NewPiece(by, core.Rook), queen)
}

// rayHits walks each direction from sq and reports whether the first occupied
// square holds one of the two given sliders.
func (p *Position) rayHits(sq core.Square, dirs [4][2]int, a, b core.Piece) bool {
	for _, d := range dirs {
		cur := sq
		for {
			next, ok := cur.Offset(d[0], d[1])
			if !ok {
				break
			}
			piece := p.Board.PieceAt(next)
			if piece != core.NoPiece {
				if piece == a || piece == b {
					return true
				}
				break
			}
			cur = next
		}
	}
	return false
}

// InCheck reports whether the king of color c is attacked. A side without a
// king is never in check.
func (p *Position) InCheck(c core.Color) bool {
	king := p.Board.FindKing(c)
	if king == core.NoSquare {
		return false
	}
	return p.IsAttacked(king, c.Opposite())
}
