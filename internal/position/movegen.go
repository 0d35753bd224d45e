package position

import "chessrules/internal/core"

// AppendPseudoLegalMoves appends every move of the side to move that obeys
// piece geometry and occupancy, without checking for self-check.
func (p *Position) AppendPseudoLegalMoves(dst []Move) []Move {
	us := p.State.SideToMove
	for sq := core.Square(0); sq < 64; sq++ {
		piece := p.Board.PieceAt(sq)
		if piece == core.NoPiece || piece.Color() != us {
			continue
		}
		switch piece.Type() {
		case core.Pawn:
			dst = p.appendPawnMoves(dst, sq, us)
		case core.Knight:
			dst = p.appendStepMoves(dst, sq, us, &knightOffsets)
		case core.Bishop:
			dst = p.appendSlideMoves(dst, sq, us, diagonalDirs[:])
		case core.Rook:
			dst = p.appendSlideMoves(dst, sq, us, straightDirs[:])
		case core.Queen:
			dst = p.appendSlideMoves(dst, sq, us, diagonalDirs[:])
			dst = p.appendSlideMoves(dst, sq, us, straightDirs[:])
		case core.King:
			dst = p.appendStepMoves(dst, sq, us, &kingOffsets)
			dst = p.appendCastles(dst, sq, us)
		}
	}
	return dst
}

// appendStepMoves handles knights and the king's ordinary steps.
func (p *Position) appendStepMoves(dst []Move, from core.Square, us core.Color, offsets *[8][2]int) []Move {
	for _, o := range offsets {
		to, ok := from.Offset(o[0], o[1])
		if !ok {
			continue
		}
		target := p.Board.PieceAt(to)
		switch {
		case target == core.NoPiece:
			dst = append(dst, Move{From: from, To: to, Kind: Quiet})
		case target.Color() != us:
			dst = append(dst, Move{From: from, To: to, Kind: Capture})
		}
	}
	return dst
}

func (p *Position) appendSlideMoves(dst []Move, from core.Square, us core.Color, dirs [][2]int) []Move {
	for _, d := range dirs {
		cur := from
		for {
			to, ok := cur.Offset(d[0], d[1])
			if !ok {
				break
			}
			target := p.Board.PieceAt(to)
			if target != core.NoPiece {
				if target.Color() != us {
					dst = append(dst, Move{From: from, To: to, Kind: Capture})
				}
				break
			}
			dst = append(dst, Move{From: from, To: to, Kind: Quiet})
			cur = to
		}
	}
	return dst
}

func (p *Position) appendPawnMoves(dst []Move, from core.Square, us core.Color) []Move {
	fwd := pawnForward[us]
	startRank, lastRank := 1, 7
	if us == core.Black {
		startRank, lastRank = 6, 0
	}

	if to, ok := from.Offset(fwd, 0); ok && p.Board.IsEmpty(to) {
		if to.Rank() == lastRank {
			dst = appendPromotions(dst, from, to)
		} else {
			dst = append(dst, Move{From: from, To: to, Kind: Quiet})
			if from.Rank() == startRank {
				if to2, ok := to.Offset(fwd, 0); ok && p.Board.IsEmpty(to2) {
					dst = append(dst, Move{From: from, To: to2, Kind: DoublePawnPush})
				}
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		to, ok := from.Offset(fwd, df)
		if !ok {
			continue
		}
		target := p.Board.PieceAt(to)
		switch {
		case target != core.NoPiece && target.Color() != us:
			if to.Rank() == lastRank {
				dst = appendPromotions(dst, from, to)
			} else {
				dst = append(dst, Move{From: from, To: to, Kind: Capture})
			}
		case target == core.NoPiece && to == p.State.EnPassant && p.enPassantVictim(from, to, us):
			dst = append(dst, Move{From: from, To: to, Kind: EnPassant})
		}
	}
	return dst
}

// enPassantVictim checks that an enemy pawn sits beside the capturing pawn on
// the target's file. FEN input may name a target with no pawn behind it.
func (p *Position) enPassantVictim(from, to core.Square, us core.Color) bool {
	victim := core.NewSquare(from.Rank(), to.File())
	return p.Board.PieceAt(victim) == core.NewPiece(us.Opposite(), core.Pawn)
}

func appendPromotions(dst []Move, from, to core.Square) []Move {
	for _, pt := range core.PromotionTypes {
		dst = append(dst, Move{From: from, To: to, Promotion: pt, Kind: Promotion})
	}
	return dst
}

// appendCastles emits castling candidates. The king's start, transit and
// destination squares must all be unattacked, so a castle is never generated
// out of, through or into check.
func (p *Position) appendCastles(dst []Move, from core.Square, us core.Color) []Move {
	rank := 0
	kingside, queenside := WhiteKingside, WhiteQueenside
	if us == core.Black {
		rank = 7
		kingside, queenside = BlackKingside, BlackQueenside
	}
	if from != core.NewSquare(rank, 4) {
		return dst
	}
	cr := p.State.Castling
	if !cr.Has(kingside) && !cr.Has(queenside) {
		return dst
	}
	them := us.Opposite()
	rook := core.NewPiece(us, core.Rook)
	sq := func(file int) core.Square { return core.NewSquare(rank, file) }

	if cr.Has(kingside) && p.Board.PieceAt(sq(7)) == rook &&
		p.Board.IsEmpty(sq(5)) && p.Board.IsEmpty(sq(6)) &&
		!p.IsAttacked(sq(4), them) && !p.IsAttacked(sq(5), them) && !p.IsAttacked(sq(6), them) {
		dst = append(dst, Move{From: from, To: sq(6), Kind: CastleKingside})
	}
	if cr.Has(queenside) && p.Board.PieceAt(sq(0)) == rook &&
		p.Board.IsEmpty(sq(1)) && p.Board.IsEmpty(sq(2)) && p.Board.IsEmpty(sq(3)) &&
		!p.IsAttacked(sq(4), them) && !p.IsAttacked(sq(3), them) && !p.IsAttacked(sq(2), them) {
		dst = append(dst, Move{From: from, To: sq(2), Kind: CastleQueenside})
	}
	return dst
}
