package position

import (
	"fmt"

	"chessrules/internal/core"
)

// maxMoves bounds the legal move count of any reachable position (218).
const maxMoves = 256

// AppendLegalMoves appends the legal moves of the side to move to dst.
//
// Each pseudo-legal candidate is applied in place, the mover's king is tested
// with IsAttacked, and the move is undone. The position is identical before
// and after the call.
func (p *Position) AppendLegalMoves(dst []Move) []Move {
	start := len(dst)
	dst = p.AppendPseudoLegalMoves(dst)

	us := p.State.SideToMove
	them := us.Opposite()
	king := p.Board.FindKing(us)

	legal := dst[:start]
	for _, m := range dst[start:] {
		kingSq := king
		if m.From == king {
			kingSq = m.To
		}
		rec := p.Apply(m)
		exposed := kingSq != core.NoSquare && p.IsAttacked(kingSq, them)
		p.Undo(rec)
		if !exposed {
			legal = append(legal, m)
		}
	}
	return legal
}

// LegalMoves returns the full legal move list for the side to move.
func (p *Position) LegalMoves() []Move {
	return p.AppendLegalMoves(make([]Move, 0, maxMoves))
}

// LegalMovesFrom returns the legal moves whose source is from.
func (p *Position) LegalMovesFrom(from core.Square) []Move {
	all := p.LegalMoves()
	out := all[:0]
	for _, m := range all {
		if m.From == from {
			out = append(out, m)
		}
	}
	return out
}

// HasLegalMoves reports whether the side to move can move at all.
func (p *Position) HasLegalMoves() bool {
	var buf [maxMoves]Move
	return len(p.AppendLegalMoves(buf[:0])) > 0
}

// Status derives check, checkmate and stalemate for the side to move.
func (p *Position) Status() core.Status {
	inCheck := p.InCheck(p.State.SideToMove)
	if !p.HasLegalMoves() {
		if inCheck {
			return core.StatusCheckmate
		}
		return core.StatusStalemate
	}
	if inCheck {
		return core.StatusCheck
	}
	return core.StatusPlaying
}

// ResolveMove finds the legal move identified by (from, to, promo). A move
// that is not in the current legal list fails with core.ErrIllegalMove.
func (p *Position) ResolveMove(from, to core.Square, promo core.PieceType) (Move, error) {
	var buf [maxMoves]Move
	for _, m := range p.AppendLegalMoves(buf[:0]) {
		if m.Matches(from, to, promo) {
			return m, nil
		}
	}
	if promo == core.NoPieceType {
		return Move{}, fmt.Errorf("%w: %s%s", core.ErrIllegalMove, from, to)
	}
	return Move{}, fmt.Errorf("%w: %s%s%c", core.ErrIllegalMove, from, to, promo.Letter())
}

// ResolveUCI parses minimal notation and resolves it against the legal list.
func (p *Position) ResolveUCI(text string) (Move, error) {
	from, to, promo, err := ParseUCI(text)
	if err != nil {
		return Move{}, err
	}
	return p.ResolveMove(from, to, promo)
}
