package position

import "chessrules/internal/core"

// UndoRecord carries everything Undo needs to reverse one Apply. Records hold
// plain values only, never references into the live position.
type UndoRecord struct {
	Move           Move
	Captured       core.Piece
	CapturedSquare core.Square // differs from Move.To for en passant
	RookFrom       core.Square // core.NoSquare unless castling
	RookTo         core.Square
	PrevCastling   CastlingRights
	PrevEnPassant  core.Square
	PrevHalfmove   int
}

// Apply performs m without checking legality and returns the data needed to
// reverse it. Callers outside the legality filter should obtain m from
// ResolveMove or LegalMoves.
func (p *Position) Apply(m Move) UndoRecord {
	b := &p.Board
	st := &p.State

	rec := UndoRecord{
		Move:           m,
		Captured:       core.NoPiece,
		CapturedSquare: core.NoSquare,
		RookFrom:       core.NoSquare,
		RookTo:         core.NoSquare,
		PrevCastling:   st.Castling,
		PrevEnPassant:  st.EnPassant,
		PrevHalfmove:   st.Halfmove,
	}

	mover := b.PieceAt(m.From)
	us := mover.Color()

	switch m.Kind {
	case EnPassant:
		victim := core.NewSquare(m.From.Rank(), m.To.File())
		rec.Captured = b.Remove(victim)
		rec.CapturedSquare = victim
	case CastleKingside, CastleQueenside:
		rank := m.From.Rank()
		if m.Kind == CastleKingside {
			rec.RookFrom, rec.RookTo = core.NewSquare(rank, 7), core.NewSquare(rank, 5)
		} else {
			rec.RookFrom, rec.RookTo = core.NewSquare(rank, 0), core.NewSquare(rank, 3)
		}
		b.Place(rec.RookTo, b.Remove(rec.RookFrom))
	default:
		if !b.IsEmpty(m.To) {
			rec.Captured = b.Remove(m.To)
			rec.CapturedSquare = m.To
		}
	}

	b.Remove(m.From)
	if m.Promotion != core.NoPieceType {
		b.Place(m.To, core.NewPiece(us, m.Promotion))
	} else {
		b.Place(m.To, mover)
	}

	st.EnPassant = core.NoSquare
	if m.Kind == DoublePawnPush {
		st.EnPassant = core.NewSquare((m.From.Rank()+m.To.Rank())/2, m.From.File())
	}

	st.Castling &^= castlingMask[m.From]
	if rec.CapturedSquare != core.NoSquare {
		st.Castling &^= castlingMask[rec.CapturedSquare]
	}

	if mover.Type() == core.Pawn || rec.Captured != core.NoPiece {
		st.Halfmove = 0
	} else {
		st.Halfmove++
	}
	if us == core.Black {
		st.Fullmove++
	}
	st.SideToMove = us.Opposite()

	return rec
}

// Undo reverses the Apply that produced rec. Records must be undone in the
// reverse order they were produced.
func (p *Position) Undo(rec UndoRecord) {
	b := &p.Board
	st := &p.State
	m := rec.Move

	st.SideToMove = st.SideToMove.Opposite()
	us := st.SideToMove
	if us == core.Black {
		st.Fullmove--
	}
	st.Castling = rec.PrevCastling
	st.EnPassant = rec.PrevEnPassant
	st.Halfmove = rec.PrevHalfmove

	moved := b.Remove(m.To)
	if m.Promotion != core.NoPieceType {
		moved = core.NewPiece(us, core.Pawn)
	}
	b.Place(m.From, moved)

	if rec.Captured != core.NoPiece {
		b.Place(rec.CapturedSquare, rec.Captured)
	}
	if rec.RookFrom != core.NoSquare {
		b.Place(rec.RookFrom, b.Remove(rec.RookTo))
	}
}
