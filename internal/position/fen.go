package position

import (
	"fmt"
	"strconv"
	"strings"

	"chessrules/internal/core"
)

// ParseFEN decodes a six-field FEN string. On any error it returns nil and an
// error wrapping core.ErrMalformedFEN; no partially decoded position escapes.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return nil, malformed("expected 6 fields, got %d", len(parts))
	}

	p := &Position{}

	// Parse board
	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return nil, malformed("expected 8 ranks, got %d", len(ranks))
	}
	for i, rankText := range ranks {
		rank := 7 - i
		file := 0
		prevDigit := false
		for j := 0; j < len(rankText); j++ {
			ch := rankText[j]
			if ch >= '1' && ch <= '8' {
				if prevDigit {
					return nil, malformed("rank %d has adjacent empty-square counts", rank+1)
				}
				file += int(ch - '0')
				prevDigit = true
				if file > 8 {
					return nil, malformed("rank %d has more than 8 files", rank+1)
				}
				continue
			}
			prevDigit = false
			piece, ok := core.PieceFromChar(ch)
			if !ok {
				return nil, malformed("unknown piece %q in rank %d", ch, rank+1)
			}
			if file >= 8 {
				return nil, malformed("rank %d has more than 8 files", rank+1)
			}
			p.Board.Place(core.NewSquare(rank, file), piece)
			file++
		}
		if file != 8 {
			return nil, malformed("rank %d has %d files", rank+1, file)
		}
	}

	switch parts[1] {
	case "w":
		p.State.SideToMove = core.White
	case "b":
		p.State.SideToMove = core.Black
	default:
		return nil, malformed("side to move must be 'w' or 'b', got %q", parts[1])
	}

	castling, err := parseCastling(parts[2])
	if err != nil {
		return nil, err
	}
	p.State.Castling = castling

	p.State.EnPassant = core.NoSquare
	if parts[3] != "-" {
		sq, err := core.ParseSquare(parts[3])
		if err != nil {
			return nil, malformed("en passant: %v", err)
		}
		// The target is behind a pawn that just double-pushed, so its rank is
		// fixed by the side now to move.
		wantRank := 5
		if p.State.SideToMove == core.Black {
			wantRank = 2
		}
		if sq.Rank() != wantRank {
			return nil, malformed("en passant square %s is not on rank %d", parts[3], wantRank+1)
		}
		p.State.EnPassant = sq
	}

	if p.State.Halfmove, err = parseClock(parts[4]); err != nil {
		return nil, malformed("halfmove clock: %v", err)
	}
	if p.State.Fullmove, err = parseClock(parts[5]); err != nil {
		return nil, malformed("fullmove number: %v", err)
	}

	return p, nil
}

func parseCastling(field string) (CastlingRights, error) {
	if field == "-" {
		return NoCastling, nil
	}
	if field == "" {
		return NoCastling, malformed("empty castling field")
	}
	var cr CastlingRights
	for i := 0; i < len(field); i++ {
		var flag CastlingRights
		switch field[i] {
		case 'K':
			flag = WhiteKingside
		case 'Q':
			flag = WhiteQueenside
		case 'k':
			flag = BlackKingside
		case 'q':
			flag = BlackQueenside
		default:
			return NoCastling, malformed("invalid castling character %q", field[i])
		}
		if cr.Has(flag) {
			return NoCastling, malformed("duplicate castling character %q", field[i])
		}
		cr |= flag
	}
	return cr, nil
}

// parseClock accepts an unsigned decimal without sign or leading zeros, so
// that encoding reproduces the field byte for byte.
func parseClock(field string) (int, error) {
	if field == "" {
		return 0, fmt.Errorf("empty")
	}
	for i := 0; i < len(field); i++ {
		if field[i] < '0' || field[i] > '9' {
			return 0, fmt.Errorf("%q is not a non-negative integer", field)
		}
	}
	if len(field) > 1 && field[0] == '0' {
		return 0, fmt.Errorf("%q has leading zeros", field)
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("%q out of range", field)
	}
	return n, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", core.ErrMalformedFEN, fmt.Sprintf(format, args...))
}

// FEN encodes the position. It is the exact inverse of ParseFEN apart from
// castling letter order.
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.Board.PieceAt(core.NewSquare(rank, file))
			if piece == core.NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(piece.Char())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	sb.WriteString(p.State.SideToMove.String())
	sb.WriteByte(' ')
	sb.WriteString(p.State.Castling.String())
	sb.WriteByte(' ')
	sb.WriteString(p.State.EnPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.State.Halfmove))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.State.Fullmove))
	return sb.String()
}
