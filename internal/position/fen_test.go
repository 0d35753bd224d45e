package position

import (
	"errors"
	"strings"
	"testing"

	"chessrules/internal/core"
)

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartingFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"k7/8/8/3pP3/8/8/8/7K w - d6 0 2",
		"8/8/8/8/8/8/6k1/5qK1 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K2R w K - 17 123",
		"8/8/8/8/8/8/8/8 w - - 0 0",
	}
	for _, fen := range fens {
		p, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := p.FEN(); got != fen {
			t.Fatalf("round trip:\n got  %q\n want %q", got, fen)
		}
	}
}

func TestFENCastlingOrderNormalized(t *testing.T) {
	p, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w qkQK - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Fields(p.FEN())[2]; got != "KQkq" {
		t.Fatalf("castling field: got %q want KQkq", got)
	}
	p, err = ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R b kQ - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Fields(p.FEN())[2]; got != "Qk" {
		t.Fatalf("castling field: got %q want Qk", got)
	}
}

func TestFENMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":              "",
		"five fields":        "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0",
		"seven fields":       StartingFEN + " extra",
		"seven ranks":        "rnbqkbnr/pppppppp/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"nine files":         "rnbqkbnr/ppppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"seven files":        "rnbqkbn/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"digit overflow":     "rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"adjacent digits":    "rnbqkbnr/pppppppp/44/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"zero digit":         "rnbqkbnr/pppppppp/08/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"bad piece":          "rnbqkbnr/ppppxppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"empty rank":         "rnbqkbnr//8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"side":               "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"side uppercase":     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR W KQkq - 0 1",
		"castling letter":    "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkx - 0 1",
		"castling duplicate": "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KKq - 0 1",
		"castling with dash": "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w K- - 0 1",
		"ep off board":       "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1",
		"ep wrong rank":      "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e4 0 1",
		"ep wrong side":      "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e3 0 1",
		"negative halfmove":  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1",
		"signed fullmove":    "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 +1",
		"text clock":         "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",
		"leading zero":       "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 00 1",
	}
	for name, fen := range cases {
		p, err := ParseFEN(fen)
		if err == nil {
			t.Fatalf("%s: ParseFEN(%q) accepted, got %q", name, fen, p.FEN())
		}
		if !errors.Is(err, core.ErrMalformedFEN) {
			t.Fatalf("%s: error %v does not wrap ErrMalformedFEN", name, err)
		}
		if p != nil {
			t.Fatalf("%s: partial position returned on error", name)
		}
	}
}

func TestFENDecodesState(t *testing.T) {
	p, err := ParseFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b Kq e3 5 9")
	if err != nil {
		t.Fatal(err)
	}
	st := p.State
	if st.SideToMove != core.Black {
		t.Fatalf("side to move: got %v", st.SideToMove)
	}
	if st.Castling != WhiteKingside|BlackQueenside {
		t.Fatalf("castling: got %v", st.Castling)
	}
	if st.EnPassant.String() != "e3" {
		t.Fatalf("en passant: got %v", st.EnPassant)
	}
	if st.Halfmove != 5 || st.Fullmove != 9 {
		t.Fatalf("clocks: got %d %d", st.Halfmove, st.Fullmove)
	}
	if p.Board.PieceAt(core.NewSquare(3, 4)) != core.NewPiece(core.White, core.Pawn) {
		t.Fatalf("expected white pawn on e4")
	}
	if p.Board.PieceAt(core.NewSquare(7, 3)) != core.NewPiece(core.Black, core.Queen) {
		t.Fatalf("expected black queen on d8")
	}
}
