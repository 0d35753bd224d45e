package core

import "testing"

func TestPieceEncoding(t *testing.T) {
	for _, c := range []Color{White, Black} {
		for pt := Pawn; pt <= King; pt++ {
			p := NewPiece(c, pt)
			if p.Type() != pt || p.Color() != c {
				t.Fatalf("NewPiece(%v,%v): decoded type=%v color=%v", c, pt, p.Type(), p.Color())
			}
			back, ok := PieceFromChar(p.Char())
			if !ok || back != p {
				t.Fatalf("char round trip for %c: got %v ok=%v", p.Char(), back, ok)
			}
		}
	}
	if NewPiece(Black, NoPieceType) != NoPiece {
		t.Fatalf("NoPieceType must encode as NoPiece")
	}
	if _, ok := PieceFromChar('x'); ok {
		t.Fatalf("'x' is not a piece letter")
	}
}

func TestSquare(t *testing.T) {
	sq, err := ParseSquare("e4")
	if err != nil {
		t.Fatal(err)
	}
	if sq.Rank() != 3 || sq.File() != 4 || sq.String() != "e4" {
		t.Fatalf("e4 decoded as rank=%d file=%d %q", sq.Rank(), sq.File(), sq)
	}
	if _, ok := NewSquare(0, 7).Offset(0, 1); ok {
		t.Fatalf("h1 + one file must fall off the board")
	}
	if got, ok := NewSquare(0, 0).Offset(2, 1); !ok || got.String() != "b3" {
		t.Fatalf("a1 knight jump: got %v ok=%v", got, ok)
	}
	for _, bad := range []string{"", "e", "i1", "a9", "e44"} {
		if _, err := ParseSquare(bad); err == nil {
			t.Fatalf("ParseSquare(%q) should fail", bad)
		}
	}
	if NoSquare.String() != "-" {
		t.Fatalf("NoSquare should print as '-'")
	}
}

func TestColorOpposite(t *testing.T) {
	if White.Opposite() != Black || Black.Opposite() != White {
		t.Fatalf("Opposite is broken")
	}
}
