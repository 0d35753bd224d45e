package position

import (
	"strings"
	"testing"

	nchess "github.com/corentings/chess/v2"
	"github.com/dylhunn/dragontoothmg"
)

type perftCase struct {
	name  string
	fen   string
	nodes []uint64 // nodes[i] is perft(i+1)
}

var perftCases = []perftCase{
	{"start", StartingFEN, []uint64{20, 400, 8902}},
	{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", []uint64{48, 2039, 97862}},
	{"endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", []uint64{14, 191, 2812}},
	{"mirror", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", []uint64{6, 264, 9467}},
	{"talkchess", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", []uint64{44, 1486, 62379}},
	{"en passant", "k7/8/8/3pP3/8/8/8/7K w - d6 0 2", []uint64{5, 19}},
	{"promotion", "1n5k/P7/8/8/8/8/8/7K w - - 0 1", []uint64{11}},
}

func TestPerft(t *testing.T) {
	for _, tc := range perftCases {
		p := mustParse(t, tc.fen)
		for i, want := range tc.nodes {
			depth := i + 1
			if testing.Short() && want > 10000 {
				continue
			}
			if got := Perft(p, depth); got != want {
				t.Fatalf("%s depth %d: got %d want %d", tc.name, depth, got, want)
			}
			if p.FEN() != tc.fen {
				t.Fatalf("%s: perft mutated position to %q", tc.name, p.FEN())
			}
		}
	}
}

func TestPerftDepthZero(t *testing.T) {
	if got := Perft(New(), 0); got != 1 {
		t.Fatalf("perft(0) = %d", got)
	}
	if got := Divide(New(), 0); len(got) != 0 {
		t.Fatalf("divide(0) = %v", got)
	}
}

func TestDivideSumsToPerft(t *testing.T) {
	p := mustParse(t, perftCases[1].fen)
	div := Divide(p, 2)
	if len(div) != 48 {
		t.Fatalf("divide has %d root moves", len(div))
	}
	var sum uint64
	for _, n := range div {
		sum += n
	}
	if sum != 2039 {
		t.Fatalf("divide sum %d", sum)
	}
}

func dragontoothPerft(b *dragontoothmg.Board, depth int) uint64 {
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		unapply := b.Apply(m)
		nodes += dragontoothPerft(b, depth-1)
		unapply()
	}
	return nodes
}

// TestDivideMatchesDragontooth compares per-root-move counts with an
// independent bitboard generator so a mismatch points at the faulty move.
func TestDivideMatchesDragontooth(t *testing.T) {
	const depth = 3
	for _, tc := range perftCases {
		p := mustParse(t, tc.fen)
		ours := Divide(p, depth-1)

		b := dragontoothmg.ParseFen(tc.fen)
		theirs := make(map[string]uint64)
		for _, m := range b.GenerateLegalMoves() {
			unapply := b.Apply(m)
			theirs[m.String()] = dragontoothPerft(&b, depth-2)
			unapply()
		}

		if len(ours) != len(theirs) {
			t.Fatalf("%s: %d root moves, dragontooth has %d", tc.name, len(ours), len(theirs))
		}
		for mv, n := range theirs {
			if ours[mv] != n {
				t.Fatalf("%s: %s has %d nodes, dragontooth has %d", tc.name, mv, ours[mv], n)
			}
		}
	}
}

// fenWithoutEnPassant drops the en passant field, which libraries disagree on
// after double pushes no pawn can capture.
func fenWithoutEnPassant(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return fen
	}
	return strings.Join(append(fields[:3], fields[4:]...), " ")
}

func TestGameMatchesReferenceLibrary(t *testing.T) {
	moves := []string{
		"e2e4", "d7d5", "e4d5", "c7c5", "d5c6", "b8c6",
		"g1f3", "g8f6", "f1c4", "e7e5", "e1g1", "f8c5",
		"d2d4", "e5d4", "c1g5", "e8g8", "f3d4", "c6d4",
		"d1d4", "c5d4", "g5f6", "d8f6", "b1c3", "d4c3",
		"b2c3", "f6c3", "a1b1", "c3c4",
	}

	p := New()
	ref := nchess.NewGame()
	for i, mv := range moves {
		m, err := p.ResolveUCI(mv)
		if err != nil {
			t.Fatalf("ply %d %s: %v", i, mv, err)
		}
		p.Apply(m)
		if err := ref.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			t.Fatalf("reference rejected ply %d %s: %v", i, mv, err)
		}
		got, want := fenWithoutEnPassant(p.FEN()), fenWithoutEnPassant(ref.FEN())
		if got != want {
			t.Fatalf("ply %d %s:\n got  %q\n want %q", i, mv, got, want)
		}
	}
}
