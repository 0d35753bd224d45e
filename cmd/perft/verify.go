package main

import (
	"sort"

	"github.com/dylhunn/dragontoothmg"

	"chessrules/internal/position"
)

type mismatch struct {
	move            string
	ours, reference uint64
}

// compare runs divide on both generators and reports every root move whose
// counts differ, including moves only one side generated.
func compare(pos *position.Position, fen string, depth int) []mismatch {
	ours := position.Divide(pos, depth)

	b := dragontoothmg.ParseFen(fen)
	theirs := make(map[string]uint64)
	for _, m := range b.GenerateLegalMoves() {
		unapply := b.Apply(m)
		theirs[m.String()] = referencePerft(&b, depth-1)
		unapply()
	}

	var out []mismatch
	for mv, n := range ours {
		if theirs[mv] != n {
			out = append(out, mismatch{mv, n, theirs[mv]})
		}
	}
	for mv, n := range theirs {
		if _, ok := ours[mv]; !ok {
			out = append(out, mismatch{mv, 0, n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].move < out[j].move })
	return out
}

func referencePerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		unapply := b.Apply(m)
		nodes += referencePerft(b, depth-1)
		unapply()
	}
	return nodes
}
