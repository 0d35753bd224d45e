package position

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(p *Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	buffers := make([][]Move, depth)
	for i := range buffers {
		buffers[i] = make([]Move, 0, maxMoves)
	}
	return perft(p, depth, buffers)
}

func perft(p *Position, depth int, buffers [][]Move) uint64 {
	moves := p.AppendLegalMoves(buffers[depth-1][:0])
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		rec := p.Apply(m)
		nodes += perft(p, depth-1, buffers)
		p.Undo(rec)
	}
	return nodes
}

// Divide returns the perft count below each root move, keyed by its minimal
// notation.
func Divide(p *Position, depth int) map[string]uint64 {
	out := make(map[string]uint64)
	if depth <= 0 {
		return out
	}
	for _, m := range p.LegalMoves() {
		rec := p.Apply(m)
		out[m.String()] = Perft(p, depth-1)
		p.Undo(rec)
	}
	return out
}
