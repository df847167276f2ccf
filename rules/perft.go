package rules

// Perft counts the leaf positions reachable from pos in exactly depth plies.
// pos is walked with Apply and Undo and is left as it was found.
func Perft(pos Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := pos.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		pos.Apply(m)
		nodes += Perft(pos, depth-1)
		pos.Undo()
	}
	return nodes
}

// PerftDivide is Perft split by root move, keyed by long algebraic notation.
func PerftDivide(pos Position, depth int) map[string]uint64 {
	result := make(map[string]uint64)
	if depth <= 0 {
		return result
	}
	for _, m := range pos.LegalMoves() {
		pos.Apply(m)
		result[m.String()] = Perft(pos, depth-1)
		pos.Undo()
	}
	return result
}
