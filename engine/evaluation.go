package engine

import (
	"chessai/rules"
)

// =============================================================================
// SCORE CONSTANTS
// =============================================================================
const (
	WhiteWinScore = 100_000
	BlackWinScore = -100_000
	DrawScore     = 0
)

// matePlyLimit is how far below the root a mate may be found and still be
// told apart from a material score.
const matePlyLimit = 1000

// scoreAtDepth takes one point off a mate for every ply between the root and
// the mated position, so the search prefers the quickest mate and the
// slowest defence. Other scores pass through.
func scoreAtDepth(score, depth int) int {
	switch score {
	case WhiteWinScore:
		return score - depth
	case BlackWinScore:
		return score + depth
	}
	return score
}

// normalizeScore turns a depth adjusted mate back into the win constant.
func normalizeScore(score int) int {
	switch {
	case score >= WhiteWinScore-matePlyLimit:
		return WhiteWinScore
	case score <= BlackWinScore+matePlyLimit:
		return BlackWinScore
	}
	return score
}

// Material values indexed by rules.PieceType. The king is never traded, so it
// is worth nothing.
var pieceValues = [7]int{
	rules.NoPiece: 0,
	rules.Pawn:    100,
	rules.Knight:  300,
	rules.Bishop:  300,
	rules.Rook:    500,
	rules.Queen:   800,
	rules.King:    0,
}

// PieceValue returns the material value of a piece type.
func PieceValue(pt rules.PieceType) int {
	if int(pt) >= len(pieceValues) {
		return 0
	}
	return pieceValues[pt]
}

// TerminalScore scores checkmate and stalemate. ok is false for positions the
// game continues from.
func TerminalScore(pos rules.Position) (score int, ok bool) {
	if pos.IsCheckmate() {
		if pos.WhiteToMove() {
			return BlackWinScore, true
		}
		return WhiteWinScore, true
	}
	if pos.IsStalemate() {
		return DrawScore, true
	}
	return 0, false
}

// Evaluate scores pos from White's point of view: material balance, unless
// the game has ended in mate or stalemate.
func Evaluate(pos rules.Position) int {
	if score, ok := TerminalScore(pos); ok {
		return score
	}
	return Material(pos)
}

// Material is White's material minus Black's.
func Material(pos rules.Position) int {
	score := 0
	for _, piece := range pos.Pieces() {
		if piece.Color == rules.White {
			score += pieceValues[piece.Type]
		} else {
			score -= pieceValues[piece.Type]
		}
	}
	return score
}
