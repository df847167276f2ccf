package engine

import (
	"fmt"
	"strings"

	"chessai/rules"
)

// PrincipalVariation follows the best child from h down to a leaf.
func PrincipalVariation(t *Tree, h Handle) []rules.Move {
	var pv []rules.Move
	for next := t.BestChild(h); next.IsValid(); next = t.BestChild(next) {
		pv = append(pv, t.Node(next).Move)
	}
	return pv
}

func getPVLineString(pv []rules.Move) string {
	moves := make([]string, 0, len(pv))
	for i := range pv {
		moves = append(moves, pv[i].String())
	}
	return strings.Join(moves, " ")
}

// IsMateScore reports whether score is a forced win for either side, with or
// without the distance adjustment applied inside the search.
func IsMateScore(score int) bool {
	return score >= WhiteWinScore-matePlyLimit || score <= BlackWinScore+matePlyLimit
}

// getMateOrCPScore renders a White-relative score from the side to move's
// point of view, the way UCI wants it. Mates carry no distance of their own,
// so the length of the PV stands in for it.
func getMateOrCPScore(score int, whiteToMove bool, pvLength int) string {
	if !whiteToMove {
		score = -score
	}
	if IsMateScore(score) {
		mateInN := (pvLength + 1) / 2
		if score < 0 {
			mateInN = -mateInN
		}
		return fmt.Sprintf("mate %d", mateInN)
	}
	return fmt.Sprintf("cp %d", score)
}

// UCIScore renders the score of r for the "score" field of a UCI info line.
func (r Result) UCIScore(whiteToMove bool) string {
	return getMateOrCPScore(r.Score, whiteToMove, len(r.PV))
}

// PVString is the principal variation in long algebraic notation.
func (r Result) PVString() string {
	return getPVLineString(r.PV)
}
