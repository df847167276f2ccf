package engine

import (
	"math/rand"
	"sort"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"

	"chessai/rules"
)

// ScoredMove is a legal move with its ordering delta. The delta is the
// material it captures plus, in the opening, how much it centralises a minor
// piece or pawn.
type ScoredMove struct {
	Move    rules.Move
	Delta   int
	Capture bool
}

/*
	Move ordering
	- Captures are worth the piece they take (en passant takes a pawn).
	- While more than openingPieceCount pieces are on the board, pawns, knights and bishops
	  get centreBonus per step they move towards d4/d5/e4/e5.
	- Middlegame and endgame get no positional term.
	- Moves with the same delta form a group; groups go out highest delta first.
	  Inside a group captures go first, and both halves may be shuffled.
*/
const (
	openingPieceCount = 28
	centreBonus       = 10
)

var centreSquares = [4]rules.Square{27, 28, 35, 36} // d4, e4, d5, e5

// centreDistance[sq] is the Manhattan distance from sq to the closest centre square.
var centreDistance [64]int

func init() {
	for sq := rules.Square(0); sq < 64; sq++ {
		best := 64
		for _, c := range centreSquares {
			best = min(best, manhattan(sq, c))
		}
		centreDistance[sq] = best
	}
}

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

func manhattan(a, b rules.Square) int {
	return abs(a.File()-b.File()) + abs(a.Rank()-b.Rank())
}

// CentreDistance returns the minimum Manhattan distance from sq to the centre.
func CentreDistance(sq rules.Square) int {
	return centreDistance[sq]
}

// isRecapture reports whether m takes back on the square the previous move
// captured on.
func isRecapture(pos rules.Position, m rules.Move, isCapture bool) bool {
	if !isCapture {
		return false
	}
	last, lastWasCapture, ok := pos.LastMove()
	return ok && lastWasCapture && last.To() == m.To()
}

// HasPendingRecapture reports whether the side to move can recapture on the
// square of the previous capture.
func HasPendingRecapture(pos rules.Position) bool {
	last, lastWasCapture, ok := pos.LastMove()
	if !ok || !lastWasCapture {
		return false
	}
	for _, m := range pos.LegalMoves() {
		if m.To() == last.To() && pos.IsCapture(m) {
			return true
		}
	}
	return false
}

func scoreMove(pos rules.Position, m rules.Move, opening bool) ScoredMove {
	sm := ScoredMove{Move: m, Capture: pos.IsCapture(m)}
	from, to := rules.Square(m.From()), rules.Square(m.To())

	if sm.Capture {
		if victim, ok := pos.PieceAt(to); ok {
			sm.Delta += pieceValues[victim.Type]
		} else {
			sm.Delta += pieceValues[rules.Pawn] // en passant
		}
	}

	if opening {
		mover, _ := pos.PieceAt(from)
		switch mover.Type {
		case rules.Pawn, rules.Knight, rules.Bishop:
			sm.Delta += centreBonus * (centreDistance[from] - centreDistance[to])
		}
	}
	return sm
}

type moveGroup struct {
	captures []ScoredMove
	quiets   []ScoredMove
}

// OrderMoves scores the legal moves of pos and returns them best first,
// together with whether a recapture is pending. A nil rng keeps the order
// deterministic; otherwise ties are shuffled with it.
func OrderMoves(pos rules.Position, rng *rand.Rand) ([]ScoredMove, bool) {
	return orderMoves(pos, pos.LegalMoves(), rng)
}

// orderMoves is OrderMoves over an already generated move list.
func orderMoves(pos rules.Position, legal []rules.Move, rng *rand.Rand) ([]ScoredMove, bool) {
	opening := pos.PieceCount() > openingPieceCount

	recapture := false
	groups := make(map[int]*moveGroup)
	for _, m := range legal {
		sm := scoreMove(pos, m, opening)
		if isRecapture(pos, m, sm.Capture) {
			recapture = true
		}

		g, ok := groups[sm.Delta]
		if !ok {
			g = &moveGroup{}
			groups[sm.Delta] = g
		}
		if sm.Capture {
			g.captures = append(g.captures, sm)
		} else {
			g.quiets = append(g.quiets, sm)
		}
	}

	deltas := maps.Keys(groups)
	sort.Sort(sort.Reverse(sort.IntSlice(deltas)))

	ordered := make([]ScoredMove, 0, len(legal))
	for _, delta := range deltas {
		g := groups[delta]
		if rng != nil {
			shuffle(rng, g.captures)
			shuffle(rng, g.quiets)
		}
		ordered = append(ordered, g.captures...)
		ordered = append(ordered, g.quiets...)
	}
	return ordered, recapture
}

func shuffle(rng *rand.Rand, moves []ScoredMove) {
	rng.Shuffle(len(moves), func(i, j int) {
		moves[i], moves[j] = moves[j], moves[i]
	})
}
