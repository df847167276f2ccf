package engine

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessai/rules"
)

const (
	// Qb8 is the only mate; slower mates exist as well.
	queenMateInOneFEN = "7k/8/6K1/8/8/8/8/1Q6 w - - 0 1"
	// 1.Kg6 Kg8 2.Qa8#, and no mate in one.
	queenMateInTwoFEN = "7k/8/5K2/8/8/8/8/Q7 w - - 0 1"
	// Qxh5 stalemates, Qc8 mates.
	stalemateTrapFEN = "k7/p1K5/P7/7b/8/7Q/8/8 w - - 0 1"
	// Qxd5 wins a pawn only until exd5.
	defendedPawnFEN = "7k/8/4p3/3p4/8/8/8/3Q3K w - - 0 1"
)

func newTestEngine(t testing.TB, depth int) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MaxDepth = depth
	cfg.Randomize = false
	e, err := New(cfg)
	require.NoError(t, err)
	return e
}

func applied(t testing.TB, pos rules.Position, m rules.Move) rules.Position {
	t.Helper()
	next := pos.Clone()
	next.Apply(m)
	return next
}

// minimax mirrors alphaBeta without pruning.
func minimax(pos rules.Position, depth, heuristic int, cfg Config) int {
	if score, ok := TerminalScore(pos); ok {
		return scoreAtDepth(score, depth)
	}
	if depth >= cfg.MaxDepth && (!cfg.mayExtend(depth) || !HasPendingRecapture(pos)) {
		return heuristic
	}
	moves, _ := OrderMoves(pos, nil)
	maximizing := pos.WhiteToMove()
	best := WhiteWinScore + 1
	if maximizing {
		best = BlackWinScore - 1
	}
	for _, sm := range moves {
		child := pos.Clone()
		child.Apply(sm.Move)
		if maximizing {
			best = max(best, minimax(child, depth+1, heuristic+sm.Delta, cfg))
		} else {
			best = min(best, minimax(child, depth+1, heuristic-sm.Delta, cfg))
		}
	}
	return best
}

// minimaxRoot returns the unpruned root value and the first root move reaching it.
func minimaxRoot(pos rules.Position, cfg Config) (int, rules.Move) {
	root := Material(pos)
	moves, _ := OrderMoves(pos, nil)
	maximizing := pos.WhiteToMove()

	scores := make([]int, len(moves))
	best := WhiteWinScore + 1
	if maximizing {
		best = BlackWinScore - 1
	}
	for i, sm := range moves {
		child := pos.Clone()
		child.Apply(sm.Move)
		if maximizing {
			scores[i] = minimax(child, 1, root+sm.Delta, cfg)
			best = max(best, scores[i])
		} else {
			scores[i] = minimax(child, 1, root-sm.Delta, cfg)
			best = min(best, scores[i])
		}
	}
	for i, s := range scores {
		if s == best {
			return best, moves[i].Move
		}
	}
	return best, 0
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDepth = 0
	_, err := New(cfg)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	cfg = DefaultConfig()
	cfg.MaxExtension = -5
	_, err = New(cfg)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	assert.Equal(t, 3, DefaultConfig().MaxDepth)
}

func TestGetMoveMateInOne(t *testing.T) {
	mirrored, err := rules.MirrorFEN(queenMateInOneFEN)
	require.NoError(t, err)

	for _, tc := range []struct {
		name string
		fen  string
		mate string
		want int
	}{
		{"white", queenMateInOneFEN, "b1b8", WhiteWinScore},
		{"black", mirrored, "b8b1", BlackWinScore},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := parse(t, tc.fen)
			mate := move(t, b, tc.mate)
			require.True(t, applied(t, b, mate).IsCheckmate())

			// Deeper searches also see slower mates and must still take the quickest.
			for depth := 1; depth <= 4; depth++ {
				e := newTestEngine(t, depth)

				res, err := e.Search(b)
				require.NoError(t, err)
				assert.Equal(t, tc.want, res.Score, "depth %d", depth)
				assert.Equal(t, mate, res.Move, "depth %d played %s", depth, res.Move.String())
				assert.Equal(t, []rules.Move{mate}, res.PV, "depth %d", depth)
				assert.False(t, e.HasCache(), "a mate on the board leaves nothing to keep")
			}

			m, err := newTestEngine(t, 3).GetMove(b)
			require.NoError(t, err)
			assert.Equal(t, mate, m)
		})
	}
}

func TestQuickestMateSurvivesRandomOrder(t *testing.T) {
	b := parse(t, queenMateInOneFEN)
	mate := move(t, b, "b1b8")
	for seed := int64(1); seed <= 5; seed++ {
		cfg := DefaultConfig()
		cfg.Seed = seed
		e, err := New(cfg)
		require.NoError(t, err)

		m, err := e.GetMove(b)
		require.NoError(t, err)
		assert.Equal(t, mate, m, "seed %d", seed)
	}
}

func TestGetMoveAvoidsStalemate(t *testing.T) {
	b := parse(t, stalemateTrapFEN)
	trap := move(t, b, "h3h5")
	require.True(t, applied(t, b, trap).IsStalemate())

	for depth := 1; depth <= 3; depth++ {
		e := newTestEngine(t, depth)
		res, err := e.Search(b)
		require.NoError(t, err)

		assert.NotEqual(t, trap, res.Move, "depth %d", depth)
		assert.False(t, applied(t, b, res.Move).IsStalemate(), "depth %d", depth)
		assert.Greater(t, res.Score, DrawScore, "depth %d", depth)
	}
}

func TestCaptureExtensionSeesRecapture(t *testing.T) {
	b := parse(t, defendedPawnFEN)
	grab := move(t, b, "d1d5")
	material := Evaluate(b)

	cfg := DefaultConfig()
	cfg.MaxDepth = 1
	cfg.Randomize = false
	cfg.CaptureExtension = false
	flat, err := New(cfg)
	require.NoError(t, err)

	res, err := flat.Search(b)
	require.NoError(t, err)
	assert.Equal(t, grab, res.Move)
	assert.Equal(t, material+PieceValue(rules.Pawn), res.Score)
	assert.Zero(t, res.Stats.Extensions)

	cfg.CaptureExtension = true
	extended, err := New(cfg)
	require.NoError(t, err)

	res, err = extended.Search(b)
	require.NoError(t, err)
	assert.NotEqual(t, grab, res.Move)
	assert.Equal(t, material, res.Score)
	assert.NotZero(t, res.Stats.Extensions)
	assert.Greater(t, res.Stats.MaxDepth, cfg.MaxDepth)
}

func TestCaptureExtensionCap(t *testing.T) {
	b := parse(t, defendedPawnFEN)

	cfg := DefaultConfig()
	cfg.MaxDepth = 1
	cfg.Randomize = false
	cfg.MaxExtension = 0
	e, err := New(cfg)
	require.NoError(t, err)

	res, err := e.Search(b)
	require.NoError(t, err)
	assert.Zero(t, res.Stats.Extensions)
	assert.Equal(t, 1, res.Stats.MaxDepth)
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	cases := []struct {
		fen   string
		depth int
	}{
		{defendedPawnFEN, 1},
		{defendedPawnFEN, 2},
		{queenMateInTwoFEN, 3},
		{stalemateTrapFEN, 2},
		{"4k3/8/3p4/2r1p3/4P3/2N5/8/4K2R w - - 0 1", 3},
		{"4k3/8/3p4/2r1p3/4P3/2N5/8/4K2R b - - 0 1", 3},
		{italianFEN, 2},
	}
	for _, tc := range cases {
		b := parse(t, tc.fen)
		e := newTestEngine(t, tc.depth)

		res, err := e.Search(b)
		require.NoError(t, err, tc.fen)

		wantScore, wantMove := minimaxRoot(b, e.Config())
		assert.Equal(t, normalizeScore(wantScore), res.Score, "%s depth %d", tc.fen, tc.depth)
		assert.Equal(t, wantMove.String(), res.Move.String(), "%s depth %d", tc.fen, tc.depth)
	}
}

func TestPruningVisitsFewerNodes(t *testing.T) {
	b := parse(t, italianFEN)
	e := newTestEngine(t, 2)
	res, err := e.Search(b)
	require.NoError(t, err)
	assert.NotZero(t, res.Stats.BetaCutoffs)
}

func TestCacheFollowsForcedMate(t *testing.T) {
	b := parse(t, queenMateInTwoFEN)
	e := newTestEngine(t, 3)

	first, err := e.Search(b)
	require.NoError(t, err)
	require.Equal(t, WhiteWinScore, first.Score)
	require.Len(t, first.PV, 3)
	assert.False(t, applied(t, b, first.Move).IsCheckmate(), "there is no mate in one")
	require.True(t, e.HasCache())

	// The opponent plays the expected reply.
	b.Apply(first.PV[0])
	b.Apply(first.PV[1])

	second, err := e.Search(b)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, uint64(1), second.Stats.CacheHits)
	assert.Zero(t, second.Stats.Nodes, "a cached subtree is not searched again")
	assert.Equal(t, WhiteWinScore, second.Score)
	assert.Equal(t, first.PV[2], second.Move)
	assert.True(t, applied(t, b, second.Move).IsCheckmate())

	fresh, err := newTestEngine(t, 3).Search(b)
	require.NoError(t, err)
	assert.False(t, fresh.Cached)
	assert.Equal(t, fresh.Score, second.Score)
	assert.Equal(t, fresh.Move, second.Move, "kept subtree and fresh search disagree")
	assert.True(t, applied(t, b, fresh.Move).IsCheckmate())
}

func TestCacheDroppedWhenGameLeavesLine(t *testing.T) {
	b := parse(t, queenMateInTwoFEN)
	e := newTestEngine(t, 3)

	first, err := e.Search(b)
	require.NoError(t, err)
	require.True(t, e.HasCache())

	// Something other than the expected position arrives.
	other := parse(t, queenMateInOneFEN)
	res, err := e.Search(other)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, uint64(1), res.Stats.CacheMisses)
	assert.NotZero(t, res.Stats.Nodes)
	assert.True(t, applied(t, other, res.Move).IsCheckmate())

	// Replay the first search and deviate from the expected reply if Black can.
	_, err = e.Search(b)
	require.NoError(t, err)
	require.True(t, e.HasCache())
	b.Apply(first.PV[0])
	for _, reply := range b.LegalMoves() {
		if reply == first.PV[1] {
			continue
		}
		b.Apply(reply)
		res, err := e.Search(b)
		require.NoError(t, err)
		assert.False(t, res.Cached)
		assert.Equal(t, uint64(1), res.Stats.CacheMisses)
		return
	}
}

func TestResetAndSetMaxDepthDropCache(t *testing.T) {
	b := parse(t, queenMateInTwoFEN)
	e := newTestEngine(t, 3)

	_, err := e.Search(b)
	require.NoError(t, err)
	require.True(t, e.HasCache())
	e.Reset()
	assert.False(t, e.HasCache())

	_, err = e.Search(b)
	require.NoError(t, err)
	require.True(t, e.HasCache())
	require.NoError(t, e.SetMaxDepth(4))
	assert.False(t, e.HasCache())
	assert.Equal(t, 4, e.Config().MaxDepth)

	assert.True(t, errors.Is(e.SetMaxDepth(0), ErrInvalidConfig))
	assert.Equal(t, 4, e.Config().MaxDepth)
}

func TestNonMateScoreClearsCache(t *testing.T) {
	e := newTestEngine(t, 2)
	_, err := e.Search(parse(t, italianFEN))
	require.NoError(t, err)
	assert.False(t, e.HasCache())
}

func TestGetMoveOnFinishedGame(t *testing.T) {
	e := newTestEngine(t, 3)
	for _, fen := range []string{
		"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
		"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
	} {
		_, err := e.GetMove(parse(t, fen))
		assert.True(t, errors.Is(err, ErrGameOver), fen)
	}
}

// frozenBoard claims the game goes on but offers no moves.
type frozenBoard struct {
	*rules.Board
}

func (f frozenBoard) Clone() rules.Position { return frozenBoard{f.Board.Copy()} }

func (f frozenBoard) LegalMoves() []rules.Move { return nil }

func (f frozenBoard) IsCheckmate() bool { return false }

func (f frozenBoard) IsStalemate() bool { return false }

func TestNoLegalMovesInLivePositionFails(t *testing.T) {
	e := newTestEngine(t, 3)
	_, err := e.GetMove(frozenBoard{rules.StartPosition()})
	assert.True(t, errors.Is(err, ErrNoLegalMoves))
	assert.False(t, e.HasCache())
}

func TestSeededEnginesAgree(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDepth = 2
	cfg.Seed = 1234

	a, err := New(cfg)
	require.NoError(t, err)
	b, err := New(cfg)
	require.NoError(t, err)

	pos := rules.StartPosition()
	ma, err := a.GetMove(pos)
	require.NoError(t, err)
	mb, err := b.GetMove(pos)
	require.NoError(t, err)
	assert.Equal(t, ma, mb)
}

func TestSearchDoesNotMutateCallerPosition(t *testing.T) {
	b := parse(t, italianFEN)
	before := b.FEN()
	e := newTestEngine(t, 2)
	_, err := e.GetMove(b)
	require.NoError(t, err)
	assert.Equal(t, before, b.FEN())
	_, _, ok := b.LastMove()
	assert.False(t, ok)
}

func TestUCIScoreString(t *testing.T) {
	assert.Equal(t, "cp 120", getMateOrCPScore(120, true, 3))
	assert.Equal(t, "cp -120", getMateOrCPScore(120, false, 3))
	assert.Equal(t, "mate 2", getMateOrCPScore(WhiteWinScore, true, 3))
	assert.Equal(t, "mate -1", getMateOrCPScore(WhiteWinScore, false, 2))
	assert.Equal(t, "mate 1", getMateOrCPScore(BlackWinScore, false, 1))
}
