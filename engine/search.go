package engine

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"chessai/rules"
)

var (
	// ErrGameOver is returned when asked for a move in a mated or stalemated position.
	ErrGameOver = errors.New("engine: game is over")

	// ErrNoLegalMoves means the rules engine offered no moves for a position
	// it did not report as finished.
	ErrNoLegalMoves = errors.New("engine: no legal moves in a non-terminal position")

	// ErrNoMove means no root child carries the root's score.
	ErrNoMove = errors.New("engine: search produced no move")

	ErrInvalidConfig = errors.New("engine: invalid config")
)

// Result describes one completed search.
type Result struct {
	Move  rules.Move
	Score int
	// PV is the expected line, starting with Move.
	PV []rules.Move
	// Cached is set when the move came from a subtree kept from the previous call.
	Cached  bool
	Stats   SearchStats
	Elapsed time.Duration
}

// Engine picks moves with a depth-bounded alpha-beta search. An Engine keeps
// a subtree between calls and is not safe for concurrent use.
type Engine struct {
	cfg   Config
	rng   *rand.Rand
	log   zerolog.Logger
	cache *Tree
	stats SearchStats
}

// New returns an Engine configured by cfg.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.seed())),
		log: cfg.logger(),
	}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// SetMaxDepth changes the nominal depth. The cached subtree was searched to
// the old depth, so it is dropped.
func (e *Engine) SetMaxDepth(depth int) error {
	cfg := e.cfg
	cfg.MaxDepth = depth
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg
	e.Reset()
	return nil
}

// Reset forgets the cached subtree.
func (e *Engine) Reset() {
	e.cache = nil
}

// HasCache reports whether a subtree is kept for the next call.
func (e *Engine) HasCache() bool {
	return e.cache != nil
}

// GetMove returns the move the engine plays in pos.
func (e *Engine) GetMove(pos rules.Position) (rules.Move, error) {
	res, err := e.Search(pos)
	if err != nil {
		return 0, err
	}
	return res.Move, nil
}

// Search runs a full search of pos, or reuses the kept subtree when it was
// built for exactly this position, and returns the chosen move.
func (e *Engine) Search(pos rules.Position) (Result, error) {
	start := time.Now()
	e.stats = SearchStats{}

	tree := e.takeCache(pos)
	cached := tree != nil
	if !cached {
		var err error
		if tree, err = e.searchFresh(pos); err != nil {
			return Result{}, err
		}
	}

	rootScore := tree.Root().CurrentScore()
	best := tree.BestChild(RootHandle)
	if !best.IsValid() {
		return Result{}, errors.Wrapf(ErrNoMove, "root score %d, %d children, position %s",
			rootScore, len(tree.Root().Children), pos.FEN())
	}

	res := Result{
		Move:   tree.Node(best).Move,
		Score:  normalizeScore(rootScore),
		PV:     PrincipalVariation(tree, RootHandle),
		Cached: cached,
	}
	e.updateCache(tree, best, rootScore)

	res.Stats = e.stats
	res.Elapsed = time.Since(start)
	e.log.Debug().
		Str("move", res.Move.String()).
		Int("score", res.Score).
		Str("pv", getPVLineString(res.PV)).
		Bool("cached", res.Cached).
		Bool("kept", e.cache != nil).
		Object("stats", res.Stats).
		Dur("elapsed", res.Elapsed).
		Msg("search-complete")
	return res, nil
}

// takeCache hands out the kept subtree if its root is pos, and drops it otherwise.
func (e *Engine) takeCache(pos rules.Position) *Tree {
	if e.cache == nil {
		return nil
	}
	tree := e.cache
	e.cache = nil

	root := tree.Root().Position
	if root.Key() != pos.Key() || root.WhiteToMove() != pos.WhiteToMove() {
		e.stats.CacheMisses++
		e.log.Debug().
			Str("expected", root.FEN()).
			Str("actual", pos.FEN()).
			Msg("cache-mismatch")
		return nil
	}
	e.stats.CacheHits++
	return tree
}

func (e *Engine) searchFresh(pos rules.Position) (*Tree, error) {
	tree := NewTree(pos.Clone())
	root := tree.Root()
	if _, ok := TerminalScore(root.Position); ok {
		return nil, errors.Wrapf(ErrGameOver, "position %s", pos.FEN())
	}
	root.setEval(Material(root.Position))

	var rng *rand.Rand
	if e.cfg.Randomize {
		rng = e.rng
	}
	if err := e.alphaBeta(tree, RootHandle, BlackWinScore-1, WhiteWinScore+1, rng); err != nil {
		return nil, err
	}
	return tree, nil
}

// updateCache keeps the opponent's expected reply to best when the root is a
// forced mate and that reply has already been searched; otherwise the next
// call searches from scratch. Mate scores in the kept tree stay relative to
// the old root, which shifts all of them by the same two plies.
func (e *Engine) updateCache(tree *Tree, best Handle, rootScore int) {
	e.cache = nil
	if !IsMateScore(rootScore) {
		return
	}
	for _, reply := range tree.Node(best).Children {
		if tree.Node(reply).CurrentScore() == rootScore {
			e.cache = tree.Extract(reply)
			return
		}
	}
}

// alphaBeta searches the node behind h and backs its score up into it. rng
// shuffles this node's move order and is not passed on to children.
func (e *Engine) alphaBeta(t *Tree, h Handle, alpha, beta int, rng *rand.Rand) error {
	e.stats.Nodes++
	node := t.Node(h)
	pos := node.Position
	depth := node.Depth
	e.stats.MaxDepth = max(e.stats.MaxDepth, depth)

	legal := pos.LegalMoves()
	if len(legal) == 0 {
		score, ok := TerminalScore(pos)
		if !ok {
			return errors.Wrapf(ErrNoLegalMoves, "position %s", pos.FEN())
		}
		node.setEval(scoreAtDepth(score, depth))
		e.stats.Terminals++
		return nil
	}

	moves, recapture := orderMoves(pos, legal, rng)

	// Past the nominal depth only an unresolved recapture keeps the search going.
	if depth >= e.cfg.MaxDepth {
		if !e.cfg.mayExtend(depth) || !recapture {
			e.stats.Leaves++
			return nil
		}
		e.stats.Extensions++
	}

	base := node.CurrentScore()
	maximizing := pos.WhiteToMove()

	var best int
	if maximizing {
		best = BlackWinScore - 1
	} else {
		best = WhiteWinScore + 1
	}

	for _, sm := range moves {
		child := pos.Clone()
		child.Apply(sm.Move)

		heuristic := base - sm.Delta
		if maximizing {
			heuristic = base + sm.Delta
		}
		ch := t.AddChild(h, child, sm.Move, heuristic)
		if err := e.alphaBeta(t, ch, alpha, beta, nil); err != nil {
			return err
		}

		score := t.Node(ch).CurrentScore()
		if maximizing {
			best = max(best, score)
			alpha = max(alpha, best)
		} else {
			best = min(best, score)
			beta = min(beta, best)
		}

		if beta <= alpha {
			e.stats.BetaCutoffs++
			break
		}
	}

	t.Node(h).setEval(best)
	return nil
}
