package rules

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
)

// Position is everything the search needs from a rules engine.
// Implementations are not safe for concurrent use.
type Position interface {
	// Clone returns an independent copy, history included.
	Clone() Position
	// Apply plays a legal move in place.
	Apply(m Move)
	// Undo takes back the last applied move. It reports false when there is
	// no history to undo.
	Undo() bool
	// LastMove peeks at the most recently applied move and whether it captured.
	LastMove() (m Move, wasCapture bool, ok bool)

	LegalMoves() []Move
	IsCapture(m Move) bool
	PieceAt(sq Square) (Piece, bool)
	Pieces() map[Square]Piece
	PieceCount() int

	IsCheckmate() bool
	IsStalemate() bool
	IsGameOver() bool
	InCheck() bool

	WhiteToMove() bool
	Ply() int
	Key() uint64
	FEN() string
}

// historyEntry is one applied move. Entries are immutable and linked to the
// one before, so a copied Board shares its history instead of duplicating it.
type historyEntry struct {
	move       Move
	wasCapture bool
	prev       dragontoothmg.Board
	parent     *historyEntry
}

// Board is a Position backed by dragontoothmg.
type Board struct {
	board   dragontoothmg.Board
	history *historyEntry
	states  stateStack
}

var _ Position = (*Board)(nil)

func newBoard(b dragontoothmg.Board) *Board {
	board := &Board{board: b}
	board.states.reset(&board.board)
	return board
}

// StartPosition returns the standard initial position.
func StartPosition() *Board {
	return newBoard(dragontoothmg.ParseFen(dragontoothmg.Startpos))
}

func (b *Board) Clone() Position {
	return b.Copy()
}

// Copy is Clone with the concrete type. It costs the same however long the
// game is: history is shared, not copied.
func (b *Board) Copy() *Board {
	c := *b
	return &c
}

func (b *Board) Apply(m Move) {
	b.history = &historyEntry{
		move:       m,
		wasCapture: b.IsCapture(m),
		prev:       b.board,
		parent:     b.history,
	}
	b.board.Apply(m)
	b.states.push(&b.board)
}

func (b *Board) Undo() bool {
	if b.history == nil {
		return false
	}
	b.board = b.history.prev
	b.history = b.history.parent
	b.states.pop()
	return true
}

func (b *Board) LastMove() (Move, bool, bool) {
	if b.history == nil {
		return 0, false, false
	}
	return b.history.move, b.history.wasCapture, true
}

func (b *Board) LegalMoves() []Move {
	return b.board.GenerateLegalMoves()
}

func (b *Board) sides() (own, opp *dragontoothmg.Bitboards) {
	if b.board.Wtomove {
		return &b.board.White, &b.board.Black
	}
	return &b.board.Black, &b.board.White
}

// IsCapture reports whether m takes a piece. En passant is a pawn moving
// diagonally onto an empty square.
func (b *Board) IsCapture(m Move) bool {
	own, opp := b.sides()
	to := Square(m.To())
	if _, ok := pieceTypeAt(to, opp); ok {
		return true
	}
	return b.isEnPassant(m, own)
}

// IsEnPassant reports whether m is an en passant capture.
func (b *Board) IsEnPassant(m Move) bool {
	own, _ := b.sides()
	return b.isEnPassant(m, own)
}

func (b *Board) isEnPassant(m Move, own *dragontoothmg.Bitboards) bool {
	from, to := Square(m.From()), Square(m.To())
	if pt, _ := pieceTypeAt(from, own); pt != Pawn {
		return false
	}
	if from.File() == to.File() {
		return false
	}
	return (b.board.White.All|b.board.Black.All)&(uint64(1)<<to) == 0
}

func (b *Board) PieceAt(sq Square) (Piece, bool) {
	if pt, ok := pieceTypeAt(sq, &b.board.White); ok {
		return Piece{Type: pt, Color: White}, true
	}
	if pt, ok := pieceTypeAt(sq, &b.board.Black); ok {
		return Piece{Type: pt, Color: Black}, true
	}
	return Piece{}, false
}

func (b *Board) Pieces() map[Square]Piece {
	pieces := make(map[Square]Piece, b.PieceCount())
	for _, side := range []struct {
		bb    *dragontoothmg.Bitboards
		color Color
	}{{&b.board.White, White}, {&b.board.Black, Black}} {
		for all := side.bb.All; all != 0; all &= all - 1 {
			sq := Square(bits.TrailingZeros64(all))
			pt, _ := pieceTypeAt(sq, side.bb)
			pieces[sq] = Piece{Type: pt, Color: side.color}
		}
	}
	return pieces
}

func (b *Board) PieceCount() int {
	return bits.OnesCount64(b.board.White.All | b.board.Black.All)
}

func (b *Board) InCheck() bool {
	return b.board.OurKingInCheck()
}

func (b *Board) IsCheckmate() bool {
	return b.InCheck() && len(b.LegalMoves()) == 0
}

func (b *Board) IsStalemate() bool {
	return !b.InCheck() && len(b.LegalMoves()) == 0
}

// IsGameOver covers mate, stalemate, insufficient material, the 75-move rule
// and fivefold repetition.
func (b *Board) IsGameOver() bool {
	if len(b.LegalMoves()) == 0 {
		return true
	}
	return b.InsufficientMaterial() || b.states.seventyFiveMoves() || b.states.repetitions() >= 5
}

// InsufficientMaterial is true for bare kings or a single minor piece.
func (b *Board) InsufficientMaterial() bool {
	w, k := &b.board.White, &b.board.Black
	if w.Pawns|k.Pawns|w.Rooks|k.Rooks|w.Queens|k.Queens != 0 {
		return false
	}
	minors := bits.OnesCount64(w.Knights | w.Bishops | k.Knights | k.Bishops)
	return minors <= 1
}

func (b *Board) WhiteToMove() bool {
	return b.board.Wtomove
}

// Ply counts half-moves played since the start of the game.
func (b *Board) Ply() int {
	ply := 2 * (int(b.board.Fullmoveno) - 1)
	if !b.board.Wtomove {
		ply++
	}
	return ply
}

// Key is the Zobrist hash of the position.
func (b *Board) Key() uint64 {
	return b.board.Hash()
}

func (b *Board) FEN() string {
	return b.board.ToFen()
}
