package rules

import (
	"github.com/dylhunn/dragontoothmg"
)

// Move is the move encoding of the underlying move generator.
type Move = dragontoothmg.Move

// Square indexes the board from a1 = 0 to h8 = 63.
type Square uint8

// File returns the 0-based file (a = 0).
func (sq Square) File() int { return int(sq) % 8 }

// Rank returns the 0-based rank (rank 1 = 0).
func (sq Square) Rank() int { return int(sq) / 8 }

func (sq Square) String() string {
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// PieceType values line up with dragontoothmg's piece constants.
type PieceType uint8

const (
	NoPiece PieceType = PieceType(dragontoothmg.Nothing)
	Pawn    PieceType = PieceType(dragontoothmg.Pawn)
	Knight  PieceType = PieceType(dragontoothmg.Knight)
	Bishop  PieceType = PieceType(dragontoothmg.Bishop)
	Rook    PieceType = PieceType(dragontoothmg.Rook)
	Queen   PieceType = PieceType(dragontoothmg.Queen)
	King    PieceType = PieceType(dragontoothmg.King)
)

var pieceTypeNames = [...]string{"", "pawn", "knight", "bishop", "rook", "queen", "king"}

func (pt PieceType) String() string {
	if int(pt) < len(pieceTypeNames) {
		return pieceTypeNames[pt]
	}
	return "?"
}

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Piece is a piece type together with its owner.
type Piece struct {
	Type  PieceType
	Color Color
}

// pieceTypeAt reads the piece type on a square from one side's bitboards.
func pieceTypeAt(sq Square, bb *dragontoothmg.Bitboards) (PieceType, bool) {
	mask := uint64(1) << sq
	switch {
	case bb.All&mask == 0:
		return NoPiece, false
	case bb.Pawns&mask != 0:
		return Pawn, true
	case bb.Knights&mask != 0:
		return Knight, true
	case bb.Bishops&mask != 0:
		return Bishop, true
	case bb.Rooks&mask != 0:
		return Rook, true
	case bb.Queens&mask != 0:
		return Queen, true
	case bb.Kings&mask != 0:
		return King, true
	}
	return NoPiece, false
}
