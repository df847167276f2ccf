package rules

import (
	"math/bits"
	"strings"

	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// StartFEN is the standard initial position.
const StartFEN = dragontoothmg.Startpos

// ErrIllegalPosition is returned for FENs that are well formed but could not
// arise in a game.
var ErrIllegalPosition = errors.New("rules: illegal position")

// ParseFEN validates fen before handing it to the move generator, which does
// not reject malformed input on its own. Syntax is checked by notnil/chess;
// the position must also have one king per side, and the side that just moved
// must not have left its king in check.
func ParseFEN(fen string) (*Board, error) {
	fen = strings.Join(strings.Fields(fen), " ")
	if _, err := chess.FEN(fen); err != nil {
		return nil, errors.Wrapf(err, "parse FEN %q", fen)
	}
	board := dragontoothmg.ParseFen(fen)
	if err := checkLegal(board); err != nil {
		return nil, errors.Wrapf(err, "parse FEN %q", fen)
	}
	return newBoard(board), nil
}

func checkLegal(board dragontoothmg.Board) error {
	white, black := bits.OnesCount64(board.White.Kings), bits.OnesCount64(board.Black.Kings)
	if white != 1 || black != 1 {
		return errors.Wrapf(ErrIllegalPosition, "%d white and %d black kings", white, black)
	}
	// Seen from the other side, the king of the side not to move must be safe.
	other := board
	other.Wtomove = !other.Wtomove
	if other.OurKingInCheck() {
		return errors.Wrap(ErrIllegalPosition, "side not to move is in check")
	}
	return nil
}

// ParseMove resolves a UCI move string against the legal moves of pos.
func ParseMove(pos Position, s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range pos.LegalMoves() {
		if m.String() == s {
			return m, nil
		}
	}
	parsed, err := dragontoothmg.ParseMove(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parse move %q", s)
	}
	for _, m := range pos.LegalMoves() {
		if m.From() == parsed.From() && m.To() == parsed.To() && m.Promote() == parsed.Promote() {
			return m, nil
		}
	}
	return 0, errors.Errorf("move %s is not legal in %s", s, pos.FEN())
}

// MirrorFEN flips the board vertically and swaps the colours of every piece,
// the side to move, castling rights and the en passant square.
func MirrorFEN(fen string) (string, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return "", errors.Errorf("mirror FEN %q: want 6 fields, got %d", fen, len(fields))
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return "", errors.Errorf("mirror FEN %q: want 8 ranks, got %d", fen, len(ranks))
	}
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	fields[0] = swapCase(strings.Join(ranks, "/"))

	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}

	if fields[2] != "-" {
		swapped := swapCase(fields[2])
		var castling strings.Builder
		for _, r := range "KQkq" {
			if strings.ContainsRune(swapped, r) {
				castling.WriteRune(r)
			}
		}
		fields[2] = castling.String()
	}

	if ep := fields[3]; ep != "-" && len(ep) == 2 {
		fields[3] = string([]byte{ep[0], '1' + ('8' - ep[1])})
	}
	return strings.Join(fields, " "), nil
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z':
			return r - 'A' + 'a'
		}
		return r
	}, s)
}
