package rules

import (
	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// SAN renders m in standard algebraic notation for the position pos.
func SAN(pos Position, m Move) (string, error) {
	opt, err := chess.FEN(pos.FEN())
	if err != nil {
		return "", errors.Wrap(err, "san")
	}
	game := chess.NewGame(opt)
	mv, err := chess.UCINotation{}.Decode(game.Position(), m.String())
	if err != nil {
		return "", errors.Wrapf(err, "san: decode %s", m.String())
	}
	return chess.AlgebraicNotation{}.Encode(game.Position(), mv), nil
}

// GameRecord mirrors a game into notnil/chess so every move is checked by an
// independent rules implementation and the game can be exported as PGN.
type GameRecord struct {
	game *chess.Game
}

// NewGameRecord starts a record at fen.
func NewGameRecord(fen string) (*GameRecord, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, errors.Wrap(err, "new game record")
	}
	return &GameRecord{game: chess.NewGame(opt)}, nil
}

// Push records m, failing if the reference rules reject it.
func (r *GameRecord) Push(m Move) error {
	mv, err := chess.UCINotation{}.Decode(r.game.Position(), m.String())
	if err != nil {
		return errors.Wrapf(err, "record %s", m.String())
	}
	if err := r.game.Move(mv); err != nil {
		return errors.Wrapf(err, "record %s", m.String())
	}
	return nil
}

// AddTag sets a PGN tag pair.
func (r *GameRecord) AddTag(key, value string) {
	r.game.AddTagPair(key, value)
}

// Outcome is the PGN result string, "*" while the game is running.
func (r *GameRecord) Outcome() string {
	return string(r.game.Outcome())
}

// Method describes how the game ended.
func (r *GameRecord) Method() string {
	return r.game.Method().String()
}

// PGN returns the game in portable game notation.
func (r *GameRecord) PGN() string {
	return r.game.String()
}
