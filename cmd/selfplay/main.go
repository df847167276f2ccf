package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"chessai/engine"
	"chessai/rules"
)

func main() {
	fen := flag.String("fen", rules.StartFEN, "starting position")
	whiteDepth := flag.Int("white-depth", engine.DefaultMaxDepth, "search depth for White")
	blackDepth := flag.Int("black-depth", engine.DefaultMaxDepth, "search depth for Black")
	maxPlies := flag.Int("max-plies", 300, "stop the game after this many plies")
	seed := flag.Int64("seed", 0, "shuffle seed (0 = time based)")
	out := flag.String("out", "", "write the PGN to this file instead of stdout")
	verbose := flag.Bool("v", false, "log every search")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	white := engine.DefaultConfig()
	white.MaxDepth = *whiteDepth
	white.Seed = *seed
	white.Logger = &logger
	black := white
	black.MaxDepth = *blackDepth
	if black.Seed != 0 {
		black.Seed++
	}

	record, err := playGame(*fen, white, black, *maxPlies, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("selfplay")
	}
	record.AddTag("Event", "chessai selfplay")
	record.AddTag("Date", time.Now().Format("2006.01.02"))
	record.AddTag("White", fmt.Sprintf("chessai depth %d", white.MaxDepth))
	record.AddTag("Black", fmt.Sprintf("chessai depth %d", black.MaxDepth))

	pgn := record.PGN() + "\n"
	if *out == "" {
		fmt.Print(pgn)
		return
	}
	if err := os.WriteFile(*out, []byte(pgn), 0o644); err != nil {
		logger.Fatal().Err(err).Str("file", *out).Msg("write-pgn")
	}
}

// playGame lets two engines play from fen until the game ends or maxPlies
// moves have been made.
func playGame(fen string, white, black engine.Config, maxPlies int, log zerolog.Logger) (*rules.GameRecord, error) {
	board, err := rules.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	record, err := rules.NewGameRecord(fen)
	if err != nil {
		return nil, err
	}
	record.AddTag("FEN", board.FEN())

	engines := [2]*engine.Engine{}
	for i, cfg := range []engine.Config{white, black} {
		if engines[i], err = engine.New(cfg); err != nil {
			return nil, err
		}
	}

	for ply := 0; ply < maxPlies && !board.IsGameOver(); ply++ {
		side := 0
		if !board.WhiteToMove() {
			side = 1
		}
		res, err := engines[side].Search(board)
		if err != nil {
			return nil, errors.Wrapf(err, "ply %d", ply)
		}
		san, err := rules.SAN(board, res.Move)
		if err != nil {
			return nil, err
		}
		if err := record.Push(res.Move); err != nil {
			return nil, err
		}
		board.Apply(res.Move)

		log.Info().
			Int("ply", ply+1).
			Str("move", san).
			Str("score", res.UCIScore(!board.WhiteToMove())).
			Bool("cached", res.Cached).
			Uint64("nodes", res.Stats.Nodes).
			Msg("move-played")
	}

	log.Info().
		Str("result", record.Outcome()).
		Str("method", record.Method()).
		Str("fen", board.FEN()).
		Msg("game-over")
	return record, nil
}
