package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"chessai/engine"
	"chessai/rules"
)

func main() {
	debug := flag.Bool("debug", false, "log search summaries to stderr")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if err := uciLoop(os.Stdin, os.Stdout, logger); err != nil {
		logger.Fatal().Err(err).Msg("uci-loop")
	}
}

type uciSession struct {
	out   io.Writer
	log   zerolog.Logger
	cfg   engine.Config
	eng   *engine.Engine
	board *rules.Board
}

func newUCISession(out io.Writer, log zerolog.Logger) (*uciSession, error) {
	cfg := engine.DefaultConfig()
	cfg.Logger = &log
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	return &uciSession{
		out:   out,
		log:   log,
		cfg:   cfg,
		eng:   eng,
		board: rules.StartPosition(),
	}, nil
}

func (s *uciSession) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func uciLoop(in io.Reader, out io.Writer, log zerolog.Logger) error {
	s, err := newUCISession(out, log)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			s.println("id name chessai")
			s.println("id author chessai")
			fmt.Fprintf(s.out, "option name Depth type spin default %d min 1 max 16\n", engine.DefaultMaxDepth)
			s.println("option name CaptureExtension type check default true")
			fmt.Fprintf(s.out, "option name MaxExtension type spin default %d min %d max 64\n", engine.DefaultMaxExtension, engine.UnlimitedExtension)
			s.println("option name Randomize type check default true")
			s.println("option name Seed type spin default 0 min 0 max 2147483647")
			s.println("uciok")
		case "isready":
			s.println("readyok")
		case "ucinewgame":
			s.board = rules.StartPosition()
			s.eng.Reset()
		case "quit":
			return nil
		case "stop":
			// Searches run to completion before the next command is read.
		case "d":
			s.println("info string fen", s.board.FEN())
		case "go":
			s.goCommand(tokens[1:])
		case "position":
			s.positionCommand(tokens[1:])
		case "setoption":
			s.setOptionCommand(tokens[1:])
		default:
			s.println("info string Unknown command:", line)
		}
	}
	return errors.Wrap(scanner.Err(), "reading uci input")
}

func (s *uciSession) goCommand(args []string) {
	depth := 0
	for i := 0; i < len(args); i++ {
		switch strings.ToLower(args[i]) {
		case "infinite":
			continue
		case "depth":
			if i+1 >= len(args) {
				s.println("info string Malformed go command option depth")
				continue
			}
			i++
			d, err := strconv.Atoi(args[i])
			if err != nil {
				s.println("info string Malformed go command option; could not convert depth")
				continue
			}
			depth = d
		case "wtime", "btime", "winc", "binc", "movestogo", "movetime", "nodes":
			// The search is depth bounded; clock options are read and dropped.
			i++
		default:
			s.println("info string Unknown go subcommand", args[i])
		}
	}

	if depth > 0 && depth != s.eng.Config().MaxDepth {
		if err := s.eng.SetMaxDepth(depth); err != nil {
			s.println("info string", err.Error())
		} else {
			s.cfg.MaxDepth = depth
		}
	}

	res, err := s.eng.Search(s.board)
	if err != nil {
		s.log.Debug().Err(err).Str("fen", s.board.FEN()).Msg("search-failed")
		s.println("info string", err.Error())
		s.println("bestmove 0000")
		return
	}

	fmt.Fprintf(s.out, "info depth %d seldepth %d score %s nodes %d time %d pv %s\n",
		s.eng.Config().MaxDepth,
		res.Stats.MaxDepth,
		res.UCIScore(s.board.WhiteToMove()),
		res.Stats.Nodes,
		res.Elapsed.Milliseconds(),
		res.PVString(),
	)
	s.println("bestmove", res.Move.String())
}

func (s *uciSession) positionCommand(args []string) {
	if len(args) == 0 {
		s.println("info string Malformed position command")
		return
	}

	rest := args[1:]
	var board *rules.Board
	switch strings.ToLower(args[0]) {
	case "startpos":
		board = rules.StartPosition()
	case "fen":
		n := 0
		for n < len(rest) && strings.ToLower(rest[n]) != "moves" {
			n++
		}
		var err error
		board, err = rules.ParseFEN(strings.Join(rest[:n], " "))
		if err != nil {
			s.println("info string Invalid fen position:", err.Error())
			return
		}
		rest = rest[n:]
	default:
		s.println("info string Invalid position subcommand")
		return
	}

	if len(rest) > 0 && strings.ToLower(rest[0]) == "moves" {
		for _, moveStr := range rest[1:] {
			m, err := rules.ParseMove(board, strings.ToLower(moveStr))
			if err != nil {
				s.println("info string Move", moveStr, "not found for position", board.FEN())
				break
			}
			board.Apply(m)
		}
	}
	s.board = board
}

func (s *uciSession) setOptionCommand(args []string) {
	// setoption name <id> value <x>
	var name, value string
	for i := 0; i+1 < len(args); i++ {
		switch strings.ToLower(args[i]) {
		case "name":
			name = strings.ToLower(args[i+1])
		case "value":
			value = strings.ToLower(args[i+1])
		}
	}
	if name == "" || value == "" {
		s.println("info string Malformed setoption command")
		return
	}

	cfg := s.cfg
	var err error
	switch name {
	case "depth":
		cfg.MaxDepth, err = strconv.Atoi(value)
	case "captureextension":
		cfg.CaptureExtension, err = strconv.ParseBool(value)
	case "maxextension":
		cfg.MaxExtension, err = strconv.Atoi(value)
	case "randomize":
		cfg.Randomize, err = strconv.ParseBool(value)
	case "seed":
		cfg.Seed, err = strconv.ParseInt(value, 10, 64)
	default:
		s.println("info string Unknown option", name)
		return
	}
	if err != nil {
		s.println("info string Malformed value for option", name)
		return
	}

	eng, err := engine.New(cfg)
	if err != nil {
		s.println("info string", err.Error())
		return
	}
	s.cfg = cfg
	s.eng = eng
	s.log.Debug().Str("option", name).Str("value", value).Msg("option-set")
}
