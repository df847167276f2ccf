package main

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessai/rules"
)

func runUCI(t *testing.T, script ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	require.NoError(t, uciLoop(in, &out, zerolog.Nop()))
	return out.String()
}

var bestmoveRE = regexp.MustCompile(`(?m)^bestmove (\S+)$`)

func bestmove(t *testing.T, out string) string {
	t.Helper()
	m := bestmoveRE.FindStringSubmatch(out)
	require.NotNil(t, m, "no bestmove in:\n%s", out)
	return m[1]
}

func TestUCIHandshake(t *testing.T) {
	out := runUCI(t, "uci", "isready", "quit")
	assert.Contains(t, out, "id name chessai")
	assert.Contains(t, out, "option name Depth type spin default 3")
	assert.Contains(t, out, "uciok\n")
	assert.Contains(t, out, "readyok\n")
}

func TestUCIFindsMateInOne(t *testing.T) {
	const fen = "7k/8/6K1/8/8/8/8/1Q6 w - - 0 1"
	out := runUCI(t, "position fen "+fen, "go depth 3", "quit")

	assert.Contains(t, out, "score mate 1")
	assert.Equal(t, "b1b8", bestmove(t, out))
	b, err := rules.ParseFEN(fen)
	require.NoError(t, err)
	m, err := rules.ParseMove(b, bestmove(t, out))
	require.NoError(t, err)
	b.Apply(m)
	assert.True(t, b.IsCheckmate())
}

func TestUCIRejectsIllegalFEN(t *testing.T) {
	out := runUCI(t, "position fen 7k/8/6K1/8/8/8/8/Q7 w - - 0 1", "d", "go depth 1")
	assert.Contains(t, out, "info string Invalid fen position")
	assert.Contains(t, out, "info string fen "+rules.StartPosition().FEN())
	bestmove(t, out)
}

func TestUCIGoDepthSurvivesSetOption(t *testing.T) {
	out := runUCI(t,
		"position startpos",
		"go depth 1",
		"setoption name Randomize value false",
		"go",
	)
	assert.Equal(t, 2, strings.Count(out, "info depth 1 "), out)
	assert.NotContains(t, out, "info depth 3 ")
}

func TestUCIPositionWithMoves(t *testing.T) {
	out := runUCI(t, "position startpos moves e2e4 e7e5 g1f3", "d")
	assert.Contains(t, out, "info string fen rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq")

	out = runUCI(t, "position startpos moves e2e4 e2e4", "d")
	assert.Contains(t, out, "info string Move e2e4 not found")
	assert.Contains(t, out, "info string fen rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq")
}

func TestUCIGameOver(t *testing.T) {
	out := runUCI(t, "position fen rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", "go")
	assert.Equal(t, "0000", bestmove(t, out))
	assert.Contains(t, out, "game is over")
}

func TestUCISetOption(t *testing.T) {
	out := runUCI(t,
		"setoption name Depth value 0",
		"setoption name Seed value 9",
		"setoption name Randomize value false",
		"setoption name Colour value white",
		"position startpos",
		"go depth 1",
	)
	assert.Contains(t, out, "invalid config")
	assert.Contains(t, out, "info string Unknown option colour")
	assert.Contains(t, out, "info depth 1 ")
	bestmove(t, out)
}

func TestUCIUnknownCommand(t *testing.T) {
	out := runUCI(t, "xyzzy", "", "quit", "isready")
	assert.Contains(t, out, "info string Unknown command: xyzzy")
	assert.NotContains(t, out, "readyok")
}
