package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"

	"chessai/engine"
	"chessai/rules"
)

func main() {
	// --- Flags ---
	depthFlag := flag.Int("depth", engine.DefaultMaxDepth, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of searches to run")
	fenFlag := flag.String("fen", "", "FEN to search (empty = startpos)")
	noExtFlag := flag.Bool("noext", false, "disable the capture extension")
	statsFlag := flag.Bool("stats", false, "dump search statistics after each run")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *depthFlag <= 0 {
		logger.Fatal().Int("depth", *depthFlag).Msg("depth must be positive")
	}

	// --- Optional CPU profiling setup ---
	if *cpuProfile != "" {
		cpuFile, err := os.Create(*cpuProfile)
		if err != nil {
			logger.Fatal().Err(err).Msg("could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			logger.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	fen := rules.StartFEN
	if *fenFlag != "" {
		fen = *fenFlag
	}
	board, err := rules.ParseFEN(fen)
	if err != nil {
		logger.Fatal().Err(err).Msg("bad fen")
	}

	cfg := engine.DefaultConfig()
	cfg.MaxDepth = *depthFlag
	cfg.CaptureExtension = !*noExtFlag
	cfg.Randomize = false
	eng, err := engine.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("bad config")
	}

	fmt.Printf("searchbench: fen=%q depth=%d repeat=%d\n", fen, cfg.MaxDepth, *repeatFlag)

	startAll := time.Now()
	var totalNodes uint64
	for i := 0; i < *repeatFlag; i++ {
		// Every run searches from scratch.
		eng.Reset()

		res, err := eng.Search(board)
		if err != nil {
			logger.Fatal().Err(err).Msg("search failed")
		}
		totalNodes += res.Stats.Nodes
		fmt.Printf("iteration %d: bestmove %s score %s nodes %d time=%v\n",
			i+1, res.Move.String(), res.UCIScore(board.WhiteToMove()), res.Stats.Nodes, res.Elapsed)
		if *statsFlag {
			res.Stats.Dump(os.Stdout)
		}
	}
	totalElapsed := time.Since(startAll)
	fmt.Printf("total time: %v nps: %.0f\n", totalElapsed, float64(totalNodes)/totalElapsed.Seconds())

	// --- Optional heap profile at the end ---
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			logger.Fatal().Err(err).Msg("could not create memory profile")
		}
		defer f.Close()

		runtime.GC() // get up-to-date heap info
		if err := pprof.WriteHeapProfile(f); err != nil {
			logger.Fatal().Err(err).Msg("could not write memory profile")
		}
	}
}
