package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/freeeve/uci"
	"github.com/rs/zerolog"

	"sculpin/internal/board"
	"sculpin/internal/engine"
	"sculpin/internal/logx"
)

// 常用的 bench 局面
var benchPositions = []string{
	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"r3k2r/1bp1qpb1/p1np1np1/4p2p/2P1P3/1PN2N1P/PB1PQPB1/R3K2R w KQkq - 0 1",
	"2kr3r/pbpn1pq1/1p2pn1p/3p2p1/2PP4/P1N1P1P1/1PQ1NPBP/R4RK1 w - - 0 1",
	"r2qk2r/ppp1bppp/2n1bn2/3pp3/8/2NPBNP1/PPP1PPBP/R2QK2R w KQkq - 0 1",
	"r1bq1rk1/ppp2ppp/2nb1n2/3pp3/2B1P3/2NP1N2/PPP2PPP/R1BQ1RK1 w - - 0 1",
}

func main() {
	depth := flag.Int("depth", 4, "search depth")
	hashMB := flag.Int("hash", engine.DefaultHashMB, "ordering table size in MB")
	refPath := flag.String("ref", "", "path to a reference UCI engine searched at the same depth")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	log, err := logx.New(os.Stderr, "console", *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}

	var ref *uci.Engine
	if *refPath != "" {
		ref, err = startReference(*refPath, *hashMB)
		if err != nil {
			log.Fatal().Err(err).Str("path", *refPath).Msg("reference engine")
		}
		defer ref.Close()
	}

	e := engine.NewEngine()
	e.HashMB = *hashMB
	e.Log = log

	var totalNodes int64
	var totalTime time.Duration
	agree := 0
	for i, fen := range benchPositions {
		pos, err := board.DecodePosition(fen)
		if err != nil {
			log.Fatal().Err(err).Str("fen", fen).Msg("bad bench position")
		}

		res, err := e.Search(context.Background(), pos, engine.Limits{Depth: *depth}, nil)
		if err != nil {
			log.Fatal().Err(err).Str("fen", fen).Msg("search failed")
		}
		totalNodes += res.Nodes
		totalTime += res.TimeUsed

		best := "0000"
		if res.BestMove != nil {
			best = res.BestMove.String()
		}
		fmt.Printf("%2d  bestmove %-6s score %-9s nodes %9d  time %v\n",
			i+1, best, res.Score.UCI(), res.Nodes, res.TimeUsed.Round(time.Millisecond))

		if ref != nil {
			refMove, err := referenceMove(ref, fen, *depth, log)
			if err != nil {
				log.Error().Err(err).Str("fen", fen).Msg("reference search failed")
				continue
			}
			if refMove == best {
				agree++
			}
			fmt.Printf("    reference %-6s\n", refMove)
		}
	}

	nps := int64(0)
	if totalTime > 0 {
		nps = int64(float64(totalNodes) / totalTime.Seconds())
	}
	fmt.Printf("\nNodes: %d, Time: %v, NPS: %d\n", totalNodes, totalTime.Round(time.Millisecond), nps)
	if ref != nil {
		fmt.Printf("Agreement with reference: %d/%d\n", agree, len(benchPositions))
	}
}

func startReference(path string, hashMB int) (*uci.Engine, error) {
	eng, err := uci.NewEngine(path)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	opts := uci.Options{
		Hash:    hashMB,
		Threads: 1,
		MultiPV: 1,
		Ponder:  false,
		OwnBook: false,
	}
	if err := eng.SetOptions(opts); err != nil {
		eng.Close()
		return nil, fmt.Errorf("set options: %w", err)
	}
	return eng, nil
}

func referenceMove(eng *uci.Engine, fen string, depth int, log zerolog.Logger) (string, error) {
	if err := eng.SetFEN(fen); err != nil {
		return "", fmt.Errorf("set FEN: %w", err)
	}
	results, err := eng.GoDepth(depth, uci.HighestDepthOnly)
	if err != nil {
		return "", err
	}
	if len(results.Results) > 0 {
		best := results.Results[0]
		for _, r := range results.Results {
			if r.Depth > best.Depth {
				best = r
			}
		}
		log.Debug().Int("depth", best.Depth).Int("score", best.Score).Str("fen", fen).Msg("reference result")
	}
	return results.BestMove, nil
}
