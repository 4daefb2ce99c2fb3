package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sculpin/internal/board"
	"sculpin/internal/engine"
	"sculpin/internal/logx"
)

func main() {
	totalGames := flag.Int("games", 10, "number of games to play")
	parallel := flag.Int("parallel", 2, "games played at the same time")
	depthA := flag.Int("depth-a", 3, "search depth of player A")
	depthB := flag.Int("depth-b", 2, "search depth of player B (ignored with -opponent)")
	moveTime := flag.Duration("movetime", 0, "per-move time for in-process players, 0 = depth only")
	opponent := flag.String("opponent", "", "path to an external UCI engine used as player B")
	oppTime := flag.Duration("opponent-movetime", 100*time.Millisecond, "per-move time of the external engine")
	maxMoves := flag.Int("maxmoves", 300, "adjudicate as unfinished after this many plies")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	log, err := logx.New(os.Stderr, "console", *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}

	eng := engine.NewEngine()
	eng.Log = log.With().Str("component", "engine").Logger()

	playerA := engineConfig{name: fmt.Sprintf("sculpin d%d", *depthA), eng: eng, limits: engine.Limits{Depth: *depthA, MoveTime: *moveTime}}
	var playerB playerConfig = engineConfig{name: fmt.Sprintf("sculpin d%d", *depthB), eng: eng, limits: engine.Limits{Depth: *depthB, MoveTime: *moveTime}}
	if *opponent != "" {
		playerB = externalConfig{path: *opponent, moveTime: *oppTime}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	games := make([]*gameRecord, *totalGames)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, *parallel))
	for i := range games {
		g.Go(func() error {
			// 交替执白
			white, black := playerConfig(playerA), playerB
			if i%2 == 1 {
				white, black = playerB, playerA
			}
			rec, err := playGame(gctx, log.With().Int("game", i+1).Logger(), white, black, *maxMoves)
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			games[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("selfplay failed")
		os.Exit(1)
	}

	tally := map[string]int{}
	draws, unfinished := 0, 0
	for i, rec := range games {
		if rec == nil {
			continue
		}
		fmt.Printf("\n=== Game %d: White [%s] vs Black [%s] ===\n", i+1, rec.white, rec.black)
		fmt.Println(rec.game.String())
		switch rec.game.Outcome() {
		case chess.WhiteWon:
			tally[rec.white]++
		case chess.BlackWon:
			tally[rec.black]++
		case chess.Draw:
			draws++
		default:
			unfinished++
		}
	}

	fmt.Printf("\n=== Final Score ===\n")
	fmt.Printf("%s: %d\n", playerA.Name(), tally[playerA.Name()])
	if playerB.Name() != playerA.Name() {
		fmt.Printf("%s: %d\n", playerB.Name(), tally[playerB.Name()])
	}
	fmt.Printf("Draws: %d\n", draws)
	if unfinished > 0 {
		fmt.Printf("Unfinished: %d\n", unfinished)
	}
}

type gameRecord struct {
	white, black string
	game         *chess.Game
}

func playGame(ctx context.Context, log zerolog.Logger, whiteCfg, blackCfg playerConfig, maxMoves int) (*gameRecord, error) {
	white, err := whiteCfg.Start()
	if err != nil {
		return nil, err
	}
	defer white.Close()
	black, err := blackCfg.Start()
	if err != nil {
		return nil, err
	}
	defer black.Close()

	game := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	pos := board.NewInitialPosition()

	for ply := 0; ply < maxMoves && game.Outcome() == chess.NoOutcome; ply++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := white
		if pos.Turn() == chess.Black {
			current = black
		}

		start := time.Now()
		mv, err := current.BestMove(ctx, game, pos)
		if err != nil {
			return nil, err
		}
		if mv == "" {
			// 无子可动，notnil 这边的 Outcome 应该已经有结果
			log.Warn().Str("fen", pos.Encode()).Msg("no move returned")
			break
		}
		if err := game.MoveStr(mv); err != nil {
			return nil, fmt.Errorf("record %s: %w", mv, err)
		}
		if err := pos.ApplyUCI(mv); err != nil {
			return nil, err
		}
		log.Debug().Int("ply", ply+1).Str("move", mv).Dur("took", time.Since(start)).Msg("move")

		// 三次重复和五十步在 notnil 里需要申请
		if pos.IsDraw() && game.Outcome() == chess.NoOutcome {
			if methods := game.EligibleDraws(); len(methods) > 0 {
				if err := game.Draw(methods[0]); err != nil {
					log.Warn().Err(err).Msg("draw claim rejected")
				}
			}
		}
	}

	log.Info().
		Str("white", whiteCfg.Name()).
		Str("black", blackCfg.Name()).
		Str("result", game.Outcome().String()).
		Str("method", game.Method().String()).
		Msg("game finished")
	return &gameRecord{white: whiteCfg.Name(), black: blackCfg.Name(), game: game}, nil
}
