package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sculpin/internal/config"
	"sculpin/internal/engine"
	"sculpin/internal/logx"
	"sculpin/internal/uci"
)

func main() {
	envFile := flag.String("env", "", "optional .env file (default: ./.env if present)")
	logLevel := flag.String("log-level", "", "override SCULPIN_LOG_LEVEL")
	logFormat := flag.String("log-format", "", "override SCULPIN_LOG_FORMAT (console|json)")
	hashMB := flag.Int("hash", 0, "override SCULPIN_HASH_MB")
	overhead := flag.Int("overhead", -1, "override SCULPIN_MOVE_OVERHEAD_MS")
	flag.Parse()

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if *logLevel != "" {
		cfg.Logs.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logs.Format = *logFormat
	}
	if *hashMB > 0 {
		cfg.Engine.HashMB = *hashMB
	}
	if *overhead >= 0 {
		cfg.Engine.MoveOverhead = time.Duration(*overhead) * time.Millisecond
	}

	// stdout 只走协议，日志一律写 stderr
	log, err := logx.New(os.Stderr, cfg.Logs.Format, cfg.Logs.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}

	eng := engine.NewEngine()
	eng.HashMB = cfg.Engine.HashMB
	eng.MoveOverhead = cfg.Engine.MoveOverhead
	eng.DefaultMoveTime = cfg.Engine.DefaultMoveTime
	eng.Log = log.With().Str("component", "engine").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Int("hash_mb", eng.HashMB).
		Dur("overhead", eng.MoveOverhead).
		Msg("sculpin ready")

	p := uci.New(eng, os.Stdout, log.With().Str("component", "uci").Logger())
	if err := p.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("uci loop failed")
		os.Exit(1)
	}
}
