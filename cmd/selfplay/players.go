package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"

	"sculpin/internal/board"
	"sculpin/internal/engine"
)

// playerConfig 描述一个棋手，每盘棋 Start 一次
type playerConfig interface {
	Name() string
	Start() (player, error)
}

type player interface {
	// BestMove 返回长代数记谱的着法，没有合法着法时返回空串
	BestMove(ctx context.Context, game *chess.Game, pos *board.Position) (string, error)
	Close()
}

type engineConfig struct {
	name   string
	eng    *engine.Engine
	limits engine.Limits
}

func (s engineConfig) Name() string { return s.name }

func (s engineConfig) Start() (player, error) {
	return enginePlayer{s}, nil
}

type enginePlayer struct {
	engineConfig
}

func (p enginePlayer) BestMove(ctx context.Context, _ *chess.Game, pos *board.Position) (string, error) {
	res, err := p.eng.Search(ctx, pos, p.limits, nil)
	if err != nil {
		return "", err
	}
	if res.BestMove == nil {
		return "", nil
	}
	return res.BestMove.String(), nil
}

func (enginePlayer) Close() {}

// externalConfig 外部 UCI 引擎，每盘棋起一个进程
type externalConfig struct {
	path     string
	moveTime time.Duration
}

func (s externalConfig) Name() string { return filepath.Base(s.path) }

func (s externalConfig) Start() (player, error) {
	eng, err := uci.New(s.path)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", s.path, err)
	}
	if err := eng.Run(uci.CmdUCI, uci.CmdIsReady, uci.CmdUCINewGame); err != nil {
		eng.Close()
		return nil, fmt.Errorf("init %s: %w", s.path, err)
	}
	return &externalPlayer{eng: eng, moveTime: s.moveTime}, nil
}

type externalPlayer struct {
	eng      *uci.Engine
	moveTime time.Duration
}

func (p *externalPlayer) BestMove(ctx context.Context, game *chess.Game, _ *board.Position) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cmdPos := uci.CmdPosition{Position: game.Position()}
	cmdGo := uci.CmdGo{MoveTime: p.moveTime}
	if err := p.eng.Run(cmdPos, cmdGo); err != nil {
		return "", err
	}
	mv := p.eng.SearchResults().BestMove
	if mv == nil {
		return "", nil
	}
	return mv.String(), nil
}

func (p *externalPlayer) Close() {
	p.eng.Close()
}
