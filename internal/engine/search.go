package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/notnil/chess"

	"sculpin/internal/board"
)

// 搜索结果
type SearchResult struct {
	BestMove board.Move    // 最佳着法；无子可动时为 nil
	Score    Score         // 走子方视角
	Depth    int           // 完整搜完的深度
	Nodes    int64         // 节点数
	TimeUsed time.Duration // 花费时间
	PV       []board.Move  // 主变，第一步就是 BestMove
}

// Ponder 主变里的第二步，没有就是 nil
func (r SearchResult) Ponder() board.Move {
	if len(r.PV) < 2 {
		return nil
	}
	return r.PV[1]
}

// Info 每完成一层迭代报告一次
type Info struct {
	Depth int
	Score Score
	Nodes int64
	Time  time.Duration
	PV    []board.Move
}

func (r SearchResult) Info() Info {
	return Info{Depth: r.Depth, Score: r.Score, Nodes: r.Nodes, Time: r.TimeUsed, PV: r.PV}
}

// Search 迭代加深。depth 1 总会搜完，所以只要有合法着法就一定有 BestMove。
// ctx 取消等同于 stop；infinite 模式下搜完也要等到 ctx 取消才返回。
// report 可以为 nil。
// 局面违反 make/unmake 约定而 panic 时，本次搜索作废，返回 ErrPositionCorrupted，
// 此时局面处于未知状态，调用方需要重建。
func (e *Engine) Search(ctx context.Context, pos Position, limits Limits, report func(Info)) (res SearchResult, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.Log.Error().Interface("panic", r).Msg("search aborted by position panic")
			res = SearchResult{TimeUsed: time.Since(start)}
			err = fmt.Errorf("%w: %v", ErrPositionCorrupted, r)
		}
	}()
	white := true
	if v, ok := pos.(BoardView); ok {
		white = v.Turn() == chess.White
	}
	b := limits.budget(start, white, e.MoveOverhead, e.DefaultMoveTime)

	var stop atomic.Bool
	release := context.AfterFunc(ctx, func() { stop.Store(true) })
	defer release()
	if ctx.Err() != nil {
		stop.Store(true)
	}

	s := newSearcher(e, pos, b, &stop)
	rootHash := pos.Hash()
	s.rootMoves = filterRootMoves(pos.LegalMoves(), limits.SearchMoves)

	var best SearchResult
	if len(s.rootMoves) == 0 {
		best.Score = EvaluateTerminal(pos.InCheck(), 0)
		e.Log.Debug().Str("score", best.Score.UCI()).Msg("no legal moves at root")
	} else {
		best = e.deepen(s, limits, start, report)
	}

	if limits.Infinite {
		<-ctx.Done()
	}
	best.Nodes = s.nodes
	best.TimeUsed = time.Since(start)

	if pos.Hash() != rootHash {
		return best, ErrPositionCorrupted
	}
	return best, nil
}

func (e *Engine) deepen(s *searcher, limits Limits, start time.Time, report func(Info)) SearchResult {
	var best SearchResult

	if limits.Mate > 0 {
		if res, ok := s.probeMate(s.budget.maxDepth); ok {
			res.Nodes = s.nodes
			res.TimeUsed = time.Since(start)
			if report != nil {
				report(res.Info())
			}
			e.Log.Debug().Int("plies", res.Depth).Int64("nodes", s.nodes).Msg("mate probe hit")
			return res
		}
	}

	for depth := 1; depth <= s.budget.maxDepth; depth++ {
		if depth > 1 && s.outOfBudget() {
			break
		}
		s.abortable = depth > 1
		score, err := s.searchRoot(depth)
		if errors.Is(err, errAborted) {
			e.Log.Debug().Int("depth", depth).Int64("nodes", s.nodes).Msg("iteration aborted")
			break
		}

		best = SearchResult{
			BestMove: s.pv[0][0],
			Score:    score,
			Depth:    depth,
			Nodes:    s.nodes,
			TimeUsed: time.Since(start),
			PV:       s.principalVariation(),
		}
		if report != nil {
			report(best.Info())
		}
		e.Log.Debug().
			Int("depth", depth).
			Str("score", score.UCI()).
			Int64("nodes", s.nodes).
			Dur("elapsed", best.TimeUsed).
			Msg("iteration complete")

		// 全宽搜索到 depth 层已经证明了最短杀，再深也不会变
		if score.IsMate() {
			break
		}
	}
	return best
}

// filterRootMoves 按 searchmoves 过滤；一个都对不上时退回全部合法着法。
func filterRootMoves(moves []board.Move, only []string) []board.Move {
	if len(only) == 0 {
		return moves
	}
	want := make(map[string]bool, len(only))
	for _, s := range only {
		want[strings.ToLower(s)] = true
	}
	out := make([]board.Move, 0, len(only))
	for _, m := range moves {
		if want[m.String()] {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return moves
	}
	return out
}
