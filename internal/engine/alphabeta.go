package engine

import (
	"sort"
	"sync/atomic"
	"time"

	"sculpin/internal/board"
)

const hashMoveScore = 1 << 30

type searcher struct {
	pos    Position
	eval   Evaluator
	table  *orderTable
	budget budget
	stop   *atomic.Bool

	nodes     int64
	abortable bool // depth 1 不可打断

	rootMoves []board.Move

	// 三角主变表：pv[ply][ply:ply+pvLen[ply]] 是从 ply 开始的主变
	pv    [][]board.Move
	pvLen []int
}

func newSearcher(e *Engine, pos Position, b budget, stop *atomic.Bool) *searcher {
	eval := e.Eval
	if eval == nil {
		eval = MaterialEvaluator{}
	}
	s := &searcher{
		pos:    pos,
		eval:   eval,
		table:  newOrderTable(e.HashMB),
		budget: b,
		stop:   stop,
		pv:     make([][]board.Move, MaxPly),
		pvLen:  make([]int, MaxPly),
	}
	for i := range s.pv {
		s.pv[i] = make([]board.Move, MaxPly)
	}
	return s
}

func (s *searcher) outOfBudget() bool {
	if s.stop.Load() {
		return true
	}
	if s.budget.maxNodes > 0 && s.nodes >= s.budget.maxNodes {
		return true
	}
	return !s.budget.deadline.IsZero() && time.Now().After(s.budget.deadline)
}

func (s *searcher) updatePV(ply int, m board.Move) {
	s.pv[ply][ply] = m
	n := s.pvLen[ply+1]
	copy(s.pv[ply][ply+1:ply+1+n], s.pv[ply+1][ply+1:ply+1+n])
	s.pvLen[ply] = n + 1
}

func (s *searcher) principalVariation() []board.Move {
	pv := make([]board.Move, s.pvLen[0])
	copy(pv, s.pv[0][:s.pvLen[0]])
	return pv
}

type orderedMove struct {
	move  board.Move
	index int // 原始生成顺序里的下标
	score int
}

// orderMoves 置换表着法最先，其余按 MVV-LVA；只影响效率，不影响结果。
func (s *searcher) orderMoves(moves []board.Move, hashIdx int) []orderedMove {
	scorer, _ := s.pos.(MoveScorer)
	out := make([]orderedMove, len(moves))
	for i, m := range moves {
		out[i] = orderedMove{move: m, index: i}
		switch {
		case i == hashIdx:
			out[i].score = hashMoveScore
		case scorer != nil:
			out[i].score = scorer.MoveScore(m)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].score > out[b].score
	})
	return out
}

// searchRoot 根节点用 (best-1, +inf) 的窗口，和当前最好分相等的着法也能拿到精确分，
// 同分时取 UCI 串较小的那步，这样结果与着法顺序无关。
func (s *searcher) searchRoot(depth int) (Score, error) {
	s.nodes++
	s.pvLen[0] = 0
	key := s.pos.Hash()
	hashIdx, _ := s.table.probe(key)

	best, bestIdx := -scoreInf, -1
	var bestName string
	for _, om := range s.orderMoves(s.rootMoves, hashIdx) {
		alpha := -scoreInf
		if bestIdx >= 0 {
			alpha = best - 1
		}
		s.pos.MakeMove(om.move)
		score, err := s.negamax(depth-1, 1, -scoreInf, -alpha)
		s.pos.UnmakeMove(om.move)
		if err != nil {
			return 0, err
		}
		score = -score

		name := om.move.String()
		if bestIdx < 0 || score > best || (score == best && name < bestName) {
			best, bestIdx, bestName = score, om.index, name
			s.updatePV(0, om.move)
		}
	}
	s.table.store(key, depth, bestIdx)
	return best, nil
}

// negamax 返回走子方视角的分数：子节点的分数取反就是本节点的分数。
func (s *searcher) negamax(depth, ply int, alpha, beta Score) (Score, error) {
	s.nodes++
	if s.abortable && s.nodes&(checkInterval-1) == 0 && s.outOfBudget() {
		return 0, errAborted
	}
	s.pvLen[ply] = 0

	if s.pos.IsDraw() {
		return ScoreDraw, nil
	}
	moves := s.pos.LegalMoves()
	if len(moves) == 0 {
		return EvaluateTerminal(s.pos.InCheck(), ply), nil
	}
	if depth <= 0 || ply >= MaxPly-1 {
		return s.eval.Evaluate(s.pos), nil
	}

	key := s.pos.Hash()
	hashIdx, _ := s.table.probe(key)

	best, bestIdx := -scoreInf, -1
	for _, om := range s.orderMoves(moves, hashIdx) {
		s.pos.MakeMove(om.move)
		score, err := s.negamax(depth-1, ply+1, -beta, -alpha)
		s.pos.UnmakeMove(om.move)
		if err != nil {
			return 0, err
		}
		score = -score

		if score > best {
			best, bestIdx = score, om.index
			if score > alpha {
				alpha = score
				s.updatePV(ply, om.move)
			}
		}
		if alpha >= beta {
			break
		}
	}
	s.table.store(key, depth, bestIdx)
	return best, nil
}
