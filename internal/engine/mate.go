package engine

import (
	"sculpin/internal/board"
)

const (
	mateNodeBudgetBase   = 32000
	mateNodeBudgetPerPly = 8000
)

const (
	mateModeAttack uint64 = 0xA5A5A5A5A5A5A5A5
	mateModeDefend uint64 = 0x5A5A5A5A5A5A5A5A
)

type mateContext struct {
	table      *orderTable
	nodes      int
	nodeBudget int
}

func (c *mateContext) reachNodeBudget() bool {
	return c.nodes >= c.nodeBudget
}

// probeMate 连将杀：攻方只走将军的着法，守方所有应着都试。
// maxPlies 是攻方最后一步所在的半回合数上限（奇数）。
// 找到就是被证明的杀，返回的 Depth 是杀棋的半回合数。
func (s *searcher) probeMate(maxPlies int) (SearchResult, bool) {
	ctx := &mateContext{
		table:      newOrderTable(1),
		nodeBudget: mateNodeBudgetBase + maxPlies*mateNodeBudgetPerPly,
	}
	s.abortable = true
	defer func() { s.abortable = false }()

	for d := 1; d <= maxPlies; d += 2 {
		if m, ok := s.mateRoot(d, ctx); ok {
			return SearchResult{
				BestMove: m,
				Score:    MateIn(d),
				Depth:    d,
				PV:       []board.Move{m},
			}, true
		}
		if ctx.reachNodeBudget() || s.outOfBudget() {
			break
		}
	}
	return SearchResult{}, false
}

func (s *searcher) mateRoot(depth int, ctx *mateContext) (board.Move, bool) {
	key := s.pos.Hash() ^ mateModeAttack
	hashIdx, _ := ctx.table.probe(key)
	for _, om := range s.orderMoves(s.rootMoves, hashIdx) {
		s.pos.MakeMove(om.move)
		ok := s.pos.InCheck() && s.defenderLoses(depth-1, ctx)
		s.pos.UnmakeMove(om.move)
		if ok {
			ctx.table.store(key, depth, om.index)
			return om.move, true
		}
		if ctx.reachNodeBudget() || s.stop.Load() {
			break
		}
	}
	return nil, false
}

// attackerWins 攻方走棋，能否在 depth 个半回合内靠连续将军杀棋
func (s *searcher) attackerWins(depth int, ctx *mateContext) bool {
	if depth <= 0 || s.spend(ctx) {
		return false
	}
	if s.pos.IsDraw() {
		return false
	}
	moves := s.pos.LegalMoves()
	key := s.pos.Hash() ^ mateModeAttack
	hashIdx, _ := ctx.table.probe(key)

	for _, om := range s.orderMoves(moves, hashIdx) {
		s.pos.MakeMove(om.move)
		// 攻方必须将军
		ok := s.pos.InCheck() && s.defenderLoses(depth-1, ctx)
		s.pos.UnmakeMove(om.move)
		if ok {
			ctx.table.store(key, depth, om.index)
			return true
		}
		if ctx.reachNodeBudget() {
			return false
		}
	}
	return false
}

// defenderLoses 守方走棋（正被将军），是否所有应着都逃不掉
func (s *searcher) defenderLoses(depth int, ctx *mateContext) bool {
	if s.spend(ctx) {
		return false
	}
	moves := s.pos.LegalMoves()
	if len(moves) == 0 {
		return s.pos.InCheck()
	}
	if depth <= 0 || s.pos.IsDraw() {
		return false
	}
	key := s.pos.Hash() ^ mateModeDefend
	hashIdx, _ := ctx.table.probe(key)

	for _, om := range s.orderMoves(moves, hashIdx) {
		s.pos.MakeMove(om.move)
		lost := s.attackerWins(depth-1, ctx)
		s.pos.UnmakeMove(om.move)
		if !lost {
			// 记下能逃掉的应着，下次先试
			ctx.table.store(key, depth, om.index)
			return false
		}
	}
	return true
}

// spend 记一个节点；预算用完或者被叫停就返回 true
func (s *searcher) spend(ctx *mateContext) bool {
	ctx.nodes++
	s.nodes++
	if ctx.reachNodeBudget() {
		return true
	}
	return s.nodes&(checkInterval-1) == 0 && s.outOfBudget()
}
