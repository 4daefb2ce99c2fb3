package engine

import (
	"github.com/notnil/chess"

	"sculpin/internal/board"
)

// Evaluator 对非终局的局面给出走子方视角的静态分。
// 必须是确定性的，且不能改动局面。
type Evaluator interface {
	Evaluate(pos Position) Score
}

// BoardView 是评估函数需要从局面里读的东西。
type BoardView interface {
	Board() *chess.Board
	Turn() chess.Color
	InCheck() bool
}

const (
	inCheckPenalty = 50
	guardBonus     = 20 // 每保护一个己方棋子
)

var materialValue = [...]Score{
	chess.NoPieceType: 0,
	chess.King:        0,
	chess.Queen:       800,
	chess.Rook:        500,
	chess.Bishop:      300,
	chess.Knight:      300,
	chess.Pawn:        100,
}

// MaterialEvaluator 子力 + 棋子位置 + 攻防关系；被将军时不算攻防，直接扣分。
type MaterialEvaluator struct{}

func (MaterialEvaluator) Evaluate(pos Position) Score {
	view, ok := pos.(BoardView)
	if !ok {
		return ScoreDraw
	}
	b := view.Board()
	side := view.Turn()
	endgame := isEndgame(b)

	var score Score
	for sq := chess.A1; sq <= chess.H8; sq++ {
		pc := b.Piece(sq)
		if pc == chess.NoPiece {
			continue
		}
		v := materialValue[pc.Type()] + placement(pc, sq, endgame)
		if pc.Color() == side {
			score += v
		} else {
			score -= v
		}
	}

	if view.InCheck() {
		return score - inCheckPenalty
	}
	return score + threats(b, side) - threats(b, side.Other())
}

// EvaluateTerminal 无子可动的局面：被将军就是被杀，否则逼和。
func EvaluateTerminal(inCheck bool, ply int) Score {
	if inCheck {
		return MatedIn(ply)
	}
	return ScoreDraw
}

// threats 一方所有棋子的攻防分：保护己方棋子各加 guardBonus，
// 攻击对方棋子加其价值的 1/10，攻击比自己值钱的子再加差价的一半。
func threats(b *chess.Board, c chess.Color) Score {
	var v Score
	for sq := chess.A1; sq <= chess.H8; sq++ {
		pc := b.Piece(sq)
		if pc == chess.NoPiece || pc.Color() != c {
			continue
		}
		for _, target := range board.Attacks(b, sq) {
			tp := b.Piece(target)
			switch {
			case tp == chess.NoPiece:
			case tp.Color() == c:
				v += guardBonus
			default:
				v += materialValue[tp.Type()] / 10
				if gain := materialValue[tp.Type()] - materialValue[pc.Type()]; gain > 0 {
					v += gain / 2
				}
			}
		}
	}
	return v
}

// 残局：双方都没有后，或者有后但没有车、轻子不超过一个
func isEndgame(b *chess.Board) bool {
	var queens, rooks, minors [2]int
	for sq := chess.A1; sq <= chess.H8; sq++ {
		pc := b.Piece(sq)
		if pc == chess.NoPiece {
			continue
		}
		i := colorIndex(pc.Color())
		switch pc.Type() {
		case chess.Queen:
			queens[i]++
		case chess.Rook:
			rooks[i]++
		case chess.Bishop, chess.Knight:
			minors[i]++
		}
	}
	for i := range queens {
		if queens[i] > 0 && (rooks[i] > 0 || minors[i] > 1) {
			return false
		}
	}
	return true
}

func colorIndex(c chess.Color) int {
	if c == chess.Black {
		return 1
	}
	return 0
}

// placement 单个棋子的位置分。rank 按各自方向换算，黑方的第 7 行就是白方视角的第 2 行。
func placement(pc chess.Piece, sq chess.Square, endgame bool) Score {
	file, rank := int(sq.File()), int(sq.Rank())
	if pc.Color() == chess.Black {
		rank = 7 - rank
	}
	border := file == 0 || file == 7 || rank == 0 || rank == 7
	corner := (file == 0 || file == 7) && (rank == 0 || rank == 7)
	inner := file >= 2 && file <= 5 && rank >= 2 && rank <= 5
	center := (file == 3 || file == 4) && (rank == 3 || rank == 4)
	ring := inner && !center
	centerFile := file == 3 || file == 4

	var v Score
	add := func(cond bool, s Score) {
		if cond {
			v += s
		}
	}

	switch pc.Type() {
	case chess.King:
		if endgame {
			add(border, -30)
			add(corner, -20)
			add(center, 40)
			add(ring, 20)
		} else {
			add(rank == 0 && (file == 2 || file == 6), 50) // 易位后的位置
			add(rank <= 1 && centerFile, -20)
		}
	case chess.Pawn:
		add(rank == 6, 50)
		add(rank == 5, 30)
		add(rank == 4 && centerFile, 25)
		add(rank == 3 && centerFile, 20)
		add(rank == 1 && centerFile, -20) // 中心兵没动
	case chess.Knight:
		add(border, -30)
		add(corner, -20)
		add(center, 20)
		add(ring, 10)
	case chess.Bishop:
		add(border, -15)
		add(corner, -10)
		add(center, 15)
		add(ring, 10)
	case chess.Rook:
		add(rank == 6, 15)
		add(rank == 0 && centerFile, 10)
		add((file == 0 || file == 7) && rank > 0 && rank < 7, -5)
	case chess.Queen:
		add(border, -10)
		add(corner, -10)
		add(inner, 5)
	}
	return v
}
