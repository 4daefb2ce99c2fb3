package board

import "github.com/notnil/chess"

// IsDraw 规则和棋：三次重复、五十回合、子力不足。
// 无子可动（逼和）不在这里判断，由调用方根据 LegalMoves 和 InCheck 处理。
func (p *Position) IsDraw() bool {
	if p.HalfMoveClock() >= 100 {
		return true
	}
	if p.repetitions() >= 2 {
		return true
	}
	return insufficientMaterial(p.current().Board())
}

// repetitions 当前局面在历史中此前出现过的次数。
// 只回看到上一次不可逆着法为止，且只比同一走子方的局面。
func (p *Position) repetitions() int {
	n := len(p.frames) - 1
	cur := p.frames[n]
	count := 0
	for i := n - 2; i >= 0 && n-i <= cur.halfMove; i -= 2 {
		if p.frames[i].hash == cur.hash {
			count++
		}
	}
	return count
}

func insufficientMaterial(b *chess.Board) bool {
	var minors [2]int
	var bishopColors [2][2]int // [side][格子颜色]
	for sq := chess.A1; sq <= chess.H8; sq++ {
		pc := b.Piece(sq)
		if pc == chess.NoPiece {
			continue
		}
		side := 0
		if pc.Color() == chess.Black {
			side = 1
		}
		switch pc.Type() {
		case chess.King:
		case chess.Knight:
			minors[side]++
		case chess.Bishop:
			minors[side]++
			bishopColors[side][(int(sq.File())+int(sq.Rank()))%2]++
		default:
			return false
		}
	}

	total := minors[0] + minors[1]
	if total <= 1 {
		// 王对王，或单马/单象
		return true
	}
	if minors[0] == 1 && minors[1] == 1 {
		// 各一象且同色格
		for c := 0; c < 2; c++ {
			if bishopColors[0][c] == 1 && bishopColors[1][c] == 1 {
				return true
			}
		}
	}
	return false
}
