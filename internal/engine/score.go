package engine

import "fmt"

// Score 永远站在当前走子方的角度：正数对走子方有利。
type Score int32

const (
	ScoreDraw Score = 0
	ScoreMate Score = 30000
	// |s| >= MateThreshold 的都是杀棋分
	MateThreshold Score = ScoreMate - MaxPly - 1
	// 比任何杀棋分都大，当成正负无穷
	scoreInf Score = ScoreMate + 1
)

// MateIn 走子方在 plies 个半回合内将死对方
func MateIn(plies int) Score {
	return ScoreMate - Score(plies)
}

// MatedIn 走子方在 plies 个半回合后被将死
func MatedIn(plies int) Score {
	return -(ScoreMate - Score(plies))
}

func (s Score) IsMate() bool {
	return s >= MateThreshold || s <= -MateThreshold
}

// MatePlies 距离杀棋的半回合数，非杀棋分返回 0
func (s Score) MatePlies() int {
	switch {
	case s >= MateThreshold:
		return int(ScoreMate - s)
	case s <= -MateThreshold:
		return int(ScoreMate + s)
	}
	return 0
}

// UCI 按协议格式输出：cp N 或 mate N（N 是整回合数，负数表示被杀）
func (s Score) UCI() string {
	if !s.IsMate() {
		return fmt.Sprintf("cp %d", int32(s))
	}
	moves := (s.MatePlies() + 1) / 2
	if s < 0 {
		return fmt.Sprintf("mate -%d", moves)
	}
	return fmt.Sprintf("mate %d", moves)
}

func (s Score) String() string {
	return s.UCI()
}
