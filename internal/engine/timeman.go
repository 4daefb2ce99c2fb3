package engine

import "time"

const (
	defaultMovesToGo = 30
	minBudget        = 10 * time.Millisecond
)

// Limits 对应 go 命令的参数；零值字段表示没给。
type Limits struct {
	Depth     int
	Nodes     int64
	Mate      int // 找 N 回合内的杀
	MoveTime  time.Duration
	WhiteTime time.Duration
	BlackTime time.Duration
	WhiteInc  time.Duration
	BlackInc  time.Duration
	HasClock  bool // 给了 wtime/btime
	MovesToGo int
	Infinite  bool

	SearchMoves []string // 只在这些根着法里选
}

type budget struct {
	deadline time.Time // 零值表示不限时
	maxDepth int
	maxNodes int64 // 0 表示不限
}

func (l Limits) budget(start time.Time, white bool, overhead, fallback time.Duration) budget {
	b := budget{maxDepth: MaxDepth, maxNodes: l.Nodes}
	if l.Depth > 0 && l.Depth < b.maxDepth {
		b.maxDepth = l.Depth
	}
	if l.Mate > 0 {
		if d := 2*l.Mate - 1; d < b.maxDepth {
			b.maxDepth = d
		}
	}
	if l.Infinite {
		return b
	}
	if alloc, ok := l.allocate(white, overhead, fallback); ok {
		b.deadline = start.Add(alloc)
	}
	return b
}

// allocate 这一步能用多少时间；返回 false 表示不限时（只受深度/节点约束）。
func (l Limits) allocate(white bool, overhead, fallback time.Duration) (time.Duration, bool) {
	switch {
	case l.MoveTime > 0:
		return max(l.MoveTime-overhead, minBudget), true
	case l.HasClock:
		remaining, inc := l.WhiteTime, l.WhiteInc
		if !white {
			remaining, inc = l.BlackTime, l.BlackInc
		}
		mtg := l.MovesToGo
		if mtg <= 0 {
			mtg = defaultMovesToGo
		}
		alloc := remaining/time.Duration(mtg) + inc
		// 不能把表上的时间用光
		alloc = min(alloc, remaining-overhead)
		return max(alloc, minBudget), true
	case l.Depth > 0 || l.Nodes > 0 || l.Mate > 0:
		return 0, false
	}
	if fallback <= 0 {
		fallback = DefaultMoveTime
	}
	return fallback, true
}
