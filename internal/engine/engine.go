package engine

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"sculpin/internal/board"
)

const (
	MaxDepth = 64  // 迭代加深的层数上限
	MaxPly   = 128 // 单条变例的最大长度

	DefaultHashMB       = 16
	DefaultMoveOverhead = 50 * time.Millisecond
	DefaultMoveTime     = 10 * time.Second

	checkInterval = 256 // 每隔多少节点检查一次时间和停止信号，按 3 万节点每秒约 8ms
)

var (
	ErrPositionCorrupted = errors.New("position corrupted by search")

	// 内部用：本轮迭代被打断，结果作废
	errAborted = errors.New("search aborted")
)

// Position 是搜索需要的全部局面操作。
// MakeMove/UnmakeMove 必须严格成对，UnmakeMove 之后局面与 MakeMove 之前完全一致。
type Position interface {
	LegalMoves() []board.Move
	MakeMove(m board.Move)
	UnmakeMove(m board.Move)
	InCheck() bool
	IsDraw() bool
	Hash() uint64
}

// MoveScorer 可选：给着法一个排序分，越大越先搜。
type MoveScorer interface {
	MoveScore(m board.Move) int
}

// Engine 只保存配置，每次 Search 的状态都在 searcher 里，所以不同 Engine 可以并发使用。
type Engine struct {
	Eval            Evaluator
	HashMB          int           // 排序表大小
	MoveOverhead    time.Duration // 每步预留给通信的时间
	DefaultMoveTime time.Duration // go 不带任何限制时用
	Log             zerolog.Logger
}

func NewEngine() *Engine {
	return &Engine{
		Eval:            MaterialEvaluator{},
		HashMB:          DefaultHashMB,
		MoveOverhead:    DefaultMoveOverhead,
		DefaultMoveTime: DefaultMoveTime,
		Log:             zerolog.Nop(),
	}
}
