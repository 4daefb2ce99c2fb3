package uci

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"sculpin/internal/board"
	"sculpin/internal/engine"
)

// output 串行化所有写到 GUI 的行：搜索 goroutine 写 info，事件循环写其它。
type output struct {
	mu sync.Mutex
	w  io.Writer
}

func (o *output) send(format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.w, format+"\n", args...)
}

func formatMoves(moves []board.Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

func formatInfo(info engine.Info) string {
	ms := info.Time.Milliseconds()
	var nps int64
	if info.Time > 0 {
		nps = int64(float64(info.Nodes) / info.Time.Seconds())
	}
	s := fmt.Sprintf("info depth %d score %s nodes %d nps %d time %d",
		info.Depth, info.Score.UCI(), info.Nodes, nps, ms)
	if len(info.PV) > 0 {
		s += " pv " + formatMoves(info.PV)
	}
	return s
}

// formatBestMove 没有合法着法时回 0000，GUI 总能等到一个 bestmove
func formatBestMove(res engine.SearchResult) string {
	if res.BestMove == nil {
		return "bestmove 0000"
	}
	if ponder := res.Ponder(); ponder != nil {
		return fmt.Sprintf("bestmove %s ponder %s", res.BestMove, ponder)
	}
	return fmt.Sprintf("bestmove %s", res.BestMove)
}
