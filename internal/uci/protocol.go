package uci

import (
	"bufio"
	"context"
	"errors"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"sculpin/internal/board"
	"sculpin/internal/engine"
)

const (
	EngineName   = "sculpin"
	EngineAuthor = "the sculpin authors"
)

type State int

const (
	Idle      State = iota
	Searching       // 搜索 goroutine 持有局面
	Stopping        // 已经发出停止，等搜索交回局面
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Stopping:
		return "stopping"
	}
	return "unknown"
}

// searchDone 搜索 goroutine 结束时把局面和结果一起交回来
type searchDone struct {
	pos *board.Position
	res engine.SearchResult
	err error
}

type activeSearch struct {
	id      string
	cancel  context.CancelFunc
	started time.Time
	log     zerolog.Logger
}

// Protocol 是 UCI 状态机。局面只归事件循环所有；
// go 时交给搜索 goroutine，搜索结束时经 done 交回。
type Protocol struct {
	eng     *engine.Engine
	out     *output
	baseLog zerolog.Logger
	log     zerolog.Logger
	options []option

	state   State
	pos     *board.Position // Searching/Stopping 时为 nil
	setup   Command         // 最近一次成功的 position 命令，局面损坏时用来重建
	search  *activeSearch
	done    chan searchDone
	analyse bool
}

func New(eng *engine.Engine, out io.Writer, log zerolog.Logger) *Protocol {
	return &Protocol{
		eng:     eng,
		out:     &output{w: out},
		baseLog: log,
		log:     log,
		options: defaultOptions(eng.HashMB, eng.MoveOverhead),
		state:   Idle,
		pos:     board.NewInitialPosition(),
		setup:   Command{Kind: CmdPosition, StartPos: true},
		done:    make(chan searchDone, 1),
	}
}

func (p *Protocol) State() State {
	return p.state
}

// Run 读命令直到 quit、输入结束或 ctx 取消。quit 和 EOF 返回 nil。
func (p *Protocol) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	quit := make(chan struct{})
	defer close(quit)

	go func() {
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-quit:
				return
			}
		}
		readErr <- sc.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			p.abandonSearch()
			return ctx.Err()
		case d := <-p.done:
			p.finishSearch(d, true)
		case line, ok := <-lines:
			if !ok {
				p.abandonSearch()
				if err := <-readErr; err != nil {
					return err
				}
				p.log.Info().Msg("input closed")
				return nil
			}
			if p.handle(line) {
				p.abandonSearch()
				return nil
			}
		}
	}
}

// handle 处理一行命令，返回 true 表示退出
func (p *Protocol) handle(line string) bool {
	cmd := ParseCommand(line)
	p.log.Debug().Str("cmd", cmd.Kind.String()).Str("line", cmd.Line).Str("state", p.state.String()).Msg("command")

	switch cmd.Kind {
	case CmdUCI:
		p.out.send("id name %s", EngineName)
		p.out.send("id author %s", EngineAuthor)
		for _, o := range p.options {
			p.out.send("%s", o)
		}
		p.out.send("uciok")
	case CmdIsReady:
		p.out.send("readyok")
	case CmdDebug:
		if cmd.Debug {
			p.log = p.baseLog.Level(zerolog.DebugLevel)
		} else {
			p.log = p.baseLog
		}
	case CmdSetOption:
		p.setOption(cmd)
	case CmdNewGame:
		if p.busy(cmd) {
			return false
		}
		p.pos = board.NewInitialPosition()
		p.setup = Command{Kind: CmdPosition, StartPos: true}
	case CmdPosition:
		if p.busy(cmd) {
			return false
		}
		pos, err := buildPosition(cmd)
		if err != nil {
			// 保留原局面
			p.log.Warn().Err(err).Str("line", cmd.Line).Msg("rejected position")
			p.out.send("info string %v", err)
			return false
		}
		p.pos, p.setup = pos, cmd
	case CmdGo:
		if p.busy(cmd) {
			return false
		}
		p.startSearch(cmd.Go)
	case CmdStop:
		if p.state != Searching {
			return false
		}
		p.state = Stopping
		p.search.cancel()
		p.finishSearch(<-p.done, true)
	case CmdPonderHit:
	case CmdPerft:
		if p.busy(cmd) {
			return false
		}
		p.perft(cmd.Depth)
	case CmdDisplay:
		if p.busy(cmd) {
			return false
		}
		p.out.send("info string fen %s", p.pos.Encode())
		p.out.send("info string hash %016x", p.pos.Hash())
	case CmdQuit:
		return true
	default:
		if cmd.Line != "" {
			p.log.Debug().Str("line", cmd.Line).Msg("unknown command")
		}
	}
	return false
}

// busy 只有 Idle 时才能改局面或开始搜索
func (p *Protocol) busy(cmd Command) bool {
	if p.state == Idle {
		return false
	}
	p.log.Warn().Str("cmd", cmd.Kind.String()).Str("state", p.state.String()).Msg("ignored while searching")
	return true
}

func (p *Protocol) setOption(cmd Command) {
	if p.state != Idle {
		p.log.Warn().Str("option", cmd.Name).Msg("setoption ignored while searching")
		return
	}
	o, ok := p.findOption(cmd.Name)
	if !ok {
		p.out.send("info string unknown option %s", cmd.Name)
		return
	}
	if err := o.apply(p, o, cmd.Value); err != nil {
		p.log.Warn().Err(err).Msg("setoption failed")
		p.out.send("info string %v", err)
		return
	}
	p.log.Debug().Str("option", o.name).Str("value", cmd.Value).Msg("option set")
}

func buildPosition(cmd Command) (*board.Position, error) {
	var pos *board.Position
	if cmd.StartPos {
		pos = board.NewInitialPosition()
	} else {
		var err error
		if pos, err = board.DecodePosition(cmd.FEN); err != nil {
			return nil, err
		}
	}
	for _, m := range cmd.Moves {
		if err := pos.ApplyUCI(m); err != nil {
			return nil, err
		}
	}
	return pos, nil
}

func (p *Protocol) startSearch(g GoParams) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &activeSearch{id: uuid.NewString(), cancel: cancel, started: time.Now()}
	s.log = p.log.With().Str("search", s.id).Logger()

	limits := g.limits()
	pos := p.pos
	p.pos = nil
	p.search = s
	p.state = Searching

	s.log.Info().
		Str("fen", pos.Encode()).
		Str("side", sideToMove(pos)).
		Int("depth", limits.Depth).
		Dur("movetime", limits.MoveTime).
		Bool("infinite", limits.Infinite).
		Bool("analyse", p.analyse).
		Msg("search started")

	go func() {
		res, err := p.eng.Search(ctx, pos, limits, func(info engine.Info) {
			p.out.send("%s", formatInfo(info))
		})
		p.done <- searchDone{pos: pos, res: res, err: err}
	}()
}

// finishSearch 收回局面，回到 Idle；emit 为 false 时不输出 bestmove（quit）。
func (p *Protocol) finishSearch(d searchDone, emit bool) {
	s := p.search
	s.cancel()
	p.search = nil
	p.pos = d.pos
	p.state = Idle

	if d.err != nil {
		s.log.Error().Err(d.err).Msg("search failed")
		p.out.send("info string search failed: %v", d.err)
		if errors.Is(d.err, engine.ErrPositionCorrupted) {
			p.restorePosition()
		}
	}
	s.log.Info().
		Str("bestmove", formatBestMove(d.res)).
		Str("score", d.res.Score.UCI()).
		Int("depth", d.res.Depth).
		Int64("nodes", d.res.Nodes).
		Dur("elapsed", time.Since(s.started)).
		Msg("search finished")
	if emit {
		p.out.send("%s", formatBestMove(d.res))
	}
}

// abandonSearch 退出时停掉正在进行的搜索，不输出 bestmove
func (p *Protocol) abandonSearch() {
	if p.search == nil {
		return
	}
	p.state = Stopping
	p.search.cancel()
	p.finishSearch(<-p.done, false)
}

func (p *Protocol) restorePosition() {
	pos, err := buildPosition(p.setup)
	if err != nil {
		p.log.Error().Err(err).Msg("cannot rebuild position, falling back to start position")
		pos = board.NewInitialPosition()
		p.setup = Command{Kind: CmdPosition, StartPos: true}
	}
	p.pos = pos
}

func (p *Protocol) perft(depth int) {
	start := time.Now()
	var total uint64
	div := p.pos.Divide(depth)
	for _, move := range slices.Sorted(maps.Keys(div)) {
		p.out.send("%s: %d", move, div[move])
		total += div[move]
	}
	p.out.send("")
	p.out.send("Nodes searched: %d", total)
	p.log.Info().Int("depth", depth).Uint64("nodes", total).Dur("elapsed", time.Since(start)).Msg("perft")
}

// limits 把 go 参数换成搜索限制。ponder 按普通搜索处理。
func (g GoParams) limits() engine.Limits {
	return engine.Limits{
		Depth:       g.Depth,
		Nodes:       g.Nodes,
		Mate:        g.Mate,
		MoveTime:    g.MoveTime,
		WhiteTime:   g.WTime,
		BlackTime:   g.BTime,
		WhiteInc:    g.WInc,
		BlackInc:    g.BInc,
		HasClock:    g.HasWTime || g.HasBTime,
		MovesToGo:   g.MovesToGo,
		Infinite:    g.Infinite,
		SearchMoves: g.SearchMoves,
	}
}

// sideToMove 只给日志用
func sideToMove(pos *board.Position) string {
	if pos.Turn() == chess.White {
		return "white"
	}
	return "black"
}
