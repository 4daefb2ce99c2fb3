package uci

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdUCI
	CmdIsReady
	CmdSetOption
	CmdNewGame
	CmdPosition
	CmdGo
	CmdStop
	CmdPonderHit
	CmdQuit
	CmdDebug
	CmdPerft
	CmdDisplay
)

var kindNames = map[CommandKind]string{
	CmdUnknown:   "unknown",
	CmdUCI:       "uci",
	CmdIsReady:   "isready",
	CmdSetOption: "setoption",
	CmdNewGame:   "ucinewgame",
	CmdPosition:  "position",
	CmdGo:        "go",
	CmdStop:      "stop",
	CmdPonderHit: "ponderhit",
	CmdQuit:      "quit",
	CmdDebug:     "debug",
	CmdPerft:     "perft",
	CmdDisplay:   "d",
}

func (k CommandKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Command 是解析后的一行输入。只有与 Kind 对应的字段有意义。
type Command struct {
	Kind CommandKind
	Line string

	// position
	StartPos bool
	FEN      string
	Moves    []string

	// setoption
	Name  string
	Value string

	Go GoParams

	Debug bool // debug on|off
	Depth int  // perft
}

// GoParams go 命令的参数；时间都是毫秒换算来的。
type GoParams struct {
	SearchMoves []string
	Ponder      bool
	WTime       time.Duration
	BTime       time.Duration
	HasWTime    bool
	HasBTime    bool
	WInc        time.Duration
	BInc        time.Duration
	MovesToGo   int
	Depth       int
	Nodes       int64
	Mate        int
	MoveTime    time.Duration
	Infinite    bool
}

var moveRe = regexp.MustCompile(`^((([a-h][1-8]){2}[bnrq]?)|(0000))$`)

// IsMove 是否是长代数记法的着法（含空着 0000）
func IsMove(s string) bool {
	return moveRe.MatchString(s)
}

// ParseCommand 解析一行输入。不认识或格式不对的都返回 CmdUnknown，不会出错。
func ParseCommand(line string) Command {
	line = strings.TrimSpace(line)
	tokens := strings.Fields(line)
	unknown := Command{Kind: CmdUnknown, Line: line}
	if len(tokens) == 0 {
		return unknown
	}

	args := tokens[1:]
	switch tokens[0] {
	case "uci":
		return Command{Kind: CmdUCI, Line: line}
	case "isready":
		return Command{Kind: CmdIsReady, Line: line}
	case "ucinewgame":
		return Command{Kind: CmdNewGame, Line: line}
	case "stop":
		return Command{Kind: CmdStop, Line: line}
	case "ponderhit":
		return Command{Kind: CmdPonderHit, Line: line}
	case "quit":
		return Command{Kind: CmdQuit, Line: line}
	case "d":
		return Command{Kind: CmdDisplay, Line: line}
	case "debug":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return unknown
		}
		return Command{Kind: CmdDebug, Line: line, Debug: args[0] == "on"}
	case "perft":
		if len(args) != 1 {
			return unknown
		}
		depth, err := strconv.Atoi(args[0])
		if err != nil || depth < 1 {
			return unknown
		}
		return Command{Kind: CmdPerft, Line: line, Depth: depth}
	case "setoption":
		return parseSetOption(line, args)
	case "position":
		return parsePosition(line, args)
	case "go":
		return Command{Kind: CmdGo, Line: line, Go: parseGo(args)}
	}
	return unknown
}

// setoption name <id> [value <x>]，名字和值都可以带空格
func parseSetOption(line string, args []string) Command {
	if len(args) < 2 || args[0] != "name" {
		return Command{Kind: CmdUnknown, Line: line}
	}
	var name, value []string
	inValue := false
	for _, tok := range args[1:] {
		switch {
		case !inValue && tok == "value":
			inValue = true
		case inValue:
			value = append(value, tok)
		default:
			name = append(name, tok)
		}
	}
	if len(name) == 0 {
		return Command{Kind: CmdUnknown, Line: line}
	}
	return Command{
		Kind:  CmdSetOption,
		Line:  line,
		Name:  strings.Join(name, " "),
		Value: strings.Join(value, " "),
	}
}

// position startpos|fen <6 段> [moves ...]
func parsePosition(line string, args []string) Command {
	cmd := Command{Kind: CmdPosition, Line: line}
	if len(args) == 0 {
		return Command{Kind: CmdUnknown, Line: line}
	}

	rest := args[1:]
	switch args[0] {
	case "startpos":
		cmd.StartPos = true
	case "fen":
		if len(rest) < 6 {
			return Command{Kind: CmdUnknown, Line: line}
		}
		for _, tok := range rest[:6] {
			if tok == "moves" {
				return Command{Kind: CmdUnknown, Line: line}
			}
		}
		cmd.FEN = strings.Join(rest[:6], " ")
		rest = rest[6:]
	default:
		return Command{Kind: CmdUnknown, Line: line}
	}

	if len(rest) > 0 && rest[0] == "moves" {
		cmd.Moves = append([]string{}, rest[1:]...)
	}
	return cmd
}

func parseGo(args []string) GoParams {
	var g GoParams

	// 数值参数：后面一个 token 不是数字就当没给
	next := func(i *int) (int64, bool) {
		if *i+1 >= len(args) {
			return 0, false
		}
		*i++
		v, err := strconv.ParseInt(args[*i], 10, 64)
		if err != nil {
			return 0, false
		}
		return max(v, 0), true
	}
	ms := func(v int64) time.Duration {
		return time.Duration(v) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "ponder":
			g.Ponder = true
		case "infinite":
			g.Infinite = true
		case "wtime":
			if v, ok := next(&i); ok {
				g.WTime, g.HasWTime = ms(v), true
			}
		case "btime":
			if v, ok := next(&i); ok {
				g.BTime, g.HasBTime = ms(v), true
			}
		case "winc":
			if v, ok := next(&i); ok {
				g.WInc = ms(v)
			}
		case "binc":
			if v, ok := next(&i); ok {
				g.BInc = ms(v)
			}
		case "movestogo":
			if v, ok := next(&i); ok {
				g.MovesToGo = int(v)
			}
		case "depth":
			if v, ok := next(&i); ok {
				g.Depth = int(v)
			}
		case "nodes":
			if v, ok := next(&i); ok {
				g.Nodes = v
			}
		case "mate":
			if v, ok := next(&i); ok {
				g.Mate = int(v)
			}
		case "movetime":
			if v, ok := next(&i); ok {
				g.MoveTime = ms(v)
			}
		case "searchmoves":
			g.SearchMoves = []string{}
			for i+1 < len(args) && IsMove(args[i+1]) {
				i++
				g.SearchMoves = append(g.SearchMoves, args[i])
			}
		}
	}
	return g
}
