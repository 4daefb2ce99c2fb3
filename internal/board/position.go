package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

// frame 是局面栈里的一层
type frame struct {
	pos      *chess.Position
	move     *chess.Move // 走到这一层的着法，根为 nil
	hash     uint64
	halfMove int // 五十回合计数（半回合）
	epFile   int // 过路兵所在列，-1 表示没有
}

// Position 是唯一的可变局面。notnil/chess 的 Position 不可变，
// 这里用一个栈模拟 make/unmake：MakeMove 压入后继局面，UnmakeMove 弹出。
// 栈里同时保留 position 命令回放过的着法，重复局面判定要用到。
type Position struct {
	frames []frame
}

func newPosition(root *chess.Position, halfMove, epFile int) *Position {
	p := &Position{frames: make([]frame, 1, 128)}
	p.frames[0] = frame{pos: root, halfMove: halfMove, epFile: epFile}
	p.frames[0].hash = calculateHash(root, epFile)
	return p
}

// NewInitialPosition 标准开局局面
func NewInitialPosition() *Position {
	return newPosition(chess.NewGame().Position(), 0, -1)
}

// DecodePosition 从 FEN 构造局面
func DecodePosition(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return nil, fmt.Errorf("%w: want 6 fields, got %d", ErrInvalidFEN, len(fields))
	}
	opt, err := chess.FEN(strings.Join(fields, " "))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	root := chess.NewGame(opt).Position()
	if kingCount(root.Board(), chess.White) != 1 || kingCount(root.Board(), chess.Black) != 1 {
		return nil, fmt.Errorf("%w: each side needs exactly one king", ErrInvalidFEN)
	}

	halfMove, err := strconv.Atoi(fields[4])
	if err != nil || halfMove < 0 {
		return nil, fmt.Errorf("%w: bad halfmove clock %q", ErrInvalidFEN, fields[4])
	}
	epFile := -1
	if ep := fields[3]; ep != "-" {
		if len(ep) != 2 || ep[0] < 'a' || ep[0] > 'h' {
			return nil, fmt.Errorf("%w: bad en passant square %q", ErrInvalidFEN, ep)
		}
		epFile = int(ep[0] - 'a')
	}
	return newPosition(root, halfMove, epFile), nil
}

func kingCount(b *chess.Board, c chess.Color) int {
	n := 0
	for sq := chess.A1; sq <= chess.H8; sq++ {
		pc := b.Piece(sq)
		if pc.Type() == chess.King && pc.Color() == c {
			n++
		}
	}
	return n
}

func (p *Position) top() *frame {
	return &p.frames[len(p.frames)-1]
}

func (p *Position) current() *chess.Position {
	return p.top().pos
}

// Encode 当前局面的 FEN
func (p *Position) Encode() string {
	return p.current().String()
}

func (p *Position) String() string {
	return p.Encode()
}

func (p *Position) Board() *chess.Board {
	return p.current().Board()
}

func (p *Position) Turn() chess.Color {
	return p.current().Turn()
}

// HalfMoveClock 距上一次吃子或动兵的半回合数
func (p *Position) HalfMoveClock() int {
	return p.top().halfMove
}

// LegalMoves 枚举合法着法，顺序由 notnil/chess 决定且对同一局面稳定。
func (p *Position) LegalMoves() []Move {
	valid := p.current().ValidMoves()
	out := make([]Move, len(valid))
	for i, m := range valid {
		out[i] = m
	}
	return out
}

func (p *Position) MakeMove(m Move) {
	cm, ok := m.(*chess.Move)
	if !ok {
		panic(fmt.Sprintf("board: foreign move %T", m))
	}
	cur := p.top()
	moved := cur.pos.Board().Piece(cm.S1())

	halfMove := cur.halfMove + 1
	if moved.Type() == chess.Pawn || cm.HasTag(chess.Capture) || cm.HasTag(chess.EnPassant) {
		halfMove = 0
	}
	epFile := -1
	if moved.Type() == chess.Pawn {
		if d := int(cm.S2().Rank()) - int(cm.S1().Rank()); d == 2 || d == -2 {
			epFile = int(cm.S1().File())
		}
	}

	next := cur.pos.Update(cm)
	p.frames = append(p.frames, frame{
		pos:      next,
		move:     cm,
		hash:     calculateHash(next, epFile),
		halfMove: halfMove,
		epFile:   epFile,
	})
}

// UnmakeMove 撤销最近一次 MakeMove，m 必须就是那一步。
func (p *Position) UnmakeMove(m Move) {
	n := len(p.frames)
	if n < 2 || Move(p.frames[n-1].move) != m {
		panic(ErrUnbalancedUnmake)
	}
	p.frames[n-1] = frame{}
	p.frames = p.frames[:n-1]
}

// ApplyUCI 按长代数记法走一步（position ... moves 回放用），大小写不敏感。
func (p *Position) ApplyUCI(s string) error {
	m, ok := p.FindMove(s)
	if !ok {
		return fmt.Errorf("%w: %q in %s", ErrIllegalMove, s, p.Encode())
	}
	p.MakeMove(m)
	return nil
}

// FindMove 在当前合法着法里找 UCI 串对应的那一步
func (p *Position) FindMove(s string) (Move, bool) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, m := range p.current().ValidMoves() {
		if m.String() == want {
			return m, true
		}
	}
	return nil, false
}

func (p *Position) Hash() uint64 {
	return p.top().hash
}

// MoveScore MVV-LVA：先吃大子，同样的被吃子先用小子去吃；升变额外加分。
func (p *Position) MoveScore(m Move) int {
	cm, ok := m.(*chess.Move)
	if !ok {
		return 0
	}
	b := p.current().Board()
	score := 0
	if cm.HasTag(chess.EnPassant) {
		score = 10*pieceValue[chess.Pawn] - pieceValue[chess.Pawn]/10
	} else if victim := b.Piece(cm.S2()); victim != chess.NoPiece {
		attacker := b.Piece(cm.S1())
		score = 10*pieceValue[victim.Type()] - pieceValue[attacker.Type()]/10
	}
	if cm.Promo() != chess.NoPieceType {
		score += pieceValue[cm.Promo()]
	}
	return score
}
