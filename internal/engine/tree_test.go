package engine

import (
	"fmt"
	"math/rand"

	"sculpin/internal/board"
)

// treeNode 是测试用的抽象博弈树。value 是该节点走子方视角的静态分。
type treeNode struct {
	id       uint64
	value    Score
	check    bool // 没有子节点时：true 表示被杀，false 表示逼和
	draw     bool
	children []*treeNode
	names    []string
}

type treeMove struct {
	name  string
	index int
}

func (m *treeMove) String() string { return m.name }

// treePos 实现 Position，局面就是从根到当前节点的路径。
type treePos struct {
	root  *treeNode
	path  []*treeNode
	made  []board.Move
	moves map[*treeNode][]board.Move
}

func newTreePos(root *treeNode) *treePos {
	return &treePos{root: root, path: []*treeNode{root}, moves: make(map[*treeNode][]board.Move)}
}

func (p *treePos) node() *treeNode { return p.path[len(p.path)-1] }

func (p *treePos) LegalMoves() []board.Move {
	n := p.node()
	if ms, ok := p.moves[n]; ok {
		return ms
	}
	ms := make([]board.Move, len(n.children))
	for i := range n.children {
		ms[i] = &treeMove{name: n.names[i], index: i}
	}
	p.moves[n] = ms
	return ms
}

func (p *treePos) MakeMove(m board.Move) {
	tm := m.(*treeMove)
	p.path = append(p.path, p.node().children[tm.index])
	p.made = append(p.made, m)
}

func (p *treePos) UnmakeMove(m board.Move) {
	if len(p.made) == 0 || p.made[len(p.made)-1] != m {
		panic("unbalanced unmake")
	}
	p.path = p.path[:len(p.path)-1]
	p.made = p.made[:len(p.made)-1]
}

func (p *treePos) InCheck() bool { return p.node().check }
func (p *treePos) IsDraw() bool  { return p.node().draw }
func (p *treePos) Hash() uint64  { return p.node().id }

type treeEval struct{}

func (treeEval) Evaluate(pos Position) Score {
	return pos.(*treePos).node().value
}

// randomTree 生成一棵随机树：分叉 0..maxBranch，少量终局和和棋节点。
func randomTree(rng *rand.Rand, depth, maxBranch int) *treeNode {
	var nextID uint64
	var build func(d int) *treeNode
	build = func(d int) *treeNode {
		nextID++
		n := &treeNode{id: nextID * 0x9E3779B97F4A7C15, value: Score(rng.Intn(401) - 200)}
		if d == 0 {
			return n
		}
		branch := 1 + rng.Intn(maxBranch)
		switch r := rng.Intn(20); {
		case r == 0:
			branch = 0
			n.check = rng.Intn(2) == 0
		case r == 1:
			n.draw = true
		}
		for i := 0; i < branch; i++ {
			n.children = append(n.children, build(d-1))
			n.names = append(n.names, fmt.Sprintf("m%02d", i))
		}
		return n
	}
	return build(depth)
}

// shuffleTree 把每个节点的子节点随机重排，名字跟着子节点走。
func shuffleTree(rng *rand.Rand, n *treeNode) {
	rng.Shuffle(len(n.children), func(i, j int) {
		n.children[i], n.children[j] = n.children[j], n.children[i]
		n.names[i], n.names[j] = n.names[j], n.names[i]
	})
	for _, c := range n.children {
		shuffleTree(rng, c)
	}
}

// minimax 不剪枝的参考实现；同分取名字较小的着法。
func minimax(n *treeNode, depth, ply int) (Score, string) {
	if ply > 0 && n.draw {
		return ScoreDraw, ""
	}
	if len(n.children) == 0 {
		return EvaluateTerminal(n.check, ply), ""
	}
	if depth == 0 {
		return n.value, ""
	}
	best, bestName := -scoreInf, ""
	for i, c := range n.children {
		v, _ := minimax(c, depth-1, ply+1)
		v = -v
		if v > best || (v == best && n.names[i] < bestName) {
			best, bestName = v, n.names[i]
		}
	}
	return best, bestName
}
