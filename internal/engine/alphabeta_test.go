package engine

import (
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
)

func newTreeSearcher(root *treeNode) (*searcher, *treePos) {
	e := NewEngine()
	e.Eval = treeEval{}
	pos := newTreePos(root)
	var stop atomic.Bool
	s := newSearcher(e, pos, budget{maxDepth: MaxDepth}, &stop)
	s.rootMoves = pos.LegalMoves()
	return s, pos
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	for seed := int64(1); seed <= 60; seed++ {
		rng := rand.New(rand.NewSource(seed))
		root := randomTree(rng, 5, 4)
		if len(root.children) == 0 {
			continue
		}
		for depth := 1; depth <= 5; depth++ {
			s, pos := newTreeSearcher(root)
			got, err := s.searchRoot(depth)
			if err != nil {
				t.Fatalf("seed %d depth %d: %v", seed, depth, err)
			}
			want, wantMove := minimax(root, depth, 0)
			if got != want {
				t.Fatalf("seed %d depth %d score: got=%d want=%d", seed, depth, got, want)
			}
			if s.pv[0][0].String() != wantMove {
				t.Fatalf("seed %d depth %d move: got=%s want=%s", seed, depth, s.pv[0][0], wantMove)
			}
			if len(pos.path) != 1 {
				t.Fatalf("seed %d depth %d: path not restored, len=%d", seed, depth, len(pos.path))
			}
		}
	}
}

// 每个内部节点：本节点分数 = max(-子节点分数)
func TestNegamaxSignIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	root := randomTree(rng, 4, 3)

	var walk func(n *treeNode, depth int)
	walk = func(n *treeNode, depth int) {
		if len(n.children) == 0 || depth == 0 {
			return
		}
		s, _ := newTreeSearcher(n)
		parent, err := s.searchRoot(depth)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		best := -scoreInf
		for _, c := range n.children {
			cs, _ := newTreeSearcher(c)
			child, err := cs.negamax(depth-1, 1, -scoreInf, scoreInf)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if -child > best {
				best = -child
			}
		}
		if parent != best {
			t.Fatalf("node %d: got=%d want=max(-child)=%d", n.id, parent, best)
		}
		for _, c := range n.children {
			walk(c, depth-1)
		}
	}
	walk(root, 4)
}

// 换一种着法顺序，分数和着法都不变
func TestMoveOrderDoesNotChangeResult(t *testing.T) {
	for seed := int64(100); seed < 130; seed++ {
		rng := rand.New(rand.NewSource(seed))
		root := randomTree(rng, 5, 4)
		if len(root.children) == 0 {
			continue
		}
		s, _ := newTreeSearcher(root)
		want, err := s.searchRoot(4)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		wantMove := s.pv[0][0].String()

		shuffleTree(rng, root)
		s, _ = newTreeSearcher(root)
		got, err := s.searchRoot(4)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if got != want || s.pv[0][0].String() != wantMove {
			t.Fatalf("seed %d: got=%d %s want=%d %s", seed, got, s.pv[0][0], want, wantMove)
		}
	}
}

func TestTerminalScores(t *testing.T) {
	mated := &treeNode{id: 1, check: true}
	stalemate := &treeNode{id: 2}
	root := &treeNode{id: 3, children: []*treeNode{stalemate, mated}, names: []string{"a", "b"}}

	s, _ := newTreeSearcher(root)
	score, err := s.searchRoot(1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if score != MateIn(1) || s.pv[0][0].String() != "b" {
		t.Fatalf("got=%s %s want=%s b", score, s.pv[0][0], MateIn(1))
	}

	// 两个子节点的终局分必须和 EvaluateTerminal 一致
	if got := EvaluateTerminal(mated.check, 1); got != MatedIn(1) || !got.IsMate() || got >= 0 {
		t.Fatalf("mated terminal: got=%s", got)
	}
	if got := EvaluateTerminal(stalemate.check, 1); got != ScoreDraw {
		t.Fatalf("stalemate terminal: got=%s", got)
	}
}

func TestAbortedIterationIsReported(t *testing.T) {
	leaf := func(id uint64) *treeNode {
		return &treeNode{id: id, value: 10, children: []*treeNode{{id: id + 100}}, names: []string{"x"}}
	}
	root := &treeNode{id: 1, children: []*treeNode{leaf(2), leaf(3)}, names: []string{"a", "b"}}

	s, pos := newTreeSearcher(root)
	s.abortable = true
	s.stop.Store(true)
	// 让第一个子节点正好落在检查点上
	s.nodes = checkInterval - 2
	if _, err := s.searchRoot(2); !errors.Is(err, errAborted) {
		t.Fatalf("got err=%v want errAborted", err)
	}
	if len(pos.path) != 1 {
		t.Fatalf("path not restored after abort, len=%d", len(pos.path))
	}
}
