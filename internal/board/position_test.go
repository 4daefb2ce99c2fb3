package board

import (
	"errors"
	"testing"
)

const (
	kiwipeteFEN  = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	stalemateFEN = "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
	checkmateFEN = "k1R5/8/1K6/8/8/8/8/8 b - - 1 1"
)

func TestInitialPosition(t *testing.T) {
	pos := NewInitialPosition()
	if got := len(pos.LegalMoves()); got != 20 {
		t.Fatalf("initial legal moves: got=%d want=%d", got, 20)
	}
	if pos.InCheck() {
		t.Fatalf("initial position should not be in check")
	}
	if pos.IsDraw() {
		t.Fatalf("initial position should not be a draw")
	}
}

func TestDecodePositionRejectsBadFEN(t *testing.T) {
	cases := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",
		"8/8/8/8/8/8/8/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",
	}
	for _, fen := range cases {
		if _, err := DecodePosition(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Fatalf("decode %q: got err=%v want ErrInvalidFEN", fen, err)
		}
	}
}

func TestMakeUnmakeRestoresPosition(t *testing.T) {
	pos, err := DecodePosition(kiwipeteFEN)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	fen, hash := pos.Encode(), pos.Hash()
	for _, m := range pos.LegalMoves() {
		pos.MakeMove(m)
		if pos.Hash() != pos.CalculateHash() {
			t.Fatalf("hash after %s: got=%d want=%d", m, pos.Hash(), pos.CalculateHash())
		}
		pos.UnmakeMove(m)
		if pos.Encode() != fen || pos.Hash() != hash {
			t.Fatalf("unmake %s: got=%s want=%s", m, pos.Encode(), fen)
		}
	}
}

func TestUnmakeWrongMovePanics(t *testing.T) {
	pos := NewInitialPosition()
	moves := pos.LegalMoves()
	pos.MakeMove(moves[0])

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrUnbalancedUnmake) {
			t.Fatalf("recover: got=%v want ErrUnbalancedUnmake", r)
		}
	}()
	pos.UnmakeMove(moves[1])
}

func TestApplyUCI(t *testing.T) {
	pos := NewInitialPosition()
	for _, s := range []string{"e2e4", "E7E5", "g1f3"} {
		if err := pos.ApplyUCI(s); err != nil {
			t.Fatalf("apply %s: %v", s, err)
		}
	}
	want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"
	if got := pos.Encode(); got != want {
		t.Fatalf("fen: got=%s want=%s", got, want)
	}
	if err := pos.ApplyUCI("e2e4"); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("illegal move: got err=%v want ErrIllegalMove", err)
	}
}

func TestPromotionMoveString(t *testing.T) {
	pos, err := DecodePosition("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	m, ok := pos.FindMove("a7a8q")
	if !ok {
		t.Fatalf("a7a8q not found among %v", pos.LegalMoves())
	}
	if pos.MoveScore(m) <= 0 {
		t.Fatalf("promotion should score above quiet moves: got=%d", pos.MoveScore(m))
	}
}

func TestTerminalPositions(t *testing.T) {
	t.Run("stalemate", func(t *testing.T) {
		pos, err := DecodePosition(stalemateFEN)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if n := len(pos.LegalMoves()); n != 0 {
			t.Fatalf("legal moves: got=%d want=0", n)
		}
		if pos.InCheck() {
			t.Fatalf("stalemated side should not be in check")
		}
	})

	t.Run("checkmate", func(t *testing.T) {
		pos, err := DecodePosition(checkmateFEN)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if n := len(pos.LegalMoves()); n != 0 {
			t.Fatalf("legal moves: got=%d want=0", n)
		}
		if !pos.InCheck() {
			t.Fatalf("mated side should be in check")
		}
	})
}

func TestInCheck(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		want bool
	}{
		{"pawn", "4k3/3P4/8/8/8/8/8/4K3 b - - 0 1", true},
		{"pawn behind", "4k3/8/3P4/8/8/8/8/4K3 b - - 0 1", false},
		{"knight", "4k3/8/5N2/8/8/8/8/4K3 b - - 0 1", true},
		{"rook blocked", "4k3/4p3/8/8/4R3/8/8/4K3 b - - 0 1", false},
		{"rook open", "4k3/8/8/8/4R3/8/8/4K3 b - - 0 1", true},
		{"bishop", "4k3/8/8/1B6/8/8/8/4K3 b - - 0 1", true},
		{"queen diagonal", "4k3/8/8/8/Q7/8/8/4K3 b - - 0 1", true},
		{"black pawn on white king", "4k3/8/8/8/8/8/3p4/4K3 w - - 0 1", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := DecodePosition(tc.fen)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if got := pos.InCheck(); got != tc.want {
				t.Fatalf("in check: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestIsDraw(t *testing.T) {
	t.Run("fifty move rule", func(t *testing.T) {
		pos, err := DecodePosition("4k3/8/8/8/8/8/4P3/4K3 w - - 100 80")
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if !pos.IsDraw() {
			t.Fatalf("halfmove clock 100 should be a draw")
		}
	})

	t.Run("halfmove clock", func(t *testing.T) {
		pos, err := DecodePosition("4k3/8/8/8/8/8/4P3/4K2R w - - 98 80")
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if err := pos.ApplyUCI("h1h2"); err != nil {
			t.Fatalf("apply: %v", err)
		}
		if got := pos.HalfMoveClock(); got != 99 || pos.IsDraw() {
			t.Fatalf("after quiet move: clock=%d draw=%v", got, pos.IsDraw())
		}
		if err := pos.ApplyUCI("e8d8"); err != nil {
			t.Fatalf("apply: %v", err)
		}
		if got := pos.HalfMoveClock(); got != 100 || !pos.IsDraw() {
			t.Fatalf("hundredth half move: clock=%d draw=%v", got, pos.IsDraw())
		}
		pos.UnmakeMove(pos.frames[len(pos.frames)-1].move)
		if err := pos.ApplyUCI("e8e7"); err != nil {
			t.Fatalf("apply: %v", err)
		}
		if err := pos.ApplyUCI("e2e4"); err != nil {
			t.Fatalf("apply: %v", err)
		}
		if got := pos.HalfMoveClock(); got != 0 {
			t.Fatalf("pawn move should reset the clock: got=%d", got)
		}
	})

	t.Run("insufficient material", func(t *testing.T) {
		draws := []string{
			"4k3/8/8/8/8/8/8/4K3 w - - 0 1",
			"4k3/8/8/8/8/8/8/4KN2 w - - 0 1",
			"4kb2/8/8/8/8/8/8/2B1K3 w - - 0 1",
		}
		for _, fen := range draws {
			pos, err := DecodePosition(fen)
			if err != nil {
				t.Fatalf("decode %s: %v", fen, err)
			}
			if !pos.IsDraw() {
				t.Fatalf("%s should be a draw", fen)
			}
		}
		pos, _ := DecodePosition("4k3/8/8/8/8/8/8/4KR2 w - - 0 1")
		if pos.IsDraw() {
			t.Fatalf("rook ending should not be a draw")
		}
	})

	t.Run("threefold repetition", func(t *testing.T) {
		pos := NewInitialPosition()
		shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
		for round := 0; round < 2; round++ {
			for _, s := range shuffle {
				if pos.IsDraw() {
					t.Fatalf("draw too early at round %d before %s", round, s)
				}
				if err := pos.ApplyUCI(s); err != nil {
					t.Fatalf("apply %s: %v", s, err)
				}
			}
		}
		if !pos.IsDraw() {
			t.Fatalf("initial position seen three times should be a draw")
		}
	})
}
