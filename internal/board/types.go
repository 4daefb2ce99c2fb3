package board

import (
	"errors"

	"github.com/notnil/chess"
)

var (
	ErrInvalidFEN       = errors.New("invalid FEN")
	ErrIllegalMove      = errors.New("illegal move")
	ErrUnbalancedUnmake = errors.New("unmake does not match last make")
)

// Move 是搜索层看到的走法：能比较相等，能打印成 UCI 长代数记法。
// 本包产生的 Move 底层都是 *chess.Move。
type Move interface {
	String() string
}

// 子力价值，只用于 MVV-LVA 排序和子力不足判定
var pieceValue = [...]int{
	chess.NoPieceType: 0,
	chess.King:        10000,
	chess.Queen:       900,
	chess.Rook:        500,
	chess.Bishop:      330,
	chess.Knight:      320,
	chess.Pawn:        100,
}

func squareOf(file, rank int) chess.Square {
	return chess.Square(file + rank*8)
}

func onBoard(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}
