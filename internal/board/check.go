package board

import "github.com/notnil/chess"

var (
	knightDirs = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingDirs   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookDirs   = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// InCheck 当前走子方的王是否被将军
func (p *Position) InCheck() bool {
	b := p.current().Board()
	side := p.current().Turn()
	king, ok := findKing(b, side)
	if !ok {
		return false
	}
	return IsAttacked(b, king, side.Other())
}

func findKing(b *chess.Board, side chess.Color) (chess.Square, bool) {
	for sq := chess.A1; sq <= chess.H8; sq++ {
		pc := b.Piece(sq)
		if pc.Type() == chess.King && pc.Color() == side {
			return sq, true
		}
	}
	return chess.NoSquare, false
}

// IsAttacked 判断 sq 是否被 by 这一方攻击。
// 从目标格反向看：马位、王位、兵位，以及直线/斜线上第一个子。
func IsAttacked(b *chess.Board, sq chess.Square, by chess.Color) bool {
	file, rank := int(sq.File()), int(sq.Rank())

	has := func(f, r int, types ...chess.PieceType) bool {
		if !onBoard(f, r) {
			return false
		}
		pc := b.Piece(squareOf(f, r))
		if pc == chess.NoPiece || pc.Color() != by {
			return false
		}
		for _, t := range types {
			if pc.Type() == t {
				return true
			}
		}
		return false
	}

	// 兵：白兵从下往上吃，所以看目标格下方一行
	pawnRank := rank - 1
	if by == chess.Black {
		pawnRank = rank + 1
	}
	if has(file-1, pawnRank, chess.Pawn) || has(file+1, pawnRank, chess.Pawn) {
		return true
	}

	for _, d := range knightDirs {
		if has(file+d[0], rank+d[1], chess.Knight) {
			return true
		}
	}
	for _, d := range kingDirs {
		if has(file+d[0], rank+d[1], chess.King) {
			return true
		}
	}

	slide := func(dirs [4][2]int, types ...chess.PieceType) bool {
		for _, d := range dirs {
			f, r := file+d[0], rank+d[1]
			for onBoard(f, r) {
				pc := b.Piece(squareOf(f, r))
				if pc != chess.NoPiece {
					if has(f, r, types...) {
						return true
					}
					break
				}
				f += d[0]
				r += d[1]
			}
		}
		return false
	}
	return slide(rookDirs, chess.Rook, chess.Queen) || slide(bishopDirs, chess.Bishop, chess.Queen)
}

// Attacks 返回 sq 上的棋子攻击（或保护）的格子，空格返回 nil。
// 兵只算斜向吃子的两格。
func Attacks(b *chess.Board, sq chess.Square) []chess.Square {
	pc := b.Piece(sq)
	if pc == chess.NoPiece {
		return nil
	}
	file, rank := int(sq.File()), int(sq.Rank())
	var out []chess.Square
	add := func(f, r int) {
		if onBoard(f, r) {
			out = append(out, squareOf(f, r))
		}
	}
	slide := func(dirs [4][2]int) {
		for _, d := range dirs {
			f, r := file+d[0], rank+d[1]
			for onBoard(f, r) {
				out = append(out, squareOf(f, r))
				if b.Piece(squareOf(f, r)) != chess.NoPiece {
					break
				}
				f += d[0]
				r += d[1]
			}
		}
	}

	switch pc.Type() {
	case chess.Pawn:
		dr := 1
		if pc.Color() == chess.Black {
			dr = -1
		}
		add(file-1, rank+dr)
		add(file+1, rank+dr)
	case chess.Knight:
		for _, d := range knightDirs {
			add(file+d[0], rank+d[1])
		}
	case chess.King:
		for _, d := range kingDirs {
			add(file+d[0], rank+d[1])
		}
	case chess.Bishop:
		slide(bishopDirs)
	case chess.Rook:
		slide(rookDirs)
	case chess.Queen:
		slide(rookDirs)
		slide(bishopDirs)
	}
	return out
}
