package board

import (
	"strings"
	"sync"

	"github.com/notnil/chess"
)

const zobristPieceTypes = 7 // PieceType 范围 [1..6]，0 保留空位不用

var (
	zobristOnce sync.Once

	zobristPieces   [2][zobristPieceTypes][64]uint64
	zobristSide     uint64
	zobristCastling [4]uint64 // K Q k q
	zobristEPFile   [8]uint64
)

func initZobrist() {
	zobristOnce.Do(func() {
		seed := uint64(0x9E3779B97F4A7C15)
		next := func() uint64 {
			seed += 0x9E3779B97F4A7C15
			z := seed
			z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
			z = (z ^ (z >> 27)) * 0x94D049BB133111EB
			return z ^ (z >> 31)
		}

		for side := 0; side < 2; side++ {
			for pt := 1; pt < zobristPieceTypes; pt++ {
				for sq := 0; sq < 64; sq++ {
					zobristPieces[side][pt][sq] = next()
				}
			}
		}
		zobristSide = next()
		for i := range zobristCastling {
			zobristCastling[i] = next()
		}
		for i := range zobristEPFile {
			zobristEPFile[i] = next()
		}
	})
}

func pieceHashKey(pc chess.Piece, sq chess.Square) uint64 {
	if pc == chess.NoPiece || sq < chess.A1 || sq > chess.H8 {
		return 0
	}

	var sideIdx int
	switch pc.Color() {
	case chess.White:
		sideIdx = 0
	case chess.Black:
		sideIdx = 1
	default:
		return 0
	}

	pt := int(pc.Type())
	if pt <= 0 || pt >= zobristPieceTypes {
		return 0
	}
	return zobristPieces[sideIdx][pt][sq]
}

// calculateHash 全量计算局面的 Zobrist 哈希。
// 过路兵只记列号，由调用方给出（-1 表示没有）。
func calculateHash(pos *chess.Position, epFile int) uint64 {
	initZobrist()

	var h uint64
	b := pos.Board()
	for sq := chess.A1; sq <= chess.H8; sq++ {
		h ^= pieceHashKey(b.Piece(sq), sq)
	}
	if pos.Turn() == chess.Black {
		h ^= zobristSide
	}
	rights := string(pos.CastleRights())
	for i, r := range "KQkq" {
		if strings.ContainsRune(rights, r) {
			h ^= zobristCastling[i]
		}
	}
	if epFile >= 0 && epFile < 8 {
		h ^= zobristEPFile[epFile]
	}
	return h
}

// CalculateHash 重新全量计算当前局面的哈希，应与 Hash() 一致。
func (p *Position) CalculateHash() uint64 {
	f := p.top()
	return calculateHash(f.pos, f.epFile)
}
