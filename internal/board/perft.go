package board

// Perft 统计 depth 层内的叶子数，用来核对走法生成。
func (p *Position) Perft(depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := p.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		p.MakeMove(m)
		nodes += p.Perft(depth - 1)
		p.UnmakeMove(m)
	}
	return nodes
}

// Divide 按根着法拆开的 perft
func (p *Position) Divide(depth int) map[string]uint64 {
	out := make(map[string]uint64)
	if depth <= 0 {
		return out
	}
	for _, m := range p.LegalMoves() {
		p.MakeMove(m)
		out[m.String()] = p.Perft(depth - 1)
		p.UnmakeMove(m)
	}
	return out
}
