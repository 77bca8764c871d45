package board

// LegalMoves generates all legal moves for the side to move.
func (p Position) LegalMoves() []Move {
	return p.FilterLegal(p.PseudoLegalMoves())
}

// LegalMovesFrom returns the legal moves of the piece on sq. It returns an
// empty slice for an empty square or a piece of the side not to move.
func (p Position) LegalMovesFrom(sq Square) []Move {
	if !sq.IsValid() {
		return []Move{}
	}
	return p.FilterLegal(p.pseudoLegalFrom(sq))
}

// FilterLegal keeps the moves that do not leave the mover's king attacked.
// Castling is also dropped when the king starts on, crosses or lands on a
// square the opponent attacks. The input slice is not modified.
func (p Position) FilterLegal(moves []Move) []Move {
	legal := make([]Move, 0, len(moves))
	var (
		attacked     Bitboard
		haveAttacked bool
	)
	for _, m := range moves {
		if m.IsCastling() {
			if !haveAttacked {
				attacked = p.AttackMap(p.SideToMove.Other())
				haveAttacked = true
			}
			if attacked&castlePath(m) != 0 {
				continue
			}
		}
		if p.isLegal(m) {
			legal = append(legal, m)
		}
	}
	return legal
}

// isLegal plays m and tests whether the mover's king is attacked afterwards.
func (p Position) isLegal(m Move) bool {
	us := p.SideToMove
	next := p.Apply(m)
	return !next.IsSquareAttacked(next.KingSquare(us), us.Other())
}

// castlePath returns the king's origin, transit and destination squares.
func castlePath(m Move) Bitboard {
	return SquareBB(m.From) | SquareBB((m.From+m.To)/2) | SquareBB(m.To)
}

// InCheck returns true if the side to move is in check.
func (p Position) InCheck() bool {
	us := p.SideToMove
	return p.IsSquareAttacked(p.KingSquare(us), us.Other())
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p Position) HasLegalMoves() bool {
	for _, m := range p.PseudoLegalMoves() {
		if len(p.FilterLegal([]Move{m})) > 0 {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the position is checkmate.
func (p Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// InsufficientMaterial returns true if neither side can possibly checkmate:
// K v K, K+B v K, K+N v K, and K+B v K+B with both bishops on squares of
// the same colour.
func (p Position) InsufficientMaterial() bool {
	for c := White; c <= Black; c++ {
		if p.Pieces[c][Pawn]|p.Pieces[c][Rook]|p.Pieces[c][Queen] != 0 {
			return false
		}
	}

	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	switch minors := wKnights + wBishops + bKnights + bBishops; {
	case minors <= 1:
		return true
	case minors == 2 && wBishops == 1 && bBishops == 1:
		bishops := p.Pieces[White][Bishop] | p.Pieces[Black][Bishop]
		return bishops&LightSquares == bishops || bishops&DarkSquares == bishops
	}
	return false
}

// BareKing returns true if c has nothing left but its king.
func (p Position) BareKing(c Color) bool {
	return p.Occupied[c] == p.Pieces[c][King]
}

// CannotMate returns true if c's material alone could never deliver mate:
// a bare king, or a king with a single bishop or knight.
func (p Position) CannotMate(c Color) bool {
	if p.BareKing(c) {
		return true
	}
	if p.Pieces[c][Pawn]|p.Pieces[c][Rook]|p.Pieces[c][Queen] != 0 {
		return false
	}
	return p.Pieces[c][Knight].PopCount()+p.Pieces[c][Bishop].PopCount() <= 1
}

// Perft counts the leaf nodes of the legal move tree to the given depth.
func (p Position) Perft(depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := p.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		nodes += p.Apply(m).Perft(depth - 1)
	}
	return nodes
}

// Divide returns the perft count below each root move.
func (p Position) Divide(depth int) map[Move]uint64 {
	counts := make(map[Move]uint64)
	if depth < 1 {
		return counts
	}
	for _, m := range p.LegalMoves() {
		counts[m] = p.Apply(m).Perft(depth - 1)
	}
	return counts
}
