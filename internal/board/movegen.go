package board

// PseudoLegalMoves generates every move the side to move could make if
// king safety were ignored. Castling candidates only check rights, home
// squares and empty squares between king and rook.
func (p Position) PseudoLegalMoves() []Move {
	moves := make([]Move, 0, 64)
	us := p.SideToMove
	for pt := Pawn; pt <= King; pt++ {
		pieces := p.Pieces[us][pt]
		for pieces != 0 {
			moves = p.appendPieceMoves(moves, pt, pieces.PopLSB())
		}
	}
	return moves
}

// pseudoLegalFrom generates the pseudo-legal moves of the piece on sq.
func (p Position) pseudoLegalFrom(sq Square) []Move {
	piece := p.PieceAt(sq)
	if piece == NoPiece || piece.Color() != p.SideToMove {
		return nil
	}
	return p.appendPieceMoves(make([]Move, 0, 28), piece.Type(), sq)
}

// appendPieceMoves is the single dispatch point over piece kinds.
func (p Position) appendPieceMoves(moves []Move, pt PieceType, from Square) []Move {
	targets := ^p.Occupied[p.SideToMove]
	switch pt {
	case Pawn:
		return p.appendPawnMoves(moves, from)
	case Knight:
		return appendTargets(moves, from, KnightAttacks(from)&targets)
	case Bishop:
		return appendTargets(moves, from, BishopAttacks(from, p.AllOccupied)&targets)
	case Rook:
		return appendTargets(moves, from, RookAttacks(from, p.AllOccupied)&targets)
	case Queen:
		return appendTargets(moves, from, QueenAttacks(from, p.AllOccupied)&targets)
	case King:
		moves = appendTargets(moves, from, KingAttacks(from)&targets)
		return p.appendCastling(moves, from)
	}
	return moves
}

func appendTargets(moves []Move, from Square, targets Bitboard) []Move {
	for targets != 0 {
		moves = append(moves, NewMove(from, targets.PopLSB(), Normal))
	}
	return moves
}

// appendPawnMoves generates pushes, captures, en passant and promotions.
func (p Position) appendPawnMoves(moves []Move, from Square) []Move {
	us := p.SideToMove
	them := us.Other()

	dir := 1
	if us == Black {
		dir = -1
	}

	if one := NewSquare(from.File(), from.Rank()+dir); one != NoSquare && p.IsEmpty(one) {
		moves = appendPawnMove(moves, from, one, us)
		if from.RelativeRank(us) == 1 {
			if two := NewSquare(from.File(), from.Rank()+2*dir); p.IsEmpty(two) {
				moves = append(moves, NewMove(from, two, DoublePawnPush))
			}
		}
	}

	captures := PawnAttacks(from, us) & p.Occupied[them]
	for captures != 0 {
		moves = appendPawnMove(moves, from, captures.PopLSB(), us)
	}

	if ep := p.EnPassant; ep != NoSquare && PawnAttacks(from, us).IsSet(ep) &&
		p.IsEmpty(ep) && p.Pieces[them][Pawn].IsSet(enPassantVictim(ep, us)) {
		moves = append(moves, NewMove(from, ep, EnPassantCapture))
	}
	return moves
}

// appendPawnMove adds a pawn step or capture, expanding it into the four
// promotions when it reaches the far rank.
func appendPawnMove(moves []Move, from, to Square, us Color) []Move {
	if to.RelativeRank(us) != 7 {
		return append(moves, NewMove(from, to, Normal))
	}
	return append(moves,
		NewPromotion(from, to, Queen),
		NewPromotion(from, to, Rook),
		NewPromotion(from, to, Bishop),
		NewPromotion(from, to, Knight),
	)
}

// appendCastling adds castling candidates for a king standing on from.
func (p Position) appendCastling(moves []Move, from Square) []Move {
	us := p.SideToMove
	home := E1
	if us == Black {
		home = E8
	}
	if from != home {
		return moves
	}

	for _, kingSide := range [2]bool{true, false} {
		if !p.CastlingRights.CanCastle(us, kingSide) {
			continue
		}
		rookFrom, _ := castleRookSquares(us, kingSide)
		if p.PieceAt(rookFrom) != NewPiece(Rook, us) {
			continue
		}
		if p.AllOccupied&between(from, rookFrom) != 0 {
			continue
		}
		if kingSide {
			moves = append(moves, NewMove(from, from+2, CastleKingside))
		} else {
			moves = append(moves, NewMove(from, from-2, CastleQueenside))
		}
	}
	return moves
}

// between returns the squares strictly between a and b on a shared rank or
// file, or Empty.
func between(a, b Square) Bitboard {
	return RookAttacks(a, SquareBB(b)) & RookAttacks(b, SquareBB(a))
}
