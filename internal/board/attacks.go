package board

// Ray directions. The first four increase the square index, the last four
// decrease it; slidingAttacks relies on that split to pick LSB or MSB.
const (
	dirNorth = iota
	dirEast
	dirNorthEast
	dirNorthWest
	dirSouth
	dirWest
	dirSouthEast
	dirSouthWest
)

var rayDelta = [8][2]int{ // {file, rank}
	dirNorth:     {0, 1},
	dirEast:      {1, 0},
	dirNorthEast: {1, 1},
	dirNorthWest: {-1, 1},
	dirSouth:     {0, -1},
	dirWest:      {-1, 0},
	dirSouthEast: {1, -1},
	dirSouthWest: {-1, -1},
}

var (
	rookDirs   = [4]int{dirNorth, dirEast, dirSouth, dirWest}
	bishopDirs = [4]int{dirNorthEast, dirNorthWest, dirSouthEast, dirSouthWest}
)

// Pre-computed attack tables
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]
	rays          [8][64]Bitboard // [direction][Square], origin excluded
)

func init() {
	for sq := A1; sq <= H8; sq++ {
		initSquareTables(sq)
	}
}

func initSquareTables(sq Square) {
	bb := SquareBB(sq)
	f, r := sq.File(), sq.Rank()

	for _, d := range [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}} {
		if to := NewSquare(f+d[0], r+d[1]); to != NoSquare {
			knightAttacks[sq] |= SquareBB(to)
		}
	}

	kingAttacks[sq] = bb.North() | bb.South() | bb.East() | bb.West() |
		bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()

	pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
	pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()

	for dir, d := range rayDelta {
		for ff, rr := f+d[0], r+d[1]; ff >= 0 && ff <= 7 && rr >= 0 && rr <= 7; ff, rr = ff+d[0], rr+d[1] {
			rays[dir][sq] |= SquareBB(NewSquare(ff, rr))
		}
	}
}

// slidingAttacks casts a ray from sq in direction dir, stopping at (and
// including) the first occupied square.
func slidingAttacks(sq Square, dir int, occupied Bitboard) Bitboard {
	attacks := rays[dir][sq]
	blockers := attacks & occupied
	if blockers == 0 {
		return attacks
	}
	var first Square
	if dir < dirSouth {
		first = blockers.LSB()
	} else {
		first = blockers.MSB()
	}
	return attacks &^ rays[dir][first]
}

// KnightAttacks returns the knight attack bitboard for a square.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack bitboard for a square.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the diagonal capture squares of a c pawn on sq.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// BishopAttacks returns the bishop attack bitboard for a square with given occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	var attacks Bitboard
	for _, dir := range bishopDirs {
		attacks |= slidingAttacks(sq, dir, occupied)
	}
	return attacks
}

// RookAttacks returns the rook attack bitboard for a square with given occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	var attacks Bitboard
	for _, dir := range rookDirs {
		attacks |= slidingAttacks(sq, dir, occupied)
	}
	return attacks
}

// QueenAttacks returns the queen attack bitboard for a square with given occupancy.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}

// AttackersByColor returns the pieces of color c that attack sq given the
// occupancy occ.
func (p Position) AttackersByColor(sq Square, c Color, occ Bitboard) Bitboard {
	return (pawnAttacks[c.Other()][sq] & p.Pieces[c][Pawn]) |
		(knightAttacks[sq] & p.Pieces[c][Knight]) |
		(kingAttacks[sq] & p.Pieces[c][King]) |
		(BishopAttacks(sq, occ) & (p.Pieces[c][Bishop] | p.Pieces[c][Queen])) |
		(RookAttacks(sq, occ) & (p.Pieces[c][Rook] | p.Pieces[c][Queen]))
}

// IsSquareAttacked returns true if the square is attacked by the given color.
func (p Position) IsSquareAttacked(sq Square, by Color) bool {
	if !sq.IsValid() {
		return false
	}
	return p.AttackersByColor(sq, by, p.AllOccupied) != 0
}

// AttackMap returns every square that a piece of color by could move to or
// capture on, ignoring whether doing so would expose by's own king. Pawns
// contribute their diagonals only.
func (p Position) AttackMap(by Color) Bitboard {
	var attacked Bitboard
	occ := p.AllOccupied
	for pt := Pawn; pt <= King; pt++ {
		bb := p.Pieces[by][pt]
		for bb != 0 {
			from := bb.PopLSB()
			attacked |= pieceAttacks(pt, by, from, occ)
		}
	}
	return attacked
}

// pieceAttacks returns the squares a piece of kind pt attacks from sq.
func pieceAttacks(pt PieceType, c Color, sq Square, occ Bitboard) Bitboard {
	switch pt {
	case Pawn:
		return pawnAttacks[c][sq]
	case Knight:
		return knightAttacks[sq]
	case Bishop:
		return BishopAttacks(sq, occ)
	case Rook:
		return RookAttacks(sq, occ)
	case Queen:
		return QueenAttacks(sq, occ)
	case King:
		return kingAttacks[sq]
	}
	return Empty
}
