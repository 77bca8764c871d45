package board

import (
	"errors"
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castleRight(c, kingSide) != 0
}

func castleRight(c Color, kingSide bool) CastlingRights {
	switch {
	case c == White && kingSide:
		return WhiteKingSideCastle
	case c == White:
		return WhiteQueenSideCastle
	case kingSide:
		return BlackKingSideCastle
	default:
		return BlackQueenSideCastle
	}
}

// Position is a complete chess position. It is a value: Apply returns a new
// Position and never modifies the receiver, so earlier positions stay valid
// for repetition checks and history.
type Position struct {
	// Piece bitboards: [Color][PieceType]
	Pieces [2][6]Bitboard

	// Occupancy bitboards, derived from Pieces.
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // Square skipped by the last double push, NoSquare if none
	HalfMoveClock  int    // Plies since last pawn move or capture
	FullMoveNumber int    // Starts at 1, incremented after Black moves
}

// NewPosition returns the standard initial position.
func NewPosition() Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// emptyPosition returns a position with no pieces and White to move.
func emptyPosition() Position {
	return Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	if p.AllOccupied&bb == 0 {
		return NoPiece
	}

	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	}
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return NewPiece(pt, c)
		}
	}
	return NoPiece
}

// IsEmpty returns true if the square is empty.
func (p Position) IsEmpty(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

// KingSquare returns the square of c's king, or NoSquare if it has none.
func (p Position) KingSquare(c Color) Square {
	return p.Pieces[c][King].LSB()
}

// setPiece places a piece on an empty square.
func (p *Position) setPiece(piece Piece, sq Square) {
	if piece == NoPiece {
		return
	}
	c, pt, bb := piece.Color(), piece.Type(), SquareBB(sq)
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
}

// removePiece clears a square and returns what stood there.
func (p *Position) removePiece(sq Square) Piece {
	piece := p.PieceAt(sq)
	if piece == NoPiece {
		return NoPiece
	}
	c, pt, bb := piece.Color(), piece.Type(), SquareBB(sq)
	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	return piece
}

// Apply returns the position that results from playing m. It performs the
// raw placement only: the move is assumed to be at least pseudo-legal.
// Castling rights, en passant target and both counters are updated.
func (p Position) Apply(m Move) Position {
	next := p
	us := p.SideToMove
	them := us.Other()

	moving := next.removePiece(m.From)
	if moving == NoPiece {
		return next
	}

	var captured Piece
	if m.Kind == EnPassantCapture {
		captured = next.removePiece(enPassantVictim(m.To, us))
	} else {
		captured = next.removePiece(m.To)
	}

	placed := moving
	if m.Kind == Promotion {
		placed = NewPiece(m.Promo, us)
	}
	next.setPiece(placed, m.To)

	switch m.Kind {
	case CastleKingside, CastleQueenside:
		rookFrom, rookTo := castleRookSquares(us, m.Kind == CastleKingside)
		next.setPiece(next.removePiece(rookFrom), rookTo)
	}

	if moving.Type() == King {
		next.CastlingRights &^= castleRight(us, true) | castleRight(us, false)
	}
	next.CastlingRights &^= cornerRights(m.From) | cornerRights(m.To)

	next.EnPassant = NoSquare
	if m.Kind == DoublePawnPush {
		next.EnPassant = Square((int(m.From) + int(m.To)) / 2)
	}

	if moving.Type() == Pawn || captured != NoPiece {
		next.HalfMoveClock = 0
	} else {
		next.HalfMoveClock++
	}
	if us == Black {
		next.FullMoveNumber++
	}
	next.SideToMove = them
	return next
}

// CapturedBy returns the piece m removes from p, or NoPiece.
func (p Position) CapturedBy(m Move) Piece {
	if m.Kind == EnPassantCapture {
		return p.PieceAt(enPassantVictim(m.To, p.SideToMove))
	}
	return p.PieceAt(m.To)
}

// enPassantVictim returns the square of the pawn taken by an en passant
// capture landing on target.
func enPassantVictim(target Square, us Color) Square {
	if us == White {
		return target - 8
	}
	return target + 8
}

// castleRookSquares returns the rook's origin and destination for castling.
func castleRookSquares(c Color, kingSide bool) (from, to Square) {
	rank := 0
	if c == Black {
		rank = 7
	}
	if kingSide {
		return NewSquare(7, rank), NewSquare(5, rank)
	}
	return NewSquare(0, rank), NewSquare(3, rank)
}

// cornerRights returns the castling right tied to a rook home square.
func cornerRights(sq Square) CastlingRights {
	switch sq {
	case A1:
		return WhiteQueenSideCastle
	case H1:
		return WhiteKingSideCastle
	case A8:
		return BlackQueenSideCastle
	case H8:
		return BlackKingSideCastle
	}
	return NoCastling
}

// Material returns the point total of c's pieces (Pawn=1 ... Queen=9).
func (p Position) Material(c Color) int {
	total := 0
	for pt := Pawn; pt < King; pt++ {
		total += p.Pieces[c][pt].PopCount() * pt.Points()
	}
	return total
}

// String returns an ASCII diagram of the position.
func (p Position) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.CastlingRights)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.HalfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.FullMoveNumber)
	return sb.String()
}

// Validate checks that the position could arise in a game.
func (p Position) Validate() error {
	if p.Pieces[White][King].PopCount() != 1 {
		return errors.New("white must have exactly one king")
	}
	if p.Pieces[Black][King].PopCount() != 1 {
		return errors.New("black must have exactly one king")
	}
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return errors.New("pawns cannot be on rank 1 or 8")
	}
	them := p.SideToMove.Other()
	if ep := p.EnPassant; ep != NoSquare {
		if ep.RelativeRank(p.SideToMove) != 5 {
			return fmt.Errorf("en passant square %s with %s to move", ep, p.SideToMove)
		}
		dir := -1
		if p.SideToMove == Black {
			dir = 1
		}
		pushed := NewSquare(ep.File(), ep.Rank()+dir)
		origin := NewSquare(ep.File(), ep.Rank()-dir)
		if p.PieceAt(pushed) != NewPiece(Pawn, them) || !p.IsEmpty(ep) || !p.IsEmpty(origin) {
			return fmt.Errorf("en passant square %s without a double pawn push", ep)
		}
	}
	if p.IsSquareAttacked(p.KingSquare(them), p.SideToMove) {
		return fmt.Errorf("%s king is in check with %s to move", them, p.SideToMove)
	}
	return nil
}
