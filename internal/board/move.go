package board

import "fmt"

// MoveKind classifies a move. Every move has exactly one kind.
type MoveKind uint8

const (
	Normal MoveKind = iota
	DoublePawnPush
	EnPassantCapture
	CastleKingside
	CastleQueenside
	Promotion // includes promotion captures
)

// String returns the kind name.
func (k MoveKind) String() string {
	switch k {
	case Normal:
		return "Normal"
	case DoublePawnPush:
		return "DoublePawnPush"
	case EnPassantCapture:
		return "EnPassantCapture"
	case CastleKingside:
		return "CastleKingside"
	case CastleQueenside:
		return "CastleQueenside"
	case Promotion:
		return "Promotion"
	default:
		return fmt.Sprintf("MoveKind(%d)", uint8(k))
	}
}

// Move is a chess move. Promo is NoPieceType unless Kind is Promotion.
// Moves are comparable with ==.
type Move struct {
	From  Square
	To    Square
	Kind  MoveKind
	Promo PieceType
}

// NoMove represents an invalid or null move.
var NoMove = Move{From: NoSquare, To: NoSquare, Promo: NoPieceType}

// NewMove creates a move of the given kind.
func NewMove(from, to Square, kind MoveKind) Move {
	return Move{From: from, To: to, Kind: kind, Promo: NoPieceType}
}

// NewPromotion creates a promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move{From: from, To: to, Kind: Promotion, Promo: promo}
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	return m.Kind == CastleKingside || m.Kind == CastleQueenside
}

// IsCapture returns true if m removes a piece from pos.
func (m Move) IsCapture(pos Position) bool {
	return pos.CapturedBy(m) != NoPiece
}

// String returns the coordinate form of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.Kind == Promotion {
		s += string(m.Promo.Letter() + ('a' - 'A'))
	}
	return s
}

// ParseCoordinate parses a coordinate move ("e2e4", "e7e8q") and classifies it
// against pos. The result is not checked for legality.
func ParseCoordinate(s string, pos Position) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("invalid move string: %q", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	if len(s) == 5 {
		promo := pieceTypeFromLetter(s[4] - ('a' - 'A'))
		switch promo {
		case Knight, Bishop, Rook, Queen:
			return NewPromotion(from, to, promo), nil
		}
		return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	return NewMove(from, to, classify(pos, piece.Type(), from, to)), nil
}

// classify derives the kind of a non-promotion move from the board.
func classify(pos Position, pt PieceType, from, to Square) MoveKind {
	switch {
	case pt == King && int(to)-int(from) == 2:
		return CastleKingside
	case pt == King && int(from)-int(to) == 2:
		return CastleQueenside
	case pt == Pawn && to == pos.EnPassant:
		return EnPassantCapture
	case pt == Pawn && abs(int(to)-int(from)) == 16:
		return DoublePawnPush
	}
	return Normal
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
