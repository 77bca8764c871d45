package board

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Notation selects the algebraic style used by EncodeMove.
type Notation uint8

const (
	Standard Notation = iota // SAN: Nf3, exd5, O-O, e8=Q+
	Long                     // Ng1-f3, e4xd5, O-O, e7-e8=Q+
)

// String returns the notation name.
func (n Notation) String() string {
	if n == Long {
		return "long"
	}
	return "standard"
}

// ParseNotation accepts "standard"/"san" and "long"/"lan".
func ParseNotation(s string) (Notation, error) {
	switch strings.ToLower(s) {
	case "standard", "san", "short":
		return Standard, nil
	case "long", "lan":
		return Long, nil
	}
	return Standard, fmt.Errorf("unknown notation %q", s)
}

// ErrAmbiguousOrIllegalToken is returned by DecodeMove when a token matches
// no legal move or more than one.
var ErrAmbiguousOrIllegalToken = errors.New("ambiguous or illegal move token")

// EncodeMove renders m, played from before and leading to after, in the
// requested notation. The check suffix is derived from after.
func EncodeMove(before, after Position, m Move, mode Notation) string {
	if m == NoMove {
		return "-"
	}

	var sb strings.Builder
	switch {
	case m.Kind == CastleKingside:
		sb.WriteString("O-O")
	case m.Kind == CastleQueenside:
		sb.WriteString("O-O-O")
	default:
		pt := before.PieceAt(m.From).Type()
		capture := m.IsCapture(before)

		if pt != Pawn {
			sb.WriteByte(pt.Letter())
		}

		if mode == Long {
			sb.WriteString(m.From.String())
			if capture {
				sb.WriteByte('x')
			} else {
				sb.WriteByte('-')
			}
		} else {
			if pt != Pawn {
				sb.WriteString(disambiguation(before, m, pt))
			}
			if capture {
				if pt == Pawn {
					sb.WriteByte(byte('a' + m.From.File()))
				}
				sb.WriteByte('x')
			}
		}

		sb.WriteString(m.To.String())

		if m.Kind == Promotion {
			sb.WriteByte('=')
			sb.WriteByte(m.Promo.Letter())
		}
	}

	if after.InCheck() {
		if after.HasLegalMoves() {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}
	return sb.String()
}

// EncodeAll renders each of the alternative moves from pos.
func EncodeAll(pos Position, moves []Move, mode Notation) []string {
	result := make([]string, len(moves))
	for i, m := range moves {
		result[i] = EncodeMove(pos, pos.Apply(m), m, mode)
	}
	return result
}

// disambiguation returns the shortest origin hint that tells m apart from
// other legal moves of the same piece kind onto the same square. The file
// is preferred, then the rank, then the full square.
func disambiguation(pos Position, m Move, pt PieceType) string {
	var sameFile, sameRank, ambiguous bool
	for _, other := range pos.LegalMoves() {
		if other.To != m.To || other.From == m.From {
			continue
		}
		if pos.PieceAt(other.From).Type() != pt {
			continue
		}
		ambiguous = true
		if other.From.File() == m.From.File() {
			sameFile = true
		}
		if other.From.Rank() == m.From.Rank() {
			sameRank = true
		}
	}

	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(rune('a' + m.From.File()))
	case !sameRank:
		return string(rune('1' + m.From.Rank()))
	default:
		return m.From.String()
	}
}

var (
	castleRE = regexp.MustCompile(`^(O-O-O|0-0-0|O-O|0-0)$`)
	coordRE  = regexp.MustCompile(`^([a-h][1-8])([a-h][1-8])([nbrqNBRQ]?)$`)
	longRE   = regexp.MustCompile(`^([NBRQK]?)([a-h][1-8])([-x])([a-h][1-8])(?:=?([NBRQ]))?$`)
	sanRE    = regexp.MustCompile(`^([NBRQK]?)([a-h]?)([1-8]?)(x?)([a-h][1-8])(?:=?([NBRQ]))?$`)
)

// DecodeMove resolves a move token against the legal moves of pos. It
// accepts standard and long algebraic notation, "0-0" castling and
// coordinate moves such as "e2e4" or "e7e8q". Trailing check marks and
// annotation glyphs are ignored.
func DecodeMove(pos Position, token string) (Move, error) {
	s := strings.TrimRight(strings.TrimSpace(token), "+#!?")
	legal := pos.LegalMoves()

	var match func(m Move) bool

	if g := castleRE.FindStringSubmatch(s); g != nil {
		kind := CastleKingside
		if len(g[1]) == 5 {
			kind = CastleQueenside
		}
		match = func(m Move) bool { return m.Kind == kind }
	} else if g := coordRE.FindStringSubmatch(s); g != nil {
		from, _ := ParseSquare(g[1])
		to, _ := ParseSquare(g[2])
		promo := promoFromLetter(strings.ToUpper(g[3]))
		match = func(m Move) bool {
			return m.From == from && m.To == to && m.Promo == promo
		}
	} else if g := longRE.FindStringSubmatch(s); g != nil {
		pt := pieceFromLetter(g[1])
		from, _ := ParseSquare(g[2])
		to, _ := ParseSquare(g[4])
		capture := g[3] == "x"
		promo := promoFromLetter(g[5])
		match = func(m Move) bool {
			return m.From == from && m.To == to && m.Promo == promo &&
				pos.PieceAt(m.From).Type() == pt && m.IsCapture(pos) == capture
		}
	} else if g := sanRE.FindStringSubmatch(s); g != nil {
		pt := pieceFromLetter(g[1])
		file, rank := -1, -1
		if g[2] != "" {
			file = int(g[2][0] - 'a')
		}
		if g[3] != "" {
			rank = int(g[3][0] - '1')
		}
		capture := g[4] == "x"
		to, _ := ParseSquare(g[5])
		promo := promoFromLetter(g[6])
		match = func(m Move) bool {
			if m.To != to || m.Promo != promo || pos.PieceAt(m.From).Type() != pt {
				return false
			}
			if file >= 0 && m.From.File() != file {
				return false
			}
			if rank >= 0 && m.From.Rank() != rank {
				return false
			}
			if capture && !m.IsCapture(pos) {
				return false
			}
			// Pawns must spell captures out; pieces may omit the x.
			return pt != Pawn || capture == m.IsCapture(pos)
		}
	} else {
		return NoMove, fmt.Errorf("%w: %q", ErrAmbiguousOrIllegalToken, token)
	}

	found := NoMove
	for _, m := range legal {
		if !match(m) {
			continue
		}
		if found != NoMove {
			return NoMove, fmt.Errorf("%w: %q", ErrAmbiguousOrIllegalToken, token)
		}
		found = m
	}
	if found == NoMove {
		return NoMove, fmt.Errorf("%w: %q", ErrAmbiguousOrIllegalToken, token)
	}
	return found, nil
}

// pieceFromLetter maps an optional SAN piece letter; no letter means a pawn.
func pieceFromLetter(s string) PieceType {
	if s == "" {
		return Pawn
	}
	return pieceTypeFromLetter(s[0])
}

// promoFromLetter maps an optional promotion letter to NoPieceType when absent.
func promoFromLetter(s string) PieceType {
	if s == "" {
		return NoPieceType
	}
	return pieceTypeFromLetter(s[0])
}
