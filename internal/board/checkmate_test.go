package board

import (
	"errors"
	"testing"
)

func mustFEN(t *testing.T, fen string) Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func TestCheckmate(t *testing.T) {
	// Back rank mate: Ra8 checks, g7 and h7 block the escape.
	pos := mustFEN(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1")

	if !pos.InCheck() {
		t.Error("expected black to be in check")
	}
	if n := len(pos.LegalMoves()); n != 0 {
		t.Errorf("black has %d legal moves, want 0", n)
	}
	if !pos.IsCheckmate() {
		t.Error("Expected checkmate but got false")
	}
	if pos.IsStalemate() {
		t.Error("checkmate reported as stalemate")
	}
}

func TestNotCheckmate(t *testing.T) {
	// Black king on h8 can capture the unprotected rook on g8 or step to h7.
	pos := mustFEN(t, "6Rk/8/8/8/8/8/8/K7 b - - 0 1")

	if !pos.InCheck() {
		t.Error("expected black to be in check")
	}
	if pos.IsCheckmate() {
		t.Error("Expected NOT checkmate but got true")
	}
	moves := pos.LegalMoves()
	if len(moves) != 2 {
		t.Errorf("legal moves = %v, want h8g8 and h8h7", moves)
	}
}

func TestStalemate(t *testing.T) {
	pos := mustFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if pos.InCheck() {
		t.Error("stalemated king should not be in check")
	}
	if !pos.IsStalemate() {
		t.Error("expected stalemate")
	}
	if pos.HasLegalMoves() {
		t.Error("expected no legal moves")
	}
}

func TestStartPositionMoveCounts(t *testing.T) {
	pos := NewPosition()
	if n := len(pos.PseudoLegalMoves()); n != 20 {
		t.Errorf("pseudo-legal moves = %d, want 20", n)
	}
	if n := len(pos.LegalMoves()); n != 20 {
		t.Errorf("legal moves = %d, want 20", n)
	}
}

func TestLegalMovesFromIsIdempotent(t *testing.T) {
	pos := mustFEN(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")

	for _, sq := range []Square{E1, E5, F3, D5, A1, E8, A4} {
		first := pos.LegalMovesFrom(sq)
		second := pos.LegalMovesFrom(sq)
		if len(first) != len(second) {
			t.Fatalf("LegalMovesFrom(%s) returned %d then %d moves", sq, len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("LegalMovesFrom(%s)[%d]: %v then %v", sq, i, first[i], second[i])
			}
		}
	}

	if n := len(pos.LegalMovesFrom(E8)); n != 0 {
		t.Errorf("LegalMovesFrom(e8) for the side not to move = %d moves, want 0", n)
	}
	if n := len(pos.LegalMovesFrom(E4)); n != 0 {
		t.Errorf("LegalMovesFrom(empty e4) = %d moves, want 0", n)
	}
	if n := len(pos.LegalMovesFrom(E1)); n != 4 {
		t.Errorf("LegalMovesFrom(e1) = %d moves, want 4 (d1, f1, O-O, O-O-O)", n)
	}
}

func TestCastlingRules(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		kingSide  bool
		queenSide bool
	}{
		{"both free", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", true, true},
		{"in check", "r3k2r/8/8/8/8/8/4r3/R3K2R w KQkq - 0 1", false, false},
		{"f1 attacked", "r3k2r/8/8/8/8/8/5r2/R3K2R w KQkq - 0 1", false, true},
		{"d1 attacked", "r3k2r/8/8/8/8/8/3r4/R3K2R w KQkq - 0 1", true, false},
		{"b1 attacked only", "r3k2r/8/8/8/8/8/1r6/R3K2R w KQkq - 0 1", true, true},
		{"b1 occupied", "r3k2r/8/8/8/8/8/8/RN2K2R w KQkq - 0 1", true, false},
		{"no rights", "r3k2r/8/8/8/8/8/8/R3K2R w kq - 0 1", false, false},
		{"rook missing", "r3k2r/8/8/8/8/8/8/4K2R w KQkq - 0 1", true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustFEN(t, tc.fen)
			var kingSide, queenSide bool
			for _, m := range pos.LegalMoves() {
				switch m.Kind {
				case CastleKingside:
					kingSide = true
				case CastleQueenside:
					queenSide = true
				}
			}
			if kingSide != tc.kingSide || queenSide != tc.queenSide {
				t.Errorf("O-O=%v O-O-O=%v, want %v %v", kingSide, queenSide, tc.kingSide, tc.queenSide)
			}
		})
	}
}

func TestApplyCastlingAndRights(t *testing.T) {
	pos := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 3 10")

	next := pos.Apply(NewMove(E1, G1, CastleKingside))
	if next.PieceAt(G1) != WhiteKing || next.PieceAt(F1) != WhiteRook || !next.IsEmpty(H1) {
		t.Errorf("castling placed pieces wrongly:%v", next)
	}
	if next.CastlingRights != BlackKingSideCastle|BlackQueenSideCastle {
		t.Errorf("castling rights = %s, want kq", next.CastlingRights)
	}
	if next.HalfMoveClock != 4 || next.FullMoveNumber != 10 || next.SideToMove != Black {
		t.Errorf("counters = %d/%d side %s", next.HalfMoveClock, next.FullMoveNumber, next.SideToMove)
	}

	// Capturing the a8 rook removes Black's queenside right.
	after := pos.Apply(NewMove(A1, A8, Normal))
	if after.CastlingRights != WhiteKingSideCastle|BlackKingSideCastle {
		t.Errorf("castling rights = %s, want Kk", after.CastlingRights)
	}
	if after.HalfMoveClock != 0 {
		t.Errorf("capture should reset half-move clock, got %d", after.HalfMoveClock)
	}

	// The receiver is untouched.
	if pos.FEN() != "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 3 10" {
		t.Errorf("Apply modified its receiver: %s", pos.FEN())
	}
}

func TestEnPassantApply(t *testing.T) {
	pos := mustFEN(t, "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3")

	var ep Move
	for _, m := range pos.LegalMoves() {
		if m.Kind == EnPassantCapture {
			ep = m
		}
	}
	if ep != NewMove(E5, F6, EnPassantCapture) {
		t.Fatalf("en passant move = %v, want e5f6", ep)
	}

	next := pos.Apply(ep)
	if !next.IsEmpty(F5) || next.PieceAt(F6) != WhitePawn {
		t.Errorf("en passant did not remove the f5 pawn:%v", next)
	}
	if next.EnPassant != NoSquare {
		t.Errorf("en passant target should clear, got %s", next.EnPassant)
	}

	push := NewPosition().Apply(NewMove(E2, E4, DoublePawnPush))
	if push.EnPassant != E3 {
		t.Errorf("double push target = %s, want e3", push.EnPassant)
	}
}

func TestPromotionGeneratesFourPieces(t *testing.T) {
	pos := mustFEN(t, "3r3k/4P3/8/8/8/8/8/K7 w - - 0 1")
	promos := map[PieceType]int{}
	for _, m := range pos.LegalMoves() {
		if m.Kind == Promotion {
			promos[m.Promo]++
		}
	}
	for _, pt := range []PieceType{Queen, Rook, Bishop, Knight} {
		if promos[pt] != 2 {
			t.Errorf("%s promotions = %d, want 2 (push and capture)", pt, promos[pt])
		}
	}

	next := pos.Apply(NewPromotion(E7, D8, Knight))
	if next.PieceAt(D8) != WhiteKnight {
		t.Errorf("d8 = %s, want N", next.PieceAt(D8))
	}
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want bool
	}{
		{"K v K", "8/8/4k3/8/8/4K3/8/8 w - - 0 1", true},
		{"K+B v K", "8/8/4k3/8/8/4KB2/8/8 w - - 0 1", true},
		{"K+N v K", "8/8/4kn2/8/8/4K3/8/8 w - - 0 1", true},
		{"K+B v K+B same colour", "8/8/4k3/5b2/8/4KB2/8/8 w - - 0 1", true},
		{"K+B v K+B opposite colour", "8/8/4kb2/8/8/4KB2/8/8 w - - 0 1", false},
		{"K+N v K+N", "8/8/4kn2/8/8/4KN2/8/8 w - - 0 1", false},
		{"K+B+N v K", "8/8/4k3/8/8/4KBN1/8/8 w - - 0 1", false},
		{"K+N+N v K", "8/8/4k3/8/8/4KNN1/8/8 w - - 0 1", false},
		{"K+P v K", "8/8/4k3/8/8/4KP2/8/8 w - - 0 1", false},
		{"K+R v K", "8/8/4k3/8/8/4KR2/8/8 w - - 0 1", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := mustFEN(t, tc.fen).InsufficientMaterial(); got != tc.want {
				t.Errorf("InsufficientMaterial() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBareKing(t *testing.T) {
	pos := mustFEN(t, "8/8/4kn2/8/8/4K3/8/8 w - - 0 1")
	if !pos.BareKing(White) {
		t.Error("white should have a bare king")
	}
	if pos.BareKing(Black) {
		t.Error("black still has a knight")
	}
}

func TestCannotMate(t *testing.T) {
	tests := []struct {
		fen   string
		color Color
		want  bool
	}{
		{"8/8/4kn2/8/8/4K3/8/8 w - - 0 1", Black, true},
		{"8/8/4kn2/8/8/4KQ2/8/8 w - - 0 1", Black, true},
		{"8/8/4kn2/8/8/4KQ2/8/8 w - - 0 1", White, false},
		{"8/8/3nkn2/8/8/4K3/8/8 w - - 0 1", Black, false},
		{"8/8/4k3/8/8/4K3/8/8 w - - 0 1", White, true},
		{"8/4p3/4k3/8/8/4K3/8/8 w - - 0 1", Black, false},
	}
	for _, tc := range tests {
		if got := mustFEN(t, tc.fen).CannotMate(tc.color); got != tc.want {
			t.Errorf("CannotMate(%q, %s) = %v, want %v", tc.fen, tc.color, got, tc.want)
		}
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
	}
	for _, fen := range fens {
		if got := mustFEN(t, fen).FEN(); got != fen {
			t.Errorf("FEN round trip: got %q, want %q", got, fen)
		}
	}
}

func TestParseFENErrors(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQxq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e4 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - a 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNŐ w KQkq - 0 1",
	}
	for _, fen := range bad {
		if _, err := ParseFEN(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Errorf("ParseFEN(%q) err = %v, want ErrInvalidFEN", fen, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		fen string
		ok  bool
	}{
		{StartFEN, true},
		{"8/8/8/8/8/8/8/4K3 w - - 0 1", false},
		{"4k3/8/8/8/8/8/8/4KK2 w - - 0 1", false},
		{"P3k3/8/8/8/8/8/8/4K3 w - - 0 1", false},
		{"4k3/8/8/8/8/8/8/4R1K1 w - - 0 1", false},
		{"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", true},
		{"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3", true},
		{"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e3 0 1", false},
		{"4k3/8/8/8/8/8/8/4K3 w - e6 0 1", false},
		{"4k3/8/4p3/4p3/8/8/8/4K3 w - e6 0 1", false},
		{"4k3/4p3/8/4p3/8/8/8/4K3 w - e6 0 1", false},
	}
	for _, tc := range tests {
		err := mustFEN(t, tc.fen).Validate()
		if (err == nil) != tc.ok {
			t.Errorf("Validate(%q) = %v, want ok=%v", tc.fen, err, tc.ok)
		}
	}
}

func TestFingerprint(t *testing.T) {
	start := NewPosition()

	// Knights out and back: same placement, counters differ.
	pos := start
	for _, m := range []Move{
		NewMove(G1, F3, Normal), NewMove(G8, F6, Normal),
		NewMove(F3, G1, Normal), NewMove(F6, G8, Normal),
	} {
		pos = pos.Apply(m)
	}
	if pos.Fingerprint() != start.Fingerprint() {
		t.Error("fingerprint should ignore the move counters")
	}
	if pos == start {
		t.Error("positions with different counters should not be ==")
	}

	withEP := mustFEN(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	withoutEP := mustFEN(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	if withEP.Fingerprint() == withoutEP.Fingerprint() {
		t.Error("fingerprint should include the en passant target")
	}

	noCastle := mustFEN(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w Kkq - 0 1")
	if noCastle.Fingerprint() == start.Fingerprint() {
		t.Error("fingerprint should include castling rights")
	}
}

func TestMaterial(t *testing.T) {
	pos := NewPosition()
	if got := pos.Material(White); got != 39 {
		t.Errorf("Material(White) = %d, want 39", got)
	}
	pos = mustFEN(t, "4k3/8/8/8/8/8/8/QR2K3 w - - 0 1")
	if got := pos.Material(White); got != 14 {
		t.Errorf("Material(White) = %d, want 14", got)
	}
	if got := pos.Material(Black); got != 0 {
		t.Errorf("Material(Black) = %d, want 0", got)
	}
}
