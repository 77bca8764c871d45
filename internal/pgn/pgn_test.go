package pgn

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/notnil/chess"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

var fixedDate = time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedDate }

func newGame(t *testing.T, fen string, tokens ...string) *game.Game {
	t.Helper()
	var g *game.Game
	if fen == "" {
		g = game.New(game.WithClock(fixedClock))
	} else {
		var err error
		g, err = game.NewFromFEN(fen, game.WithClock(fixedClock))
		if err != nil {
			t.Fatalf("NewFromFEN: %v", err)
		}
	}
	for _, tok := range tokens {
		if err := g.Play(tok); err != nil {
			t.Fatalf("Play(%q): %v", tok, err)
		}
	}
	return g
}

// richGame covers en passant, a promotion capture with check and castling.
var richGame = []string{
	"e4", "Nf6", "e5", "d5", "exd6", "Nc6", "dxc7", "Bd7",
	"cxd8=Q+", "Kxd8", "Nf3", "e5", "Be2", "Bd6", "O-O", "Ke7",
}

func TestEncodeFoolsMate(t *testing.T) {
	g := newGame(t, "", "f3", "e5", "g4", "Qh4")
	if err := g.SetMetadata(game.Metadata{White: "Alice", Black: "Bob"}); err != nil {
		t.Fatal(err)
	}

	want := `[Event "?"]
[Site "?"]
[Date "2024.03.05"]
[Round "?"]
[White "Alice"]
[Black "Bob"]
[Result "0-1"]
[Termination "normal"]

1. f3 e5 2. g4 Qh4# 0-1
`
	if got := Encode(g.Record(), board.Standard); got != want {
		t.Errorf("Encode =\n%s\nwant\n%s", got, want)
	}

	long := Encode(g.Record(), board.Long)
	if !strings.HasSuffix(long, "\n1. f2-f3 e7-e5 2. g2-g4 Qd8-h4# 0-1\n") {
		t.Errorf("long move text wrong:\n%s", long)
	}
}

func TestEncodeTags(t *testing.T) {
	g := newGame(t, "4k3/8/8/8/8/8/4P3/4K3 b - - 0 12", "Kd7", "e4")
	err := g.SetMetadata(game.Metadata{
		Event:       `Club "Open"`,
		Round:       "3",
		TimeControl: "300+2",
	})
	if err != nil {
		t.Fatal(err)
	}
	got := Encode(g.Record(), board.Standard)

	for _, want := range []string{
		`[Event "Club \"Open\""]`,
		`[Round "3"]`,
		`[Result "*"]`,
		`[TimeControl "300+2"]`,
		`[Termination "unterminated"]`,
		`[SetUp "1"]`,
		`[FEN "4k3/8/8/8/8/8/4P3/4K3 b - - 0 12"]`,
		"\n12... Kd7 13. e4 *\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in\n%s", want, got)
		}
	}
	if strings.Index(got, "[Result") > strings.Index(got, "[TimeControl") {
		t.Error("Result must precede TimeControl")
	}
}

func TestTermination(t *testing.T) {
	timeout := newGame(t, "")
	if err := timeout.ReportTimeout(board.White); err != nil {
		t.Fatal(err)
	}
	if got := Encode(timeout.Record(), board.Standard); !strings.Contains(got, `[Termination "time forfeit"]`) {
		t.Errorf("timeout termination missing:\n%s", got)
	}

	resigned := newGame(t, "", "e4")
	if err := resigned.Resign(board.Black); err != nil {
		t.Fatal(err)
	}
	got := Encode(resigned.Record(), board.Standard)
	if !strings.Contains(got, `[Termination "normal"]`) || !strings.HasSuffix(got, "1. e4 1-0\n") {
		t.Errorf("resigned game:\n%s", got)
	}
}

func TestMoveTextWrapsAt80(t *testing.T) {
	shuffle := []string{"Nf3", "Nf6", "Ng1", "Ng8"}
	var tokens []string
	for i := 0; i < 4; i++ {
		tokens = append(tokens, shuffle...)
	}
	g := newGame(t, "", tokens...)
	if st := g.Status(); st.Reason != game.FivefoldRepetition {
		t.Fatalf("status = %v", st)
	}

	for _, mode := range []board.Notation{board.Standard, board.Long} {
		text := Encode(g.Record(), mode)
		movetext := text[strings.Index(text, "\n\n")+2:]
		lines := strings.Split(strings.TrimSuffix(movetext, "\n"), "\n")
		if len(lines) < 2 {
			t.Errorf("%v: expected wrapped move text, got %q", mode, movetext)
		}
		for _, line := range lines {
			if len(line) > maxLineLen {
				t.Errorf("%v: line of %d columns: %q", mode, len(line), line)
			}
		}

		back, err := Decode(strings.NewReader(text))
		if err != nil {
			t.Fatalf("%v: Decode: %v", mode, err)
		}
		if back.Status() != g.Status() {
			t.Errorf("%v: decoded status %v, want %v", mode, back.Status(), g.Status())
		}
	}
}

func TestRoundTrip(t *testing.T) {
	g := newGame(t, "", richGame...)
	if err := g.SetMetadata(game.Metadata{
		Event: "Casual", Site: "Home", Round: "1", White: "Ann", Black: "Ben", TimeControl: "600",
	}); err != nil {
		t.Fatal(err)
	}
	if err := g.Resign(board.Black); err != nil {
		t.Fatal(err)
	}

	for _, mode := range []board.Notation{board.Standard, board.Long} {
		t.Run(mode.String(), func(t *testing.T) {
			text := Encode(g.Record(), mode)
			back, err := Decode(strings.NewReader(text))
			if err != nil {
				t.Fatalf("Decode: %v\n%s", err, text)
			}
			want, got := g.Moves(), back.Moves()
			if len(got) != len(want) {
				t.Fatalf("decoded %d moves, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("move %d = %v, want %v", i, got[i], want[i])
				}
			}
			if back.Status() != g.Status() {
				t.Errorf("status = %v, want %v", back.Status(), g.Status())
			}
			wm, gm := g.Metadata(), back.Metadata()
			if !gm.Date.Equal(wm.Date) {
				t.Errorf("date = %v, want %v", gm.Date, wm.Date)
			}
			wm.Date, gm.Date = time.Time{}, time.Time{}
			if gm != wm {
				t.Errorf("metadata = %+v, want %+v", gm, wm)
			}
		})
	}
}

func TestExportAcceptedByNotnil(t *testing.T) {
	g := newGame(t, "", richGame...)
	if err := g.Resign(board.Black); err != nil {
		t.Fatal(err)
	}
	text := Encode(g.Record(), board.Standard)

	opt, err := chess.PGN(strings.NewReader(text))
	if err != nil {
		t.Fatalf("notnil rejected our PGN: %v\n%s", err, text)
	}
	oracle := chess.NewGame(opt)
	if got := len(oracle.Moves()); got != len(richGame) {
		t.Errorf("notnil replayed %d moves, want %d", got, len(richGame))
	}
	ours := strings.Fields(g.Position().FEN())[0]
	theirs := strings.Fields(oracle.FEN())[0]
	if ours != theirs {
		t.Errorf("final placement differs:\nours   %s\nnotnil %s", ours, theirs)
	}
}

func TestDecodeResults(t *testing.T) {
	tests := []struct {
		name   string
		pgn    string
		state  game.State
		winner board.Color
		reason game.DrawReason
	}{
		{
			name:   "resignation",
			pgn:    "1. e4 e5 1-0",
			state:  game.Resigned,
			winner: board.White,
		},
		{
			name:   "time forfeit",
			pgn:    "[Termination \"time forfeit\"]\n\n1. e4 e5 0-1",
			state:  game.TimedOut,
			winner: board.Black,
		},
		{
			name:   "draw claim",
			pgn:    "1. Nf3 Nf6 2. Ng1 Ng8 3. Nf3 Nf6 4. Ng1 Ng8 1/2-1/2",
			state:  game.Drawn,
			winner: board.NoColor,
			reason: game.ThreefoldRepetition,
		},
		{
			name:   "agreed draw",
			pgn:    "1. e4 e5 1/2-1/2",
			state:  game.Drawn,
			winner: board.NoColor,
			reason: game.Mutual,
		},
		{
			name:   "timeout against knight",
			pgn:    "[SetUp \"1\"]\n[FEN \"8/8/4kn2/8/8/4KQ2/8/8 w - - 0 1\"]\n[Termination \"time forfeit\"]\n\n1/2-1/2",
			state:  game.Drawn,
			winner: board.NoColor,
			reason: game.TimeoutVsInsufficientMaterial,
		},
		{
			name:   "unfinished",
			pgn:    "1. d4 *",
			state:  game.AwaitingMove,
			winner: board.NoColor,
		},
		{
			name:   "mate by rule",
			pgn:    "1. f3 e5 2. g4 Qh4# 0-1",
			state:  game.Checkmate,
			winner: board.Black,
		},
		{
			name:   "result from tag",
			pgn:    "[Result \"0-1\"]\n\n1. e4",
			state:  game.Resigned,
			winner: board.Black,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, err := Decode(strings.NewReader(tc.pgn))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			st := g.Status()
			if st.State != tc.state || st.Winner != tc.winner || st.Reason != tc.reason {
				t.Errorf("status = %+v, want %v/%v/%v", st, tc.state, tc.winner, tc.reason)
			}
		})
	}
}

func TestDecodeSkipsAnnotations(t *testing.T) {
	text := `[Event "Annotated"]
[Date "2024.??.??"]
[White "A"]

1. e4 {best by test} e5 $1 2. Nf3 (2. f4 exf4 {gambit} (2... d5)) 2... Nc6 ; main line
3. Bb5 a6 *
`
	g, err := Decode(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var got []string
	for _, p := range g.Record().Plies {
		got = append(got, p.SAN)
	}
	if want := "e4 e5 Nf3 Nc6 Bb5 a6"; strings.Join(got, " ") != want {
		t.Errorf("moves = %q, want %q", strings.Join(got, " "), want)
	}
	if m := g.Metadata(); m.Event != "Annotated" || m.White != "A" || m.Black != "" {
		t.Errorf("metadata = %+v", m)
	}
}

func TestDecodeErrors(t *testing.T) {
	bad := []string{
		"1. e4 e5 2. Ke3 *",
		"1. e4 {never closed",
		"1. e4 (1. d4 *",
		"1. e4 ) *",
		"[Event Club]\n\n1. e4 *",
		"[FEN \"not a fen\"]\n\n*",
		"1. f3 e5 2. g4 Qh4# 1-0",
		"[White \"" + strings.Repeat("x", game.MaxPlayerLen+1) + "\"]\n\n*",
		"[Date \"2024.13.45\"]\n\n1. e4 *",
	}
	for _, text := range bad {
		if _, err := Decode(strings.NewReader(text)); !errors.Is(err, ErrMalformed) {
			t.Errorf("Decode(%q) err = %v, want ErrMalformed", text, err)
		}
	}
}

func TestExport(t *testing.T) {
	g := newGame(t, "", "e4", "e5")
	dir := t.TempDir()

	path := filepath.Join(dir, "game.pgn")
	if err := Export(path, g.Record(), board.Standard); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != Encode(g.Record(), board.Standard) {
		t.Errorf("file content differs from Encode output")
	}

	missing := filepath.Join(dir, "no", "such", "dir", "game.pgn")
	err = Export(missing, g.Record(), board.Standard)
	var pe *PathUnwritableError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want PathUnwritableError", err)
	}
	if pe.Path != missing {
		t.Errorf("Path = %q, want %q", pe.Path, missing)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want it to wrap os.ErrNotExist", err)
	}
}
