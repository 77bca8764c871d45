// Package pgn writes and reads games in Portable Game Notation.
package pgn

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

// maxLineLen is the column limit for move text.
const maxLineLen = 80

// PathUnwritableError is returned by Export when the file cannot be created
// or written.
type PathUnwritableError struct {
	Path string
	Err  error
}

func (e *PathUnwritableError) Error() string {
	return fmt.Sprintf("cannot write PGN to %s: %v", e.Path, e.Err)
}

func (e *PathUnwritableError) Unwrap() error {
	return e.Err
}

// Encode renders rec as a PGN document.
func Encode(rec game.Record, mode board.Notation) string {
	var sb strings.Builder
	for _, tag := range tags(rec) {
		fmt.Fprintf(&sb, "[%s \"%s\"]\n", tag[0], escape(tag[1]))
	}
	sb.WriteByte('\n')
	for _, line := range wrap(moveTokens(rec, mode), maxLineLen) {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Write writes the PGN of rec to w.
func Write(w io.Writer, rec game.Record, mode board.Notation) error {
	_, err := io.WriteString(w, Encode(rec, mode))
	return err
}

// Export writes the PGN of rec to the file at path, replacing it if it
// exists.
func Export(path string, rec game.Record, mode board.Notation) error {
	f, err := os.Create(path)
	if err != nil {
		return &PathUnwritableError{Path: path, Err: err}
	}
	if err := Write(f, rec, mode); err != nil {
		f.Close()
		return &PathUnwritableError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &PathUnwritableError{Path: path, Err: err}
	}
	return nil
}

// tags returns the tag pairs in export order: the seven-tag roster first.
func tags(rec game.Record) [][2]string {
	m := rec.Meta
	date := "????.??.??"
	if !m.Date.IsZero() {
		date = m.Date.Format(dateLayout)
	}
	out := [][2]string{
		{"Event", orUnknown(m.Event)},
		{"Site", orUnknown(m.Site)},
		{"Date", date},
		{"Round", orUnknown(m.Round)},
		{"White", orUnknown(m.White)},
		{"Black", orUnknown(m.Black)},
		{"Result", rec.Status.Result()},
	}
	if m.TimeControl != "" {
		out = append(out, [2]string{"TimeControl", m.TimeControl})
	}
	out = append(out, [2]string{"Termination", termination(rec.Status)})
	if !rec.StandardStart() {
		out = append(out,
			[2]string{"SetUp", "1"},
			[2]string{"FEN", rec.Start.FEN()})
	}
	return out
}

const dateLayout = "2006.01.02"

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Termination tag values.
const (
	terminationNormal       = "normal"
	terminationTimeForfeit  = "time forfeit"
	terminationUnterminated = "unterminated"
)

func termination(s game.Status) string {
	switch {
	case s.State == game.AwaitingMove:
		return terminationUnterminated
	case s.State == game.TimedOut, s.Reason == game.TimeoutVsInsufficientMaterial:
		return terminationTimeForfeit
	default:
		return terminationNormal
	}
}

// moveTokens lists move numbers, moves and the result as separate words.
func moveTokens(rec game.Record, mode board.Notation) []string {
	words := make([]string, 0, len(rec.Plies)*3/2+2)
	for i, p := range rec.Plies {
		n := strconv.Itoa(p.Before.FullMoveNumber)
		switch {
		case p.Before.SideToMove == board.White:
			words = append(words, n+".")
		case i == 0:
			words = append(words, n+"...")
		}
		san := p.SAN
		if mode == board.Long {
			san = board.EncodeMove(p.Before, p.After, p.Move, board.Long)
		}
		words = append(words, san)
	}
	return append(words, rec.Status.Result())
}

// wrap joins words into lines no longer than width where possible.
func wrap(words []string, width int) []string {
	var lines []string
	var line strings.Builder
	for _, w := range words {
		if line.Len() > 0 && line.Len()+1+len(w) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(w)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
