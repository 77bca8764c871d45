package pgn

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

// ErrMalformed is wrapped by every Decode error.
var ErrMalformed = errors.New("malformed PGN")

var (
	tagRE        = regexp.MustCompile(`^\[([A-Za-z0-9_]+)\s+"((?:[^"\\]|\\.)*)"\]$`)
	moveNumberRE = regexp.MustCompile(`^[0-9]+(\.+|$)`)
)

// Decode reads a single PGN game and replays it. Comments, NAGs and
// variations are skipped. The result token ends the game the way the
// exporter would have: resignation or time forfeit for a decisive result,
// a claim or agreement for a draw.
func Decode(r io.Reader, opts ...game.Option) (*game.Game, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	tagPairs, movetext, err := splitTags(string(data))
	if err != nil {
		return nil, err
	}

	var g *game.Game
	if fen, ok := tagPairs["FEN"]; ok {
		g, err = game.NewFromFEN(fen, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	} else {
		g = game.New(opts...)
	}

	meta := g.Metadata()
	for _, key := range []string{"Event", "Site", "Date", "Round", "White", "Black", "TimeControl"} {
		// Partial dates such as "2024.??.??" are treated as unknown.
		v, ok := tagPairs[key]
		if !ok || v == "?" || (key == "Date" && strings.Contains(v, "?")) {
			continue
		}
		if err := meta.Set(key, v); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}
	if err := g.SetMetadata(meta); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	tokens, err := tokenize(movetext)
	if err != nil {
		return nil, err
	}
	result := tagPairs["Result"]
	for _, tok := range tokens {
		if isResult(tok) {
			result = tok
			break
		}
		if err := g.Play(tok); err != nil {
			return nil, fmt.Errorf("%w: ply %d: %w", ErrMalformed, len(g.Moves())+1, err)
		}
	}

	if err := applyResult(g, result, tagPairs["Termination"]); err != nil {
		return nil, err
	}
	return g, nil
}

func splitTags(doc string) (map[string]string, string, error) {
	tagPairs := make(map[string]string)
	lines := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")
	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "[") {
			break
		}
		m := tagRE.FindStringSubmatch(line)
		if m == nil {
			return nil, "", fmt.Errorf("%w: bad tag pair %q", ErrMalformed, line)
		}
		tagPairs[m[1]] = unescape(m[2])
	}
	return tagPairs, strings.Join(lines[i:], "\n"), nil
}

func unescape(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.ReplaceAll(s, `\\`, `\`)
}

// tokenize splits move text into move tokens and the result, dropping
// move numbers, comments, NAGs and variations.
func tokenize(text string) ([]string, error) {
	var tokens []string
	depth := 0
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '{':
			end := strings.IndexByte(text[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated comment", ErrMalformed)
			}
			i += end + 1
		case c == ';':
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text) - i
			}
			i += end
		case c == '(':
			depth++
			i++
		case c == ')':
			if depth == 0 {
				return nil, fmt.Errorf("%w: unbalanced ')'", ErrMalformed)
			}
			depth--
			i++
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		default:
			j := i
			for j < len(text) && !strings.ContainsRune(" \t\n\r{};()", rune(text[j])) {
				j++
			}
			word := text[i:j]
			i = j
			if depth > 0 || strings.HasPrefix(word, "$") {
				continue
			}
			if isResult(word) {
				tokens = append(tokens, word)
				continue
			}
			word = moveNumberRE.ReplaceAllString(word, "")
			if word != "" {
				tokens = append(tokens, word)
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unterminated variation", ErrMalformed)
	}
	return tokens, nil
}

func isResult(tok string) bool {
	switch tok {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	}
	return false
}

// applyResult ends an unfinished game according to the result token. A game
// that already ended by rule must agree with it.
func applyResult(g *game.Game, result, term string) error {
	if result == "" {
		result = "*"
	}
	if g.Status().Over() {
		if result != "*" && result != g.Status().Result() {
			return fmt.Errorf("%w: result %s but game ended %s", ErrMalformed, result, g.Status())
		}
		return nil
	}

	forfeit := term == terminationTimeForfeit
	switch result {
	case "1-0", "0-1":
		loser := board.Black
		if result == "0-1" {
			loser = board.White
		}
		if forfeit {
			if g.Position().CannotMate(loser.Other()) {
				return fmt.Errorf("%w: %s cannot win on time", ErrMalformed, loser.Other())
			}
			return g.ReportTimeout(loser)
		}
		return g.Resign(loser)
	case "1/2-1/2":
		pos := g.Position()
		switch {
		case forfeit && pos.CannotMate(pos.SideToMove.Other()):
			return g.ReportTimeout(pos.SideToMove)
		case forfeit && pos.CannotMate(pos.SideToMove):
			return g.ReportTimeout(pos.SideToMove.Other())
		case g.CanClaim(game.ThreefoldRepetition):
			return g.ClaimDraw(game.ThreefoldRepetition)
		case g.CanClaim(game.FiftyMove):
			return g.ClaimDraw(game.FiftyMove)
		}
		return g.AcceptDraw()
	}
	return nil
}
