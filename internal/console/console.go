// Package console drives a game from a line-oriented text stream. Each
// line is a command or a move token.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/diagram"
	"github.com/hailam/chessrules/internal/game"
	"github.com/hailam/chessrules/internal/pgn"
	"github.com/hailam/chessrules/internal/storage"
)

// Archive stores finished games and their results.
type Archive interface {
	SaveGame(rec game.Record, mode board.Notation) (uuid.UUID, error)
	ListGames() ([]storage.ArchivedGame, error)
	RecordResult(st game.Status) error
}

// Config sets up a Console.
type Config struct {
	Logger   *zap.Logger
	Metadata game.Metadata
	StartFEN string // empty for the standard array
	Notation board.Notation
	Archive  Archive      // optional
	Dirs     storage.Dirs // bare file names given to export and diagram land in Dirs.Exports
	Clock    func() time.Time
}

// Console holds one game at a time and the settings used to start new ones.
type Console struct {
	cfg      Config
	log      *zap.Logger
	game     *game.Game
	notation board.Notation
	out      io.Writer
	recorded bool // the current game's result has gone to the archive
}

var errUsage = errors.New("usage")

// New creates a console and its first game.
func New(cfg Config) (*Console, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	c := &Console{
		cfg:      cfg,
		log:      cfg.Logger.Named("console"),
		notation: cfg.Notation,
	}
	if err := c.newGame(); err != nil {
		return nil, err
	}
	return c, nil
}

// Game returns the current game.
func (c *Console) Game() *game.Game {
	return c.game
}

func (c *Console) newGame() error {
	opts := []game.Option{
		game.WithLogger(c.cfg.Logger),
		game.WithMetadata(c.cfg.Metadata),
	}
	if c.cfg.Clock != nil {
		opts = append(opts, game.WithClock(c.cfg.Clock))
	}
	if err := c.cfg.Metadata.Validate(); err != nil {
		return err
	}

	var g *game.Game
	if c.cfg.StartFEN == "" {
		g = game.New(opts...)
	} else {
		var err error
		if g, err = game.NewFromFEN(c.cfg.StartFEN, opts...); err != nil {
			return err
		}
	}
	c.game = g
	c.recorded = false
	return nil
}

// Run reads commands from in until EOF or "quit", writing replies to out.
// Command errors are reported on out and do not stop the loop.
func (c *Console) Run(in io.Reader, out io.Writer) error {
	c.out = out
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "quit", "exit":
			return nil
		case "help":
			c.handleHelp()
		case "new":
			err = c.handleNew()
		case "board", "d":
			c.handleBoard()
		case "fen":
			fmt.Fprintln(out, c.game.Position().FEN())
		case "moves":
			err = c.handleMoves(args)
		case "status":
			c.handleStatus()
		case "material":
			c.handleMaterial()
		case "undo":
			err = c.handleUndo()
		case "resign":
			err = c.handleSide(args, c.game.Resign)
		case "flag":
			err = c.handleSide(args, c.game.ReportTimeout)
		case "draw":
			err = c.game.AcceptDraw()
		case "claim":
			err = c.handleClaim(args)
		case "pgn":
			err = pgn.Write(out, c.game.Record(), c.notation)
		case "export":
			err = c.handleExport(args)
		case "diagram":
			err = c.handleDiagram(args)
		case "save":
			err = c.handleSave()
		case "games":
			err = c.handleGames()
		case "notation":
			err = c.handleNotation(args)
		case "meta":
			err = c.handleMeta(args)
		default:
			err = c.handleMove(line)
		}

		if err != nil {
			c.log.Debug("command failed", zap.String("line", line), zap.Error(err))
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		c.checkFinished()
	}
	return scanner.Err()
}

func (c *Console) handleHelp() {
	fmt.Fprintln(c.out, `commands:
  <move>                     play a move (e4, Nf3, O-O, e7e8q, Ng1-f3)
  new                        start a new game
  board | d                  show the board
  fen                        show the current FEN
  moves [square]             list legal moves
  status | material          show game status or captured material
  undo                       take back the last move
  resign white|black         resign for a side
  flag white|black           report that a side ran out of time
  draw                       agree to a draw
  claim threefold|fifty      claim a draw
  pgn | export <path>        print or write the game record
  diagram <path>             write a PNG of the board
  save | games               archive the game or list archived games
  notation standard|long     choose the move notation
  meta <field> <value>       set event, site, round, white, black, timecontrol or date
  quit`)
}

func (c *Console) handleNew() error {
	meta := c.game.Metadata()
	meta.Date = time.Time{}
	c.cfg.Metadata = meta
	if err := c.newGame(); err != nil {
		return err
	}
	c.handleBoard()
	return nil
}

func (c *Console) handleBoard() {
	fmt.Fprint(c.out, c.game.Position().String())
	c.handleStatus()
}

func (c *Console) handleMoves(args []string) error {
	pos := c.game.Position()
	var moves []board.Move
	switch len(args) {
	case 0:
		moves = c.game.LegalMoves()
	case 1:
		sq, err := board.ParseSquare(args[0])
		if err != nil {
			return err
		}
		moves = c.game.LegalMovesFrom(sq)
	default:
		return fmt.Errorf("%w: moves [square]", errUsage)
	}
	if len(moves) == 0 {
		fmt.Fprintln(c.out, "(none)")
		return nil
	}
	fmt.Fprintln(c.out, strings.Join(board.EncodeAll(pos, moves, c.notation), " "))
	return nil
}

func (c *Console) handleStatus() {
	st := c.game.Status()
	if st.Over() {
		fmt.Fprintf(c.out, "%s (%s)\n", st, st.Result())
		return
	}
	fmt.Fprintf(c.out, "%s to move, %s\n", c.game.Position().SideToMove, st)
}

func (c *Console) handleMaterial() {
	m := c.game.Material()
	for _, side := range []board.Color{board.White, board.Black} {
		letters := make([]string, len(m.Captured[side]))
		for i, pt := range m.Captured[side] {
			letters[i] = string(pt.Letter())
		}
		fmt.Fprintf(c.out, "%s captured: %s\n", side, strings.Join(letters, " "))
	}
	fmt.Fprintf(c.out, "balance: %+d\n", m.Delta)
}

func (c *Console) handleUndo() error {
	if err := c.game.Undo(); err != nil {
		return err
	}
	c.handleStatus()
	return nil
}

func (c *Console) handleSide(args []string, fn func(board.Color) error) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: white|black", errUsage)
	}
	side, ok := board.ParseColor(args[0])
	if !ok {
		return fmt.Errorf("unknown side %q", args[0])
	}
	return fn(side)
}

func (c *Console) handleClaim(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: claim threefold|fifty", errUsage)
	}
	kind, ok := game.ParseClaim(args[0])
	if !ok {
		return fmt.Errorf("unknown claim %q", args[0])
	}
	return c.game.ClaimDraw(kind)
}

func (c *Console) handleExport(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: export <path>", errUsage)
	}
	path, err := c.cfg.Dirs.ExportPath(args[0])
	if err != nil {
		return err
	}
	if err := pgn.Export(path, c.game.Record(), c.notation); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "wrote %s\n", path)
	return nil
}

func (c *Console) handleDiagram(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: diagram <path>", errUsage)
	}
	path, err := c.cfg.Dirs.ExportPath(args[0])
	if err != nil {
		return err
	}
	opts := diagram.Options{}
	if moves := c.game.Moves(); len(moves) > 0 {
		last := moves[len(moves)-1]
		opts.Highlight = []board.Square{last.From, last.To}
	}
	if err := diagram.WritePNG(path, c.game.Position(), opts); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "wrote %s\n", path)
	return nil
}

func (c *Console) handleSave() error {
	if c.cfg.Archive == nil {
		return errors.New("no archive configured")
	}
	id, err := c.cfg.Archive.SaveGame(c.game.Record(), c.notation)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "saved %s\n", id)
	return nil
}

func (c *Console) handleGames() error {
	if c.cfg.Archive == nil {
		return errors.New("no archive configured")
	}
	games, err := c.cfg.Archive.ListGames()
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Fprintln(c.out, "(no games)")
	}
	for _, ag := range games {
		fmt.Fprintf(c.out, "%s  %s  %s - %s  %s  %d plies\n",
			ag.ID, ag.Date.Format("2006.01.02"), orDash(ag.White), orDash(ag.Black), ag.Result, ag.Plies)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (c *Console) handleNotation(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: notation standard|long", errUsage)
	}
	mode, err := board.ParseNotation(args[0])
	if err != nil {
		return err
	}
	c.notation = mode
	fmt.Fprintf(c.out, "notation %s\n", mode)
	return nil
}

func (c *Console) handleMeta(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: meta <field> <value>", errUsage)
	}
	meta := c.game.Metadata()
	if err := meta.Set(strings.ToLower(args[0]), strings.Join(args[1:], " ")); err != nil {
		return err
	}
	return c.game.SetMetadata(meta)
}

func (c *Console) handleMove(token string) error {
	if err := c.game.Play(token); err != nil {
		return err
	}
	plies := c.game.Record().Plies
	last := plies[len(plies)-1]
	text := last.SAN
	if c.notation == board.Long {
		text = board.EncodeMove(last.Before, last.After, last.Move, board.Long)
	}
	fmt.Fprintf(c.out, "%d%s %s\n", last.Before.FullMoveNumber, moveDots(last.Before.SideToMove), text)
	return nil
}

func moveDots(side board.Color) string {
	if side == board.Black {
		return "..."
	}
	return "."
}

// checkFinished reports a game that has just ended and hands it to the
// archive once.
func (c *Console) checkFinished() {
	st := c.game.Status()
	if !st.Over() || c.recorded {
		return
	}
	c.recorded = true
	fmt.Fprintf(c.out, "game over: %s (%s)\n", st, st.Result())

	if c.cfg.Archive == nil {
		return
	}
	if err := c.cfg.Archive.RecordResult(st); err != nil {
		c.log.Warn("recording result failed", zap.Error(err))
	}
	id, err := c.cfg.Archive.SaveGame(c.game.Record(), c.notation)
	if err != nil {
		c.log.Warn("archiving game failed", zap.Error(err))
		return
	}
	c.log.Info("game archived", zap.Stringer("id", id), zap.String("result", st.Result()))
	fmt.Fprintf(c.out, "saved %s\n", id)
}
