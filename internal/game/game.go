// Package game implements the move-legality state machine on top of the
// board package: it applies moves, keeps the record and repetition table,
// and detects checkmate, stalemate and the draw rules.
package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hailam/chessrules/internal/board"
)

// Game is a single game of chess. It is owned by one caller and is not safe
// for concurrent use.
type Game struct {
	log *zap.Logger
	now func() time.Time

	start  board.Position
	plies  []Ply
	reps   map[uint64]int // fingerprint -> occurrences so far
	status Status
	meta   Metadata
}

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.log = l
		}
	}
}

// WithClock sets the time source used to date the game.
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		if now != nil {
			g.now = now
		}
	}
}

// WithMetadata sets the initial metadata. A zero Date is replaced by the
// clock.
func WithMetadata(m Metadata) Option {
	return func(g *Game) {
		g.meta = m
	}
}

// WithStartPosition starts the game from pos instead of the initial array.
func WithStartPosition(pos board.Position) Option {
	return func(g *Game) {
		g.start = pos
	}
}

// New creates a game from the standard initial position.
func New(opts ...Option) *Game {
	g := &Game{
		log:   zap.NewNop(),
		now:   time.Now,
		start: board.NewPosition(),
		reps:  make(map[uint64]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.meta.Date.IsZero() {
		g.meta.Date = g.now()
	}
	g.reps[g.start.Fingerprint()] = 1
	g.status = g.evaluate(g.start)
	g.log.Debug("new game",
		zap.String("fen", g.start.FEN()),
		zap.Stringer("status", g.status))
	return g
}

// NewFromFEN creates a game starting from a FEN position. The position must
// pass board.Position.Validate.
func NewFromFEN(fen string, opts ...Option) (*Game, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("invalid position: %w", err)
	}
	return New(append(opts, WithStartPosition(pos))...), nil
}

// Position returns the current position.
func (g *Game) Position() board.Position {
	if len(g.plies) == 0 {
		return g.start
	}
	return g.plies[len(g.plies)-1].After
}

// Status returns the current status.
func (g *Game) Status() Status {
	return g.status
}

// LegalMoves returns the legal moves in the current position, or none once
// the game is over.
func (g *Game) LegalMoves() []board.Move {
	if g.status.Over() {
		return []board.Move{}
	}
	return g.Position().LegalMoves()
}

// LegalMovesFrom returns the legal moves of the piece on sq. Each call
// returns a fresh slice and never changes the game.
func (g *Game) LegalMovesFrom(sq board.Square) []board.Move {
	if g.status.Over() {
		return []board.Move{}
	}
	return g.Position().LegalMovesFrom(sq)
}

// Apply plays m. The move is matched against the legal moves by origin,
// destination and promotion piece, so callers need not know its kind.
func (g *Game) Apply(m board.Move) error {
	if g.status.Over() {
		return ErrNotInProgress
	}

	pos := g.Position()
	if piece := pos.PieceAt(m.From); piece != board.NoPiece && piece.Color() != pos.SideToMove {
		return fmt.Errorf("%w: %s to move", ErrWrongTurn, pos.SideToMove)
	}

	legal, ok := findLegal(pos, m)
	if !ok {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	g.push(pos, legal)
	return nil
}

// Play decodes a move token (standard or long algebraic, or coordinates
// such as e2e4) against the current position and applies it.
func (g *Game) Play(token string) error {
	if g.status.Over() {
		return ErrNotInProgress
	}
	m, err := board.DecodeMove(g.Position(), token)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIllegalMove, err)
	}
	return g.Apply(m)
}

// Resolve maps a from/to pair, as a board UI would produce it, to a legal
// move. A missing promotion piece means a queen, and dragging the king onto
// its own rook means castling on that side.
func (g *Game) Resolve(from, to board.Square, promo board.PieceType) (board.Move, error) {
	if g.status.Over() {
		return board.NoMove, ErrNotInProgress
	}
	pos := g.Position()
	if piece := pos.PieceAt(from); piece != board.NoPiece && piece.Color() != pos.SideToMove {
		return board.NoMove, fmt.Errorf("%w: %s to move", ErrWrongTurn, pos.SideToMove)
	}
	if promo == board.NoPieceType {
		promo = board.Queen
	}

	target := pos.PieceAt(to)
	for _, m := range pos.LegalMovesFrom(from) {
		if m.To == to && (m.Kind != board.Promotion || m.Promo == promo) {
			return m, nil
		}
		if target == board.NewPiece(board.Rook, pos.SideToMove) &&
			(m.Kind == board.CastleKingside && to.File() == 7 || m.Kind == board.CastleQueenside && to.File() == 0) {
			return m, nil
		}
	}
	return board.NoMove, fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
}

func findLegal(pos board.Position, m board.Move) (board.Move, bool) {
	promo := m.Promo
	if promo == board.Pawn { // zero value of a Move literal
		promo = board.NoPieceType
	}
	for _, legal := range pos.LegalMovesFrom(m.From) {
		if legal.To == m.To && legal.Promo == promo {
			return legal, true
		}
	}
	return board.NoMove, false
}

// push records the ply and re-evaluates the status.
func (g *Game) push(before board.Position, m board.Move) {
	after := before.Apply(m)
	ply := Ply{
		Before:   before,
		Move:     m,
		After:    after,
		Captured: before.CapturedBy(m),
		SAN:      board.EncodeMove(before, after, m, board.Standard),
	}
	g.plies = append(g.plies, ply)
	g.reps[after.Fingerprint()]++
	g.status = g.evaluate(after)

	g.log.Debug("move applied",
		zap.Int("ply", len(g.plies)),
		zap.String("san", ply.SAN),
		zap.String("move", m.String()),
		zap.String("fen", after.FEN()))
	if g.status.Over() {
		g.log.Info("game over",
			zap.Stringer("status", g.status),
			zap.String("result", g.status.Result()),
			zap.Int("plies", len(g.plies)))
	}
}

// evaluate applies the automatic termination rules in priority order.
func (g *Game) evaluate(pos board.Position) Status {
	switch {
	case !pos.HasLegalMoves():
		if pos.InCheck() {
			return won(Checkmate, pos.SideToMove.Other())
		}
		return Status{State: Stalemate, Winner: board.NoColor}
	case pos.HalfMoveClock >= 150:
		return drawn(SeventyFiveMove)
	case g.reps[pos.Fingerprint()] >= 5:
		return drawn(FivefoldRepetition)
	case pos.InsufficientMaterial():
		return drawn(InsufficientMaterial)
	}
	return inProgress(pos.InCheck())
}

// RepetitionCount returns how often the current position has occurred,
// including now.
func (g *Game) RepetitionCount() int {
	return g.reps[g.Position().Fingerprint()]
}

// CanClaim reports whether a draw of the given kind may be claimed now.
func (g *Game) CanClaim(kind DrawReason) bool {
	if g.status.Over() {
		return false
	}
	switch kind {
	case ThreefoldRepetition:
		return g.RepetitionCount() >= 3
	case FiftyMove:
		return g.Position().HalfMoveClock >= 100
	}
	return false
}

// ClaimDraw ends the game as a draw if the claim of the given kind is valid.
func (g *Game) ClaimDraw(kind DrawReason) error {
	if g.status.Over() {
		return ErrNotInProgress
	}
	if kind != ThreefoldRepetition && kind != FiftyMove {
		return fmt.Errorf("%s cannot be claimed", kind)
	}
	if !g.CanClaim(kind) {
		return fmt.Errorf("%w: %s", ErrClaimNotYetValid, kind)
	}
	g.finish(drawn(kind))
	return nil
}

// Resign ends the game with side resigning.
func (g *Game) Resign(side board.Color) error {
	if g.status.Over() {
		return ErrNotInProgress
	}
	if side != board.White && side != board.Black {
		return fmt.Errorf("invalid side %v", side)
	}
	g.finish(won(Resigned, side.Other()))
	return nil
}

// AcceptDraw ends the game by mutual agreement.
func (g *Game) AcceptDraw() error {
	if g.status.Over() {
		return ErrNotInProgress
	}
	g.finish(drawn(Mutual))
	return nil
}

// ReportTimeout records that side ran out of time. The opponent wins unless
// their own material could never mate, in which case the game is drawn.
func (g *Game) ReportTimeout(side board.Color) error {
	if g.status.Over() {
		return ErrNotInProgress
	}
	if side != board.White && side != board.Black {
		return fmt.Errorf("invalid side %v", side)
	}
	winner := side.Other()
	if g.Position().CannotMate(winner) {
		g.finish(drawn(TimeoutVsInsufficientMaterial))
	} else {
		g.finish(won(TimedOut, winner))
	}
	return nil
}

func (g *Game) finish(s Status) {
	g.status = s
	g.log.Info("game over",
		zap.Stringer("status", s),
		zap.String("result", s.Result()),
		zap.Int("plies", len(g.plies)))
}

// Undo takes back the last ply. It is only allowed while the game is in
// progress.
func (g *Game) Undo() error {
	if g.status.Over() {
		return ErrNotInProgress
	}
	if len(g.plies) == 0 {
		return ErrNothingToUndo
	}
	last := g.plies[len(g.plies)-1]
	g.plies = g.plies[:len(g.plies)-1]

	fp := last.After.Fingerprint()
	if g.reps[fp]--; g.reps[fp] <= 0 {
		delete(g.reps, fp)
	}
	g.status = inProgress(last.Before.InCheck())
	g.log.Debug("move undone", zap.String("san", last.SAN), zap.Int("ply", len(g.plies)))
	return nil
}

// History returns every position of the game, starting position first.
func (g *Game) History() []board.Position {
	history := make([]board.Position, 0, len(g.plies)+1)
	history = append(history, g.start)
	for _, p := range g.plies {
		history = append(history, p.After)
	}
	return history
}

// Moves returns the moves played so far.
func (g *Game) Moves() []board.Move {
	return g.Record().Moves()
}

// Record returns a snapshot of the game record.
func (g *Game) Record() Record {
	return Record{
		Start:  g.start,
		Plies:  append([]Ply(nil), g.plies...),
		Status: g.status,
		Meta:   g.meta,
	}
}

// Metadata returns the game metadata.
func (g *Game) Metadata() Metadata {
	return g.meta
}

// SetMetadata replaces the metadata. A zero Date keeps the current one.
func (g *Game) SetMetadata(m Metadata) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.Date.IsZero() {
		m.Date = g.meta.Date
	}
	g.meta = m
	return nil
}

// Material reports captured pieces per capturing side and the material
// balance on the board.
func (g *Game) Material() MaterialReport {
	report := MaterialReport{
		Captured: [2][]board.PieceType{{}, {}},
	}
	for _, p := range g.plies {
		if p.Captured != board.NoPiece {
			by := p.Before.SideToMove
			report.Captured[by] = append(report.Captured[by], p.Captured.Type())
		}
	}
	pos := g.Position()
	report.Delta = pos.Material(board.White) - pos.Material(board.Black)
	return report
}
