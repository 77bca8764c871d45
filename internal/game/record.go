package game

import "github.com/hailam/chessrules/internal/board"

// Ply is one applied move together with the positions around it.
type Ply struct {
	Before   board.Position
	Move     board.Move
	After    board.Position
	Captured board.Piece // NoPiece if nothing was taken
	SAN      string
}

// Record is a snapshot of a game: where it started, every ply and how it
// stands now. The position history and the move list are both read off
// Plies.
type Record struct {
	Start  board.Position
	Plies  []Ply
	Status Status
	Meta   Metadata
}

// Final returns the position after the last ply.
func (r Record) Final() board.Position {
	if len(r.Plies) == 0 {
		return r.Start
	}
	return r.Plies[len(r.Plies)-1].After
}

// Moves returns the move list.
func (r Record) Moves() []board.Move {
	moves := make([]board.Move, len(r.Plies))
	for i, p := range r.Plies {
		moves[i] = p.Move
	}
	return moves
}

// StandardStart reports whether the game began from the initial array.
func (r Record) StandardStart() bool {
	return r.Start == board.NewPosition()
}

// MaterialReport lists, per side, the piece kinds that side has captured,
// and the board material balance (White minus Black).
type MaterialReport struct {
	Captured [2][]board.PieceType
	Delta    int
}
