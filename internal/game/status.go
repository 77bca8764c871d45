package game

import (
	"fmt"

	"github.com/hailam/chessrules/internal/board"
)

// State is the phase of a game. Every state except AwaitingMove is terminal.
type State uint8

const (
	AwaitingMove State = iota
	Checkmate
	Stalemate
	Drawn
	Resigned
	TimedOut
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case AwaitingMove:
		return "AwaitingMove"
	case Checkmate:
		return "Checkmate"
	case Stalemate:
		return "Stalemate"
	case Drawn:
		return "Drawn"
	case Resigned:
		return "Resigned"
	case TimedOut:
		return "TimedOut"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// DrawReason says why a game was drawn.
type DrawReason uint8

const (
	NoDraw DrawReason = iota
	SeventyFiveMove
	FivefoldRepetition
	InsufficientMaterial
	Mutual
	ThreefoldRepetition // claimed
	FiftyMove           // claimed
	TimeoutVsInsufficientMaterial
)

// String returns a short human-readable reason.
func (r DrawReason) String() string {
	switch r {
	case NoDraw:
		return "none"
	case SeventyFiveMove:
		return "75-move rule"
	case FivefoldRepetition:
		return "fivefold repetition"
	case InsufficientMaterial:
		return "insufficient material"
	case Mutual:
		return "mutual agreement"
	case ThreefoldRepetition:
		return "threefold repetition"
	case FiftyMove:
		return "50-move rule"
	case TimeoutVsInsufficientMaterial:
		return "timeout vs insufficient material"
	default:
		return fmt.Sprintf("DrawReason(%d)", uint8(r))
	}
}

// ParseClaim maps console and PGN spellings to a claimable draw reason.
func ParseClaim(s string) (DrawReason, bool) {
	switch s {
	case "threefold", "repetition", "3":
		return ThreefoldRepetition, true
	case "fifty", "50", "50-move":
		return FiftyMove, true
	}
	return NoDraw, false
}

// Status is the externally visible game status.
type Status struct {
	State  State
	Winner board.Color // NoColor unless Checkmate, Resigned or TimedOut
	Reason DrawReason  // only for Drawn
	Check  bool        // side to move is in check; only set while AwaitingMove
}

// Over returns true if the game has ended.
func (s Status) Over() bool {
	return s.State != AwaitingMove
}

// Result returns the PGN result token: "1-0", "0-1", "1/2-1/2" or "*".
func (s Status) Result() string {
	switch s.State {
	case Checkmate, Resigned, TimedOut:
		if s.Winner == board.White {
			return "1-0"
		}
		return "0-1"
	case Stalemate, Drawn:
		return "1/2-1/2"
	default:
		return "*"
	}
}

// String describes the status in a sentence.
func (s Status) String() string {
	switch s.State {
	case AwaitingMove:
		if s.Check {
			return "in progress (check)"
		}
		return "in progress"
	case Checkmate:
		return fmt.Sprintf("%s wins by checkmate", s.Winner)
	case Stalemate:
		return "draw by stalemate"
	case Drawn:
		return "draw by " + s.Reason.String()
	case Resigned:
		return fmt.Sprintf("%s wins by resignation", s.Winner)
	case TimedOut:
		return fmt.Sprintf("%s wins on time", s.Winner)
	default:
		return s.State.String()
	}
}

func inProgress(check bool) Status {
	return Status{State: AwaitingMove, Winner: board.NoColor, Check: check}
}

func drawn(reason DrawReason) Status {
	return Status{State: Drawn, Winner: board.NoColor, Reason: reason}
}

func won(state State, winner board.Color) Status {
	return Status{State: state, Winner: winner}
}
