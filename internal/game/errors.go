package game

import "errors"

var (
	ErrIllegalMove      = errors.New("illegal move")
	ErrWrongTurn        = errors.New("not that side's turn")
	ErrNotInProgress    = errors.New("game is not in progress")
	ErrClaimNotYetValid = errors.New("draw claim not yet valid")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrMetadataTooLong  = errors.New("metadata field too long")
)
