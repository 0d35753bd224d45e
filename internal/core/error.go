package core

import "errors"

// Rule and session errors. Callers wrap them with context and test with errors.Is.
var (
	ErrMalformedFEN      = errors.New("malformed FEN")
	ErrIllegalMove       = errors.New("illegal move")
	ErrEmptyUndoStack    = errors.New("no moves to undo")
	ErrEmptyRedoStack    = errors.New("no moves to redo")
	ErrGameNotFound      = errors.New("game not found")
	ErrEngineUnavailable = errors.New("engine unavailable")
	ErrGameOver          = errors.New("game is over")
	ErrNotHumanTurn      = errors.New("not a human player's turn")
	ErrNotComputerTurn   = errors.New("not a computer player's turn")
	ErrPositionChanged   = errors.New("position changed during engine search")
)

// Error codes
const (
	ErrCodeGameNotFound      = "GAME_NOT_FOUND"
	ErrCodeInvalidMove       = "INVALID_MOVE"
	ErrCodeInvalidFEN        = "INVALID_FEN"
	ErrCodeNothingToUndo     = "NOTHING_TO_UNDO"
	ErrCodeNothingToRedo     = "NOTHING_TO_REDO"
	ErrCodeNotHumanTurn      = "NOT_HUMAN_TURN"
	ErrCodeNotComputerTurn   = "NOT_COMPUTER_TURN"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeGameOver          = "GAME_OVER"
	ErrCodeEngineUnavailable = "ENGINE_UNAVAILABLE"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)
