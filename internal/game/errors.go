package game

import (
	"errors"
	"fmt"
)

// Validation errors. These reject a single request and leave the game state
// untouched; they are never fatal to the match.
var (
	ErrNotYourTurn         = errors.New("not your turn")
	ErrIllegalAction       = errors.New("illegal action")
	ErrAmountOutOfRange    = errors.New("amount out of range")
	ErrUnknownGame         = errors.New("unknown game")
	ErrDuplicateGameID     = errors.New("game id already exists")
	ErrGameFull            = errors.New("game is full")
	ErrGameNotRunning      = errors.New("game is not running")
	ErrAlreadyRunning      = errors.New("game is already running")
	ErrInsufficientPlayers = errors.New("not enough players")
	ErrPermissionDenied    = errors.New("permission denied")
)

// AmountOutOfRangeError carries the legal bounds so callers can tell the bot
// what would have been accepted.
type AmountOutOfRangeError struct {
	Action ActionType
	Amount int
	Min    int
	Max    int
}

func (e *AmountOutOfRangeError) Error() string {
	return fmt.Sprintf("%s of %d out of range [%d, %d]", e.Action, e.Amount, e.Min, e.Max)
}

func (e *AmountOutOfRangeError) Unwrap() error { return ErrAmountOutOfRange }

// InvariantError reports a broken engine invariant, e.g. chips appearing or
// vanishing mid-hand. It is fatal for the match: the controller aborts the
// hand, marks the replay corrupt and refuses further actions.
type InvariantError struct {
	GameID string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in game %s: %s", e.GameID, e.Detail)
}

// IsFatal reports whether err should take the whole match down rather than
// just reject the request.
func IsFatal(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// ErrorCode maps an error to its wire code. Codes appear verbatim in HTTP
// responses and socket error events.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotYourTurn):
		return "NotYourTurn"
	case errors.Is(err, ErrAmountOutOfRange):
		return "AmountOutOfRange"
	case errors.Is(err, ErrDuplicateGameID):
		return "DuplicateGameId"
	case errors.Is(err, ErrUnknownGame):
		return "UnknownGame"
	case errors.Is(err, ErrGameFull):
		return "GameFull"
	case errors.Is(err, ErrGameNotRunning):
		return "GameNotRunning"
	case errors.Is(err, ErrAlreadyRunning):
		return "AlreadyRunning"
	case errors.Is(err, ErrInsufficientPlayers):
		return "InsufficientPlayers"
	case errors.Is(err, ErrPermissionDenied):
		return "PermissionDenied"
	case errors.Is(err, ErrIllegalAction):
		return "IllegalAction"
	case IsFatal(err):
		return "InvariantViolation"
	default:
		return "InternalError"
	}
}
