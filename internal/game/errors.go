package game

// GameError is a custom error type for game-related errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Precondition failures. None of these mutate the session.
const (
	ErrInvalidQuota        GameError = "loss quota must be at least 1 and below the participant count"
	ErrNotAParticipant     GameError = "participant is not in the session"
	ErrAlreadyParticipant  GameError = "participant is already in the session"
	ErrAlreadyRolled       GameError = "participant has already rolled"
	ErrRollingClosed       GameError = "rolling phase is closed"
	ErrNotALoser           GameError = "participant is not a loser"
	ErrNotLead             GameError = "only the session lead may do this"
	ErrPenaltyNotConfirmed GameError = "penalty has not been confirmed yet"
	ErrForbidden           GameError = "participant left or was removed and may not rejoin"
	ErrAlreadyInSession    GameError = "an active session already exists for this presence group"
	ErrSessionNotFound     GameError = "no active session found"
)

// Command guards carried over from the command surface: they gate the
// removal paths, not the state machine itself.
const (
	ErrLeadCannotLeave GameError = "the session lead cannot leave; close the session instead"
	ErrRollCommitted   GameError = "a participant who has rolled cannot leave the session"
	ErrCannotKickSelf  GameError = "the lead cannot kick themself"
	ErrCannotKickSafe  GameError = "a safe participant cannot be kicked after rolling closed"
)

// ErrInsufficientParticipants is the one fatal outcome: the session has
// been terminated as a side effect of the removal that triggered it.
const ErrInsufficientParticipants GameError = "session terminated: participant count dropped to the loss quota"
