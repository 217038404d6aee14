package models

// ParticipantState tracks one participant's progress through a camdice
// session: their current roll, whether they ended up in the losing set,
// and whether their penalty has been visibly confirmed.
type ParticipantState struct {
	// ParticipantID is the stable identifier of the participant
	ParticipantID string

	// Roll is the current dice value in [1,6]; 0 means not rolled yet.
	// A tied participant has their roll cleared back to 0 for the re-roll.
	Roll int

	// IsLoser is set once the participant is assigned a loser slot
	IsLoser bool

	// IsPenaltyConfirmed is true once a loser has visibly confirmed the
	// penalty. Non-losers keep the default true.
	IsPenaltyConfirmed bool

	// IsRollClosed is true once the participant's fate (loser or safe)
	// is final and will not be revisited by further tie-break rounds
	IsRollClosed bool

	// IsForbidden is true once the participant has left or been removed
	// from an in-progress session; forbidden participants may not rejoin
	// until the session ends
	IsForbidden bool
}

// NewParticipantState creates the initial state for a registered participant.
func NewParticipantState(participantID string) *ParticipantState {
	return &ParticipantState{
		ParticipantID:      participantID,
		IsPenaltyConfirmed: true,
	}
}

// HasRolled reports whether the participant currently holds a roll value.
func (p *ParticipantState) HasRolled() bool {
	return p.Roll != 0
}

// RemovalReason says why a participant was removed from a session
type RemovalReason string

const (
	// RemovalReasonLeft indicates the participant left voluntarily
	RemovalReasonLeft RemovalReason = "left"

	// RemovalReasonKicked indicates the lead removed the participant
	RemovalReasonKicked RemovalReason = "kicked"
)
