package models

import (
	"time"
)

// SessionOutcome describes how a session ended
type SessionOutcome string

const (
	// SessionOutcomeCompleted indicates the session finished cleanly: all
	// losers confirmed their penalty before the lead closed it
	SessionOutcomeCompleted SessionOutcome = "completed"

	// SessionOutcomeClosed indicates the lead closed the session before
	// every loser had confirmed
	SessionOutcomeClosed SessionOutcome = "closed"

	// SessionOutcomeForceClosed indicates a privileged caller ended the
	// session unconditionally
	SessionOutcomeForceClosed SessionOutcome = "force_closed"

	// SessionOutcomeInsufficientParticipants indicates the session
	// terminated because removals shrank the pool to the loss quota
	SessionOutcomeInsufficientParticipants SessionOutcome = "insufficient_participants"
)

// LoserResult records one loser's final roll in a finished session
type LoserResult struct {
	// ParticipantID is the losing participant
	ParticipantID string

	// Roll is the final roll value that put them in the losing set
	Roll int
}

// SessionRecord is the persisted outcome of a finished camdice session.
// Only terminal outcomes are recorded; live session state never leaves
// process memory.
type SessionRecord struct {
	// ID is the unique identifier for the record
	ID string

	// SessionChannelID is the companion command channel of the session
	SessionChannelID string

	// PresenceGroupID is the presence group the session was scoped to
	PresenceGroupID string

	// LeadParticipantID is the participant who created the session
	LeadParticipantID string

	// LossQuota is the configured number of losers
	LossQuota int

	// ParticipantCount is the size of the contestant pool at the end
	ParticipantCount int

	// Outcome says how the session ended
	Outcome SessionOutcome

	// Losers holds the final losing set; empty when the session
	// terminated before the losers were decided
	Losers []LoserResult

	// StartedAt is when the session was created
	StartedAt time.Time

	// EndedAt is when the session left the registry
	EndedAt time.Time
}
