package camdice

import (
	"github.com/camdicebot/camdice/internal/common/clock"
	"github.com/camdicebot/camdice/internal/common/uuid"
	"github.com/camdicebot/camdice/internal/dice"
	"github.com/camdicebot/camdice/internal/game"
	"github.com/camdicebot/camdice/internal/models"
	historyRepo "github.com/camdicebot/camdice/internal/repositories/history"
)

// Config holds configuration for the camdice service
type Config struct {
	// Registry owns the active sessions
	Registry *game.Registry

	// HistoryRepo persists terminal session outcomes
	HistoryRepo historyRepo.Repository

	// DiceRoller draws roll values for new sessions
	DiceRoller dice.Roller

	// Clock supplies session timestamps
	Clock clock.Clock

	// UUIDGenerator supplies history record IDs
	UUIDGenerator uuid.UUID
}

// CreateSessionInput contains parameters for starting a session
type CreateSessionInput struct {
	// SessionChannelID is the companion command channel
	SessionChannelID string

	// PresenceGroupID is the grouping channel whose members play
	PresenceGroupID string

	// LeadParticipantID is the participant starting the session
	LeadParticipantID string

	// MemberIDs is the snapshot of current presence-group members
	MemberIDs []string

	// LossQuota is the number of participants who will lose
	LossQuota int
}

// CreateSessionOutput contains the result of starting a session
type CreateSessionOutput struct {
	// Snapshot is the initial session state
	Snapshot *game.Snapshot
}

// SubmitRollInput contains parameters for rolling the dice
type SubmitRollInput struct {
	SessionChannelID string
	ParticipantID    string
}

// SubmitRollOutput contains the result of a roll
type SubmitRollOutput struct {
	// RollValue is the drawn value
	RollValue int

	// TieGroup is the group that must re-roll, when resolution detected
	// an unresolved tie
	TieGroup *game.TieGroup

	// RollingClosed reports whether the loser set is now final
	RollingClosed bool

	// SessionFinished reports whether the session completed as a result
	SessionFinished bool

	// Losers is the current losing set
	Losers []models.LoserResult

	// NotRolled lists contestants still owing a roll
	NotRolled []string
}

// LeaveSessionInput contains parameters for leaving a session
type LeaveSessionInput struct {
	SessionChannelID string
	ParticipantID    string
}

// LeaveSessionOutput contains the result of leaving a session
type LeaveSessionOutput struct {
	// TieGroup is the group that must re-roll, when the removal newly
	// completed the rolling phase into a tie
	TieGroup *game.TieGroup

	// RollingClosed reports whether the loser set is now final
	RollingClosed bool

	// SessionFinished reports whether the session completed as a result
	SessionFinished bool

	// Losers is the current losing set
	Losers []models.LoserResult

	// NotRolled lists contestants still owing a roll
	NotRolled []string
}

// KickParticipantInput contains parameters for kicking a participant
type KickParticipantInput struct {
	SessionChannelID string

	// RequesterID is the participant issuing the kick
	RequesterID string

	// TargetID is the participant being removed
	TargetID string
}

// KickParticipantOutput contains the result of kicking a participant
type KickParticipantOutput struct {
	TieGroup        *game.TieGroup
	RollingClosed   bool
	SessionFinished bool
	Losers          []models.LoserResult
	NotRolled       []string
}

// ConfirmPenaltyInput contains parameters for confirming a penalty
type ConfirmPenaltyInput struct {
	SessionChannelID string
	ParticipantID    string
}

// ConfirmPenaltyOutput contains the result of confirming a penalty
type ConfirmPenaltyOutput struct {
	// SessionFinished reports whether every loser has now confirmed
	SessionFinished bool
}

// CloseSessionInput contains parameters for closing a session
type CloseSessionInput struct {
	SessionChannelID string

	// RequesterID is the participant requesting the close
	RequesterID string
}

// CloseSessionOutput contains the result of closing a session
type CloseSessionOutput struct {
	// Record is the persisted outcome
	Record *models.SessionRecord
}

// ForceCloseSessionInput contains parameters for force-closing a session
type ForceCloseSessionInput struct {
	SessionChannelID string
}

// ForceCloseSessionOutput contains the result of force-closing a session
type ForceCloseSessionOutput struct {
	// Record is the persisted outcome
	Record *models.SessionRecord
}

// DescribeSessionInput contains parameters for a status query
type DescribeSessionInput struct {
	SessionChannelID string
}

// DescribeSessionOutput contains the result of a status query
type DescribeSessionOutput struct {
	Snapshot *game.Snapshot
}

// ListSessionsInput contains parameters for listing active sessions
type ListSessionsInput struct {
}

// ListSessionsOutput contains snapshots of every active session
type ListSessionsOutput struct {
	Snapshots []*game.Snapshot
}

// GetHistoryInput contains parameters for fetching session outcomes
type GetHistoryInput struct {
	PresenceGroupID string

	// Limit caps the number of records returned; 0 means all
	Limit int
}

// GetHistoryOutput contains recent session outcomes, newest first
type GetHistoryOutput struct {
	Records []*models.SessionRecord
}

// JoinAction tells the presence adapter how to react to a join
type JoinAction string

const (
	// JoinActionNone means the join needs no reaction
	JoinActionNone JoinAction = "none"

	// JoinActionRegistered means the participant was added to the session
	JoinActionRegistered JoinAction = "registered"

	// JoinActionEvictForbidden means the participant left or was removed
	// and must be evicted from the presence group
	JoinActionEvictForbidden JoinAction = "evict_forbidden"

	// JoinActionEvictClosed means rolling already closed for outsiders
	// and the participant must be evicted from the presence group
	JoinActionEvictClosed JoinAction = "evict_closed"

	// JoinActionRemindPenalty means a loser reconnected without having
	// confirmed the penalty
	JoinActionRemindPenalty JoinAction = "remind_penalty"
)

// LeaveWarning classifies a presence leave for the adapter to relay
type LeaveWarning string

const (
	// LeaveWarningNone means the leave needs no reaction
	LeaveWarningNone LeaveWarning = "none"

	// LeaveWarningOwesRoll means a participant who already rolled left
	// before the losers were determined
	LeaveWarningOwesRoll LeaveWarning = "owes_roll"

	// LeaveWarningOwesPenalty means a loser left without confirming
	LeaveWarningOwesPenalty LeaveWarning = "owes_penalty"
)

// HandlePresenceJoinInput describes a participant joining a presence group
type HandlePresenceJoinInput struct {
	PresenceGroupID string
	ParticipantID   string
}

// HandlePresenceJoinOutput tells the adapter how to react to the join
type HandlePresenceJoinOutput struct {
	// SessionChannelID is the companion channel of the affected session;
	// empty when no session is bound to the presence group
	SessionChannelID string

	// Action is the reaction the adapter must perform
	Action JoinAction
}

// HandlePresenceLeaveInput describes a participant leaving a presence group
type HandlePresenceLeaveInput struct {
	PresenceGroupID string
	ParticipantID   string
}

// HandlePresenceLeaveOutput tells the adapter which warning to relay.
// A presence leave is never an implicit removal; only the explicit
// leave/kick commands remove participants.
type HandlePresenceLeaveOutput struct {
	// SessionChannelID is the companion channel of the affected session;
	// empty when no session is bound to the presence group
	SessionChannelID string

	// Warning is the discrepancy to relay, if any
	Warning LeaveWarning
}

// HandleBroadcastFlagInput describes a visual-broadcast flag change
type HandleBroadcastFlagInput struct {
	PresenceGroupID string
	ParticipantID   string

	// Enabled is the new state of the flag
	Enabled bool
}

// HandleBroadcastFlagOutput contains the result of the flag change
type HandleBroadcastFlagOutput struct {
	// SessionChannelID is the companion channel of the affected session;
	// empty when no session is bound to the presence group
	SessionChannelID string

	// Confirmed reports whether the flag change confirmed a penalty
	Confirmed bool

	// SessionFinished reports whether the session completed as a result
	SessionFinished bool
}
