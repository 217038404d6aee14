package camdice

import "context"

// Service defines the interface for camdice session operations. Command
// and presence adapters feed validated intents through it; every mutating
// call on a given session is serialized by the session's registry entry.
type Service interface {
	// CreateSession starts a new elimination game over a presence group
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)

	// SubmitRoll draws a die for a participant and resolves the session
	SubmitRoll(ctx context.Context, input *SubmitRollInput) (*SubmitRollOutput, error)

	// LeaveSession removes the requesting participant from a session
	LeaveSession(ctx context.Context, input *LeaveSessionInput) (*LeaveSessionOutput, error)

	// KickParticipant removes another participant on the lead's behalf
	KickParticipant(ctx context.Context, input *KickParticipantInput) (*KickParticipantOutput, error)

	// ConfirmPenalty records a loser's visible penalty confirmation
	ConfirmPenalty(ctx context.Context, input *ConfirmPenaltyInput) (*ConfirmPenaltyOutput, error)

	// CloseSession ends a session on the lead's request
	CloseSession(ctx context.Context, input *CloseSessionInput) (*CloseSessionOutput, error)

	// ForceCloseSession ends a session unconditionally
	ForceCloseSession(ctx context.Context, input *ForceCloseSessionInput) (*ForceCloseSessionOutput, error)

	// DescribeSession returns a read-only snapshot of one session
	DescribeSession(ctx context.Context, input *DescribeSessionInput) (*DescribeSessionOutput, error)

	// ListSessions returns snapshots of every active session
	ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error)

	// GetHistory returns recent session outcomes for a presence group
	GetHistory(ctx context.Context, input *GetHistoryInput) (*GetHistoryOutput, error)

	// HandlePresenceJoin reacts to a participant joining the presence group
	HandlePresenceJoin(ctx context.Context, input *HandlePresenceJoinInput) (*HandlePresenceJoinOutput, error)

	// HandlePresenceLeave reacts to a participant leaving the presence group
	HandlePresenceLeave(ctx context.Context, input *HandlePresenceLeaveInput) (*HandlePresenceLeaveOutput, error)

	// HandleBroadcastFlag reacts to a participant toggling their
	// visual-broadcast flag
	HandleBroadcastFlag(ctx context.Context, input *HandleBroadcastFlagInput) (*HandleBroadcastFlagOutput, error)
}
