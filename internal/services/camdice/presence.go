package camdice

import (
	"context"
	"errors"

	"github.com/camdicebot/camdice/internal/game"
)

// HandlePresenceJoin reacts to a participant joining the presence group.
// New participants are registered while rolling is open; forbidden
// participants and outsiders arriving after rolling closed must be
// evicted by the adapter, without mutating the session.
func (s *service) HandlePresenceJoin(ctx context.Context, input *HandlePresenceJoinInput) (*HandlePresenceJoinOutput, error) {
	handle, err := s.registry.ByGroup(input.PresenceGroupID)
	if errors.Is(err, game.ErrSessionNotFound) {
		return &HandlePresenceJoinOutput{Action: JoinActionNone}, nil
	}
	if err != nil {
		return nil, err
	}

	output := &HandlePresenceJoinOutput{Action: JoinActionNone}
	err = handle.Do(func(session *game.Session) error {
		output.SessionChannelID = session.SessionChannelID()

		if session.IsForbidden(input.ParticipantID) {
			output.Action = JoinActionEvictForbidden
			return nil
		}

		if !session.IsParticipant(input.ParticipantID) {
			if session.IsRollingClosed() {
				output.Action = JoinActionEvictClosed
				return nil
			}

			if addErr := session.AddParticipant(input.ParticipantID); addErr != nil {
				return addErr
			}

			output.Action = JoinActionRegistered
			return nil
		}

		// a loser coming back still owes the penalty
		p, _ := session.Participant(input.ParticipantID)
		if p.IsLoser && !p.IsPenaltyConfirmed {
			output.Action = JoinActionRemindPenalty
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// HandlePresenceLeave reacts to a participant leaving the presence group.
// Leaving is never an implicit removal: the session only flags the
// discrepancy for the adapter to relay.
func (s *service) HandlePresenceLeave(ctx context.Context, input *HandlePresenceLeaveInput) (*HandlePresenceLeaveOutput, error) {
	handle, err := s.registry.ByGroup(input.PresenceGroupID)
	if errors.Is(err, game.ErrSessionNotFound) {
		return &HandlePresenceLeaveOutput{Warning: LeaveWarningNone}, nil
	}
	if err != nil {
		return nil, err
	}

	output := &HandlePresenceLeaveOutput{Warning: LeaveWarningNone}
	err = handle.Do(func(session *game.Session) error {
		output.SessionChannelID = session.SessionChannelID()

		p, ok := session.Participant(input.ParticipantID)
		if !ok || session.IsForbidden(input.ParticipantID) {
			return nil
		}

		if session.IsRollingClosed() {
			if p.IsLoser && !p.IsPenaltyConfirmed {
				output.Warning = LeaveWarningOwesPenalty
			}
			return nil
		}

		if p.HasRolled() {
			output.Warning = LeaveWarningOwesRoll
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// HandleBroadcastFlag reacts to a participant toggling their
// visual-broadcast flag. Enabling the flag confirms the penalty for an
// unconfirmed loser; everything else is a no-op.
func (s *service) HandleBroadcastFlag(ctx context.Context, input *HandleBroadcastFlagInput) (*HandleBroadcastFlagOutput, error) {
	handle, err := s.registry.ByGroup(input.PresenceGroupID)
	if errors.Is(err, game.ErrSessionNotFound) {
		return &HandleBroadcastFlagOutput{}, nil
	}
	if err != nil {
		return nil, err
	}

	output := &HandleBroadcastFlagOutput{}
	err = handle.Do(func(session *game.Session) error {
		output.SessionChannelID = session.SessionChannelID()

		if !input.Enabled {
			return nil
		}

		if !session.IsLoser(input.ParticipantID) {
			return nil
		}

		p, _ := session.Participant(input.ParticipantID)
		if p.IsPenaltyConfirmed {
			return nil
		}

		finished, confirmErr := session.ConfirmPenalty(input.ParticipantID)
		if confirmErr != nil {
			return confirmErr
		}

		output.Confirmed = true
		output.SessionFinished = finished
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}
