package camdice

import (
	"context"
	"errors"
	"fmt"

	"github.com/camdicebot/camdice/internal/common/clock"
	"github.com/camdicebot/camdice/internal/common/uuid"
	"github.com/camdicebot/camdice/internal/dice"
	"github.com/camdicebot/camdice/internal/game"
	"github.com/camdicebot/camdice/internal/models"
	historyRepo "github.com/camdicebot/camdice/internal/repositories/history"
)

// service implements the Service interface
type service struct {
	registry    *game.Registry
	historyRepo historyRepo.Repository
	diceRoller  dice.Roller
	clock       clock.Clock
	uuider      uuid.UUID
}

// New creates a new camdice service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Registry == nil {
		return nil, ErrNilRegistry
	}

	if cfg.HistoryRepo == nil {
		return nil, ErrNilHistoryRepo
	}

	if cfg.DiceRoller == nil {
		return nil, ErrNilDiceRoller
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	return &service{
		registry:    cfg.Registry,
		historyRepo: cfg.HistoryRepo,
		diceRoller:  cfg.DiceRoller,
		clock:       cfg.Clock,
		uuider:      cfg.UUIDGenerator,
	}, nil
}

// CreateSession starts a new elimination game over a presence group
func (s *service) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	session, err := game.NewSession(&game.Config{
		SessionChannelID:  input.SessionChannelID,
		PresenceGroupID:   input.PresenceGroupID,
		LeadParticipantID: input.LeadParticipantID,
		MemberIDs:         input.MemberIDs,
		LossQuota:         input.LossQuota,
		Roller:            s.diceRoller,
		CreatedAt:         s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.registry.Add(session); err != nil {
		return nil, err
	}

	return &CreateSessionOutput{
		Snapshot: session.Snapshot(),
	}, nil
}

// SubmitRoll draws a die for a participant and resolves the session
func (s *service) SubmitRoll(ctx context.Context, input *SubmitRollInput) (*SubmitRollOutput, error) {
	handle, err := s.registry.ByChannel(input.SessionChannelID)
	if err != nil {
		return nil, err
	}

	output := &SubmitRollOutput{}
	err = handle.Do(func(session *game.Session) error {
		value, tie, rollErr := session.SubmitRoll(input.ParticipantID)
		if rollErr != nil {
			return rollErr
		}

		output.RollValue = value
		output.TieGroup = tie
		output.RollingClosed = session.IsRollingClosed()
		output.SessionFinished = session.IsFinished()
		output.Losers = session.Losers()
		output.NotRolled = session.NotRolled()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// LeaveSession removes the requesting participant from a session.
// The lead cannot leave, and neither can a participant whose roll is
// already committed.
func (s *service) LeaveSession(ctx context.Context, input *LeaveSessionInput) (*LeaveSessionOutput, error) {
	handle, err := s.registry.ByChannel(input.SessionChannelID)
	if err != nil {
		return nil, err
	}

	output := &LeaveSessionOutput{}
	err = handle.Do(func(session *game.Session) error {
		p, ok := session.Participant(input.ParticipantID)
		if !ok {
			return game.ErrNotAParticipant
		}

		if input.ParticipantID == session.LeadParticipantID() {
			return game.ErrLeadCannotLeave
		}

		if p.HasRolled() {
			return game.ErrRollCommitted
		}

		tie, removeErr := session.RemoveParticipant(input.ParticipantID, models.RemovalReasonLeft)
		if removeErr != nil {
			return s.handleRemovalFailure(ctx, session, removeErr)
		}

		output.TieGroup = tie
		output.RollingClosed = session.IsRollingClosed()
		output.SessionFinished = session.IsFinished()
		output.Losers = session.Losers()
		output.NotRolled = session.NotRolled()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// KickParticipant removes another participant on the lead's behalf
func (s *service) KickParticipant(ctx context.Context, input *KickParticipantInput) (*KickParticipantOutput, error) {
	handle, err := s.registry.ByChannel(input.SessionChannelID)
	if err != nil {
		return nil, err
	}

	output := &KickParticipantOutput{}
	err = handle.Do(func(session *game.Session) error {
		if !session.IsParticipant(input.TargetID) {
			return game.ErrNotAParticipant
		}

		if input.RequesterID != session.LeadParticipantID() {
			return game.ErrNotLead
		}

		if input.RequesterID == input.TargetID {
			return game.ErrCannotKickSelf
		}

		if requester, ok := session.Participant(input.RequesterID); ok {
			if requester.IsLoser && !requester.IsPenaltyConfirmed {
				return game.ErrPenaltyNotConfirmed
			}
		}

		if session.IsRollingClosed() && !session.IsLoser(input.TargetID) {
			return game.ErrCannotKickSafe
		}

		tie, removeErr := session.RemoveParticipant(input.TargetID, models.RemovalReasonKicked)
		if removeErr != nil {
			return s.handleRemovalFailure(ctx, session, removeErr)
		}

		output.TieGroup = tie
		output.RollingClosed = session.IsRollingClosed()
		output.SessionFinished = session.IsFinished()
		output.Losers = session.Losers()
		output.NotRolled = session.NotRolled()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// ConfirmPenalty records a loser's visible penalty confirmation
func (s *service) ConfirmPenalty(ctx context.Context, input *ConfirmPenaltyInput) (*ConfirmPenaltyOutput, error) {
	handle, err := s.registry.ByChannel(input.SessionChannelID)
	if err != nil {
		return nil, err
	}

	output := &ConfirmPenaltyOutput{}
	err = handle.Do(func(session *game.Session) error {
		finished, confirmErr := session.ConfirmPenalty(input.ParticipantID)
		if confirmErr != nil {
			return confirmErr
		}

		output.SessionFinished = finished
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// CloseSession ends a session on the lead's request
func (s *service) CloseSession(ctx context.Context, input *CloseSessionInput) (*CloseSessionOutput, error) {
	handle, err := s.registry.ByChannel(input.SessionChannelID)
	if err != nil {
		return nil, err
	}

	output := &CloseSessionOutput{}
	err = handle.Do(func(session *game.Session) error {
		if authErr := session.AuthorizeClose(input.RequesterID); authErr != nil {
			return authErr
		}

		outcome := models.SessionOutcomeClosed
		if session.IsFinished() {
			outcome = models.SessionOutcomeCompleted
		}

		record, recordErr := s.recordOutcome(ctx, session, outcome)
		if recordErr != nil {
			return recordErr
		}

		s.registry.Remove(session.SessionChannelID())
		output.Record = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// ForceCloseSession ends a session unconditionally
func (s *service) ForceCloseSession(ctx context.Context, input *ForceCloseSessionInput) (*ForceCloseSessionOutput, error) {
	handle, err := s.registry.ByChannel(input.SessionChannelID)
	if err != nil {
		return nil, err
	}

	output := &ForceCloseSessionOutput{}
	err = handle.Do(func(session *game.Session) error {
		record, recordErr := s.recordOutcome(ctx, session, models.SessionOutcomeForceClosed)
		if recordErr != nil {
			return recordErr
		}

		s.registry.Remove(session.SessionChannelID())
		output.Record = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// DescribeSession returns a read-only snapshot of one session
func (s *service) DescribeSession(ctx context.Context, input *DescribeSessionInput) (*DescribeSessionOutput, error) {
	handle, err := s.registry.ByChannel(input.SessionChannelID)
	if err != nil {
		return nil, err
	}

	output := &DescribeSessionOutput{}
	err = handle.Do(func(session *game.Session) error {
		output.Snapshot = session.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// ListSessions returns snapshots of every active session
func (s *service) ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error) {
	output := &ListSessionsOutput{}

	for _, channelID := range s.registry.Channels() {
		handle, err := s.registry.ByChannel(channelID)
		if err != nil {
			// session closed between listing and lookup
			continue
		}

		err = handle.Do(func(session *game.Session) error {
			output.Snapshots = append(output.Snapshots, session.Snapshot())
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return output, nil
}

// GetHistory returns recent session outcomes for a presence group
func (s *service) GetHistory(ctx context.Context, input *GetHistoryInput) (*GetHistoryOutput, error) {
	records, err := s.historyRepo.GetRecordsForGroup(ctx, &historyRepo.GetRecordsForGroupInput{
		PresenceGroupID: input.PresenceGroupID,
		Limit:           input.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get session history: %w", err)
	}

	return &GetHistoryOutput{
		Records: records.Records,
	}, nil
}

// handleRemovalFailure terminates the session when a removal shrank the
// pool to the loss quota. The outcome is recorded and the session leaves
// the registry before the fatal error is surfaced, so the caller observes
// both the error and the absence of the session.
func (s *service) handleRemovalFailure(ctx context.Context, session *game.Session, removeErr error) error {
	if !errors.Is(removeErr, game.ErrInsufficientParticipants) {
		return removeErr
	}

	if _, err := s.recordOutcome(ctx, session, models.SessionOutcomeInsufficientParticipants); err != nil {
		return fmt.Errorf("failed to record terminated session: %w", err)
	}

	s.registry.Remove(session.SessionChannelID())
	return removeErr
}

// recordOutcome persists the terminal state of a session
func (s *service) recordOutcome(ctx context.Context, session *game.Session, outcome models.SessionOutcome) (*models.SessionRecord, error) {
	record := &models.SessionRecord{
		ID:                s.uuider.NewUUID(),
		SessionChannelID:  session.SessionChannelID(),
		PresenceGroupID:   session.PresenceGroupID(),
		LeadParticipantID: session.LeadParticipantID(),
		LossQuota:         session.LossQuota(),
		ParticipantCount:  session.ParticipantCount(),
		Outcome:           outcome,
		Losers:            session.Losers(),
		StartedAt:         session.CreatedAt(),
		EndedAt:           s.clock.Now(),
	}

	if err := s.historyRepo.AddRecord(ctx, &historyRepo.AddRecordInput{
		Record: record,
	}); err != nil {
		return nil, fmt.Errorf("failed to save session record: %w", err)
	}

	return record, nil
}
