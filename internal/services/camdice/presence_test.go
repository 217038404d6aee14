package camdice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	clockMocks "github.com/camdicebot/camdice/internal/common/clock/mocks"
	uuidMocks "github.com/camdicebot/camdice/internal/common/uuid/mocks"
	diceMocks "github.com/camdicebot/camdice/internal/dice/mocks"
	"github.com/camdicebot/camdice/internal/game"
	historyMocks "github.com/camdicebot/camdice/internal/repositories/history/mocks"
)

type PresenceAdapterTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockHistoryRepo *historyMocks.MockRepository
	mockDiceRoller  *diceMocks.MockRoller
	mockClock       *clockMocks.MockClock
	mockUUID        *uuidMocks.MockUUID
	registry        *game.Registry
	camdiceService  Service
	ctx             context.Context

	testChannelID string
	testVoiceID   string
	testLeadID    string
	testMemberIDs []string
}

func (s *PresenceAdapterTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockHistoryRepo = historyMocks.NewMockRepository(s.mockCtrl)
	s.mockDiceRoller = diceMocks.NewMockRoller(s.mockCtrl)
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.mockUUID = uuidMocks.NewMockUUID(s.mockCtrl)
	s.registry = game.NewRegistry()

	s.ctx = context.Background()

	s.testChannelID = "test-text-channel"
	s.testVoiceID = "test-voice-channel"
	s.testLeadID = "lead-id"
	s.testMemberIDs = []string{"lead-id", "bob-id", "carol-id"}

	s.mockClock.EXPECT().Now().
		Return(time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)).
		AnyTimes()

	svc, err := New(&Config{
		Registry:      s.registry,
		HistoryRepo:   s.mockHistoryRepo,
		DiceRoller:    s.mockDiceRoller,
		Clock:         s.mockClock,
		UUIDGenerator: s.mockUUID,
	})
	s.Require().NoError(err)
	s.camdiceService = svc
}

func (s *PresenceAdapterTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestPresenceAdapterTestSuite(t *testing.T) {
	suite.Run(t, new(PresenceAdapterTestSuite))
}

func (s *PresenceAdapterTestSuite) createTestSession() {
	_, err := s.camdiceService.CreateSession(s.ctx, &CreateSessionInput{
		SessionChannelID:  s.testChannelID,
		PresenceGroupID:   s.testVoiceID,
		LeadParticipantID: s.testLeadID,
		MemberIDs:         s.testMemberIDs,
		LossQuota:         1,
	})
	s.Require().NoError(err)
}

// closeRolling rolls for every member so the loser set becomes final.
// bob loses with the lowest roll.
func (s *PresenceAdapterTestSuite) closeRolling() {
	for i, memberID := range s.testMemberIDs {
		values := []int{4, 1, 6}
		s.mockDiceRoller.EXPECT().Roll(game.DiceSides).Return(values[i])

		_, err := s.camdiceService.SubmitRoll(s.ctx, &SubmitRollInput{
			SessionChannelID: s.testChannelID,
			ParticipantID:    memberID,
		})
		s.Require().NoError(err)
	}
}

func (s *PresenceAdapterTestSuite) TestHandlePresenceJoin_NoSession() {
	output, err := s.camdiceService.HandlePresenceJoin(s.ctx, &HandlePresenceJoinInput{
		PresenceGroupID: "idle-voice-channel",
		ParticipantID:   "dave-id",
	})

	s.Require().NoError(err)
	s.Equal(JoinActionNone, output.Action)
	s.Empty(output.SessionChannelID)
}

func (s *PresenceAdapterTestSuite) TestHandlePresenceJoin_RegistersNewcomer() {
	s.createTestSession()

	output, err := s.camdiceService.HandlePresenceJoin(s.ctx, &HandlePresenceJoinInput{
		PresenceGroupID: s.testVoiceID,
		ParticipantID:   "dave-id",
	})

	s.Require().NoError(err)
	s.Equal(JoinActionRegistered, output.Action)
	s.Equal(s.testChannelID, output.SessionChannelID)

	// The newcomer is a real contestant now
	desc, err := s.camdiceService.DescribeSession(s.ctx, &DescribeSessionInput{
		SessionChannelID: s.testChannelID,
	})
	s.Require().NoError(err)
	s.Len(desc.Snapshot.Participants, 4)
}

func (s *PresenceAdapterTestSuite) TestHandlePresenceJoin_ExistingParticipant() {
	s.createTestSession()

	output, err := s.camdiceService.HandlePresenceJoin(s.ctx, &HandlePresenceJoinInput{
		PresenceGroupID: s.testVoiceID,
		ParticipantID:   "bob-id",
	})

	s.Require().NoError(err)
	s.Equal(JoinActionNone, output.Action)
}

func (s *PresenceAdapterTestSuite) TestHandlePresenceJoin_EvictsForbidden() {
	s.createTestSession()

	_, err := s.camdiceService.LeaveSession(s.ctx, &LeaveSessionInput{
		SessionChannelID: s.testChannelID,
		ParticipantID:    "bob-id",
	})
	s.Require().NoError(err)

	output, err := s.camdiceService.HandlePresenceJoin(s.ctx, &HandlePresenceJoinInput{
		PresenceGroupID: s.testVoiceID,
		ParticipantID:   "bob-id",
	})

	s.Require().NoError(err)
	s.Equal(JoinActionEvictForbidden, output.Action)
}

func (s *PresenceAdapterTestSuite) TestHandlePresenceJoin_EvictsOutsiderAfterClose() {
	s.createTestSession()
	s.closeRolling()

	output, err := s.camdiceService.HandlePresenceJoin(s.ctx, &HandlePresenceJoinInput{
		PresenceGroupID: s.testVoiceID,
		ParticipantID:   "dave-id",
	})

	s.Require().NoError(err)
	s.Equal(JoinActionEvictClosed, output.Action)
}

func (s *PresenceAdapterTestSuite) TestHandlePresenceJoin_RemindsUnconfirmedLoser() {
	s.createTestSession()
	s.closeRolling()

	output, err := s.camdiceService.HandlePresenceJoin(s.ctx, &HandlePresenceJoinInput{
		PresenceGroupID: s.testVoiceID,
		ParticipantID:   "bob-id",
	})

	s.Require().NoError(err)
	s.Equal(JoinActionRemindPenalty, output.Action)
}

func (s *PresenceAdapterTestSuite) TestHandlePresenceLeave_NoSession() {
	output, err := s.camdiceService.HandlePresenceLeave(s.ctx, &HandlePresenceLeaveInput{
		PresenceGroupID: "idle-voice-channel",
		ParticipantID:   "dave-id",
	})

	s.Require().NoError(err)
	s.Equal(LeaveWarningNone, output.Warning)
}

func (s *PresenceAdapterTestSuite) TestHandlePresenceLeave_NotImplicitRemoval() {
	s.createTestSession()

	output, err := s.camdiceService.HandlePresenceLeave(s.ctx, &HandlePresenceLeaveInput{
		PresenceGroupID: s.testVoiceID,
		ParticipantID:   "bob-id",
	})

	s.Require().NoError(err)
	s.Equal(LeaveWarningNone, output.Warning)

	// bob is still a contestant
	desc, err := s.camdiceService.DescribeSession(s.ctx, &DescribeSessionInput{
		SessionChannelID: s.testChannelID,
	})
	s.Require().NoError(err)
	s.Len(desc.Snapshot.Participants, 3)
}

func (s *PresenceAdapterTestSuite) TestHandlePresenceLeave_OwesRoll() {
	s.createTestSession()

	s.mockDiceRoller.EXPECT().Roll(game.DiceSides).Return(4)
	_, err := s.camdiceService.SubmitRoll(s.ctx, &SubmitRollInput{
		SessionChannelID: s.testChannelID,
		ParticipantID:    "bob-id",
	})
	s.Require().NoError(err)

	output, err := s.camdiceService.HandlePresenceLeave(s.ctx, &HandlePresenceLeaveInput{
		PresenceGroupID: s.testVoiceID,
		ParticipantID:   "bob-id",
	})

	s.Require().NoError(err)
	s.Equal(LeaveWarningOwesRoll, output.Warning)
}

func (s *PresenceAdapterTestSuite) TestHandlePresenceLeave_OwesPenalty() {
	s.createTestSession()
	s.closeRolling()

	output, err := s.camdiceService.HandlePresenceLeave(s.ctx, &HandlePresenceLeaveInput{
		PresenceGroupID: s.testVoiceID,
		ParticipantID:   "bob-id",
	})

	s.Require().NoError(err)
	s.Equal(LeaveWarningOwesPenalty, output.Warning)
}

func (s *PresenceAdapterTestSuite) TestHandleBroadcastFlag_ConfirmsPenalty() {
	s.createTestSession()
	s.closeRolling()

	output, err := s.camdiceService.HandleBroadcastFlag(s.ctx, &HandleBroadcastFlagInput{
		PresenceGroupID: s.testVoiceID,
		ParticipantID:   "bob-id",
		Enabled:         true,
	})

	s.Require().NoError(err)
	s.True(output.Confirmed)
	s.True(output.SessionFinished)
	s.Equal(s.testChannelID, output.SessionChannelID)
}

func (s *PresenceAdapterTestSuite) TestHandleBroadcastFlag_IgnoresDisable() {
	s.createTestSession()
	s.closeRolling()

	output, err := s.camdiceService.HandleBroadcastFlag(s.ctx, &HandleBroadcastFlagInput{
		PresenceGroupID: s.testVoiceID,
		ParticipantID:   "bob-id",
		Enabled:         false,
	})

	s.Require().NoError(err)
	s.False(output.Confirmed)
}

func (s *PresenceAdapterTestSuite) TestHandleBroadcastFlag_IgnoresSafeParticipant() {
	s.createTestSession()
	s.closeRolling()

	output, err := s.camdiceService.HandleBroadcastFlag(s.ctx, &HandleBroadcastFlagInput{
		PresenceGroupID: s.testVoiceID,
		ParticipantID:   "carol-id",
		Enabled:         true,
	})

	s.Require().NoError(err)
	s.False(output.Confirmed)
}

func (s *PresenceAdapterTestSuite) TestHandleBroadcastFlag_AlreadyConfirmed() {
	s.createTestSession()
	s.closeRolling()

	_, err := s.camdiceService.ConfirmPenalty(s.ctx, &ConfirmPenaltyInput{
		SessionChannelID: s.testChannelID,
		ParticipantID:    "bob-id",
	})
	s.Require().NoError(err)

	output, err := s.camdiceService.HandleBroadcastFlag(s.ctx, &HandleBroadcastFlagInput{
		PresenceGroupID: s.testVoiceID,
		ParticipantID:   "bob-id",
		Enabled:         true,
	})

	s.Require().NoError(err)
	s.False(output.Confirmed)
}

func (s *PresenceAdapterTestSuite) TestHandleBroadcastFlag_NoSession() {
	output, err := s.camdiceService.HandleBroadcastFlag(s.ctx, &HandleBroadcastFlagInput{
		PresenceGroupID: "idle-voice-channel",
		ParticipantID:   "dave-id",
		Enabled:         true,
	})

	s.Require().NoError(err)
	s.False(output.Confirmed)
}
