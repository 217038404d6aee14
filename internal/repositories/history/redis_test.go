package history

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/camdicebot/camdice/internal/models"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	// Create a Redis client connected to the miniredis server
	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	// Create the repository
	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo

	// Set up test time
	s.testNow = time.Date(2025, 6, 1, 21, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

// testRecord builds a session record ending at the given offset from the
// suite's base time
func (s *RedisRepositoryTestSuite) testRecord(id, groupID string, endOffset time.Duration) *models.SessionRecord {
	return &models.SessionRecord{
		ID:                id,
		SessionChannelID:  "test-channel-id",
		PresenceGroupID:   groupID,
		LeadParticipantID: "lead-id",
		LossQuota:         1,
		ParticipantCount:  4,
		Outcome:           models.SessionOutcomeCompleted,
		Losers: []models.LoserResult{
			{ParticipantID: "loser-id", Roll: 1},
		},
		StartedAt: s.testNow.Add(endOffset - time.Hour),
		EndedAt:   s.testNow.Add(endOffset),
	}
}

func (s *RedisRepositoryTestSuite) TestAddAndGetRecord() {
	record := s.testRecord("test-record-id", "voice-channel-1", 0)

	// Save the record
	err := s.repo.AddRecord(context.Background(), &AddRecordInput{
		Record: record,
	})
	s.Require().NoError(err)

	// Get the record
	output, err := s.repo.GetRecord(context.Background(), &GetRecordInput{
		RecordID: "test-record-id",
	})
	s.Require().NoError(err)
	s.Require().NotNil(output.Record)

	// Verify the record properties
	s.Equal("test-record-id", output.Record.ID)
	s.Equal("test-channel-id", output.Record.SessionChannelID)
	s.Equal("voice-channel-1", output.Record.PresenceGroupID)
	s.Equal("lead-id", output.Record.LeadParticipantID)
	s.Equal(1, output.Record.LossQuota)
	s.Equal(4, output.Record.ParticipantCount)
	s.Equal(models.SessionOutcomeCompleted, output.Record.Outcome)
	s.Require().Len(output.Record.Losers, 1)
	s.Equal("loser-id", output.Record.Losers[0].ParticipantID)
	s.Equal(1, output.Record.Losers[0].Roll)
	s.Equal(s.testNow.Unix(), output.Record.EndedAt.Unix())
}

func (s *RedisRepositoryTestSuite) TestAddRecordWithoutID() {
	record := s.testRecord("", "voice-channel-1", 0)

	err := s.repo.AddRecord(context.Background(), &AddRecordInput{
		Record: record,
	})
	s.Require().Error(err)
}

func (s *RedisRepositoryTestSuite) TestGetRecordsForGroup_NewestFirst() {
	// Save three records for the same group, ending an hour apart
	for i, id := range []string{"record-1", "record-2", "record-3"} {
		record := s.testRecord(id, "voice-channel-1", time.Duration(i)*time.Hour)
		err := s.repo.AddRecord(context.Background(), &AddRecordInput{
			Record: record,
		})
		s.Require().NoError(err)
	}

	// And one record for a different group
	err := s.repo.AddRecord(context.Background(), &AddRecordInput{
		Record: s.testRecord("other-record", "voice-channel-2", 0),
	})
	s.Require().NoError(err)

	// Get all records for the first group
	output, err := s.repo.GetRecordsForGroup(context.Background(), &GetRecordsForGroupInput{
		PresenceGroupID: "voice-channel-1",
	})
	s.Require().NoError(err)
	s.Require().Len(output.Records, 3)

	// Verify newest-first ordering
	s.Equal("record-3", output.Records[0].ID)
	s.Equal("record-2", output.Records[1].ID)
	s.Equal("record-1", output.Records[2].ID)
}

func (s *RedisRepositoryTestSuite) TestGetRecordsForGroup_Limit() {
	for i, id := range []string{"record-1", "record-2", "record-3"} {
		record := s.testRecord(id, "voice-channel-1", time.Duration(i)*time.Hour)
		err := s.repo.AddRecord(context.Background(), &AddRecordInput{
			Record: record,
		})
		s.Require().NoError(err)
	}

	// Limit the result to the two most recent records
	output, err := s.repo.GetRecordsForGroup(context.Background(), &GetRecordsForGroupInput{
		PresenceGroupID: "voice-channel-1",
		Limit:           2,
	})
	s.Require().NoError(err)
	s.Require().Len(output.Records, 2)
	s.Equal("record-3", output.Records[0].ID)
	s.Equal("record-2", output.Records[1].ID)
}

func (s *RedisRepositoryTestSuite) TestGetRecordsForGroup_Empty() {
	output, err := s.repo.GetRecordsForGroup(context.Background(), &GetRecordsForGroupInput{
		PresenceGroupID: "no-games-here",
	})
	s.Require().NoError(err)
	s.Require().Empty(output.Records)
}

func (s *RedisRepositoryTestSuite) TestGetNonExistentRecord() {
	_, err := s.repo.GetRecord(context.Background(), &GetRecordInput{
		RecordID: "non-existent-record",
	})
	s.Require().Error(err)
	s.Equal(ErrRecordNotFound, err)
}
