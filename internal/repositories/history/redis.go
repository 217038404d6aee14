package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camdicebot/camdice/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	recordKeyPrefix = "camdice:record:"
	groupIndexKey   = "camdice:group:index:" // ZSet of record IDs per presence group, scored by end time
)

// ErrRecordNotFound is returned when a record is not found
var ErrRecordNotFound = errors.New("session record not found")

// Config holds configuration for the Redis history repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed history repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// AddRecord persists a finished session's outcome to Redis
func (r *redisRepository) AddRecord(ctx context.Context, input *AddRecordInput) error {
	if input == nil || input.Record == nil {
		return errors.New("input and record cannot be nil")
	}

	if input.Record.ID == "" {
		return errors.New("record ID cannot be empty")
	}

	// Marshal the record to JSON
	recordJSON, err := json.Marshal(input.Record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	// Create a Redis transaction
	pipe := r.client.Pipeline()

	// Save the record
	recordKey := fmt.Sprintf("%s%s", recordKeyPrefix, input.Record.ID)
	pipe.Set(ctx, recordKey, recordJSON, 0)

	// Index the record under its presence group, scored by end time
	if input.Record.PresenceGroupID != "" {
		indexKey := fmt.Sprintf("%s%s", groupIndexKey, input.Record.PresenceGroupID)
		pipe.ZAdd(ctx, indexKey, redis.Z{
			Score:  float64(input.Record.EndedAt.UnixNano()),
			Member: input.Record.ID,
		})
	}

	// Execute the transaction
	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	return nil
}

// GetRecord retrieves a record by ID from Redis
func (r *redisRepository) GetRecord(ctx context.Context, input *GetRecordInput) (*GetRecordOutput, error) {
	if input == nil || input.RecordID == "" {
		return nil, errors.New("input and record ID cannot be empty")
	}

	recordKey := fmt.Sprintf("%s%s", recordKeyPrefix, input.RecordID)
	recordJSON, err := r.client.Get(ctx, recordKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	var record models.SessionRecord
	if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	return &GetRecordOutput{Record: &record}, nil
}

// GetRecordsForGroup retrieves the most recent records for a presence
// group from Redis, newest first
func (r *redisRepository) GetRecordsForGroup(ctx context.Context, input *GetRecordsForGroupInput) (*GetRecordsForGroupOutput, error) {
	if input == nil || input.PresenceGroupID == "" {
		return nil, errors.New("input and presence group ID cannot be empty")
	}

	stop := int64(-1)
	if input.Limit > 0 {
		stop = int64(input.Limit) - 1
	}

	// Newest first: the index is scored by end time
	indexKey := fmt.Sprintf("%s%s", groupIndexKey, input.PresenceGroupID)
	recordIDs, err := r.client.ZRevRange(ctx, indexKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get record IDs for group: %w", err)
	}

	// If there are no records, return an empty slice
	if len(recordIDs) == 0 {
		return &GetRecordsForGroupOutput{
			Records: []*models.SessionRecord{},
		}, nil
	}

	// Fetch all records in one pipeline
	pipe := r.client.Pipeline()
	recordCommands := make([]*redis.StringCmd, 0, len(recordIDs))

	for _, recordID := range recordIDs {
		recordKey := fmt.Sprintf("%s%s", recordKeyPrefix, recordID)
		recordCommands = append(recordCommands, pipe.Get(ctx, recordKey))
	}

	_, err = pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}

	// Process the results, preserving the index order
	records := make([]*models.SessionRecord, 0, len(recordIDs))
	for i, cmd := range recordCommands {
		recordJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				// Record was deleted between reading the index and fetching it
				continue
			}
			return nil, fmt.Errorf("failed to get record %s: %w", recordIDs[i], err)
		}

		var record models.SessionRecord
		if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %s: %w", recordIDs[i], err)
		}

		records = append(records, &record)
	}

	return &GetRecordsForGroupOutput{
		Records: records,
	}, nil
}
