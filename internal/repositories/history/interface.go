package history

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/camdicebot/camdice/internal/repositories/history Repository

import (
	"context"
)

// Repository defines the interface for session outcome persistence
type Repository interface {
	// AddRecord persists a finished session's outcome
	AddRecord(ctx context.Context, input *AddRecordInput) error

	// GetRecord retrieves a record by ID
	GetRecord(ctx context.Context, input *GetRecordInput) (*GetRecordOutput, error)

	// GetRecordsForGroup retrieves the most recent records for a
	// presence group, newest first
	GetRecordsForGroup(ctx context.Context, input *GetRecordsForGroupInput) (*GetRecordsForGroupOutput, error)
}
