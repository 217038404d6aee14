package history

import "github.com/camdicebot/camdice/internal/models"

type AddRecordInput struct {
	Record *models.SessionRecord
}

type GetRecordInput struct {
	RecordID string
}

type GetRecordOutput struct {
	Record *models.SessionRecord
}

type GetRecordsForGroupInput struct {
	PresenceGroupID string

	// Limit caps the number of records returned; 0 means all
	Limit int
}

type GetRecordsForGroupOutput struct {
	Records []*models.SessionRecord
}
