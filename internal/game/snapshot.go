package game

import (
	"sort"
	"time"
)

// ParticipantSnapshot is the read-only view of one contestant.
type ParticipantSnapshot struct {
	ParticipantID      string
	HasRolled          bool
	Roll               int
	IsLoser            bool
	IsPenaltyConfirmed bool
	IsRollClosed       bool
}

// Snapshot is the read-only view of a session used for status queries.
// It copies state out of the session so callers can render it without
// holding the session's registry lock.
type Snapshot struct {
	SessionChannelID  string
	PresenceGroupID   string
	LeadParticipantID string
	LossQuota         int
	RollingClosed     bool
	Finished          bool
	CreatedAt         time.Time

	// Participants are the active contestants, sorted by ID
	Participants []ParticipantSnapshot

	// Forbidden are the participants who left or were removed, sorted
	Forbidden []string
}

// Snapshot captures the session's current state.
func (s *Session) Snapshot() *Snapshot {
	snap := &Snapshot{
		SessionChannelID:  s.sessionChannelID,
		PresenceGroupID:   s.presenceGroupID,
		LeadParticipantID: s.leadParticipantID,
		LossQuota:         s.lossQuota,
		RollingClosed:     s.rollingClosed,
		Finished:          s.finished,
		CreatedAt:         s.createdAt,
	}

	for _, p := range s.participants {
		snap.Participants = append(snap.Participants, ParticipantSnapshot{
			ParticipantID:      p.ParticipantID,
			HasRolled:          p.HasRolled(),
			Roll:               p.Roll,
			IsLoser:            p.IsLoser,
			IsPenaltyConfirmed: p.IsPenaltyConfirmed,
			IsRollClosed:       p.IsRollClosed,
		})
	}
	sort.Slice(snap.Participants, func(i, j int) bool {
		return snap.Participants[i].ParticipantID < snap.Participants[j].ParticipantID
	})

	for id := range s.forbidden {
		snap.Forbidden = append(snap.Forbidden, id)
	}
	sort.Strings(snap.Forbidden)

	return snap
}
