package game

import (
	"sort"
	"time"

	"github.com/camdicebot/camdice/internal/dice"
	"github.com/camdicebot/camdice/internal/models"
)

// DiceSides is the die used for every roll in a session.
const DiceSides = 6

// TieGroup is a set of participants who rolled the same value and must
// re-roll because their group overflows the remaining loser slots.
type TieGroup struct {
	// RollValue is the tied roll
	RollValue int

	// ParticipantIDs are the tied participants, sorted
	ParticipantIDs []string
}

// Config holds the inputs for a new session
type Config struct {
	// SessionChannelID is the companion command channel
	SessionChannelID string

	// PresenceGroupID is the grouping channel whose membership drives
	// participation
	PresenceGroupID string

	// LeadParticipantID is the participant creating the session
	LeadParticipantID string

	// MemberIDs is the snapshot of current presence-group members
	MemberIDs []string

	// LossQuota is the number of participants who will lose
	LossQuota int

	// Roller draws the dice values
	Roller dice.Roller

	// CreatedAt is when the session started
	CreatedAt time.Time
}

// Session is the state machine for one elimination dice game. It is pure
// in-memory state: no I/O, no locking. Callers serialize access per
// session through the Registry.
type Session struct {
	sessionChannelID  string
	presenceGroupID   string
	leadParticipantID string
	lossQuota         int
	createdAt         time.Time

	participants map[string]*models.ParticipantState
	losers       map[string]*models.ParticipantState
	forbidden    map[string]*models.ParticipantState

	rollingClosed bool
	finished      bool

	roller dice.Roller
}

// NewSession creates a session from a snapshot of presence-group members.
func NewSession(cfg *Config) (*Session, error) {
	if cfg.LossQuota < 1 || cfg.LossQuota >= len(cfg.MemberIDs) {
		return nil, ErrInvalidQuota
	}

	participants := make(map[string]*models.ParticipantState, len(cfg.MemberIDs))
	for _, id := range cfg.MemberIDs {
		participants[id] = models.NewParticipantState(id)
	}

	return &Session{
		sessionChannelID:  cfg.SessionChannelID,
		presenceGroupID:   cfg.PresenceGroupID,
		leadParticipantID: cfg.LeadParticipantID,
		lossQuota:         cfg.LossQuota,
		createdAt:         cfg.CreatedAt,
		participants:      participants,
		losers:            make(map[string]*models.ParticipantState),
		forbidden:         make(map[string]*models.ParticipantState),
		roller:            cfg.Roller,
	}, nil
}

// SessionChannelID returns the companion command channel.
func (s *Session) SessionChannelID() string {
	return s.sessionChannelID
}

// PresenceGroupID returns the grouping channel the session is scoped to.
func (s *Session) PresenceGroupID() string {
	return s.presenceGroupID
}

// LeadParticipantID returns the participant who created the session.
func (s *Session) LeadParticipantID() string {
	return s.leadParticipantID
}

// LossQuota returns the configured number of losers.
func (s *Session) LossQuota() int {
	return s.lossQuota
}

// CreatedAt returns when the session started.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// IsRollingClosed reports whether the loser set is final.
func (s *Session) IsRollingClosed() bool {
	return s.rollingClosed
}

// IsFinished reports whether rolling is closed and every loser has
// confirmed the penalty.
func (s *Session) IsFinished() bool {
	return s.finished
}

// Participant returns the state for an active contestant.
func (s *Session) Participant(participantID string) (*models.ParticipantState, bool) {
	p, ok := s.participants[participantID]
	return p, ok
}

// IsParticipant reports whether the participant is an active contestant.
func (s *Session) IsParticipant(participantID string) bool {
	_, ok := s.participants[participantID]
	return ok
}

// IsForbidden reports whether the participant left or was removed.
func (s *Session) IsForbidden(participantID string) bool {
	_, ok := s.forbidden[participantID]
	return ok
}

// IsLoser reports whether the participant is in the losing set.
func (s *Session) IsLoser(participantID string) bool {
	_, ok := s.losers[participantID]
	return ok
}

// Losers returns the current losing set sorted by participant ID.
func (s *Session) Losers() []models.LoserResult {
	out := make([]models.LoserResult, 0, len(s.losers))
	for _, p := range s.losers {
		out = append(out, models.LoserResult{
			ParticipantID: p.ParticipantID,
			Roll:          p.Roll,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out
}

// NotRolled returns the contestants still owing a roll, sorted.
func (s *Session) NotRolled() []string {
	var out []string
	for _, p := range s.participants {
		if !p.HasRolled() {
			out = append(out, p.ParticipantID)
		}
	}
	sort.Strings(out)
	return out
}

// ParticipantCount returns the size of the active contestant pool.
func (s *Session) ParticipantCount() int {
	return len(s.participants)
}

// SubmitRoll draws a die for the participant and resolves the session
// state. It returns the drawn value and, when resolution detects an
// unresolved tie, the group that must re-roll.
func (s *Session) SubmitRoll(participantID string) (int, *TieGroup, error) {
	p, ok := s.participants[participantID]
	if !ok || p.IsForbidden {
		return 0, nil, ErrNotAParticipant
	}

	if p.HasRolled() {
		return 0, nil, ErrAlreadyRolled
	}

	if s.rollingClosed {
		return 0, nil, ErrRollingClosed
	}

	p.Roll = s.roller.Roll(DiceSides)

	return p.Roll, s.resolve(), nil
}

// AddParticipant registers a new contestant while the rolling phase is
// still open. The loss quota is fixed at creation and is not re-validated
// against the grown pool.
func (s *Session) AddParticipant(participantID string) error {
	if s.IsForbidden(participantID) {
		return ErrForbidden
	}

	if s.IsParticipant(participantID) {
		return ErrAlreadyParticipant
	}

	if s.rollingClosed {
		return ErrRollingClosed
	}

	s.participants[participantID] = models.NewParticipantState(participantID)
	return nil
}

// RemoveParticipant marks a contestant forbidden and drops them from the
// pool and the losing set. When the removal shrinks the pool to the loss
// quota while rolling is still open, the session terminates with
// ErrInsufficientParticipants. Otherwise state is re-resolved, since
// removing a non-rolled participant can complete the rolling phase.
func (s *Session) RemoveParticipant(participantID string, reason models.RemovalReason) (*TieGroup, error) {
	p, ok := s.participants[participantID]
	if !ok {
		return nil, ErrNotAParticipant
	}

	p.IsForbidden = true
	s.forbidden[participantID] = p
	delete(s.participants, participantID)
	delete(s.losers, participantID)

	if !s.rollingClosed && len(s.participants) <= s.lossQuota {
		s.finished = true
		return nil, ErrInsufficientParticipants
	}

	return s.resolve(), nil
}

// ConfirmPenalty records a loser's visible penalty confirmation and
// reports whether the session is now finished.
func (s *Session) ConfirmPenalty(participantID string) (bool, error) {
	p, ok := s.losers[participantID]
	if !ok {
		return false, ErrNotALoser
	}

	p.IsPenaltyConfirmed = true
	s.checkFinished()

	return s.finished, nil
}

// AuthorizeClose validates a close request: only the lead may close, and
// a lead who is an unconfirmed loser cannot dodge their penalty by ending
// the game.
func (s *Session) AuthorizeClose(requesterID string) error {
	if requesterID != s.leadParticipantID {
		return ErrNotLead
	}

	if p, ok := s.losers[requesterID]; ok && !p.IsPenaltyConfirmed {
		return ErrPenaltyNotConfirmed
	}

	return nil
}

// resolve runs the resolution procedure after every roll and removal.
//
// Once every open contestant has a roll, the pool is partitioned by roll
// value in ascending order and the remaining loser slots are filled from
// the lowest group up. A group that would overflow the remaining slots is
// re-rolled in full: partial picks would bias among tied participants.
// Groups above the filled quota are closed as safe with their rolls
// standing.
func (s *Session) resolve() *TieGroup {
	if s.rollingClosed {
		s.checkFinished()
		return nil
	}

	var open []*models.ParticipantState
	for _, p := range s.participants {
		if !p.IsRollClosed {
			open = append(open, p)
		}
	}

	for _, p := range open {
		if !p.HasRolled() {
			// not all rolls are in yet
			return nil
		}
	}

	sort.Slice(open, func(i, j int) bool {
		if open[i].Roll != open[j].Roll {
			return open[i].Roll < open[j].Roll
		}
		return open[i].ParticipantID < open[j].ParticipantID
	})

	remaining := s.lossQuota - len(s.losers)

	var tie *TieGroup
	newLosers := 0
	quotaFilled := false

	for start := 0; start < len(open); {
		end := start
		for end < len(open) && open[end].Roll == open[start].Roll {
			end++
		}
		group := open[start:end]
		start = end

		if newLosers == remaining {
			quotaFilled = true
		}

		switch {
		case quotaFilled:
			for _, p := range group {
				p.IsRollClosed = true
			}

		case newLosers+len(group) <= remaining:
			for _, p := range group {
				p.IsLoser = true
				p.IsRollClosed = true
				p.IsPenaltyConfirmed = false
				s.losers[p.ParticipantID] = p
			}
			newLosers += len(group)

		default:
			// unresolvable tie for the last slot(s): the whole group re-rolls
			ids := make([]string, 0, len(group))
			rollValue := group[0].Roll
			for _, p := range group {
				ids = append(ids, p.ParticipantID)
				p.Roll = 0
				p.IsRollClosed = false
			}
			tie = &TieGroup{RollValue: rollValue, ParticipantIDs: ids}
			quotaFilled = true
		}
	}

	if tie == nil {
		s.rollingClosed = true
		s.checkFinished()
	}

	return tie
}

// checkFinished marks the session finished once rolling is closed and
// every loser has confirmed the penalty.
func (s *Session) checkFinished() {
	if !s.rollingClosed {
		return
	}

	for _, p := range s.losers {
		if !p.IsPenaltyConfirmed {
			return
		}
	}

	s.finished = true
}
