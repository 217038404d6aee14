package discord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/camdicebot/camdice/internal/game"
	"github.com/camdicebot/camdice/internal/models"
)

// mention formats a user ID as a Discord mention
func mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

// mentionList formats user IDs as comma-separated mentions
func mentionList(userIDs []string) string {
	mentions := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		mentions = append(mentions, mention(id))
	}
	return strings.Join(mentions, ", ")
}

// userMessage turns a game error into a message fit for the channel
func userMessage(err error) string {
	var gameErr game.GameError
	if errors.As(err, &gameErr) {
		switch gameErr {
		case game.ErrInvalidQuota:
			return "The number of losers must be at least 1 and below the number of people in the voice channel."
		case game.ErrNotAParticipant:
			return "You (or the target) are not part of this game."
		case game.ErrAlreadyRolled:
			return "You already rolled. Wait for the others!"
		case game.ErrRollingClosed:
			return "The rolling phase is over; the losers are already decided."
		case game.ErrNotALoser:
			return "Only a loser can do that."
		case game.ErrNotLead:
			return "Only the game lead can do that."
		case game.ErrPenaltyNotConfirmed:
			return "Pay your penalty first: turn your camera on."
		case game.ErrForbidden:
			return "You left this game and cannot rejoin until it ends."
		case game.ErrAlreadyInSession:
			return "There is already an active game for this voice channel."
		case game.ErrSessionNotFound:
			return "There is no active game in this channel. Start one with `/camdice start`."
		case game.ErrLeadCannotLeave:
			return "The lead cannot leave the game. Use `/camdice close` instead."
		case game.ErrRollCommitted:
			return "You already rolled, so you are in until the end."
		case game.ErrCannotKickSelf:
			return "You cannot kick yourself. Use `/camdice close` to end the game."
		case game.ErrCannotKickSafe:
			return "That participant is safe; only losers can be kicked now."
		case game.ErrInsufficientParticipants:
			return "Too few participants are left to cover the losses. The game has been terminated."
		}
	}

	return "Something went wrong. Please try again."
}

// describeRollState summarizes the session's rolling phase after a roll
// or a removal changed it.
func describeRollState(tie *game.TieGroup, rollingClosed bool, losers []models.LoserResult, notRolled []string) string {
	if tie != nil {
		return fmt.Sprintf("Tie on **%d**! %s must roll again.", tie.RollValue, mentionList(tie.ParticipantIDs))
	}

	if rollingClosed {
		lines := make([]string, 0, len(losers)+1)
		lines = append(lines, "The losers are decided! Turn your camera on to pay the penalty:")
		for _, loser := range losers {
			lines = append(lines, fmt.Sprintf("• %s rolled a %d", mention(loser.ParticipantID), loser.Roll))
		}
		return strings.Join(lines, "\n")
	}

	if len(notRolled) == 0 {
		return "Waiting for the game to resolve."
	}

	return fmt.Sprintf("Still waiting on: %s", mentionList(notRolled))
}

// describeSnapshot renders a one-paragraph summary of a session
func describeSnapshot(snap *game.Snapshot) string {
	phase := "rolling"
	if snap.Finished {
		phase = "finished, waiting for close"
	} else if snap.RollingClosed {
		phase = "losers decided, waiting for penalties"
	}

	return fmt.Sprintf("Lead: %s • Voice channel: <#%s> • Losers: %d of %d • Phase: %s",
		mention(snap.LeadParticipantID), snap.PresenceGroupID, snap.LossQuota, len(snap.Participants), phase)
}

// snapshotFields renders the per-participant state of a session
func snapshotFields(snap *game.Snapshot) []*discordgo.MessageEmbedField {
	lines := make([]string, 0, len(snap.Participants))
	for _, p := range snap.Participants {
		switch {
		case p.IsLoser && p.IsPenaltyConfirmed:
			lines = append(lines, fmt.Sprintf("%s — lost with a %d, penalty paid", mention(p.ParticipantID), p.Roll))
		case p.IsLoser:
			lines = append(lines, fmt.Sprintf("%s — lost with a %d, camera still off", mention(p.ParticipantID), p.Roll))
		case p.IsRollClosed:
			lines = append(lines, fmt.Sprintf("%s — safe with a %d", mention(p.ParticipantID), p.Roll))
		case p.HasRolled:
			lines = append(lines, fmt.Sprintf("%s — rolled a %d", mention(p.ParticipantID), p.Roll))
		default:
			lines = append(lines, fmt.Sprintf("%s — has not rolled", mention(p.ParticipantID)))
		}
	}

	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Participants",
			Value:  strings.Join(lines, "\n"),
			Inline: false,
		},
	}

	if len(snap.Forbidden) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Out of the game",
			Value:  mentionList(snap.Forbidden),
			Inline: false,
		})
	}

	return fields
}

// recordFields renders a persisted session outcome
func recordFields(record *models.SessionRecord) []*discordgo.MessageEmbedField {
	if record == nil {
		return nil
	}

	return []*discordgo.MessageEmbedField{
		{
			Name:   "Outcome",
			Value:  describeRecord(record),
			Inline: false,
		},
	}
}

// describeRecord renders a persisted session outcome as a single block
func describeRecord(record *models.SessionRecord) string {
	loserLine := "No losers were decided."
	if len(record.Losers) > 0 {
		parts := make([]string, 0, len(record.Losers))
		for _, loser := range record.Losers {
			parts = append(parts, fmt.Sprintf("%s (%d)", mention(loser.ParticipantID), loser.Roll))
		}
		loserLine = "Losers: " + strings.Join(parts, ", ")
	}

	return fmt.Sprintf("%d participant(s), %d loser slot(s), led by %s.\n%s",
		record.ParticipantCount, record.LossQuota, mention(record.LeadParticipantID), loserLine)
}
