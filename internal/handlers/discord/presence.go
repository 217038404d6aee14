package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/camdicebot/camdice/internal/services/camdice"
)

// handleVoiceStateUpdate feeds voice channel movements and camera toggles
// into the camdice service and performs whatever reaction it asks for.
func (b *Bot) handleVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	ctx := context.Background()

	beforeChannel := ""
	beforeVideo := false
	if v.BeforeUpdate != nil {
		beforeChannel = v.BeforeUpdate.ChannelID
		beforeVideo = v.BeforeUpdate.SelfVideo
	}
	afterChannel := v.ChannelID

	// Camera toggle without a channel change
	if afterChannel != "" && afterChannel == beforeChannel {
		if v.SelfVideo == beforeVideo {
			return
		}
		b.handleCameraToggle(ctx, s, v)
		return
	}

	if beforeChannel != "" {
		b.handlePresenceLeave(ctx, s, v, beforeChannel)
	}

	if afterChannel != "" {
		b.handlePresenceJoin(ctx, s, v, afterChannel)
	}
}

// handlePresenceJoin reacts to a user entering a voice channel
func (b *Bot) handlePresenceJoin(ctx context.Context, s *discordgo.Session, v *discordgo.VoiceStateUpdate, voiceChannelID string) {
	output, err := b.camdiceService.HandlePresenceJoin(ctx, &camdice.HandlePresenceJoinInput{
		PresenceGroupID: voiceChannelID,
		ParticipantID:   v.UserID,
	})
	if err != nil {
		log.Printf("Error handling voice channel join for %s: %v", v.UserID, err)
		return
	}

	switch output.Action {
	case camdice.JoinActionRegistered:
		b.announce(s, output.SessionChannelID,
			fmt.Sprintf("%s joined the voice channel and is now in the game. Roll with `/camdice roll`!", mention(v.UserID)))
	case camdice.JoinActionEvictForbidden:
		b.evictFromVoice(s, v.GuildID, v.UserID)
		b.announce(s, output.SessionChannelID,
			fmt.Sprintf("%s left the game earlier and cannot rejoin the voice channel until it ends.", mention(v.UserID)))
	case camdice.JoinActionEvictClosed:
		b.evictFromVoice(s, v.GuildID, v.UserID)
		b.announce(s, output.SessionChannelID,
			fmt.Sprintf("%s cannot join the voice channel: the losers are already decided. Wait for the game to end.", mention(v.UserID)))
	case camdice.JoinActionRemindPenalty:
		b.announce(s, output.SessionChannelID,
			fmt.Sprintf("%s is back! You still owe the penalty: turn your camera on.", mention(v.UserID)))
	}
}

// handlePresenceLeave reacts to a user leaving a voice channel
func (b *Bot) handlePresenceLeave(ctx context.Context, s *discordgo.Session, v *discordgo.VoiceStateUpdate, voiceChannelID string) {
	output, err := b.camdiceService.HandlePresenceLeave(ctx, &camdice.HandlePresenceLeaveInput{
		PresenceGroupID: voiceChannelID,
		ParticipantID:   v.UserID,
	})
	if err != nil {
		log.Printf("Error handling voice channel leave for %s: %v", v.UserID, err)
		return
	}

	switch output.Warning {
	case camdice.LeaveWarningOwesRoll:
		b.announce(s, output.SessionChannelID,
			fmt.Sprintf("%s left the voice channel after rolling. The roll stands; come back for the result!", mention(v.UserID)))
	case camdice.LeaveWarningOwesPenalty:
		b.announce(s, output.SessionChannelID,
			fmt.Sprintf("%s left the voice channel without paying the penalty. The game stays open until the camera goes on.", mention(v.UserID)))
	}
}

// handleCameraToggle reacts to a camera state change inside a voice channel
func (b *Bot) handleCameraToggle(ctx context.Context, s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	output, err := b.camdiceService.HandleBroadcastFlag(ctx, &camdice.HandleBroadcastFlagInput{
		PresenceGroupID: v.ChannelID,
		ParticipantID:   v.UserID,
		Enabled:         v.SelfVideo,
	})
	if err != nil {
		log.Printf("Error handling camera toggle for %s: %v", v.UserID, err)
		return
	}

	if !output.Confirmed {
		return
	}

	message := fmt.Sprintf("%s turned their camera on. Penalty paid!", mention(v.UserID))
	if output.SessionFinished {
		message += " Every loser has paid; the lead can now `/camdice close` the game."
	}
	b.announce(s, output.SessionChannelID, message)
}

// evictFromVoice disconnects a user from voice
func (b *Bot) evictFromVoice(s *discordgo.Session, guildID, userID string) {
	if err := s.GuildMemberMove(guildID, userID, nil); err != nil {
		log.Printf("Failed to disconnect %s from voice: %v", userID, err)
	}
}

// announce sends a plain message to the session's command channel
func (b *Bot) announce(s *discordgo.Session, channelID, message string) {
	if channelID == "" {
		return
	}

	if _, err := s.ChannelMessageSend(channelID, message); err != nil {
		log.Printf("Failed to send message to channel %s: %v", channelID, err)
	}
}
