package discord

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/camdicebot/camdice/internal/services/camdice"
)

// CamdiceCommand handles the /camdice command
type CamdiceCommand struct {
	BaseCommand
	camdiceService camdice.Service
}

// NewCamdiceCommand creates a new camdice command handler
func NewCamdiceCommand(camdiceService camdice.Service) *CamdiceCommand {
	return &CamdiceCommand{
		BaseCommand: BaseCommand{
			Name:        "camdice",
			Description: "Elimination dice game for voice channels",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Start a game with everyone in your voice channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "losers",
							Description: "How many participants will lose",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "roll",
					Description: "Roll your dice",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leave",
					Description: "Leave the game before rolling",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "kick",
					Description: "Kick a participant from the game (lead only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "participant",
							Description: "Participant to kick",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "close",
					Description: "Close the game (lead only)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "forceclose",
					Description: "Close the game unconditionally (admin)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "state",
					Description: "Show the state of the game in this channel",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "games",
					Description: "List all active games (admin)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "history",
					Description: "Show recent game outcomes for your voice channel",
				},
			},
		},
		camdiceService: camdiceService,
	}
}

// Handle processes a Discord interaction for the camdice command
func (c *CamdiceCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name {
		return nil
	}

	channelID := i.ChannelID
	userID := i.Member.User.ID

	var err error
	switch data.Options[0].Name {
	case "start":
		err = c.handleStart(s, i, channelID, userID, data.Options[0].Options)
	case "roll":
		err = c.handleRoll(s, i, channelID, userID)
	case "leave":
		err = c.handleLeave(s, i, channelID, userID)
	case "kick":
		err = c.handleKick(s, i, channelID, userID, data.Options[0].Options)
	case "close":
		err = c.handleClose(s, i, channelID, userID)
	case "forceclose":
		err = c.handleForceClose(s, i, channelID)
	case "state":
		err = c.handleState(s, i, channelID)
	case "games":
		err = c.handleGames(s, i)
	case "history":
		err = c.handleHistory(s, i, userID)
	default:
		err = errors.New("unknown subcommand")
	}

	return err
}

// voiceChannelOf finds the voice channel the user is currently in
func voiceChannelOf(s *discordgo.Session, guildID, userID string) (string, bool) {
	vs, err := s.State.VoiceState(guildID, userID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return "", false
	}
	return vs.ChannelID, true
}

// voiceChannelMembers lists the user IDs currently in a voice channel
func voiceChannelMembers(s *discordgo.Session, guildID, voiceChannelID string) ([]string, error) {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild %s: %w", guildID, err)
	}

	var memberIDs []string
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == voiceChannelID {
			memberIDs = append(memberIDs, vs.UserID)
		}
	}

	return memberIDs, nil
}

// handleStart handles the start subcommand
func (c *CamdiceCommand) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate, channelID, userID string, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	ctx := context.Background()

	voiceChannelID, ok := voiceChannelOf(s, i.GuildID, userID)
	if !ok {
		return RespondWithError(s, i, "You need to connect to a voice channel to start a game.")
	}

	memberIDs, err := voiceChannelMembers(s, i.GuildID, voiceChannelID)
	if err != nil {
		log.Printf("Error listing voice channel members: %v", err)
		return RespondWithError(s, i, "Failed to read the voice channel members.")
	}

	lossQuota := 0
	for _, opt := range opts {
		if opt.Name == "losers" {
			lossQuota = int(opt.IntValue())
		}
	}

	output, err := c.camdiceService.CreateSession(ctx, &camdice.CreateSessionInput{
		SessionChannelID:  channelID,
		PresenceGroupID:   voiceChannelID,
		LeadParticipantID: userID,
		MemberIDs:         memberIDs,
		LossQuota:         lossQuota,
	})
	if err != nil {
		return RespondWithError(s, i, userMessage(err))
	}

	return RespondWithEmbed(s, i,
		"Game started!",
		fmt.Sprintf("Everyone in <#%s> rolls a die; the lowest %d will lose and owe a camera-on penalty. Roll with `/camdice roll`. You can `/camdice leave` before rolling.",
			voiceChannelID, lossQuota),
		snapshotFields(output.Snapshot))
}

// handleRoll handles the roll subcommand
func (c *CamdiceCommand) handleRoll(s *discordgo.Session, i *discordgo.InteractionCreate, channelID, userID string) error {
	ctx := context.Background()

	output, err := c.camdiceService.SubmitRoll(ctx, &camdice.SubmitRollInput{
		SessionChannelID: channelID,
		ParticipantID:    userID,
	})
	if err != nil {
		return RespondWithError(s, i, userMessage(err))
	}

	description := fmt.Sprintf("%s rolled a **%d**.\n\n%s", mention(userID), output.RollValue,
		describeRollState(output.TieGroup, output.RollingClosed, output.Losers, output.NotRolled))

	return RespondWithEmbed(s, i, "Dice roll", description, nil)
}

// handleLeave handles the leave subcommand
func (c *CamdiceCommand) handleLeave(s *discordgo.Session, i *discordgo.InteractionCreate, channelID, userID string) error {
	ctx := context.Background()

	output, err := c.camdiceService.LeaveSession(ctx, &camdice.LeaveSessionInput{
		SessionChannelID: channelID,
		ParticipantID:    userID,
	})
	if err != nil {
		return RespondWithError(s, i, userMessage(err))
	}

	description := fmt.Sprintf("%s left the game and cannot rejoin until it ends.\n\n%s", mention(userID),
		describeRollState(output.TieGroup, output.RollingClosed, output.Losers, output.NotRolled))

	return RespondWithEmbed(s, i, "Participant left", description, nil)
}

// handleKick handles the kick subcommand
func (c *CamdiceCommand) handleKick(s *discordgo.Session, i *discordgo.InteractionCreate, channelID, userID string, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	ctx := context.Background()

	targetID := ""
	for _, opt := range opts {
		if opt.Name == "participant" {
			targetID = opt.UserValue(s).ID
		}
	}

	if targetID == "" {
		return RespondWithError(s, i, "No participant selected.")
	}

	output, err := c.camdiceService.KickParticipant(ctx, &camdice.KickParticipantInput{
		SessionChannelID: channelID,
		RequesterID:      userID,
		TargetID:         targetID,
	})
	if err != nil {
		return RespondWithError(s, i, userMessage(err))
	}

	description := fmt.Sprintf("%s was kicked from the game and cannot rejoin until it ends.\n\n%s", mention(targetID),
		describeRollState(output.TieGroup, output.RollingClosed, output.Losers, output.NotRolled))

	return RespondWithEmbed(s, i, "Participant kicked", description, nil)
}

// handleClose handles the close subcommand
func (c *CamdiceCommand) handleClose(s *discordgo.Session, i *discordgo.InteractionCreate, channelID, userID string) error {
	ctx := context.Background()

	output, err := c.camdiceService.CloseSession(ctx, &camdice.CloseSessionInput{
		SessionChannelID: channelID,
		RequesterID:      userID,
	})
	if err != nil {
		return RespondWithError(s, i, userMessage(err))
	}

	return RespondWithEmbed(s, i, "Game closed", "The game has ended and the voice channel is open again.", recordFields(output.Record))
}

// handleForceClose handles the forceclose subcommand. Who may run it is
// decided by the guild's command permissions, not here.
func (c *CamdiceCommand) handleForceClose(s *discordgo.Session, i *discordgo.InteractionCreate, channelID string) error {
	ctx := context.Background()

	output, err := c.camdiceService.ForceCloseSession(ctx, &camdice.ForceCloseSessionInput{
		SessionChannelID: channelID,
	})
	if err != nil {
		return RespondWithError(s, i, userMessage(err))
	}

	return RespondWithEmbed(s, i, "Game force-closed", "The game has been ended by an admin.", recordFields(output.Record))
}

// handleState handles the state subcommand
func (c *CamdiceCommand) handleState(s *discordgo.Session, i *discordgo.InteractionCreate, channelID string) error {
	ctx := context.Background()

	output, err := c.camdiceService.DescribeSession(ctx, &camdice.DescribeSessionInput{
		SessionChannelID: channelID,
	})
	if err != nil {
		return RespondWithError(s, i, userMessage(err))
	}

	return RespondWithEmbed(s, i, "Game state", describeSnapshot(output.Snapshot), snapshotFields(output.Snapshot))
}

// handleGames handles the games subcommand
func (c *CamdiceCommand) handleGames(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	output, err := c.camdiceService.ListSessions(ctx, &camdice.ListSessionsInput{})
	if err != nil {
		return RespondWithError(s, i, userMessage(err))
	}

	if len(output.Snapshots) == 0 {
		return RespondWithEphemeralMessage(s, i, "No active games at the moment.")
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(output.Snapshots))
	for _, snap := range output.Snapshots {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("Game in #%s", snap.SessionChannelID),
			Value:  describeSnapshot(snap),
			Inline: false,
		})
	}

	return RespondWithEmbed(s, i, "Active games", fmt.Sprintf("%d active game(s)", len(output.Snapshots)), fields)
}

// handleHistory handles the history subcommand
func (c *CamdiceCommand) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate, userID string) error {
	ctx := context.Background()

	voiceChannelID, ok := voiceChannelOf(s, i.GuildID, userID)
	if !ok {
		return RespondWithError(s, i, "You need to connect to a voice channel to see its game history.")
	}

	output, err := c.camdiceService.GetHistory(ctx, &camdice.GetHistoryInput{
		PresenceGroupID: voiceChannelID,
		Limit:           10,
	})
	if err != nil {
		log.Printf("Error getting session history: %v", err)
		return RespondWithError(s, i, "Failed to load the game history.")
	}

	if len(output.Records) == 0 {
		return RespondWithEphemeralMessage(s, i, "No finished games recorded for this voice channel yet.")
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(output.Records))
	for _, record := range output.Records {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s — %s", record.EndedAt.Format("2006-01-02 15:04"), record.Outcome),
			Value:  describeRecord(record),
			Inline: false,
		})
	}

	return RespondWithEmbed(s, i, "Recent games", fmt.Sprintf("Last %d game(s) in <#%s>", len(output.Records), voiceChannelID), fields)
}
