package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// SessionGateway implements Gateway over a live discordgo session.
// The guild and ticket category are fixed at construction; the rest of
// the codebase never sees raw ids for them.
type SessionGateway struct {
	session          *discordgo.Session
	guildID          string
	ticketCategoryID string
}

func NewSessionGateway(session *discordgo.Session, guildID, ticketCategoryID string) *SessionGateway {
	return &SessionGateway{
		session:          session,
		guildID:          guildID,
		ticketCategoryID: ticketCategoryID,
	}
}

func (g *SessionGateway) SendMessage(ctx context.Context, channelID string, message *discordgo.MessageSend) (*discordgo.Message, error) {
	return g.session.ChannelMessageSendComplex(channelID, message, discordgo.WithContext(ctx))
}

func (g *SessionGateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return g.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (g *SessionGateway) CreateTicketChannel(ctx context.Context, name string, overwrites []*discordgo.PermissionOverwrite) (*discordgo.Channel, error) {
	return g.session.GuildChannelCreateComplex(g.guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             g.ticketCategoryID,
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx))
}

func (g *SessionGateway) GuildMember(ctx context.Context, userID string) (*discordgo.Member, error) {
	return g.session.GuildMember(g.guildID, userID, discordgo.WithContext(ctx))
}

func (g *SessionGateway) RespondEphemeral(ctx context.Context, interaction *discordgo.Interaction, content string) error {
	return g.session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
}
