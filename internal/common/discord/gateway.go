// Package discord wraps the chat-platform client behind a narrow
// interface so workflow components can be tested against a fake
// gateway instead of a live session.
package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Gateway is the outbound surface the workflow components depend on.
// Every call takes a context; implementations must honor its deadline
// so a hung round trip cannot hold a claim lock indefinitely.
type Gateway interface {
	// SendMessage posts a message to a channel and returns the
	// created message.
	SendMessage(ctx context.Context, channelID string, message *discordgo.MessageSend) (*discordgo.Message, error)

	// DeleteMessage removes a message from a channel.
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	// CreateTicketChannel creates a text channel under the configured
	// ticket category with the given permission overwrites.
	CreateTicketChannel(ctx context.Context, name string, overwrites []*discordgo.PermissionOverwrite) (*discordgo.Channel, error)

	// GuildMember resolves a user id to a guild member, or an error
	// if the user is not (or no longer) a member.
	GuildMember(ctx context.Context, userID string) (*discordgo.Member, error)

	// RespondEphemeral acknowledges an interaction with a message
	// visible only to the acting user.
	RespondEphemeral(ctx context.Context, interaction *discordgo.Interaction, content string) error
}
