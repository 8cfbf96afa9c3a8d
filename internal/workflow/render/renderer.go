// Package render converts an inbound application into the review
// channel message: the embed plus the persistent claim button.
package render

import (
	"github.com/bwmarrin/discordgo"

	"whitelist-bot/internal/models"
	"whitelist-bot/internal/workflow/identity"
)

// ClaimButtonID is the fixed custom id for the claim control. It is
// the same for every message ever posted, which is what lets a single
// handler registered at startup keep old messages clickable across
// restarts.
const ClaimButtonID = "claim_button"

const (
	embedTitle = "Whitelist Application Review"
	embedColor = 5793266
	separator  = "​"
)

// Render builds the review message for an application. Field order is
// fixed; absent attributes render the sentinel. No validation beyond
// presence happens here: a malformed user id is rendered as-is and
// rejected by the identity codec at decode time instead.
func Render(app models.Application) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title: embedTitle,
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "AI Summary", Value: models.OrDefault(app.AISummary)},
			{Name: "AI Decision", Value: models.OrDefault(app.AIDecision), Inline: true},
			{Name: "AI Context", Value: models.OrDefault(app.AIContext), Inline: true},
			{Name: "AI Red Flags", Value: models.OrDefault(app.AIRedFlags)},
			{Name: separator, Value: separator},
			{Name: "Character Name", Value: models.OrDefault(app.CharacterName), Inline: true},
			{Name: "Real Age", Value: models.OrDefault(app.RealAge), Inline: true},
			identity.Encode(models.OrDefault(app.ApplicantID)),
			{Name: "Steam Link", Value: models.OrDefault(app.SteamLink)},
			{Name: "Sheet Row", Value: models.OrDefault(app.SheetRow)},
		},
	}

	if app.AvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: app.AvatarURL}
	}

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Claim Application",
						Style:    discordgo.SuccessButton,
						CustomID: ClaimButtonID,
					},
				},
			},
		},
	}
}
