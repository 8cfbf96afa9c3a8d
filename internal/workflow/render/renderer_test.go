package render

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whitelist-bot/internal/models"
	"whitelist-bot/internal/workflow/identity"
)

func fullApplication() models.Application {
	return models.Application{
		ApplicantID:   "123456789",
		CharacterName: "Ava",
		RealAge:       "25",
		SteamLink:     "https://steamcommunity.com/id/ava",
		SheetRow:      "17",
		AvatarURL:     "https://cdn.example.com/ava.png",
		AISummary:     "Solid application",
		AIDecision:    "approve",
		AIContext:     "prior member",
		AIRedFlags:    "none",
	}
}

func TestRender_IdentityRoundTrip(t *testing.T) {
	sent := Render(fullApplication())
	require.Len(t, sent.Embeds, 1)

	// What the claim controller later sees is a Message carrying the
	// same embeds.
	msg := &discordgo.Message{ID: "m-1", Embeds: sent.Embeds}

	got, err := identity.Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, "123456789", got)
}

func TestRender_DeterministicFieldOrder(t *testing.T) {
	sent := Render(fullApplication())
	fields := sent.Embeds[0].Fields

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	assert.Equal(t, []string{
		"AI Summary", "AI Decision", "AI Context", "AI Red Flags",
		"​",
		"Character Name", "Real Age",
		identity.FieldName,
		"Steam Link", "Sheet Row",
	}, names)
}

func TestRender_DefaultsForAbsentAttributes(t *testing.T) {
	sent := Render(models.Application{ApplicantID: "42"})
	fields := sent.Embeds[0].Fields

	byName := map[string]string{}
	for _, f := range fields {
		byName[f.Name] = f.Value
	}

	assert.Equal(t, models.NotAvailable, byName["Character Name"])
	assert.Equal(t, models.NotAvailable, byName["AI Summary"])
	assert.Equal(t, models.NotAvailable, byName["Steam Link"])
	assert.Equal(t, "42", byName[identity.FieldName])
	assert.Nil(t, sent.Embeds[0].Thumbnail)
}

func TestRender_MissingApplicantIDRendersSentinel(t *testing.T) {
	// Never validated at render time; the codec rejects it at decode.
	sent := Render(models.Application{CharacterName: "Ava"})

	msg := &discordgo.Message{ID: "m-2", Embeds: sent.Embeds}
	_, err := identity.Decode(msg)
	assert.Error(t, err)
}

func TestRender_AttachesUnclaimedButton(t *testing.T) {
	sent := Render(fullApplication())
	require.Len(t, sent.Components, 1)

	row, ok := sent.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 1)

	button, ok := row.Components[0].(discordgo.Button)
	require.True(t, ok)
	assert.Equal(t, ClaimButtonID, button.CustomID)
	assert.Equal(t, discordgo.SuccessButton, button.Style)
	assert.Equal(t, "Claim Application", button.Label)
}

func TestRender_Thumbnail(t *testing.T) {
	sent := Render(fullApplication())
	require.NotNil(t, sent.Embeds[0].Thumbnail)
	assert.Equal(t, "https://cdn.example.com/ava.png", sent.Embeds[0].Thumbnail.URL)
}
