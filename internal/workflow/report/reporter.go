// Package report escalates post-commit claim failures to the
// operations channel.
package report

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"whitelist-bot/internal/common/discord"
	"whitelist-bot/internal/common/errors"
	"whitelist-bot/internal/common/logger"
)

// Reporter formats diagnostic records and sends them to the ops
// channel. With no ops channel configured it degrades to log-only.
// A report is sent once; a failed send is logged and never retried.
type Reporter struct {
	gateway      discord.Gateway
	opsChannelID string
	timeout      time.Duration
	logger       logger.Logger
}

func NewReporter(gateway discord.Gateway, opsChannelID string, timeout time.Duration, log logger.Logger) *Reporter {
	return &Reporter{
		gateway:      gateway,
		opsChannelID: opsChannelID,
		timeout:      timeout,
		logger:       log.WithFields(map[string]interface{}{"component": "failure-reporter"}),
	}
}

// Report emits one diagnostic record for a failed claim attempt.
func (r *Reporter) Report(ctx context.Context, actorID, actorName string, stdErr *errors.StandardError) {
	reportID := uuid.NewString()

	log := r.logger.WithFields(map[string]interface{}{
		"reportId":  reportID,
		"actorId":   actorID,
		"errorCode": string(stdErr.Code),
	})

	if r.opsChannelID == "" {
		log.Error("claim failure (no ops channel configured)", map[string]interface{}{
			"details": stdErr.Details,
		})
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "Claim failure",
		Color: 0xED4245,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Actor", Value: fmt.Sprintf("%s (<@%s>)", actorName, actorID)},
			{Name: "Error Code", Value: string(stdErr.Code), Inline: true},
			{Name: "Report ID", Value: reportID, Inline: true},
			{Name: "Details", Value: truncate(stdErr.Details, 1024)},
		},
		Timestamp: stdErr.Timestamp.Format(time.RFC3339),
	}

	sendCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.gateway.SendMessage(sendCtx, r.opsChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	}); err != nil {
		log.WithError(err).Error("failed to deliver failure report", map[string]interface{}{
			"details": stdErr.Details,
		})
	}
}

// truncate caps s at max bytes without splitting a rune, since the
// result goes into an embed field that must stay valid UTF-8.
func truncate(s string, max int) string {
	if s == "" {
		return "n/a"
	}
	if len(s) <= max {
		return s
	}
	cut := max - len("…")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
