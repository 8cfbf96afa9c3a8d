// Package identity encodes the applicant's id into the rendered
// message and recovers it at claim time. The message is the only
// store: after a restart nothing else knows which application a
// posted message belongs to.
package identity

import (
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"

	"whitelist-bot/internal/common/errors"
)

// FieldName is the canonical v1 encoding: one embed field with this
// exact name carrying the raw numeric user id. Historical layouts
// moved the field around and sometimes carried only a mention in the
// body text, hence the fallback in Decode. Anything else about the
// embed layout is not load-bearing.
const FieldName = "Discord ID"

var (
	mentionPattern = regexp.MustCompile(`<@!?(\d+)>`)
	numericID      = regexp.MustCompile(`^\d+$`)
)

// Encode produces the identity field for a rendered message.
func Encode(applicantID string) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{
		Name:   FieldName,
		Value:  applicantID,
		Inline: false,
	}
}

// Decode recovers the applicant id from a posted message. It scans
// embed fields for the exact canonical name first, then falls back to
// the first user mention in the message content or embed descriptions.
// A malformed (non-numeric) field value is treated as not found: the
// codec never guesses an identity.
func Decode(msg *discordgo.Message) (string, error) {
	if msg == nil {
		return "", errors.NewIdentityNotFoundError("")
	}

	for _, embed := range msg.Embeds {
		for _, field := range embed.Fields {
			if field == nil || field.Name != FieldName {
				continue
			}
			value := strings.TrimSpace(field.Value)
			if numericID.MatchString(value) {
				return value, nil
			}
			return "", errors.NewIdentityNotFoundError(msg.ID)
		}
	}

	if m := mentionPattern.FindStringSubmatch(msg.Content); m != nil {
		return m[1], nil
	}
	for _, embed := range msg.Embeds {
		if m := mentionPattern.FindStringSubmatch(embed.Description); m != nil {
			return m[1], nil
		}
	}

	return "", errors.NewIdentityNotFoundError(msg.ID)
}
