// Package access computes the permission-overwrite set for a new
// ticket channel.
package access

import (
	"github.com/bwmarrin/discordgo"
)

const ticketPermissions = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages

// Policy derives ticket channel overwrites from the fixed guild and
// reviewer role ids.
type Policy struct {
	guildID        string
	reviewerRoleID string
}

func NewPolicy(guildID, reviewerRoleID string) *Policy {
	return &Policy{
		guildID:        guildID,
		reviewerRoleID: reviewerRoleID,
	}
}

// Compute returns the overwrite set for one ticket: @everyone denied,
// the reviewer role and the claiming actor granted, and the applicant
// granted only when they resolved as a guild member at claim time. An
// applicant who left the guild silently gets no grant; that never
// fails the claim.
func (p *Policy) Compute(actorID, applicantID string, applicantResolved bool) []*discordgo.PermissionOverwrite {
	// The @everyone role id equals the guild id.
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   p.guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: ticketPermissions,
		},
		{
			ID:    p.reviewerRoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: ticketPermissions,
		},
		{
			ID:    actorID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: ticketPermissions,
		},
	}

	if applicantResolved && applicantID != actorID {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    applicantID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: ticketPermissions,
		})
	}

	return overwrites
}
