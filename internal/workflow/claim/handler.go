// internal/workflow/claim/handler.go
package claim

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"whitelist-bot/internal/common/discord"
	"whitelist-bot/internal/common/errors"
	"whitelist-bot/internal/common/logger"
	"whitelist-bot/internal/common/metrics"
	"whitelist-bot/internal/common/observability"
	"whitelist-bot/internal/workflow/access"
	"whitelist-bot/internal/workflow/identity"
	"whitelist-bot/internal/workflow/render"
	"whitelist-bot/internal/workflow/report"
)

// Handler drives a posted application from Unclaimed to TicketOpened:
// authorize the actor, recover the applicant id from the message,
// create the access-restricted ticket channel, migrate the content,
// and remove the original message. Channel creation is the commit
// point; nothing after it is rolled back.
type Handler struct {
	config   *Config
	gateway  discord.Gateway
	policy   *access.Policy
	reporter *report.Reporter
	obs      *observability.Observability
	locks    *lockTable
	logger   logger.Logger
}

func NewHandler(config *Config, gateway discord.Gateway, policy *access.Policy, reporter *report.Reporter, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		gateway:  gateway,
		policy:   policy,
		reporter: reporter,
		obs:      obs,
		locks:    newLockTable(),
		logger:   log.WithFields(map[string]interface{}{"component": "claim"}),
	}
}

// InteractionHandler returns the callback to register on the session.
// It matches only the fixed claim button custom id, which is what
// keeps messages posted before a restart clickable: the handler is
// re-registered at startup, not per message.
func (h *Handler) InteractionHandler() func(*discordgo.Session, *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionMessageComponent {
			return
		}
		if i.MessageComponentData().CustomID != render.ClaimButtonID {
			return
		}
		h.Handle(context.Background(), i)
	}
}

// Handle processes one claim attempt end to end.
func (h *Handler) Handle(ctx context.Context, i *discordgo.InteractionCreate) {
	start := time.Now()

	if i.Member == nil || i.Member.User == nil || i.Message == nil {
		// Not a guild component interaction; nothing to do.
		return
	}

	actorID := i.Member.User.ID
	messageID := i.Message.ID

	log := h.logger.WithFields(map[string]interface{}{
		"messageId": messageID,
		"actorId":   actorID,
	})

	outcome := h.process(ctx, i, log)

	metrics.ClaimAttempts.WithLabelValues(string(outcome)).Inc()
	metrics.ClaimDuration.Observe(time.Since(start).Seconds())
	if h.obs != nil {
		h.obs.RecordClaimProcessed(ctx, string(outcome))
		h.obs.RecordClaimDuration(ctx, time.Since(start), string(outcome))
	}
}

func (h *Handler) process(ctx context.Context, i *discordgo.InteractionCreate, log logger.Logger) Outcome {
	actorID := i.Member.User.ID
	messageID := i.Message.ID

	// Authorizing.
	if !hasRole(i.Member.Roles, h.config.ReviewerRoleID) {
		stdErr := errors.NewNotAuthorizedError(actorID)
		log.WithError(stdErr).Warn("claim attempt without reviewer role", nil)
		metrics.ClaimStepFailures.WithLabelValues(string(StepAuthorizing), string(stdErr.Code)).Inc()
		h.respond(ctx, i, "You need the reviewer role to claim applications.")
		return OutcomeNotAuthorized
	}

	// Resolving. Failure leaves the message untouched and claimable.
	applicantID, err := identity.Decode(i.Message)
	if err != nil {
		stdErr := errors.Normalize(err)
		log.WithError(stdErr).Warn("could not resolve applicant identity", nil)
		metrics.ClaimStepFailures.WithLabelValues(string(StepResolving), string(stdErr.Code)).Inc()
		h.respond(ctx, i, "Error: could not find the applicant's ID in the original message.")
		return OutcomeIdentityNotFound
	}
	log = log.WithFields(map[string]interface{}{"applicantId": applicantID})

	// The lock covers channel creation through message deletion.
	// Until the message is deleted it is the only claimed-marker, so
	// a concurrent claim inside this window must be turned away, not
	// queued behind us.
	if !h.locks.TryAcquire(messageID) {
		stdErr := errors.NewClaimInProgressError(messageID)
		log.WithError(stdErr).Info("concurrent claim rejected", nil)
		h.respond(ctx, i, stdErr.Message+".")
		return OutcomeInProgress
	}
	defer h.locks.Release(messageID)

	// Creating. An applicant who left the guild just loses their
	// channel grant; the claim proceeds.
	applicant, memberErr := h.guildMember(ctx, applicantID)
	applicantResolved := memberErr == nil

	overwrites := h.policy.Compute(actorID, applicantID, applicantResolved)
	channelName := ticketChannelName(applicant, applicantID)

	channel, err := h.createChannel(ctx, channelName, overwrites)
	if err != nil {
		h.fail(ctx, i, createError(err), StepCreating, log)
		return OutcomeError
	}
	log = log.WithFields(map[string]interface{}{"ticketChannelId": channel.ID})

	// Past the commit point: the channel exists. Failures from here on
	// keep their step's post-commit code (a timeout shows up in the
	// details) so that PastCommitPoint routes them to the reporter.

	// Migrating.
	if err := h.migrate(ctx, i, channel.ID, applicantID, actorID); err != nil {
		h.fail(ctx, i, errors.NewMigrateFailedError(channel.ID, err), StepMigrating, log)
		return OutcomeError
	}

	// Closing.
	if err := h.deleteOriginal(ctx, i.Message.ChannelID, messageID); err != nil {
		h.fail(ctx, i, errors.NewCleanupFailedError(messageID, err), StepClosing, log)
		return OutcomeError
	}

	// Done.
	log.Info("application claimed", nil)
	h.respond(ctx, i, fmt.Sprintf("Application claimed. Ticket created: <#%s>", channel.ID))
	return OutcomeSuccess
}

func (h *Handler) guildMember(ctx context.Context, userID string) (*discordgo.Member, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.config.GatewayTimeout)
	defer cancel()
	return h.gateway.GuildMember(callCtx, userID)
}

func (h *Handler) createChannel(ctx context.Context, name string, overwrites []*discordgo.PermissionOverwrite) (*discordgo.Channel, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.config.GatewayTimeout)
	defer cancel()
	return h.gateway.CreateTicketChannel(callCtx, name, overwrites)
}

func (h *Handler) migrate(ctx context.Context, i *discordgo.InteractionCreate, channelID, applicantID, actorID string) error {
	content := fmt.Sprintf("Ticket created for <@%s>. Claimed by <@%s>. <@&%s>",
		applicantID, actorID, h.config.ReviewerRoleID)

	callCtx, cancel := context.WithTimeout(ctx, h.config.GatewayTimeout)
	defer cancel()
	_, err := h.gateway.SendMessage(callCtx, channelID, &discordgo.MessageSend{
		Content: content,
		Embeds:  i.Message.Embeds,
	})
	return err
}

func (h *Handler) deleteOriginal(ctx context.Context, channelID, messageID string) error {
	callCtx, cancel := context.WithTimeout(ctx, h.config.GatewayTimeout)
	defer cancel()
	return h.gateway.DeleteMessage(callCtx, channelID, messageID)
}

// fail handles a step failure. The error code decides the side of the
// commit point: pre-commit failures only answer the actor and leave
// the message claimable, post-commit failures are escalated through
// the reporter and never rolled back.
func (h *Handler) fail(ctx context.Context, i *discordgo.InteractionCreate, stdErr *errors.StandardError, step Step, log logger.Logger) {
	metrics.ClaimStepFailures.WithLabelValues(string(step), string(stdErr.Code)).Inc()

	if errors.PastCommitPoint(stdErr.Code) {
		log.WithError(stdErr).Error("claim failed after ticket creation", nil)
		h.reporter.Report(ctx, i.Member.User.ID, i.Member.User.Username, stdErr)
		h.respond(ctx, i, "The ticket channel was created, but a later step failed. Manual follow-up may be required.")
		return
	}

	log.WithError(stdErr).Error("ticket channel creation failed", nil)
	h.respond(ctx, i, "Ticket creation failed, the application was not claimed. Please try again.")
}

// createError classifies a channel-create failure. A blown per-call
// budget gets the timeout code so it is distinguishable from an
// upstream rejection.
func createError(err error) *errors.StandardError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewGatewayTimeoutError("create ticket channel")
	}
	return errors.NewChannelCreateFailedError(err)
}

func (h *Handler) respond(ctx context.Context, i *discordgo.InteractionCreate, content string) {
	callCtx, cancel := context.WithTimeout(ctx, h.config.GatewayTimeout)
	defer cancel()
	if err := h.gateway.RespondEphemeral(callCtx, i.Interaction, content); err != nil {
		h.logger.WithError(err).Warn("failed to acknowledge interaction", map[string]interface{}{
			"messageId": i.Message.ID,
		})
	}
}

func hasRole(roles []string, roleID string) bool {
	for _, r := range roles {
		if r == roleID {
			return true
		}
	}
	return false
}

var channelNameInvalid = regexp.MustCompile(`[^a-z0-9-]+`)

// ticketChannelName derives a deterministic channel name from the
// applicant's display name when resolvable, else the raw id. Discord
// rejects names outside its charset, so the result is sanitized.
func ticketChannelName(member *discordgo.Member, applicantID string) string {
	base := applicantID
	if member != nil && member.User != nil && member.User.Username != "" {
		base = member.User.Username
	}
	name := strings.ToLower("ticket-" + base)
	name = channelNameInvalid.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if len(name) > 100 {
		name = name[:100]
	}
	return name
}
