package claim

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whitelist-bot/internal/common/discord/discordtest"
	"whitelist-bot/internal/common/errors"
	"whitelist-bot/internal/common/logger"
	"whitelist-bot/internal/models"
	"whitelist-bot/internal/workflow/access"
	"whitelist-bot/internal/workflow/render"
	"whitelist-bot/internal/workflow/report"
)

const (
	testGuildID        = "guild-1"
	testReviewerRoleID = "role-reviewer"
	testReviewChannel  = "chan-review"
	testOpsChannel     = "chan-ops"
	testActorID        = "actor-1"
	testApplicantID    = "123456789"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return LoadConfig(testReviewerRoleID, 5*time.Second)
}

func createTestHandler(t *testing.T, gw *discordtest.FakeGateway) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	policy := access.NewPolicy(testGuildID, testReviewerRoleID)
	reporter := report.NewReporter(gw, testOpsChannel, 5*time.Second, log)
	return NewHandler(createTestConfig(), gw, policy, reporter, nil, log)
}

func resolvableApplicant() map[string]*discordgo.Member {
	return map[string]*discordgo.Member{
		testApplicantID: {User: &discordgo.User{ID: testApplicantID, Username: "Ava"}},
	}
}

// postedInteraction builds the interaction a click on a previously
// posted application produces: the message content is exactly what the
// renderer emitted, since that is all the controller has after a
// restart.
func postedInteraction(messageID string, roles []string) *discordgo.InteractionCreate {
	rendered := render.Render(models.Application{
		ApplicantID:   testApplicantID,
		CharacterName: "Ava",
	})

	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionMessageComponent,
			Member: &discordgo.Member{
				User:  &discordgo.User{ID: testActorID, Username: "reviewer"},
				Roles: roles,
			},
			Message: &discordgo.Message{
				ID:        messageID,
				ChannelID: testReviewChannel,
				Embeds:    rendered.Embeds,
			},
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandle_SuccessfulClaim(t *testing.T) {
	gw := &discordtest.FakeGateway{Members: resolvableApplicant()}
	h := createTestHandler(t, gw)

	h.Handle(context.Background(), postedInteraction("msg-1", []string{testReviewerRoleID}))

	created := gw.CreatedChannels()
	require.Len(t, created, 1)
	assert.Equal(t, "ticket-ava", created[0].Name)

	// Overwrites: @everyone denied, reviewer role, actor, applicant.
	require.Len(t, created[0].Overwrites, 4)

	// Migrated content tags the applicant, the actor and the role,
	// and carries the original embed.
	sent := gw.SentMessages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Message.Content, "<@"+testApplicantID+">")
	assert.Contains(t, sent[0].Message.Content, "<@"+testActorID+">")
	assert.Contains(t, sent[0].Message.Content, "<@&"+testReviewerRoleID+">")
	require.Len(t, sent[0].Message.Embeds, 1)

	// Original removed from the review channel.
	deleted := gw.DeletedMessages()
	require.Len(t, deleted, 1)
	assert.Equal(t, testReviewChannel, deleted[0].ChannelID)
	assert.Equal(t, "msg-1", deleted[0].MessageID)

	// Actor got a private confirmation referencing the ticket.
	replies := gw.EphemeralReplies()
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "<#")
}

func TestHandle_NotAuthorized(t *testing.T) {
	gw := &discordtest.FakeGateway{Members: resolvableApplicant()}
	h := createTestHandler(t, gw)

	h.Handle(context.Background(), postedInteraction("msg-1", []string{"some-other-role"}))

	assert.Empty(t, gw.CreatedChannels())
	assert.Empty(t, gw.DeletedMessages())
	assert.Empty(t, gw.SentMessages())

	replies := gw.EphemeralReplies()
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "reviewer role")
}

func TestHandle_IdentityNotFound(t *testing.T) {
	gw := &discordtest.FakeGateway{}
	h := createTestHandler(t, gw)

	i := postedInteraction("msg-1", []string{testReviewerRoleID})
	i.Message.Embeds = nil
	i.Message.Content = "no identity anywhere"

	h.Handle(context.Background(), i)

	assert.Empty(t, gw.CreatedChannels())
	assert.Empty(t, gw.DeletedMessages())

	replies := gw.EphemeralReplies()
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "could not find the applicant's ID")
}

func TestHandle_UnresolvedApplicant(t *testing.T) {
	// Applicant left the guild: claim proceeds, channel is named from
	// the raw id, and no applicant overwrite is granted.
	gw := &discordtest.FakeGateway{}
	h := createTestHandler(t, gw)

	h.Handle(context.Background(), postedInteraction("msg-1", []string{testReviewerRoleID}))

	created := gw.CreatedChannels()
	require.Len(t, created, 1)
	assert.Equal(t, "ticket-"+testApplicantID, created[0].Name)
	assert.Len(t, created[0].Overwrites, 3)
	require.Len(t, gw.DeletedMessages(), 1)
}

func TestHandle_ChannelCreateFailureLeavesMessageClaimable(t *testing.T) {
	gw := &discordtest.FakeGateway{
		Members:   resolvableApplicant(),
		CreateErr: fmt.Errorf("upstream unavailable"),
	}
	h := createTestHandler(t, gw)

	h.Handle(context.Background(), postedInteraction("msg-1", []string{testReviewerRoleID}))

	// Pre-commit failure: nothing escalated, nothing deleted.
	assert.Empty(t, gw.CreatedChannels())
	assert.Empty(t, gw.DeletedMessages())
	assert.Empty(t, gw.SentMessages())

	// Lock must be released so a retry can succeed.
	gw.CreateErr = nil
	h.Handle(context.Background(), postedInteraction("msg-1", []string{testReviewerRoleID}))
	assert.Len(t, gw.CreatedChannels(), 1)
	assert.Len(t, gw.DeletedMessages(), 1)
}

func TestHandle_CreateTimeoutReleasesLockAndLeavesMessageClaimable(t *testing.T) {
	gw := &discordtest.FakeGateway{Members: resolvableApplicant()}
	gw.CreateHook = func() { time.Sleep(50 * time.Millisecond) }

	log := logger.NewTestLogger(t)
	policy := access.NewPolicy(testGuildID, testReviewerRoleID)
	reporter := report.NewReporter(gw, testOpsChannel, 5*time.Second, log)
	h := NewHandler(LoadConfig(testReviewerRoleID, 10*time.Millisecond), gw, policy, reporter, nil, log)

	h.Handle(context.Background(), postedInteraction("msg-1", []string{testReviewerRoleID}))

	// The per-call budget expired inside channel creation: pre-commit,
	// so nothing exists, nothing is escalated, and the actor is told.
	assert.Empty(t, gw.CreatedChannels())
	assert.Empty(t, gw.SentMessages())
	assert.Empty(t, gw.DeletedMessages())

	replies := gw.EphemeralReplies()
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "was not claimed")

	// The lock must not stay held by the timed-out attempt.
	gw.CreateHook = nil
	h.Handle(context.Background(), postedInteraction("msg-1", []string{testReviewerRoleID}))
	assert.Len(t, gw.CreatedChannels(), 1)
	assert.Len(t, gw.DeletedMessages(), 1)
}

func TestCreateError_ClassifiesTimeout(t *testing.T) {
	stdErr := createError(context.DeadlineExceeded)
	assert.Equal(t, errors.ErrCodeGatewayTimeout, stdErr.Code)

	stdErr = createError(fmt.Errorf("upstream unavailable"))
	assert.Equal(t, errors.ErrCodeChannelCreateFailed, stdErr.Code)
}

func TestHandle_MigrateFailureIsReportedNotRolledBack(t *testing.T) {
	gw := &discordtest.FakeGateway{
		Members: resolvableApplicant(),
		SendErr: fmt.Errorf("send rejected"),
	}
	h := createTestHandler(t, gw)

	h.Handle(context.Background(), postedInteraction("msg-1", []string{testReviewerRoleID}))

	// The ticket exists and stays; the original message stays too.
	assert.Len(t, gw.CreatedChannels(), 1)
	assert.Empty(t, gw.DeletedMessages())

	replies := gw.EphemeralReplies()
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Manual follow-up")
}

func TestHandle_MigrateTimeoutIsEscalated(t *testing.T) {
	// A blown call budget after the commit point is still a
	// post-commit failure: escalated, never rolled back.
	gw := &discordtest.FakeGateway{
		Members: resolvableApplicant(),
		SendErr: context.DeadlineExceeded,
	}
	h := createTestHandler(t, gw)

	h.Handle(context.Background(), postedInteraction("msg-1", []string{testReviewerRoleID}))

	assert.Len(t, gw.CreatedChannels(), 1)
	assert.Empty(t, gw.DeletedMessages())

	replies := gw.EphemeralReplies()
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Manual follow-up")
}

func TestHandle_CleanupFailureIsReported(t *testing.T) {
	gw := &discordtest.FakeGateway{
		Members:   resolvableApplicant(),
		DeleteErr: fmt.Errorf("message gone stale"),
	}
	h := createTestHandler(t, gw)

	h.Handle(context.Background(), postedInteraction("msg-1", []string{testReviewerRoleID}))

	assert.Len(t, gw.CreatedChannels(), 1)

	// Migration succeeded, then the failure report went to ops: two
	// sends total.
	sent := gw.SentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, testOpsChannel, sent[1].ChannelID)

	replies := gw.EphemeralReplies()
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Manual follow-up")
}

// ==========================
// Concurrency Tests
// ==========================

func TestHandle_ConcurrentClaimsCreateOneTicket(t *testing.T) {
	gw := &discordtest.FakeGateway{Members: resolvableApplicant()}

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	gw.CreateHook = func() {
		once.Do(func() { close(entered) })
		<-release
	}

	h := createTestHandler(t, gw)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.Handle(context.Background(), postedInteraction("msg-1", []string{testReviewerRoleID}))
	}()

	// Wait until the first claim holds the lock inside Creating, then
	// race a second claim against it.
	<-entered
	h.Handle(context.Background(), postedInteraction("msg-1", []string{testReviewerRoleID}))

	close(release)
	wg.Wait()

	assert.Len(t, gw.CreatedChannels(), 1)
	assert.Len(t, gw.DeletedMessages(), 1)

	var rejected int
	for _, reply := range gw.EphemeralReplies() {
		if strings.Contains(reply, "already being processed") {
			rejected++
		}
	}
	assert.Equal(t, 1, rejected)
}

func TestHandle_DifferentMessagesDoNotContend(t *testing.T) {
	gw := &discordtest.FakeGateway{Members: resolvableApplicant()}
	h := createTestHandler(t, gw)

	var wg sync.WaitGroup
	for _, id := range []string{"msg-1", "msg-2", "msg-3"} {
		wg.Add(1)
		go func(messageID string) {
			defer wg.Done()
			h.Handle(context.Background(), postedInteraction(messageID, []string{testReviewerRoleID}))
		}(id)
	}
	wg.Wait()

	assert.Len(t, gw.CreatedChannels(), 3)
	assert.Len(t, gw.DeletedMessages(), 3)
}

// ==========================
// Plumbing Tests
// ==========================

func TestInteractionHandler_FiltersOtherComponents(t *testing.T) {
	gw := &discordtest.FakeGateway{Members: resolvableApplicant()}
	h := createTestHandler(t, gw)
	callback := h.InteractionHandler()

	i := postedInteraction("msg-1", []string{testReviewerRoleID})
	i.Data = discordgo.MessageComponentInteractionData{CustomID: "unrelated_button"}
	callback(nil, i)
	assert.Empty(t, gw.CreatedChannels())

	i.Data = discordgo.MessageComponentInteractionData{CustomID: render.ClaimButtonID}
	callback(nil, i)
	assert.Len(t, gw.CreatedChannels(), 1)
}

func TestTicketChannelName(t *testing.T) {
	tests := []struct {
		name     string
		member   *discordgo.Member
		expected string
	}{
		{
			name:     "resolved member",
			member:   &discordgo.Member{User: &discordgo.User{Username: "Ava"}},
			expected: "ticket-ava",
		},
		{
			name:     "unresolved member",
			member:   nil,
			expected: "ticket-123456789",
		},
		{
			name:     "name needing sanitization",
			member:   &discordgo.Member{User: &discordgo.User{Username: "Testy McTestface!"}},
			expected: "ticket-testy-mctestface",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ticketChannelName(tt.member, "123456789"))
		})
	}
}

func TestLockTable(t *testing.T) {
	locks := newLockTable()

	require.True(t, locks.TryAcquire("a"))
	assert.False(t, locks.TryAcquire("a"))
	assert.True(t, locks.TryAcquire("b"))

	locks.Release("a")
	assert.True(t, locks.TryAcquire("a"))
}
