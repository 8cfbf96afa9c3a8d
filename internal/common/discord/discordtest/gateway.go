// Package discordtest provides an in-memory Gateway for component tests.
package discordtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// SentMessage records one SendMessage call.
type SentMessage struct {
	ChannelID string
	Message   *discordgo.MessageSend
}

// DeletedMessage records one DeleteMessage call.
type DeletedMessage struct {
	ChannelID string
	MessageID string
}

// CreatedChannel records one CreateTicketChannel call.
type CreatedChannel struct {
	Name       string
	Overwrites []*discordgo.PermissionOverwrite
}

// FakeGateway is a recording Gateway implementation. Zero value is
// usable; all methods succeed unless an error or hook is installed.
type FakeGateway struct {
	mu sync.Mutex

	// Members maps user id to guild member for GuildMember lookups.
	// Absent ids resolve to an error, like a user who left the guild.
	Members map[string]*discordgo.Member

	Sent      []SentMessage
	Deleted   []DeletedMessage
	Created   []CreatedChannel
	Ephemeral []string

	SendErr    error
	DeleteErr  error
	CreateErr  error
	RespondErr error

	// CreateHook, when set, runs inside CreateTicketChannel before the
	// channel is recorded, outside the mutex. Used to hold a claim in
	// its Creating step while a concurrent claim races it.
	CreateHook func()

	nextID int
}

func (f *FakeGateway) SendMessage(ctx context.Context, channelID string, message *discordgo.MessageSend) (*discordgo.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return nil, f.SendErr
	}
	f.nextID++
	f.Sent = append(f.Sent, SentMessage{ChannelID: channelID, Message: message})
	return &discordgo.Message{
		ID:        fmt.Sprintf("msg-%d", f.nextID),
		ChannelID: channelID,
		Content:   message.Content,
		Embeds:    message.Embeds,
	}, nil
}

func (f *FakeGateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deleted = append(f.Deleted, DeletedMessage{ChannelID: channelID, MessageID: messageID})
	return nil
}

func (f *FakeGateway) CreateTicketChannel(ctx context.Context, name string, overwrites []*discordgo.PermissionOverwrite) (*discordgo.Channel, error) {
	if hook := f.createHook(); hook != nil {
		hook()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.nextID++
	f.Created = append(f.Created, CreatedChannel{Name: name, Overwrites: overwrites})
	return &discordgo.Channel{
		ID:   fmt.Sprintf("chan-%d", f.nextID),
		Name: name,
	}, nil
}

func (f *FakeGateway) GuildMember(ctx context.Context, userID string) (*discordgo.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.Members[userID]
	if !ok {
		return nil, fmt.Errorf("unknown member: %s", userID)
	}
	return member, nil
}

func (f *FakeGateway) RespondEphemeral(ctx context.Context, interaction *discordgo.Interaction, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RespondErr != nil {
		return f.RespondErr
	}
	f.Ephemeral = append(f.Ephemeral, content)
	return nil
}

func (f *FakeGateway) createHook() func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CreateHook
}

// CreatedChannels returns a copy of the recorded channel creations.
func (f *FakeGateway) CreatedChannels() []CreatedChannel {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]CreatedChannel, len(f.Created))
	copy(out, f.Created)
	return out
}

// DeletedMessages returns a copy of the recorded deletions.
func (f *FakeGateway) DeletedMessages() []DeletedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]DeletedMessage, len(f.Deleted))
	copy(out, f.Deleted)
	return out
}

// SentMessages returns a copy of the recorded sends.
func (f *FakeGateway) SentMessages() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SentMessage, len(f.Sent))
	copy(out, f.Sent)
	return out
}

// EphemeralReplies returns a copy of the recorded ephemeral responses.
func (f *FakeGateway) EphemeralReplies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Ephemeral))
	copy(out, f.Ephemeral)
	return out
}
