package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"support-chat-be/internal/constant"
	"support-chat-be/internal/dialogue"
	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/moderation"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/session"
	"support-chat-be/internal/store"
	"support-chat-be/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatFixture struct {
	svc      *chatService
	store    *store.MemoryStore
	pointers *session.PointerRepository
	clock    *fakeClock
}

type fakeClock struct {
	millis int64
}

func (c *fakeClock) Now() time.Time          { return time.UnixMilli(c.millis) }
func (c *fakeClock) UnixMilli() int64        { return c.millis }
func (c *fakeClock) Advance(d time.Duration) { c.millis += d.Milliseconds() }

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	clock := &fakeClock{millis: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli()}
	memStore := store.NewMemoryStore(nil)
	pointers := session.NewPointerRepository(24 * time.Hour).WithClock(clock.Now)
	engine := dialogue.NewEngine(dialogue.DefaultTable, constant.FallbackReplies, rand.New(rand.NewSource(1)))
	filter := moderation.NewFilter(constant.BlockedWords)
	hub := websocket.NewHub(nil, logger.Nop())

	svc := NewChatService(
		memStore, pointers, engine, filter, hub,
		nil, "", nil, logger.Nop(),
		600*time.Millisecond, time.Second,
	).(*chatService)

	svc.now = clock.UnixMilli
	svc.schedule = func(_ time.Duration, f func()) { f() }

	return &chatFixture{svc: svc, store: memStore, pointers: pointers, clock: clock}
}

// startToHandoff walks a client from a fresh start into the connect form.
func (f *chatFixture) startToHandoff(t *testing.T, clientId string) {
	t.Helper()
	ctx := context.Background()

	_, err := f.svc.Start(ctx, &dto.StartChatRequest{ClientId: clientId})
	require.NoError(t, err)

	_, err = f.svc.Message(ctx, &dto.SendMessageRequest{ClientId: clientId, Text: "I want to talk to an agent"})
	require.NoError(t, err)
}

func TestStartOpensBotModeWithGreeting(t *testing.T) {
	f := newChatFixture(t)

	state, err := f.svc.Start(context.Background(), &dto.StartChatRequest{ClientId: "c1"})
	require.NoError(t, err)

	assert.Equal(t, string(entity.ModeBot), state.Mode)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, constant.GreetingText, state.Messages[0].Text)
	assert.Equal(t, string(entity.SenderBot), state.Messages[0].Sender)
}

func TestHandoffTriggerSwitchesMode(t *testing.T) {
	f := newChatFixture(t)
	f.startToHandoff(t, "c1")

	state, err := f.svc.state("c1")
	require.NoError(t, err)
	assert.Equal(t, entity.ModeHandoff, state.mode)

	// greeting, user message, handoff accept reply
	require.Len(t, state.transcript, 3)
	assert.Equal(t, constant.HandoffAcceptText, state.transcript[2].Text)
}

func TestModerationShortCircuitsDialogue(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, &dto.StartChatRequest{ClientId: "c1"})
	require.NoError(t, err)

	// "stupid" would otherwise fall through to a keyword or fallback reply.
	_, err = f.svc.Message(ctx, &dto.SendMessageRequest{ClientId: "c1", Text: "this is STUPID"})
	require.NoError(t, err)

	state, err := f.svc.state("c1")
	require.NoError(t, err)
	assert.Equal(t, entity.ModeBot, state.mode)
	assert.Equal(t, constant.ModerationText, state.transcript[len(state.transcript)-1].Text)
}

func TestPhoneNormalization(t *testing.T) {
	f := newChatFixture(t)
	f.startToHandoff(t, "c1")

	state, err := f.svc.SubmitHandoff(context.Background(), &dto.HandoffRequest{
		ClientId: "c1",
		Name:     "Asha",
		Phone:    "987-654-3210",
	})
	require.NoError(t, err)

	assert.Equal(t, "9876543210", state.SessionId)
	assert.Equal(t, string(entity.ModeLive), state.Mode)

	stored, err := f.store.GetSession(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "9876543210", stored.User.Phone)
	assert.Equal(t, "Asha", stored.User.Name)
}

func TestShortPhoneRejectedWithoutSideEffects(t *testing.T) {
	f := newChatFixture(t)
	f.startToHandoff(t, "c1")

	_, err := f.svc.SubmitHandoff(context.Background(), &dto.HandoffRequest{
		ClientId: "c1",
		Name:     "Asha",
		Phone:    "12345",
	})

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "phone")

	// Still on the form; nothing written to the store.
	state, stateErr := f.svc.state("c1")
	require.NoError(t, stateErr)
	assert.Equal(t, entity.ModeHandoff, state.mode)

	sessions, listErr := f.store.ListSessions(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, sessions)
}

func TestHandoffSeedsBotTranscriptAndJoinedNotice(t *testing.T) {
	f := newChatFixture(t)
	f.startToHandoff(t, "c1")

	_, err := f.svc.SubmitHandoff(context.Background(), &dto.HandoffRequest{
		ClientId: "c1",
		Name:     "Asha",
		Phone:    "9876543210",
	})
	require.NoError(t, err)

	messages, err := f.store.GetMessages(context.Background(), "9876543210")
	require.NoError(t, err)

	// greeting, user trigger, handoff accept, joined notice
	require.Len(t, messages, 4)
	assert.Equal(t, constant.GreetingText, messages[0].Text)
	assert.Equal(t, "User Asha joined via connect form.", messages[3].Text)
}

func TestReconnectWithSamePhonePreservesHistory(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.startToHandoff(t, "c1")
	_, err := f.svc.SubmitHandoff(ctx, &dto.HandoffRequest{ClientId: "c1", Name: "Asha", Phone: "9876543210"})
	require.NoError(t, err)

	_, err = f.svc.Message(ctx, &dto.SendMessageRequest{ClientId: "c1", Text: "first visit question"})
	require.NoError(t, err)

	before, err := f.store.GetMessages(ctx, "9876543210")
	require.NoError(t, err)

	// A different device connects with the same phone number.
	f.clock.Advance(time.Hour)
	f.startToHandoff(t, "c2")
	_, err = f.svc.SubmitHandoff(ctx, &dto.HandoffRequest{ClientId: "c2", Name: "Asha", Phone: "9876543210"})
	require.NoError(t, err)

	after, err := f.store.GetMessages(ctx, "9876543210")
	require.NoError(t, err)

	require.Greater(t, len(after), len(before))
	for i, msg := range before {
		assert.Equal(t, msg.Text, after[i].Text)
	}
}

func TestResumeWithinPointerWindow(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.startToHandoff(t, "c1")
	_, err := f.svc.SubmitHandoff(ctx, &dto.HandoffRequest{ClientId: "c1", Name: "Asha", Phone: "9876543210"})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)

	state, err := f.svc.Start(ctx, &dto.StartChatRequest{ClientId: "c1"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ModeLive), state.Mode)
	assert.Equal(t, "9876543210", state.SessionId)
	assert.NotEmpty(t, state.Messages)

	// Resuming marks the visitor online again.
	stored, err := f.store.GetSession(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusActive, stored.Status)
	assert.Equal(t, f.clock.UnixMilli(), stored.LastActive)
}

func TestExpiredPointerStartsFreshBot(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.startToHandoff(t, "c1")
	_, err := f.svc.SubmitHandoff(ctx, &dto.HandoffRequest{ClientId: "c1", Name: "Asha", Phone: "9876543210"})
	require.NoError(t, err)

	f.clock.Advance(25 * time.Hour)

	state, err := f.svc.Start(ctx, &dto.StartChatRequest{ClientId: "c1"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ModeBot), state.Mode)
	assert.Empty(t, state.SessionId)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, constant.GreetingText, state.Messages[0].Text)
}

func TestResumeAfterSessionDeletedFallsBackToBot(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.startToHandoff(t, "c1")
	_, err := f.svc.SubmitHandoff(ctx, &dto.HandoffRequest{ClientId: "c1", Name: "Asha", Phone: "9876543210"})
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteSession(ctx, "9876543210"))

	state, err := f.svc.Start(ctx, &dto.StartChatRequest{ClientId: "c1"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ModeBot), state.Mode)

	_, ok := f.pointers.Get("c1")
	assert.False(t, ok)
}

func TestLiveMessageAppendsAndBumpsLastActive(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.startToHandoff(t, "c1")
	_, err := f.svc.SubmitHandoff(ctx, &dto.HandoffRequest{ClientId: "c1", Name: "Asha", Phone: "9876543210"})
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	_, err = f.svc.Message(ctx, &dto.SendMessageRequest{ClientId: "c1", Text: "anyone there?"})
	require.NoError(t, err)

	stored, err := f.store.GetSession(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, f.clock.UnixMilli(), stored.LastActive)

	last := stored.Messages[len(stored.Messages)-1]
	assert.Equal(t, "anyone there?", last.Text)
	assert.Equal(t, entity.SenderUser, last.Sender)
}

func TestEndSessionResetsToSingleEndedMessage(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.startToHandoff(t, "c1")
	_, err := f.svc.SubmitHandoff(ctx, &dto.HandoffRequest{ClientId: "c1", Name: "Asha", Phone: "9876543210"})
	require.NoError(t, err)

	state, err := f.svc.EndSession(ctx, "c1")
	require.NoError(t, err)

	assert.Equal(t, string(entity.ModeBot), state.Mode)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, constant.SessionEndedText, state.Messages[0].Text)

	stored, err := f.store.GetSession(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusEnded, stored.Status)

	_, ok := f.pointers.Get("c1")
	assert.False(t, ok)
}

func TestCancelHandoffReturnsToBot(t *testing.T) {
	f := newChatFixture(t)
	f.startToHandoff(t, "c1")

	state, err := f.svc.CancelHandoff("c1")
	require.NoError(t, err)
	assert.Equal(t, string(entity.ModeBot), state.Mode)
}

func TestSuspendedServiceRefusesVisitors(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.svc.Suspend()

	_, err := f.svc.Start(ctx, &dto.StartChatRequest{ClientId: "c1"})
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Code)

	f.svc.Resume()
	_, err = f.svc.Start(ctx, &dto.StartChatRequest{ClientId: "c1"})
	assert.NoError(t, err)
}

func TestTopicsIncludeSessionOnlyWhenLive(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, &dto.StartChatRequest{ClientId: "c1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"client:c1"}, f.svc.Topics("c1"))

	f.startToHandoff(t, "c1")
	_, err = f.svc.SubmitHandoff(ctx, &dto.HandoffRequest{ClientId: "c1", Name: "Asha", Phone: "9876543210"})
	require.NoError(t, err)

	assert.Equal(t, []string{"client:c1", "session:9876543210"}, f.svc.Topics("c1"))
}
