package service

import (
	"context"
	"testing"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAdminSession(t *testing.T, s *store.MemoryStore, id string, lastActive int64) {
	t.Helper()
	err := s.CreateOrMergeSession(context.Background(), id, &entity.ChatSession{
		User:       entity.UserDetails{Name: "Visitor " + id, Phone: id},
		Status:     entity.SessionStatusActive,
		LastActive: lastActive,
		Messages: []entity.Message{
			{Text: "hello", Sender: entity.SenderUser, Timestamp: lastActive},
		},
	})
	require.NoError(t, err)
}

func TestListSessionsOrderedByFreshness(t *testing.T) {
	memStore := store.NewMemoryStore(nil)
	svc := NewAdminChatService(memStore, logger.Nop())

	seedAdminSession(t, memStore, "1111111111", 100)
	seedAdminSession(t, memStore, "2222222222", 300)
	seedAdminSession(t, memStore, "3333333333", 200)

	sessions, err := svc.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "2222222222", sessions[0].Id)
	assert.Equal(t, "3333333333", sessions[1].Id)
	assert.Equal(t, "1111111111", sessions[2].Id)
}

func TestAdminReplyAppendsAndBumpsSession(t *testing.T) {
	memStore := store.NewMemoryStore(nil)
	svc := NewAdminChatService(memStore, logger.Nop()).(*adminChatService)
	svc.now = func() int64 { return 500 }

	seedAdminSession(t, memStore, "1111111111", 100)

	err := svc.SendMessage(context.Background(), "1111111111", &dto.AdminSendMessageRequest{Text: "How can we help?"})
	require.NoError(t, err)

	stored, err := memStore.GetSession(context.Background(), "1111111111")
	require.NoError(t, err)
	assert.Equal(t, int64(500), stored.LastActive)

	last := stored.Messages[len(stored.Messages)-1]
	assert.Equal(t, entity.SenderAdmin, last.Sender)
	assert.Equal(t, "How can we help?", last.Text)
}

func TestMarkReadFlagsVisitorMessagesOnly(t *testing.T) {
	memStore := store.NewMemoryStore(nil)
	svc := NewAdminChatService(memStore, logger.Nop())

	seedAdminSession(t, memStore, "1111111111", 100)
	require.NoError(t, svc.SendMessage(context.Background(), "1111111111", &dto.AdminSendMessageRequest{Text: "hi"}))

	require.NoError(t, svc.MarkRead(context.Background(), "1111111111"))

	stored, err := memStore.GetSession(context.Background(), "1111111111")
	require.NoError(t, err)
	for _, msg := range stored.Messages {
		if msg.Sender == entity.SenderUser {
			assert.True(t, msg.Read)
		} else {
			assert.False(t, msg.Read)
		}
	}
}

func TestAdminEndMarksSessionEnded(t *testing.T) {
	memStore := store.NewMemoryStore(nil)
	svc := NewAdminChatService(memStore, logger.Nop())

	seedAdminSession(t, memStore, "1111111111", 100)
	require.NoError(t, svc.EndSession(context.Background(), "1111111111"))

	stored, err := memStore.GetSession(context.Background(), "1111111111")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusEnded, stored.Status)
}

func TestAdminDeleteRemovesSession(t *testing.T) {
	memStore := store.NewMemoryStore(nil)
	svc := NewAdminChatService(memStore, logger.Nop())

	seedAdminSession(t, memStore, "1111111111", 100)
	require.NoError(t, svc.DeleteSession(context.Background(), "1111111111"))

	_, err := memStore.GetSession(context.Background(), "1111111111")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestAdminActionsOnMissingSessionReturnNotFound(t *testing.T) {
	memStore := store.NewMemoryStore(nil)
	svc := NewAdminChatService(memStore, logger.Nop())
	ctx := context.Background()

	var appErr *serverutils.AppError

	err := svc.SendMessage(ctx, "0000000000", &dto.AdminSendMessageRequest{Text: "hi"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Code)

	require.ErrorAs(t, svc.MarkRead(ctx, "0000000000"), &appErr)
	require.ErrorAs(t, svc.EndSession(ctx, "0000000000"), &appErr)
	require.ErrorAs(t, svc.DeleteSession(ctx, "0000000000"), &appErr)
}
