package service

import (
	"context"
	"errors"
	"time"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/store"
)

// IAdminChatService backs the support console: the full session index plus
// per-session actions on behalf of an operator.
type IAdminChatService interface {
	ListSessions(ctx context.Context) ([]*dto.AdminSessionResponse, error)
	SendMessage(ctx context.Context, sessionId string, req *dto.AdminSendMessageRequest) error
	MarkRead(ctx context.Context, sessionId string) error
	EndSession(ctx context.Context, sessionId string) error
	DeleteSession(ctx context.Context, sessionId string) error
}

type adminChatService struct {
	sessions store.SessionStore
	logger   logger.ILogger
	now      func() int64
}

func NewAdminChatService(sessions store.SessionStore, log logger.ILogger) IAdminChatService {
	return &adminChatService{
		sessions: sessions,
		logger:   log,
		now:      func() int64 { return time.Now().UnixMilli() },
	}
}

// ListSessions returns every session, most recently active first, with
// full transcripts. The console renders unread badges from message Read
// flags, so transcripts are always included.
func (s *adminChatService) ListSessions(ctx context.Context) ([]*dto.AdminSessionResponse, error) {
	sessions, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return nil, serverutils.NewRetryableError("Could not load chat sessions")
	}

	out := make([]*dto.AdminSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, dto.ToAdminSessionResponse(session))
	}
	return out, nil
}

// SendMessage appends an operator reply. Like the visitor path this is
// append plus a lastActive touch, so replying bumps the session in the
// console ordering too.
func (s *adminChatService) SendMessage(ctx context.Context, sessionId string, req *dto.AdminSendMessageRequest) error {
	msg := entity.Message{
		Text:      req.Text,
		Sender:    entity.SenderAdmin,
		Timestamp: s.now(),
	}

	if _, err := s.sessions.AppendMessage(ctx, sessionId, msg); err != nil {
		return s.mapStoreError(err, sessionId)
	}

	now := s.now()
	if err := s.sessions.TouchSession(ctx, sessionId, store.TouchFields{LastActive: &now}); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		s.logger.Warn("AdminChatService", "lastActive touch failed after reply", map[string]interface{}{
			"session_id": sessionId, "error": err.Error(),
		})
	}
	return nil
}

func (s *adminChatService) MarkRead(ctx context.Context, sessionId string) error {
	if err := s.sessions.MarkVisitorMessagesRead(ctx, sessionId); err != nil {
		return s.mapStoreError(err, sessionId)
	}
	return nil
}

func (s *adminChatService) EndSession(ctx context.Context, sessionId string) error {
	ended := entity.SessionStatusEnded
	if err := s.sessions.TouchSession(ctx, sessionId, store.TouchFields{Status: &ended}); err != nil {
		return s.mapStoreError(err, sessionId)
	}
	return nil
}

func (s *adminChatService) DeleteSession(ctx context.Context, sessionId string) error {
	if err := s.sessions.DeleteSession(ctx, sessionId); err != nil {
		return s.mapStoreError(err, sessionId)
	}
	s.logger.Info("AdminChatService", "Session deleted", map[string]interface{}{
		"session_id": sessionId,
	})
	return nil
}

func (s *adminChatService) mapStoreError(err error, sessionId string) error {
	if errors.Is(err, store.ErrSessionNotFound) {
		return serverutils.NewNotFoundError("Chat session not found")
	}
	s.logger.Error("AdminChatService", "Store operation failed", map[string]interface{}{
		"session_id": sessionId, "error": err.Error(),
	})
	return serverutils.NewRetryableError("Store operation failed, please retry")
}
