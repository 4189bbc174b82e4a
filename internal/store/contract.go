package store

import (
	"context"
	"errors"

	"support-chat-be/internal/entity"
)

// ErrSessionNotFound covers both "never existed" and "deleted mid-flight";
// the core treats a vanished record the same as an unknown one.
var ErrSessionNotFound = errors.New("chat session not found")

// TouchFields is a partial session update. Nil fields are left untouched;
// messages are never affected by a touch.
type TouchFields struct {
	LastActive *int64
	Status     *entity.SessionStatus
}

// SessionStore is the boundary to the keyed real-time session store.
//
// CreateOrMergeSession is create-if-absent: when a record already exists
// for the id, the seeded messages are appended to the existing log and
// user/status/lastActive are updated, so a returning visitor keeps prior
// history.
type SessionStore interface {
	CreateOrMergeSession(ctx context.Context, id string, session *entity.ChatSession) error
	TouchSession(ctx context.Context, id string, fields TouchFields) error
	AppendMessage(ctx context.Context, id string, msg entity.Message) (string, error)
	GetSession(ctx context.Context, id string) (*entity.ChatSession, error)
	GetMessages(ctx context.Context, id string) ([]entity.Message, error)
	ListSessions(ctx context.Context) ([]*entity.ChatSession, error)
	MarkVisitorMessagesRead(ctx context.Context, id string) error
	DeleteSession(ctx context.Context, id string) error
}

// SettingsStore persists the global widget enable flag.
type SettingsStore interface {
	GetEnabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error
}
