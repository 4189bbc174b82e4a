package store

import (
	"context"
	"sort"
	"sync"

	"support-chat-be/internal/entity"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type memoryRecord struct {
	session  entity.ChatSession
	messages []entity.Message
}

// MemoryStore is the in-process SessionStore used by tests and as the dev
// fallback when no database connection is configured. Semantics mirror the
// gorm store: insertion seq as tie-break, lastActive-desc listing,
// last-write-wins on touches.
type MemoryStore struct {
	notifier

	mu      sync.RWMutex
	records map[string]*memoryRecord
	seq     int64
	enabled bool
}

func NewMemoryStore(publisher message.Publisher) *MemoryStore {
	return &MemoryStore{
		notifier: notifier{publisher: publisher},
		records:  make(map[string]*memoryRecord),
		enabled:  true,
	}
}

func (s *MemoryStore) CreateOrMergeSession(ctx context.Context, id string, session *entity.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		rec = &memoryRecord{}
		s.records[id] = rec
	}

	rec.session = entity.ChatSession{
		Id:         id,
		User:       session.User,
		Status:     session.Status,
		LastActive: session.LastActive,
	}
	for _, msg := range session.Messages {
		s.seq++
		msg.Seq = s.seq
		if msg.Id == "" {
			msg.Id = uuid.NewString()
		}
		rec.messages = append(rec.messages, msg)
	}

	_ = s.notify(id, ChangeMessages)
	return nil
}

func (s *MemoryStore) TouchSession(ctx context.Context, id string, fields TouchFields) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	if fields.LastActive != nil {
		rec.session.LastActive = *fields.LastActive
	}
	if fields.Status != nil {
		rec.session.Status = *fields.Status
	}
	s.mu.Unlock()

	_ = s.notify(id, ChangeTouch)
	return nil
}

func (s *MemoryStore) AppendMessage(ctx context.Context, id string, msg entity.Message) (string, error) {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return "", ErrSessionNotFound
	}
	s.seq++
	msg.Seq = s.seq
	msg.Id = uuid.NewString()
	rec.messages = append(rec.messages, msg)
	s.mu.Unlock()

	_ = s.notify(id, ChangeMessages)
	return msg.Id, nil
}

func (s *MemoryStore) GetSession(ctx context.Context, id string) (*entity.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	session := rec.session
	session.Messages = sortedMessages(rec.messages)
	return &session, nil
}

func (s *MemoryStore) GetMessages(ctx context.Context, id string) ([]entity.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sortedMessages(rec.messages), nil
}

func (s *MemoryStore) ListSessions(ctx context.Context) ([]*entity.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*entity.ChatSession, 0, len(s.records))
	for _, rec := range s.records {
		session := rec.session
		session.Messages = sortedMessages(rec.messages)
		sessions = append(sessions, &session)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastActive > sessions[j].LastActive
	})
	return sessions, nil
}

func (s *MemoryStore) MarkVisitorMessagesRead(ctx context.Context, id string) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	for i := range rec.messages {
		if rec.messages[i].Sender == entity.SenderUser {
			rec.messages[i].Read = true
		}
	}
	s.mu.Unlock()

	_ = s.notify(id, ChangeMessages)
	return nil
}

func (s *MemoryStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.records[id]
	delete(s.records, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	_ = s.notify(id, ChangeDeleted)
	return nil
}

func (s *MemoryStore) GetEnabled(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled, nil
}

func (s *MemoryStore) SetEnabled(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
	return nil
}

// sortedMessages copies and orders by timestamp ascending; the insertion
// seq breaks ties so colliding timestamps keep store order.
func sortedMessages(messages []entity.Message) []entity.Message {
	out := make([]entity.Message, len(messages))
	copy(out, messages)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}
