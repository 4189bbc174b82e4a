package store

import (
	"context"
	"errors"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/mapper"
	"support-chat-be/internal/model"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the postgres-backed SessionStore and SettingsStore.
type GormStore struct {
	notifier
	db *gorm.DB
}

func NewGormStore(db *gorm.DB, publisher message.Publisher) *GormStore {
	return &GormStore{
		notifier: notifier{publisher: publisher},
		db:       db,
	}
}

func (s *GormStore) CreateOrMergeSession(ctx context.Context, id string, session *entity.ChatSession) error {
	row, err := mapper.ToSessionModel(id, session)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Upsert the session row; the message log is append-only and is
		// never replaced, so a returning visitor keeps prior history.
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user", "status", "last_active", "updated_at"}),
		}).Create(row).Error; err != nil {
			return err
		}

		for _, msg := range session.Messages {
			msgRow := &model.ChatMessage{
				Id:        uuid.New(),
				SessionId: id,
				Text:      msg.Text,
				Sender:    string(msg.Sender),
				Timestamp: msg.Timestamp,
				Read:      msg.Read,
			}
			if err := tx.Create(msgRow).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.notify(id, ChangeMessages)
	return nil
}

func (s *GormStore) TouchSession(ctx context.Context, id string, fields TouchFields) error {
	updates := map[string]interface{}{}
	if fields.LastActive != nil {
		updates["last_active"] = *fields.LastActive
	}
	if fields.Status != nil {
		updates["status"] = string(*fields.Status)
	}
	if len(updates) == 0 {
		return nil
	}

	result := s.db.WithContext(ctx).Model(&model.ChatSession{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}

	_ = s.notify(id, ChangeTouch)
	return nil
}

func (s *GormStore) AppendMessage(ctx context.Context, id string, msg entity.Message) (string, error) {
	if err := s.sessionExists(ctx, id); err != nil {
		return "", err
	}

	row := &model.ChatMessage{
		Id:        uuid.New(),
		SessionId: id,
		Text:      msg.Text,
		Sender:    string(msg.Sender),
		Timestamp: msg.Timestamp,
		Read:      msg.Read,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return "", err
	}

	_ = s.notify(id, ChangeMessages)
	return row.Id.String(), nil
}

func (s *GormStore) GetSession(ctx context.Context, id string) (*entity.ChatSession, error) {
	var row model.ChatSession
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	session := mapper.ToSessionEntity(&row)
	messages, err := s.GetMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Messages = messages
	return session, nil
}

func (s *GormStore) GetMessages(ctx context.Context, id string) ([]entity.Message, error) {
	var rows []*model.ChatMessage
	err := s.db.WithContext(ctx).
		Where("session_id = ?", id).
		Order("timestamp ASC").
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapper.ToMessageEntities(rows), nil
}

func (s *GormStore) ListSessions(ctx context.Context) ([]*entity.ChatSession, error) {
	var rows []*model.ChatSession
	if err := s.db.WithContext(ctx).Order("last_active DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	sessions := make([]*entity.ChatSession, 0, len(rows))
	for _, row := range rows {
		session := mapper.ToSessionEntity(row)
		messages, err := s.GetMessages(ctx, row.Id)
		if err != nil {
			return nil, err
		}
		session.Messages = messages
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *GormStore) MarkVisitorMessagesRead(ctx context.Context, id string) error {
	if err := s.sessionExists(ctx, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Model(&model.ChatMessage{}).
		Where("session_id = ? AND sender = ?", id, string(entity.SenderUser)).
		Update("read", true).Error
	if err != nil {
		return err
	}

	_ = s.notify(id, ChangeMessages)
	return nil
}

func (s *GormStore) DeleteSession(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.ChatMessage{}, "session_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.ChatSession{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSessionNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.notify(id, ChangeDeleted)
	return nil
}

func (s *GormStore) sessionExists(ctx context.Context, id string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.ChatSession{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *GormStore) GetEnabled(ctx context.Context) (bool, error) {
	var row model.WidgetSetting
	if err := s.db.WithContext(ctx).First(&row, "id = ?", 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No row yet means the widget was never toggled; default on.
			return true, nil
		}
		return false, err
	}
	return row.Enabled, nil
}

func (s *GormStore) SetEnabled(ctx context.Context, enabled bool) error {
	row := &model.WidgetSetting{Id: 1, Enabled: enabled}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
	}).Create(row).Error
}
