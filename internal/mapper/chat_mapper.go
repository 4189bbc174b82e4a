package mapper

import (
	"encoding/json"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/model"

	"gorm.io/datatypes"
)

func ToSessionEntity(row *model.ChatSession) *entity.ChatSession {
	var user entity.UserDetails
	// Malformed snapshot degrades to an empty name/phone, not a failure.
	_ = json.Unmarshal(row.User, &user)

	return &entity.ChatSession{
		Id:         row.Id,
		User:       user,
		Status:     entity.SessionStatus(row.Status),
		LastActive: row.LastActive,
	}
}

func ToSessionModel(id string, session *entity.ChatSession) (*model.ChatSession, error) {
	userJSON, err := json.Marshal(session.User)
	if err != nil {
		return nil, err
	}
	return &model.ChatSession{
		Id:         id,
		User:       datatypes.JSON(userJSON),
		Status:     string(session.Status),
		LastActive: session.LastActive,
	}, nil
}

func ToMessageEntity(row *model.ChatMessage) entity.Message {
	return entity.Message{
		Id:        row.Id.String(),
		Text:      row.Text,
		Sender:    entity.Sender(row.Sender),
		Timestamp: row.Timestamp,
		Read:      row.Read,
		Seq:       row.Seq,
	}
}

func ToMessageEntities(rows []*model.ChatMessage) []entity.Message {
	out := make([]entity.Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToMessageEntity(row))
	}
	return out
}
