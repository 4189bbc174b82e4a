package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage row. Seq is the insertion tie-break for colliding
// timestamps; Timestamp (epoch ms, producer clock) is the sort key.
type ChatMessage struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId string    `gorm:"type:varchar(10);not null;index"`
	Text      string    `gorm:"type:text;not null"`
	Sender    string    `gorm:"type:varchar(20);not null"`
	Timestamp int64     `gorm:"not null;index"`
	Seq       int64     `gorm:"autoIncrement;uniqueIndex"`
	Read      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
