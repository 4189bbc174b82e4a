package model

import (
	"time"

	"gorm.io/datatypes"
)

// ChatSession row. Id is the visitor's normalized 10-digit phone number,
// so the record is content-addressed and merge-on-handoff is an upsert.
type ChatSession struct {
	Id         string         `gorm:"type:varchar(10);primaryKey"`
	User       datatypes.JSON `gorm:"not null"`
	Status     string         `gorm:"type:varchar(20);not null;index"`
	LastActive int64          `gorm:"not null;index"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
