package model

import "time"

// WidgetSetting is a single-row table holding the global enable flag.
type WidgetSetting struct {
	Id        int       `gorm:"primaryKey"`
	Enabled   bool      `gorm:"not null;default:true"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (WidgetSetting) TableName() string {
	return "widget_settings"
}
