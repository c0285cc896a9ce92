package models

import (
	"time"
)

// UserPreference is a generic per-user key/value setting (weekly budget,
// theme, notification flags). The value carries no schema; consumers parse
// what they stored.
type UserPreference struct {
	PreferenceID    uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID          string    `gorm:"type:char(36);not null;index:idx_user_pref,unique" json:"user_id"`
	PreferenceKey   string    `gorm:"size:255;not null;index:idx_user_pref,unique" json:"preference_key"`
	PreferenceValue JSON      `gorm:"type:json" json:"preference_value"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName overrides the table name for UserPreference
func (UserPreference) TableName() string {
	return "user_preferences"
}
