package models

import (
	"time"

	"github.com/qingchaji/teacal-sync/internal/types"
)

// TeaRecord is one logged beverage-consumption event. The ID is a
// client-minted UUID and is the primary key in both stores, so the two
// stores stay reconcilable by identity.
type TeaRecord struct {
	ID                string                `gorm:"type:char(36);primaryKey" json:"id"`
	UserID            string                `gorm:"type:char(36);not null;index" json:"user_id" validate:"required"`
	TeaName           string                `gorm:"size:255;not null" json:"tea_name" validate:"required"`
	Brand             string                `gorm:"size:255" json:"brand,omitempty"`
	Size              string                `gorm:"size:16;not null" json:"size" validate:"required,oneof=small medium large"`
	SweetnessLevel    types.SweetnessLevel  `gorm:"not null" json:"sweetness_level" validate:"min=0,max=100"`
	Toppings          types.StringList      `gorm:"serializer:json;type:json" json:"toppings"`
	TeaProductID      *int64                `json:"tea_product_id,omitempty"`
	EstimatedCalories int                   `gorm:"not null" json:"estimated_calories" validate:"min=0"`
	SugarContent      int                   `json:"sugar_content,omitempty"`
	CaffeineContent   int                   `json:"caffeine_content,omitempty"`
	Mood              string                `gorm:"size:64" json:"mood,omitempty"`
	Notes             string                `gorm:"type:text" json:"notes,omitempty"`
	Rating            int                   `json:"rating,omitempty" validate:"min=0,max=5"`
	WouldOrderAgain   bool                  `json:"would_order_again,omitempty"`
	RecordedAt        time.Time             `gorm:"not null;index" json:"recorded_at"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// TableName overrides the table name for TeaRecord
func (TeaRecord) TableName() string {
	return "tea_records"
}
