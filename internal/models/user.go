package models

import (
	"time"
)

// User is an account row. Physiological fields are optional; older clients
// never send them, so they are nullable rather than zero-valued.
type User struct {
	ID                  string    `gorm:"type:char(36);primaryKey" json:"id"`
	Username            string    `gorm:"uniqueIndex;size:255;not null" json:"username"`
	PasswordHash        string    `gorm:"size:255;not null" json:"-"`
	SweetnessPreference string    `gorm:"size:16" json:"sweetness_preference,omitempty" validate:"omitempty,oneof=low medium high"`
	FavoriteBrands      JSON      `gorm:"type:json" json:"favorite_brands,omitempty"`
	DislikedIngredients JSON      `gorm:"type:json" json:"disliked_ingredients,omitempty"`
	Weight              *float64  `json:"weight,omitempty"`
	Height              *float64  `json:"height,omitempty"`
	Age                 *int      `json:"age,omitempty"`
	Gender              *string   `gorm:"size:16" json:"gender,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
