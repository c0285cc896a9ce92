package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/qingchaji/teacal-sync/internal/models"
	"github.com/qingchaji/teacal-sync/internal/types"
	"gorm.io/datatypes"
)

// ErrNotFound is returned by stores when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// Store is the contract both persistence adapters satisfy. The facade routes
// between a remote Store and the local fallback without caring which is which.
type Store interface {
	GetRecords(userID string, limit, offset int) ([]models.TeaRecord, error)
	AddRecord(rec *models.TeaRecord) error
	UpsertRecord(rec *models.TeaRecord) error
	UpdateRecord(id, userID string, patch *RecordPatch) (*models.TeaRecord, error)
	DeleteRecord(id, userID string) error
	RecordIDs(userID string) (map[string]struct{}, error)
	AddRecords(recs []models.TeaRecord) error

	GetProfile(userID string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	CreateProfile(u *models.User) error
	UpsertProfile(u *models.User) error
	UpdateProfile(userID string, patch *ProfilePatch) (*models.User, error)

	GetPreferences(userID string) (map[string]json.RawMessage, error)
	SetPreference(userID, key string, value json.RawMessage) error
}

// RecordInput is the write payload for a new tea record. EstimatedCalories
// is a pointer: nil means "compute it for me" via the calorie model.
type RecordInput struct {
	UserID            string               `json:"user_id" validate:"required"`
	TeaName           string               `json:"tea_name" validate:"required"`
	Brand             string               `json:"brand"`
	Size              string               `json:"size" validate:"required,oneof=small medium large"`
	SweetnessLevel    types.SweetnessLevel `json:"sweetness_level" validate:"min=0,max=100"`
	Toppings          types.StringList     `json:"toppings"`
	TeaProductID      *int64               `json:"tea_product_id"`
	EstimatedCalories *int                 `json:"estimated_calories" validate:"omitempty,min=0"`
	SugarContent      int                  `json:"sugar_content"`
	CaffeineContent   int                  `json:"caffeine_content"`
	Mood              string               `json:"mood"`
	Notes             string               `json:"notes"`
	Rating            int                  `json:"rating" validate:"min=0,max=5"`
	WouldOrderAgain   bool                 `json:"would_order_again"`
	RecordedAt        time.Time            `json:"recorded_at"`
}

// RecordPatch carries a partial edit; nil fields are left untouched.
type RecordPatch struct {
	TeaName           *string               `json:"tea_name" validate:"omitempty,min=1"`
	Brand             *string               `json:"brand"`
	Size              *string               `json:"size" validate:"omitempty,oneof=small medium large"`
	SweetnessLevel    *types.SweetnessLevel `json:"sweetness_level" validate:"omitempty,min=0,max=100"`
	Toppings          *types.StringList     `json:"toppings"`
	EstimatedCalories *int                  `json:"estimated_calories" validate:"omitempty,min=0"`
	Mood              *string               `json:"mood"`
	Notes             *string               `json:"notes"`
	Rating            *int                  `json:"rating" validate:"omitempty,min=0,max=5"`
	WouldOrderAgain   *bool                 `json:"would_order_again"`
	RecordedAt        *time.Time            `json:"recorded_at"`
}

// Apply copies the non-nil patch fields onto rec and stamps UpdatedAt.
func (p *RecordPatch) Apply(rec *models.TeaRecord) {
	if p.TeaName != nil {
		rec.TeaName = *p.TeaName
	}
	if p.Brand != nil {
		rec.Brand = *p.Brand
	}
	if p.Size != nil {
		rec.Size = *p.Size
	}
	if p.SweetnessLevel != nil {
		rec.SweetnessLevel = *p.SweetnessLevel
	}
	if p.Toppings != nil {
		rec.Toppings = *p.Toppings
	}
	if p.EstimatedCalories != nil {
		rec.EstimatedCalories = *p.EstimatedCalories
	}
	if p.Mood != nil {
		rec.Mood = *p.Mood
	}
	if p.Notes != nil {
		rec.Notes = *p.Notes
	}
	if p.Rating != nil {
		rec.Rating = *p.Rating
	}
	if p.WouldOrderAgain != nil {
		rec.WouldOrderAgain = *p.WouldOrderAgain
	}
	if p.RecordedAt != nil {
		rec.RecordedAt = *p.RecordedAt
	}
	rec.UpdatedAt = time.Now().UTC()
}

// ProfilePatch carries a partial profile edit. Username is immutable after
// registration and deliberately absent.
type ProfilePatch struct {
	SweetnessPreference *string   `json:"sweetness_preference" validate:"omitempty,oneof=low medium high"`
	FavoriteBrands      *[]string `json:"favorite_brands"`
	DislikedIngredients *[]string `json:"disliked_ingredients"`
	Weight              *float64  `json:"weight" validate:"omitempty,gt=0"`
	Height              *float64  `json:"height" validate:"omitempty,gt=0"`
	Age                 *int      `json:"age" validate:"omitempty,gt=0,lt=150"`
	Gender              *string   `json:"gender"`
}

// Apply copies the non-nil patch fields onto u and stamps UpdatedAt.
func (p *ProfilePatch) Apply(u *models.User) {
	if p.SweetnessPreference != nil {
		u.SweetnessPreference = *p.SweetnessPreference
	}
	if p.FavoriteBrands != nil {
		u.FavoriteBrands = mustJSON(*p.FavoriteBrands)
	}
	if p.DislikedIngredients != nil {
		u.DislikedIngredients = mustJSON(*p.DislikedIngredients)
	}
	if p.Weight != nil {
		u.Weight = p.Weight
	}
	if p.Height != nil {
		u.Height = p.Height
	}
	if p.Age != nil {
		u.Age = p.Age
	}
	if p.Gender != nil {
		u.Gender = p.Gender
	}
	u.UpdatedAt = time.Now().UTC()
}

func mustJSON(v interface{}) models.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		// Only reachable with unmarshalable values, which the patch types
		// cannot carry.
		panic(err)
	}
	return models.JSON{JSON: datatypes.JSON(raw)}
}
