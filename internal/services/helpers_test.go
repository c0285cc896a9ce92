package services_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/qingchaji/teacal-sync/internal/database"
	"github.com/qingchaji/teacal-sync/internal/models"
	"github.com/qingchaji/teacal-sync/internal/services"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupLocalStore creates an in-memory local fallback store
func setupLocalStore(t *testing.T) *services.LocalStore {
	return services.NewLocalStore(setupLocalDB(t))
}

func setupLocalDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create local test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.MigrateLocal(db); err != nil {
		t.Fatalf("Failed to migrate local test database: %v", err)
	}
	return db
}

// setupRemoteStore creates an in-memory relational store standing in for
// the configured remote database
func setupRemoteStore(t *testing.T) *services.RemoteStore {
	db := setupRemoteDB(t)
	return services.NewRemoteStore(db)
}

func setupRemoteDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to create remote test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.MigrateRemote(db); err != nil {
		t.Fatalf("Failed to migrate remote test database: %v", err)
	}
	return db
}

// errRemoteDown simulates a transient network failure of the remote store.
var errRemoteDown = errors.New("dial tcp: connection refused")

// flakyRemote wraps a real remote store and fails every call on demand.
type flakyRemote struct {
	inner *services.RemoteStore
	fail  bool
}

func (f *flakyRemote) GetRecords(userID string, limit, offset int) ([]models.TeaRecord, error) {
	if f.fail {
		return nil, errRemoteDown
	}
	return f.inner.GetRecords(userID, limit, offset)
}

func (f *flakyRemote) AddRecord(rec *models.TeaRecord) error {
	if f.fail {
		return errRemoteDown
	}
	return f.inner.AddRecord(rec)
}

func (f *flakyRemote) UpsertRecord(rec *models.TeaRecord) error {
	if f.fail {
		return errRemoteDown
	}
	return f.inner.UpsertRecord(rec)
}

func (f *flakyRemote) UpdateRecord(id, userID string, patch *services.RecordPatch) (*models.TeaRecord, error) {
	if f.fail {
		return nil, errRemoteDown
	}
	return f.inner.UpdateRecord(id, userID, patch)
}

func (f *flakyRemote) DeleteRecord(id, userID string) error {
	if f.fail {
		return errRemoteDown
	}
	return f.inner.DeleteRecord(id, userID)
}

func (f *flakyRemote) RecordIDs(userID string) (map[string]struct{}, error) {
	if f.fail {
		return nil, errRemoteDown
	}
	return f.inner.RecordIDs(userID)
}

func (f *flakyRemote) AddRecords(recs []models.TeaRecord) error {
	if f.fail {
		return errRemoteDown
	}
	return f.inner.AddRecords(recs)
}

func (f *flakyRemote) GetProfile(userID string) (*models.User, error) {
	if f.fail {
		return nil, errRemoteDown
	}
	return f.inner.GetProfile(userID)
}

func (f *flakyRemote) GetUserByUsername(username string) (*models.User, error) {
	if f.fail {
		return nil, errRemoteDown
	}
	return f.inner.GetUserByUsername(username)
}

func (f *flakyRemote) CreateProfile(u *models.User) error {
	if f.fail {
		return errRemoteDown
	}
	return f.inner.CreateProfile(u)
}

func (f *flakyRemote) UpsertProfile(u *models.User) error {
	if f.fail {
		return errRemoteDown
	}
	return f.inner.UpsertProfile(u)
}

func (f *flakyRemote) UpdateProfile(userID string, patch *services.ProfilePatch) (*models.User, error) {
	if f.fail {
		return nil, errRemoteDown
	}
	return f.inner.UpdateProfile(userID, patch)
}

func (f *flakyRemote) GetPreferences(userID string) (map[string]json.RawMessage, error) {
	if f.fail {
		return nil, errRemoteDown
	}
	return f.inner.GetPreferences(userID)
}

func (f *flakyRemote) SetPreference(userID, key string, value json.RawMessage) error {
	if f.fail {
		return errRemoteDown
	}
	return f.inner.SetPreference(userID, key, value)
}

// testRecordInput builds a minimal valid record input
func testRecordInput(userID string) *services.RecordInput {
	return &services.RecordInput{
		UserID:         userID,
		TeaName:        "珍珠奶茶",
		Brand:          "蜜雪冰城",
		Size:           "medium",
		SweetnessLevel: 50,
		Toppings:       []string{"珍珠"},
		RecordedAt:     time.Now().UTC(),
	}
}
