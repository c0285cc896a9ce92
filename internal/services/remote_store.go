// remote_store.go
//
// Dual-store data sync service for TeaCal (轻茶纪), a milk-tea calorie tracker
// Copyright (c) 2026 TeaCal Project Contributors
//
// This file is part of teacal-sync.
// teacal-sync is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// teacal-sync is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with teacal-sync.
// If not, see <https://www.gnu.org/licenses/>.

package services

import (
	"encoding/json"
	"time"

	"github.com/qingchaji/teacal-sync/internal/models"
	"github.com/qingchaji/teacal-sync/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RemoteStore is the typed CRUD adapter over the configured remote database.
// One round trip per call, no retries, no batching except the migration
// bulk insert. Sweetness levels and topping lists are already canonical by
// the time they get here; the JSON boundary types did the conversion.
type RemoteStore struct {
	db *gorm.DB
}

// NewRemoteStore wraps an open remote database handle.
func NewRemoteStore(db *gorm.DB) *RemoteStore {
	return &RemoteStore{db: db}
}

func remoteErr(op string, err error) error {
	if err == gorm.ErrRecordNotFound {
		return ErrNotFound
	}
	return types.NewSyncError(op, "remote", err)
}

// GetRecords returns the user's records, newest consumption first.
func (s *RemoteStore) GetRecords(userID string, limit, offset int) ([]models.TeaRecord, error) {
	var recs []models.TeaRecord
	q := s.db.Where("user_id = ?", userID).Order("recorded_at desc").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, remoteErr("get records", err)
	}
	return recs, nil
}

// AddRecord inserts one record. A TeaProductID that does not reference a
// real catalog row must already be nil, or the insert trips the foreign key.
func (s *RemoteStore) AddRecord(rec *models.TeaRecord) error {
	return remoteErr("add record", s.db.Create(rec).Error)
}

// UpsertRecord inserts or fully replaces a record by primary key.
func (s *RemoteStore) UpsertRecord(rec *models.TeaRecord) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(rec).Error
	return remoteErr("upsert record", err)
}

// UpdateRecord applies a partial edit to the record owned by userID.
func (s *RemoteStore) UpdateRecord(id, userID string, patch *RecordPatch) (*models.TeaRecord, error) {
	var rec models.TeaRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&rec).Error; err != nil {
			return err
		}
		patch.Apply(&rec)
		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, remoteErr("update record", err)
	}
	return &rec, nil
}

// DeleteRecord removes the record owned by userID; ErrNotFound if absent.
func (s *RemoteStore) DeleteRecord(id, userID string) error {
	res := s.db.Delete(&models.TeaRecord{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return remoteErr("delete record", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordIDs returns the set of record IDs the store holds for userID.
func (s *RemoteStore) RecordIDs(userID string) (map[string]struct{}, error) {
	var ids []string
	err := s.db.Model(&models.TeaRecord{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	if err != nil {
		return nil, remoteErr("get record ids", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// AddRecords bulk-inserts a batch in one round trip (migration path).
func (s *RemoteStore) AddRecords(recs []models.TeaRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return remoteErr("bulk insert records", s.db.Create(&recs).Error)
}

// GetProfile returns the user row by ID.
func (s *RemoteStore) GetProfile(userID string) (*models.User, error) {
	var u models.User
	if err := s.db.Where("id = ?", userID).First(&u).Error; err != nil {
		return nil, remoteErr("get profile", err)
	}
	return &u, nil
}

// GetUserByUsername returns the user row by username.
func (s *RemoteStore) GetUserByUsername(username string) (*models.User, error) {
	var u models.User
	if err := s.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, remoteErr("get user by username", err)
	}
	return &u, nil
}

// CreateProfile inserts a new user; the unique index enforces username.
func (s *RemoteStore) CreateProfile(u *models.User) error {
	return remoteErr("create profile", s.db.Create(u).Error)
}

// UpsertProfile inserts or fully replaces a user by primary key.
func (s *RemoteStore) UpsertProfile(u *models.User) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(u).Error
	return remoteErr("upsert profile", err)
}

// UpdateProfile applies a partial edit to the user row.
func (s *RemoteStore) UpdateProfile(userID string, patch *ProfilePatch) (*models.User, error) {
	var u models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", userID).First(&u).Error; err != nil {
			return err
		}
		patch.Apply(&u)
		return tx.Save(&u).Error
	})
	if err != nil {
		return nil, remoteErr("update profile", err)
	}
	return &u, nil
}

// GetPreferences returns the user's settings as a key/value map.
func (s *RemoteStore) GetPreferences(userID string) (map[string]json.RawMessage, error) {
	var rows []models.UserPreference
	if err := s.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, remoteErr("get preferences", err)
	}
	prefs := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		prefs[row.PreferenceKey] = json.RawMessage(row.PreferenceValue.JSON)
	}
	return prefs, nil
}

// SetPreference upserts one (user_id, preference_key) row.
func (s *RemoteStore) SetPreference(userID, key string, value json.RawMessage) error {
	row := models.UserPreference{
		UserID:          userID,
		PreferenceKey:   key,
		PreferenceValue: models.JSON{JSON: datatypes.JSON(value)},
		UpdatedAt:       time.Now().UTC(),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "preference_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"preference_value", "updated_at"}),
	}).Create(&row).Error
	return remoteErr("set preference", err)
}
