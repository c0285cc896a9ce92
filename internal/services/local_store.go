// local_store.go
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
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/qingchaji/teacal-sync/internal/models"
	"github.com/qingchaji/teacal-sync/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fixed blob keys, kept byte-compatible with the keys the first TeaCal web
// client wrote so an imported browser-storage dump loads unchanged.
const (
	keyUsers   = "teacal_users"
	keyRecords = "teaRecords"
	prefPrefix = "userPreferences_"
)

// LocalStore is the fallback persistence adapter: JSON blobs under fixed
// keys in a single-file SQLite database. All tea records live in one flat
// array filtered by user at read time; every write is a read-modify-write
// of the whole blob under a process-wide mutex.
type LocalStore struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewLocalStore wraps an open local database handle.
func NewLocalStore(db *gorm.DB) *LocalStore {
	return &LocalStore{db: db}
}

func prefKey(userID string) string {
	return prefPrefix + userID
}

// load reads the blob under key into out. A missing key is treated as
// empty, not an error; corrupt JSON surfaces as a typed local error.
func (s *LocalStore) load(key string, out interface{}) error {
	var entry models.KVEntry
	err := s.db.Where("k = ?", key).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return types.NewSyncError("load "+key, "local", err)
	}
	if len(entry.V) == 0 {
		return nil
	}
	if err := json.Unmarshal(entry.V, out); err != nil {
		return types.NewSyncError("load "+key, "local", fmt.Errorf("corrupt blob: %w", err))
	}
	return nil
}

// save writes value as the blob under key.
func (s *LocalStore) save(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return types.NewSyncError("save "+key, "local", err)
	}
	entry := models.KVEntry{K: key, V: datatypes.JSON(raw), UpdatedAt: time.Now().UTC()}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "k"}},
		DoUpdates: clause.AssignmentColumns([]string{"v", "updated_at"}),
	}).Create(&entry).Error
	return types.NewSyncError("save "+key, "local", err)
}

func (s *LocalStore) loadRecords() ([]models.TeaRecord, error) {
	var recs []models.TeaRecord
	if err := s.load(keyRecords, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// GetRecords returns the user's records, newest consumption first.
func (s *LocalStore) GetRecords(userID string, limit, offset int) ([]models.TeaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadRecords()
	if err != nil {
		return nil, err
	}

	mine := make([]models.TeaRecord, 0, len(all))
	for _, r := range all {
		if r.UserID == userID {
			mine = append(mine, r)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		return mine[i].RecordedAt.After(mine[j].RecordedAt)
	})

	if offset >= len(mine) {
		return []models.TeaRecord{}, nil
	}
	mine = mine[offset:]
	if limit > 0 && limit < len(mine) {
		mine = mine[:limit]
	}
	return mine, nil
}

// AddRecord appends one record to the flat array.
func (s *LocalStore) AddRecord(rec *models.TeaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadRecords()
	if err != nil {
		return err
	}
	all = append(all, *rec)
	return s.save(keyRecords, all)
}

// UpsertRecord replaces the record with the same ID, or appends it.
func (s *LocalStore) UpsertRecord(rec *models.TeaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadRecords()
	if err != nil {
		return err
	}
	replaced := false
	for i := range all {
		if all[i].ID == rec.ID {
			all[i] = *rec
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, *rec)
	}
	return s.save(keyRecords, all)
}

// UpdateRecord applies a partial edit to the record owned by userID.
func (s *LocalStore) UpdateRecord(id, userID string, patch *RecordPatch) (*models.TeaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadRecords()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id && all[i].UserID == userID {
			patch.Apply(&all[i])
			if err := s.save(keyRecords, all); err != nil {
				return nil, err
			}
			rec := all[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

// DeleteRecord removes the record owned by userID; ErrNotFound if absent.
func (s *LocalStore) DeleteRecord(id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadRecords()
	if err != nil {
		return err
	}
	kept := all[:0]
	found := false
	for _, r := range all {
		if r.ID == id && r.UserID == userID {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return ErrNotFound
	}
	return s.save(keyRecords, kept)
}

// RecordIDs returns the set of record IDs the store holds for userID.
func (s *LocalStore) RecordIDs(userID string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadRecords()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{})
	for _, r := range all {
		if r.UserID == userID {
			ids[r.ID] = struct{}{}
		}
	}
	return ids, nil
}

// AddRecords appends a batch to the flat array.
func (s *LocalStore) AddRecords(recs []models.TeaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadRecords()
	if err != nil {
		return err
	}
	all = append(all, recs...)
	return s.save(keyRecords, all)
}

// ReplaceUserRecords swaps out every record the user owns for recs. Used to
// mirror a successful remote read into the local cache.
func (s *LocalStore) ReplaceUserRecords(userID string, recs []models.TeaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadRecords()
	if err != nil {
		return err
	}
	kept := all[:0]
	for _, r := range all {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	kept = append(kept, recs...)
	return s.save(keyRecords, kept)
}

func (s *LocalStore) loadUsers() ([]models.User, error) {
	var users []models.User
	if err := s.load(keyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetProfile returns the user row by ID.
func (s *LocalStore) GetProfile(userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == userID {
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// GetUserByUsername returns the user row by username.
func (s *LocalStore) GetUserByUsername(username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// CreateProfile appends a new user; usernames are unique.
func (s *LocalStore) CreateProfile(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Username == u.Username {
			return types.NewSyncError("create profile", "local", fmt.Errorf("username already exists"))
		}
	}
	users = append(users, *u)
	return s.save(keyUsers, users)
}

// UpsertProfile replaces the user with the same ID, or appends it.
func (s *LocalStore) UpsertProfile(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return err
	}
	replaced := false
	for i := range users {
		if users[i].ID == u.ID {
			users[i] = *u
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, *u)
	}
	return s.save(keyUsers, users)
}

// UpdateProfile applies a partial edit to the user row.
func (s *LocalStore) UpdateProfile(userID string, patch *ProfilePatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == userID {
			patch.Apply(&users[i])
			if err := s.save(keyUsers, users); err != nil {
				return nil, err
			}
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// GetPreferences returns the user's settings map.
func (s *LocalStore) GetPreferences(userID string) (map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := make(map[string]json.RawMessage)
	if err := s.load(prefKey(userID), &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// SetPreference upserts one key in the user's settings map.
func (s *LocalStore) SetPreference(userID, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := make(map[string]json.RawMessage)
	if err := s.load(prefKey(userID), &prefs); err != nil {
		return err
	}
	prefs[key] = value
	return s.save(prefKey(userID), prefs)
}

// ReplacePreferences swaps the whole settings map; used to mirror remote reads.
func (s *LocalStore) ReplacePreferences(userID string, prefs map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(prefKey(userID), prefs)
}

// Enqueue appends a pending remote write to the outbox.
func (s *LocalStore) Enqueue(op string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return types.NewSyncError("enqueue "+op, "local", err)
	}
	entry := models.OutboxEntry{Op: op, Payload: datatypes.JSON(raw), CreatedAt: time.Now().UTC()}
	return types.NewSyncError("enqueue "+op, "local", s.db.Create(&entry).Error)
}

// PendingOutbox returns queued writes in insertion order.
func (s *LocalStore) PendingOutbox() ([]models.OutboxEntry, error) {
	var entries []models.OutboxEntry
	err := s.db.Order("entry_id asc").Find(&entries).Error
	if err != nil {
		return nil, types.NewSyncError("read outbox", "local", err)
	}
	return entries, nil
}

// DequeueOutbox removes a flushed entry.
func (s *LocalStore) DequeueOutbox(entryID uint64) error {
	err := s.db.Delete(&models.OutboxEntry{}, "entry_id = ?", entryID).Error
	return types.NewSyncError("dequeue outbox", "local", err)
}

// OutboxDepth reports how many writes are waiting for a resync.
func (s *LocalStore) OutboxDepth() (int64, error) {
	var n int64
	err := s.db.Model(&models.OutboxEntry{}).Count(&n).Error
	if err != nil {
		return 0, types.NewSyncError("count outbox", "local", err)
	}
	return n, nil
}
