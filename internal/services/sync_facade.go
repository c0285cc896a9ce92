// sync_facade.go
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
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/qingchaji/teacal-sync/internal/calorie"
	"github.com/qingchaji/teacal-sync/internal/models"
	"gorm.io/gorm"
)

// SyncState is the facade's routing mode.
//
//	Offline  - no remote store was configured; everything is local, forever.
//	Online   - remote is primary, local mirrors successful remote traffic.
//	Degraded - remote is configured but failed; traffic goes local and
//	           writes queue in the outbox until a resync succeeds.
type SyncState int

const (
	StateOffline SyncState = iota
	StateOnline
	StateDegraded
)

func (s SyncState) String() string {
	switch s {
	case StateOffline:
		return "offline"
	case StateOnline:
		return "online"
	case StateDegraded:
		return "degraded"
	}
	return "unknown"
}

// BudgetKey is the preference key holding the weekly calorie budget. The
// value is stored as a JSON string for compatibility with the first client.
const BudgetKey = "weeklyBudget"

// SyncFacade is the single entry point for all persistence. It prefers the
// remote store, mirrors successful remote traffic into the local store as a
// read cache, and on remote failure degrades to local with an outbox of
// pending writes instead of silently dropping them.
type SyncFacade struct {
	remote Store // nil when no remote is configured
	local  *LocalStore

	mu    sync.RWMutex
	state SyncState

	validate      *validator.Validate
	defaultBudget int
}

// NewSyncFacade builds a facade. remote may be nil, which pins the facade
// to Offline; there is no runtime transition into remote mode.
func NewSyncFacade(remote Store, local *LocalStore, defaultBudget int) *SyncFacade {
	state := StateOffline
	if remote != nil {
		state = StateOnline
	}
	if defaultBudget <= 0 {
		defaultBudget = 2000
	}
	return &SyncFacade{
		remote:        remote,
		local:         local,
		state:         state,
		validate:      validator.New(),
		defaultBudget: defaultBudget,
	}
}

// State returns the current routing mode.
func (f *SyncFacade) State() SyncState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// SyncStatus is the operator-facing view of the facade.
type SyncStatus struct {
	State            string `json:"state"`
	RemoteConfigured bool   `json:"remote_configured"`
	PendingWrites    int64  `json:"pending_writes"`
}

// Status reports the routing mode and outbox depth.
func (f *SyncFacade) Status() SyncStatus {
	depth, err := f.local.OutboxDepth()
	if err != nil {
		log.Printf("Failed to read outbox depth: %v", err)
	}
	return SyncStatus{
		State:            f.State().String(),
		RemoteConfigured: f.remote != nil,
		PendingWrites:    depth,
	}
}

// markDegraded flips Online to Degraded after a remote failure.
func (f *SyncFacade) markDegraded(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateOnline {
		f.state = StateDegraded
		log.Printf("Remote store failed during %s, degrading to local: %v", op, err)
	}
}

// useRemote reports whether the next call should try the remote store.
func (f *SyncFacade) useRemote() bool {
	return f.State() == StateOnline
}

// GetRecords returns the user's tea records, newest first.
func (f *SyncFacade) GetRecords(userID string, limit, offset int) ([]models.TeaRecord, error) {
	if f.useRemote() {
		recs, err := f.remote.GetRecords(userID, limit, offset)
		if err == nil {
			// Mirror only unpaginated reads; a partial page would evict
			// local records the page did not contain.
			if limit <= 0 && offset == 0 {
				if merr := f.local.ReplaceUserRecords(userID, recs); merr != nil {
					log.Printf("Failed to mirror records for user %s: %v", userID, merr)
				}
			}
			return recs, nil
		}
		f.markDegraded("get records", err)
	}
	return f.local.GetRecords(userID, limit, offset)
}

// AddRecord validates input, mints the canonical record ID, computes the
// calorie estimate when the client did not override it, and routes the write.
func (f *SyncFacade) AddRecord(input *RecordInput) (*models.TeaRecord, error) {
	if err := f.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid record: %w", err)
	}

	now := time.Now().UTC()
	recordedAt := input.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = now
	}

	rec := &models.TeaRecord{
		ID:              uuid.NewString(),
		UserID:          input.UserID,
		TeaName:         input.TeaName,
		Brand:           input.Brand,
		Size:            input.Size,
		SweetnessLevel:  input.SweetnessLevel,
		Toppings:        input.Toppings,
		TeaProductID:    input.TeaProductID,
		SugarContent:    input.SugarContent,
		CaffeineContent: input.CaffeineContent,
		Mood:            input.Mood,
		Notes:           input.Notes,
		Rating:          input.Rating,
		WouldOrderAgain: input.WouldOrderAgain,
		RecordedAt:      recordedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.SugarContent == 0 {
		rec.SugarContent = calorie.SugarGrams(input.Size, input.SweetnessLevel.Int())
	}
	if input.EstimatedCalories != nil {
		rec.EstimatedCalories = *input.EstimatedCalories
	} else {
		rec.EstimatedCalories = calorie.EstimateRecord(input.Size, input.SweetnessLevel.Int(), input.Toppings.Slice())
	}

	err := f.writeThrough("add record",
		func(remote Store) error { return remote.AddRecord(rec) },
		func() error { return f.local.UpsertRecord(rec) },
		models.OutboxUpsertRecord, rec,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateRecord applies a partial edit wherever the record lives.
func (f *SyncFacade) UpdateRecord(id, userID string, patch *RecordPatch) (*models.TeaRecord, error) {
	if err := f.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("invalid record patch: %w", err)
	}

	if f.useRemote() {
		rec, err := f.remote.UpdateRecord(id, userID, patch)
		if err == nil {
			if merr := f.local.UpsertRecord(rec); merr != nil {
				log.Printf("Failed to mirror record %s: %v", id, merr)
			}
			return rec, nil
		}
		if errors.Is(err, ErrNotFound) {
			// The record may exist only locally (created before a
			// migration ran); edit it where it lives.
			return f.local.UpdateRecord(id, userID, patch)
		}
		f.markDegraded("update record", err)
	}

	rec, err := f.local.UpdateRecord(id, userID, patch)
	if err != nil {
		return nil, err
	}
	if f.State() == StateDegraded {
		if qerr := f.local.Enqueue(models.OutboxUpsertRecord, rec); qerr != nil {
			log.Printf("Failed to enqueue record update %s: %v", id, qerr)
		}
	}
	return rec, nil
}

// DeleteRecord removes the record from whichever store holds it. It
// succeeds when either store held the row; a record present only in the
// local store must not fail the delete merely because remote lacks it.
func (f *SyncFacade) DeleteRecord(id, userID string) error {
	if f.useRemote() {
		rerr := f.remote.DeleteRecord(id, userID)
		if rerr != nil && !errors.Is(rerr, ErrNotFound) {
			f.markDegraded("delete record", rerr)
			lerr := f.local.DeleteRecord(id, userID)
			if lerr != nil && !errors.Is(lerr, ErrNotFound) {
				return lerr
			}
			if qerr := f.local.Enqueue(models.OutboxDeleteRecord, deletePayload{ID: id, UserID: userID}); qerr != nil {
				log.Printf("Failed to enqueue record delete %s: %v", id, qerr)
			}
			return nil
		}

		lerr := f.local.DeleteRecord(id, userID)
		if lerr != nil && !errors.Is(lerr, ErrNotFound) {
			return lerr
		}
		if errors.Is(rerr, ErrNotFound) && errors.Is(lerr, ErrNotFound) {
			return ErrNotFound
		}
		return nil
	}

	err := f.local.DeleteRecord(id, userID)
	if err != nil {
		return err
	}
	if f.State() == StateDegraded {
		if qerr := f.local.Enqueue(models.OutboxDeleteRecord, deletePayload{ID: id, UserID: userID}); qerr != nil {
			log.Printf("Failed to enqueue record delete %s: %v", id, qerr)
		}
	}
	return nil
}

// GetProfile returns the user profile.
func (f *SyncFacade) GetProfile(userID string) (*models.User, error) {
	if f.useRemote() {
		u, err := f.remote.GetProfile(userID)
		if err == nil {
			if merr := f.local.UpsertProfile(u); merr != nil {
				log.Printf("Failed to mirror profile %s: %v", userID, merr)
			}
			return u, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		f.markDegraded("get profile", err)
	}
	return f.local.GetProfile(userID)
}

// GetUserByUsername resolves a username in whichever store answers.
func (f *SyncFacade) GetUserByUsername(username string) (*models.User, error) {
	if f.useRemote() {
		u, err := f.remote.GetUserByUsername(username)
		if err == nil || errors.Is(err, ErrNotFound) {
			return u, err
		}
		f.markDegraded("get user by username", err)
	}
	return f.local.GetUserByUsername(username)
}

// CreateProfile registers a new account in both stores.
func (f *SyncFacade) CreateProfile(u *models.User) error {
	if err := f.validate.Struct(u); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	if f.useRemote() {
		err := f.remote.CreateProfile(u)
		if err == nil {
			if merr := f.local.UpsertProfile(u); merr != nil {
				log.Printf("Failed to mirror new profile %s: %v", u.ID, merr)
			}
			return nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Constraint violation, not an outage
			return err
		}
		f.markDegraded("create profile", err)
	}
	if err := f.local.CreateProfile(u); err != nil {
		return err
	}
	if f.State() == StateDegraded {
		if qerr := f.local.Enqueue(models.OutboxUpsertProfile, newProfilePayload(u)); qerr != nil {
			log.Printf("Failed to enqueue profile %s: %v", u.ID, qerr)
		}
	}
	return nil
}

// UpdateProfile applies a partial profile edit.
func (f *SyncFacade) UpdateProfile(userID string, patch *ProfilePatch) (*models.User, error) {
	if err := f.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("invalid profile patch: %w", err)
	}
	if f.useRemote() {
		u, err := f.remote.UpdateProfile(userID, patch)
		if err == nil {
			if merr := f.local.UpsertProfile(u); merr != nil {
				log.Printf("Failed to mirror profile %s: %v", userID, merr)
			}
			return u, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		f.markDegraded("update profile", err)
	}
	u, err := f.local.UpdateProfile(userID, patch)
	if err != nil {
		return nil, err
	}
	if f.State() == StateDegraded {
		if qerr := f.local.Enqueue(models.OutboxUpsertProfile, newProfilePayload(u)); qerr != nil {
			log.Printf("Failed to enqueue profile %s: %v", userID, qerr)
		}
	}
	return u, nil
}

// GetPreferences returns the user's settings map.
func (f *SyncFacade) GetPreferences(userID string) (map[string]json.RawMessage, error) {
	if f.useRemote() {
		prefs, err := f.remote.GetPreferences(userID)
		if err == nil {
			if merr := f.local.ReplacePreferences(userID, prefs); merr != nil {
				log.Printf("Failed to mirror preferences for user %s: %v", userID, merr)
			}
			return prefs, nil
		}
		f.markDegraded("get preferences", err)
	}
	return f.local.GetPreferences(userID)
}

// SetPreference upserts one setting.
func (f *SyncFacade) SetPreference(userID, key string, value json.RawMessage) error {
	if userID == "" || key == "" {
		return fmt.Errorf("invalid preference: user id and key are required")
	}
	return f.writeThrough("set preference",
		func(remote Store) error { return remote.SetPreference(userID, key, value) },
		func() error { return f.local.SetPreference(userID, key, value) },
		models.OutboxSetPreference, preferencePayload{UserID: userID, Key: key, Value: value},
	)
}

// GetBudget returns the weekly calorie budget, tolerating whatever JSON
// shape an old client stored, falling back to the default when unset or
// when both stores fail.
func (f *SyncFacade) GetBudget(userID string) int {
	prefs, err := f.GetPreferences(userID)
	if err != nil {
		log.Printf("Failed to load budget for user %s: %v", userID, err)
		return f.defaultBudget
	}
	raw, ok := prefs[BudgetKey]
	if !ok {
		return f.defaultBudget
	}
	if b, ok := parseBudget(raw); ok {
		return b
	}
	return f.defaultBudget
}

// SetBudget stores the weekly calorie budget.
func (f *SyncFacade) SetBudget(userID string, budget int) error {
	if budget < 0 {
		return fmt.Errorf("invalid budget: must be non-negative")
	}
	value, _ := json.Marshal(strconv.Itoa(budget))
	return f.SetPreference(userID, BudgetKey, value)
}

// writeThrough routes a write: remote first when Online with a local
// mirror, local with an outbox entry when Degraded, local only when
// Offline. A write accepted by the local store never fails the caller
// just because remote was down; it is queued instead.
func (f *SyncFacade) writeThrough(op string, remoteWrite func(Store) error, localWrite func() error, outboxOp string, payload interface{}) error {
	if f.useRemote() {
		if err := remoteWrite(f.remote); err == nil {
			if merr := localWrite(); merr != nil {
				log.Printf("Failed to mirror %s: %v", op, merr)
			}
			return nil
		} else if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		} else {
			f.markDegraded(op, err)
		}
	}

	if err := localWrite(); err != nil {
		return err
	}
	if f.State() == StateDegraded {
		if qerr := f.local.Enqueue(outboxOp, payload); qerr != nil {
			log.Printf("Failed to enqueue %s: %v", op, qerr)
		}
	}
	return nil
}

func parseBudget(raw json.RawMessage) (int, bool) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Outbox payload shapes.

type deletePayload struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

type preferencePayload struct {
	UserID string          `json:"user_id"`
	Key    string          `json:"preference_key"`
	Value  json.RawMessage `json:"preference_value"`
}

// profilePayload carries the password hash explicitly because the User
// model hides it from JSON.
type profilePayload struct {
	User         models.User `json:"user"`
	PasswordHash string      `json:"password_hash"`
}

func newProfilePayload(u *models.User) profilePayload {
	return profilePayload{User: *u, PasswordHash: u.PasswordHash}
}
