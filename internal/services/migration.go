package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qingchaji/teacal-sync/internal/models"
)

// MigrationResult reports a one-shot local-to-remote copy.
type MigrationResult struct {
	MigratedCount int `json:"migratedCount"`
}

// Migrate copies the user's local records into the remote store, skipping
// IDs the remote already holds. Because record IDs are minted once and
// shared by both stores, re-running finds an empty difference and the
// operation is idempotent. A partial bulk-insert failure is reported, not
// rolled back.
func (f *SyncFacade) Migrate(userID string) (*MigrationResult, error) {
	if f.remote == nil {
		return nil, fmt.Errorf("remote store not configured")
	}

	localRecs, err := f.local.GetRecords(userID, 0, 0)
	if err != nil {
		return nil, err
	}
	if len(localRecs) == 0 {
		return &MigrationResult{MigratedCount: 0}, nil
	}

	remoteIDs, err := f.remote.RecordIDs(userID)
	if err != nil {
		f.markDegraded("migrate", err)
		return nil, err
	}

	var toMigrate []models.TeaRecord
	for _, rec := range localRecs {
		if _, exists := remoteIDs[rec.ID]; !exists {
			toMigrate = append(toMigrate, rec)
		}
	}
	if len(toMigrate) == 0 {
		return &MigrationResult{MigratedCount: 0}, nil
	}

	if err := f.remote.AddRecords(toMigrate); err != nil {
		f.markDegraded("migrate", err)
		return nil, err
	}

	return &MigrationResult{MigratedCount: len(toMigrate)}, nil
}

// MigrationCheck reports whether a migration would move anything.
type MigrationCheck struct {
	NeedsMigration    bool `json:"needsMigration"`
	LocalRecordCount  int  `json:"localRecordsCount"`
	RemoteRecordCount int  `json:"dbRecordsCount"`
}

// CheckMigration counts both sides without writing anything.
func (f *SyncFacade) CheckMigration(userID string) (*MigrationCheck, error) {
	localIDs, err := f.local.RecordIDs(userID)
	if err != nil {
		return nil, err
	}
	check := &MigrationCheck{LocalRecordCount: len(localIDs)}

	if f.remote == nil {
		check.NeedsMigration = len(localIDs) > 0
		return check, nil
	}

	remoteIDs, err := f.remote.RecordIDs(userID)
	if err != nil {
		f.markDegraded("check migration", err)
		return nil, err
	}
	check.RemoteRecordCount = len(remoteIDs)
	check.NeedsMigration = len(localIDs) > 0 && len(remoteIDs) == 0
	return check, nil
}

// Resync replays the outbox against the remote store in insertion order.
// Full success restores Online; any failure keeps the unflushed tail and
// the Degraded state. Returns how many entries were flushed.
func (f *SyncFacade) Resync() (int, error) {
	if f.remote == nil {
		return 0, fmt.Errorf("remote store not configured")
	}

	pending, err := f.local.PendingOutbox()
	if err != nil {
		return 0, err
	}

	flushed := 0
	for _, entry := range pending {
		if err := f.replay(entry); err != nil {
			f.mu.Lock()
			f.state = StateDegraded
			f.mu.Unlock()
			return flushed, fmt.Errorf("resync stopped at entry %d (%s): %w", entry.EntryID, entry.Op, err)
		}
		if err := f.local.DequeueOutbox(entry.EntryID); err != nil {
			return flushed, err
		}
		flushed++
	}

	f.mu.Lock()
	f.state = StateOnline
	f.mu.Unlock()
	return flushed, nil
}

// replay applies one outbox entry to the remote store.
func (f *SyncFacade) replay(entry models.OutboxEntry) error {
	switch entry.Op {
	case models.OutboxUpsertRecord:
		var rec models.TeaRecord
		if err := json.Unmarshal(entry.Payload, &rec); err != nil {
			return fmt.Errorf("corrupt outbox payload: %w", err)
		}
		return f.remote.UpsertRecord(&rec)

	case models.OutboxDeleteRecord:
		var p deletePayload
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return fmt.Errorf("corrupt outbox payload: %w", err)
		}
		err := f.remote.DeleteRecord(p.ID, p.UserID)
		if errors.Is(err, ErrNotFound) {
			// The row never made it remote; nothing to delete
			return nil
		}
		return err

	case models.OutboxSetPreference:
		var p preferencePayload
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return fmt.Errorf("corrupt outbox payload: %w", err)
		}
		return f.remote.SetPreference(p.UserID, p.Key, p.Value)

	case models.OutboxUpsertProfile:
		var p profilePayload
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return fmt.Errorf("corrupt outbox payload: %w", err)
		}
		u := p.User
		u.PasswordHash = p.PasswordHash
		return f.remote.UpsertProfile(&u)
	}
	return fmt.Errorf("unknown outbox op: %s", entry.Op)
}
