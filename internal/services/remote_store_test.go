package services_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/qingchaji/teacal-sync/internal/models"
	"github.com/qingchaji/teacal-sync/internal/services"
	"gorm.io/gorm"
)

// TestRemoteStoreNotFound tests the sentinel mapping for missing rows
func TestRemoteStoreNotFound(t *testing.T) {
	remote := setupRemoteStore(t)

	if _, err := remote.GetProfile("missing"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing profile, got %v", err)
	}
	if _, err := remote.GetUserByUsername("missing"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing username, got %v", err)
	}
	if err := remote.DeleteRecord("missing", "user-1"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing record, got %v", err)
	}
	if _, err := remote.UpdateRecord("missing", "user-1", &services.RecordPatch{}); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing record update, got %v", err)
	}
}

// TestRemoteStoreDuplicateUsername tests the unique index surfacing as a
// translated duplicate-key error
func TestRemoteStoreDuplicateUsername(t *testing.T) {
	remote := setupRemoteStore(t)

	u := &models.User{ID: "id-1", Username: "taken", PasswordHash: "x"}
	if err := remote.CreateProfile(u); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	dup := &models.User{ID: "id-2", Username: "taken", PasswordHash: "y"}
	err := remote.CreateProfile(dup)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("Expected gorm.ErrDuplicatedKey, got %v", err)
	}
}

// TestRemoteStoreUpsertRecord tests insert-or-replace by primary key
func TestRemoteStoreUpsertRecord(t *testing.T) {
	remote := setupRemoteStore(t)

	rec := &models.TeaRecord{ID: "rec-1", UserID: "user-1", TeaName: "before", Size: "medium", RecordedAt: time.Now().UTC()}
	if err := remote.UpsertRecord(rec); err != nil {
		t.Fatalf("UpsertRecord insert failed: %v", err)
	}
	rec.TeaName = "after"
	if err := remote.UpsertRecord(rec); err != nil {
		t.Fatalf("UpsertRecord replace failed: %v", err)
	}

	recs, err := remote.GetRecords("user-1", 0, 0)
	if err != nil {
		t.Fatalf("GetRecords failed: %v", err)
	}
	if len(recs) != 1 || recs[0].TeaName != "after" {
		t.Errorf("Expected one replaced record, got %v", recs)
	}
}

// TestRemoteStorePreferences tests the (user, key) upsert and map read
func TestRemoteStorePreferences(t *testing.T) {
	remote := setupRemoteStore(t)

	if err := remote.SetPreference("user-1", "theme", json.RawMessage(`"dark"`)); err != nil {
		t.Fatalf("SetPreference failed: %v", err)
	}
	if err := remote.SetPreference("user-1", "theme", json.RawMessage(`"light"`)); err != nil {
		t.Fatalf("SetPreference upsert failed: %v", err)
	}
	if err := remote.SetPreference("user-1", "weeklyBudget", json.RawMessage(`"2000"`)); err != nil {
		t.Fatalf("SetPreference failed: %v", err)
	}

	prefs, err := remote.GetPreferences("user-1")
	if err != nil {
		t.Fatalf("GetPreferences failed: %v", err)
	}
	if len(prefs) != 2 {
		t.Fatalf("Expected 2 preferences, got %d", len(prefs))
	}
	if string(prefs["theme"]) != `"light"` {
		t.Errorf("Expected the last value to win, got %s", prefs["theme"])
	}
}

// TestRemoteStoreRecordOrdering tests newest-first reads with paging
func TestRemoteStoreRecordOrdering(t *testing.T) {
	remote := setupRemoteStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"oldest", "middle", "newest"} {
		rec := &models.TeaRecord{
			ID:         name,
			UserID:     "user-1",
			TeaName:    name,
			Size:       "small",
			RecordedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := remote.AddRecord(rec); err != nil {
			t.Fatalf("AddRecord failed: %v", err)
		}
	}

	recs, err := remote.GetRecords("user-1", 2, 0)
	if err != nil {
		t.Fatalf("GetRecords failed: %v", err)
	}
	if len(recs) != 2 || recs[0].TeaName != "newest" || recs[1].TeaName != "middle" {
		t.Errorf("Expected the two newest records, got %v", recs)
	}
}

// TestRemoteStoreToppingsRoundTrip tests the JSON serializer on the
// toppings column
func TestRemoteStoreToppingsRoundTrip(t *testing.T) {
	remote := setupRemoteStore(t)

	rec := &models.TeaRecord{
		ID:         "rec-1",
		UserID:     "user-1",
		TeaName:    "珍珠奶茶",
		Size:       "large",
		Toppings:   []string{"珍珠", "椰果"},
		RecordedAt: time.Now().UTC(),
	}
	if err := remote.AddRecord(rec); err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}

	recs, err := remote.GetRecords("user-1", 0, 0)
	if err != nil {
		t.Fatalf("GetRecords failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(recs))
	}
	got := recs[0].Toppings.Slice()
	if len(got) != 2 || got[0] != "珍珠" || got[1] != "椰果" {
		t.Errorf("Expected toppings to round trip, got %v", got)
	}
}
