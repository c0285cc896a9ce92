package services_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/qingchaji/teacal-sync/internal/services"
)

// TestAddRecordComputesEstimate tests that an omitted calorie estimate is
// filled in from the drink's size, sweetness, and toppings
func TestAddRecordComputesEstimate(t *testing.T) {
	facade := services.NewSyncFacade(nil, setupLocalStore(t), 2000)

	rec, err := facade.AddRecord(testRecordInput("user-1"))
	if err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}

	if rec.ID == "" {
		t.Error("Expected a minted record ID")
	}
	// Medium half-sugar base (102) plus a default serving of pearls (117)
	if rec.EstimatedCalories != 219 {
		t.Errorf("Expected 219 estimated calories, got %d", rec.EstimatedCalories)
	}
	// Medium cup at half sweetness
	if rec.SugarContent != 15 {
		t.Errorf("Expected 15g sugar, got %d", rec.SugarContent)
	}
}

// TestAddRecordHonorsClientEstimate tests that a client-supplied estimate
// is stored untouched
func TestAddRecordHonorsClientEstimate(t *testing.T) {
	facade := services.NewSyncFacade(nil, setupLocalStore(t), 2000)

	override := 350
	input := testRecordInput("user-1")
	input.EstimatedCalories = &override

	rec, err := facade.AddRecord(input)
	if err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}
	if rec.EstimatedCalories != 350 {
		t.Errorf("Expected the client estimate 350, got %d", rec.EstimatedCalories)
	}
}

// TestAddRecordValidation tests rejection of malformed input
func TestAddRecordValidation(t *testing.T) {
	facade := services.NewSyncFacade(nil, setupLocalStore(t), 2000)

	input := testRecordInput("user-1")
	input.TeaName = ""
	if _, err := facade.AddRecord(input); err == nil {
		t.Error("Expected an error for a missing tea name")
	}

	input = testRecordInput("user-1")
	input.Size = "bucket"
	if _, err := facade.AddRecord(input); err == nil {
		t.Error("Expected an error for an unknown size")
	}

	input = testRecordInput("user-1")
	input.Rating = 9
	if _, err := facade.AddRecord(input); err == nil {
		t.Error("Expected an error for an out-of-range rating")
	}
}

// TestGetRecordsOrderAndPaging tests newest-first ordering with limit/offset
func TestGetRecordsOrderAndPaging(t *testing.T) {
	facade := services.NewSyncFacade(nil, setupLocalStore(t), 2000)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	names := []string{"oldest", "middle", "newest"}
	for i, name := range names {
		input := testRecordInput("user-1")
		input.TeaName = name
		input.RecordedAt = base.Add(time.Duration(i) * time.Hour)
		if _, err := facade.AddRecord(input); err != nil {
			t.Fatalf("AddRecord failed: %v", err)
		}
	}

	recs, err := facade.GetRecords("user-1", 0, 0)
	if err != nil {
		t.Fatalf("GetRecords failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(recs))
	}
	if recs[0].TeaName != "newest" || recs[2].TeaName != "oldest" {
		t.Errorf("Expected newest-first ordering, got %s..%s", recs[0].TeaName, recs[2].TeaName)
	}

	page, err := facade.GetRecords("user-1", 1, 1)
	if err != nil {
		t.Fatalf("GetRecords with paging failed: %v", err)
	}
	if len(page) != 1 || page[0].TeaName != "middle" {
		t.Errorf("Expected the middle record on page 2, got %v", page)
	}

	// Another user sees nothing
	other, err := facade.GetRecords("user-2", 0, 0)
	if err != nil {
		t.Fatalf("GetRecords for another user failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Expected no records for another user, got %d", len(other))
	}
}

// TestRecordLifecycleWithRemote tests add/update/delete through a live remote
func TestRecordLifecycleWithRemote(t *testing.T) {
	remote := setupRemoteStore(t)
	local := setupLocalStore(t)
	facade := services.NewSyncFacade(remote, local, 2000)

	if facade.State() != services.StateOnline {
		t.Fatalf("Expected online state, got %s", facade.State())
	}

	rec, err := facade.AddRecord(testRecordInput("user-1"))
	if err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}

	// The write landed remote and mirrored local under the same ID
	remoteRecs, err := remote.GetRecords("user-1", 0, 0)
	if err != nil {
		t.Fatalf("Remote GetRecords failed: %v", err)
	}
	if len(remoteRecs) != 1 || remoteRecs[0].ID != rec.ID {
		t.Fatalf("Expected the record in the remote store, got %v", remoteRecs)
	}
	localRecs, err := local.GetRecords("user-1", 0, 0)
	if err != nil {
		t.Fatalf("Local GetRecords failed: %v", err)
	}
	if len(localRecs) != 1 || localRecs[0].ID != rec.ID {
		t.Fatalf("Expected the record mirrored locally, got %v", localRecs)
	}

	newName := "四季春"
	updated, err := facade.UpdateRecord(rec.ID, "user-1", &services.RecordPatch{TeaName: &newName})
	if err != nil {
		t.Fatalf("UpdateRecord failed: %v", err)
	}
	if updated.TeaName != "四季春" {
		t.Errorf("Expected the updated name, got %s", updated.TeaName)
	}

	if err := facade.DeleteRecord(rec.ID, "user-1"); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if err := facade.DeleteRecord(rec.ID, "user-1"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on double delete, got %v", err)
	}
}

// TestDeleteLocalOnlyRecord tests deleting a record that never reached the
// remote store; the delete must still succeed
func TestDeleteLocalOnlyRecord(t *testing.T) {
	remote := setupRemoteStore(t)
	local := setupLocalStore(t)

	// Seed the record straight into the local store, bypassing the facade,
	// the way a pre-migration client would have left it
	offline := services.NewSyncFacade(nil, local, 2000)
	rec, err := offline.AddRecord(testRecordInput("user-1"))
	if err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}

	facade := services.NewSyncFacade(remote, local, 2000)
	if err := facade.DeleteRecord(rec.ID, "user-1"); err != nil {
		t.Fatalf("Expected delete of a local-only record to succeed, got %v", err)
	}
	if facade.State() != services.StateOnline {
		t.Errorf("Expected to stay online, got %s", facade.State())
	}
}

// TestDegradeOnRemoteFailure tests that a remote outage queues the write
// locally instead of failing the caller
func TestDegradeOnRemoteFailure(t *testing.T) {
	flaky := &flakyRemote{inner: setupRemoteStore(t), fail: true}
	local := setupLocalStore(t)
	facade := services.NewSyncFacade(flaky, local, 2000)

	rec, err := facade.AddRecord(testRecordInput("user-1"))
	if err != nil {
		t.Fatalf("Expected the write to be accepted during an outage, got %v", err)
	}
	if facade.State() != services.StateDegraded {
		t.Fatalf("Expected degraded state, got %s", facade.State())
	}

	// Record is readable from the local fallback
	recs, err := facade.GetRecords("user-1", 0, 0)
	if err != nil {
		t.Fatalf("GetRecords failed: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != rec.ID {
		t.Fatalf("Expected the record from the local fallback, got %v", recs)
	}

	// The write is waiting for a resync
	status := facade.Status()
	if status.PendingWrites != 1 {
		t.Errorf("Expected 1 pending write, got %d", status.PendingWrites)
	}
	if !status.RemoteConfigured {
		t.Error("Expected remote_configured to be true")
	}
}

// TestResyncRestoresOnline tests replaying the outbox after recovery
func TestResyncRestoresOnline(t *testing.T) {
	flaky := &flakyRemote{inner: setupRemoteStore(t), fail: true}
	local := setupLocalStore(t)
	facade := services.NewSyncFacade(flaky, local, 2000)

	rec, err := facade.AddRecord(testRecordInput("user-1"))
	if err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}
	if err := facade.SetBudget("user-1", 1800); err != nil {
		t.Fatalf("SetBudget failed: %v", err)
	}
	if facade.State() != services.StateDegraded {
		t.Fatalf("Expected degraded state, got %s", facade.State())
	}

	// Remote is back
	flaky.fail = false
	flushed, err := facade.Resync()
	if err != nil {
		t.Fatalf("Resync failed: %v", err)
	}
	if flushed != 2 {
		t.Errorf("Expected 2 flushed writes, got %d", flushed)
	}
	if facade.State() != services.StateOnline {
		t.Errorf("Expected online state after resync, got %s", facade.State())
	}

	// The queued record made it to the remote store
	remoteRecs, err := flaky.inner.GetRecords("user-1", 0, 0)
	if err != nil {
		t.Fatalf("Remote GetRecords failed: %v", err)
	}
	if len(remoteRecs) != 1 || remoteRecs[0].ID != rec.ID {
		t.Fatalf("Expected the queued record remote after resync, got %v", remoteRecs)
	}

	if depth := facade.Status().PendingWrites; depth != 0 {
		t.Errorf("Expected an empty outbox after resync, got %d", depth)
	}
}

// TestResyncKeepsTailOnFailure tests that a failing resync leaves the
// unflushed entries queued and the state degraded
func TestResyncKeepsTailOnFailure(t *testing.T) {
	flaky := &flakyRemote{inner: setupRemoteStore(t), fail: true}
	local := setupLocalStore(t)
	facade := services.NewSyncFacade(flaky, local, 2000)

	if _, err := facade.AddRecord(testRecordInput("user-1")); err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}

	// Remote still down
	if _, err := facade.Resync(); err == nil {
		t.Error("Expected resync to fail while the remote is down")
	}
	if facade.State() != services.StateDegraded {
		t.Errorf("Expected degraded state, got %s", facade.State())
	}
	if depth := facade.Status().PendingWrites; depth != 1 {
		t.Errorf("Expected the write still queued, got %d", depth)
	}
}

// TestOfflineModeNeverResyncs tests that a facade without a remote rejects
// migration-family calls
func TestOfflineModeNeverResyncs(t *testing.T) {
	facade := services.NewSyncFacade(nil, setupLocalStore(t), 2000)

	if facade.State() != services.StateOffline {
		t.Fatalf("Expected offline state, got %s", facade.State())
	}
	if _, err := facade.Resync(); err == nil {
		t.Error("Expected Resync to fail without a remote store")
	}
	if _, err := facade.Migrate("user-1"); err == nil {
		t.Error("Expected Migrate to fail without a remote store")
	}
}

// TestBudget tests the weekly budget default and round trip
func TestBudget(t *testing.T) {
	facade := services.NewSyncFacade(nil, setupLocalStore(t), 2000)

	if got := facade.GetBudget("user-1"); got != 2000 {
		t.Errorf("Expected the default budget 2000, got %d", got)
	}

	if err := facade.SetBudget("user-1", 2500); err != nil {
		t.Fatalf("SetBudget failed: %v", err)
	}
	if got := facade.GetBudget("user-1"); got != 2500 {
		t.Errorf("Expected 2500, got %d", got)
	}

	if err := facade.SetBudget("user-1", -1); err == nil {
		t.Error("Expected an error for a negative budget")
	}
}

// TestBudgetToleratesOldShapes tests reading budgets stored by old clients
// as a bare number instead of a string
func TestBudgetToleratesOldShapes(t *testing.T) {
	facade := services.NewSyncFacade(nil, setupLocalStore(t), 2000)

	if err := facade.SetPreference("user-1", services.BudgetKey, json.RawMessage(`1750`)); err != nil {
		t.Fatalf("SetPreference failed: %v", err)
	}
	if got := facade.GetBudget("user-1"); got != 1750 {
		t.Errorf("Expected 1750 from a numeric blob, got %d", got)
	}

	if err := facade.SetPreference("user-1", services.BudgetKey, json.RawMessage(`"garbage"`)); err != nil {
		t.Fatalf("SetPreference failed: %v", err)
	}
	if got := facade.GetBudget("user-1"); got != 2000 {
		t.Errorf("Expected the default for an unparsable blob, got %d", got)
	}
}

// TestBudgetSurvivesOutage tests that the budget set during a remote outage
// is still readable
func TestBudgetSurvivesOutage(t *testing.T) {
	flaky := &flakyRemote{inner: setupRemoteStore(t), fail: true}
	facade := services.NewSyncFacade(flaky, setupLocalStore(t), 2000)

	if err := facade.SetBudget("user-1", 2200); err != nil {
		t.Fatalf("Expected SetBudget to be accepted during an outage, got %v", err)
	}
	if got := facade.GetBudget("user-1"); got != 2200 {
		t.Errorf("Expected 2200 during the outage, got %d", got)
	}
}

// TestPreferences tests the settings map round trip
func TestPreferences(t *testing.T) {
	facade := services.NewSyncFacade(nil, setupLocalStore(t), 2000)

	if err := facade.SetPreference("user-1", "theme", json.RawMessage(`"dark"`)); err != nil {
		t.Fatalf("SetPreference failed: %v", err)
	}
	if err := facade.SetPreference("user-1", "theme", json.RawMessage(`"light"`)); err != nil {
		t.Fatalf("SetPreference upsert failed: %v", err)
	}

	prefs, err := facade.GetPreferences("user-1")
	if err != nil {
		t.Fatalf("GetPreferences failed: %v", err)
	}
	if string(prefs["theme"]) != `"light"` {
		t.Errorf("Expected the last value to win, got %s", prefs["theme"])
	}

	if err := facade.SetPreference("", "theme", json.RawMessage(`1`)); err == nil {
		t.Error("Expected an error for a missing user id")
	}
}
