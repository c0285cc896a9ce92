package models

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry backs the local fallback store: one JSON blob per fixed key,
// mirroring the browser-storage layout the first TeaCal client used
// (a flat record array filtered by user at read time).
type KVEntry struct {
	K         string         `gorm:"primaryKey;size:255"`
	V         datatypes.JSON `gorm:"type:json"`
	UpdatedAt time.Time
}

// TableName overrides the table name for KVEntry
func (KVEntry) TableName() string {
	return "kv_store"
}

// OutboxEntry is a write that succeeded locally while the remote store was
// unreachable. Entries replay in insertion order during a resync.
type OutboxEntry struct {
	EntryID   uint64         `gorm:"primaryKey;autoIncrement"`
	Op        string         `gorm:"size:32;not null"`
	Payload   datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time
}

// Outbox operation names.
const (
	OutboxUpsertRecord  = "upsert_record"
	OutboxDeleteRecord  = "delete_record"
	OutboxSetPreference = "set_preference"
	OutboxUpsertProfile = "upsert_profile"
)

// TableName overrides the table name for OutboxEntry
func (OutboxEntry) TableName() string {
	return "outbox"
}
