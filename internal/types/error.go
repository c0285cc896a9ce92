package types

import "fmt"

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// SyncError tags a persistence failure with the operation and the store
// ("remote" or "local") it came from, so callers can decide between
// fallback and failure instead of the store layer deciding for them.
type SyncError struct {
	Op    string
	Store string
	Err   error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s (%s store): %v", e.Op, e.Store, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewSyncError wraps err with op and store tags; returns nil if err is nil.
func NewSyncError(op, store string, err error) error {
	if err == nil {
		return nil
	}
	return &SyncError{Op: op, Store: store, Err: err}
}
