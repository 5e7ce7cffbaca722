package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors for storage operations.
var (
	ErrNotFound       = errors.New("storage: not found")
	ErrStorageCorrupt = errors.New("storage: data corruption detected")
)

// StorageError wraps a failed storage operation with its context.
type StorageError struct {
	Op     string // "read", "write"
	Entity string // "state", "index", "page", "video", "search"
	Path   string
	Err    error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("storage: %s %s %s: %v", e.Op, e.Entity, e.Path, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
