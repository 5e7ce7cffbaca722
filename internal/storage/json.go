package storage

import (
	"encoding/json"
	"errors"
	"os"
)

// WriteJSON atomically writes v as compact JSON to path, creating
// parent directories as needed.
func WriteJSON(path, entity string, v any) error {
	writer, err := NewAtomicWriter(path)
	if err != nil {
		return &StorageError{Op: "write", Entity: entity, Path: path, Err: err}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		writer.Abort()
		return &StorageError{Op: "write", Entity: entity, Path: path, Err: err}
	}

	if err := writer.Commit(); err != nil {
		return &StorageError{Op: "write", Entity: entity, Path: path, Err: err}
	}
	return nil
}

// ReadJSON reads the file at path into v. Returns ErrNotFound when the
// file does not exist and ErrStorageCorrupt when it cannot be decoded.
func ReadJSON(path, entity string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &StorageError{Op: "read", Entity: entity, Path: path, Err: ErrNotFound}
		}
		return &StorageError{Op: "read", Entity: entity, Path: path, Err: err}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return &StorageError{Op: "read", Entity: entity, Path: path, Err: ErrStorageCorrupt}
	}
	return nil
}
