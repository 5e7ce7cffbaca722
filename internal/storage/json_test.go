package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteJSON_CreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "c.json")

	if err := WriteJSON(path, "test", map[string]int{"n": 1}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var out map[string]int
	if err := ReadJSON(path, "test", &out); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if out["n"] != 1 {
		t.Errorf("round trip = %v", out)
	}
}

func TestWriteJSON_DoesNotEscapeHTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := WriteJSON(path, "test", map[string]string{"url": "https://e.com/a?b=1&c=2"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "b=1&c=2") {
		t.Errorf("ampersand was escaped: %s", data)
	}
}

func TestWriteJSON_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	if err := WriteJSON(filepath.Join(dir, "out.json"), "test", []int{1, 2}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".durussync-") {
			t.Errorf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestReadJSON_NotFound(t *testing.T) {
	err := ReadJSON(filepath.Join(t.TempDir(), "missing.json"), "test", &struct{}{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadJSON() error = %v, want ErrNotFound", err)
	}

	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("ReadJSON() error type = %T, want *StorageError", err)
	}
	if storageErr.Op != "read" || storageErr.Entity != "test" {
		t.Errorf("StorageError = %+v", storageErr)
	}
}

func TestReadJSON_Corrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	err := ReadJSON(path, "test", &struct{}{})
	if !errors.Is(err, ErrStorageCorrupt) {
		t.Errorf("ReadJSON() error = %v, want ErrStorageCorrupt", err)
	}
}
