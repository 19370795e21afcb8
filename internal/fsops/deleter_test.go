package fsops

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOSDeleterRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if err := (OSDeleter{}).Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected %s to be gone, stat err = %v", path, err)
	}
}

func TestOSDeleterMissingFile(t *testing.T) {
	err := (OSDeleter{}).Remove(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}

func TestOSDeleterRejectsNonEmptyDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dir")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "child"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create child: %v", err)
	}

	if err := (OSDeleter{}).Remove(dir); err == nil {
		t.Fatal("Expected error removing non-empty directory")
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Directory should remain, stat err = %v", err)
	}
}

func TestFakeDeleterRecordsCalls(t *testing.T) {
	boom := errors.New("boom")
	fake := &FakeDeleter{Err: boom}

	if err := fake.Remove("/tmp/x"); !errors.Is(err, boom) {
		t.Errorf("Expected configured error, got %v", err)
	}
	if len(fake.Calls) != 1 || fake.Calls[0] != "rm:/tmp/x" {
		t.Errorf("Unexpected calls: %v", fake.Calls)
	}
}
