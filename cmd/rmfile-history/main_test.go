package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rmfile/internal/exitcodes"
	"rmfile/internal/history"
)

func seed(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := history.Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	now := time.Now()
	for i, r := range []history.Record{
		{InvocationID: "1", Timestamp: now.Add(-3 * time.Minute), Outcome: "DELETE", Path: "/var/log/a.log", ObjectType: history.ObjectFile, Size: 2048},
		{InvocationID: "2", Timestamp: now.Add(-2 * time.Minute), Outcome: "ERROR", Path: "/var/log/b.log", ObjectType: history.ObjectMissing},
		{InvocationID: "3", Timestamp: now.Add(-time.Minute), Outcome: "USAGE", ObjectType: history.ObjectNone},
	} {
		rec := r
		if err := db.Record(&rec); err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}
	return dbPath
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	absent := filepath.Join(t.TempDir(), "absent.yaml")
	code := run(append([]string{"-config", absent}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRecentTable(t *testing.T) {
	dbPath := seed(t)

	code, out, _ := runCLI(t, "-db", dbPath, "-recent", "2")

	if code != exitcodes.Success {
		t.Fatalf("Expected success, got %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header, separator and 2 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[2], "USAGE") || !strings.Contains(lines[3], "ERROR") {
		t.Errorf("Unexpected row order:\n%s", out)
	}
}

func TestOutcomeJSON(t *testing.T) {
	dbPath := seed(t)

	code, out, _ := runCLI(t, "-db", dbPath, "-outcome", "DELETE", "-json")

	if code != exitcodes.Success {
		t.Fatalf("Expected success, got %d", code)
	}
	var records []history.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, out)
	}
	if len(records) != 1 || records[0].Path != "/var/log/a.log" || records[0].Size != 2048 {
		t.Errorf("Unexpected records: %+v", records)
	}
}

func TestPathFilterNoMatches(t *testing.T) {
	dbPath := seed(t)

	_, out, _ := runCLI(t, "-db", dbPath, "-path", "/srv/%")

	if strings.TrimSpace(out) != "No records found" {
		t.Errorf("Expected empty result message, got %q", out)
	}
}

func TestStatsOutput(t *testing.T) {
	dbPath := seed(t)

	code, out, _ := runCLI(t, "-db", dbPath, "-stats", "-days", "1")

	if code != exitcodes.Success {
		t.Fatalf("Expected success, got %d", code)
	}
	for _, want := range []string{"Deleted:      1", "Failed:       1", "Usage errors: 1", "Space Freed:  2.0 KB", "file"} {
		if !strings.Contains(out, want) {
			t.Errorf("Stats output missing %q:\n%s", want, out)
		}
	}
}

func TestPrune(t *testing.T) {
	dbPath := seed(t)

	code, out, _ := runCLI(t, "-db", dbPath, "-prune", "1")

	if code != exitcodes.Success {
		t.Fatalf("Expected success, got %d", code)
	}
	if !strings.HasPrefix(out, "Pruned 0 records") {
		t.Errorf("Recent records should survive a 1 day prune, got %q", out)
	}
}

func TestNoModeShowsUsage(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state", "history.db")

	code, out, errOut := runCLI(t, "-db", dbPath)

	if code != exitcodes.InvalidConfig {
		t.Errorf("Expected InvalidConfig exit code, got %d", code)
	}
	if out != "" {
		t.Errorf("Usage should go to stderr, stdout got %q", out)
	}
	if !strings.Contains(errOut, "Examples:") {
		t.Errorf("Expected examples on stderr, got %q", errOut)
	}
	if _, err := os.Stat(filepath.Dir(dbPath)); !os.IsNotExist(err) {
		t.Errorf("Usage path must not create the database, stat err = %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestOutputFailureIsRuntimeError(t *testing.T) {
	dbPath := seed(t)
	absent := filepath.Join(t.TempDir(), "absent.yaml")

	for _, mode := range [][]string{
		{"-recent", "5", "-json"},
		{"-stats", "-json"},
		{"-outcome", "DELETE"},
	} {
		var stderr bytes.Buffer
		args := append([]string{"-config", absent, "-db", dbPath}, mode...)
		code := run(args, failingWriter{}, &stderr)

		if code != exitcodes.RuntimeError {
			t.Errorf("%v: expected RuntimeError, got %d", mode, code)
		}
		if !strings.Contains(stderr.String(), "disk full") {
			t.Errorf("%v: expected cause on stderr, got %q", mode, stderr.String())
		}
	}
}

func TestEncodeReportsMarshalError(t *testing.T) {
	var out bytes.Buffer
	p := printer{out: &out, json: true}

	if err := p.encode(make(chan int)); err == nil {
		t.Error("Expected marshal error for unsupported type")
	}
	if out.Len() != 0 {
		t.Errorf("Nothing should be written on marshal failure, got %q", out.String())
	}
}

func TestBadFlag(t *testing.T) {
	code, _, _ := runCLI(t, "-nope")
	if code != exitcodes.InvalidConfig {
		t.Errorf("Expected InvalidConfig exit code, got %d", code)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
