package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rmfile/internal/config"
)

// New creates a logger writing to the configured log file with rotation.
// Stdout and stderr stay silent: when logging is disabled or the file
// cannot be opened, log lines are discarded.
func New(cfg *config.Config) (*log.Logger, io.Closer) {
	if cfg == nil || !cfg.LoggingEnabled() {
		return discard()
	}

	filePath := cfg.Logging.File
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return discard()
	}

	rotateLogsIfNeeded(filePath, cfg.Logging.RotationDays, time.Now())

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return discard()
	}

	return log.New(f, "", log.LstdFlags|log.Lmicroseconds), f
}

func discard() (*log.Logger, io.Closer) {
	return log.New(io.Discard, "", 0), nopCloser{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// rotateLogsIfNeeded rotates the log file once it is older than rotationDays
func rotateLogsIfNeeded(logPath string, rotationDays int, now time.Time) {
	info, err := os.Stat(logPath)
	if err != nil {
		// Log file doesn't exist yet, nothing to rotate
		return
	}

	cutoffTime := now.AddDate(0, 0, -rotationDays)
	if info.ModTime().Before(cutoffTime) {
		timestamp := info.ModTime().Format("20060102-150405")
		rotatedPath := logPath + "." + timestamp

		if err := os.Rename(logPath, rotatedPath); err != nil {
			return
		}

		cleanupOldLogs(logPath, rotationDays, now)
	}
}

// cleanupOldLogs removes rotated log files older than rotation days
func cleanupOldLogs(logPath string, rotationDays int, now time.Time) {
	logDir := filepath.Dir(logPath)
	baseName := filepath.Base(logPath)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	cutoffTime := now.AddDate(0, 0, -rotationDays)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, baseName+".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoffTime) {
			// Best effort; a leftover rotated file is retried next run
			_ = os.Remove(filepath.Join(logDir, name))
		}
	}
}
