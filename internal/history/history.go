package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Object types recorded for a removal target
const (
	ObjectFile      = "file"
	ObjectDirectory = "directory"
	ObjectSymlink   = "symlink"
	ObjectMissing   = "missing"
	ObjectOther     = "other"
	ObjectNone      = "" // usage errors have no target
)

// DB manages the SQLite database holding the removal audit trail
type DB struct {
	db *sql.DB
}

// Record represents a single rmfile invocation
type Record struct {
	ID           int64     `json:"id"`
	InvocationID string    `json:"invocation_id"`
	Timestamp    time.Time `json:"timestamp"`
	Outcome      string    `json:"outcome"`
	Path         string    `json:"path"`
	FileName     string    `json:"file_name"`
	ObjectType   string    `json:"object_type"`
	Size         int64     `json:"size"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// Open creates a database connection and initializes schema
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// _loc=auto enables automatic DATETIME parsing; _busy_timeout lets
	// concurrent rmfile processes wait for the write lock instead of failing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// Exec rather than Ping so the file is created up front
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	// WAL lets rmfile-history read while an rmfile run is writing
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	h := &DB{db: db}
	if err = h.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return h, nil
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS removals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invocation_id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		outcome TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		object_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		error_message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON removals(timestamp);
	CREATE INDEX IF NOT EXISTS idx_outcome ON removals(outcome);
	CREATE INDEX IF NOT EXISTS idx_path ON removals(path);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Record inserts one invocation into the database and fills in rec.ID
func (d *DB) Record(rec *Record) error {
	fileName := ""
	if rec.Path != "" {
		fileName = filepath.Base(rec.Path)
	}
	rec.FileName = fileName

	res, err := d.db.Exec(`
	INSERT INTO removals (
		invocation_id, timestamp, outcome, path, file_name,
		object_type, size, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.InvocationID,
		rec.Timestamp,
		rec.Outcome,
		rec.Path,
		rec.FileName,
		rec.ObjectType,
		rec.Size,
		rec.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("insert removal: %w", err)
	}

	rec.ID, err = res.LastInsertId()
	return err
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}
