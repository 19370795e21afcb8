package history

import (
	"database/sql"
	"time"
)

const selectColumns = `
	SELECT id, invocation_id, timestamp, outcome, path, file_name,
	       object_type, size, error_message
	FROM removals
`

// Recent returns the N most recent records
func (d *DB) Recent(limit int) ([]Record, error) {
	return d.query(selectColumns+`
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, limit)
}

// ByOutcome returns records with the given outcome
func (d *DB) ByOutcome(outcome string) ([]Record, error) {
	return d.query(selectColumns+`
	WHERE outcome = ?
	ORDER BY timestamp DESC, id DESC
	`, outcome)
}

// ByPath returns records whose path matches a SQL LIKE pattern
func (d *DB) ByPath(pathPattern string) ([]Record, error) {
	return d.query(selectColumns+`
	WHERE path LIKE ?
	ORDER BY timestamp DESC, id DESC
	`, pathPattern)
}

// Stats holds aggregated statistics for a time window
type Stats struct {
	TotalDeleted int            `json:"total_deleted"`
	TotalErrors  int            `json:"total_errors"`
	TotalBlocked int            `json:"total_blocked"`
	TotalUsage   int            `json:"total_usage"`
	BytesFreed   int64          `json:"bytes_freed"`
	ByObjectType map[string]int `json:"by_object_type"`
	StartDate    time.Time      `json:"start_date"`
	EndDate      time.Time      `json:"end_date"`
}

// Stats returns statistics for the last days
func (d *DB) Stats(days int) (*Stats, error) {
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	stats := &Stats{
		StartDate:    since,
		EndDate:      now,
		ByObjectType: make(map[string]int),
	}

	err := d.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN outcome = 'DELETE' THEN 1 END),
			COUNT(CASE WHEN outcome = 'ERROR' THEN 1 END),
			COUNT(CASE WHEN outcome = 'BLOCKED' THEN 1 END),
			COUNT(CASE WHEN outcome = 'USAGE' THEN 1 END),
			COALESCE(SUM(CASE WHEN outcome = 'DELETE' THEN size END), 0)
		FROM removals
		WHERE timestamp >= ?
	`, since).Scan(&stats.TotalDeleted, &stats.TotalErrors, &stats.TotalBlocked, &stats.TotalUsage, &stats.BytesFreed)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(`
		SELECT object_type, COUNT(*)
		FROM removals
		WHERE outcome = 'DELETE' AND timestamp >= ?
		GROUP BY object_type
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var objectType string
		var count int
		if err := rows.Scan(&objectType, &count); err != nil {
			return nil, err
		}
		stats.ByObjectType[objectType] = count
	}

	return stats, rows.Err()
}

// PruneOlderThan removes records older than the given number of days
func (d *DB) PruneOlderThan(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	result, err := d.db.Exec(`DELETE FROM removals WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (d *DB) query(query string, args ...interface{}) ([]Record, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var fileName, errMsg sql.NullString

		err := rows.Scan(
			&r.ID, &r.InvocationID, &r.Timestamp, &r.Outcome, &r.Path,
			&fileName, &r.ObjectType, &r.Size, &errMsg,
		)
		if err != nil {
			return nil, err
		}

		r.FileName = fileName.String
		r.ErrorMessage = errMsg.String

		records = append(records, r)
	}

	return records, rows.Err()
}
