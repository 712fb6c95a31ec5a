package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/types"
)

// GetRecentLogs retrieves recent log entries from the database, newest first
func (d *DB) GetRecentLogs(limit int) ([]types.WatcherLog, error) {
	db := d.GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT id, timestamp, level, component, script, message, error, duration
		FROM watcher_logs
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var logs []types.WatcherLog
	for rows.Next() {
		var entry types.WatcherLog
		var script, errorMsg sql.NullString
		var duration sql.NullInt64

		err := rows.Scan(
			&entry.ID, &entry.Timestamp, &entry.Level, &entry.Component,
			&script, &entry.Message, &errorMsg, &duration,
		)
		if err != nil {
			return nil, err
		}

		entry.Script = script.String
		entry.Error = errorMsg.String
		entry.Duration = duration.Int64

		logs = append(logs, entry)
	}

	return logs, rows.Err()
}

// GetLoadAttempts retrieves load attempts, newest first. An empty status
// returns every attempt.
func (d *DB) GetLoadAttempts(status string, limit int) ([]types.LoadAttempt, error) {
	db := d.GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	var query string
	var args []interface{}

	if status != "" {
		query = `
			SELECT id, timestamp, script, trigger, status, generation, mod_time, duration, output, error_output
			FROM load_attempts
			WHERE status = ?
			ORDER BY seq DESC
			LIMIT ?
		`
		args = []interface{}{status, limit}
	} else {
		query = `
			SELECT id, timestamp, script, trigger, status, generation, mod_time, duration, output, error_output
			FROM load_attempts
			ORDER BY seq DESC
			LIMIT ?
		`
		args = []interface{}{limit}
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var attempts []types.LoadAttempt
	for rows.Next() {
		var attempt types.LoadAttempt
		var generation, modTime, duration sql.NullInt64
		var output, errorOutput sql.NullString

		err := rows.Scan(
			&attempt.ID, &attempt.Timestamp, &attempt.Script, &attempt.Trigger,
			&attempt.Status, &generation, &modTime, &duration, &output, &errorOutput,
		)
		if err != nil {
			return nil, err
		}

		attempt.Generation = generation.Int64
		if modTime.Valid && modTime.Int64 != 0 {
			attempt.ModTime = time.Unix(0, modTime.Int64)
		}
		attempt.Duration = duration.Int64
		attempt.Output = output.String
		attempt.Error = errorOutput.String

		attempts = append(attempts, attempt)
	}

	return attempts, rows.Err()
}
