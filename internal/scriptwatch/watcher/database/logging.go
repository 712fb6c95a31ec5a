package database

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/types"
)

// LogToDatabase logs a message to the database
func (d *DB) LogToDatabase(level, component, script, message, errorMsg string, duration int64) {
	if !d.enabled {
		return
	}

	db := d.GetDB()
	if db == nil {
		return
	}

	query := `
		INSERT INTO watcher_logs (level, component, script, message, error, duration)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if _, err := db.Exec(query, level, component, script, message, errorMsg, duration); err != nil {
		// Don't use log.Error here to avoid potential recursion
		fmt.Fprintf(os.Stderr, "Failed to log to database: %v\n", err)
	}
}

// RecordLoad stores one load attempt and returns its id. An id is generated
// when the attempt carries none.
func (d *DB) RecordLoad(attempt types.LoadAttempt) string {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if !d.enabled {
		return attempt.ID
	}

	db := d.GetDB()
	if db == nil {
		return attempt.ID
	}

	var modTime int64
	if !attempt.ModTime.IsZero() {
		modTime = attempt.ModTime.UnixNano()
	}

	query := `
		INSERT INTO load_attempts (id, script, trigger, status, generation, mod_time, duration, output, error_output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, attempt.ID, attempt.Script, attempt.Trigger, attempt.Status,
		attempt.Generation, modTime, attempt.Duration, attempt.Output, attempt.Error)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to record load attempt: %v\n", err)
	}
	return attempt.ID
}
