// Package database provides the SQLite journal of watcher logs and load attempts
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dimasma0305/scriptwatch/internal/log"

	// Import pure-Go SQLite driver for database/sql (no CGO required)
	_ "modernc.org/sqlite"
)

// DB wraps database operations for the watcher
type DB struct {
	db      *sql.DB
	mu      sync.RWMutex
	enabled bool
	path    string
}

// New creates a new database instance
func New(dbPath string, enabled bool) *DB {
	return &DB{
		path:    dbPath,
		enabled: enabled,
	}
}

// Init initializes the database connection and creates tables
func (d *DB) Init() error {
	if !d.enabled {
		log.Info("Database journal disabled")
		return nil
	}

	dbPath := d.path
	log.Debug("Initializing SQLite database: %s", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL lets the CLI read the journal while the host writes to it
	dbPath += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	d.mu.Lock()
	d.db = db
	d.mu.Unlock()

	if err := d.createTables(); err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}

	log.Debug("Database initialized successfully")
	return nil
}

// createTables creates the necessary database tables
func (d *DB) createTables() error {
	db := d.GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	createLogsTable := `
		CREATE TABLE IF NOT EXISTS watcher_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			level TEXT NOT NULL,
			component TEXT NOT NULL,
			script TEXT,
			message TEXT NOT NULL,
			error TEXT,
			duration INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_logs_timestamp ON watcher_logs(timestamp);
		CREATE INDEX IF NOT EXISTS idx_logs_level ON watcher_logs(level);
	`

	createLoadsTable := `
		CREATE TABLE IF NOT EXISTS load_attempts (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT UNIQUE NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			script TEXT NOT NULL,
			trigger TEXT NOT NULL,
			status TEXT NOT NULL,
			generation INTEGER,
			mod_time INTEGER,
			duration INTEGER,
			output TEXT,
			error_output TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_loads_status ON load_attempts(status);
		CREATE INDEX IF NOT EXISTS idx_loads_script ON load_attempts(script);
	`

	if _, err := db.Exec(createLogsTable); err != nil {
		return fmt.Errorf("failed to create watcher_logs table: %w", err)
	}

	if _, err := db.Exec(createLoadsTable); err != nil {
		return fmt.Errorf("failed to create load_attempts table: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		log.Debug("Closing database connection")
		err := d.db.Close()
		d.db = nil
		return err
	}
	return nil
}

// GetDB returns the underlying database connection (for queries)
func (d *DB) GetDB() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

// IsEnabled returns whether the database is enabled
func (d *DB) IsEnabled() bool {
	return d.enabled
}
