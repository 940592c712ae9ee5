// Package database exports the communication log collection to SQLite so it
// can be explored with ad-hoc read-only SQL
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"evidence-log-analyzer/internal/models"
)

// DB interface defines database operations for easier testing and extensibility
type DB interface {
	Close() error
	Query(query string, args ...interface{}) (*sql.Rows, error)
	Exec(query string, args ...interface{}) (sql.Result, error)
	Begin() (*sql.Tx, error)
}

// sqliteDB implements the DB interface for SQLite
type sqliteDB struct {
	*sql.DB
}

// Initialize creates a new SQLite database connection and sets up the schema
// Returns a DB interface that can be used for all database operations
func Initialize(dbPath string) (DB, error) {
	// Creates the file if it doesn't exist
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &sqliteDB{sqlDB}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables sets up the database schema
// date_iso holds the stored DD-MM-YYYY date as YYYY-MM-DD so SQL can sort and compare it
func createTables(db DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS communication_logs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL CHECK (type IN ('Text', 'Audio', 'Video', 'Call')),
		sender_name TEXT NOT NULL,
		receiver_name TEXT NOT NULL,
		sender_gender TEXT NOT NULL,
		receiver_gender TEXT NOT NULL,
		date TEXT NOT NULL,
		date_iso TEXT,
		time TEXT NOT NULL,
		content_or_duration TEXT NOT NULL,
		is_suspicious BOOLEAN NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_logs_type ON communication_logs(type);
	CREATE INDEX IF NOT EXISTS idx_logs_date_iso ON communication_logs(date_iso);
	CREATE INDEX IF NOT EXISTS idx_logs_sender ON communication_logs(sender_name);
	CREATE INDEX IF NOT EXISTS idx_logs_receiver ON communication_logs(receiver_name);
	CREATE INDEX IF NOT EXISTS idx_logs_suspicious ON communication_logs(is_suspicious);
	`

	_, err := db.Exec(createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// InsertLogEntries inserts log entries into the database in one transaction
// If appendMode is false, existing rows are cleared first. In append mode an
// entry whose id is already exported is skipped.
func InsertLogEntries(db DB, entries []models.LogEntry, appendMode bool) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if !appendMode {
		if _, err := tx.Exec("DELETE FROM communication_logs"); err != nil {
			return 0, fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	insertSQL := `
	INSERT OR IGNORE INTO communication_logs
		(id, type, sender_name, receiver_name, sender_gender, receiver_gender,
		 date, date_iso, time, content_or_duration, is_suspicious)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var insertedCount int64
	for _, entry := range entries {
		res, err := tx.Exec(insertSQL,
			entry.ID, string(entry.Type), entry.SenderName, entry.ReceiverName,
			string(entry.SenderGender), string(entry.ReceiverGender),
			entry.Date, isoDate(entry.Date), entry.Time, entry.Content, entry.IsSuspicious)
		if err != nil {
			return insertedCount, fmt.Errorf("failed to insert entry %s: %w", entry.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return insertedCount, fmt.Errorf("failed to count inserted rows: %w", err)
		}
		insertedCount += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return insertedCount, nil
}

// isoDate converts DD-MM-YYYY to YYYY-MM-DD, or returns nil for dates that don't parse
func isoDate(date string) interface{} {
	if len(date) != len(models.DateLayout) || date[2] != '-' || date[5] != '-' {
		return nil
	}
	return date[6:] + "-" + date[3:5] + "-" + date[:2]
}

// ExecuteQuery executes a SQL query and returns results as a slice of maps
// This generic approach allows for flexible query results without predefined structs
func ExecuteQuery(db DB, query string) ([]map[string]interface{}, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var results []map[string]interface{}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))

		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{})
		for i, column := range columns {
			// Convert byte slices to strings
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			row[column] = val
		}

		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return results, nil
}
