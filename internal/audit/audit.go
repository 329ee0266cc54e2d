// Package audit records checkpoint firings and grading decisions in the
// coach database so rule outcomes survive restarts and can be inspected
// after the fact.
package audit

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// #region schema
const checkpointLogSchema = `
CREATE TABLE IF NOT EXISTS checkpoint_log (
	id           TEXT PRIMARY KEY,
	date         TEXT NOT NULL,
	trigger_type TEXT NOT NULL,
	decision     TEXT NOT NULL,
	reason       TEXT,
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checkpoint_log_date ON checkpoint_log(date);
`

// #endregion schema

// #region types
// Entry is a single row in the checkpoint_log table.
type Entry struct {
	ID          string
	Date        string // calendar date the decision applies to
	TriggerType string // checkpoint name or "am_report" / "pm_report" / "targets_update"
	Decision    string // "fired" | "pass" | "fail" | "updated"
	Reason      string
	CreatedAt   time.Time
}

// #endregion types

// #region log
// Log manages the checkpoint_log table on a shared coach database.
type Log struct {
	db *sql.DB
}

// NewLog creates the checkpoint_log table if needed and returns a Log.
func NewLog(db *sql.DB) (*Log, error) {
	if _, err := db.Exec(checkpointLogSchema); err != nil {
		return nil, fmt.Errorf("migrate checkpoint_log: %w", err)
	}
	return &Log{db: db}, nil
}

// Record writes one audit entry. ID and CreatedAt are filled when zero.
func (l *Log) Record(entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := l.db.Exec(
		`INSERT INTO checkpoint_log (id, date, trigger_type, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Date,
		entry.TriggerType,
		entry.Decision,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// ForDate returns all audit entries for one date, oldest first.
func (l *Log) ForDate(date string) ([]Entry, error) {
	rows, err := l.db.Query(
		`SELECT id, date, trigger_type, decision, reason, created_at
		 FROM checkpoint_log WHERE date = ? ORDER BY created_at ASC`, date,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.ID, &e.Date, &e.TriggerType, &e.Decision, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		if reason.Valid {
			e.Reason = reason.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion log

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
