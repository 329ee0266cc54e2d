package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danwhitfield/war-coach/internal/day"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS coach_config (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	channel_id    TEXT NOT NULL DEFAULT '',
	targets_json  TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS day_records (
	date              TEXT PRIMARY KEY,
	am_json           TEXT,
	pm_json           TEXT,
	compliance        INTEGER,
	punishments_json  TEXT NOT NULL DEFAULT '[]',
	fired_json        TEXT NOT NULL DEFAULT '[]',
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);
`

// #endregion schema

// #region config-doc
// Config is the durable Configuration Document: the bound notification
// channel plus the compliance targets.
type Config struct {
	ChannelID string
	Targets   day.Targets
}

// #endregion config-doc

// #region store-struct
// Store persists the Configuration Document and the State Document
// (date → day record) in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. audit).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region config
// LoadConfig reads the Configuration Document, seeding defaults on first run.
// Targets missing from a previously persisted document (older schema of the
// targets JSON) keep their default values.
func (s *Store) LoadConfig() (Config, error) {
	var channelID, targetsJSON string
	err := s.db.QueryRow(
		`SELECT channel_id, targets_json FROM coach_config WHERE id = 1`,
	).Scan(&channelID, &targetsJSON)
	if err == sql.ErrNoRows {
		cfg := Config{Targets: day.DefaultTargets()}
		if err := s.SaveConfig(cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	cfg := Config{ChannelID: channelID, Targets: day.DefaultTargets()}
	if err := json.Unmarshal([]byte(targetsJSON), &cfg.Targets); err != nil {
		return Config{}, fmt.Errorf("unmarshal targets: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the Configuration Document in one statement.
func (s *Store) SaveConfig(cfg Config) error {
	targetsJSON, err := json.Marshal(cfg.Targets)
	if err != nil {
		return fmt.Errorf("marshal targets: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO coach_config (id, channel_id, targets_json, updated_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   channel_id = excluded.channel_id,
		   targets_json = excluded.targets_json,
		   updated_at = excluded.updated_at`,
		cfg.ChannelID, string(targetsJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// #endregion config

// #region get-day
// GetDay returns the day record for the given date, or a fresh empty record
// if none is persisted yet. Lazy creation: the record is not written until
// the first mutation commits it via PutDay.
func (s *Store) GetDay(date string) (day.Record, error) {
	var amJSON, pmJSON sql.NullString
	var compliance sql.NullInt64
	var punishmentsJSON, firedJSON string

	err := s.db.QueryRow(
		`SELECT am_json, pm_json, compliance, punishments_json, fired_json
		 FROM day_records WHERE date = ?`, date,
	).Scan(&amJSON, &pmJSON, &compliance, &punishmentsJSON, &firedJSON)
	if err == sql.ErrNoRows {
		return day.NewRecord(date), nil
	}
	if err != nil {
		return day.Record{}, fmt.Errorf("get day %s: %w", date, err)
	}

	rec := day.NewRecord(date)
	if amJSON.Valid {
		rec.AM = &day.AMReport{}
		if err := json.Unmarshal([]byte(amJSON.String), rec.AM); err != nil {
			return day.Record{}, fmt.Errorf("unmarshal am %s: %w", date, err)
		}
	}
	if pmJSON.Valid {
		rec.PM = &day.PMReport{}
		if err := json.Unmarshal([]byte(pmJSON.String), rec.PM); err != nil {
			return day.Record{}, fmt.Errorf("unmarshal pm %s: %w", date, err)
		}
	}
	if compliance.Valid {
		v := int(compliance.Int64)
		rec.Compliance = &v
	}
	if err := json.Unmarshal([]byte(punishmentsJSON), &rec.Punishments); err != nil {
		return day.Record{}, fmt.Errorf("unmarshal punishments %s: %w", date, err)
	}
	if err := json.Unmarshal([]byte(firedJSON), &rec.Fired); err != nil {
		return day.Record{}, fmt.Errorf("unmarshal fired %s: %w", date, err)
	}
	return rec, nil
}

// #endregion get-day

// #region put-day
// PutDay upserts a full day record in one transaction. The caller builds the
// complete new record in memory first; a failed write leaves the previous
// row untouched.
func (s *Store) PutDay(rec day.Record) error {
	punishmentsJSON, err := json.Marshal(rec.Punishments)
	if err != nil {
		return fmt.Errorf("marshal punishments: %w", err)
	}
	firedJSON, err := json.Marshal(rec.Fired)
	if err != nil {
		return fmt.Errorf("marshal fired: %w", err)
	}

	var amPtr, pmPtr, compliancePtr interface{}
	if rec.AM != nil {
		b, err := json.Marshal(rec.AM)
		if err != nil {
			return fmt.Errorf("marshal am: %w", err)
		}
		amPtr = string(b)
	}
	if rec.PM != nil {
		b, err := json.Marshal(rec.PM)
		if err != nil {
			return fmt.Errorf("marshal pm: %w", err)
		}
		pmPtr = string(b)
	}
	if rec.Compliance != nil {
		compliancePtr = *rec.Compliance
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO day_records (date, am_json, pm_json, compliance, punishments_json, fired_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
		   am_json = excluded.am_json,
		   pm_json = excluded.pm_json,
		   compliance = excluded.compliance,
		   punishments_json = excluded.punishments_json,
		   fired_json = excluded.fired_json,
		   updated_at = excluded.updated_at`,
		rec.Date, amPtr, pmPtr, compliancePtr, string(punishmentsJSON), string(firedJSON), now, now,
	)
	if err != nil {
		return fmt.Errorf("put day %s: %w", rec.Date, err)
	}

	return tx.Commit()
}

// #endregion put-day

// #region list-days
// ListDays returns the most recent day records, newest first.
func (s *Store) ListDays(limit int) ([]day.Record, error) {
	rows, err := s.db.Query(
		`SELECT date FROM day_records ORDER BY date DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	records := make([]day.Record, 0, len(dates))
	for _, d := range dates {
		rec, err := s.GetDay(d)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// #endregion list-days
