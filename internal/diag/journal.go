package diag

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Journal is a SQLite-backed sink for error entries and simulation events,
// for offline inspection of long runs. It records diagnostics only — it is
// not a save/restore mechanism for simulation state.
type Journal struct {
	conn *sqlx.DB
}

// OpenJournal opens or creates a journal database at the given path.
// Use ":memory:" for an ephemeral journal.
func OpenJournal(path string) (*Journal, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		village TEXT NOT NULL,
		category TEXT NOT NULL,
		field TEXT NOT NULL,
		message TEXT NOT NULL,
		at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_errors_village ON errors(village);
	CREATE INDEX IF NOT EXISTS idx_errors_category ON errors(category);
	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// RecordErrors appends error entries to the journal.
func (j *Journal) RecordErrors(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := j.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.Exec(
			"INSERT INTO errors (village, category, field, message, at) VALUES (?, ?, ?, ?, ?)",
			e.Village, string(e.Category), e.Field, e.Message, e.At,
		)
		if err != nil {
			return fmt.Errorf("insert error entry: %w", err)
		}
	}

	return tx.Commit()
}

// EventRecord is one journaled simulation event.
type EventRecord struct {
	Tick        uint64 `db:"tick" json:"tick"`
	Description string `db:"description" json:"description"`
	Category    string `db:"category" json:"category"`
}

// RecordEvents appends simulation events to the journal.
func (j *Journal) RecordEvents(events []EventRecord) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := j.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (tick, description, category) VALUES (?, ?, ?)",
			e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	return tx.Commit()
}

// RecentErrors returns the most recent N error entries, newest first.
func (j *Journal) RecentErrors(limit int) ([]Entry, error) {
	var entries []Entry
	err := j.conn.Select(&entries,
		"SELECT village, category, field, message, at FROM errors ORDER BY id DESC LIMIT ?",
		limit,
	)
	return entries, err
}

// RecentEvents returns the most recent N events, newest first.
func (j *Journal) RecentEvents(limit int) ([]EventRecord, error) {
	var events []EventRecord
	err := j.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// ErrorCountSince returns the number of error rows recorded at or after t.
func (j *Journal) ErrorCountSince(t time.Time) (int, error) {
	var n int
	err := j.conn.Get(&n, "SELECT COUNT(*) FROM errors WHERE at >= ?", t)
	return n, err
}
