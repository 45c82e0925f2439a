// ABOUTME: SQLite schema for leads, follow-up notes, and calendar credentials
// ABOUTME: Mirrors the Postgres migrations under db/migrations
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS leads (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT,
	company TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_user_name ON leads(user_id, name);

CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	lead_id TEXT NOT NULL,
	content TEXT NOT NULL,
	follow_up_date TEXT,
	google_calendar_event_id TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (lead_id) REFERENCES leads(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_notes_lead_id ON notes(lead_id);
CREATE INDEX IF NOT EXISTS idx_notes_follow_up_date ON notes(follow_up_date);

CREATE TABLE IF NOT EXISTS google_tokens (
	user_id TEXT PRIMARY KEY,
	access_token TEXT NOT NULL,
	refresh_token TEXT,
	expires_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

func InitSchema(db *sql.DB) error {
	if err := addLeadOwner(db); err != nil {
		return err
	}
	_, err := db.Exec(schema)
	return err
}

// addLeadOwner upgrades a leads table created before leads had an owner.
func addLeadOwner(db *sql.DB) error {
	var tables, columns int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'leads'`).Scan(&tables); err != nil {
		return err
	}
	if tables == 0 {
		return nil
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('leads') WHERE name = 'user_id'`).Scan(&columns); err != nil {
		return err
	}
	if columns > 0 {
		return nil
	}
	_, err := db.Exec(`ALTER TABLE leads ADD COLUMN user_id TEXT NOT NULL DEFAULT ''`)
	return err
}
