package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies every schema statement. Statements are idempotent, so
// the full list runs on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS chats (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id          TEXT PRIMARY KEY,
		chat_id     TEXT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		role        TEXT NOT NULL CHECK(role IN ('user','assistant')),
		content     TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		UNIQUE(chat_id, seq)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, seq)`,

	`CREATE TABLE IF NOT EXISTS generated_items (
		id            TEXT NOT NULL,
		chat_id       TEXT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		category      TEXT NOT NULL CHECK(category IN ('images','music','venues','food')),
		position      INTEGER NOT NULL,
		title         TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '',
		url           TEXT NOT NULL DEFAULT '',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		source        TEXT NOT NULL DEFAULT '',
		metadata      TEXT NOT NULL DEFAULT '{}',
		created_at    TEXT NOT NULL,
		PRIMARY KEY (chat_id, category, position)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_generated_items_chat ON generated_items(chat_id, category)`,

	`ALTER TABLE chats ADD COLUMN stage TEXT NOT NULL DEFAULT 'greeting'`,
}
