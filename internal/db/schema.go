package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    email         TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'staff', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY,
    title       TEXT NOT NULL,
    status      TEXT NOT NULL CHECK (status IN ('lost', 'found', 'requested', 'returned')),
    category    TEXT NOT NULL,
    subcategory TEXT,
    location    TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    occurred_on DATETIME NOT NULL,
    reporter_id INTEGER NOT NULL REFERENCES users(id),
    approved    INTEGER NOT NULL DEFAULT 0,
    image       BLOB,
    image_mime  TEXT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at  DATETIME
);

CREATE INDEX IF NOT EXISTS idx_items_status_active
    ON items(status) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS matches (
    id                 INTEGER PRIMARY KEY,
    lost_item_id       INTEGER NOT NULL REFERENCES items(id),
    found_item_id      INTEGER NOT NULL REFERENCES items(id),
    pair_key           TEXT NOT NULL,
    score              REAL NOT NULL,
    run_id             TEXT,
    lost_notification  TEXT NOT NULL DEFAULT 'pending' CHECK (lost_notification IN ('pending', 'sent', 'failed')),
    found_notification TEXT NOT NULL DEFAULT 'pending' CHECK (found_notification IN ('pending', 'sent', 'failed')),
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_pair_key ON matches(pair_key);

CREATE TABLE IF NOT EXISTS notification_attempts (
    id         TEXT PRIMARY KEY,
    match_id   INTEGER NOT NULL REFERENCES matches(id),
    side       TEXT NOT NULL CHECK (side IN ('lost', 'found')),
    user_id    INTEGER NOT NULL,
    target     TEXT,
    success    INTEGER NOT NULL,
    message_id TEXT,
    error      TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notification_attempts_match
    ON notification_attempts(match_id);

CREATE TABLE IF NOT EXISTS claims (
    id          INTEGER PRIMARY KEY,
    item_id     INTEGER NOT NULL REFERENCES items(id),
    claimant_id INTEGER NOT NULL REFERENCES users(id),
    notes       TEXT,
    status      TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    resolved_at DATETIME,
    resolved_by INTEGER REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
