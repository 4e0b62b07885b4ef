// Package sqltest opens throwaway SQLite databases for repository tests.
package sqltest

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// Schema mirrors migrations/000001_init.up.sql in the SQLite dialect.
const Schema = `
CREATE TABLE users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    subject_id    TEXT      NOT NULL UNIQUE,
    federated_id  TEXT      NOT NULL DEFAULT '',
    display_name  TEXT      NOT NULL DEFAULT '',
    avatar_url    TEXT      NOT NULL DEFAULT '',
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP NOT NULL
);

CREATE TABLE allowlist_entries (
    subject_id  TEXT      PRIMARY KEY,
    note        TEXT      NOT NULL DEFAULT '',
    created_at  TIMESTAMP NOT NULL
);

CREATE TABLE invite_codes (
    code                   TEXT      PRIMARY KEY,
    status                 TEXT      NOT NULL DEFAULT 'UNUSED',
    note                   TEXT      NOT NULL DEFAULT '',
    claimed_by_subject_id  TEXT      NOT NULL DEFAULT '',
    claimed_at             TIMESTAMP,
    created_at             TIMESTAMP NOT NULL,
    updated_at             TIMESTAMP NOT NULL
);
`

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Open returns an in-memory database with Schema applied. The pool is pinned
// to one connection so every query sees the same database.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(Schema)
	require.NoError(t, err)
	return db
}

// OpenFile returns a file-backed database with Schema applied and a pool of
// conns connections, so concurrent statements really race for the write
// lock. busy_timeout makes losers wait instead of failing with SQLITE_BUSY.
func OpenFile(t *testing.T, conns int) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gate.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)", path)
	db, err := sqlx.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(conns)
	db.SetMaxIdleConns(conns)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(Schema)
	require.NoError(t, err)
	return db
}
