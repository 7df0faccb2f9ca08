package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"baccarat-lite/apps/bot/internal/storage"
)

const sessionTable = "bot_sessions"

var sqliteSchema = []string{
	`
CREATE TABLE IF NOT EXISTS bot_sessions (
    session_key TEXT PRIMARY KEY,
    payload BLOB NOT NULL,
    updated_at_ms INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_bot_sessions_updated ON bot_sessions(updated_at_ms)`,
}

type queries struct {
	load, save, del, idle string
}

var sqliteQueries = queries{
	load: `SELECT payload FROM bot_sessions WHERE session_key = ?`,
	save: `
INSERT INTO bot_sessions (session_key, payload, updated_at_ms)
VALUES (?, ?, ?)
ON CONFLICT (session_key) DO UPDATE
SET payload = excluded.payload, updated_at_ms = excluded.updated_at_ms`,
	del:  `DELETE FROM bot_sessions WHERE session_key = ?`,
	idle: `SELECT session_key FROM bot_sessions WHERE updated_at_ms < ? ORDER BY updated_at_ms`,
}

var postgresQueries = queries{
	load: `SELECT payload FROM bot_sessions WHERE session_key = $1`,
	save: `
INSERT INTO bot_sessions (session_key, payload, updated_at_ms)
VALUES ($1, $2, $3)
ON CONFLICT (session_key) DO UPDATE
SET payload = EXCLUDED.payload, updated_at_ms = EXCLUDED.updated_at_ms`,
	del:  `DELETE FROM bot_sessions WHERE session_key = $1`,
	idle: `SELECT session_key FROM bot_sessions WHERE updated_at_ms < $1 ORDER BY updated_at_ms`,
}

// SQLStore backs sessions with sqlite or postgres; both share one table layout.
type SQLStore struct {
	db *sql.DB
	q  queries
}

func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	db, err := storage.OpenSQLite(dbPath, sqliteSchema)
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: db, q: sqliteQueries}, nil
}

func NewPostgresStore(dsn string) (*SQLStore, error) {
	db, err := storage.OpenPostgres(dsn, sessionTable)
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: db, q: postgresQueries}, nil
}

func (s *SQLStore) Load(ctx context.Context, key string) (*Record, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, s.q.load, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", key, err)
	}
	return decodeRecord(payload)
}

func (s *SQLStore) Save(ctx context.Context, rec *Record) error {
	payload, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.q.save, rec.Key, payload, rec.UpdatedAt.UnixMilli()); err != nil {
		return fmt.Errorf("save session %s: %w", rec.Key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.q.del, key); err != nil {
		return fmt.Errorf("delete session %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) ListIdle(ctx context.Context, before time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.q.idle, before.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list idle sessions: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, rows.Err()
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
