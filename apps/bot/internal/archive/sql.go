package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"baccarat-lite/apps/bot/internal/storage"
	"baccarat-lite/shoe"
)

const shoeTable = "bot_shoes"

var sqliteSchema = []string{
	`
CREATE TABLE IF NOT EXISTS bot_shoes (
    shoe_id TEXT PRIMARY KEY,
    owner TEXT NOT NULL,
    source TEXT NOT NULL,
    hand_count INTEGER NOT NULL,
    ended_at_ms INTEGER NOT NULL,
    blob BLOB NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_bot_shoes_owner_ended ON bot_shoes(owner, ended_at_ms DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_bot_shoes_ended ON bot_shoes(ended_at_ms DESC)`,
}

type queries struct {
	save, insert, get, recentAll, recentOwner, clearAll, clearOwner string
}

var sqliteQueries = queries{
	save: `
INSERT INTO bot_shoes (shoe_id, owner, source, hand_count, ended_at_ms, blob)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (shoe_id) DO UPDATE
SET owner = excluded.owner, source = excluded.source, hand_count = excluded.hand_count,
    ended_at_ms = excluded.ended_at_ms, blob = excluded.blob`,
	insert: `
INSERT INTO bot_shoes (shoe_id, owner, source, hand_count, ended_at_ms, blob)
VALUES (?, ?, ?, ?, ?, ?)`,
	get:         `SELECT blob FROM bot_shoes WHERE shoe_id = ?`,
	recentAll:   `SELECT blob FROM bot_shoes ORDER BY ended_at_ms DESC LIMIT ?`,
	recentOwner: `SELECT blob FROM bot_shoes WHERE owner = ? ORDER BY ended_at_ms DESC LIMIT ?`,
	clearAll:    `DELETE FROM bot_shoes`,
	clearOwner:  `DELETE FROM bot_shoes WHERE owner = ?`,
}

var postgresQueries = queries{
	save: `
INSERT INTO bot_shoes (shoe_id, owner, source, hand_count, ended_at_ms, blob)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (shoe_id) DO UPDATE
SET owner = EXCLUDED.owner, source = EXCLUDED.source, hand_count = EXCLUDED.hand_count,
    ended_at_ms = EXCLUDED.ended_at_ms, blob = EXCLUDED.blob`,
	insert: `
INSERT INTO bot_shoes (shoe_id, owner, source, hand_count, ended_at_ms, blob)
VALUES ($1, $2, $3, $4, $5, $6)`,
	get:         `SELECT blob FROM bot_shoes WHERE shoe_id = $1`,
	recentAll:   `SELECT blob FROM bot_shoes ORDER BY ended_at_ms DESC LIMIT $1`,
	recentOwner: `SELECT blob FROM bot_shoes WHERE owner = $1 ORDER BY ended_at_ms DESC LIMIT $2`,
	clearAll:    `DELETE FROM bot_shoes`,
	clearOwner:  `DELETE FROM bot_shoes WHERE owner = $1`,
}

// SQLService stores each shoe as a protowire blob next to the columns used for
// listing.
type SQLService struct {
	db *sql.DB
	q  queries
}

func NewSQLiteService(dbPath string) (*SQLService, error) {
	db, err := storage.OpenSQLite(dbPath, sqliteSchema)
	if err != nil {
		return nil, err
	}
	return &SQLService{db: db, q: sqliteQueries}, nil
}

func NewPostgresService(dsn string) (*SQLService, error) {
	db, err := storage.OpenPostgres(dsn, shoeTable)
	if err != nil {
		return nil, err
	}
	return &SQLService{db: db, q: postgresQueries}, nil
}

func (s *SQLService) SaveShoe(ctx context.Context, sh *shoe.Shoe) error {
	return s.write(ctx, s.q.save, sh)
}

func (s *SQLService) ImportShoe(ctx context.Context, sh *shoe.Shoe) error {
	err := s.write(ctx, s.q.insert, sh)
	if storage.IsUniqueViolation(err) {
		return ErrExists
	}
	return err
}

func (s *SQLService) write(ctx context.Context, query string, sh *shoe.Shoe) error {
	blob, err := shoe.Encode(sh)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query,
		sh.ID, sh.Owner, string(sh.Source), len(sh.Hands), sh.EndedAt.UnixMilli(), blob,
	); err != nil {
		return fmt.Errorf("save shoe %s: %w", sh.ID, err)
	}
	return nil
}

func (s *SQLService) GetShoe(ctx context.Context, id string) (*shoe.Shoe, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, s.q.get, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get shoe %s: %w", id, err)
	}
	return shoe.Decode(blob)
}

func (s *SQLService) ListRecent(ctx context.Context, owner string, limit int) ([]*shoe.Shoe, error) {
	limit = normalizeLimit(limit)
	var (
		rows *sql.Rows
		err  error
	)
	if owner == "" {
		rows, err = s.db.QueryContext(ctx, s.q.recentAll, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, s.q.recentOwner, owner, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list shoes: %w", err)
	}
	defer rows.Close()

	out := make([]*shoe.Shoe, 0, limit)
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		sh, err := shoe.Decode(blob)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func (s *SQLService) Clear(ctx context.Context, owner string) (int, error) {
	var (
		res sql.Result
		err error
	)
	if owner == "" {
		res, err = s.db.ExecContext(ctx, s.q.clearAll)
	} else {
		res, err = s.db.ExecContext(ctx, s.q.clearOwner, owner)
	}
	if err != nil {
		return 0, fmt.Errorf("clear shoes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *SQLService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
