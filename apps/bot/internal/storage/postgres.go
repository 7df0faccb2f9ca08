package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// OpenPostgres connects and checks that every table in required exists. Schema is
// owned by migrations, not by the bot.
func OpenPostgres(dsn string, required ...string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("empty postgres dsn")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	for _, table := range required {
		var ready bool
		if err := db.QueryRowContext(ctx, `
SELECT EXISTS (
    SELECT 1
    FROM information_schema.tables
    WHERE table_schema = 'public'
      AND table_name = $1
)`, table).Scan(&ready); err != nil {
			_ = db.Close()
			return nil, err
		}
		if !ready {
			_ = db.Close()
			return nil, fmt.Errorf("schema not initialized: missing table %s", table)
		}
	}
	return db, nil
}
