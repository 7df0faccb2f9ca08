package session

import (
	"fmt"

	"baccarat-lite/apps/bot/internal/config"
	"baccarat-lite/apps/bot/internal/storage"
)

// NewStoreFromConfig picks the backend named by SESSION_MODE.
func NewStoreFromConfig(cfg *config.Config) (Store, string, error) {
	mode := cfg.SessionMode
	switch mode {
	case config.StoreModeMemory:
		return NewMemoryStore(), mode, nil
	case config.StoreModeSQLite:
		path, err := storage.LocalDatabasePath(cfg.SQLitePath)
		if err != nil {
			return nil, mode, err
		}
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, mode, err
		}
		return s, mode, nil
	case config.StoreModePostgres:
		s, err := NewPostgresStore(cfg.DatabaseDSN)
		if err != nil {
			return nil, mode, err
		}
		return s, mode, nil
	case config.StoreModeRedis:
		s, err := NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 2*cfg.SessionIdleTTL)
		if err != nil {
			return nil, mode, err
		}
		return s, mode, nil
	}
	return nil, mode, fmt.Errorf("invalid SESSION_MODE %q (supported: memory, sqlite, postgres, redis)", mode)
}
