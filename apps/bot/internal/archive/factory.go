package archive

import (
	"fmt"

	"baccarat-lite/apps/bot/internal/config"
	"baccarat-lite/apps/bot/internal/storage"
)

// NewServiceFromConfig picks the backend named by ARCHIVE_MODE.
func NewServiceFromConfig(cfg *config.Config) (Service, string, error) {
	mode := cfg.ArchiveMode
	switch mode {
	case config.StoreModeMemory:
		return NewMemoryService(), mode, nil
	case config.StoreModeSQLite:
		path, err := storage.LocalDatabasePath(cfg.SQLitePath)
		if err != nil {
			return nil, mode, err
		}
		svc, err := NewSQLiteService(path)
		if err != nil {
			return nil, mode, err
		}
		return svc, mode, nil
	case config.StoreModePostgres:
		svc, err := NewPostgresService(cfg.DatabaseDSN)
		if err != nil {
			return nil, mode, err
		}
		return svc, mode, nil
	}
	return nil, mode, fmt.Errorf("invalid ARCHIVE_MODE %q (supported: memory, sqlite, postgres)", mode)
}
