// Package backend opens the storage implementation selected by configuration.
package backend

import (
	"fmt"

	"finance_tracker/internal/config"
	"finance_tracker/internal/db"
	"finance_tracker/internal/storage"
	"finance_tracker/internal/storage/csvstore"
	"finance_tracker/internal/storage/memstore"

	"github.com/sirupsen/logrus"
)

// Open returns the configured store. SQL stores are migrated first when cfg.AutoMigrate is set.
func Open(cfg *config.Config) (storage.Store, error) {
	switch {
	case cfg.IsSQL():
		conn, err := db.Open(cfg)
		if err != nil {
			return nil, err
		}
		store := db.NewStore(conn)
		if cfg.AutoMigrate {
			if err := db.Migrate(conn); err != nil {
				store.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		logrus.WithField("driver", cfg.StorageDriver).Info("SQL storage ready")
		return store, nil
	case cfg.StorageDriver == config.DriverCSV:
		store, err := csvstore.Open(cfg.CSVDir)
		if err != nil {
			return nil, err
		}
		logrus.WithField("dir", cfg.CSVDir).Info("CSV storage ready")
		return store, nil
	case cfg.StorageDriver == config.DriverMemory:
		logrus.Warn("In-memory storage: data is lost on restart")
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
