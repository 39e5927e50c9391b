package db

import (
	"fmt"     // Error wrapping
	"strings" // DSN suffix handling
	"time"    // Slow query threshold

	"finance_tracker/internal/config" // Storage settings

	"github.com/glebarez/sqlite"     // Pure-Go SQLite driver for GORM
	"github.com/sirupsen/logrus"     // Logrus backs the GORM logger
	"gorm.io/driver/mysql"           // MySQL driver for GORM
	"gorm.io/driver/postgres"        // Postgres (pgx) driver for GORM
	"gorm.io/gorm"                   // GORM ORM library
	gormlogger "gorm.io/gorm/logger" // GORM logger interface
)

// MySQLDSN builds the MySQL Data Source Name from the config parts
func MySQLDSN(cfg *config.Config) string {
	return cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
}

// SQLiteDSN enables foreign keys and waits on locks instead of failing
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Dialector picks the GORM dialector for the configured SQL driver
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.StorageDriver {
	case config.DriverMySQL:
		return mysql.Open(MySQLDSN(cfg)), nil // MySQL from discrete settings
	case config.DriverPostgres:
		return postgres.Open(cfg.DatabaseURL), nil // Postgres from a URL
	case config.DriverSQLite:
		return sqlite.Open(SQLiteDSN(cfg.SQLitePath)), nil // SQLite file
	default:
		return nil, fmt.Errorf("storage driver %q is not a SQL driver", cfg.StorageDriver)
	}
}

// Open connects to the configured SQL database
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := OpenDialector(dialector)
	if err != nil {
		return nil, err
	}
	return tunePool(db, cfg.StorageDriver)
}

// tunePool applies per-driver pool limits, closing db if they cannot be set
func tunePool(db *gorm.DB, driver string) (*gorm.DB, error) {
	if driver != config.DriverSQLite {
		return db, nil
	}
	if err := SingleWriter(db); err != nil {
		closePool(db)
		return nil, fmt.Errorf("configure sqlite pool: %w", err)
	}
	return db, nil
}

// closePool releases the connections behind db whatever pool type it wraps
func closePool(db *gorm.DB) {
	if closer, ok := db.ConnPool.(interface{ Close() error }); ok {
		closer.Close() // Best effort; the open error is what gets reported
	}
}

// SingleWriter limits the pool to one connection; SQLite allows a single writer
func SingleWriter(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	return nil
}

// OpenDialector connects through an explicit dialector with the service's GORM settings
func OpenDialector(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true, // Surface gorm.ErrDuplicatedKey on unique violations
		Logger: gormlogger.New(logrus.StandardLogger(), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true, // Lookups that miss are expected
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}
