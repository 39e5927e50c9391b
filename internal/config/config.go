package config

import (
	"errors"  // Validation errors
	"fmt"     // Error formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // Trimming and case folding

	"github.com/joho/godotenv" // For loading .env files
)

// Storage drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverCSV      = "csv"
	DriverMemory   = "memory"
)

// Config holds the application configuration
type Config struct {
	AppPort       string // Application port
	StorageDriver string // One of the Driver* constants
	DBUser        string // Database user
	DBPassword    string // Database password
	DBHost        string // Database host
	DBPort        string // Database port
	DBName        string // Database name
	DatabaseURL   string // Postgres connection URL
	SQLitePath    string // SQLite database file
	CSVDir        string // Directory holding the CSV files
	JWTSecret     string // JWT secret key
	RedisAddr     string // Redis server address, empty disables caching
	RedisPass     string // Redis password
	RedisDB       int    // Redis database number
	AutoMigrate   bool   // Run schema migration on server start
	IsProd        bool   // Is production environment
	LogLevel      string // Logrus level name

	redisDBRaw string // REDIS_DB as given, checked by Validate
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDBRaw := strings.TrimSpace(os.Getenv("REDIS_DB"))
	redisDB, _ := strconv.Atoi(redisDBRaw) // Rejected by Validate when unparsable
	return &Config{
		AppPort:       getenv("APP_PORT", "8080"),                             // Application port
		StorageDriver: strings.ToLower(getenv("STORAGE_DRIVER", DriverMySQL)), // Storage backend
		DBUser:        os.Getenv("DB_USER"),                                   // Database user
		DBPassword:    os.Getenv("DB_PASSWORD"),                               // Database password
		DBHost:        getenv("DB_HOST", "127.0.0.1"),                         // Database host
		DBPort:        getenv("DB_PORT", "3306"),                              // Database port
		DBName:        os.Getenv("DB_NAME"),                                   // Database name
		DatabaseURL:   os.Getenv("DATABASE_URL"),                              // Postgres URL
		SQLitePath:    getenv("SQLITE_PATH", "finance.db"),                    // SQLite file
		CSVDir:        getenv("CSV_DIR", "data"),                              // CSV directory
		JWTSecret:     os.Getenv("JWT_SECRET"),                                // JWT secret key
		RedisAddr:     os.Getenv("REDIS_ADDR"),                                // Redis server address
		RedisPass:     os.Getenv("REDIS_PASS"),                                // Redis password
		RedisDB:       redisDB,                                                // Redis database number
		AutoMigrate:   os.Getenv("AUTO_MIGRATE") == "true",                    // Migrate on start
		IsProd:        os.Getenv("IS_PROD") == "true",                         // Is production environment
		LogLevel:      getenv("LOG_LEVEL", "info"),                            // Log level
		redisDBRaw:    redisDBRaw,                                             // Raw Redis database number
	}
}

// Validate reports the first setting that prevents startup
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if port, err := strconv.Atoi(c.AppPort); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid APP_PORT %q: must be a number between 1 and 65535", c.AppPort)
	}
	if c.redisDBRaw != "" {
		if n, err := strconv.Atoi(c.redisDBRaw); err != nil || n < 0 {
			return fmt.Errorf("invalid REDIS_DB %q: must be a non-negative integer", c.redisDBRaw)
		}
	}
	switch c.StorageDriver {
	case DriverMySQL:
		if c.DBUser == "" || c.DBName == "" {
			return errors.New("DB_USER and DB_NAME are required for the mysql driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverCSV:
		if c.CSVDir == "" {
			return errors.New("CSV_DIR is required for the csv driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q: must be one of mysql, postgres, sqlite, csv, memory", c.StorageDriver)
	}
	return nil
}

// IsSQL reports whether the driver is served by GORM
func (c *Config) IsSQL() bool {
	return c.StorageDriver == DriverMySQL || c.StorageDriver == DriverPostgres || c.StorageDriver == DriverSQLite
}

// getenv returns the trimmed variable or def when unset
func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
