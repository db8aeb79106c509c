package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for our application
type Config struct {
	Port        string
	Origin      string
	Environment string
	Database    DatabaseConfig
	SQLitePath  string
}

// DatabaseConfig holds networked database connection details. When Host is
// empty the process never attempts a MySQL connection and goes straight to
// the SQLite fallback.
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	PoolSize int
	DSN      string
}

// Configured reports whether enough environment was supplied to attempt a
// networked database connection.
func (d DatabaseConfig) Configured() bool {
	return d.Host != ""
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hospital_portal"),
	}

	poolSize, err := strconv.Atoi(getEnv("DB_POOL_SIZE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_POOL_SIZE: %w", err)
	}
	dbConfig.PoolSize = poolSize

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	// Return complete configuration
	return &Config{
		Port:        getEnv("PORT", "3001"),
		Origin:      getEnv("ORIGIN", "http://localhost:5173"),
		Environment: getEnv("NODE_ENV", "development"),
		Database:    dbConfig,
		SQLitePath:  getEnv("SQLITE_PATH", "hospital.db"),
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
