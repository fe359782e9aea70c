package database

import (
	"fmt"
	"strings"
)

// Driver names supported by the Manager.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// sqliteParams enable WAL, wait on locks instead of failing and turn on foreign keys.
const sqliteParams = "_journal_mode=WAL&_busy_timeout=10000&_foreign_keys=1"

// Config holds database configuration
type Config struct {
	Driver string
	// Path is the SQLite file path. Empty for PostgreSQL.
	Path string
	// URL is the original connection string.
	URL string
}

// NewConfig parses a DATABASE_URL. Accepted forms are postgres://..., postgresql://...,
// sqlite://path, sqlite:///abs/path, file:path and a bare file path.
func NewConfig(databaseURL string) (*Config, error) {
	raw := strings.TrimSpace(databaseURL)
	if raw == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return &Config{Driver: DriverPostgres, URL: raw}, nil
	case strings.HasPrefix(lower, "sqlite://"):
		path := raw[len("sqlite://"):]
		if path == "" {
			return nil, fmt.Errorf("sqlite url has no path: %q", raw)
		}
		return &Config{Driver: DriverSQLite, Path: path, URL: raw}, nil
	case strings.HasPrefix(lower, "file:"):
		path := raw[len("file:"):]
		if i := strings.Index(path, "?"); i >= 0 {
			path = path[:i]
		}
		return &Config{Driver: DriverSQLite, Path: path, URL: raw}, nil
	case strings.Contains(lower, "://"):
		return nil, fmt.Errorf("unsupported database scheme in %q", raw)
	}
	return &Config{Driver: DriverSQLite, Path: raw, URL: raw}, nil
}

// DSN returns the driver-specific connection string
func (c *Config) DSN() string {
	if c.Driver == DriverPostgres {
		return c.URL
	}
	return "file:" + c.Path + "?" + sqliteParams
}

// MigrateURL returns the URL golang-migrate expects for this database.
func (c *Config) MigrateURL() string {
	if c.Driver != DriverPostgres {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(c.URL), "postgresql://") {
		return "postgres://" + c.URL[len("postgresql://"):]
	}
	return c.URL
}
