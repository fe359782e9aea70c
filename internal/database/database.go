package database

import (
	"embed"
	"errors"
	"fmt"
	"time"

	"stockdesk/internal/logger"
	"stockdesk/internal/models"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// AllModels lists every table the desk owns, parents before children.
var AllModels = []interface{}{
	&models.User{},
	&models.AuditLog{},
	&models.BlockedItem{},
	&models.MonitoringRecord{},
	&models.SupplyWithdrawal{},
	&models.PPEIssue{},
	&models.PPEItem{},
	&models.CutPasswordOrder{},
	&models.CutPasswordItem{},
	&models.ConsolidatedLine{},
	&models.CatalogEntry{},
}

// Manager handles database operations
type Manager struct {
	db     *gorm.DB
	config *Config
}

// NewManager creates a new database manager
func NewManager(config *Config) (*Manager, error) {
	db, err := Open(config)
	if err != nil {
		return nil, err
	}
	return &Manager{db: db, config: config}, nil
}

// Open connects to the configured backend with UTC timestamps.
func Open(config *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  config.DSN(),
			PreferSimpleProtocol: true,
		})
	case DriverSQLite:
		dialector = sqlite.Open(config.DSN() + "&_txlock=immediate")
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate brings the schema up to date. The only destructive step is dropping
// the legacy free-form consolidated table; everything else creates missing
// tables, columns and indexes and never alters or drops existing ones.
func (m *Manager) Migrate() error {
	if m.config.Driver == DriverPostgres {
		if err := m.RunMigrations(); err != nil {
			return err
		}
	}
	return Migrate(m.db)
}

// Migrate applies the startup migration to db.
func Migrate(db *gorm.DB) error {
	log := logger.Get()

	dropped, err := dropLegacyConsolidated(db)
	if err != nil {
		return fmt.Errorf("legacy consolidated migration failed: %w", err)
	}
	if dropped {
		log.Warnw("dropped legacy consolidated table", "table", "consolidated_lines")
	}

	for _, model := range AllModels {
		if err := migrateAdditive(db, model); err != nil {
			return err
		}
	}
	return nil
}

// dropLegacyConsolidated drops consolidated_lines when it still has the
// free-form shape (a content column and no warehouse column).
func dropLegacyConsolidated(db *gorm.DB) (bool, error) {
	mig := db.Migrator()
	model := &models.ConsolidatedLine{}
	if !mig.HasTable(model) {
		return false, nil
	}
	if !mig.HasColumn(model, "content") || mig.HasColumn(model, "warehouse") {
		return false, nil
	}
	if err := mig.DropTable(model); err != nil {
		return false, err
	}
	return true, nil
}

func migrateAdditive(db *gorm.DB, model interface{}) error {
	mig := db.Migrator()
	if !mig.HasTable(model) {
		if err := mig.CreateTable(model); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
		return nil
	}

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return fmt.Errorf("failed to parse %T: %w", model, err)
	}

	for _, field := range stmt.Schema.Fields {
		if field.DBName == "" || mig.HasColumn(model, field.DBName) {
			continue
		}
		if err := mig.AddColumn(model, field.Name); err != nil {
			return fmt.Errorf("failed to add column %s.%s: %w", stmt.Schema.Table, field.DBName, err)
		}
		logger.Get().Infow("added column", "table", stmt.Schema.Table, "column", field.DBName)
		if hasIndexTag(field) && !mig.HasIndex(model, field.Name) {
			if err := mig.CreateIndex(model, field.Name); err != nil {
				logger.Get().Warnw("failed to index added column",
					"table", stmt.Schema.Table, "column", field.DBName, "error", err)
			}
		}
	}
	return nil
}

func hasIndexTag(field *schema.Field) bool {
	_, ok := field.TagSettings["INDEX"]
	return ok
}

// RunMigrations applies the embedded SQL migrations. PostgreSQL only.
func (m *Manager) RunMigrations() error {
	logger.Get().Info("Running database migrations...")

	mig, err := NewMigrator(m.config)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil {
			logger.Get().Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			logger.Get().Warnf("migrate database close error: %v", dbErr)
		}
	}()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Get().Info("Database migrations completed successfully")
	return nil
}

// NewMigrator returns a golang-migrate instance over the embedded SQL files.
func NewMigrator(config *Config) (*migrate.Migrate, error) {
	if config.Driver != DriverPostgres {
		return nil, errors.New("sql migrations are only available for postgres; sqlite is migrated at startup")
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	mig, err := migrate.NewWithSourceInstance("iofs", source, config.MigrateURL())
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mig, nil
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Config returns the connection settings.
func (m *Manager) Config() *Config {
	return m.config
}

// SQLitePath returns the database file when the backend is SQLite.
func (m *Manager) SQLitePath() (string, bool) {
	if m.config.Driver != DriverSQLite {
		return "", false
	}
	return m.config.Path, true
}

// Close releases the connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
