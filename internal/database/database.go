// Package database handles database connections and schema management.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"warbler/internal/config"
	"warbler/internal/models"
	"warbler/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectOptions controls what Connect does after opening the pool.
type ConnectOptions struct {
	// ApplySchema runs AutoMigrate. Ignored in production.
	ApplySchema bool
	Logger      *slog.Logger
	// Metrics, when set, records per-statement query latency.
	Metrics *observability.Metrics
}

// PersistentModels returns the authoritative set of schema-managed GORM models,
// ordered so that referenced tables come first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Message{},
		&models.Follow{},
		&models.Like{},
	}
}

// Connect opens a database connection using the provided configuration and
// applies the schema outside production.
func Connect(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	return ConnectWithOptions(cfg, ConnectOptions{ApplySchema: !cfg.IsProduction(), Logger: log})
}

// ConnectWithOptions opens a database connection with explicit options.
func ConnectWithOptions(cfg *config.Config, opts ConnectOptions) (*gorm.DB, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	dialector, memory, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(log, logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := configurePool(db, cfg, memory); err != nil {
		return nil, err
	}

	if opts.Metrics != nil {
		if err := db.Use(&MetricsPlugin{Metrics: opts.Metrics}); err != nil {
			return nil, fmt.Errorf("failed to register metrics plugin: %w", err)
		}
	}

	log.Info("Database connected successfully", slog.String("driver", cfg.DBDriver))

	if opts.ApplySchema && !cfg.IsProduction() {
		if err := AutoMigrate(context.Background(), db); err != nil {
			return nil, err
		}
		log.Info("Database migration completed")
	}

	return db, nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, bool, error) {
	switch cfg.DBDriver {
	case "postgres":
		sslMode := cfg.DBSSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			sslMode,
		)
		return postgres.Open(dsn), false, nil
	case "sqlite":
		dsn, memory := SQLiteDSN(cfg.DBPath)
		return sqlite.Open(dsn), memory, nil
	default:
		return nil, false, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// SQLiteDSN builds a DSN with foreign keys enforced. The second result
// reports an in-memory database.
func SQLiteDSN(path string) (string, bool) {
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		if path == ":memory:" {
			return "file::memory:?_foreign_keys=on", true
		}
		return path + "&_foreign_keys=on", true
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000", false
}

// configurePool applies pool limits. An in-memory SQLite database lives and
// dies with its connection, so it is pinned to exactly one.
func configurePool(db *gorm.DB, cfg *config.Config, memory bool) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}
	if memory {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		return nil
	}
	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
	if cfg.DBConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeMinutes) * time.Minute)
	}
	return nil
}

// AutoMigrate creates or updates every table in PersistentModels.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Reset drops every Warbler table and recreates the schema.
func Reset(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if cfg.IsProduction() {
		return fmt.Errorf("refusing to reset the database in %q", cfg.Env)
	}

	tables := PersistentModels()
	// Drop dependents first.
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.WithContext(ctx).Migrator().DropTable(tables[i]); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return AutoMigrate(ctx, db)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
