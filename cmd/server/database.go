package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/tasklist-api/internal/config"
	"github.com/phrazzld/tasklist-api/internal/platform/postgres"
	"github.com/phrazzld/tasklist-api/internal/platform/sqlite"
	"github.com/phrazzld/tasklist-api/internal/store"
	"gorm.io/gorm"
)

const pingTimeout = 5 * time.Second

// backend bundles the stores of one database together with its cleanup.
type backend struct {
	users store.UserStore
	tasks store.TaskStore
	close func()
}

// openBackend connects to the configured database and builds its stores.
func openBackend(ctx context.Context, cfg *config.Config, log *slog.Logger) (*backend, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := openSQLite(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		return &backend{
			users: sqlite.NewUserStore(db, log),
			tasks: sqlite.NewTaskStore(db, log),
			close: func() {
				if err := sqlite.Close(db); err != nil {
					log.Error("error closing sqlite database", slog.String("error", err.Error()))
				}
			},
		}, nil

	case config.DriverPostgres:
		db, err := openPostgres(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db, postgres.MigrateUp, log); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &backend{
			users: postgres.NewPostgresUserStore(db, log),
			tasks: postgres.NewPostgresTaskStore(db, log),
			close: func() {
				if err := db.Close(); err != nil {
					log.Error("error closing database connection", slog.String("error", err.Error()))
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// openPostgres opens a pgx-backed connection pool and checks it with a ping.
func openPostgres(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established", slog.String("driver", config.DriverPostgres))
	return db, nil
}

// openSQLite opens the embedded database file named by cfg.URL.
func openSQLite(cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	db, err := sqlite.Open(cfg.URL, sqlite.Options{AutoMigrate: cfg.AutoMigrate})
	if err != nil {
		return nil, err
	}
	log.Info("database connection established", slog.String("driver", config.DriverSQLite))
	return db, nil
}

// runMigrations executes a goose command for postgres. SQLite schemas are
// managed by gorm, so only "up" is meaningful there.
func runMigrations(ctx context.Context, cfg *config.Config, command string, log *slog.Logger) error {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		if command != postgres.MigrateUp {
			return fmt.Errorf("migration command %q is not supported for sqlite", command)
		}
		db, err := openSQLite(cfg.Database, log)
		if err != nil {
			return err
		}
		defer func() { _ = sqlite.Close(db) }()
		if err := sqlite.Migrate(db); err != nil {
			return err
		}
		log.Info("sqlite schema is up to date")
		return nil

	case config.DriverPostgres:
		db, err := openPostgres(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db, command, log)

	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
