package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// MigrationsTable is the goose version table of this package.
const MigrationsTable = "slogfactory_migrations"

// DefaultTable is the table created by the embedded migrations.
const DefaultTable = "log_records"

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its settings in package globals.
var migrateMu sync.Mutex

// Migrate creates the log_records table and its indexes.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	// Shares the pool's connections; closing it would close the pool.
	db := stdlib.OpenDBFromPool(pool)

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLoggerAdapter{log})
	goose.SetTableName(MigrationsTable)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	return nil
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

// Fatalf only logs: goose returns the error to the caller as well.
func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}
