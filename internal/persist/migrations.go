package persist

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// gooseLogger routes goose output through zap.
type gooseLogger struct {
	s *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...any) { l.s.Infof(format, v...) }
func (l gooseLogger) Fatalf(format string, v ...any) { l.s.Fatalf(format, v...) }

func setupGoose(log *zap.Logger) error {
	if log == nil {
		goose.SetLogger(goose.NopLogger())
	} else {
		goose.SetLogger(gooseLogger{s: log.Sugar()})
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	return nil
}

// RunMigrations applies all pending database migrations.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	if err := setupGoose(log); err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// RollbackMigration reverts the most recent migration.
func RollbackMigration(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	if err := setupGoose(log); err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.DownContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}
	return nil
}

// MigrationVersion reports the schema version currently applied.
func MigrationVersion(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	if err := setupGoose(nil); err != nil {
		return 0, err
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("migration version: %w", err)
	}
	return v, nil
}
